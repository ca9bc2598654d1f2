package stock_test

import (
	"context"
	"errors"
	"sort"

	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

// store estado en memoria compartido por los repos falsos.
type store struct {
	products  map[string]*entity.Product
	suppliers map[string]*entity.Supplier
	supplies  map[string]*entity.Supply
	sales     map[string]*entity.Sale
	companies map[string]*entity.Company

	// failOnSave fuerza un error al persistir la cabecera (simula fallo a mitad de tx).
	failOnSave bool
	commits    int
	rollbacks  int

	// beforeLock simula otra transacción que confirma cambios mientras esta espera el lock.
	beforeLock func()
	// calls registra el orden de acceso a productos dentro de la transacción.
	calls []string
}

var errSaveFailed = errors.New("fallo simulado al persistir")

func newStore() *store {
	return &store{
		products:  map[string]*entity.Product{},
		suppliers: map[string]*entity.Supplier{},
		supplies:  map[string]*entity.Supply{},
		sales:     map[string]*entity.Sale{},
		companies: map[string]*entity.Company{},
	}
}

func (s *store) snapshot() map[string]entity.Product {
	out := make(map[string]entity.Product, len(s.products))
	for id, p := range s.products {
		out[id] = *p
	}
	return out
}

func (s *store) restore(snap map[string]entity.Product, supplies map[string]*entity.Supply, sales map[string]*entity.Sale) {
	for id, p := range snap {
		cp := p
		s.products[id] = &cp
	}
	s.supplies = supplies
	s.sales = sales
}

func copySupplies(in map[string]*entity.Supply) map[string]*entity.Supply {
	out := make(map[string]*entity.Supply, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copySales(in map[string]*entity.Sale) map[string]*entity.Sale {
	out := make(map[string]*entity.Sale, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ──── TxRunner ──────────────────────────────────────────────────────────────

// fakeTx ejecuta las transacciones una tras otra, así que no reproduce dos peticiones
// concurrentes. La exclusión real la da ProductRepo.LockByIDs (SELECT ... FOR UPDATE OF p,
// en orden de ID) dentro de postgres.TxRunner; aquí se verifica el orden
// bloquear → validar → escribir y que la validación use las filas bloqueadas.
type fakeTx struct{ s *store }

func (t fakeTx) Run(_ context.Context, fn func(
	productRepo repository.ProductRepository,
	supplyRepo repository.SupplyRepository,
	saleRepo repository.SaleRepository,
) error) error {
	snap := t.s.snapshot()
	supplies, sales := copySupplies(t.s.supplies), copySales(t.s.sales)
	if err := fn(&memProducts{t.s}, &memSupplies{t.s}, &memSales{t.s}); err != nil {
		t.s.restore(snap, supplies, sales)
		t.s.rollbacks++
		return err
	}
	t.s.commits++
	return nil
}

// ──── productos ─────────────────────────────────────────────────────────────

type memProducts struct{ s *store }

func (r *memProducts) Create(_ context.Context, p *entity.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProducts) GetByID(_ context.Context, companyID, id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok || p.CompanyID != companyID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProducts) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProducts) ListByCompany(_ context.Context, companyID string, includeInactive bool, _, _ int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.CompanyID == companyID && (includeInactive || p.IsActive) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProducts) Update(_ context.Context, p *entity.Product) error {
	cur := r.s.products[p.ID]
	cp := *p
	cp.Quantity = cur.Quantity
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProducts) LockByIDs(_ context.Context, companyID string, ids []string) ([]*entity.Product, error) {
	if r.s.beforeLock != nil {
		r.s.beforeLock()
	}
	r.s.calls = append(r.s.calls, "lock")
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	var out []*entity.Product
	seen := map[string]bool{}
	for _, id := range sorted {
		p, ok := r.s.products[id]
		if !ok || p.CompanyID != companyID || seen[id] {
			continue
		}
		seen[id] = true
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memProducts) UpdateQuantity(_ context.Context, productID string, quantity int64) error {
	if quantity < 0 {
		return errors.New("check constraint: quantity >= 0")
	}
	r.s.calls = append(r.s.calls, "update")
	r.s.products[productID].Quantity = quantity
	return nil
}

// ──── suministros ───────────────────────────────────────────────────────────

type memSupplies struct{ s *store }

func (r *memSupplies) Create(_ context.Context, sp *entity.Supply) error {
	if r.s.failOnSave {
		return errSaveFailed
	}
	cp := *sp
	cp.Lines = append([]entity.SupplyLine(nil), sp.Lines...)
	r.s.supplies[sp.ID] = &cp
	return nil
}

func (r *memSupplies) GetByID(_ context.Context, companyID, id string) (*entity.Supply, error) {
	sp, ok := r.s.supplies[id]
	if !ok {
		return nil, nil
	}
	sup := r.s.suppliers[sp.SupplierID]
	if sup == nil || sup.CompanyID != companyID {
		return nil, nil
	}
	cp := *sp
	cp.CompanyID = sup.CompanyID
	cp.SupplierName = sup.Name
	cp.Lines = append([]entity.SupplyLine(nil), sp.Lines...)
	return &cp, nil
}

func (r *memSupplies) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Supply, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *memSupplies) ListByCompany(ctx context.Context, companyID string, _, _ int) ([]*entity.Supply, error) {
	var out []*entity.Supply
	for id := range r.s.supplies {
		if sp, _ := r.GetByID(ctx, companyID, id); sp != nil {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (r *memSupplies) UpdateHeader(_ context.Context, sp *entity.Supply) error {
	cur := r.s.supplies[sp.ID]
	cur.DeliveryDate, cur.InvoiceNumber, cur.Notes = sp.DeliveryDate, sp.InvoiceNumber, sp.Notes
	return nil
}

func (r *memSupplies) Delete(_ context.Context, id string) error {
	delete(r.s.supplies, id)
	return nil
}

// ──── ventas ────────────────────────────────────────────────────────────────

type memSales struct{ s *store }

func (r *memSales) Create(_ context.Context, sl *entity.Sale) error {
	if r.s.failOnSave {
		return errSaveFailed
	}
	cp := *sl
	cp.Lines = append([]entity.SaleLine(nil), sl.Lines...)
	r.s.sales[sl.ID] = &cp
	return nil
}

func (r *memSales) GetByID(_ context.Context, companyID, id string) (*entity.Sale, error) {
	sl, ok := r.s.sales[id]
	if !ok || sl.CompanyID != companyID {
		return nil, nil
	}
	cp := *sl
	cp.Lines = append([]entity.SaleLine(nil), sl.Lines...)
	return &cp, nil
}

func (r *memSales) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *memSales) ListByCompany(ctx context.Context, companyID string, _, _ int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for id := range r.s.sales {
		if sl, _ := r.GetByID(ctx, companyID, id); sl != nil {
			out = append(out, sl)
		}
	}
	return out, nil
}

func (r *memSales) Delete(_ context.Context, id string) error {
	delete(r.s.sales, id)
	return nil
}

// ──── proveedores y empresas ────────────────────────────────────────────────

type memSuppliers struct{ s *store }

func (r *memSuppliers) Create(_ context.Context, sp *entity.Supplier) error {
	cp := *sp
	r.s.suppliers[sp.ID] = &cp
	return nil
}

func (r *memSuppliers) GetByID(_ context.Context, companyID, id string) (*entity.Supplier, error) {
	sp, ok := r.s.suppliers[id]
	if !ok || sp.CompanyID != companyID {
		return nil, nil
	}
	cp := *sp
	return &cp, nil
}

func (r *memSuppliers) GetByTaxID(_ context.Context, companyID, taxID string) (*entity.Supplier, error) {
	for _, sp := range r.s.suppliers {
		if sp.CompanyID == companyID && sp.TaxID == taxID {
			cp := *sp
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSuppliers) ListByCompany(context.Context, string, int, int) ([]*entity.Supplier, error) {
	return nil, nil
}

func (r *memSuppliers) Update(context.Context, *entity.Supplier) error { return nil }

func (r *memSuppliers) Delete(context.Context, string, string) error { return nil }

type memCompanies struct{ s *store }

func (r *memCompanies) Create(_ context.Context, c *entity.Company) error {
	r.s.companies[c.ID] = c
	return nil
}

func (r *memCompanies) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r.s.companies[id], nil
}

func (r *memCompanies) GetByTaxID(context.Context, string) (*entity.Company, error) { return nil, nil }

func (r *memCompanies) GetByName(context.Context, string) (*entity.Company, error) { return nil, nil }

func (r *memCompanies) Update(context.Context, *entity.Company) error { return nil }

func (r *memCompanies) Delete(context.Context, string) error { return nil }
