package usecase_test

import (
	"context"
	"errors"
	"sort"

	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/internal/domain/repository"
)

type db struct {
	companies map[string]*entity.Company
	users     map[string]*entity.User
	storages  map[string]*entity.Storage
	suppliers map[string]*entity.Supplier
	products  map[string]*entity.Product

	failAffiliation bool
	// beforeAffiliate se ejecuta entre la lectura del caso de uso y la escritura condicional,
	// como lo haría otra petición concurrente.
	beforeAffiliate func(userID string)
}

func newDB() *db {
	return &db{
		companies: map[string]*entity.Company{},
		users:     map[string]*entity.User{},
		storages:  map[string]*entity.Storage{},
		suppliers: map[string]*entity.Supplier{},
		products:  map[string]*entity.Product{},
	}
}

// ──── CompanyTxRunner ───────────────────────────────────────────────────────

type fakeCompanyTx struct{ d *db }

func (t fakeCompanyTx) RunCompany(_ context.Context, fn func(repository.CompanyRepository, repository.UserRepository) error) error {
	companies := make(map[string]*entity.Company, len(t.d.companies))
	for k, v := range t.d.companies {
		companies[k] = v
	}
	users := make(map[string]entity.User, len(t.d.users))
	for k, v := range t.d.users {
		users[k] = *v
	}
	if err := fn(&memCompanies{t.d}, &memUsers{t.d}); err != nil {
		t.d.companies = companies
		for k, v := range users {
			cp := v
			t.d.users[k] = &cp
		}
		return err
	}
	return nil
}

// ──── empresas ──────────────────────────────────────────────────────────────

type memCompanies struct{ d *db }

func (r *memCompanies) Create(_ context.Context, c *entity.Company) error {
	cp := *c
	r.d.companies[c.ID] = &cp
	return nil
}

func (r *memCompanies) GetByID(_ context.Context, id string) (*entity.Company, error) {
	if c, ok := r.d.companies[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *memCompanies) GetByTaxID(_ context.Context, taxID string) (*entity.Company, error) {
	for _, c := range r.d.companies {
		if c.TaxID == taxID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memCompanies) GetByName(_ context.Context, name string) (*entity.Company, error) {
	for _, c := range r.d.companies {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memCompanies) Update(_ context.Context, c *entity.Company) error {
	cp := *c
	r.d.companies[c.ID] = &cp
	return nil
}

func (r *memCompanies) Delete(_ context.Context, id string) error {
	delete(r.d.companies, id)
	for _, u := range r.d.users {
		if u.CompanyID == id {
			u.CompanyID, u.IsCompanyOwner = "", false
		}
	}
	return nil
}

// ──── usuarios ──────────────────────────────────────────────────────────────

type memUsers struct{ d *db }

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	cp := *u
	r.d.users[u.ID] = &cp
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := r.d.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.d.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUsers) GetOwner(_ context.Context, companyID string) (*entity.User, error) {
	for _, u := range r.d.users {
		if u.CompanyID == companyID && u.IsCompanyOwner {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUsers) ListEmployees(_ context.Context, companyID string) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.d.users {
		if u.CompanyID == companyID && !u.IsCompanyOwner {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *memUsers) Affiliate(_ context.Context, userID, companyID string, owner bool) error {
	if r.d.failAffiliation {
		return errors.New("fallo simulado")
	}
	if r.d.beforeAffiliate != nil {
		r.d.beforeAffiliate(userID)
	}
	u, ok := r.d.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.CompanyID != "" {
		return domain.ErrAlreadyAffiliated
	}
	u.CompanyID, u.IsCompanyOwner = companyID, owner
	return nil
}

func (r *memUsers) Unaffiliate(_ context.Context, userID, companyID string) error {
	u, ok := r.d.users[userID]
	if !ok || u.CompanyID != companyID || u.IsCompanyOwner {
		return domain.ErrNotFound
	}
	u.CompanyID, u.IsCompanyOwner = "", false
	return nil
}

// ──── almacenes ─────────────────────────────────────────────────────────────

type memStorages struct{ d *db }

func (r *memStorages) Create(_ context.Context, s *entity.Storage) error {
	cp := *s
	r.d.storages[s.ID] = &cp
	return nil
}

func (r *memStorages) GetByCompany(_ context.Context, companyID string) (*entity.Storage, error) {
	for _, s := range r.d.storages {
		if s.CompanyID == companyID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memStorages) GetByID(_ context.Context, companyID, id string) (*entity.Storage, error) {
	s, ok := r.d.storages[id]
	if !ok || s.CompanyID != companyID {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memStorages) Update(_ context.Context, s *entity.Storage) error {
	cp := *s
	r.d.storages[s.ID] = &cp
	return nil
}

func (r *memStorages) Delete(_ context.Context, _ string, id string) error {
	delete(r.d.storages, id)
	return nil
}

// ──── proveedores ───────────────────────────────────────────────────────────

type memSuppliers struct{ d *db }

func (r *memSuppliers) Create(_ context.Context, s *entity.Supplier) error {
	cp := *s
	r.d.suppliers[s.ID] = &cp
	return nil
}

func (r *memSuppliers) GetByID(_ context.Context, companyID, id string) (*entity.Supplier, error) {
	s, ok := r.d.suppliers[id]
	if !ok || s.CompanyID != companyID {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSuppliers) GetByTaxID(_ context.Context, companyID, taxID string) (*entity.Supplier, error) {
	for _, s := range r.d.suppliers {
		if s.CompanyID == companyID && s.TaxID == taxID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSuppliers) ListByCompany(_ context.Context, companyID string, _, _ int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	for _, s := range r.d.suppliers {
		if s.CompanyID == companyID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSuppliers) Update(_ context.Context, s *entity.Supplier) error {
	cp := *s
	r.d.suppliers[s.ID] = &cp
	return nil
}

func (r *memSuppliers) Delete(_ context.Context, _ string, id string) error {
	delete(r.d.suppliers, id)
	return nil
}

// ──── productos ─────────────────────────────────────────────────────────────

type memProducts struct{ d *db }

func (r *memProducts) Create(_ context.Context, p *entity.Product) error {
	cp := *p
	r.d.products[p.ID] = &cp
	return nil
}

func (r *memProducts) GetByID(_ context.Context, companyID, id string) (*entity.Product, error) {
	p, ok := r.d.products[id]
	if !ok || p.CompanyID != companyID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProducts) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.d.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProducts) ListByCompany(_ context.Context, companyID string, includeInactive bool, _, _ int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.d.products {
		if p.CompanyID == companyID && (includeInactive || p.IsActive) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProducts) Update(_ context.Context, p *entity.Product) error {
	cp := *p
	cp.Quantity = r.d.products[p.ID].Quantity
	r.d.products[p.ID] = &cp
	return nil
}

func (r *memProducts) LockByIDs(context.Context, string, []string) ([]*entity.Product, error) {
	return nil, nil
}

func (r *memProducts) UpdateQuantity(_ context.Context, id string, qty int64) error {
	r.d.products[id].Quantity = qty
	return nil
}
