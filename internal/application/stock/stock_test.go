package stock_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/application/stock"
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
	"github.com/jhoicas/crm-lite/pkg/logger"
)

const (
	companyA = "company-a"
	companyB = "company-b"
)

var (
	actorA = access.Actor{UserID: "user-a", CompanyID: companyA, Role: access.RoleEmployee}
	actorB = access.Actor{UserID: "user-b", CompanyID: companyB, Role: access.RoleOwner}
)

type fixture struct {
	s        *store
	supplies *stock.SupplyUseCase
	sales    *stock.SaleUseCase
	logs     *bytes.Buffer
}

func newFixture() *fixture {
	s := newStore()
	logs := &bytes.Buffer{}
	log := logger.NewWriter(logs, "debug")
	return &fixture{
		s:        s,
		supplies: stock.NewSupplyUseCase(fakeTx{s}, &memSupplies{s}, &memSuppliers{s}, log),
		sales:    stock.NewSaleUseCase(fakeTx{s}, &memSales{s}, log),
		logs:     logs,
	}
}

func (f *fixture) addSupplier(companyID string) string {
	id := uuid.NewString()
	f.s.suppliers[id] = &entity.Supplier{ID: id, CompanyID: companyID, Name: "Proveedor " + companyID, TaxID: "9001234567"}
	return id
}

func (f *fixture) addProduct(companyID, sku string, qty int64, purchase, sale int64) string {
	id := uuid.NewString()
	f.s.products[id] = &entity.Product{
		ID:            id,
		CompanyID:     companyID,
		SKU:           sku,
		Name:          "Producto " + sku,
		Quantity:      qty,
		PurchasePrice: decimal.NewFromInt(purchase),
		SalePrice:     decimal.NewFromInt(sale),
		IsActive:      true,
	}
	return id
}

func (f *fixture) qty(id string) int64 { return f.s.products[id].Quantity }

func supplyReq(supplierID string, lines ...dto.LineRequest) dto.CreateSupplyRequest {
	return dto.CreateSupplyRequest{
		SupplierID:    supplierID,
		DeliveryDate:  "2026-03-01",
		InvoiceNumber: "F-001",
		Products:      lines,
	}
}

func saleReq(lines ...dto.LineRequest) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{BuyerName: "Cliente", Products: lines}
}

func line(productID string, qty int64) dto.LineRequest {
	return dto.LineRequest{ProductID: productID, Quantity: qty}
}

// ──── escenario completo ────────────────────────────────────────────────────

func TestEscenario_P001_SuministroVentaYEliminacion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	supplier := f.addSupplier(companyA)
	p001 := f.addProduct(companyA, "P001", 0, 100, 150)

	sup, err := f.supplies.Create(ctx, actorA, supplyReq(supplier, line(p001, 10)))
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.qty(p001))
	assert.Equal(t, "1000", sup.TotalCost.String())
	assert.Equal(t, "Proveedor "+companyA, sup.SupplierName)

	sale, err := f.sales.Create(ctx, actorA, saleReq(line(p001, 4)))
	require.NoError(t, err)
	assert.Equal(t, int64(6), f.qty(p001))
	assert.Equal(t, "600", sale.TotalAmount.String())
	assert.Equal(t, "600", sale.TotalWithDiscount.String())
	assert.Equal(t, "200", sale.Profit.String())

	require.NoError(t, f.sales.Delete(ctx, actorA, sale.ID))
	assert.Equal(t, int64(10), f.qty(p001))
	assert.Empty(t, f.s.sales)
}

// Dos líneas, una sin stock suficiente: se rechaza todo y la otra línea no se aplica.
func TestVenta_UnaLineaSinStockRechazaTodo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ok := f.addProduct(companyA, "OK", 10, 1, 2)
	short := f.addProduct(companyA, "SHORT", 1, 1, 2)

	_, err := f.sales.Create(ctx, actorA, saleReq(line(ok, 3), line(short, 5)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Contains(t, stockErr.Items, short)
	assert.NotContains(t, stockErr.Items, ok)

	assert.Equal(t, int64(10), f.qty(ok))
	assert.Equal(t, int64(1), f.qty(short))
	assert.Empty(t, f.s.sales)
	assert.Equal(t, 1, f.s.rollbacks)
}

func TestVenta_FalloAlPersistirRevierteCantidades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct(companyA, "P", 10, 1, 2)
	f.s.failOnSave = true

	_, err := f.sales.Create(ctx, actorA, saleReq(line(p, 4)))
	assert.ErrorIs(t, err, errSaveFailed)
	assert.Equal(t, int64(10), f.qty(p))

	supplier := f.addSupplier(companyA)
	_, err = f.supplies.Create(ctx, actorA, supplyReq(supplier, line(p, 4)))
	assert.ErrorIs(t, err, errSaveFailed)
	assert.Equal(t, int64(10), f.qty(p))
}

func TestVenta_DescuentoFueraDeRango(t *testing.T) {
	f := newFixture()
	p := f.addProduct(companyA, "P", 10, 1, 2)
	in := saleReq(line(p, 1))
	in.Discount = decimal.NewFromInt(101)

	_, err := f.sales.Create(context.Background(), actorA, in)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "discount")
	assert.Equal(t, 0, f.s.commits+f.s.rollbacks, "la validación ocurre antes de abrir la transacción")
}

func TestVenta_FechaPorDefectoYDescuento(t *testing.T) {
	f := newFixture()
	p := f.addProduct(companyA, "P", 10, 30, 50)
	in := saleReq(line(p, 2))
	in.Discount = decimal.NewFromInt(10)

	before := time.Now()
	out, err := f.sales.Create(context.Background(), actorA, in)
	require.NoError(t, err)
	assert.False(t, out.SaleDate.Before(before))
	assert.Equal(t, "100", out.TotalAmount.String())
	assert.Equal(t, "10", out.DiscountAmount.String())
	assert.Equal(t, "90", out.TotalWithDiscount.String())
	assert.Equal(t, "60", out.TotalCost.String())
	assert.Equal(t, "30", out.Profit.String())
}

// ──── bloqueo antes de validar ──────────────────────────────────────────────

func TestVenta_BloqueaAntesDeValidarYEscribir(t *testing.T) {
	f := newFixture()
	p := f.addProduct(companyA, "P", 5, 10, 20)

	_, err := f.sales.Create(context.Background(), actorA, saleReq(line(p, 2)))
	require.NoError(t, err)
	assert.Equal(t, []string{"lock", "update"}, f.s.calls)
}

// Otra venta confirma mientras esta espera el lock: la validación usa la fila bloqueada,
// no una lectura anterior, y la venta se rechaza sin escribir.
func TestVenta_ValidaContraLaFilaBloqueada(t *testing.T) {
	f := newFixture()
	p := f.addProduct(companyA, "P", 5, 10, 20)
	f.s.beforeLock = func() { f.s.products[p].Quantity = 1 }

	_, err := f.sales.Create(context.Background(), actorA, saleReq(line(p, 3)))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, []string{"lock"}, f.s.calls)
	assert.Equal(t, 0, f.s.commits)
}

// ──── eliminación de suministros ────────────────────────────────────────────

func TestEliminarSuministro_RecorteEnCeroGeneraAdvertencia(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	supplier := f.addSupplier(companyA)
	p := f.addProduct(companyA, "P", 0, 10, 20)

	sup, err := f.supplies.Create(ctx, actorA, supplyReq(supplier, line(p, 5)))
	require.NoError(t, err)
	_, err = f.sales.Create(ctx, actorA, saleReq(line(p, 3)))
	require.NoError(t, err)

	res, err := f.supplies.Delete(ctx, actorA, sup.ID)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, p, res.Warnings[0].ProductID)
	assert.Equal(t, int64(5), res.Warnings[0].Reverted)
	assert.Equal(t, int64(2), res.Warnings[0].Available)
	assert.Equal(t, int64(0), f.qty(p))
	assert.Empty(t, f.s.supplies)

	assert.Contains(t, f.logs.String(), `"level":"warn"`)
	assert.Contains(t, f.logs.String(), "reversión de suministro recortada en cero")
	assert.Contains(t, f.logs.String(), `"company_id":"`+companyA+`"`)
	assert.Contains(t, f.logs.String(), `"user_id":"`+actorA.UserID+`"`)
}

// El logger de la petición viaja en el contexto: las líneas del caso de uso llevan su request_id.
func TestLogs_UsanElLoggerDeLaPeticion(t *testing.T) {
	f := newFixture()
	reqLogs := &bytes.Buffer{}
	ctx := logger.NewWriter(reqLogs, "debug").ForRequest("req-123").IntoContext(context.Background())
	supplier := f.addSupplier(companyA)
	p := f.addProduct(companyA, "P", 0, 10, 20)

	_, err := f.supplies.Create(ctx, actorA, supplyReq(supplier, line(p, 5)))
	require.NoError(t, err)

	assert.Contains(t, reqLogs.String(), `"request_id":"req-123"`)
	assert.Contains(t, reqLogs.String(), `"company_id":"`+companyA+`"`)
	assert.Contains(t, reqLogs.String(), "suministro registrado")
	assert.Empty(t, f.logs.String())
}

func TestEliminarSuministro_SinRecorteRestauraCantidad(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	supplier := f.addSupplier(companyA)
	p1 := f.addProduct(companyA, "P1", 7, 10, 20)
	p2 := f.addProduct(companyA, "P2", 0, 10, 20)

	sup, err := f.supplies.Create(ctx, actorA, supplyReq(supplier, line(p1, 3), line(p2, 12)))
	require.NoError(t, err)

	res, err := f.supplies.Delete(ctx, actorA, sup.ID)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, int64(7), f.qty(p1))
	assert.Equal(t, int64(0), f.qty(p2))
}

// ──── precios congelados ────────────────────────────────────────────────────

func TestPreciosCongeladosTrasCambioDeProducto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	supplier := f.addSupplier(companyA)
	p := f.addProduct(companyA, "P", 0, 100, 150)

	sup, err := f.supplies.Create(ctx, actorA, supplyReq(supplier, line(p, 10)))
	require.NoError(t, err)
	sale, err := f.sales.Create(ctx, actorA, saleReq(line(p, 2)))
	require.NoError(t, err)

	f.s.products[p].PurchasePrice = decimal.NewFromInt(999)
	f.s.products[p].SalePrice = decimal.NewFromInt(1)

	gotSupply, err := f.supplies.GetByID(ctx, actorA, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", gotSupply.Products[0].PurchasePrice.String())
	assert.Equal(t, sup.TotalCost.String(), gotSupply.TotalCost.String())

	gotSale, err := f.sales.GetByID(ctx, actorA, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "150", gotSale.Products[0].SalePrice.String())
	assert.Equal(t, sale.Profit.String(), gotSale.Profit.String())
}

// ──── aislamiento entre empresas ────────────────────────────────────────────

func TestAislamientoEntreEmpresas(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	supplierA := f.addSupplier(companyA)
	productA := f.addProduct(companyA, "A1", 0, 10, 20)
	f.addSupplier(companyB)

	sup, err := f.supplies.Create(ctx, actorA, supplyReq(supplierA, line(productA, 5)))
	require.NoError(t, err)
	sale, err := f.sales.Create(ctx, actorA, saleReq(line(productA, 1)))
	require.NoError(t, err)

	// B no puede usar productos ni proveedores de A como destino de líneas.
	_, err = f.sales.Create(ctx, actorB, saleReq(line(productA, 1)))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.supplies.Create(ctx, actorB, supplyReq(supplierA, line(productA, 1)))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Ni ver ni eliminar sus suministros/ventas.
	_, err = f.supplies.GetByID(ctx, actorB, sup.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.sales.GetByID(ctx, actorB, sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.supplies.Delete(ctx, actorB, sup.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.sales.Delete(ctx, actorB, sale.ID), domain.ErrNotFound)

	list, err := f.sales.List(ctx, actorB, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	assert.Equal(t, int64(4), f.qty(productA))
}

func TestUsuarioSinEmpresaNoOpera(t *testing.T) {
	f := newFixture()
	loner := access.Actor{UserID: "u"}

	_, err := f.sales.Create(context.Background(), loner, saleReq(line(uuid.NewString(), 1)))
	assert.ErrorIs(t, err, domain.ErrNoCompany)
	_, err = f.supplies.List(context.Background(), loner, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNoCompany)
}

// ──── cabecera ──────────────────────────────────────────────────────────────

func TestActualizarCabeceraNoTocaLineas(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	supplier := f.addSupplier(companyA)
	p := f.addProduct(companyA, "P", 0, 10, 20)
	sup, err := f.supplies.Create(ctx, actorA, supplyReq(supplier, line(p, 3)))
	require.NoError(t, err)

	notes, date := "entregado en portería", "2026-04-02"
	out, err := f.supplies.UpdateHeader(ctx, actorA, sup.ID, dto.UpdateSupplyRequest{Notes: &notes, DeliveryDate: &date})
	require.NoError(t, err)
	assert.Equal(t, notes, out.Notes)
	assert.Equal(t, date, out.DeliveryDate)
	require.Len(t, out.Products, 1)
	assert.Equal(t, int64(3), out.Products[0].Quantity)
	assert.Equal(t, int64(3), f.qty(p))

	bad := "02/04/2026"
	_, err = f.supplies.UpdateHeader(ctx, actorA, sup.ID, dto.UpdateSupplyRequest{DeliveryDate: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──── comprobante ───────────────────────────────────────────────────────────

type fakeReceipt struct {
	company *entity.Company
	sale    *entity.Sale
}

func (g *fakeReceipt) SaleReceipt(_ context.Context, c *entity.Company, s *entity.Sale) ([]byte, error) {
	g.company, g.sale = c, s
	return []byte("%PDF-1.3"), nil
}

func TestComprobanteDeVenta(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.s.companies[companyA] = &entity.Company{ID: companyA, Name: "Empresa A", TaxID: "9001234567"}
	p := f.addProduct(companyA, "P", 5, 1, 2)
	sale, err := f.sales.Create(ctx, actorA, saleReq(line(p, 1)))
	require.NoError(t, err)

	gen := &fakeReceipt{}
	uc := stock.NewReceiptUseCase(&memSales{f.s}, &memCompanies{f.s}, gen)

	pdf, name, err := uc.SaleReceipt(ctx, actorA, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.3"), pdf)
	assert.Contains(t, name, "venta_")
	assert.Equal(t, "Empresa A", gen.company.Name)
	assert.Equal(t, sale.ID, gen.sale.ID)

	_, _, err = uc.SaleReceipt(ctx, actorB, sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
