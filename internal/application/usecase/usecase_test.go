package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/application/usecase"
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/domain/entity"
)

func (d *db) addUser(email string) *entity.User {
	u := &entity.User{ID: uuid.NewString(), Email: email, FirstName: "Nombre", LastName: "Apellido"}
	d.users[u.ID] = u
	return u
}

func (d *db) actor(u *entity.User) access.Actor {
	return access.ActorFromUser(d.users[u.ID])
}

// newCompany crea una empresa vía el caso de uso y devuelve el propietario.
func newCompany(t *testing.T, d *db, taxID, name string) (*entity.User, *dto.CompanyResponse) {
	t.Helper()
	owner := d.addUser(taxID + "@example.com")
	uc := usecase.NewCompanyUseCase(fakeCompanyTx{d}, &memCompanies{d}, &memUsers{d})
	c, err := uc.Create(context.Background(), owner.ID, dto.CreateCompanyRequest{TaxID: taxID, Name: name})
	require.NoError(t, err)
	return owner, c
}

// ──── empresas ──────────────────────────────────────────────────────────────

func TestCompany_CrearConvierteEnPropietario(t *testing.T) {
	d := newDB()
	owner, c := newCompany(t, d, "9001234567", "  Ferretería   Central ")

	assert.Equal(t, "Ferretería Central", c.Name)
	assert.Equal(t, c.ID, d.users[owner.ID].CompanyID)
	assert.True(t, d.users[owner.ID].IsCompanyOwner)
	assert.Equal(t, "Nombre Apellido (9001234567@example.com)", c.Owner)
	assert.Equal(t, access.RoleOwner, d.actor(owner).Role)
}

func TestCompany_UsuarioAfiliadoNoPuedeCrearOtra(t *testing.T) {
	d := newDB()
	owner, _ := newCompany(t, d, "9001234567", "Uno")
	uc := usecase.NewCompanyUseCase(fakeCompanyTx{d}, &memCompanies{d}, &memUsers{d})

	_, err := uc.Create(context.Background(), owner.ID, dto.CreateCompanyRequest{TaxID: "9001234568", Name: "Dos"})
	assert.ErrorIs(t, err, domain.ErrAlreadyAffiliated)
	assert.Len(t, d.companies, 1)
}

func TestCompany_TaxIDDuplicadoEInvalido(t *testing.T) {
	d := newDB()
	newCompany(t, d, "9001234567", "Uno")
	other := d.addUser("otro@example.com")
	uc := usecase.NewCompanyUseCase(fakeCompanyTx{d}, &memCompanies{d}, &memUsers{d})

	_, err := uc.Create(context.Background(), other.ID, dto.CreateCompanyRequest{TaxID: "9001234567", Name: "Dos"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(context.Background(), other.ID, dto.CreateCompanyRequest{TaxID: "12345", Name: "Dos"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "tax_id")
	assert.False(t, d.users[other.ID].Affiliated())
}

func TestCompany_FalloEnAfiliacionRevierteEmpresa(t *testing.T) {
	d := newDB()
	u := d.addUser("ana@example.com")
	d.failAffiliation = true
	uc := usecase.NewCompanyUseCase(fakeCompanyTx{d}, &memCompanies{d}, &memUsers{d})

	_, err := uc.Create(context.Background(), u.ID, dto.CreateCompanyRequest{TaxID: "9001234567", Name: "Uno"})
	require.Error(t, err)
	assert.Empty(t, d.companies)
	assert.False(t, d.users[u.ID].Affiliated())
}

func TestCompany_SoloPropietarioYSoloSuEmpresa(t *testing.T) {
	d := newDB()
	ownerA, a := newCompany(t, d, "9001234567", "A")
	_, b := newCompany(t, d, "9001234568", "B")
	uc := usecase.NewCompanyUseCase(fakeCompanyTx{d}, &memCompanies{d}, &memUsers{d})
	ctx := context.Background()

	got, err := uc.GetByID(ctx, d.actor(ownerA), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)

	_, err = uc.GetByID(ctx, d.actor(ownerA), b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	emp := d.addUser("emp@example.com")
	emp.CompanyID = a.ID
	_, err = uc.GetByID(ctx, d.actor(emp), a.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	newName := "A Renombrada"
	upd, err := uc.Update(ctx, d.actor(ownerA), a.ID, dto.UpdateCompanyRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, upd.Name)

	require.NoError(t, uc.Delete(ctx, d.actor(ownerA), a.ID))
	assert.False(t, d.users[ownerA.ID].Affiliated())
	assert.False(t, d.users[emp.ID].Affiliated())
}

// ──── empleados ─────────────────────────────────────────────────────────────

func TestEmployee_MaquinaDeEstados(t *testing.T) {
	d := newDB()
	owner, c := newCompany(t, d, "9001234567", "A")
	otherOwner, _ := newCompany(t, d, "9001234568", "B")
	uc := usecase.NewEmployeeUseCase(&memUsers{d}, &memCompanies{d})
	ctx := context.Background()
	boss := d.actor(owner)

	emp := d.addUser("emp@example.com")

	// unaffiliated → employee
	out, err := uc.Add(ctx, boss, dto.AddEmployeeRequest{Email: " EMP@example.com"})
	require.NoError(t, err)
	assert.Equal(t, emp.ID, out.ID)
	assert.Equal(t, c.ID, d.users[emp.ID].CompanyID)
	assert.Equal(t, access.RoleEmployee, d.actor(emp).Role)

	// ya afiliado (misma u otra empresa)
	_, err = uc.Add(ctx, boss, dto.AddEmployeeRequest{Email: "emp@example.com"})
	assert.ErrorIs(t, err, domain.ErrAlreadyAffiliated)
	_, err = uc.Add(ctx, boss, dto.AddEmployeeRequest{Email: otherOwner.Email})
	assert.ErrorIs(t, err, domain.ErrAlreadyAffiliated)

	// email desconocido
	_, err = uc.Add(ctx, boss, dto.AddEmployeeRequest{Email: "nadie@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	// un empleado no administra
	_, err = uc.Add(ctx, d.actor(emp), dto.AddEmployeeRequest{Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	list, err := uc.List(ctx, boss)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "emp@example.com", list[0].Email)

	// el propietario no se elimina por esta vía
	assert.ErrorIs(t, uc.Remove(ctx, boss, owner.ID), domain.ErrOwnerNotRemovable)
	// usuario de otra empresa
	assert.ErrorIs(t, uc.Remove(ctx, boss, otherOwner.ID), domain.ErrNotFound)

	// employee → unaffiliated
	require.NoError(t, uc.Remove(ctx, boss, emp.ID))
	assert.False(t, d.users[emp.ID].Affiliated())
	assert.Equal(t, access.RoleNone, d.actor(emp).Role)
}

// Otra petición afilia al usuario entre la lectura y la escritura: la afiliación
// condicional rechaza la segunda y la empresa creada se revierte.
func TestCompany_AfiliacionConcurrenteNoDejaEmpresaSinPropietario(t *testing.T) {
	d := newDB()
	_, other := newCompany(t, d, "9001234567", "Otra")
	u := d.addUser("ana@example.com")
	d.beforeAffiliate = func(userID string) {
		d.users[userID].CompanyID = other.ID
	}
	uc := usecase.NewCompanyUseCase(fakeCompanyTx{d}, &memCompanies{d}, &memUsers{d})

	_, err := uc.Create(context.Background(), u.ID, dto.CreateCompanyRequest{TaxID: "9001234568", Name: "Nueva"})
	assert.ErrorIs(t, err, domain.ErrAlreadyAffiliated)
	require.Len(t, d.companies, 1)
	for id := range d.companies {
		owner, err := (&memUsers{d}).GetOwner(context.Background(), id)
		require.NoError(t, err)
		assert.NotNil(t, owner, "empresa %s sin propietario", id)
	}
	assert.False(t, d.users[u.ID].IsCompanyOwner)
}

func TestEmployee_AgregarUsuarioQueCreoSuEmpresaEnParalelo(t *testing.T) {
	d := newDB()
	owner, _ := newCompany(t, d, "9001234567", "A")
	u := d.addUser("emp@example.com")
	d.beforeAffiliate = func(userID string) {
		d.users[userID].CompanyID, d.users[userID].IsCompanyOwner = "empresa-propia", true
	}
	uc := usecase.NewEmployeeUseCase(&memUsers{d}, &memCompanies{d})

	_, err := uc.Add(context.Background(), d.actor(owner), dto.AddEmployeeRequest{Email: "emp@example.com"})
	assert.ErrorIs(t, err, domain.ErrAlreadyAffiliated)
	assert.Equal(t, "empresa-propia", d.users[u.ID].CompanyID)
	assert.True(t, d.users[u.ID].IsCompanyOwner)
}

// ──── almacén ───────────────────────────────────────────────────────────────

func TestStorage_UnoPorEmpresa(t *testing.T) {
	d := newDB()
	owner, _ := newCompany(t, d, "9001234567", "A")
	uc := usecase.NewStorageUseCase(&memStorages{d})
	ctx := context.Background()

	s, err := uc.Create(ctx, d.actor(owner), dto.CreateStorageRequest{Address: "Calle 1 # 2-3"})
	require.NoError(t, err)

	_, err = uc.Create(ctx, d.actor(owner), dto.CreateStorageRequest{Address: "Otra"})
	assert.ErrorIs(t, err, domain.ErrStorageExists)

	mine, err := uc.Mine(ctx, d.actor(owner))
	require.NoError(t, err)
	assert.Equal(t, s.ID, mine.ID)

	ownerB, _ := newCompany(t, d, "9001234568", "B")
	_, err = uc.GetByID(ctx, d.actor(ownerB), s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.Mine(ctx, d.actor(ownerB))
	assert.ErrorIs(t, err, domain.ErrStorageMissing)

	require.NoError(t, uc.Delete(ctx, d.actor(owner), s.ID))
	assert.Empty(t, d.storages)
}

// ──── proveedores ───────────────────────────────────────────────────────────

func TestSupplier_TaxIDUnicoPorEmpresa(t *testing.T) {
	d := newDB()
	ownerA, _ := newCompany(t, d, "9001234567", "A")
	ownerB, _ := newCompany(t, d, "9001234568", "B")
	uc := usecase.NewSupplierUseCase(&memSuppliers{d})
	ctx := context.Background()
	in := dto.CreateSupplierRequest{Name: "Distribuidora", TaxID: "800123456789"}

	a, err := uc.Create(ctx, d.actor(ownerA), in)
	require.NoError(t, err)
	_, err = uc.Create(ctx, d.actor(ownerA), in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.Create(ctx, d.actor(ownerB), in)
	assert.NoError(t, err, "el mismo tax id es válido en otra empresa")

	_, err = uc.GetByID(ctx, d.actor(ownerB), a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, d.actor(ownerB), a.ID), domain.ErrNotFound)

	list, err := uc.List(ctx, d.actor(ownerA), dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit)
}

// ──── productos ─────────────────────────────────────────────────────────────

func TestProduct_CicloDeVida(t *testing.T) {
	d := newDB()
	owner, _ := newCompany(t, d, "9001234567", "A")
	actor := d.actor(owner)
	uc := usecase.NewProductUseCase(&memProducts{d}, &memStorages{d})
	ctx := context.Background()
	in := dto.CreateProductRequest{
		SKU:           "P001",
		Name:          "Martillo",
		PurchasePrice: decimal.NewFromInt(100),
		SalePrice:     decimal.NewFromInt(150),
	}

	_, err := uc.Create(ctx, actor, in)
	assert.ErrorIs(t, err, domain.ErrStorageMissing)

	_, err = usecase.NewStorageUseCase(&memStorages{d}).Create(ctx, actor, dto.CreateStorageRequest{Address: "Calle 1"})
	require.NoError(t, err)

	p, err := uc.Create(ctx, actor, in)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Quantity)
	assert.True(t, p.IsActive)

	_, err = uc.Create(ctx, actor, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	bad := in
	bad.SKU = "P002"
	bad.SalePrice = decimal.NewFromInt(-1)
	_, err = uc.Create(ctx, actor, bad)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "sale_price")

	require.NoError(t, uc.Deactivate(ctx, actor, p.ID))
	list, err := uc.List(ctx, actor, dto.ProductListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	list, err = uc.List(ctx, actor, dto.ProductListRequest{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.False(t, list.Items[0].IsActive)

	ownerB, _ := newCompany(t, d, "9001234568", "B")
	_, err = uc.GetByID(ctx, d.actor(ownerB), p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_UpdateNoTocaCantidad(t *testing.T) {
	d := newDB()
	owner, _ := newCompany(t, d, "9001234567", "A")
	actor := d.actor(owner)
	ctx := context.Background()
	_, err := usecase.NewStorageUseCase(&memStorages{d}).Create(ctx, actor, dto.CreateStorageRequest{Address: "Calle 1"})
	require.NoError(t, err)
	uc := usecase.NewProductUseCase(&memProducts{d}, &memStorages{d})
	p, err := uc.Create(ctx, actor, dto.CreateProductRequest{SKU: "P1", Name: "Clavo", PurchasePrice: decimal.NewFromInt(1), SalePrice: decimal.NewFromInt(2)})
	require.NoError(t, err)
	d.products[p.ID].Quantity = 40

	price := decimal.RequireFromString("2.555")
	out, err := uc.Update(ctx, actor, p.ID, dto.UpdateProductRequest{SalePrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "2.56", out.SalePrice.String())
	assert.Equal(t, int64(40), d.products[p.ID].Quantity)
}
