package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/crm-lite/internal/application/analytics"
	"github.com/jhoicas/crm-lite/internal/application/auth"
	"github.com/jhoicas/crm-lite/internal/application/stock"
	"github.com/jhoicas/crm-lite/internal/application/usecase"
	"github.com/jhoicas/crm-lite/internal/domain/access"
)

// Pinger lo cumple *pgxpool.Pool; se usa en /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CompanyUC   *usecase.CompanyUseCase
	StorageUC   *usecase.StorageUseCase
	EmployeeUC  *usecase.EmployeeUseCase
	SupplierUC  *usecase.SupplierUseCase
	ProductUC   *usecase.ProductUseCase
	SupplyUC    *stock.SupplyUseCase
	SaleUC      *stock.SaleUseCase
	ReceiptUC   *stock.ReceiptUseCase
	MarginsUC   *appanalytics.MarginsUseCase
	DashboardUC *appanalytics.DashboardUseCase
	Users       UserLoader
	DB          Pinger
	Tokens      TokenVerifier
}

// secured registra rutas que exigen token y actor resuelto. La cadena se monta por ruta y
// no sobre el prefijo /api, así una ruta inexistente responde 404 y no 401.
type secured struct {
	r     fiber.Router
	chain []fiber.Handler
}

func (s secured) with(h []fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(s.chain)+len(h))
	return append(append(out, s.chain...), h...)
}

func (s secured) Get(path string, h ...fiber.Handler)    { s.r.Get(path, s.with(h)...) }
func (s secured) Post(path string, h ...fiber.Handler)   { s.r.Post(path, s.with(h)...) }
func (s secured) Put(path string, h ...fiber.Handler)    { s.r.Put(path, s.with(h)...) }
func (s secured) Patch(path string, h ...fiber.Handler)  { s.r.Patch(path, s.with(h)...) }
func (s secured) Delete(path string, h ...fiber.Handler) { s.r.Delete(path, s.with(h)...) }

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.DB))

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas: token válido + empresa y rol releídos de la DB.
	protected := secured{r: api, chain: []fiber.Handler{AuthMiddleware(deps.Tokens), ResolveActor(deps.Users)}}
	protected.Get("/auth/me", authHandler.Me)

	companyHandler := NewCompanyHandler(deps.CompanyUC)
	protected.Post("/companies", companyHandler.Create)

	// Solo propietario
	owner := RequireCapability(access.Administer)
	protected.Get("/companies/:id", owner, companyHandler.GetByID)
	protected.Put("/companies/:id", owner, companyHandler.Update)
	protected.Delete("/companies/:id", owner, companyHandler.Delete)

	storageHandler := NewStorageHandler(deps.StorageUC)
	protected.Post("/storages", owner, storageHandler.Create)
	protected.Get("/storages/:id", owner, storageHandler.GetByID)
	protected.Put("/storages/:id", owner, storageHandler.Update)
	protected.Delete("/storages/:id", owner, storageHandler.Delete)

	employeeHandler := NewEmployeeHandler(deps.EmployeeUC)
	protected.Post("/employees", owner, employeeHandler.Add)
	protected.Get("/employees", owner, employeeHandler.List)
	protected.Delete("/employees/:id", owner, employeeHandler.Remove)

	// Empleados (el propietario incluido)
	staff := RequireCapability(access.Operate)
	protected.Get("/storages", staff, storageHandler.Mine)

	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	protected.Post("/suppliers", staff, supplierHandler.Create)
	protected.Get("/suppliers", staff, supplierHandler.List)
	protected.Get("/suppliers/:id", staff, supplierHandler.GetByID)
	protected.Put("/suppliers/:id", staff, supplierHandler.Update)
	protected.Delete("/suppliers/:id", staff, supplierHandler.Delete)

	productHandler := NewProductHandler(deps.ProductUC)
	protected.Post("/products", staff, productHandler.Create)
	protected.Get("/products", staff, productHandler.List)
	protected.Get("/products/:id", staff, productHandler.GetByID)
	protected.Put("/products/:id", staff, productHandler.Update)
	protected.Delete("/products/:id", staff, productHandler.Deactivate)

	supplyHandler := NewSupplyHandler(deps.SupplyUC)
	protected.Post("/supplies", staff, supplyHandler.Create)
	protected.Get("/supplies", staff, supplyHandler.List)
	protected.Get("/supplies/:id", staff, supplyHandler.GetByID)
	protected.Patch("/supplies/:id", staff, supplyHandler.UpdateHeader)
	protected.Delete("/supplies/:id", staff, supplyHandler.Delete)

	saleHandler := NewSaleHandler(deps.SaleUC, deps.ReceiptUC)
	protected.Post("/sales", staff, saleHandler.Create)
	protected.Get("/sales", staff, saleHandler.List)
	protected.Get("/sales/:id", staff, saleHandler.GetByID)
	protected.Delete("/sales/:id", staff, saleHandler.Delete)
	protected.Get("/sales/:id/receipt", staff, saleHandler.Receipt)

	if deps.MarginsUC != nil && deps.DashboardUC != nil {
		analyticsHandler := NewAnalyticsHandler(deps.MarginsUC, deps.DashboardUC)
		protected.Get("/analytics/margins", staff, analyticsHandler.GetMargins)
		protected.Get("/dashboard/summary", staff, analyticsHandler.GetSummary)
	}
}

// healthHandler godoc
// @Summary  Estado del servicio y de la DB
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  503  {object}  map[string]string
// @Router   /health [get]
func healthHandler(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db == nil {
			return c.JSON(fiber.Map{"status": "ok"})
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "db": "unreachable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "db": "ok"})
	}
}
