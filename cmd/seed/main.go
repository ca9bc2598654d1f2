// seed carga una empresa de demostración usando los mismos casos de uso que la API:
// propietario, empleado, almacén, proveedor, productos y un suministro inicial.
//
// Uso: go run ./cmd/seed [password]
// El password por defecto es "demo12345". Si el propietario demo ya existe no hace nada.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-lite/internal/application/auth"
	"github.com/jhoicas/crm-lite/internal/application/dto"
	"github.com/jhoicas/crm-lite/internal/application/stock"
	"github.com/jhoicas/crm-lite/internal/application/usecase"
	"github.com/jhoicas/crm-lite/internal/domain"
	"github.com/jhoicas/crm-lite/internal/domain/access"
	"github.com/jhoicas/crm-lite/internal/infrastructure/postgres"
	"github.com/jhoicas/crm-lite/pkg/config"
	"github.com/jhoicas/crm-lite/pkg/logger"
)

const (
	ownerEmail    = "owner@demo.local"
	employeeEmail = "employee@demo.local"
)

type demoProduct struct {
	sku, name       string
	purchase, sale  string
	initialQuantity int64
}

var demoProducts = []demoProduct{
	{"P001", "Producto 1", "100", "150", 10},
	{"P002", "Café molido 500 g", "12.50", "18.90", 40},
	{"P003", "Azúcar 1 kg", "3.20", "4.75", 60},
}

func main() {
	password := "demo12345"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "crm-lite-seed"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if _, err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	if err := seed(ctx, pool, log, password); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			log.Info().Str("email", ownerEmail).Msg("datos demo ya cargados")
			return
		}
		log.Fatal().Err(err).Msg("seed")
	}
}

func seed(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger, password string) error {
	userRepo := postgres.NewUserRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)
	storageRepo := postgres.NewStorageRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	supplyRepo := postgres.NewSupplyRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, nil)
	companyUC := usecase.NewCompanyUseCase(txRunner, companyRepo, userRepo)
	storageUC := usecase.NewStorageUseCase(storageRepo)
	employeeUC := usecase.NewEmployeeUseCase(userRepo, companyRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	productUC := usecase.NewProductUseCase(productRepo, storageRepo)
	supplyUC := stock.NewSupplyUseCase(txRunner, supplyRepo, supplierRepo, log)

	owner, err := authUC.Register(ctx, dto.RegisterRequest{
		Email: ownerEmail, Password: password, Password2: password,
		FirstName: "Olga", LastName: "Propietaria",
	})
	if err != nil {
		return err
	}
	company, err := companyUC.Create(ctx, owner.ID, dto.CreateCompanyRequest{TaxID: "9001234567", Name: "Comercial Demo"})
	if err != nil {
		return fmt.Errorf("empresa: %w", err)
	}
	actor := access.Actor{UserID: owner.ID, CompanyID: company.ID, Role: access.RoleOwner}

	if _, err := storageUC.Create(ctx, actor, dto.CreateStorageRequest{Address: "Calle 10 # 20-30"}); err != nil {
		return fmt.Errorf("almacén: %w", err)
	}

	if _, err := authUC.Register(ctx, dto.RegisterRequest{
		Email: employeeEmail, Password: password, Password2: password,
		FirstName: "Eva", LastName: "Empleada",
	}); err != nil && !errors.Is(err, domain.ErrEmailAlreadyExists) {
		return fmt.Errorf("empleado: %w", err)
	}
	if _, err := employeeUC.Add(ctx, actor, dto.AddEmployeeRequest{Email: employeeEmail}); err != nil {
		return fmt.Errorf("afiliar empleado: %w", err)
	}

	supplier, err := supplierUC.Create(ctx, actor, dto.CreateSupplierRequest{Name: "Distribuidora Central", TaxID: "800123456789"})
	if err != nil {
		return fmt.Errorf("proveedor: %w", err)
	}

	lines := make([]dto.LineRequest, 0, len(demoProducts))
	for _, p := range demoProducts {
		created, err := productUC.Create(ctx, actor, dto.CreateProductRequest{
			SKU:           p.sku,
			Name:          p.name,
			PurchasePrice: decimal.RequireFromString(p.purchase),
			SalePrice:     decimal.RequireFromString(p.sale),
		})
		if err != nil {
			return fmt.Errorf("producto %s: %w", p.sku, err)
		}
		lines = append(lines, dto.LineRequest{ProductID: created.ID, Quantity: p.initialQuantity})
	}

	supply, err := supplyUC.Create(ctx, actor, dto.CreateSupplyRequest{
		SupplierID:    supplier.ID,
		DeliveryDate:  time.Now().Format("2006-01-02"),
		InvoiceNumber: "FAC-0001",
		Notes:         "carga inicial",
		Products:      lines,
	})
	if err != nil {
		return fmt.Errorf("suministro: %w", err)
	}

	log.Info().
		Str("company_id", company.ID).
		Str("owner", ownerEmail).
		Str("employee", employeeEmail).
		Str("supply_id", supply.ID).
		Str("total_cost", supply.TotalCost.String()).
		Msg("datos demo cargados")
	return nil
}
