package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/crm-lite/internal/application/analytics"
	"github.com/jhoicas/crm-lite/internal/application/auth"
	"github.com/jhoicas/crm-lite/internal/application/stock"
	"github.com/jhoicas/crm-lite/internal/application/usecase"
	infrapdf "github.com/jhoicas/crm-lite/internal/infrastructure/pdf"
	"github.com/jhoicas/crm-lite/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/crm-lite/internal/interfaces/http"
	"github.com/jhoicas/crm-lite/pkg/config"
	"github.com/jhoicas/crm-lite/pkg/jwt"
	"github.com/jhoicas/crm-lite/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Strs("migrations", applied).Msg("esquema verificado")
	}

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	storageRepo := postgres.NewStorageRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	supplyRepo := postgres.NewSupplyRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.Expiration)*time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración JWT inválida (JWT_SECRET, JWT_EXPIRATION_MINUTES)")
	}

	authUC := auth.NewAuthUseCase(userRepo, tokens)
	companyUC := usecase.NewCompanyUseCase(txRunner, companyRepo, userRepo)
	storageUC := usecase.NewStorageUseCase(storageRepo)
	employeeUC := usecase.NewEmployeeUseCase(userRepo, companyRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	productUC := usecase.NewProductUseCase(productRepo, storageRepo)

	// Libro de stock: suministros y ventas mueven products.quantity dentro de una tx.
	supplyUC := stock.NewSupplyUseCase(txRunner, supplyRepo, supplierRepo, log)
	saleUC := stock.NewSaleUseCase(txRunner, saleRepo, log)
	receiptUC := stock.NewReceiptUseCase(saleRepo, companyRepo, infrapdf.NewReceiptGenerator())

	marginsUC := analytics.NewMarginsUseCase(analyticsRepo)
	dashboardUC := analytics.NewDashboardUseCase(analyticsRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "crm-lite API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CompanyUC:   companyUC,
		StorageUC:   storageUC,
		EmployeeUC:  employeeUC,
		SupplierUC:  supplierUC,
		ProductUC:   productUC,
		SupplyUC:    supplyUC,
		SaleUC:      saleUC,
		ReceiptUC:   receiptUC,
		MarginsUC:   marginsUC,
		DashboardUC: dashboardUC,
		Users:       userRepo,
		DB:          pool,
		Tokens:      tokens,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
