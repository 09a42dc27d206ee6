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
	"github.com/jhoicas/facturacion-rd/internal/application/auth"
	"github.com/jhoicas/facturacion-rd/internal/application/billing"
	"github.com/jhoicas/facturacion-rd/internal/application/fiscal"
	"github.com/jhoicas/facturacion-rd/internal/application/usecase"
	"github.com/jhoicas/facturacion-rd/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/facturacion-rd/internal/interfaces/http"
	"github.com/jhoicas/facturacion-rd/pkg/config"
	"github.com/jhoicas/facturacion-rd/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
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

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	batchRepo := postgres.NewNCFBatchRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Numeración fiscal
	allocator := fiscal.NewAllocator(batchRepo, auditRepo, log, cfg.Fiscal.AllocateRetries)
	batchUC := fiscal.NewBatchUseCase(batchRepo, auditRepo, log)
	alertsUC := fiscal.NewAlertsUseCase(batchRepo, cfg.Fiscal.ExpirationHorizonDays)

	// Facturación
	customerUC := billing.NewCustomerUseCase(customerRepo)
	createInvoiceUC := billing.NewCreateInvoiceUseCase(txRunner, allocator, customerRepo, invoiceRepo)

	companyUC := usecase.NewCompanyUseCase(companyRepo)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturación RD API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:     companyUC,
		CustomerUC:    customerUC,
		CreateInvoice: createInvoiceUC,
		BatchUC:       batchUC,
		Allocator:     allocator,
		AlertsUC:      alertsUC,
		AuthUC:        authUC,
		JWTSecret:     cfg.JWT.Secret,
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
