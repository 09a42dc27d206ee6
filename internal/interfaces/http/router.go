package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/facturacion-rd/internal/application/auth"
	"github.com/jhoicas/facturacion-rd/internal/application/billing"
	"github.com/jhoicas/facturacion-rd/internal/application/fiscal"
	"github.com/jhoicas/facturacion-rd/internal/application/usecase"
	"github.com/jhoicas/facturacion-rd/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC     *usecase.CompanyUseCase
	CustomerUC    *billing.CustomerUseCase
	CreateInvoice *billing.CreateInvoiceUseCase
	BatchUC       *fiscal.BatchUseCase
	Allocator     *fiscal.Allocator
	AlertsUC      *fiscal.AlertsUseCase
	AuthUC        *auth.AuthUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público el registro; el resto se protege más abajo)
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Numeración fiscal (protegido). La gestión de lotes es solo admin:
	// registrar o editar rangos autorizados no es tarea de caja.
	ncfGroup := protected.Group("/ncf")
	ncfHandler := NewNCFHandler(deps.BatchUC, deps.Allocator, deps.AlertsUC)
	ncfGroup.Get("/types", ncfHandler.ListTypes)
	ncfGroup.Get("/batches", ncfHandler.ListBatches)
	ncfGroup.Get("/batches/preview", ncfHandler.PreviewNext)
	ncfGroup.Post("/batches", RequireRole(entity.RoleAdmin), ncfHandler.CreateBatch)
	ncfGroup.Get("/batches/:id", ncfHandler.GetBatch)
	ncfGroup.Put("/batches/:id", RequireRole(entity.RoleAdmin), ncfHandler.UpdateBatch)
	ncfGroup.Delete("/batches/:id", RequireRole(entity.RoleAdmin), ncfHandler.DeleteBatch)
	ncfGroup.Post("/validate", ncfHandler.Validate)
	ncfGroup.Get("/alerts/usage", ncfHandler.UsageAlerts)
	ncfGroup.Get("/alerts/expiration", ncfHandler.ExpirationAlerts)

	// Customers (protegido, facturación)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Invoices (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.CreateInvoice)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
}
