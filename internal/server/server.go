package server

import (
	"strings"

	"tallerpos-backend/internal/admin"
	"tallerpos-backend/internal/audit"
	"tallerpos-backend/internal/auth"
	"tallerpos-backend/internal/config"
	"tallerpos-backend/internal/inventory"
	"tallerpos-backend/internal/models"
	"tallerpos-backend/internal/shifts"
	"tallerpos-backend/internal/transfers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// New arma la aplicación con todas las rutas. Separado de main para
// poder levantar la app completa en los tests.
func New(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			config.LogError("server", "ErrorHandler", c.Path(), err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Auth pública
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protegidas
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Rutas de administrador
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Ubicaciones (sucursales y sub-bodegas)
	adminRoutes.Post("/locations", admin.CreateLocationHandler())
	adminRoutes.Put("/locations/:id", admin.UpdateLocationHandler())
	adminRoutes.Delete("/locations/:id", admin.DeleteLocationHandler())

	// Usuarios
	adminRoutes.Post("/users", admin.CreateUserHandler())
	adminRoutes.Get("/users", admin.ListUsersHandler())

	// Catálogo y stock
	adminRoutes.Post("/products", inventory.CreateProductHandler())
	adminRoutes.Put("/products/:id", inventory.UpdateProductHandler())
	adminRoutes.Post("/stock", inventory.SetStockHandler())
	adminRoutes.Get("/stock", inventory.ListStockHandler())

	// Ubicaciones (lectura para todos los autenticados)
	protected.Get("/locations", admin.ListLocationsHandler())
	protected.Get("/locations/:id", admin.GetLocationHandler())

	// Búsqueda de productos vendibles con stock por ubicación
	protected.Get("/products", inventory.SearchProductsHandler())

	// Turnos
	protected.Post("/shifts/open", shifts.OpenShiftHandler())
	protected.Post("/shifts/close", shifts.CloseShiftHandler())
	protected.Get("/shifts/active", shifts.ActiveShiftHandler())

	// Traslados entre sucursales
	protected.Post("/transfers", transfers.CreateTransferHandler())
	protected.Get("/transfers", transfers.ListTransfersHandler())
	protected.Get("/transfers/:id", transfers.GetTransferHandler())
	protected.Post("/transfers/:id/receive", transfers.ReceiveTransferHandler())
	protected.Get("/transfers/:id/print-manifest", transfers.PrintManifestHandler())

	// Bitácora
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	return app
}
