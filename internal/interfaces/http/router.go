package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Farmacia-api/internal/application/analytics"
	"github.com/jhoicas/Farmacia-api/internal/application/auth"
	"github.com/jhoicas/Farmacia-api/internal/application/ledger"
	"github.com/jhoicas/Farmacia-api/internal/application/usecase"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/realtime"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger         *ledger.Engine
	Analytics      *analytics.Projector
	ProductUC      *usecase.ProductUseCase
	ShopUC         *usecase.ShopUseCase
	SaleUC         *usecase.SaleUseCase
	AuthUC         *auth.AuthUseCase
	Hub            *realtime.Hub
	JWTSecret      string
	WSWriteTimeout time.Duration
	ServiceName    string
	Store          string
	Log            *logger.Logger
}

// Router registra las rutas de la API. Lecturas con JWT; escrituras solo rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", Health(deps.ServiceName, deps.Store, deps.Hub))

	// WebSocket (público, solo difusión)
	ws := NewWSHandler(deps.Hub, deps.WSWriteTimeout, deps.Log)
	app.Use("/ws", ws.Upgrade)
	app.Get("/ws", ws.Serve())

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	admin := RequireRole(entity.RoleAdmin)

	// Shops
	shopHandler := NewShopHandler(deps.ShopUC)
	shops := protected.Group("/shops")
	shops.Get("/", shopHandler.List)
	shops.Post("/", admin, shopHandler.Create)
	shops.Get("/:id", shopHandler.GetByID)
	shops.Put("/:id/status", admin, shopHandler.UpdateStatus)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", admin, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)

	// Inventory (lotes)
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	inv := protected.Group("/inventory")
	inv.Get("/", inventoryHandler.List)
	inv.Post("/", admin, inventoryHandler.Create)
	inv.Get("/:id", inventoryHandler.GetByID)
	inv.Put("/:id/stock", admin, inventoryHandler.UpdateStock)
	inv.Get("/:id/verify", inventoryHandler.Verify)

	// Stock movements
	movementHandler := NewMovementHandler(deps.Ledger)
	movs := protected.Group("/stock-movements")
	movs.Get("/", movementHandler.List)
	movs.Post("/", admin, movementHandler.Create)
	movs.Post("/transfer", admin, movementHandler.Transfer)

	// Sales
	saleHandler := NewSaleHandler(deps.SaleUC, deps.Ledger)
	sales := protected.Group("/sales")
	sales.Get("/", saleHandler.List)
	sales.Post("/", admin, saleHandler.Create)
	sales.Get("/:saleId", saleHandler.GetByID)
	sales.Post("/:saleId/items", admin, saleHandler.AddItem)

	// Analytics y dashboard
	analyticsHandler := NewAnalyticsHandler(deps.Analytics)
	an := protected.Group("/analytics")
	an.Get("/low-stock", analyticsHandler.LowStock)
	an.Get("/out-of-stock", analyticsHandler.OutOfStock)
	an.Get("/expiring", analyticsHandler.Expiring)
	an.Get("/top-products", analyticsHandler.TopProducts)
	an.Get("/shop-summary", analyticsHandler.ShopSummary)
	an.Get("/replenishment", analyticsHandler.Replenishment)
	protected.Get("/dashboard/kpis", analyticsHandler.DashboardKPIs)
}
