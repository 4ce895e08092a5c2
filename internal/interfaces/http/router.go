package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockledger/internal/application/auth"
	"github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/application/usecase"
	"github.com/jhoicas/stockledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerWriter *inventory.LedgerWriter
	BatchInbound *inventory.BatchInboundUseCase
	Reports      *inventory.ReportUseCase
	ProductUC    *usecase.ProductUseCase
	MerchantUC   *usecase.MerchantUseCase
	AuthUC       *auth.AuthUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	// Escrituras: solo admin y operador.
	writer := RequireRole(entity.RoleAdmin, entity.RoleOperator)

	protected.Get("/auth/verify", authHandler.Verify)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Post("/", writer, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", writer, productHandler.Update)
	products.Delete("/:id", writer, productHandler.Delete)

	// Merchants
	merchants := protected.Group("/merchants")
	merchantHandler := NewMerchantHandler(deps.MerchantUC)
	merchants.Get("/", merchantHandler.List)
	merchants.Post("/", writer, merchantHandler.Create)
	merchants.Get("/:id", merchantHandler.GetByID)
	merchants.Put("/:id", writer, merchantHandler.Update)
	merchants.Delete("/:id", writer, merchantHandler.Delete)

	// Inventory
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerWriter, deps.BatchInbound, deps.Reports)
	invGroup.Post("/stock-in", writer, inventoryHandler.StockIn)
	invGroup.Post("/stock-out", writer, inventoryHandler.StockOut)
	invGroup.Post("/batch-stock-in", writer, inventoryHandler.BatchStockIn)
	invGroup.Get("/transactions", inventoryHandler.ListTransactions)
	invGroup.Get("/transactions/:id", inventoryHandler.GetTransaction)

	// Sales analysis
	analysis := protected.Group("/sales-analysis")
	analysisHandler := NewAnalysisHandler(deps.Reports)
	analysis.Get("/trend", analysisHandler.Trend)
	analysis.Get("/inventory-alert", analysisHandler.InventoryAlert)
	analysis.Get("/inventory-alert/pdf", analysisHandler.InventoryAlertPDF)
}
