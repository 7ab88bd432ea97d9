package router

import (
	"time"

	"github.com/DrgGomes/cft-estoque-fast/internal/config"
	"github.com/DrgGomes/cft-estoque-fast/internal/handler"
	"github.com/DrgGomes/cft-estoque-fast/internal/infra"
	"github.com/DrgGomes/cft-estoque-fast/internal/middleware"
	"github.com/DrgGomes/cft-estoque-fast/internal/model"
	"github.com/DrgGomes/cft-estoque-fast/internal/repository"
	"github.com/DrgGomes/cft-estoque-fast/internal/service"
	"github.com/DrgGomes/cft-estoque-fast/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, audit infra.AuditProducer) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	dispatcher := worker.NewDispatcher(rdb)

	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, rdb)
	ledgerSvc := service.NewLedgerService(productRepo, movementRepo, rdb, audit)
	quickEntrySvc := service.NewQuickEntryService(
		productRepo, ledgerSvc,
		time.Duration(cfg.ScanDebounceMs)*time.Millisecond,
		time.Duration(cfg.ScanFeedbackTTLMs)*time.Millisecond,
		nil,
	)
	alertSvc := service.NewAlertService(alertRepo, dispatcher, nil, nil, cfg.AlertEmailTo)
	orderSvc := service.NewOrderService(productRepo, infra.NewTextComposer())

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	stockH := handler.NewStockHandler(ledgerSvc)
	quickEntryH := handler.NewQuickEntryHandler(quickEntrySvc)
	gridH := handler.NewGridHandler(ledgerSvc)
	alertsH := handler.NewAlertsHandler(alertSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	reportsH := handler.NewReportsHandler(productRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleSupplier, model.RoleReseller)
	supplierOnly := middleware.RequireRole(model.RoleSupplier)

	v1 := r.Group("/v1", jwtMW)
	{
		// Catalog — both roles read; only the supplier writes
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/:id", anyRole, productsH.GetByID)
		// Own prefix: a "lookup" segment under /products would collide with :id
		v1.GET("/lookup/:code", anyRole, productsH.Lookup)
		prods := v1.Group("/products", supplierOnly)
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Delete)
			prods.PUT("/:id/quantity", stockH.SetQuantity)
		}

		// Movement history — read-only for everyone authenticated
		v1.GET("/movements", anyRole, stockH.ListMovements)

		// Quick entry — supplier receiving stock with a scanner
		qe := v1.Group("/quick-entry", supplierOnly)
		{
			qe.POST("", quickEntryH.StartSession)
			qe.GET("/:id", quickEntryH.GetSession)
			qe.POST("/:id/scan", quickEntryH.Scan)
			qe.PATCH("/:id/items/:productId", quickEntryH.UpdateItem)
			qe.DELETE("/:id/items/:productId", quickEntryH.RemoveItem)
			qe.POST("/:id/review", quickEntryH.Review)
			qe.POST("/:id/commit", quickEntryH.Commit)
			qe.DELETE("/:id", quickEntryH.Cancel)
		}

		// Variation grid — supplier only
		gridGroup := v1.Group("/grid", supplierOnly)
		{
			gridGroup.POST("/preview", gridH.Preview)
			gridGroup.POST("", gridH.Create)
		}

		// Sold-out alert log — the reseller's main screen besides the catalog
		v1.GET("/alerts", anyRole, alertsH.List)

		// Order message composition
		v1.POST("/orders/message", anyRole, ordersH.BuildMessage)

		// Reports
		v1.GET("/reports/stock.pdf", anyRole, reportsH.StockPDF)

		// User management — supplier only
		users := v1.Group("/users", supplierOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.DELETE("/:id", usersH.Deactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
