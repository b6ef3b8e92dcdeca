package router

import (
	"time"

	_ "stockwise/docs"
	"stockwise/internal/cache"
	"stockwise/internal/config"
	"stockwise/internal/handler"
	"stockwise/internal/middleware"
	"stockwise/internal/repository"
	"stockwise/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Products service.ProductService
	Stock    service.StockService
	Sales    service.SaleService
	Reports  service.ReportService
}

// NewServices wires the services on top of the given repositories.
func NewServices(
	products repository.ProductRepository,
	sales repository.SaleRepository,
	ledger repository.StockTransactionRepository,
	c cache.ProductCache,
	loc *time.Location,
) Services {
	stockSvc := service.NewStockService(products, ledger, c)
	return Services{
		Products: service.NewProductService(products, sales, ledger, stockSvc, c),
		Stock:    stockSvc,
		Sales:    service.NewSaleService(sales, products, c, loc),
		Reports:  service.NewReportService(products, sales, loc),
	}
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	var productCache cache.ProductCache = cache.NoopProductCache{}
	if rdb != nil {
		productCache = cache.NewRedisProductCache(rdb, cfg.CacheTTL())
	}

	svc := NewServices(
		repository.NewProductRepository(db),
		repository.NewSaleRepository(db),
		repository.NewStockTransactionRepository(db),
		productCache,
		cfg.Location(),
	)
	return Build(cfg, svc, handler.Health(db, rdb))
}

// Build registers middleware and routes over svc.
func Build(cfg *config.Config, svc Services, health gin.HandlerFunc) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	productsH := handler.NewProductsHandler(svc.Products)
	stockH := handler.NewStockHandler(svc.Stock)
	salesH := handler.NewSalesHandler(svc.Sales, cfg.StoreName, cfg.Location())
	reportsH := handler.NewReportsHandler(svc.Reports)
	lookupH := handler.NewProductLookupHandler(svc.Products)

	r.GET("/health", health)

	// Lookups used by the sale entry form
	api := r.Group("/api/product")
	{
		api.GET("/:id/price", lookupH.Price)
		api.GET("/:id/stock", lookupH.Stock)
	}

	v1 := r.Group("/v1")
	{
		v1.GET("/dashboard", reportsH.Dashboard)

		prods := v1.Group("/products")
		{
			prods.GET("", productsH.List)
			prods.GET("/categories", productsH.Categories)
			prods.POST("", productsH.Create)
			prods.GET("/:id", productsH.Get)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Delete)
			prods.PATCH("/:id/deactivate", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
		}

		v1.POST("/stock-transactions", stockH.Record)
		v1.GET("/stock-transactions", stockH.List)

		sales := v1.Group("/sales")
		{
			sales.GET("", salesH.List)
			sales.POST("", salesH.Create)
			sales.GET("/:id", salesH.Get)
			sales.PUT("/:id", salesH.Update)
			sales.DELETE("/:id", salesH.Delete)
			sales.GET("/:id/receipt", salesH.Receipt)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/low-stock", reportsH.LowStock)
			reports.GET("/sales", reportsH.Sales)
		}
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
