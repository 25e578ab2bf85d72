package main

import (
	"context"
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"espetaria/internal/caching"
	"espetaria/internal/config"
	"espetaria/internal/handlers"
	"espetaria/internal/jobs"
	"espetaria/internal/middleware"
	"espetaria/internal/repositories"
	"espetaria/internal/services"
	"espetaria/pkg/database"
	"espetaria/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Environment}); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		zap.L().Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		zap.L().Fatal("failed to run migrations", zap.Error(err))
	}

	// Cache is optional: without redis the service runs uncached.
	var cacheSvc caching.CacheService = caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Repositories
	productRepo := repositories.NewProductRepo(pool)
	inventoryRepo := repositories.NewInventoryRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	cashRepo := repositories.NewCashRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	reportRepo := repositories.NewReportRepo(pool)

	// Services
	stockSvc := services.NewStockService(inventoryRepo)
	productSvc := services.NewProductService(pool, productRepo, inventoryRepo)
	inventorySvc := services.NewInventoryService(pool, inventoryRepo)
	orderSvc := services.NewOrderService(pool, orderRepo, productRepo, cashRepo, stockSvc, cacheSvc)
	cashSvc := services.NewCashService(cashRepo, cacheSvc)
	customerSvc := services.NewCustomerService(pool, customerRepo, productRepo, cashRepo, stockSvc, cacheSvc)
	reportSvc := services.NewReportService(reportRepo, cacheSvc)

	// Handlers
	productHandlers := handlers.NewProductHandlers(productSvc)
	inventoryHandlers := handlers.NewInventoryHandlers(inventorySvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	cashHandlers := handlers.NewCashHandlers(cashSvc)
	customerHandlers := handlers.NewCustomerHandlers(customerSvc)
	reportHandlers := handlers.NewReportHandlers(reportSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	// Background jobs
	scheduler, err := jobs.NewScheduler(inventoryRepo, cfg.LowStockInterval)
	if err != nil {
		zap.L().Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.Metrics)

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/metrics", middleware.MetricsHandler())

	v1 := e.Group("/v1")

	v1.GET("/products", productHandlers.ListProducts)
	v1.POST("/products", productHandlers.CreateProduct)
	v1.GET("/products/:id", productHandlers.GetProduct)
	v1.PUT("/products/:id", productHandlers.UpdateProduct)
	v1.DELETE("/products/:id", productHandlers.DeleteProduct)

	v1.GET("/orders", orderHandlers.ListOpenOrders)
	v1.POST("/orders", orderHandlers.CreateOrder)
	v1.GET("/orders/:id", orderHandlers.GetOrder)
	v1.POST("/orders/:id/items", orderHandlers.AddOrderItem)
	v1.POST("/orders/:id/payments", orderHandlers.PayPartial)
	v1.POST("/orders/:id/close", orderHandlers.CloseOrder)
	v1.DELETE("/order-items/:id", orderHandlers.RemoveOrderItem)

	v1.GET("/inventory", inventoryHandlers.ListInventory)
	v1.POST("/inventory", inventoryHandlers.CreateInventoryItem)
	v1.GET("/inventory/low-stock", inventoryHandlers.ListLowStock)
	v1.GET("/inventory/:id", inventoryHandlers.GetInventoryItem)
	v1.PUT("/inventory/:id", inventoryHandlers.UpdateInventoryItem)
	v1.DELETE("/inventory/:id", inventoryHandlers.DeleteInventoryItem)
	v1.POST("/inventory/:id/adjust", inventoryHandlers.AdjustInventory)
	v1.PUT("/inventory/:id/alert", inventoryHandlers.ToggleAlert)
	v1.GET("/inventory/:id/transactions", inventoryHandlers.ListMovements)

	v1.POST("/cash-transactions", cashHandlers.CreateCashTransaction)
	v1.GET("/cash-transactions", cashHandlers.ListCashTransactions)
	v1.GET("/cash-flow", cashHandlers.GetCashFlow)

	v1.GET("/customers", customerHandlers.ListCustomers)
	v1.POST("/customers", customerHandlers.CreateCustomer)
	v1.GET("/customers/:id", customerHandlers.GetCustomer)
	v1.PUT("/customers/:id", customerHandlers.UpdateCustomer)
	v1.DELETE("/customers/:id", customerHandlers.DeleteCustomer)
	v1.GET("/customers/:id/transactions", customerHandlers.ListCustomerTransactions)
	v1.POST("/customers/:id/transactions", customerHandlers.CreateCustomerTransaction)
	v1.GET("/customers/:id/balance", customerHandlers.GetCustomerBalance)

	v1.GET("/reports/summary", reportHandlers.GetSummary)
	v1.GET("/reports/products", reportHandlers.GetProductReport)
	v1.GET("/reports/beverages", reportHandlers.GetBeverageReport)
	v1.GET("/reports/consolidated", reportHandlers.GetConsolidated)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Port)))
}
