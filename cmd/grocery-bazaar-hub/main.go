package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/api/handlers"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/api/middleware"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/cache"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/config"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/health"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/metrics"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	repository "github.com/Rwadhwa18/grocery-bazaar-hub/internal/repositories"
	service "github.com/Rwadhwa18/grocery-bazaar-hub/internal/services"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/telemetry"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Otel)
	if err != nil {
		slog.Error("❌ Error setting up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Catalog setup
	seed, err := repository.LoadCatalogSeed(cfg.Catalog.SeedPath)
	if err != nil {
		slog.Error("❌ Error loading the catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	productRepo := repository.NewProductRepo(seed)
	orderRepo := repository.NewOrderRepo()

	// Cart snapshots and rate limiting live in Redis when it is enabled
	var (
		cartCache   cache.Cache
		rateLimiter repository.RateLimitRepository
	)

	if cfg.RedisConnect.Enabled {
		redisClient, err := repository.NewRedisClient(cfg)
		if err != nil {
			slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
			os.Exit(1)
		}

		cartCache = cache.NewRedisCache(redisClient, &cfg.Cache)
		rateLimiter = repository.NewRateLimitRepo(redisClient, cfg)
	} else {
		slog.Warn("Redis disabled, using in-memory cart snapshots without rate limiting")
		cartCache = cache.NewMemoryCache(cfg.Cache.DefaultTTL)
		rateLimiter = repository.NewNoopRateLimiter()
	}

	defer func() {
		if err := cartCache.Close(); err != nil {
			slog.Error("⚠️ Error closing cart cache", slog.String("error", err.Error()))
		}
	}()

	jwtKey := []byte(cfg.Security.JWTKey)
	sessionService := service.NewSessionService(rateLimiter, jwtKey, time.Duration(cfg.Security.JWTExpiryHours)*time.Hour)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	productService := service.NewProductService(productRepo, cfg.Catalog.LowStockThreshold)
	productHandler := handlers.NewProductHandler(productService)
	cartService := service.NewCartService(cartCache, productRepo)
	cartHandler := handlers.NewCartHandler(cartService)
	orderService := service.NewOrderService(orderRepo, productRepo, cartService, cfg.Tracking)
	orderHandler := handlers.NewOrderHandler(orderService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg, &health.Endpoints{Products: productRepo})
	if err != nil {
		slog.Error("❌ Error setting up health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("storage initialized",
		slog.String("env", cfg.Env),
		slog.Int("products", len(seed.Products)),
		slog.Bool("redis", cfg.RedisConnect.Enabled),
	)

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("POST /api/v1/sessions", sessionHandler.CreateSession())
	routerMux.HandleFunc("GET /api/v1/products", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/v1/products/{id}", productHandler.GetProduct())
	routerMux.HandleFunc("GET /api/v1/categories", productHandler.ListCategories())
	routerMux.HandleFunc("POST /api/v1/products", authMiddleware.RequireRole(models.RoleMerchant, productHandler.CreateProduct()))
	routerMux.HandleFunc("PUT /api/v1/products/{id}", authMiddleware.RequireRole(models.RoleMerchant, productHandler.UpdateProduct()))
	routerMux.HandleFunc("PATCH /api/v1/products/{id}/variants/{variantId}/stock", authMiddleware.RequireRole(models.RoleMerchant, productHandler.UpdateStock()))
	routerMux.HandleFunc("GET /api/v1/inventory/summary", authMiddleware.RequireRole(models.RoleMerchant, productHandler.InventorySummary()))
	routerMux.HandleFunc("GET /api/v1/cart", authMiddleware.Authenticate(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/cart/items", authMiddleware.Authenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("PUT /api/v1/cart/items", authMiddleware.Authenticate(cartHandler.UpdateItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items", authMiddleware.Authenticate(cartHandler.RemoveItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart", authMiddleware.Authenticate(cartHandler.ClearCart()))
	routerMux.HandleFunc("POST /api/v1/orders", authMiddleware.Authenticate(orderHandler.CreateOrder()))
	routerMux.HandleFunc("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.ListOrders()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.GetOrder()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}/tracking", authMiddleware.Authenticate(orderHandler.GetTracking()))
	routerMux.HandleFunc("POST /api/v1/orders/{id}/cancel", authMiddleware.Authenticate(orderHandler.CancelOrder()))
	routerMux.HandleFunc("PATCH /api/v1/orders/{id}/status", authMiddleware.RequireRole(models.RoleMerchant, orderHandler.UpdateOrderStatus()))
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = telemetry.Middleware(handler)
	handler = middleware.Logging(handler)

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	orderService.Shutdown()

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
	}
}
