package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/telemetry"
)

// @title Storefront API
// @version 1.0
// @description Catalog, accounts and order placement.
// @host localhost:3001
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Stdout:       cfg.TraceStdout,
	})
	if err != nil {
		e.Logger.Fatalf("telemetry init: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		e.Logger.Fatalf("database init: %v", err)
	}

	if err := migrate(e.Logger, gormDB, cfg.ResetDB); err != nil {
		e.Logger.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		e.Logger.Warnf("redis unreachable at %s, rate limiting and logout are degraded: %v", cfg.RedisAddr, err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	orderRepo := repository.NewOrderRepository(gormDB)
	txManager := repository.NewTxManager(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo)
	orderService := service.NewOrderService(productRepo, orderRepo, txManager)

	// Initialize handlers
	userHandler := handler.NewUserHandler(authService, userService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	healthHandler := handler.NewHealthHandler(gormDB, cacheClient)

	guard := middleware.NewGuard(jwtService, authService)
	limiterStore := middleware.NewRedisRateLimiterStore(cacheClient, cfg.RateLimitMax, cfg.RateLimitWindow, e.Logger)

	router.Register(
		e,
		cfg,
		guard,
		middleware.RateLimit(limiterStore),
		userHandler,
		productHandler,
		orderHandler,
		healthHandler,
	)

	e.Logger.Infof("Swagger documentation available at: %s", swaggerURL(cfg))

	// Echo's own Start would replace the handler, so the otelhttp-wrapped
	// server is run directly.
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           otelhttp.NewHandler(e, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		e.Logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	e.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.Logger.Errorf("server shutdown: %v", err)
	}
	if err := cacheClient.Close(); err != nil {
		e.Logger.Errorf("redis close: %v", err)
	}
	if err := db.Close(gormDB); err != nil {
		e.Logger.Errorf("database close: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		e.Logger.Errorf("tracer shutdown: %v", err)
	}
}

// migrate brings the schema up to date, dropping every table first when reset is set.
func migrate(logger echo.Logger, gormDB *gorm.DB, reset bool) error {
	if reset {
		logger.Warn("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.OrderItem{},
			&model.Order{},
			&model.Product{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				logger.Warnf("Failed to drop table (may not exist): %v", err)
			}
		}
		logger.Info("Tables dropped")
	}

	return gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
	)
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
