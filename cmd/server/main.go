package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	customerapp "github.com/customeridentity/backend/internal/application/customer"
	identityapp "github.com/customeridentity/backend/internal/application/identity"
	"github.com/customeridentity/backend/internal/infrastructure/auth"
	"github.com/customeridentity/backend/internal/infrastructure/config"
	"github.com/customeridentity/backend/internal/infrastructure/logger"
	"github.com/customeridentity/backend/internal/infrastructure/orderclient"
	"github.com/customeridentity/backend/internal/infrastructure/persistence"
	"github.com/customeridentity/backend/internal/infrastructure/telemetry"
	"github.com/customeridentity/backend/internal/interfaces/http/handler"
	"github.com/customeridentity/backend/internal/interfaces/http/middleware"
	"github.com/customeridentity/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(logger.FromAppConfig(cfg))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(baseLog)
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Telemetry: traces, metrics, and the zap bridge for logs
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.ConfigFrom(cfg.Telemetry), baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log := telemetry.BridgeLogger(baseLog, lp, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	serviceMetrics, err := telemetry.NewServiceMetrics(mp.Meter(telemetry.MeterName))
	if err != nil {
		log.Fatal("Failed to register service metrics", zap.Error(err))
	}

	log.Info("Starting customer identity service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold))

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Database.SlowQueryThreshold,
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
		log.Info("Schema auto-migrated")
	}

	// Token revocation list
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisClient, err := auth.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		redisBlacklist := auth.NewRedisTokenBlacklist(redisClient)
		defer func() {
			_ = redisBlacklist.Close()
		}()
		blacklist = redisBlacklist
		log.Info("Token revocation backed by Redis")
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Info("Token revocation kept in process memory")
	}

	// Authentication
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	directory, err := auth.NewDirectory(hasher, cfg.Auth.Users)
	if err != nil {
		log.Fatal("Failed to build user directory", zap.Error(err))
	}
	log.Info("User directory loaded", zap.Strings("usernames", directory.Usernames()))

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(directory, hasher, jwtService, blacklist, serviceMetrics, log)

	// Order enrichment
	var orders customerapp.OrderLookup = orderclient.NoopClient{}
	if cfg.OrderService.Enabled {
		client, err := orderclient.New(cfg.OrderService)
		if err != nil {
			log.Fatal("Invalid order service configuration", zap.Error(err))
		}
		orders = client
		log.Info("Order enrichment enabled", zap.String("base_url", cfg.OrderService.BaseURL))
	}

	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	customerService := customerapp.NewService(customerRepo, orders, serviceMetrics, log)

	// HTTP
	middleware.SetupValidator()

	var loginLimiter *middleware.RateLimiter
	if cfg.HTTP.LoginRateLimitEnabled {
		loginLimiter = middleware.NewRateLimiter(cfg.HTTP.LoginRatePerMinute, cfg.HTTP.LoginBurst)
	}

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = tp.IsEnabled()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.IsProduction()

	engine, err := router.New(router.Config{
		Logger:        log,
		Authenticator: authService,
		Tracing:       tracingCfg,
		Metrics: middleware.HTTPMetricsConfig{
			MeterProvider: mp,
			Enabled:       mp.IsEnabled(),
			Logger:        log,
		},
		Security:       securityCfg,
		CORS:           corsCfg,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Customer:     handler.NewCustomerHandler(customerService),
		Health:       handler.NewHealthHandler(db, 2*time.Second),
		LoginLimiter: loginLimiter,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// flush telemetry after the last request has been served
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := lp.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Logger provider shutdown failed", zap.Error(err))
	}
}
