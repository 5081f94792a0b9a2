package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"tenantconsole-backend/console-service/handlers"
	"tenantconsole-backend/console-service/middleware"
	"tenantconsole-backend/console-service/routes"
	"tenantconsole-backend/console-service/services"
	_ "tenantconsole-backend/docs"
	"tenantconsole-backend/shared/config"
	"tenantconsole-backend/shared/database"
	"tenantconsole-backend/shared/logger"
	"tenantconsole-backend/shared/metrics"
	"tenantconsole-backend/shared/store"
	"tenantconsole-backend/shared/store/memory"
	utils "tenantconsole-backend/shared/utils/auth"
	"tenantconsole-backend/shared/utils/cache"
)

func main() {
	// Load configuration
	envFile := config.LoadConfig()
	cfg := config.GetConfig()

	log := logger.Must(cfg.LogLevel, cfg.LogDevelopment)
	defer log.Sync()

	if envFile != "" {
		log.Info("configuration loaded", zap.String("env_file", envFile))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("console service stopped", zap.Error(err))
	}
	log.Info("console service shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	gin.SetMode(cfg.GinMode)
	m := metrics.NewMetrics()

	repo, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.SeedDemoData {
		if err := database.SeedDemoData(ctx, repo, log); err != nil {
			return err
		}
	}

	sessions, err := cache.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	if closer, ok := sessions.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	var archive services.ReportArchive
	if cfg.ReportArchiveEnabled {
		minioArchive, err := services.NewMinIOReportArchive(ctx, cfg, log)
		if err != nil {
			return err
		}
		archive = minioArchive
	}

	stream := services.NewAuditStream(cfg.FrontendURL, log, m)
	go stream.Run(ctx)

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.GetJWTExpireDuration(), cfg.GetJWTRefreshExpireDuration())
	api := services.NewAPIService(repo, tokens, sessions, services.APIConfig{
		BaseDelay:       cfg.GetMockAPIBaseDelay(),
		ReadDelay:       cfg.GetMockAPIReadDelay(),
		TenantRegionURL: cfg.TenantRegionURL,
	}, log, m)
	onboarding := services.NewOnboardingService(repo, archive, stream, cfg.DefaultTenantPlan, log, m)

	rateLimiter := middleware.NewRateLimiter(ctx, 5*time.Minute)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Trace-ID"},
		ExposeHeaders:    []string{"X-Trace-ID", "X-Total-Count", "X-Total-Pages", "X-Page", "X-Limit"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.TraceMiddleware())
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.RequestLogger(log))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"service":        "console",
			"store":          cfg.StoreType,
			"stream_clients": stream.ClientCount(),
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h := handlers.NewHandler(api, onboarding, stream, repo, log)
	routes.Register(router, h, routes.Guards{
		Auth:         middleware.AuthMiddleware(tokens, sessions, repo, api, log),
		OptionalAuth: middleware.OptionalAuthMiddleware(tokens, sessions, repo, api, log),
		LoginLimit: rateLimiter.LoginRateLimitMiddleware(middleware.RateLimitConfig{
			MaxRequests:   cfg.GetLoginRateLimitMaxAttempts(),
			TimeWindow:    cfg.GetLoginRateLimitWindow(),
			BlockDuration: cfg.GetLoginRateLimitBlock(),
		}),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("console service starting", zap.String("port", cfg.ServerPort), zap.String("store", cfg.StoreType))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("received shutdown signal")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore returns the repository selected by STORE_TYPE.
func openStore(cfg *config.Config, log *zap.Logger) (store.Repository, func(), error) {
	if cfg.StoreType == "postgres" {
		db, err := database.InitDatabase(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return database.NewRepository(db), func() {
			if err := database.CloseDatabase(); err != nil {
				log.Warn("failed to close database", zap.Error(err))
			}
		}, nil
	}

	log.Info("using in-memory store")
	return memory.NewRepository(), func() {}, nil
}
