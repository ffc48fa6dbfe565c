package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/creatorlink/platform/internal/analytics"
	"github.com/creatorlink/platform/internal/auth"
	"github.com/creatorlink/platform/internal/cache"
	"github.com/creatorlink/platform/internal/config"
	"github.com/creatorlink/platform/internal/consistency"
	"github.com/creatorlink/platform/internal/dashboard"
	"github.com/creatorlink/platform/internal/database"
	"github.com/creatorlink/platform/internal/daterange"
	"github.com/creatorlink/platform/internal/handlers"
	"github.com/creatorlink/platform/internal/metrics"
	"github.com/creatorlink/platform/internal/partner"
	"github.com/creatorlink/platform/internal/realtime"
)

var (
	Version   = "1.0.0"
	GitCommit = "unknown"
)

func main() {
	var configPath string
	var showVersion bool

	flag.StringVar(&configPath, "config", "config/config.yaml", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("creatorlink-platform %s (%s)\n", Version, GitCommit)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting creatorlink platform",
		zap.String("version", Version),
		zap.String("environment", cfg.Environment))

	db, err := database.Connect(cfg.GetDatabaseDSN(), logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
		PoolSize: cfg.Redis.PoolSize,
	})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis is unreachable, response caching disabled", zap.Error(err))
		redisClient = nil
	}

	users := database.NewUserRepository(db)
	creators := database.NewCreatorRepository(db)
	payouts := database.NewPayoutRepository(db)
	reviews := database.NewReviewRepository(db)
	earnings := database.NewEarningsRepository(db)

	authManager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	partnerClient := partner.NewClient(cfg.Partner.BaseURL, cfg.Partner.APIToken, cfg.Partner.Timeout, logger)
	resolver := daterange.NewResolver(daterange.SystemClock{}, logger)
	validator := consistency.NewValidator(daterange.SystemClock{}, logger)
	aggregator := analytics.NewAggregator(earnings, logger)

	var hub *realtime.Hub
	if cfg.Dashboard.RealtimeEnabled && redisClient != nil {
		hub = realtime.NewHub(redisClient, logger)
		go hub.Run()
		go hub.SubscribeToRedis(ctx)
	}

	var collector *metrics.Collector
	if cfg.Monitoring.EnableMetrics {
		clients := func() float64 { return 0 }
		if hub != nil {
			clients = func() float64 { return float64(hub.ConnectedClients()) }
		}
		collector = metrics.NewCollector(clients)
	}

	opts := dashboard.Options{
		Hub:         hubBroadcaster(hub),
		Collector:   collector,
		CachePrefix: cfg.Cache.Prefix,
		CheckSubIDs: cfg.Dashboard.ExpectedSubIDCheck,
	}
	if redisClient != nil {
		opts.Cache = cache.NewResponseCache(redisClient, cfg.Cache.TTL, logger)
	}
	dashboardService := dashboard.NewService(resolver, partnerClient, aggregator, earnings, validator, logger, opts)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handler := handlers.NewHandler(users, creators, payouts, reviews, earnings, authManager, dashboardService, hub, logger)
	handler.RegisterRoutes(router, collector)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	if redisClient != nil {
		redisClient.Close()
	}
	logger.Info("shutdown complete")
}

// hubBroadcaster adapts a possibly-nil hub to the dashboard's optional
// broadcaster dependency without handing it a typed nil.
func hubBroadcaster(hub *realtime.Hub) dashboard.Broadcaster {
	if hub == nil {
		return nil
	}
	return hub
}
