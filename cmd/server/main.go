package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"portal-united/directory/internal/api"
	"portal-united/directory/internal/common"
	"portal-united/directory/internal/config"
	"portal-united/directory/internal/db"
	"portal-united/directory/internal/logging"
	"portal-united/directory/internal/metrics"
	"portal-united/directory/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if err := logging.Init(cfg.App.Env); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Portal UNITED directory starting up",
		"environment", cfg.App.Env,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	if err := run(cfg); err != nil {
		logging.Error("Server stopped with error", "error", err)
		_ = logging.Close()
		os.Exit(1)
	}
	logging.Info("Server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to DB with GORM
	gdb, err := db.InitPostgresORM(cfg.PostgresDSN(), db.PoolOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		logging.Info("Database schema migrated")
	}

	// Connect to DB with sqlx for reporting queries
	sqlDB, err := db.InitPostgres(cfg.PostgresDSN())
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	logging.Info("Connected to Postgres (sqlx)")

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = common.NewRedisClient(common.RedisOptions{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer redisClient.Close()
		logging.Info("Connected to Redis", "addr", cfg.RedisAddr())
	} else {
		logging.Warn("REDIS_HOST not set, sessions are kept in memory")
	}

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(gdb, sqlDB, redisClient, metricsReg, api.Options{
		SessionSecret: []byte(cfg.Session.Secret),
		SessionTTL:    cfg.SessionTTL(),
		InviteTTL:     cfg.InviteTTL(),
	})
	if err != nil {
		return err
	}
	defer deps.Services.Cache.Close()

	upSince := time.Now()
	router, err := routes.RegisterRoutes(deps, routes.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CookieSecure:   cfg.Session.CookieSecure,
	}, upSince)
	if err != nil {
		return err
	}

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server starting", "addr", cfg.Server.Addr, "environment", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
