package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"infinite-experiment/hangar/internal/api"
	"infinite-experiment/hangar/internal/auth"
	"infinite-experiment/hangar/internal/common"
	"infinite-experiment/hangar/internal/config"
	"infinite-experiment/hangar/internal/db"
	"infinite-experiment/hangar/internal/logging"
	"infinite-experiment/hangar/internal/metrics"
	"infinite-experiment/hangar/internal/routes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Hangar starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DBDriver,
		"cache_backend", cfg.CacheBackend,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	if cfg.JWTSecret == "" {
		logging.Fatal("JWT_SECRET must be set")
	}

	gormDB, dsn, err := openORM(cfg)
	if err != nil {
		logging.Fatal("Failed to open database (GORM)", "error", err.Error())
	}
	if err := db.Migrate(gormDB); err != nil {
		logging.Fatal("Failed to run migrations", "error", err.Error())
	}

	// sqlx handle for counter reads and health checks
	sqlxDB, err := db.InitSQLX(cfg.DBDriver, dsn)
	if err != nil {
		logging.Fatal("Failed to open database (sqlx)", "error", err.Error())
	}
	defer sqlxDB.Close()
	logging.Info("Connected to database", "driver", cfg.DBDriver)

	probes := map[string]api.HealthProbe{
		"database": sqlxDB.PingContext,
	}

	cache, err := openCache(cfg, probes)
	if err != nil {
		logging.Fatal("Failed to initialize cache", "error", err.Error())
	}

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(cfg, gormDB, sqlxDB, cache, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err.Error())
	}

	router := routes.RegisterRoutes(deps, routes.RouterOptions{
		Config:  cfg,
		Tokens:  auth.NewTokenService([]byte(cfg.JWTSecret)),
		Metrics: metricsReg,
		Probes:  probes,
		UpSince: time.Now(),
	})

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("Server starting", "port", cfg.HTTPPort, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Error("Server stopped with error", "error", err.Error())
		os.Exit(1)
	}
	logging.Info("Server stopped")
}

// openORM opens the GORM connection for the configured driver and returns
// the DSN the sqlx handle should use.
func openORM(cfg *config.Config) (*gorm.DB, string, error) {
	switch cfg.DBDriver {
	case "sqlite", "sqlite3":
		gdb, err := db.InitSQLiteORM(cfg.SQLitePath)
		return gdb, cfg.SQLitePath, err
	case "postgres":
		dsn := cfg.Postgres.DSN()
		gdb, err := db.InitPostgresORM(dsn)
		return gdb, dsn, err
	default:
		return nil, "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// openCache builds the counter cache backend. A Redis backend registers its
// own health probe.
func openCache(cfg *config.Config, probes map[string]api.HealthProbe) (common.CacheInterface, error) {
	switch cfg.CacheBackend {
	case "redis":
		redisCache, err := common.NewRedisCacheService(common.RedisOptions{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		probes["redis"] = redisCache.Ping
		logging.Info("Using Redis cache", "addr", cfg.Redis.Addr())
		return redisCache, nil
	case "memory", "":
		logging.Info("Using in-memory cache")
		return common.NewCacheService(cfg.CounterTTL, 10*time.Minute), nil
	default:
		return nil, fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.CacheBackend)
	}
}
