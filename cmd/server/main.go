package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/contact-manager/internal/api"
	"github.com/ignite/contact-manager/internal/config"
	"github.com/ignite/contact-manager/internal/pkg/distlock"
	"github.com/ignite/contact-manager/internal/pkg/logger"
	"github.com/ignite/contact-manager/internal/repository/memory"
	"github.com/ignite/contact-manager/internal/repository/postgres"
	"github.com/ignite/contact-manager/internal/repository/rediscache"
	"github.com/ignite/contact-manager/internal/service/contact"
	"github.com/ignite/contact-manager/internal/service/customfield"
	"github.com/ignite/contact-manager/internal/service/merge"
	"github.com/ignite/contact-manager/migrations"
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %w", addr, err)
	}
	ln.Close()
	return nil
}

// migrateOnStart applies pending embedded migrations. It waits while
// another instance holds the migration lock.
func migrateOnStart(ctx context.Context, db *sql.DB, redisClient *redis.Client) error {
	lock := distlock.New(redisClient, db, postgres.MigrationLockKey, 10*time.Minute)
	return distlock.WaitLock(ctx, lock, time.Second, func(ctx context.Context) error {
		applied, err := postgres.NewMigrator(db, migrations.FS).Up(ctx)
		for _, name := range applied {
			logger.Info("migration applied", "file", name)
		}
		if err == nil && len(applied) == 0 {
			logger.Debug("schema up to date")
		}
		return err
	})
}

// repositories is the storage backend chosen by config.
type repositories struct {
	contacts contact.Repository
	fields   rediscache.Backend
	merge    merge.Store
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Configure(logger.ParseLevel(cfg.Logging.Level), cfg.Logging.Redact())

	if err := checkPortAvailable(cfg.Server.Addr()); err != nil {
		logger.Error("pre-flight check failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis ping failed; cache will fall through to storage", "error", err)
		}
	}

	var (
		db    *sql.DB
		repos repositories
	)
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store := memory.New()
		repos = repositories{contacts: store.Contacts(), fields: store.CustomFields(), merge: store.Merge()}
		logger.Warn("using in-memory storage; data is lost on restart")
	default:
		db, err = postgres.Open(ctx, cfg.Database.URL, postgres.PoolOptions{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime(),
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime(),
		})
		if err != nil {
			logger.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if cfg.Database.MigrateOnStart() {
			if err := migrateOnStart(ctx, db, redisClient); err != nil {
				logger.Error("startup migration failed", "error", err)
				os.Exit(1)
			}
		}
		repos = repositories{
			contacts: postgres.NewContactRepo(db),
			fields:   postgres.NewCustomFieldRepo(db),
			merge:    postgres.NewMergeRepo(db),
		}
		logger.Info("connected to postgres")
	}

	if redisClient != nil {
		repos.fields = rediscache.NewCustomFields(repos.fields, redisClient, cfg.Redis.CacheTTL())
		logger.Info("custom field cache enabled", "ttl_seconds", cfg.Redis.CacheTTLSeconds)
	}

	handlers := api.NewHandlers(
		contact.NewService(repos.contacts, repos.fields),
		customfield.NewService(repos.fields),
		merge.NewEngine(repos.merge),
	)
	router := api.SetupRoutes(handlers, api.NewHealthChecker(db, redisClient), cfg.CORS.AllowedOrigins)
	server := api.NewServer(cfg.Server, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr(), "storage", cfg.Storage.Driver)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
