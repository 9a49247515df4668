package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/contact-manager/internal/config"
	"github.com/ignite/contact-manager/internal/pkg/distlock"
	"github.com/ignite/contact-manager/internal/pkg/logger"
	"github.com/ignite/contact-manager/internal/repository/postgres"
	"github.com/ignite/contact-manager/migrations"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var (
	configPath string
	migrateDir string
	dryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the contact manager PostgreSQL schema",
	Long: `migrate applies the SQL files in migrations/ to the database named by
database.url or DATABASE_URL. Each file is applied once and recorded in the
schema_migrations table, so running it repeatedly is safe.

Concurrent runs are serialized with a distributed lock: Redis when
REDIS_URL is set, a PostgreSQL advisory lock otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE:  runUp,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE:  runStatus,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (optional)")
	rootCmd.PersistentFlags().StringVar(&migrateDir, "dir", "", "Read migrations from this directory instead of the embedded set")
	upCmd.Flags().BoolVar(&dryRun, "dry-run", false, "List pending migrations without applying them")

	rootCmd.AddCommand(upCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type env struct {
	cfg      *config.Config
	db       *sql.DB
	redis    *redis.Client
	migrator *postgres.Migrator
}

func (e *env) Close() {
	if e.redis != nil {
		e.redis.Close()
	}
	e.db.Close()
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	logger.Configure(logger.ParseLevel(cfg.Logging.Level), cfg.Logging.Redact())

	db, err := postgres.Open(ctx, cfg.Database.URL, postgres.PoolOptions{MaxOpenConns: 2})
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, db: db}
	if cfg.Redis.Enabled() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		e.redis = redis.NewClient(opts)
	}

	var files fs.FS = migrations.FS
	if migrateDir != "" {
		files = os.DirFS(migrateDir)
	}
	e.migrator = postgres.NewMigrator(db, files)
	return e, nil
}

func runUp(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if dryRun {
		return printStatus(ctx, e.migrator, true)
	}

	lock := distlock.New(e.redis, e.db, postgres.MigrationLockKey, 10*time.Minute)
	err = distlock.WithLock(ctx, lock, func(ctx context.Context) error {
		applied, err := e.migrator.Up(ctx)
		for _, name := range applied {
			logger.Info("migration applied", "file", name)
		}
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Println("Database is up to date. No migrations to apply.")
		} else {
			fmt.Printf("Applied %d migration(s).\n", len(applied))
		}
		return nil
	})
	if errors.Is(err, distlock.ErrNotAcquired) {
		return fmt.Errorf("another migration run is in progress")
	}
	return err
}

func runStatus(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()
	return printStatus(cmd.Context(), e.migrator, false)
}

func printStatus(ctx context.Context, m *postgres.Migrator, pendingOnly bool) error {
	st, err := m.Status(ctx)
	if err != nil {
		return err
	}
	if !pendingOnly && len(st.Applied) > 0 {
		fmt.Println("Applied migrations:")
		for _, n := range st.Applied {
			fmt.Printf("  ✓ %s\n", n)
		}
	}
	if len(st.Pending) == 0 {
		fmt.Println("No pending migrations.")
		return nil
	}
	fmt.Println("Pending migrations:")
	for _, n := range st.Pending {
		fmt.Printf("  ○ %s\n", n)
	}
	return nil
}
