package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/customeridentity/backend/internal/infrastructure/config"
	"github.com/customeridentity/backend/internal/infrastructure/logger"
	"github.com/customeridentity/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var errUsage = errors.New("usage")

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{
		Level:   logLevel,
		Format:  "console",
		Output:  "stdout",
		Service: "customer-identity-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	path, err := resolveMigrationsPath(migrationsPath)
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}
	log.Debug("Migration CLI started", zap.String("command", args[0]), zap.String("migrations_path", path))

	if err := run(log, path, args); err != nil {
		if errors.Is(err, errUsage) {
			log.Error(err.Error())
			printUsage()
			os.Exit(2)
		}
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(log *zap.Logger, path string, args []string) error {
	command, rest := args[0], args[1:]

	// create and list work on the filesystem only
	switch command {
	case "create":
		if len(rest) < 1 {
			return fmt.Errorf("%w: migrate create <name>", errUsage)
		}
		mf, err := migration.CreateMigration(path, rest[0])
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.Uint("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return nil

	case "list":
		entries, err := migration.ListMigrations(path)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			log.Info("No migrations found")
			return nil
		}
		for _, e := range entries {
			rollback := ""
			if !e.HasDown {
				rollback = " (no rollback)"
			}
			fmt.Printf("  %s%s\n", e.BaseName(), rollback)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}

	m, err := migration.New(db, path, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		return m.Up()

	case "down":
		return m.Down()

	case "steps", "step":
		if len(rest) < 1 {
			return fmt.Errorf("%w: migrate steps <n>", errUsage)
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("%w: invalid step count %q", errUsage, rest[0])
		}
		return m.Steps(n)

	case "goto":
		if len(rest) < 1 {
			return fmt.Errorf("%w: migrate goto <version>", errUsage)
		}
		v, err := strconv.ParseUint(rest[0], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: invalid version %q", errUsage, rest[0])
		}
		return m.GoTo(uint(v))

	case "version":
		status, err := m.Version()
		if err != nil {
			return err
		}
		if status.Version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version",
			zap.Uint("version", status.Version),
			zap.Bool("dirty", status.Dirty),
		)
		return nil

	case "force":
		if len(rest) < 1 {
			return fmt.Errorf("%w: migrate force <version>", errUsage)
		}
		v, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("%w: invalid version %q", errUsage, rest[0])
		}
		return m.Force(v)

	case "drop":
		if len(rest) < 1 || (rest[0] != "-confirm" && rest[0] != "--confirm") {
			return fmt.Errorf("%w: drop deletes all customer data, rerun as 'migrate drop -confirm'", errUsage)
		}
		return m.Drop()

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// resolveMigrationsPath prefers the flag, then ./migrations, then the
// directory two levels above the binary.
func resolveMigrationsPath(flagValue string) (string, error) {
	path := flagValue
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	return filepath.Abs(path)
}

func printUsage() {
	fmt.Println(`Customer Identity Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  steps <n>             Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Set the version without running SQL (clears dirty state)
  drop -confirm         Drop all tables
  create <name>         Create a new numbered migration pair
  list                  List migrations on disk

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  CIS_DATABASE_HOST, CIS_DATABASE_PORT, CIS_DATABASE_USER,
  CIS_DATABASE_PASSWORD, CIS_DATABASE_DBNAME, CIS_DATABASE_SSLMODE`)
}
