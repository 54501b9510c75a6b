package store

import (
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gaoforge/dev-engine/internal/config"
)

// migrationsTableName matches the shape of the `migrations` table named
// in spec.md §6, rather than golang-migrate's default `schema_migrations`.
const migrationsTableName = "migrations"

// StateStore (C2) is the embedded relational database holding every
// entity table, the append-only audit/usage/lineage tables, and the
// applied-migrations registry.
type StateStore struct {
	db     *gorm.DB
	driver string
}

// Open connects to the configured database driver and applies any pending
// schema migrations via golang-migrate (MigrationEngine phase 1), never
// GORM's AutoMigrate, so schema changes are versioned and idempotent.
func Open(cfg *config.Config) (*StateStore, error) {
	db, err := dial(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: dial: %w", err)
	}

	store := &StateStore{db: db, driver: cfg.Store.Driver}

	if err := store.applyMigrations(cfg.Store); err != nil {
		return nil, fmt.Errorf("store: apply migrations: %w", err)
	}

	return store, nil
}

func dial(cfg config.StoreConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode)
		db, err := gorm.Open(postgres.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return db, nil

	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("connect sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// A single writer connection honors the "embedded, single-writer"
		// StateStore contract (spec.md §2) — SQLite serializes writes
		// anyway, but a shared connection pool would surface
		// "database is locked" errors under concurrent readers+writer.
		sqlDB.SetMaxOpenConns(1)
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// Migrate applies any pending schema migrations. It is exposed
// separately from Open so MigrationEngine's first phase can invoke it
// explicitly and treat a no-op second run as success (idempotent).
func (s *StateStore) Migrate(cfg config.StoreConfig) error {
	return s.applyMigrations(cfg)
}

func (s *StateStore) applyMigrations(cfg config.StoreConfig) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	// Schema differs enough between dialects (AUTOINCREMENT vs SERIAL,
	// JSON vs JSONB, trigger syntax) that each driver keeps its own
	// migration source subdirectory rather than sharing one SQL file set.
	sourceURL := fmt.Sprintf("file://%s/%s", cfg.MigrationsDir, s.driver)

	var migrator *migrate.Migrate
	switch s.driver {
	case "postgres":
		driver, err := migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{
			MigrationsTable: migrationsTableName,
		})
		if err != nil {
			return fmt.Errorf("postgres migration driver: %w", err)
		}
		migrator, err = migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
		if err != nil {
			return fmt.Errorf("new migrator: %w", err)
		}
	case "sqlite":
		driver, err := migratesqlite3.WithInstance(sqlDB, &migratesqlite3.Config{
			MigrationsTable: migrationsTableName,
		})
		if err != nil {
			return fmt.Errorf("sqlite migration driver: %w", err)
		}
		migrator, err = migrate.NewWithDatabaseInstance(sourceURL, "sqlite3", driver)
		if err != nil {
			return fmt.Errorf("new migrator: %w", err)
		}
	default:
		return fmt.Errorf("unsupported store driver %q", s.driver)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// DB returns the underlying GORM handle for repository construction.
func (s *StateStore) DB() *gorm.DB {
	return s.db
}

// Driver returns the configured store driver ("sqlite" or "postgres").
func (s *StateStore) Driver() string {
	return s.driver
}

// Close releases the underlying connection pool.
func (s *StateStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
