package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/config"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// uniqueViolation is the SQLSTATE of a unique index conflict.
const uniqueViolation = "23505"

// DB is the connection pool shared by the listing and user repositories.
type DB struct {
	pool   *pgxpool.Pool
	logger domain.Logger
}

// NewDB opens the pool, applies pending migrations when store.auto_migrate is
// set, and returns a cleanup function that closes the pool.
func NewDB(ctx context.Context, cfgProvider config.Provider, logger domain.Logger) (*DB, func(), error) {
	storeCfg := cfgProvider.Get().Store
	if storeCfg.AutoMigrate {
		if err := runMigrations(ctx, storeCfg.DSN, logger); err != nil {
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
	}

	poolCfg, err := pgxpool.ParseConfig(storeCfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("parse dsn: %w", err)
	}
	if storeCfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(storeCfg.MaxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info(ctx, "Connected to Postgres", "max_conns", poolCfg.MaxConns)

	db := &DB{pool: pool, logger: logger}
	cleanup := func() {
		logger.Info(context.Background(), "Closing Postgres pool...")
		pool.Close()
	}
	return db, cleanup, nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func (db *DB) qb() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func runMigrations(ctx context.Context, dsn string, logger domain.Logger) error {
	// golang-migrate needs a database/sql handle; it is separate from the pool.
	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("sql.Open pgx: %w", err)
	}
	defer sqldb.Close()

	driver, err := migratepg.WithInstance(sqldb, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("postgres driver: %w", err)
	}
	src, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate.NewWithInstance: %w", err)
	}
	defer m.Close()

	logger.Info(ctx, "Applying database migrations")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info(ctx, "No new migrations to apply")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info(ctx, "Migrations applied")
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
