package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/safar/storefront-api/internal/config"
	"go.uber.org/zap"
)

// SchemaTables are the tables every storefront query depends on.
var SchemaTables = []string{"users", "products", "orders", "order_items"}

// NewConnection opens the pool and refuses to hand it out until the server
// answers and the storefront schema is in place.
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := CheckSchema(pingCtx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("database pool ready",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
	)

	return db, nil
}

// CheckSchema reports every storefront table missing from the search path.
// It catches a database started with DB_AUTO_MIGRATE=false that was never migrated.
func CheckSchema(ctx context.Context, db *sqlx.DB) error {
	var missing []string
	err := db.SelectContext(ctx, &missing,
		`SELECT t FROM unnest($1::text[]) AS t WHERE to_regclass(t) IS NULL`,
		pq.Array(SchemaTables))
	if err != nil {
		return fmt.Errorf("check schema: %w", err)
	}

	if len(missing) > 0 {
		return fmt.Errorf("schema not migrated, missing tables: %s", strings.Join(missing, ", "))
	}

	return nil
}
