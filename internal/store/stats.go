package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/safar/storefront-api/internal/database"
)

type Statistics struct {
	Users    int64 `json:"users"`
	Products int64 `json:"products"`
	Orders   int64 `json:"orders"`
}

// CheckDatabase runs a trivial query and then counts the main tables.
func CheckDatabase(ctx context.Context, db *sqlx.DB) (*Statistics, error) {
	var one int
	if err := db.GetContext(ctx, &one, `SELECT 1`); err != nil {
		return nil, database.NewStorageError("select 1", err)
	}

	stats := &Statistics{}
	counts := []struct {
		table string
		dest  *int64
	}{
		{"users", &stats.Users},
		{"products", &stats.Products},
		{"orders", &stats.Orders},
	}

	for _, c := range counts {
		if err := db.GetContext(ctx, c.dest, `SELECT COUNT(*) FROM `+c.table); err != nil {
			return nil, database.NewStorageError("count "+c.table, err)
		}
	}

	return stats, nil
}
