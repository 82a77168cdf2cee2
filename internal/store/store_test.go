package store

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var (
	orderCols   = []string{"id", "user_id", "total_amount", "status", "created_at"}
	itemCols    = []string{"id", "order_id", "product_id", "quantity", "price"}
	userCols    = []string{"id", "username", "email", "created_at"}
	productCols = []string{"id", "name", "description", "price", "stock_quantity", "created_at"}
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func ptr[T any](v T) *T {
	return &v
}
