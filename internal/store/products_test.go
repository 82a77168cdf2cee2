package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/safar/storefront-api/internal/database"
	"github.com/safar/storefront-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var insertProduct = regexp.QuoteMeta(`INSERT INTO products (name, description, price, stock_quantity, created_at)`)

func TestCreateProductDefaults(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(insertProduct).
		WithArgs("Widget", "", "19.99", int64(0)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(int64(1), "Widget", "", "19.99", int64(0), time.Now()))

	price := models.MustParseMoney("19.99")
	product, err := CreateProduct(context.Background(), db, CreateProductRequest{
		Name:  ptr("Widget"),
		Price: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "19.99", product.Price.String())
	assert.Equal(t, "", product.Description)
	assert.Equal(t, 0, product.StockQuantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductWithOptionalFields(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(insertProduct).
		WithArgs("Gadget", "shiny", "5.5", int64(12)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(int64(2), "Gadget", "shiny", "5.50", int64(12), time.Now()))

	price := models.MustParseMoney("5.50")
	product, err := CreateProduct(context.Background(), db, CreateProductRequest{
		Name:          ptr("Gadget"),
		Price:         &price,
		Description:   ptr("shiny"),
		StockQuantity: ptr(12),
	})
	require.NoError(t, err)
	assert.Equal(t, "5.50", product.Price.String())
	assert.Equal(t, 12, product.StockQuantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductRequiresNameAndPrice(t *testing.T) {
	price := models.MustParseMoney("1.00")

	tests := []struct {
		name string
		req  CreateProductRequest
	}{
		{"missing name", CreateProductRequest{Price: &price}},
		{"missing price", CreateProductRequest{Name: ptr("Widget")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)

			_, err := CreateProduct(context.Background(), db, tt.req)

			var verr *database.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "Name and price are required", verr.Message)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetProduct(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(int64(1), "Widget", "", "19.99", int64(3), time.Now()))

	product, err := GetProduct(context.Background(), db, 1)
	require.NoError(t, err)
	assert.Equal(t, "Widget", product.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductStorageFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = $1`)).
		WillReturnError(errors.New("connection refused"))

	_, err := GetProduct(context.Background(), db, 1)

	var serr *database.StorageError
	require.ErrorAs(t, err, &serr)
	assert.NotErrorIs(t, err, database.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductsEmpty(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows(productCols))

	products, err := ListProducts(context.Background(), db)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}
