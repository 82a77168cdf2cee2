package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/safar/storefront-api/internal/database"
	"github.com/safar/storefront-api/internal/models"
)

type CreateProductRequest struct {
	Name          *string       `json:"name" validate:"required"`
	Price         *models.Money `json:"price" validate:"required"`
	Description   *string       `json:"description"`
	StockQuantity *int          `json:"stock_quantity"`
}

const productColumns = `id, name, description, price, stock_quantity, created_at`

func CreateProduct(ctx context.Context, db *sqlx.DB, req CreateProductRequest) (*models.Product, error) {
	if err := requireFields(req, "Name and price are required"); err != nil {
		return nil, err
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}
	stock := 0
	if req.StockQuantity != nil {
		stock = *req.StockQuantity
	}

	product := &models.Product{}

	query := `
		INSERT INTO products (name, description, price, stock_quantity, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING ` + productColumns

	err := db.QueryRowxContext(ctx, query, *req.Name, description, *req.Price, stock).StructScan(product)
	if err != nil {
		return nil, database.NewStorageError("create product", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sqlx.DB, id int64) (*models.Product, error) {
	product := &models.Product{}

	err := db.GetContext(ctx, product, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &database.NotFoundError{Resource: "product", ID: id}
		}
		return nil, database.NewStorageError("get product", err)
	}

	return product, nil
}

func ListProducts(ctx context.Context, db *sqlx.DB) ([]models.Product, error) {
	products := []models.Product{}

	if err := db.SelectContext(ctx, &products, `SELECT `+productColumns+` FROM products ORDER BY id`); err != nil {
		return nil, database.NewStorageError("list products", err)
	}

	return products, nil
}
