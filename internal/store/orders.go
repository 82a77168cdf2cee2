package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/safar/storefront-api/internal/database"
	"github.com/safar/storefront-api/internal/models"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	UserID *int64             `json:"user_id" validate:"required"`
	Items  []OrderItemRequest `json:"items" validate:"required"`
	Status *string            `json:"status"`
}

type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type productPrice struct {
	ID    int64        `db:"id"`
	Price models.Money `db:"price"`
}

const (
	orderColumns     = `id, user_id, total_amount, status, created_at`
	orderItemColumns = `id, order_id, product_id, quantity, price`
)

// CreateOrder prices the requested items against the current catalog and writes
// the order with its line items in one transaction. Items whose product does not
// exist are skipped: they add nothing to the total and get no row.
func CreateOrder(ctx context.Context, db *sqlx.DB, req CreateOrderRequest) (*models.Order, error) {
	if err := requireFields(req, "User ID and items are required"); err != nil {
		return nil, err
	}

	status := models.OrderStatusPending
	if req.Status != nil {
		status = *req.Status
	}

	var order *models.Order

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sqlx.Tx) error {
		prices, err := lookupPrices(ctx, tx, req.Items)
		if err != nil {
			return err
		}

		lines, total := priceLines(req.Items, prices)

		created := &models.Order{}
		err = tx.QueryRowxContext(ctx,
			`INSERT INTO orders (user_id, total_amount, status, created_at)
			 VALUES ($1, $2, $3, NOW())
			 RETURNING `+orderColumns,
			*req.UserID, total, status).StructScan(created)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		created.Items = make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			var item models.OrderItem
			err := tx.QueryRowxContext(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity, price)
				 VALUES ($1, $2, $3, $4)
				 RETURNING `+orderItemColumns,
				created.ID, line.ProductID, line.Quantity, line.Price).StructScan(&item)
			if err != nil {
				return fmt.Errorf("insert order item for product %d: %w", line.ProductID, err)
			}
			created.Items = append(created.Items, item)
		}

		order = created
		return nil
	})
	if err != nil {
		return nil, database.NewStorageError("create order", err)
	}

	return order, nil
}

func lookupPrices(ctx context.Context, tx *sqlx.Tx, items []OrderItemRequest) (map[int64]models.Money, error) {
	prices := make(map[int64]models.Money)

	ids := uniqueProductIDs(items)
	if len(ids) == 0 {
		return prices, nil
	}

	query, args, err := sqlx.In(`SELECT id, price FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build product lookup: %w", err)
	}

	var rows []productPrice
	if err := tx.SelectContext(ctx, &rows, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("lookup products: %w", err)
	}

	for _, row := range rows {
		prices[row.ID] = row.Price
	}

	return prices, nil
}

// priceLines walks items in request order, snapshotting the unit price of every
// known product and summing price × quantity exactly.
func priceLines(items []OrderItemRequest, prices map[int64]models.Money) ([]models.OrderItem, models.Money) {
	total := decimal.Zero
	lines := make([]models.OrderItem, 0, len(items))

	for _, item := range items {
		price, ok := prices[item.ProductID]
		if !ok {
			continue
		}

		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		lines = append(lines, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
		})
	}

	return lines, models.NewMoney(total)
}

func uniqueProductIDs(items []OrderItemRequest) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func GetOrder(ctx context.Context, db *sqlx.DB, id int64) (*models.Order, error) {
	order := &models.Order{}

	err := db.GetContext(ctx, order, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &database.NotFoundError{Resource: "order", ID: id}
		}
		return nil, database.NewStorageError("get order", err)
	}

	items := []models.OrderItem{}
	err = db.SelectContext(ctx, &items,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, database.NewStorageError("get order items", err)
	}

	order.Items = items

	return order, nil
}

func ListOrders(ctx context.Context, db *sqlx.DB) ([]models.Order, error) {
	orders := []models.Order{}

	err := db.SelectContext(ctx, &orders, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
	if err != nil {
		return nil, database.NewStorageError("list orders", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*models.Order, len(orders))
	for i := range orders {
		orders[i].Items = []models.OrderItem{}
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	var items []models.OrderItem
	err = db.SelectContext(ctx, &items,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		pq.Array(ids))
	if err != nil {
		return nil, database.NewStorageError("list order items", err)
	}

	for _, item := range items {
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	return orders, nil
}
