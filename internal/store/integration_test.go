//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/safar/storefront-api/internal/database"
	"github.com/safar/storefront-api/internal/database/dbtest"
	"github.com/safar/storefront-api/internal/models"
	"github.com/safar/storefront-api/internal/store"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	return dbtest.NewPostgres(t)
}

func seedCatalog(t *testing.T, db *sqlx.DB) (*models.User, *models.Product) {
	t.Helper()
	ctx := context.Background()

	username, email := "alice", "alice@example.com"
	user, err := store.CreateUser(ctx, db, store.CreateUserRequest{Username: &username, Email: &email})
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	name := "Widget"
	price := models.MustParseMoney("19.99")
	product, err := store.CreateProduct(ctx, db, store.CreateProductRequest{Name: &name, Price: &price})
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	return user, product
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
		t.Fatalf("Count %s: %v", table, err)
	}
	return n
}

func TestCreateOrderComputesTotal(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user, product := seedCatalog(t, db)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID: &user.ID,
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID + 1000, Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if got := order.TotalAmount.String(); got != "39.98" {
		t.Errorf("Expected total 39.98, got %s", got)
	}
	if len(order.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(order.Items))
	}

	fetched, err := store.GetOrder(ctx, db, order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if fetched.Status != models.OrderStatusPending {
		t.Errorf("Expected status pending, got %s", fetched.Status)
	}
	if len(fetched.Items) != 1 || fetched.Items[0].Price.String() != "19.99" {
		t.Errorf("Unexpected items %+v", fetched.Items)
	}
}

func TestCreateOrderIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user, product := seedCatalog(t, db)

	// The second line violates CHECK (quantity > 0) after the order row is written.
	_, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID: &user.ID,
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 1},
			{ProductID: product.ID, Quantity: 0},
		},
	})
	if err == nil {
		t.Fatal("Expected error for zero quantity")
	}

	var serr *database.StorageError
	if !errors.As(err, &serr) || serr.Class != database.ErrorClassConstraint {
		t.Errorf("Expected constraint storage error, got %v", err)
	}

	if n := countRows(t, db, "orders"); n != 0 {
		t.Errorf("Expected no orders after rollback, got %d", n)
	}
	if n := countRows(t, db, "order_items"); n != 0 {
		t.Errorf("Expected no order items after rollback, got %d", n)
	}
}

func TestCreateOrderUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	missing := int64(999)
	_, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID: &missing,
		Items:  []store.OrderItemRequest{},
	})

	var serr *database.StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected storage error, got %v", err)
	}
	if n := countRows(t, db, "orders"); n != 0 {
		t.Errorf("Expected no orders, got %d", n)
	}
}

func TestPriceSnapshotSurvivesCatalogChange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user, product := seedCatalog(t, db)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID: &user.ID,
		Items:  []store.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if _, err := db.Exec(`UPDATE products SET price = 25.00 WHERE id = $1`, product.ID); err != nil {
		t.Fatalf("Update price: %v", err)
	}

	fetched, err := store.GetOrder(ctx, db, order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if got := fetched.Items[0].Price.String(); got != "19.99" {
		t.Errorf("Expected snapshot price 19.99, got %s", got)
	}
	if got := fetched.TotalAmount.String(); got != "19.99" {
		t.Errorf("Expected total 19.99, got %s", got)
	}
}

func TestConcurrentIdenticalOrders(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user, product := seedCatalog(t, db)

	const n = 5
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
				UserID: &user.ID,
				Items:  []store.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
			})
			if err != nil {
				errs <- err
				return
			}
			ids <- order.ID
		}()
	}

	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Errorf("Create order: %v", err)
	}

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("Duplicate order id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("Expected %d distinct orders, got %d", n, len(seen))
	}

	orders, err := store.ListOrders(ctx, db)
	if err != nil {
		t.Fatalf("List orders: %v", err)
	}
	for _, o := range orders {
		if len(o.Items) != 1 {
			t.Errorf("Order %d has %d items", o.ID, len(o.Items))
		}
	}
}

func TestCheckDatabaseCounts(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)

	stats, err := store.CheckDatabase(context.Background(), db)
	if err != nil {
		t.Fatalf("Check database: %v", err)
	}
	if stats.Users != 1 || stats.Products != 1 || stats.Orders != 0 {
		t.Errorf("Unexpected statistics %+v", stats)
	}
}

// beyondInt32 is larger than any 32-bit serial could hold.
const beyondInt32 = int64(3000000000)

func TestCreateOrderSkipsProductIDBeyondInt32(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user, product := seedCatalog(t, db)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID: &user.ID,
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: beyondInt32, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if got := order.TotalAmount.String(); got != "39.98" {
		t.Errorf("Expected total 39.98, got %s", got)
	}
	if len(order.Items) != 1 || order.Items[0].ProductID != product.ID {
		t.Errorf("Expected only product %d, got %+v", product.ID, order.Items)
	}
}

func TestGetBeyondInt32IsNotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	lookups := map[string]func() error{
		"user": func() error {
			_, err := store.GetUser(ctx, db, beyondInt32)
			return err
		},
		"product": func() error {
			_, err := store.GetProduct(ctx, db, beyondInt32)
			return err
		},
		"order": func() error {
			_, err := store.GetOrder(ctx, db, beyondInt32)
			return err
		},
	}

	for name, lookup := range lookups {
		t.Run(name, func(t *testing.T) {
			if err := lookup(); !errors.Is(err, database.ErrNotFound) {
				t.Errorf("Expected not found, got %v", err)
			}
		})
	}
}

func TestCheckSchemaAfterMigrations(t *testing.T) {
	db := setupTestDB(t)

	if err := database.CheckSchema(context.Background(), db); err != nil {
		t.Fatalf("Check schema: %v", err)
	}

	if _, err := db.Exec(`DROP TABLE order_items`); err != nil {
		t.Fatalf("Drop table: %v", err)
	}
	err := database.CheckSchema(context.Background(), db)
	if err == nil || err.Error() != "schema not migrated, missing tables: order_items" {
		t.Errorf("Expected missing order_items, got %v", err)
	}
}
