package services

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"kefystore-backend/database"
	"kefystore-backend/internal/models"
)

var seedCounter int64

// newTestDB opens an in-memory database with the full schema. A single
// connection keeps every query on the same in-memory instance.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=1")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { db.Close() })
	return db
}

func nextSeed() int64 {
	return atomic.AddInt64(&seedCounter, 1)
}

func seedClient(t *testing.T, db *sql.DB) *models.User {
	t.Helper()

	n := nextSeed()
	user, err := NewUserService(db).CreateUser(&models.UserRegistration{
		Email:     fmt.Sprintf("client%d@example.ci", n),
		Phone:     fmt.Sprintf("07%08d", n),
		FirstName: "Awa",
		LastName:  "Kone",
		Password:  "Passw0rdOk",
		UserType:  models.UserTypeClient,
	})
	require.NoError(t, err)
	return user
}

func seedVendor(t *testing.T, db *sql.DB) *models.User {
	t.Helper()

	n := nextSeed()
	userService := NewUserService(db)
	user, err := userService.CreateUser(&models.UserRegistration{
		Email:        fmt.Sprintf("vendeur%d@example.ci", n),
		Phone:        fmt.Sprintf("05%08d", n),
		FirstName:    "Moussa",
		LastName:     "Diabate",
		Password:     "Passw0rdOk",
		UserType:     models.UserTypeVendor,
		BusinessName: fmt.Sprintf("Boutique %d", n),
	})
	require.NoError(t, err)
	require.NoError(t, userService.ApproveVendor(user.ID))

	user, err = userService.GetUserByID(user.ID)
	require.NoError(t, err)
	return user
}

func seedProduct(t *testing.T, db *sql.DB, vendorID string, price int64, stock int) *models.Product {
	t.Helper()

	n := nextSeed()
	product, err := NewCatalogService(db).CreateProduct(vendorID, &models.ProductCreation{
		Name:     fmt.Sprintf("Pagne wax %d", n),
		Category: models.ProductCategoryFashion,
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
		Publish:  true,
	})
	require.NoError(t, err)
	return product
}

func fillCart(t *testing.T, db *sql.DB, userID, productID string, quantity int) {
	t.Helper()

	_, err := NewCartService(db).AddItem(userID, &models.CartItemCreation{
		ProductID: productID,
		Quantity:  quantity,
	})
	require.NoError(t, err)
}

func newTestOrderService(db *sql.DB, taxRate decimal.Decimal) *OrderService {
	delivery := NewDeliveryService(db, decimal.NewFromInt(1500))
	return NewOrderService(db, delivery, taxRate, "XOF")
}

func checkoutOrder(t *testing.T, orders *OrderService, buyerID string) *models.Order {
	t.Helper()

	order, err := orders.Checkout(buyerID, &models.OrderCreation{
		ShippingName:    "Awa Kone",
		ShippingPhone:   "0701020304",
		ShippingAddress: "Cocody Riviera 3, rue des Jardins",
		ShippingCity:    "Abidjan",
	})
	require.NoError(t, err)
	return order
}
