package api

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"kefystore-backend/database"
	"kefystore-backend/internal/models"
	"kefystore-backend/internal/services"
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
	user, err := services.NewUserService(db).CreateUser(&models.UserRegistration{
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
	userService := services.NewUserService(db)
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
	return user
}

func seedProduct(t *testing.T, db *sql.DB, vendorID string, price int64, stock int) *models.Product {
	t.Helper()

	n := nextSeed()
	product, err := services.NewCatalogService(db).CreateProduct(vendorID, &models.ProductCreation{
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

	_, err := services.NewCartService(db).AddItem(userID, &models.CartItemCreation{
		ProductID: productID,
		Quantity:  quantity,
	})
	require.NoError(t, err)
}

func newTestOrderService(db *sql.DB) *services.OrderService {
	delivery := services.NewDeliveryService(db, decimal.NewFromInt(1500))
	return services.NewOrderService(db, delivery, decimal.Zero, "XOF")
}
