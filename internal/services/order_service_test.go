package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kefystore-backend/internal/models"
)

func TestCheckoutReservesStockAndClearsCart(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 10)
	fillCart(t, db, buyer.ID, product.ID, 3)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStateUnpaid, order.PaymentState)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(3000)))
	assert.True(t, order.ShippingCost.Equal(decimal.NewFromInt(1500)))
	assert.True(t, order.TaxAmount.IsZero())
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(4500)))
	assert.Len(t, order.Items, 1)
	assert.Equal(t, vendor.ID, order.Items[0].VendorID)
	assert.Equal(t, product.Name, order.Items[0].ProductName)

	reloaded, err := NewCatalogService(db).GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.Stock)
	assert.Equal(t, 3, reloaded.SalesCount)
	assert.Equal(t, models.ProductStatusPublished, reloaded.Status)

	cart, err := NewCartService(db).GetOrCreateCart(buyer.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCheckoutPersistsOrderAndItems(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 2500, 8)
	fillCart(t, db, buyer.ID, product.ID, 2)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	// The committed rows must match what checkout returned
	reloaded, err := orders.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Subtotal.Equal(decimal.NewFromInt(5000)))
	assert.True(t, reloaded.TotalAmount.Equal(order.TotalAmount))
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, order.ID, reloaded.Items[0].OrderID)
	assert.Equal(t, 2, reloaded.Items[0].Quantity)
	require.Len(t, reloaded.History, 1)
	assert.Equal(t, models.OrderStatusPending, reloaded.History[0].ToStatus)
}

func TestCheckoutAppliesTax(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 2000, 5)
	fillCart(t, db, buyer.ID, product.ID, 2)

	orders := newTestOrderService(db, decimal.RequireFromString("0.1"))
	order := checkoutOrder(t, orders, buyer.ID)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(4000)))
	assert.True(t, order.TaxAmount.Equal(decimal.NewFromInt(400)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(5900)))
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := newTestDB(t)
	buyer := seedClient(t, db)

	orders := newTestOrderService(db, decimal.Zero)
	_, err := orders.Checkout(buyer.ID, &models.OrderCreation{
		ShippingName:    "Awa Kone",
		ShippingPhone:   "0701020304",
		ShippingAddress: "Cocody Riviera 3, rue des Jardins",
		ShippingCity:    "Abidjan",
	})
	assert.ErrorContains(t, err, "cart is empty")
}

func TestCheckoutInsufficientStockAbortsEverything(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 5)
	fillCart(t, db, buyer.ID, product.ID, 5)

	// Someone else takes most of the stock between add-to-cart and checkout
	_, err := db.Exec("UPDATE products SET stock = 2 WHERE id = ?", product.ID)
	require.NoError(t, err)

	orders := newTestOrderService(db, decimal.Zero)
	_, err = orders.Checkout(buyer.ID, &models.OrderCreation{
		ShippingName:    "Awa Kone",
		ShippingPhone:   "0701020304",
		ShippingAddress: "Cocody Riviera 3, rue des Jardins",
		ShippingCity:    "Abidjan",
	})
	assert.ErrorContains(t, err, "insufficient stock")

	// The failed checkout must leave stock and cart untouched
	reloaded, err := NewCatalogService(db).GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Stock)
	assert.Equal(t, 0, reloaded.SalesCount)

	cart, err := NewCartService(db).GetOrCreateCart(buyer.ID)
	require.NoError(t, err)
	assert.False(t, cart.IsEmpty())

	buyerOrders, err := orders.ListOrdersForBuyer(buyer.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, buyerOrders)
}

func TestCheckoutLastUnitArchivesProduct(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 3)
	fillCart(t, db, buyer.ID, product.ID, 3)

	orders := newTestOrderService(db, decimal.Zero)
	checkoutOrder(t, orders, buyer.ID)

	reloaded, err := NewCatalogService(db).GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Stock)
	assert.Equal(t, models.ProductStatusArchived, reloaded.Status)
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 10)
	fillCart(t, db, buyer.ID, product.ID, 1)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	for _, next := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		updated, err := orders.UpdateStatus(order.ID, next, &vendor.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	history, err := orders.GetHistory(order.ID)
	require.NoError(t, err)
	require.Len(t, history, 5) // checkout entry plus four moves
	assert.Equal(t, models.OrderStatusPending, history[0].ToStatus)
	assert.Equal(t, models.OrderStatusShipped, history[4].FromStatus)
	assert.Equal(t, models.OrderStatusDelivered, history[4].ToStatus)
}

func TestUpdateStatusRejectsIllegalMove(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 10)
	fillCart(t, db, buyer.ID, product.ID, 1)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	_, err := orders.UpdateStatus(order.ID, models.OrderStatusShipped, &vendor.ID, nil)
	assert.ErrorContains(t, err, "cannot move order from pending to shipped")

	_, err = orders.UpdateStatus(order.ID, "expédié", &vendor.ID, nil)
	assert.ErrorContains(t, err, "unknown order status")

	reloaded, err := orders.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)
}

func TestStatusUpdateCannotRefund(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 10)
	fillCart(t, db, buyer.ID, product.ID, 1)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	for _, next := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		_, err := orders.UpdateStatus(order.ID, next, &vendor.ID, nil)
		require.NoError(t, err)
	}

	// The order was never paid: RefundOrder refuses, and the workflow
	// endpoint cannot sidestep it
	admin := "admin-1"
	_, err := orders.RefundOrder(order.ID, &admin, nil)
	assert.ErrorContains(t, err, "no completed payment")

	_, err = orders.UpdateStatus(order.ID, models.OrderStatusRefunded, &vendor.ID, nil)
	assert.ErrorContains(t, err, "refunds must go through")

	reloaded, err := orders.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, reloaded.Status)
	assert.Equal(t, models.PaymentStateUnpaid, reloaded.PaymentState)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 10)
	fillCart(t, db, buyer.ID, product.ID, 4)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	cancelled, err := orders.CancelOrder(order.ID, buyer.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	reloaded, err := NewCatalogService(db).GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, reloaded.Stock)
	assert.Equal(t, 0, reloaded.SalesCount)

	// Cancelled is final
	_, err = orders.CancelOrder(order.ID, buyer.ID, nil)
	assert.ErrorContains(t, err, "can no longer be cancelled")
}

func TestCancelOrderRepublishesArchivedProduct(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 2)
	fillCart(t, db, buyer.ID, product.ID, 2)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	reloaded, err := NewCatalogService(db).GetProductByID(product.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProductStatusArchived, reloaded.Status)

	_, err = orders.CancelOrder(order.ID, buyer.ID, nil)
	require.NoError(t, err)

	reloaded, err = NewCatalogService(db).GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Stock)
	assert.Equal(t, models.ProductStatusPublished, reloaded.Status)
}

func TestCancelKeepsVendorArchivedProductArchived(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 5)
	fillCart(t, db, buyer.ID, product.ID, 2)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	// The vendor pulls the product while units remain
	require.NoError(t, NewCatalogService(db).DeleteProduct(product.ID, vendor.ID))

	_, err := orders.CancelOrder(order.ID, buyer.ID, nil)
	require.NoError(t, err)

	reloaded, err := NewCatalogService(db).GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Stock)
	assert.Equal(t, models.ProductStatusArchived, reloaded.Status)
}

func TestCancelOrderOwnership(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	stranger := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 10)
	fillCart(t, db, buyer.ID, product.ID, 1)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	_, err := orders.CancelOrder(order.ID, stranger.ID, nil)
	assert.ErrorContains(t, err, "does not belong")
}

func TestVendorOrderListing(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	otherVendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 10)
	fillCart(t, db, buyer.ID, product.ID, 1)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	mine, err := orders.ListOrdersForVendor(vendor.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := orders.ListOrdersForVendor(otherVendor.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	owns, err := orders.VendorOwnsOrderItems(order.ID, vendor.ID)
	require.NoError(t, err)
	assert.True(t, owns)

	owns, err = orders.VendorOwnsOrderItems(order.ID, otherVendor.ID)
	require.NoError(t, err)
	assert.False(t, owns)
}

func TestRefundRequiresDeliveredPaidOrder(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 1000, 10)
	fillCart(t, db, buyer.ID, product.ID, 1)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	admin := "admin-1"
	_, err := orders.RefundOrder(order.ID, &admin, nil)
	assert.ErrorContains(t, err, "only delivered orders")
}
