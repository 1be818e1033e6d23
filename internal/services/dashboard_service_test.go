package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kefystore-backend/internal/models"
)

func deliverOrder(t *testing.T, orders *OrderService, orderID, actorID string) {
	t.Helper()
	for _, next := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		_, err := orders.UpdateStatus(orderID, next, &actorID, nil)
		require.NoError(t, err)
	}
}

func TestVendorStats(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 2000, 10)
	seedProduct(t, db, vendor.ID, 1500, 3)
	fillCart(t, db, buyer.ID, product.ID, 3)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	dashboard := NewDashboardService(db)

	stats, err := dashboard.GetVendorStats(vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 2, stats.PublishedProducts)
	assert.Equal(t, 1, stats.LowStockProducts)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	// Revenue only counts delivered lines
	assert.True(t, stats.RevenueTotal.IsZero())
	assert.Equal(t, 0, stats.UnitsSold)

	deliverOrder(t, orders, order.ID, vendor.ID)

	stats, err = dashboard.GetVendorStats(vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PendingOrders)
	assert.True(t, stats.RevenueTotal.Equal(decimal.NewFromInt(6000)))
	assert.Equal(t, 3, stats.UnitsSold)
}

func TestVendorStatsAreScoped(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	other := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 2000, 10)
	fillCart(t, db, buyer.ID, product.ID, 1)

	orders := newTestOrderService(db, decimal.Zero)
	checkoutOrder(t, orders, buyer.ID)

	stats, err := NewDashboardService(db).GetVendorStats(other.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalProducts)
	assert.Equal(t, 0, stats.TotalOrders)
}

func TestAdminStats(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	product := seedProduct(t, db, vendor.ID, 5000, 10)
	fillCart(t, db, buyer.ID, product.ID, 2)

	orders := newTestOrderService(db, decimal.Zero)
	order := checkoutOrder(t, orders, buyer.ID)

	payments := newTestPaymentService(db, orders, "")
	session, err := payments.InitiatePayment(buyer.ID, &models.PaymentInitiation{
		OrderID:     order.ID,
		Provider:    models.PaymentProviderMoov,
		PhoneNumber: "0701020304",
	})
	require.NoError(t, err)

	body := []byte(`{"transaction_id":"` + session.Transaction.Reference + `","status":"success"}`)
	notification, err := ParseWebhookBody(body)
	require.NoError(t, err)
	_, err = payments.HandleWebhook("moov", notification, body)
	require.NoError(t, err)

	stats, err := NewDashboardService(db).GetAdminStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalVendors)
	assert.Equal(t, 0, stats.PendingVendors)
	assert.Equal(t, 1, stats.TotalProducts)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, 1, stats.OrdersToday)
	assert.True(t, stats.RevenueTotal.Equal(order.TotalAmount))
	assert.Equal(t, 1, stats.PaymentsCompleted)
	assert.Equal(t, 0, stats.PaymentsFailed)

	require.Contains(t, stats.VolumeByProvider, "moov")
	assert.True(t, stats.VolumeByProvider["moov"].Equal(order.TotalAmount))
}

func TestTopProducts(t *testing.T) {
	db := newTestDB(t)
	vendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	slow := seedProduct(t, db, vendor.ID, 1000, 20)
	fast := seedProduct(t, db, vendor.ID, 1000, 20)

	orders := newTestOrderService(db, decimal.Zero)
	fillCart(t, db, buyer.ID, slow.ID, 1)
	fillCart(t, db, buyer.ID, fast.ID, 5)
	checkoutOrder(t, orders, buyer.ID)

	since := time.Now().Add(-24 * time.Hour)
	top, err := NewDashboardService(db).TopProducts(vendor.ID, since, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, fast.ID, top[0].ID)
	assert.Equal(t, 5, top[0].SalesCount)

	// Nothing sold before the window opened
	top, err = NewDashboardService(db).TopProducts(vendor.ID, time.Now().Add(time.Hour), 5)
	require.NoError(t, err)
	assert.Empty(t, top)
}
