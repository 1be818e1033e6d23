package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kefystore-backend/internal/services"
)

// Checkout must notify the buyer and every vendor with a line on the
// order, each vendor once no matter how many lines they hold.
func TestCheckoutNotifiesBuyerAndVendors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	vendor := seedVendor(t, db)
	otherVendor := seedVendor(t, db)
	buyer := seedClient(t, db)
	first := seedProduct(t, db, vendor.ID, 1000, 10)
	second := seedProduct(t, db, vendor.ID, 2000, 10)
	third := seedProduct(t, db, otherVendor.ID, 3000, 10)
	fillCart(t, db, buyer.ID, first.ID, 1)
	fillCart(t, db, buyer.ID, second.ID, 1)
	fillCart(t, db, buyer.ID, third.ID, 1)

	notifications := services.NewNotificationService(db, nil)
	handlers := NewOrderHandlers(newTestOrderService(db), services.NewUserService(db), notifications)

	router := gin.New()
	router.POST("/api/v1/orders", func(c *gin.Context) {
		c.Set("userID", buyer.ID)
		c.Next()
	}, handlers.Checkout)

	body := `{
		"shippingName": "Awa Kone",
		"shippingPhone": "0701020304",
		"shippingAddress": "Cocody Riviera 3, rue des Jardins",
		"shippingCity": "Abidjan"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	buyerFeed, err := notifications.ListForUser(buyer.ID, true, 10, 0)
	require.NoError(t, err)
	assert.Len(t, buyerFeed, 1)

	// Two lines for the first vendor still mean one notification
	vendorFeed, err := notifications.ListForUser(vendor.ID, true, 10, 0)
	require.NoError(t, err)
	require.Len(t, vendorFeed, 1)
	assert.Contains(t, vendorFeed[0].Title, "Nouvelle commande")

	otherFeed, err := notifications.ListForUser(otherVendor.ID, true, 10, 0)
	require.NoError(t, err)
	assert.Len(t, otherFeed, 1)
}
