package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/services"
)

// DeliveryHandlers handles delivery zone endpoints
type DeliveryHandlers struct {
	delivery *services.DeliveryService
}

// NewDeliveryHandlers creates new delivery handlers
func NewDeliveryHandlers(delivery *services.DeliveryService) *DeliveryHandlers {
	return &DeliveryHandlers{delivery: delivery}
}

// QuoteFee returns the shipping fee for a city
func (h *DeliveryHandlers) QuoteFee(c *gin.Context) {
	city := c.Query("city")

	fee, zone, err := h.delivery.FeeForCity(city)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to look up delivery fee",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"city": city,
			"fee":  fee,
			"zone": zone,
		},
	})
}

// ListZones returns all active delivery zones
func (h *DeliveryHandlers) ListZones(c *gin.Context) {
	zones, err := h.delivery.ListZones()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list delivery zones",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    zones,
	})
}

// CreateZone adds a delivery zone (admin only)
func (h *DeliveryHandlers) CreateZone(c *gin.Context) {
	var req models.DeliveryZoneCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	zone, err := h.delivery.CreateZone(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Delivery zone created",
		"data":    zone,
	})
}

// DeactivateZone disables a delivery zone (admin only)
func (h *DeliveryHandlers) DeactivateZone(c *gin.Context) {
	zoneID := c.Param("id")

	if err := h.delivery.DeactivateZone(zoneID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Delivery zone deactivated",
	})
}
