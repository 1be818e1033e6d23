package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/services"
)

// OrderHandlers handles checkout and the order workflow
type OrderHandlers struct {
	orders        *services.OrderService
	users         *services.UserService
	notifications *services.NotificationService
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(orders *services.OrderService, users *services.UserService,
	notifications *services.NotificationService) *OrderHandlers {
	return &OrderHandlers{orders: orders, users: users, notifications: notifications}
}

// Checkout turns the caller's cart into an order
func (h *OrderHandlers) Checkout(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.OrderCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	order, err := h.orders.Checkout(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	h.notifyBuyer(userID, order.OrderNumber, order.Status)
	h.notifyVendors(order)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed",
		"data":    order,
	})
}

// ListOrders returns the caller's orders
func (h *OrderHandlers) ListOrders(c *gin.Context) {
	userID := c.GetString("userID")

	orders, err := h.orders.ListOrdersForBuyer(userID,
		parseIntQuery(c, "limit", 20), parseIntQuery(c, "offset", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// ListVendorOrders returns orders containing the vendeur's products
func (h *OrderHandlers) ListVendorOrders(c *gin.Context) {
	userID := c.GetString("userID")

	orders, err := h.orders.ListOrdersForVendor(userID,
		parseIntQuery(c, "limit", 20), parseIntQuery(c, "offset", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder returns one order. Buyers see their own orders, vendors the
// orders holding their products, admins everything.
func (h *OrderHandlers) GetOrder(c *gin.Context) {
	userID := c.GetString("userID")
	userType := c.GetString("userType")
	orderID := c.Param("id")

	order, err := h.orders.GetOrderByID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if !h.canSeeOrder(order, userID, userType) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Insufficient permissions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateStatus moves an order along the workflow. Vendors may only touch
// orders holding their products; buyers go through Cancel instead.
func (h *OrderHandlers) UpdateStatus(c *gin.Context) {
	userID := c.GetString("userID")
	userType := c.GetString("userType")
	orderID := c.Param("id")

	var req models.OrderStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	if userType == string(models.UserTypeVendor) {
		owns, err := h.orders.VendorOwnsOrderItems(orderID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to check order",
			})
			return
		}
		if !owns {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Insufficient permissions",
			})
			return
		}
	}

	order, err := h.orders.UpdateStatus(orderID, req.Status, &userID, req.Note)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	h.notifyBuyer(order.BuyerID, order.OrderNumber, order.Status)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order updated",
		"data":    order,
	})
}

// cancelRequest carries an optional cancellation note
type cancelRequest struct {
	Note *string `json:"note,omitempty"`
}

// CancelOrder cancels the caller's own pending or confirmed order
func (h *OrderHandlers) CancelOrder(c *gin.Context) {
	userID := c.GetString("userID")
	orderID := c.Param("id")

	var req cancelRequest
	c.ShouldBindJSON(&req)

	order, err := h.orders.CancelOrder(orderID, userID, req.Note)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	h.notifyBuyer(order.BuyerID, order.OrderNumber, order.Status)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order cancelled",
		"data":    order,
	})
}

// RefundOrder refunds a delivered, paid order (admin only)
func (h *OrderHandlers) RefundOrder(c *gin.Context) {
	userID := c.GetString("userID")
	orderID := c.Param("id")

	var req cancelRequest
	c.ShouldBindJSON(&req)

	order, err := h.orders.RefundOrder(orderID, &userID, req.Note)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	h.notifyBuyer(order.BuyerID, order.OrderNumber, order.Status)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order refunded",
		"data":    order,
	})
}

// GetHistory returns the status trail of an order
func (h *OrderHandlers) GetHistory(c *gin.Context) {
	userID := c.GetString("userID")
	userType := c.GetString("userType")
	orderID := c.Param("id")

	order, err := h.orders.GetOrderByID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if !h.canSeeOrder(order, userID, userType) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Insufficient permissions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order.History,
	})
}

func (h *OrderHandlers) canSeeOrder(order *models.Order, userID, userType string) bool {
	if userType == string(models.UserTypeAdmin) || order.BuyerID == userID {
		return true
	}
	if userType == string(models.UserTypeVendor) {
		owns, err := h.orders.VendorOwnsOrderItems(order.ID, userID)
		return err == nil && owns
	}
	return false
}

// notifyVendors tells each vendor holding a line on the order about the
// sale. Best effort, like the buyer notification.
func (h *OrderHandlers) notifyVendors(order *models.Order) {
	if h.notifications == nil {
		return
	}
	seen := make(map[string]bool)
	for _, item := range order.Items {
		if seen[item.VendorID] {
			continue
		}
		seen[item.VendorID] = true
		h.notifications.Notify(item.VendorID, models.NotificationTypeOrder,
			fmt.Sprintf("Nouvelle commande %s", order.OrderNumber),
			fmt.Sprintf("Vous avez une nouvelle vente sur la commande %s", order.OrderNumber),
			nil)
	}
}

func (h *OrderHandlers) notifyBuyer(buyerID, orderNumber string, status models.OrderStatus) {
	if h.notifications == nil {
		return
	}
	email := ""
	if user, err := h.users.GetUserByID(buyerID); err == nil {
		email = user.Email
	}
	h.notifications.NotifyOrderStatus(buyerID, email, orderNumber, status)
}
