package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/services"
)

// PaymentHandlers handles mobile-money payment endpoints
type PaymentHandlers struct {
	payments      *services.PaymentService
	orders        *services.OrderService
	users         *services.UserService
	notifications *services.NotificationService
}

// NewPaymentHandlers creates new payment handlers
func NewPaymentHandlers(payments *services.PaymentService, orders *services.OrderService,
	users *services.UserService, notifications *services.NotificationService) *PaymentHandlers {
	return &PaymentHandlers{payments: payments, orders: orders, users: users, notifications: notifications}
}

// InitiatePayment starts a payment for the caller's order
func (h *PaymentHandlers) InitiatePayment(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.PaymentInitiation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	session, err := h.payments.InitiatePayment(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Payment initiated",
		"data":    session,
	})
}

// Webhook receives provider notifications. The signature is checked against
// the raw body before anything is parsed; a bad signature changes nothing.
func (h *PaymentHandlers) Webhook(c *gin.Context) {
	provider := c.Param("provider")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Failed to read request body",
		})
		return
	}

	signature := c.GetHeader("X-Signature")
	if !h.payments.VerifySignature(provider, body, signature) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid signature",
		})
		return
	}

	notification, err := services.ParseWebhookBody(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	transaction, err := h.payments.HandleWebhook(provider, notification, body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if transaction.Status == models.TransactionStatusCompleted && h.notifications != nil {
		email := ""
		if user, err := h.users.GetUserByID(transaction.UserID); err == nil {
			email = user.Email
		}
		if order, err := h.orders.GetOrderByID(transaction.OrderID); err == nil {
			h.notifications.NotifyOrderStatus(transaction.UserID, email, order.OrderNumber, order.Status)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"reference": transaction.Reference, "status": transaction.Status},
	})
}

// GetTransaction returns one of the caller's transactions by reference
func (h *PaymentHandlers) GetTransaction(c *gin.Context) {
	userID := c.GetString("userID")
	userType := c.GetString("userType")
	reference := c.Param("reference")

	transaction, err := h.payments.GetTransactionByReference(reference)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if transaction.UserID != userID && userType != string(models.UserTypeAdmin) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Insufficient permissions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    transaction,
	})
}

// ListOrderTransactions returns the payment attempts for an order
func (h *PaymentHandlers) ListOrderTransactions(c *gin.Context) {
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

	if order.BuyerID != userID && userType != string(models.UserTypeAdmin) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Insufficient permissions",
		})
		return
	}

	transactions, err := h.payments.ListTransactionsForOrder(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list transactions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    transactions,
	})
}
