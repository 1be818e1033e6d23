package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/services"
)

// CartHandlers handles shopping cart endpoints
type CartHandlers struct {
	cart *services.CartService
}

// NewCartHandlers creates new cart handlers
func NewCartHandlers(cart *services.CartService) *CartHandlers {
	return &CartHandlers{cart: cart}
}

// GetCart returns the caller's cart
func (h *CartHandlers) GetCart(c *gin.Context) {
	userID := c.GetString("userID")

	cart, err := h.cart.GetOrCreateCart(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"cart":       cart,
			"subtotal":   cart.Subtotal(),
			"totalItems": cart.TotalItems(),
		},
	})
}

// AddItem adds a product to the caller's cart
func (h *CartHandlers) AddItem(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.CartItemCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	cart, err := h.cart.AddItem(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Item added to cart",
		"data":    cart,
	})
}

// quantityRequest carries a quantity change
type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem changes the quantity of a cart line
func (h *CartHandlers) UpdateItem(c *gin.Context) {
	userID := c.GetString("userID")
	itemID := c.Param("itemId")

	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	cart, err := h.cart.UpdateItemQuantity(userID, itemID, req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cart updated",
		"data":    cart,
	})
}

// RemoveItem deletes a cart line
func (h *CartHandlers) RemoveItem(c *gin.Context) {
	userID := c.GetString("userID")
	itemID := c.Param("itemId")

	cart, err := h.cart.RemoveItem(userID, itemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Item removed",
		"data":    cart,
	})
}

// ClearCart empties the caller's cart
func (h *CartHandlers) ClearCart(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.cart.ClearCart(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cart cleared",
	})
}
