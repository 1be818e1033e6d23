package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kefystore-backend/internal/services"
)

// WishlistHandlers handles wishlist endpoints
type WishlistHandlers struct {
	wishlist *services.WishlistService
}

// NewWishlistHandlers creates new wishlist handlers
func NewWishlistHandlers(wishlist *services.WishlistService) *WishlistHandlers {
	return &WishlistHandlers{wishlist: wishlist}
}

// ListWishlist returns the caller's wishlist
func (h *WishlistHandlers) ListWishlist(c *gin.Context) {
	userID := c.GetString("userID")

	items, err := h.wishlist.ListItems(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list wishlist",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

// AddToWishlist puts a product on the caller's wishlist
func (h *WishlistHandlers) AddToWishlist(c *gin.Context) {
	userID := c.GetString("userID")
	productID := c.Param("productId")

	item, err := h.wishlist.AddItem(userID, productID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Added to wishlist",
		"data":    item,
	})
}

// RemoveFromWishlist takes a product off the caller's wishlist
func (h *WishlistHandlers) RemoveFromWishlist(c *gin.Context) {
	userID := c.GetString("userID")
	productID := c.Param("productId")

	if err := h.wishlist.RemoveItem(userID, productID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Removed from wishlist",
	})
}
