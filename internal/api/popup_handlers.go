package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/services"
)

// PopupHandlers handles storefront popup endpoints
type PopupHandlers struct {
	popups *services.PopupService
}

// NewPopupHandlers creates new popup handlers
func NewPopupHandlers(popups *services.PopupService) *PopupHandlers {
	return &PopupHandlers{popups: popups}
}

// ActivePopups returns live popups. Signed-in users only see the ones they
// have not acknowledged yet.
func (h *PopupHandlers) ActivePopups(c *gin.Context) {
	userID := c.GetString("userID")

	var popups []models.Popup
	var err error
	if userID != "" {
		popups, err = h.popups.ActivePopupsForUser(userID)
	} else {
		popups, err = h.popups.ActivePopups()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list popups",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    popups,
	})
}

// Acknowledge records the caller's response to a popup
func (h *PopupHandlers) Acknowledge(c *gin.Context) {
	userID := c.GetString("userID")
	popupID := c.Param("id")

	var req models.PopupAckCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	ack, err := h.popups.Acknowledge(popupID, userID, req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Popup acknowledged",
		"data":    ack,
	})
}

// CreatePopup creates a popup (admin only)
func (h *PopupHandlers) CreatePopup(c *gin.Context) {
	var req models.PopupCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	popup, err := h.popups.CreatePopup(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Popup created",
		"data":    popup,
	})
}

// DeactivatePopup stops showing a popup (admin only)
func (h *PopupHandlers) DeactivatePopup(c *gin.Context) {
	popupID := c.Param("id")

	if err := h.popups.DeactivatePopup(popupID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Popup deactivated",
	})
}
