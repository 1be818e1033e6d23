package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/services"
	"kefystore-backend/internal/utils"
)

// DashboardHandlers handles vendor and admin dashboard endpoints
type DashboardHandlers struct {
	dashboard *services.DashboardService
	users     *services.UserService
}

// NewDashboardHandlers creates new dashboard handlers
func NewDashboardHandlers(dashboard *services.DashboardService, users *services.UserService) *DashboardHandlers {
	return &DashboardHandlers{dashboard: dashboard, users: users}
}

// VendorStats returns the calling vendeur's dashboard
func (h *DashboardHandlers) VendorStats(c *gin.Context) {
	userID := c.GetString("userID")

	stats, err := h.dashboard.GetVendorStats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to build dashboard",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// TopProducts returns the calling vendeur's best sellers. The period defaults
// to the last 30 days.
func (h *DashboardHandlers) TopProducts(c *gin.Context) {
	userID := c.GetString("userID")

	days := parseIntQuery(c, "days", 30)
	if days <= 0 || days > 365 {
		days = 30
	}
	since := utils.NowGMT().Add(-time.Duration(days) * 24 * time.Hour)

	products, err := h.dashboard.TopProducts(userID, since, parseIntQuery(c, "limit", 5))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list top products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// AdminStats returns the storefront-wide dashboard (admin only)
func (h *DashboardHandlers) AdminStats(c *gin.Context) {
	stats, err := h.dashboard.GetAdminStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to build dashboard",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// ListPendingVendors returns vendeur accounts awaiting approval (admin only)
func (h *DashboardHandlers) ListPendingVendors(c *gin.Context) {
	vendors, err := h.users.ListPendingVendors()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list pending vendors",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    vendors,
	})
}

// ApproveVendor approves a vendeur account (admin only)
func (h *DashboardHandlers) ApproveVendor(c *gin.Context) {
	vendorUserID := c.Param("id")

	if err := h.users.ApproveVendor(vendorUserID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Vendor approved",
	})
}

// statusRequest carries an account status change
type statusRequest struct {
	Status models.UserStatus `json:"status" binding:"required"`
}

// SetUserStatus activates or suspends a user account (admin only)
func (h *DashboardHandlers) SetUserStatus(c *gin.Context) {
	targetID := c.Param("id")

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	if req.Status != models.UserStatusActive && req.Status != models.UserStatusSuspended {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid account status",
		})
		return
	}

	if err := h.users.SetUserStatus(targetID, req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account status updated",
	})
}
