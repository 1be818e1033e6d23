package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kefystore-backend/internal/models"
	"kefystore-backend/internal/services"
)

// AuthHandlers handles registration, login and account endpoints
type AuthHandlers struct {
	userService   *services.UserService
	authService   *services.AuthService
	otpService    *services.OTPService
	notifications *services.NotificationService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(userService *services.UserService, authService *services.AuthService,
	otpService *services.OTPService, notifications *services.NotificationService) *AuthHandlers {
	return &AuthHandlers{
		userService:   userService,
		authService:   authService,
		otpService:    otpService,
		notifications: notifications,
	}
}

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req models.UserRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	user, err := h.userService.CreateUser(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate token",
		})
		return
	}

	message := "Registration successful"
	if user.UserType == models.UserTypeVendor {
		message = "Registration successful. Your vendor account is awaiting approval."
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": message,
		"data": gin.H{
			"user":  user,
			"token": token,
		},
	})
}

// Login authenticates a user. Accounts with two-factor enabled get an OTP
// challenge instead of a token; the code travels over the account's channel.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.UserLogin
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	user, err := h.userService.AuthenticateUser(&req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid credentials",
		})
		return
	}

	if user.TwoFactorEnabled {
		challenge, code, err := h.otpService.CreateCode(user.ID, user.TwoFactorChannel, services.OTPPurposeLogin)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to create verification code",
			})
			return
		}

		h.deliverOTP(user, code)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Verification code sent",
			"data": gin.H{
				"requiresOtp": true,
				"challengeId": challenge.ID,
				"channel":     challenge.Channel,
			},
		})
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"data": gin.H{
			"user":  user,
			"token": token,
		},
	})
}

// VerifyOTP finishes a two-factor login
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req models.OTPVerification
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	record, err := h.otpService.VerifyCode(req.ChallengeID, req.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if record.Purpose != services.OTPPurposeLogin {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid or expired code",
		})
		return
	}

	user, err := h.userService.GetUserByID(record.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid or expired code",
		})
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"data": gin.H{
			"user":  user,
			"token": token,
		},
	})
}

// Logout blacklists the caller's token
func (h *AuthHandlers) Logout(c *gin.Context) {
	token := c.GetString("token")
	if token != "" {
		h.authService.BlacklistToken(token)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logout successful",
	})
}

// RefreshToken issues a new token shortly before expiry. The route sits
// outside the auth middleware, so the bearer token is read here.
func (h *AuthHandlers) RefreshToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if !strings.HasPrefix(authHeader, "Bearer ") || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Token required",
		})
		return
	}

	newToken, err := h.authService.RefreshToken(token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"token": newToken},
	})
}

// GetProfile returns the caller's account
func (h *AuthHandlers) GetProfile(c *gin.Context) {
	userID := c.GetString("userID")

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateProfile updates the caller's account
func (h *AuthHandlers) UpdateProfile(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.UserProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	user, err := h.userService.UpdateUser(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated",
		"data":    user,
	})
}

// twoFactorRequest toggles two-factor login
type twoFactorRequest struct {
	Enabled bool              `json:"enabled"`
	Channel models.OTPChannel `json:"channel"`
}

// SetTwoFactor enables or disables two-factor login for the caller
func (h *AuthHandlers) SetTwoFactor(c *gin.Context) {
	userID := c.GetString("userID")

	var req twoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	if req.Channel == "" {
		req.Channel = models.OTPChannelEmail
	}

	if err := h.userService.SetTwoFactor(userID, req.Enabled, req.Channel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	message := "Two-factor login disabled"
	if req.Enabled {
		message = "Two-factor login enabled"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// deliverOTP queues the code on the user's chosen channel. Delivery failures
// are logged by the dispatch loop, never surfaced to the login flow.
func (h *AuthHandlers) deliverOTP(user *models.User, code string) {
	if h.notifications == nil {
		return
	}

	switch user.TwoFactorChannel {
	case models.OTPChannelSMS:
		h.notifications.QueueSMS(user.Phone,
			"KefyStore: votre code de vérification est "+code+". Il expire dans 10 minutes.")
	default:
		h.notifications.QueueEmail(user.Email, "KefyStore - Code de vérification",
			"Votre code de vérification est : <strong>"+code+"</strong>. Il expire dans 10 minutes.")
	}
}
