package models

import (
	"time"
)

// UserType represents account types in the store
type UserType string

const (
	UserTypeClient UserType = "client"
	UserTypeVendor UserType = "vendeur"
	UserTypeAdmin  UserType = "admin"
)

// UserStatus represents user account status
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// OTPChannel represents the delivery channel for one-time codes
type OTPChannel string

const (
	OTPChannelEmail OTPChannel = "email"
	OTPChannelSMS   OTPChannel = "sms"
)

// User represents a KefyStore account
type User struct {
	ID               string     `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	Phone            string     `json:"phone" db:"phone"`
	FirstName        string     `json:"firstName" db:"first_name"`
	LastName         string     `json:"lastName" db:"last_name"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	UserType         UserType   `json:"userType" db:"user_type"`
	Status           UserStatus `json:"status" db:"status"`
	Avatar           *string    `json:"avatar,omitempty" db:"avatar"`
	City             *string    `json:"city,omitempty" db:"city"`
	Country          *string    `json:"country,omitempty" db:"country"`
	Address          *string    `json:"address,omitempty" db:"address"`
	Language         string     `json:"language" db:"language"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled" db:"two_factor_enabled"`
	TwoFactorChannel OTPChannel `json:"twoFactorChannel" db:"two_factor_channel"`
	IsEmailVerified  bool       `json:"isEmailVerified" db:"is_email_verified"`
	IsPhoneVerified  bool       `json:"isPhoneVerified" db:"is_phone_verified"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`

	// Joined data (populated when needed)
	VendorProfile *VendorProfile `json:"vendorProfile,omitempty"`
}

// VendorProfile holds the business details of a vendeur account
type VendorProfile struct {
	ID                  string     `json:"id" db:"id"`
	UserID              string     `json:"userId" db:"user_id"`
	BusinessName        string     `json:"businessName" db:"business_name"`
	BusinessDescription *string    `json:"businessDescription,omitempty" db:"business_description"`
	IsApproved          bool       `json:"isApproved" db:"is_approved"`
	ApprovedAt          *time.Time `json:"approvedAt,omitempty" db:"approved_at"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time  `json:"updatedAt" db:"updated_at"`
}

// UserRegistration represents user registration data
type UserRegistration struct {
	Email               string   `json:"email" validate:"required,email,max=100"`
	Phone               string   `json:"phone" validate:"required,phone"`
	FirstName           string   `json:"firstName" validate:"required,min=2,max=50"`
	LastName            string   `json:"lastName" validate:"required,min=2,max=50"`
	Password            string   `json:"password" validate:"required,min=8,max=128"`
	UserType            UserType `json:"userType" validate:"required,oneof=client vendeur"`
	BusinessName        string   `json:"businessName,omitempty"`
	BusinessDescription *string  `json:"businessDescription,omitempty"`
	Language            string   `json:"language,omitempty"`
}

// UserLogin represents user login data
type UserLogin struct {
	Identifier string `json:"identifier" validate:"required,max=100"` // email or phone
	Password   string `json:"password" validate:"required,max=128"`
}

// OTPVerification represents the second step of a 2FA login
type OTPVerification struct {
	ChallengeID string `json:"challengeId" validate:"required"`
	Code        string `json:"code" validate:"required,min=6,max=6,numeric"`
}

// UserProfileUpdate represents user profile update data
type UserProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	City      *string `json:"city,omitempty"`
	Country   *string `json:"country,omitempty"`
	Address   *string `json:"address,omitempty"`
	Language  *string `json:"language,omitempty"`
}

// GetFullName returns the user's full name
func (u *User) GetFullName() string {
	return u.FirstName + " " + u.LastName
}

// IsActive checks if the user account is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsVendor checks if the account can list products
func (u *User) IsVendor() bool {
	return u.UserType == UserTypeVendor
}

// CanSell reports whether the vendor is allowed to publish products
func (u *User) CanSell() bool {
	return u.IsVendor() && u.VendorProfile != nil && u.VendorProfile.IsApproved
}

// OTPCode represents a one-time login code
type OTPCode struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"userId" db:"user_id"`
	Code      string     `json:"-" db:"code"`
	Channel   OTPChannel `json:"channel" db:"channel"`
	Purpose   string     `json:"purpose" db:"purpose"`
	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at"`
	Used      bool       `json:"used" db:"used"`
	Attempts  int        `json:"attempts" db:"attempts"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// IsExpired checks whether the code is past its expiry time
func (c *OTPCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
