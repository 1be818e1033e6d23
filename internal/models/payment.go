package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentProvider represents a mobile-money provider
type PaymentProvider string

const (
	PaymentProviderMoov   PaymentProvider = "moov"
	PaymentProviderOrange PaymentProvider = "orange"
	PaymentProviderMTN    PaymentProvider = "mtn"
	PaymentProviderWave   PaymentProvider = "wave"
)

// IsValidProvider checks whether the value is a supported provider
func IsValidProvider(p PaymentProvider) bool {
	switch p {
	case PaymentProviderMoov, PaymentProviderOrange, PaymentProviderMTN, PaymentProviderWave:
		return true
	}
	return false
}

// TransactionStatus represents the state of a payment transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusExpired   TransactionStatus = "expired"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// IsFinal reports whether the transaction can no longer change state
// through the webhook (refunds go through the refund flow instead).
func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed ||
		s == TransactionStatusExpired || s == TransactionStatusRefunded
}

// PaymentTransaction represents a mobile-money payment attempt for an order
type PaymentTransaction struct {
	ID          string            `json:"id" db:"id"`
	Reference   string            `json:"reference" db:"reference"`
	OrderID     string            `json:"orderId" db:"order_id"`
	UserID      string            `json:"userId" db:"user_id"`
	Provider    PaymentProvider   `json:"provider" db:"provider"`
	Status      TransactionStatus `json:"status" db:"status"`
	Amount      decimal.Decimal   `json:"amount" db:"amount"`
	Fees        decimal.Decimal   `json:"fees" db:"fees"`
	Total       decimal.Decimal   `json:"total" db:"total"`
	Currency    string            `json:"currency" db:"currency"`
	PhoneNumber string            `json:"phoneNumber" db:"phone_number"`
	Payload     *string           `json:"-" db:"payload"`
	CompletedAt *time.Time        `json:"completedAt,omitempty" db:"completed_at"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}

// PaymentInitiation represents data for starting a payment
type PaymentInitiation struct {
	OrderID     string          `json:"orderId" validate:"required"`
	Provider    PaymentProvider `json:"provider" validate:"required,oneof=moov orange mtn wave"`
	PhoneNumber string          `json:"phoneNumber" validate:"required,phone"`
}

// WebhookNotification is the payload a provider posts to the webhook endpoint
type WebhookNotification struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	Status        string `json:"status" validate:"required"`
	Reason        string `json:"reason,omitempty"`
}

// CanBeRefunded reports whether the transaction may be refunded. The order's
// own state is checked separately by the order workflow.
func (t *PaymentTransaction) CanBeRefunded() bool {
	return t.Status == TransactionStatusCompleted
}
