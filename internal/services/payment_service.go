package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kefystore-backend/config"
	"kefystore-backend/internal/models"
	"kefystore-backend/internal/utils"
)

// PaymentService handles mobile-money payments and provider webhooks
type PaymentService struct {
	db        *sql.DB
	providers map[string]config.MobileMoneyProvider
	orders    *OrderService
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *sql.DB, providers map[string]config.MobileMoneyProvider, orders *OrderService) *PaymentService {
	return &PaymentService{db: db, providers: providers, orders: orders}
}

// PaymentSession is returned to the client after initiating a payment
type PaymentSession struct {
	Transaction *models.PaymentTransaction `json:"transaction"`
	PayURL      string                     `json:"payUrl"`
}

// InitiatePayment creates a pending transaction for an unpaid order and
// returns the provider's payment URL
func (s *PaymentService) InitiatePayment(userID string, initiation *models.PaymentInitiation) (*PaymentSession, error) {
	if err := utils.ValidateStruct(initiation); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	provider := string(initiation.Provider)
	providerCfg, ok := s.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown payment provider: %s", provider)
	}

	order, err := s.orders.GetOrderByID(initiation.OrderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != userID {
		return nil, errors.New("order does not belong to this user")
	}
	if order.IsPaid() {
		return nil, errors.New("order is already paid")
	}
	if order.Status == models.OrderStatusCancelled || order.Status == models.OrderStatusRefunded {
		return nil, fmt.Errorf("order in status %s cannot be paid", order.Status)
	}

	// A fresh attempt supersedes any still-pending one for the order
	now := time.Now()
	if _, err := s.db.Exec(`
		UPDATE payment_transactions SET status = ?, updated_at = ?
		WHERE order_id = ? AND status = ?
	`, models.TransactionStatusExpired, now, order.ID, models.TransactionStatusPending); err != nil {
		return nil, fmt.Errorf("failed to expire previous attempts: %w", err)
	}

	transaction := &models.PaymentTransaction{
		ID:          uuid.New().String(),
		Reference:   utils.GeneratePaymentReference(provider),
		OrderID:     order.ID,
		UserID:      userID,
		Provider:    initiation.Provider,
		Status:      models.TransactionStatusPending,
		Amount:      order.TotalAmount,
		Fees:        decimal.Zero,
		Total:       order.TotalAmount,
		Currency:    order.Currency,
		PhoneNumber: utils.FormatPhoneNumber(initiation.PhoneNumber),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = s.db.Exec(`
		INSERT INTO payment_transactions (id, reference, order_id, user_id, provider,
			status, amount, fees, total, currency, phone_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, transaction.ID, transaction.Reference, transaction.OrderID, transaction.UserID,
		transaction.Provider, transaction.Status, transaction.Amount.String(),
		transaction.Fees.String(), transaction.Total.String(), transaction.Currency,
		transaction.PhoneNumber, transaction.CreatedAt, transaction.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment transaction: %w", err)
	}

	payURL := fmt.Sprintf("%s?reference=%s&amount=%s&currency=%s",
		providerCfg.PayURL, transaction.Reference,
		transaction.Total.String(), transaction.Currency)

	return &PaymentSession{Transaction: transaction, PayURL: payURL}, nil
}

// VerifySignature checks the webhook body against the provider's shared
// secret. Providers without a configured secret (sandbox) skip the check.
func (s *PaymentService) VerifySignature(provider string, body []byte, signature string) bool {
	providerCfg, ok := s.providers[strings.ToLower(provider)]
	if !ok {
		return false
	}
	if providerCfg.WebhookSecret == "" {
		return true
	}
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(providerCfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// HandleWebhook applies a provider notification to the matching transaction.
// Replays and out-of-order deliveries are no-ops once the transaction has
// reached a final state. A completed payment marks the order paid and
// confirms it.
func (s *PaymentService) HandleWebhook(provider string, notification *models.WebhookNotification, rawBody []byte) (*models.PaymentTransaction, error) {
	if err := utils.ValidateStruct(notification); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	transaction := &models.PaymentTransaction{}
	var amountStr, feesStr, totalStr string
	err = tx.QueryRow(`
		SELECT id, reference, order_id, user_id, provider, status, amount, fees, total,
			   currency, phone_number, completed_at, created_at, updated_at
		FROM payment_transactions WHERE reference = ?
	`, notification.TransactionID).Scan(
		&transaction.ID, &transaction.Reference, &transaction.OrderID, &transaction.UserID,
		&transaction.Provider, &transaction.Status, &amountStr, &feesStr, &totalStr,
		&transaction.Currency, &transaction.PhoneNumber, &transaction.CompletedAt,
		&transaction.CreatedAt, &transaction.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("transaction not found")
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	if transaction.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse transaction amount: %w", err)
	}
	if transaction.Fees, err = decimal.NewFromString(feesStr); err != nil {
		return nil, fmt.Errorf("failed to parse transaction fees: %w", err)
	}
	if transaction.Total, err = decimal.NewFromString(totalStr); err != nil {
		return nil, fmt.Errorf("failed to parse transaction total: %w", err)
	}

	if string(transaction.Provider) != strings.ToLower(provider) {
		return nil, errors.New("provider mismatch for this transaction")
	}

	// Idempotent: a settled transaction ignores further notifications
	if transaction.Status.IsFinal() {
		return transaction, nil
	}

	newStatus, err := mapProviderStatus(notification.Status)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payload := string(rawBody)
	var completedAt *time.Time
	if newStatus == models.TransactionStatusCompleted {
		completedAt = &now
	}

	if _, err := tx.Exec(`
		UPDATE payment_transactions SET status = ?, payload = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`, newStatus, payload, completedAt, now, transaction.ID); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	if newStatus == models.TransactionStatusCompleted {
		if err := s.orders.MarkPaid(tx, transaction.OrderID); err != nil {
			return nil, err
		}

		// A paid pending order moves to confirmed
		var orderStatus models.OrderStatus
		if err := tx.QueryRow("SELECT status FROM orders WHERE id = ?", transaction.OrderID).Scan(&orderStatus); err != nil {
			return nil, fmt.Errorf("failed to load order status: %w", err)
		}
		if orderStatus == models.OrderStatusPending {
			if _, err := tx.Exec(
				"UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
				models.OrderStatusConfirmed, now, transaction.OrderID,
			); err != nil {
				return nil, fmt.Errorf("failed to confirm order: %w", err)
			}
			if _, err := tx.Exec(`
				INSERT INTO order_status_history (id, order_id, from_status, to_status, changed_by, note, created_at)
				VALUES (?, ?, ?, ?, NULL, ?, ?)
			`, uuid.New().String(), transaction.OrderID, models.OrderStatusPending,
				models.OrderStatusConfirmed, "payment completed", now); err != nil {
				return nil, fmt.Errorf("failed to record status history: %w", err)
			}
		}
	} else if newStatus == models.TransactionStatusFailed {
		if _, err := tx.Exec(
			"UPDATE orders SET payment_state = ?, updated_at = ? WHERE id = ? AND payment_state = ?",
			models.PaymentStateFailed, now, transaction.OrderID, models.PaymentStateUnpaid,
		); err != nil {
			return nil, fmt.Errorf("failed to flag failed payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	transaction.Status = newStatus
	transaction.Payload = &payload
	transaction.CompletedAt = completedAt
	transaction.UpdatedAt = now
	return transaction, nil
}

// GetTransactionByReference retrieves a transaction by its reference
func (s *PaymentService) GetTransactionByReference(reference string) (*models.PaymentTransaction, error) {
	transaction := &models.PaymentTransaction{}
	var amountStr, feesStr, totalStr string
	err := s.db.QueryRow(`
		SELECT id, reference, order_id, user_id, provider, status, amount, fees, total,
			   currency, phone_number, completed_at, created_at, updated_at
		FROM payment_transactions WHERE reference = ?
	`, reference).Scan(
		&transaction.ID, &transaction.Reference, &transaction.OrderID, &transaction.UserID,
		&transaction.Provider, &transaction.Status, &amountStr, &feesStr, &totalStr,
		&transaction.Currency, &transaction.PhoneNumber, &transaction.CompletedAt,
		&transaction.CreatedAt, &transaction.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("transaction not found")
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if transaction.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse transaction amount: %w", err)
	}
	if transaction.Fees, err = decimal.NewFromString(feesStr); err != nil {
		return nil, fmt.Errorf("failed to parse transaction fees: %w", err)
	}
	if transaction.Total, err = decimal.NewFromString(totalStr); err != nil {
		return nil, fmt.Errorf("failed to parse transaction total: %w", err)
	}

	return transaction, nil
}

// ListTransactionsForOrder returns the payment attempts for an order
func (s *PaymentService) ListTransactionsForOrder(orderID string) ([]models.PaymentTransaction, error) {
	rows, err := s.db.Query(`
		SELECT id, reference, order_id, user_id, provider, status, amount, fees, total,
			   currency, phone_number, completed_at, created_at, updated_at
		FROM payment_transactions WHERE order_id = ? ORDER BY created_at DESC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.PaymentTransaction
	for rows.Next() {
		var transaction models.PaymentTransaction
		var amountStr, feesStr, totalStr string
		err := rows.Scan(
			&transaction.ID, &transaction.Reference, &transaction.OrderID, &transaction.UserID,
			&transaction.Provider, &transaction.Status, &amountStr, &feesStr, &totalStr,
			&transaction.Currency, &transaction.PhoneNumber, &transaction.CompletedAt,
			&transaction.CreatedAt, &transaction.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if transaction.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse transaction amount: %w", err)
		}
		if transaction.Fees, err = decimal.NewFromString(feesStr); err != nil {
			return nil, fmt.Errorf("failed to parse transaction fees: %w", err)
		}
		if transaction.Total, err = decimal.NewFromString(totalStr); err != nil {
			return nil, fmt.Errorf("failed to parse transaction total: %w", err)
		}
		transactions = append(transactions, transaction)
	}

	return transactions, rows.Err()
}

// ParseWebhookBody decodes a webhook payload
func ParseWebhookBody(body []byte) (*models.WebhookNotification, error) {
	var notification models.WebhookNotification
	if err := json.Unmarshal(body, &notification); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	return &notification, nil
}

// mapProviderStatus normalizes the status strings the providers send
func mapProviderStatus(status string) (models.TransactionStatus, error) {
	switch strings.ToLower(status) {
	case "success", "successful", "completed", "paid":
		return models.TransactionStatusCompleted, nil
	case "failed", "declined", "rejected":
		return models.TransactionStatusFailed, nil
	case "expired", "timeout", "timedout":
		return models.TransactionStatusExpired, nil
	case "pending", "processing":
		return models.TransactionStatusPending, nil
	default:
		return "", fmt.Errorf("unknown provider status: %s", status)
	}
}
