package models

import "time"

// NotificationType represents the category of a notification
type NotificationType string

const (
	NotificationTypeOrder   NotificationType = "order"
	NotificationTypePayment NotificationType = "payment"
	NotificationTypeAccount NotificationType = "account"
	NotificationTypeSystem  NotificationType = "system"
)

// Notification represents an in-app notification
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"userId" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	IsRead    bool             `json:"isRead" db:"is_read"`
	ActionURL *string          `json:"actionUrl,omitempty" db:"action_url"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

// QueueStatus represents the delivery state of a queued message
type QueueStatus string

const (
	QueueStatusPending QueueStatus = "pending"
	QueueStatusSent    QueueStatus = "sent"
	QueueStatusFailed  QueueStatus = "failed"
)

// QueuedEmail represents an email waiting to be sent
type QueuedEmail struct {
	ID        string      `json:"id" db:"id"`
	Recipient string      `json:"recipient" db:"recipient"`
	Subject   string      `json:"subject" db:"subject"`
	Body      string      `json:"body" db:"body"`
	Status    QueueStatus `json:"status" db:"status"`
	Attempts  int         `json:"attempts" db:"attempts"`
	LastError *string     `json:"lastError,omitempty" db:"last_error"`
	SentAt    *time.Time  `json:"sentAt,omitempty" db:"sent_at"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// QueuedSMS represents a text message waiting to be sent
type QueuedSMS struct {
	ID        string      `json:"id" db:"id"`
	Recipient string      `json:"recipient" db:"recipient"`
	Message   string      `json:"message" db:"message"`
	Status    QueueStatus `json:"status" db:"status"`
	Attempts  int         `json:"attempts" db:"attempts"`
	LastError *string     `json:"lastError,omitempty" db:"last_error"`
	SentAt    *time.Time  `json:"sentAt,omitempty" db:"sent_at"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}
