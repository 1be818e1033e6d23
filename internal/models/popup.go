package models

import "time"

// PopupKind represents the type of a storefront popup
type PopupKind string

const (
	PopupKindPromo   PopupKind = "promo"
	PopupKindInfo    PopupKind = "info"
	PopupKindConsent PopupKind = "consent"
)

// PopupAction represents how a user dismissed a popup
type PopupAction string

const (
	PopupActionDismissed PopupAction = "dismissed"
	PopupActionAccepted  PopupAction = "accepted"
	PopupActionDeclined  PopupAction = "declined"
)

// Popup represents a storefront announcement or consent banner
type Popup struct {
	ID        string     `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Body      string     `json:"body" db:"body"`
	Kind      PopupKind  `json:"kind" db:"kind"`
	ImageURL  *string    `json:"imageUrl,omitempty" db:"image_url"`
	LinkURL   *string    `json:"linkUrl,omitempty" db:"link_url"`
	IsActive  bool       `json:"isActive" db:"is_active"`
	StartsAt  *time.Time `json:"startsAt,omitempty" db:"starts_at"`
	EndsAt    *time.Time `json:"endsAt,omitempty" db:"ends_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// PopupAck records that a user has seen and dismissed a popup
type PopupAck struct {
	ID        string      `json:"id" db:"id"`
	PopupID   string      `json:"popupId" db:"popup_id"`
	UserID    string      `json:"userId" db:"user_id"`
	Action    PopupAction `json:"action" db:"action"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// PopupCreation represents data for creating a popup
type PopupCreation struct {
	Title    string     `json:"title" validate:"required,min=2,max=200"`
	Body     string     `json:"body" validate:"required,max=2000"`
	Kind     PopupKind  `json:"kind" validate:"required,oneof=promo info consent"`
	ImageURL *string    `json:"imageUrl,omitempty"`
	LinkURL  *string    `json:"linkUrl,omitempty"`
	StartsAt *time.Time `json:"startsAt,omitempty"`
	EndsAt   *time.Time `json:"endsAt,omitempty"`
}

// PopupAckCreation represents a user's response to a popup
type PopupAckCreation struct {
	Action PopupAction `json:"action" validate:"required,oneof=dismissed accepted declined"`
}

// IsLive reports whether the popup should be shown at the given time
func (p *Popup) IsLive(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return false
	}
	return true
}
