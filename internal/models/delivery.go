package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryZone maps a city to a shipping fee
type DeliveryZone struct {
	ID        string          `json:"id" db:"id"`
	City      string          `json:"city" db:"city"`
	Zone      string          `json:"zone" db:"zone"`
	Fee       decimal.Decimal `json:"fee" db:"fee"`
	IsActive  bool            `json:"isActive" db:"is_active"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// DeliveryZoneCreation represents data for creating a delivery zone
type DeliveryZoneCreation struct {
	City string `json:"city" validate:"required,min=2,max=100"`
	Zone string `json:"zone" validate:"required,min=1,max=50"`
	Fee  string `json:"fee" validate:"required"`
}
