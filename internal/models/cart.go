package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart represents a user's cart (one per user, created lazily)
type Cart struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"userId" db:"user_id"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
	Items     []CartItem `json:"items"`
}

// CartItem represents a line item in a cart
type CartItem struct {
	ID        string          `json:"id" db:"id"`
	CartID    string          `json:"cartId" db:"cart_id"`
	ProductID string          `json:"productId" db:"product_id"`
	VariantID *string         `json:"variantId,omitempty" db:"variant_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	AddedAt   time.Time       `json:"addedAt" db:"added_at"`

	// Joined data (populated when needed)
	Product *Product        `json:"product,omitempty"`
	Variant *ProductVariant `json:"variant,omitempty"`
}

// CartItemCreation represents data for adding an item to the cart
type CartItemCreation struct {
	ProductID string  `json:"productId" validate:"required"`
	VariantID *string `json:"variantId,omitempty"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
}

// GetTotalPrice returns quantity times the unit price snapshot
func (ci *CartItem) GetTotalPrice() decimal.Decimal {
	return ci.UnitPrice.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// Subtotal returns the sum of all line totals
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.GetTotalPrice())
	}
	return total
}

// TotalItems returns the total quantity across all lines
func (c *Cart) TotalItems() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty checks whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
