package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// PaymentState represents an order's payment state
type PaymentState string

const (
	PaymentStateUnpaid   PaymentState = "unpaid"
	PaymentStatePaid     PaymentState = "paid"
	PaymentStateRefunded PaymentState = "refunded"
	PaymentStateFailed   PaymentState = "failed"
)

// orderTransitions is the server-side transition table. Any move not listed
// here is rejected regardless of who asks for it.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusRefunded},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsValidOrderStatus checks whether the value is a known order status
func IsValidOrderStatus(s OrderStatus) bool {
	_, ok := orderTransitions[s]
	return ok
}

// Order represents a placed order
type Order struct {
	ID              string          `json:"id" db:"id"`
	OrderNumber     string          `json:"orderNumber" db:"order_number"`
	BuyerID         string          `json:"buyerId" db:"buyer_id"`
	Status          OrderStatus     `json:"status" db:"status"`
	PaymentState    PaymentState    `json:"paymentState" db:"payment_state"`
	ShippingName    string          `json:"shippingName" db:"shipping_name"`
	ShippingPhone   string          `json:"shippingPhone" db:"shipping_phone"`
	ShippingAddress string          `json:"shippingAddress" db:"shipping_address"`
	ShippingCity    string          `json:"shippingCity" db:"shipping_city"`
	DeliveryZone    *string         `json:"deliveryZone,omitempty" db:"delivery_zone"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shippingCost" db:"shipping_cost"`
	TaxAmount       decimal.Decimal `json:"taxAmount" db:"tax_amount"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Currency        string          `json:"currency" db:"currency"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`

	// Joined data (populated when needed)
	Buyer   *User                `json:"buyer,omitempty"`
	Items   []OrderItem          `json:"items,omitempty"`
	History []OrderStatusHistory `json:"history,omitempty"`
}

// OrderItem represents a line in an order with a price snapshot taken at checkout
type OrderItem struct {
	ID          string          `json:"id" db:"id"`
	OrderID     string          `json:"orderId" db:"order_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	VariantID   *string         `json:"variantId,omitempty" db:"variant_id"`
	VendorID    string          `json:"vendorId" db:"vendor_id"`
	ProductName string          `json:"productName" db:"product_name"`
	VariantName *string         `json:"variantName,omitempty" db:"variant_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	TotalPrice  decimal.Decimal `json:"totalPrice" db:"total_price"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// OrderStatusHistory records a single status change on an order
type OrderStatusHistory struct {
	ID         string      `json:"id" db:"id"`
	OrderID    string      `json:"orderId" db:"order_id"`
	FromStatus OrderStatus `json:"fromStatus" db:"from_status"`
	ToStatus   OrderStatus `json:"toStatus" db:"to_status"`
	ChangedBy  *string     `json:"changedBy,omitempty" db:"changed_by"`
	Note       *string     `json:"note,omitempty" db:"note"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
}

// OrderCreation represents checkout data
type OrderCreation struct {
	ShippingName    string  `json:"shippingName" validate:"required,min=2,max=100"`
	ShippingPhone   string  `json:"shippingPhone" validate:"required,phone"`
	ShippingAddress string  `json:"shippingAddress" validate:"required,min=5,max=300"`
	ShippingCity    string  `json:"shippingCity" validate:"required,min=2,max=100"`
	Notes           *string `json:"notes,omitempty"`
}

// OrderStatusUpdate represents a requested status change
type OrderStatusUpdate struct {
	Status OrderStatus `json:"status" validate:"required"`
	Note   *string     `json:"note,omitempty"`
}

// CanBeCancelled reports whether the buyer may still cancel the order
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// IsFinal reports whether the order has reached a terminal status
func (o *Order) IsFinal() bool {
	return len(orderTransitions[o.Status]) == 0
}

// IsPaid reports whether the order has been paid for
func (o *Order) IsPaid() bool {
	return o.PaymentState == PaymentStatePaid
}
