package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusProcessing},
		{OrderStatusConfirmed, OrderStatusCancelled},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusDelivered},
		{OrderStatusDelivered, OrderStatusRefunded},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	forbidden := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusProcessing, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusRefunded, OrderStatusDelivered},
		{OrderStatusConfirmed, OrderStatusConfirmed},
	}
	for _, tc := range forbidden {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	assert.True(t, IsValidOrderStatus(OrderStatusPending))
	assert.True(t, IsValidOrderStatus(OrderStatusRefunded))
	assert.False(t, IsValidOrderStatus("expédié"))
	assert.False(t, IsValidOrderStatus(""))
}

func TestOrderHelpers(t *testing.T) {
	order := &Order{Status: OrderStatusPending, PaymentState: PaymentStateUnpaid}
	assert.True(t, order.CanBeCancelled())
	assert.False(t, order.IsFinal())
	assert.False(t, order.IsPaid())

	order.Status = OrderStatusConfirmed
	order.PaymentState = PaymentStatePaid
	assert.True(t, order.CanBeCancelled())
	assert.True(t, order.IsPaid())

	order.Status = OrderStatusShipped
	assert.False(t, order.CanBeCancelled())

	order.Status = OrderStatusCancelled
	assert.True(t, order.IsFinal())

	order.Status = OrderStatusRefunded
	assert.True(t, order.IsFinal())
}
