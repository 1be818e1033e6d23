package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionStatusIsFinal(t *testing.T) {
	assert.False(t, TransactionStatusPending.IsFinal())
	assert.True(t, TransactionStatusCompleted.IsFinal())
	assert.True(t, TransactionStatusFailed.IsFinal())
	assert.True(t, TransactionStatusExpired.IsFinal())
	assert.True(t, TransactionStatusRefunded.IsFinal())
}

func TestIsValidProvider(t *testing.T) {
	assert.True(t, IsValidProvider(PaymentProviderMoov))
	assert.True(t, IsValidProvider(PaymentProviderOrange))
	assert.True(t, IsValidProvider(PaymentProviderMTN))
	assert.True(t, IsValidProvider(PaymentProviderWave))
	assert.False(t, IsValidProvider("paypal"))
}

func TestCanBeRefunded(t *testing.T) {
	transaction := &PaymentTransaction{Status: TransactionStatusCompleted}
	assert.True(t, transaction.CanBeRefunded())

	transaction.Status = TransactionStatusPending
	assert.False(t, transaction.CanBeRefunded())

	transaction.Status = TransactionStatusRefunded
	assert.False(t, transaction.CanBeRefunded())
}
