package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, CanTransitionTo(TransactionStatusPending, TransactionStatusApproved))
	assert.True(t, CanTransitionTo(TransactionStatusPending, TransactionStatusRejected))

	// 终态不再流转
	assert.False(t, CanTransitionTo(TransactionStatusApproved, TransactionStatusRejected))
	assert.False(t, CanTransitionTo(TransactionStatusApproved, TransactionStatusApproved))
	assert.False(t, CanTransitionTo(TransactionStatusRejected, TransactionStatusApproved))
	assert.False(t, CanTransitionTo("Unknown", TransactionStatusApproved))
}

func TestBalanceDelta(t *testing.T) {
	recharge := &Transaction{Type: TransactionTypeRecharge, Amount: decimal.NewFromInt(500)}
	assert.Equal(t, "500", recharge.BalanceDelta().String())

	withdraw := &Transaction{Type: TransactionTypeWithdraw, Amount: decimal.NewFromInt(300)}
	assert.Equal(t, "-300", withdraw.BalanceDelta().String())
}
