package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeRecharge = "Recharge" // 充值
	TransactionTypeWithdraw = "Withdraw" // 提现
)

const (
	TransactionStatusPending  = "Pending"
	TransactionStatusApproved = "Approved"
	TransactionStatusRejected = "Rejected"
)

// ValidStatusTransitions 审批状态机：Pending 只能进入 Approved / Rejected，且只进入一次
// 余额只在 Pending -> Approved 这条边上变动
var ValidStatusTransitions = map[string][]string{
	TransactionStatusPending: {TransactionStatusApproved, TransactionStatusRejected},
}

func CanTransitionTo(currentStatus, targetStatus string) bool {
	allowedStatuses, exists := ValidStatusTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, s := range allowedStatuses {
		if s == targetStatus {
			return true
		}
	}
	return false
}

// Transaction 充值/提现申请
type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`   // Recharge / Withdraw
	Amount    decimal.Decimal `json:"amount"` // 正数金额
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// BalanceDelta 审批通过时对余额的影响：充值为正，提现为负
func (t *Transaction) BalanceDelta() decimal.Decimal {
	if t.Type == TransactionTypeRecharge {
		return t.Amount
	}
	return t.Amount.Neg()
}
