package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount 用户绑定的收款银行账户
type BankAccount struct {
	HolderName    string `json:"holder_name"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
}

// User 注册用户
// 余额是整个系统唯一的争用状态，所有变更必须经过 store 的 adjust 原语（下限钳制为 0）
type User struct {
	ID            string          `json:"id"`
	Mobile        string          `json:"mobile"`
	Username      string          `json:"username"`
	PasswordHash  string          `json:"password_hash"` // bcrypt 哈希，不存明文
	Balance       decimal.Decimal `json:"balance"`
	FrozenBalance decimal.Decimal `json:"frozen_balance"` // 冻结金额（预留，暂不使用）
	CreditScore   int             `json:"credit_score"`
	VIPLevel      int             `json:"vip_level"`
	BankAccount   *BankAccount    `json:"bank_account,omitempty"`
	ReferralCode  string          `json:"referral_code,omitempty"` // 注册时使用的邀请码
	CreatedAt     time.Time       `json:"created_at"`
}

// Clone 返回副本，store 对外只暴露副本，避免调用方越过操作直接改字段
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.BankAccount != nil {
		ba := *u.BankAccount
		c.BankAccount = &ba
	}
	return &c
}
