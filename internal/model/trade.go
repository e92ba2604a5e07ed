package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TradeDirectionBuy  = "Buy"
	TradeDirectionSell = "Sell"
)

const (
	TradeOutcomeWin  = "Win"
	TradeOutcomeLoss = "Loss"
)

// ActiveTrade 进行中的交易
// remainingSeconds 每个 tick 减 1，到 0 即在该 tick 内无条件结算并从活跃集合移除
type ActiveTrade struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	CoinID           string          `json:"coin_id"`
	CoinSymbol       string          `json:"coin_symbol"`
	Amount           decimal.Decimal `json:"amount"`
	Direction        string          `json:"direction"` // Buy / Sell
	Duration         int             `json:"duration"`  // 秒
	ProfitRate       decimal.Decimal `json:"profit_rate"`
	RemainingSeconds int             `json:"remaining_seconds"`
	EntryPrice       decimal.Decimal `json:"entry_price"` // 下单时的价格，价差规则用
	CreatedAt        time.Time       `json:"created_at"`
}

func (t *ActiveTrade) Clone() *ActiveTrade {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// SettleRecord 按结算规则生成成交记录
// 盈利 = 赢 ? amount*profitRate : -amount；返还余额 = 赢 ? amount+盈利 : 0
func (t *ActiveTrade) SettleRecord(win bool, now time.Time) (*TradeRecord, decimal.Decimal) {
	var profit, returned decimal.Decimal
	outcome := TradeOutcomeLoss
	if win {
		outcome = TradeOutcomeWin
		profit = t.Amount.Mul(t.ProfitRate)
		returned = t.Amount.Add(profit)
	} else {
		profit = t.Amount.Neg()
		returned = decimal.Zero
	}

	record := &TradeRecord{
		ID:         t.ID,
		UserID:     t.UserID,
		CoinID:     t.CoinID,
		CoinSymbol: t.CoinSymbol,
		Amount:     t.Amount,
		Duration:   t.Duration,
		Profit:     profit,
		Direction:  t.Direction,
		SettledAt:  now,
		Outcome:    outcome,
	}
	return record, returned
}

// TradeRecord 已结算的交易记录，创建后不可变，历史按最新在前排列
type TradeRecord struct {
	ID         string          `json:"id"` // 沿用原 ActiveTrade 的 ID
	UserID     string          `json:"user_id"`
	CoinID     string          `json:"coin_id"`
	CoinSymbol string          `json:"coin_symbol"`
	Amount     decimal.Decimal `json:"amount"`
	Duration   int             `json:"duration"`
	Profit     decimal.Decimal `json:"profit"` // 有符号，亏损为负
	Direction  string          `json:"direction"`
	SettledAt  time.Time       `json:"settled_at"`
	Outcome    string          `json:"outcome"` // Win / Loss
}

func (r *TradeRecord) Clone() *TradeRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// OutcomeJudge 结算输赢判定，做成接口以便替换为真实的价差比较规则
type OutcomeJudge interface {
	Judge(trade *ActiveTrade) bool
}
