package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleRecordWin(t *testing.T) {
	trade := &ActiveTrade{
		ID:         "TRD1",
		UserID:     "U1",
		CoinSymbol: "BTC",
		Amount:     decimal.NewFromInt(1000),
		Direction:  TradeDirectionBuy,
		Duration:   60,
		ProfitRate: decimal.NewFromFloat(0.5),
	}

	now := time.Now()
	record, returned := trade.SettleRecord(true, now)

	assert.Equal(t, "TRD1", record.ID)
	assert.Equal(t, TradeOutcomeWin, record.Outcome)
	assert.Equal(t, "500", record.Profit.String())
	assert.Equal(t, "1500", returned.String())
	assert.Equal(t, now, record.SettledAt)
}

func TestSettleRecordLoss(t *testing.T) {
	trade := &ActiveTrade{
		ID:         "TRD2",
		UserID:     "U1",
		CoinSymbol: "ETH",
		Amount:     decimal.NewFromInt(800),
		Direction:  TradeDirectionSell,
		Duration:   120,
		ProfitRate: decimal.NewFromFloat(0.6),
	}

	record, returned := trade.SettleRecord(false, time.Now())

	assert.Equal(t, TradeOutcomeLoss, record.Outcome)
	assert.Equal(t, "-800", record.Profit.String())
	assert.True(t, returned.IsZero())
}

func TestActiveTradeClone(t *testing.T) {
	trade := &ActiveTrade{ID: "TRD3", Amount: decimal.NewFromInt(100), RemainingSeconds: 30}

	clone := trade.Clone()
	require.NotSame(t, trade, clone)

	clone.RemainingSeconds = 0
	assert.Equal(t, 30, trade.RemainingSeconds)
}
