package service

import (
	"context"
	"errors"
	"time"

	"neontrade/internal/config"
	"neontrade/internal/model"
	"neontrade/internal/pricefeed"
	"neontrade/internal/store"
	"neontrade/pkg/idgen"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidDirection    = errors.New("invalid trade direction")
	ErrInvalidDuration     = errors.New("unsupported trade duration")
)

type TradeService struct {
	store  *store.Store
	prices *pricefeed.Service
	rates  []config.ProfitRateConfig
}

func NewTradeService(st *store.Store, prices *pricefeed.Service, rates []config.ProfitRateConfig) *TradeService {
	return &TradeService{
		store:  st,
		prices: prices,
		rates:  rates,
	}
}

// Start 下单：金额必须为正且不超过可用余额，收益率按周期档位由服务端决定
// 入场价取当前行情，供价差结算规则使用；扣款由 store 在同一操作内完成
func (s *TradeService) Start(ctx context.Context, userID, coinID, coinSymbol string, amount decimal.Decimal, direction string, duration int) (*model.ActiveTrade, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if direction != model.TradeDirectionBuy && direction != model.TradeDirectionSell {
		return nil, ErrInvalidDirection
	}

	rate, ok := s.rateFor(duration)
	if !ok {
		return nil, ErrInvalidDuration
	}

	user := s.store.UserByID(userID)
	if user == nil {
		return nil, store.ErrUserNotFound
	}
	if amount.GreaterThan(user.Balance) {
		return nil, ErrInsufficientBalance
	}

	entryPrice := decimal.Zero
	if quote, exists := s.prices.Latest(coinID); exists {
		entryPrice = quote.Price
	}

	trade := &model.ActiveTrade{
		ID:         idgen.GenerateTradeNo(),
		UserID:     userID,
		CoinID:     coinID,
		CoinSymbol: coinSymbol,
		Amount:     amount,
		Direction:  direction,
		Duration:   duration,
		ProfitRate: rate,
		EntryPrice: entryPrice,
		CreatedAt:  time.Now(),
	}

	if err := s.store.StartTrade(trade); err != nil {
		return nil, err
	}
	return trade.Clone(), nil
}

func (s *TradeService) rateFor(duration int) (decimal.Decimal, bool) {
	for _, r := range s.rates {
		if r.Seconds == duration {
			return decimal.NewFromFloat(r.Rate), true
		}
	}
	return decimal.Zero, false
}

func (s *TradeService) ActiveTrades(ctx context.Context) []*model.ActiveTrade {
	return s.store.ActiveTrades()
}

func (s *TradeService) History(ctx context.Context) []*model.TradeRecord {
	return s.store.TradeHistory()
}

// ProfitRates 周期档位表，客户端据此渲染可选周期
func (s *TradeService) ProfitRates() []config.ProfitRateConfig {
	rates := make([]config.ProfitRateConfig, len(s.rates))
	copy(rates, s.rates)
	return rates
}
