package engine

import (
	"neontrade/internal/model"
	"neontrade/internal/pricefeed"
)

const (
	RuleReferenceAsset = "reference"
	RulePriceDelta     = "price_delta"
)

// ReferenceAssetRule 参考资产规则：只有参考币种的 Buy 单赢，其余全输
// 这是当前产品行为，真实结算应该用 PriceDeltaRule
type ReferenceAssetRule struct {
	ReferenceSymbol string
}

func (r *ReferenceAssetRule) Judge(trade *model.ActiveTrade) bool {
	return trade.CoinSymbol == r.ReferenceSymbol && trade.Direction == model.TradeDirectionBuy
}

// PriceSource 结算时取当前价用
type PriceSource interface {
	Latest(coinID string) (pricefeed.Quote, bool)
}

// PriceDeltaRule 价差规则：沿交易方向比较入场价和结算价
// Buy 赢在结算价高于入场价，Sell 赢在结算价低于入场价，持平算输
type PriceDeltaRule struct {
	Prices PriceSource
}

func (r *PriceDeltaRule) Judge(trade *model.ActiveTrade) bool {
	if trade.EntryPrice.IsZero() {
		return false
	}
	quote, ok := r.Prices.Latest(trade.CoinID)
	if !ok {
		return false
	}

	switch trade.Direction {
	case model.TradeDirectionBuy:
		return quote.Price.GreaterThan(trade.EntryPrice)
	case model.TradeDirectionSell:
		return quote.Price.LessThan(trade.EntryPrice)
	}
	return false
}
