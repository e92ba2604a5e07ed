package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const apiBaseURL = "https://api.coingecko.com/api/v3/simple/price"

// Coin 支持交易的币种
type Coin struct {
	ID        string  `json:"id"` // CoinGecko 的 coin id
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	SeedPrice float64 `json:"-"` // 无缓存且接口不可用时的初始价格
}

// SupportedCoins 平台跟踪的币种列表
var SupportedCoins = []Coin{
	{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", SeedPrice: 92000},
	{ID: "ethereum", Symbol: "ETH", Name: "Ethereum", SeedPrice: 3100},
	{ID: "solana", Symbol: "SOL", Name: "Solana", SeedPrice: 140},
	{ID: "ripple", Symbol: "XRP", Name: "XRP", SeedPrice: 0.6},
	{ID: "dogecoin", Symbol: "DOGE", Name: "Dogecoin", SeedPrice: 0.12},
	{ID: "cardano", Symbol: "ADA", Name: "Cardano", SeedPrice: 0.5},
	{ID: "avalanche-2", Symbol: "AVAX", Name: "Avalanche", SeedPrice: 35},
	{ID: "chainlink", Symbol: "LINK", Name: "Chainlink", SeedPrice: 18},
	{ID: "litecoin", Symbol: "LTC", Name: "Litecoin", SeedPrice: 85},
	{ID: "tron", Symbol: "TRX", Name: "TRON", SeedPrice: 0.12},
}

// Quote 某个币种的当前报价
type Quote struct {
	CoinID    string          `json:"coin_id"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Change24h float64         `json:"change_24h"` // 24 小时涨跌幅（百分比）
}

// Service 行情源：优先拉取 CoinGecko，上游不可用时退化为本地随机游走
// 上游失败绝不向调用方抛错，始终能给出一份报价
type Service struct {
	mu       sync.Mutex
	cache    map[string]*Quote // coinID -> 最近一次报价
	client   *http.Client
	coins    []Coin
	stopCh   chan struct{}
	interval time.Duration
}

func NewService(refreshInterval time.Duration) *Service {
	if refreshInterval <= 0 {
		refreshInterval = 5 * time.Second
	}
	return &Service{
		cache:    make(map[string]*Quote),
		client:   &http.Client{Timeout: 5 * time.Second},
		coins:    SupportedCoins,
		stopCh:   make(chan struct{}),
		interval: refreshInterval,
	}
}

// Start 行情刷新任务
func (s *Service) Start(ctx context.Context) {
	log.Println("[PriceFeed] 行情刷新任务启动")

	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[PriceFeed] 收到停止信号，任务退出")
			return
		case <-s.stopCh:
			log.Println("[PriceFeed] 任务停止")
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Service) Stop() {
	close(s.stopCh)
}

// Latest 返回某币种最近一次报价
func (s *Service) Latest(coinID string) (Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.cache[coinID]
	if !ok {
		return Quote{}, false
	}
	return *q, true
}

// Quotes 返回全部币种的当前报价，顺序与 SupportedCoins 一致
// 缓存为空的币种用种子价格现场生成一份
func (s *Service) Quotes() []Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes := make([]Quote, 0, len(s.coins))
	for _, coin := range s.coins {
		q, ok := s.cache[coin.ID]
		if !ok {
			q = s.simulateLocked(coin)
		}
		quotes = append(quotes, *q)
	}
	return quotes
}

func (s *Service) refresh(ctx context.Context) {
	prices, err := s.fetchRemote(ctx)
	if err != nil {
		// 上游失败：本地随机游走，保持行情"活着"
		s.mu.Lock()
		for _, coin := range s.coins {
			s.simulateLocked(coin)
		}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, coin := range s.coins {
		data, ok := prices[coin.ID]
		price := data.USD
		if !ok || price <= 0 {
			if cached, exists := s.cache[coin.ID]; exists {
				price, _ = cached.Price.Float64()
			} else {
				price = coin.SeedPrice
			}
		}

		// 叠加高频抖动，±0.05%
		price += price * (rand.Float64()*0.001 - 0.0005)

		var prevChange *float64
		if cached, exists := s.cache[coin.ID]; exists {
			prevChange = &cached.Change24h
		}

		s.cache[coin.ID] = &Quote{
			CoinID:    coin.ID,
			Symbol:    coin.Symbol,
			Name:      coin.Name,
			Price:     decimal.NewFromFloat(price),
			Change24h: dynamicChange(prevChange),
		}
	}
}

// remotePrice 只取现价，24 小时涨跌幅由 dynamicChange 本地合成
type remotePrice struct {
	USD float64 `json:"usd"`
}

func (s *Service) fetchRemote(ctx context.Context) (map[string]remotePrice, error) {
	ids := make([]string, 0, len(s.coins))
	for _, c := range s.coins {
		ids = append(ids, c.ID)
	}
	url := fmt.Sprintf("%s?ids=%s&vs_currencies=usd", apiBaseURL, strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("行情接口返回异常状态: %d", resp.StatusCode)
	}

	prices := make(map[string]remotePrice)
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// simulateLocked 本地模拟一次价格跳动并写入缓存，调用方必须持有锁
func (s *Service) simulateLocked(coin Coin) *Quote {
	price := coin.SeedPrice
	var prevChange *float64
	if cached, exists := s.cache[coin.ID]; exists {
		price, _ = cached.Price.Float64()
		prevChange = &cached.Change24h
	}

	// 有界随机游走，单步 ±0.12% 以内
	direction := 1.0
	if rand.Float64() > 0.5 {
		direction = -1.0
	}
	price += direction * price * rand.Float64() * 0.0012

	q := &Quote{
		CoinID:    coin.ID,
		Symbol:    coin.Symbol,
		Name:      coin.Name,
		Price:     decimal.NewFromFloat(price),
		Change24h: dynamicChange(prevChange),
	}
	s.cache[coin.ID] = q
	return q
}

// dynamicChange 生成 24 小时涨跌幅：40% 概率翻转正负，其余小幅漂移，限制在 ±8 以内
func dynamicChange(current *float64) float64 {
	if current != nil {
		if rand.Float64() < 0.4 {
			sign := 1.0
			if *current > 0 {
				sign = -1.0
			}
			return sign * (rand.Float64()*2 + 0.1)
		}
		drift := rand.Float64()*0.8 - 0.4
		next := *current + drift
		if next > 8 {
			next = 8
		}
		if next < -8 {
			next = -8
		}
		return next
	}

	if rand.Float64() < 0.5 {
		return 0.1 + rand.Float64()*3.9
	}
	return -0.1 - rand.Float64()*3.9
}
