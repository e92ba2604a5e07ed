package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"neontrade/internal/model"
	"neontrade/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySnapshot struct {
	mu   sync.Mutex
	data []byte
}

func (m *memorySnapshot) Save(_ context.Context, state []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), state...)
	return nil
}

func (m *memorySnapshot) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (p *recordingPublisher) PublishTradeSettled(record *model.TradeRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, record.ID)
	return nil
}

type recordingArchiver struct {
	mu    sync.Mutex
	saved []string
}

func (a *recordingArchiver) SaveTradeRecords(_ context.Context, records []*model.TradeRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range records {
		a.saved = append(a.saved, r.ID)
	}
	return nil
}

func newEngineStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(&memorySnapshot{}, nil, []string{"NEON2025"})
	user := &model.User{ID: "U1", Mobile: "13800000001", Balance: decimal.Zero}
	require.NoError(t, s.Register(user, "NEON2025"))
	_, err := s.AdjustBalance("U1", decimal.NewFromInt(2000))
	require.NoError(t, err)
	return s
}

func startTrade(t *testing.T, s *store.Store, id, symbol, direction string, duration int) {
	t.Helper()
	require.NoError(t, s.StartTrade(&model.ActiveTrade{
		ID:         id,
		UserID:     "U1",
		CoinID:     "bitcoin",
		CoinSymbol: symbol,
		Amount:     decimal.NewFromInt(100),
		Direction:  direction,
		Duration:   duration,
		ProfitRate: decimal.NewFromFloat(0.5),
		CreatedAt:  time.Now(),
	}))
}

func TestTickPublishesAndArchivesSettledTrades(t *testing.T) {
	s := newEngineStore(t)
	startTrade(t, s, "TRD1", "BTC", model.TradeDirectionBuy, 1)
	startTrade(t, s, "TRD2", "ETH", model.TradeDirectionBuy, 1)

	publisher := &recordingPublisher{}
	archiver := &recordingArchiver{}
	job := NewSettlementJob(s, &ReferenceAssetRule{ReferenceSymbol: "BTC"}, publisher, archiver, time.Second)

	job.tick(context.Background())

	assert.ElementsMatch(t, []string{"TRD1", "TRD2"}, publisher.published)
	assert.ElementsMatch(t, []string{"TRD1", "TRD2"}, archiver.saved)

	history := s.TradeHistory()
	require.Len(t, history, 2)
}

func TestTickWithoutExpirationsPublishesNothing(t *testing.T) {
	s := newEngineStore(t)
	startTrade(t, s, "TRD1", "BTC", model.TradeDirectionBuy, 10)

	publisher := &recordingPublisher{}
	job := NewSettlementJob(s, &ReferenceAssetRule{ReferenceSymbol: "BTC"}, publisher, nil, time.Second)

	job.tick(context.Background())

	assert.Empty(t, publisher.published)
	assert.Len(t, s.ActiveTrades(), 1)
}

func TestTickPublishErrorDoesNotBlockSettlement(t *testing.T) {
	s := newEngineStore(t)
	startTrade(t, s, "TRD1", "BTC", model.TradeDirectionBuy, 1)

	publisher := &recordingPublisher{err: errors.New("broker down")}
	job := NewSettlementJob(s, &ReferenceAssetRule{ReferenceSymbol: "BTC"}, publisher, nil, time.Second)

	job.tick(context.Background())

	// 事件发不出去不影响结算落账
	require.Len(t, s.TradeHistory(), 1)
	assert.Equal(t, model.TradeOutcomeWin, s.TradeHistory()[0].Outcome)
}

func TestTickNilPublisherAndArchiver(t *testing.T) {
	s := newEngineStore(t)
	startTrade(t, s, "TRD1", "BTC", model.TradeDirectionBuy, 1)

	job := NewSettlementJob(s, &ReferenceAssetRule{ReferenceSymbol: "BTC"}, nil, nil, time.Second)
	job.tick(context.Background())

	require.Len(t, s.TradeHistory(), 1)
}

func TestNewSettlementJobDefaultsInterval(t *testing.T) {
	job := NewSettlementJob(nil, nil, nil, nil, 0)
	assert.Equal(t, time.Second, job.interval)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	s := newEngineStore(t)
	job := NewSettlementJob(s, &ReferenceAssetRule{ReferenceSymbol: "BTC"}, nil, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("settlement job did not stop after context cancel")
	}
}

func TestStopShutsDownJob(t *testing.T) {
	s := newEngineStore(t)
	job := NewSettlementJob(s, &ReferenceAssetRule{ReferenceSymbol: "BTC"}, nil, nil, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()

	job.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("settlement job did not stop after Stop")
	}
}
