package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	content := `
server:
  port: 8080

snapshot:
  path: ./data/snapshot

kafka:
  brokers:
    - localhost:9092
  topic:
    trade_settled: neontrade.trade.settled

admin:
  username: admin
  password_hash: "$2a$10$abcdefghijklmnopqrstuv"

business:
  tick_interval_seconds: 1
  settlement_rule: reference
  reference_symbol: BTC
  price_refresh_seconds: 5
  min_transaction_amount: 500
  seed_invitation_codes:
    - NEON2025
    - START77
  profit_rates:
    - seconds: 60
      rate: 0.5
    - seconds: 120
      rate: 0.6
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := LoadConfig(path)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/snapshot", cfg.Snapshot.Path)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "neontrade.trade.settled", cfg.Kafka.Topic.TradeSettled)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.False(t, cfg.Archive.Enabled)

	assert.Equal(t, 1, cfg.Business.TickIntervalSeconds)
	assert.Equal(t, "reference", cfg.Business.SettlementRule)
	assert.Equal(t, "BTC", cfg.Business.ReferenceSymbol)
	assert.Equal(t, int64(500), cfg.Business.MinTransactionAmount)
	assert.Equal(t, []string{"NEON2025", "START77"}, cfg.Business.SeedInvitationCodes)

	require.Len(t, cfg.Business.ProfitRates, 2)
	assert.Equal(t, 60, cfg.Business.ProfitRates[0].Seconds)
	assert.Equal(t, 0.5, cfg.Business.ProfitRates[0].Rate)
}
