package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// SnapshotConfig 状态快照库（BadgerDB）
type SnapshotConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	TradeSettled string `mapstructure:"trade_settled"`
}

// ArchiveConfig 审计归档库（MySQL），不启用时结算记录只存在快照里
type ArchiveConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// AdminConfig 管理员凭据：用户名 + bcrypt 哈希，不在代码里写死明文
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// ProfitRateConfig 周期档位：时长（秒）对应的收益率
type ProfitRateConfig struct {
	Seconds int     `mapstructure:"seconds"`
	Rate    float64 `mapstructure:"rate"`
}

type BusinessConfig struct {
	TickIntervalSeconds  int                `mapstructure:"tick_interval_seconds"`
	SettlementRule       string             `mapstructure:"settlement_rule"` // reference / price_delta
	ReferenceSymbol      string             `mapstructure:"reference_symbol"`
	PriceRefreshSeconds  int                `mapstructure:"price_refresh_seconds"`
	MinTransactionAmount int64              `mapstructure:"min_transaction_amount"`
	SeedInvitationCodes  []string           `mapstructure:"seed_invitation_codes"`
	ProfitRates          []ProfitRateConfig `mapstructure:"profit_rates"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("读取配置文件失败: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	return config
}
