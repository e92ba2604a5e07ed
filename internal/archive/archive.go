package archive

import (
	"context"
	"time"

	"neontrade/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TradeRecordRow 成交记录归档表
// 只追加，不修改，不删除，作为快照之外的对账依据
type TradeRecordRow struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	TradeID    string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	UserID     string          `gorm:"type:varchar(64);index;not null"`
	CoinSymbol string          `gorm:"type:varchar(16);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Duration   int             `gorm:"not null"`
	Profit     decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Direction  string          `gorm:"type:varchar(8);not null"`
	Outcome    string          `gorm:"type:varchar(8);not null"`
	SettledAt  time.Time       `gorm:"index;not null"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (TradeRecordRow) TableName() string {
	return "trade_record_archive"
}

// TransactionRow 充值/提现流水归档表
type TransactionRow struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	TransactionID string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	UserID        string          `gorm:"type:varchar(64);index;not null"`
	Type          string          `gorm:"type:varchar(16);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Status        string          `gorm:"type:varchar(16);not null"`
	SubmittedAt   time.Time       `gorm:"index;not null"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
}

func (TransactionRow) TableName() string {
	return "transaction_archive"
}

// Archive 审计归档，写入失败只影响归档不影响主流程
type Archive struct {
	db *gorm.DB
}

func New(db *gorm.DB) (*Archive, error) {
	if err := db.AutoMigrate(&TradeRecordRow{}, &TransactionRow{}); err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

// SaveTradeRecords 批量归档结算记录，重复写入同一笔交易是无操作
func (a *Archive) SaveTradeRecords(ctx context.Context, records []*model.TradeRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]*TradeRecordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, &TradeRecordRow{
			TradeID:    r.ID,
			UserID:     r.UserID,
			CoinSymbol: r.CoinSymbol,
			Amount:     r.Amount,
			Duration:   r.Duration,
			Profit:     r.Profit,
			Direction:  r.Direction,
			Outcome:    r.Outcome,
			SettledAt:  r.SettledAt,
		})
	}

	return a.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// SaveTransaction 归档一条已到终态的流水，重复归档同一笔是无操作
func (a *Archive) SaveTransaction(ctx context.Context, tx *model.Transaction) error {
	row := &TransactionRow{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Type:          tx.Type,
		Amount:        tx.Amount,
		Status:        tx.Status,
		SubmittedAt:   tx.CreatedAt,
	}

	return a.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
}
