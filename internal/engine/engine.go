package engine

import (
	"context"
	"log"
	"time"

	"neontrade/internal/model"
	"neontrade/internal/store"
)

// EventPublisher 结算事件发布，Kafka 不可用时可以为 nil
type EventPublisher interface {
	PublishTradeSettled(record *model.TradeRecord) error
}

// Archiver 成交记录归档，未配置归档库时为 nil
type Archiver interface {
	SaveTradeRecords(ctx context.Context, records []*model.TradeRecord) error
}

// SettlementJob 结算任务：每秒驱动一次 store.Tick
// 状态变更全部在 Tick 内原子完成，事件发布和归档在锁外做，尽力而为
type SettlementJob struct {
	store     *store.Store
	judge     model.OutcomeJudge
	publisher EventPublisher
	archive   Archiver
	stopCh    chan struct{}
	interval  time.Duration
}

func NewSettlementJob(st *store.Store, judge model.OutcomeJudge, publisher EventPublisher, archive Archiver, interval time.Duration) *SettlementJob {
	if interval <= 0 {
		interval = time.Second
	}
	return &SettlementJob{
		store:     st,
		judge:     judge,
		publisher: publisher,
		archive:   archive,
		stopCh:    make(chan struct{}),
		interval:  interval,
	}
}

func (j *SettlementJob) Start(ctx context.Context) {
	log.Println("[SettlementJob] 结算任务启动")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[SettlementJob] 收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Println("[SettlementJob] 任务停止")
			return
		case <-ticker.C:
			j.tick(ctx)
		}
	}
}

func (j *SettlementJob) Stop() {
	close(j.stopCh)
}

func (j *SettlementJob) tick(ctx context.Context) {
	settled := j.store.Tick(time.Now(), j.judge)
	if len(settled) == 0 {
		return
	}

	log.Printf("[SettlementJob] 本次结算 %d 笔交易", len(settled))

	if j.publisher != nil {
		for _, record := range settled {
			if err := j.publisher.PublishTradeSettled(record); err != nil {
				log.Printf("[SettlementJob] 结算事件发送失败: tradeID=%s, err=%v", record.ID, err)
			}
		}
	}

	if j.archive != nil {
		if err := j.archive.SaveTradeRecords(ctx, settled); err != nil {
			log.Printf("[SettlementJob] 成交记录归档失败: %v", err)
		}
	}
}
