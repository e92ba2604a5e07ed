package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"neontrade/internal/archive"
	"neontrade/internal/config"
	"neontrade/internal/engine"
	"neontrade/internal/handler"
	"neontrade/internal/infrastructure/cache"
	"neontrade/internal/infrastructure/database"
	"neontrade/internal/infrastructure/mq"
	"neontrade/internal/infrastructure/snapshot"
	"neontrade/internal/model"
	"neontrade/internal/pricefeed"
	"neontrade/internal/service"
	"neontrade/internal/store"
	"neontrade/pkg/idgen"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig("config/config.yaml")

	// 初始化 ID 生成器
	idgen.Init(1)

	// 初始化快照库
	snapshotStore, err := snapshot.NewBadgerStore(cfg.Snapshot.Path)
	if err != nil {
		log.Fatalf("打开快照库失败: %v", err)
	}
	defer snapshotStore.Close()

	// 初始化 Redis（会话标记）
	redisClient := cache.InitRedis(&cfg.Redis)
	sess := cache.NewRedisSession(redisClient)

	// 加载状态容器
	st := store.New(snapshotStore, sess, cfg.Business.SeedInvitationCodes)

	// 初始化归档库（可选）
	var arch *archive.Archive
	if cfg.Archive.Enabled {
		db := database.InitMySQL(&cfg.Archive)
		arch, err = archive.New(db)
		if err != nil {
			log.Fatalf("初始化归档库失败: %v", err)
		}
	}

	// 初始化 Kafka（可选）
	producer, err := mq.InitKafka(&cfg.Kafka)
	if err != nil {
		log.Fatalf("创建 Kafka 生产者失败: %v", err)
	}
	defer producer.Close()

	// 行情源
	prices := pricefeed.NewService(time.Duration(cfg.Business.PriceRefreshSeconds) * time.Second)

	// 结算规则
	var judge model.OutcomeJudge
	switch cfg.Business.SettlementRule {
	case engine.RulePriceDelta:
		judge = &engine.PriceDeltaRule{Prices: prices}
	default:
		judge = &engine.ReferenceAssetRule{ReferenceSymbol: cfg.Business.ReferenceSymbol}
	}

	// 创建上下文（用于优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动后台任务
	go prices.Start(ctx)

	var publisher engine.EventPublisher
	if producer != nil {
		publisher = producer
	}
	var archiver engine.Archiver
	if arch != nil {
		archiver = arch
	}

	settlementJob := engine.NewSettlementJob(st, judge, publisher, archiver,
		time.Duration(cfg.Business.TickIntervalSeconds)*time.Second)
	go settlementJob.Start(ctx)

	// 组装服务和路由
	authService := service.NewAuthService(st)
	tradeService := service.NewTradeService(st, prices, cfg.Business.ProfitRates)
	transactionService := service.NewTransactionService(st, arch, cfg.Business.MinTransactionAmount)
	adminService := service.NewAdminService(st, sess, &cfg.Admin)

	h := handler.NewHandler(authService, tradeService, transactionService, adminService, prices, st)
	router := handler.SetupRouter(h)

	// 启动 HTTP 服务
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Printf("服务启动，监听端口: %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 取消上下文，停止后台任务
	cancel()

	// 关闭 HTTP 服务（等待最多5秒）
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务关闭异常: %v", err)
	}

	log.Println("服务已关闭")
}
