package mq

import (
	"encoding/json"
	"log"

	"neontrade/internal/config"
	"neontrade/internal/model"

	"github.com/IBM/sarama"
)

// Producer 结算事件生产者
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// InitKafka 初始化 Kafka 生产者
// 未配置 broker 时返回 (nil, nil)，结算事件发布整体退化为空操作
func InitKafka(cfg *config.KafkaConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		log.Println("[Kafka] 未配置 broker，结算事件发布关闭")
		return nil, nil
	}

	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll // 等待所有副本确认
	kafkaConfig.Producer.Retry.Max = 3                    // 重试次数
	kafkaConfig.Producer.Return.Successes = true          // 返回成功消息

	producer, err := sarama.NewSyncProducer(cfg.Brokers, kafkaConfig)
	if err != nil {
		return nil, err
	}

	log.Println("Kafka 生产者创建成功")
	return &Producer{producer: producer, topic: cfg.Topic.TradeSettled}, nil
}

// PublishTradeSettled 发布一笔结算结果，key 用交易 ID 保证同单有序
func (p *Producer) PublishTradeSettled(record *model.TradeRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(record.ID),
		Value: sarama.ByteEncoder(payload),
	}

	_, _, err = p.producer.SendMessage(msg)
	return err
}

func (p *Producer) Close() {
	if p != nil && p.producer != nil {
		p.producer.Close()
	}
}
