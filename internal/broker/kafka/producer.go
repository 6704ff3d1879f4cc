package kafka

import (
	"context"

	"brandmark/internal/config"

	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

// TaskProducer publishes processing tasks for the worker pool.
type TaskProducer struct {
	producer *wbkafka.Producer
}

func NewTaskProducer(cfg *config.Config) *TaskProducer {
	return &TaskProducer{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ProcessingTopic),
	}
}

func (p *TaskProducer) Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error {
	return p.producer.SendWithRetry(ctx, strategy, key, value)
}

func (p *TaskProducer) Close() error {
	return p.producer.Close()
}

// ResultProducer publishes processing results for downstream consumers.
type ResultProducer struct {
	producer *wbkafka.Producer
}

func NewResultProducer(cfg *config.Config) *ResultProducer {
	return &ResultProducer{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ResultsTopic),
	}
}

func (p *ResultProducer) Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error {
	return p.producer.SendWithRetry(ctx, strategy, key, value)
}

func (p *ResultProducer) Close() error {
	return p.producer.Close()
}
