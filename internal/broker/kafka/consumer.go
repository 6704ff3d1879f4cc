package kafka

import (
	"context"

	"brandmark/internal/config"

	kafka "github.com/segmentio/kafka-go"
	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

// TaskConsumer reads processing tasks in the worker.
type TaskConsumer struct {
	consumer *wbkafka.Consumer
}

func NewTaskConsumer(cfg *config.Config) *TaskConsumer {
	return &TaskConsumer{
		consumer: wbkafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ProcessingTopic, cfg.Kafka.GroupID),
	}
}

func (c *TaskConsumer) Fetch(ctx context.Context, strategy retry.Strategy) (kafka.Message, error) {
	return c.consumer.FetchWithRetry(ctx, strategy)
}

func (c *TaskConsumer) Commit(ctx context.Context, msg kafka.Message) error {
	return c.consumer.Commit(ctx, msg)
}

func (c *TaskConsumer) StartConsuming(ctx context.Context, out chan<- kafka.Message, strategy retry.Strategy) {
	c.consumer.StartConsuming(ctx, out, strategy)
}

func (c *TaskConsumer) Close() error {
	return c.consumer.Close()
}
