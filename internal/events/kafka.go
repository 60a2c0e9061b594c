package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mahamedadballa/circlechat-server/config"
)

// KafkaProducer writes the durable change feed.
type KafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(cfg *config.Config) *KafkaProducer {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.TopicEvents,
		Balancer: &kafka.LeastBytes{},
	})
	return &KafkaProducer{writer: w}
}

func (p *KafkaProducer) Publish(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{Key: []byte(key), Value: value, Time: time.Now()}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaProducer) Close() error { return p.writer.Close() }
