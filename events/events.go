// Package events publishes ingestion outcomes for downstream consumers.
// Publishing is best-effort: a publish failure never fails the batch.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BatchStored announces that a batch of price records was persisted.
type BatchStored struct {
	Symbol   string    `json:"symbol"`
	Records  int       `json:"records"`
	StoredAt time.Time `json:"stored_at"`
}

type Publisher interface {
	PublishBatchStored(ctx context.Context, ev BatchStored) error
	Close() error
}

// Nop is the default publisher when no broker is configured.
type Nop struct{}

func (Nop) PublishBatchStored(context.Context, BatchStored) error { return nil }

func (Nop) Close() error { return nil }

// KafkaPublisher writes JSON events keyed by symbol.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		log: log,
	}
}

func (p *KafkaPublisher) PublishBatchStored(ctx context.Context, ev BatchStored) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Symbol),
		Value: payload,
	})
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }
