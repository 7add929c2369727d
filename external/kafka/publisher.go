package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"MusicStoreAPI/internal/model"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"go.uber.org/zap"
)

// Producer is the part of *kgo.Client the publisher needs.
type Producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

type OrderPublisher struct {
	producer Producer
	topic    string
	logger   *zap.Logger
}

type Options struct {
	Brokers  []string
	Topic    string
	Username string
	Password string
}

// NewClient creates the franz-go client used by the publisher.
func NewClient(opts Options) (*kgo.Client, error) {
	kopts := []kgo.Opt{
		kgo.SeedBrokers(opts.Brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(10 * time.Millisecond),
		kgo.DefaultProduceTopic(opts.Topic),
	}

	if opts.Username != "" && opts.Password != "" {
		kopts = append(kopts, kgo.SASL(plain.Auth{
			User: opts.Username,
			Pass: opts.Password,
		}.AsMechanism()))
	}

	client, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return client, nil
}

func NewOrderPublisher(producer Producer, topic string, logger *zap.Logger) *OrderPublisher {
	return &OrderPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish queues the event keyed by order number so one order's events stay
// in one partition. Delivery is asynchronous; failures are only logged.
func (p *OrderPublisher) Publish(ctx context.Context, event model.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.OrderNumber),
		Value: data,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "version", Value: []byte("1.0")},
		},
		Timestamp: event.OccurredAt,
	}

	// the request context ends with the HTTP call; the record must outlive it
	p.producer.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("order event not delivered",
				zap.String("order_number", event.OrderNumber),
				zap.String("type", event.Type),
				zap.Error(err),
			)
			return
		}
		p.logger.Debug("order event delivered",
			zap.String("order_number", event.OrderNumber),
			zap.Int32("partition", r.Partition),
			zap.Int64("offset", r.Offset),
		)
	})
	return nil
}
