package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/logx"
	"fulfillment-platform/internal/service/orders"
)

var newSyncProducer = sarama.NewSyncProducer

// Publisher publishes order events keyed by order id, so events of one order
// stay ordered within a partition.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   logx.Logger
	now      func() time.Time
}

// NewPublisher connects a sync producer to brokers.
func NewPublisher(logger logx.Logger, brokers []string, topic string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	p, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewPublisherWithProducer(p, topic, logger), nil
}

// NewPublisherWithProducer wraps an existing producer.
func NewPublisherWithProducer(p sarama.SyncProducer, topic string, logger logx.Logger) *Publisher {
	return &Publisher{producer: p, topic: topic, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// CreateDelivery publishes an order.created event.
func (p *Publisher) CreateDelivery(ctx context.Context, orderID string, userID int64) error {
	return p.publish(ctx, EventDTO{OrderID: orderID, UserID: userID, Status: orders.StatusCreated})
}

// CancelDelivery publishes an order.canceled event.
func (p *Publisher) CancelDelivery(ctx context.Context, orderID string) error {
	return p.publish(ctx, EventDTO{OrderID: orderID, Status: orders.StatusCanceled})
}

func (p *Publisher) publish(ctx context.Context, ev EventDTO) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ev.CreatedAt = p.now()
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.OrderID),
		Value: sarama.ByteEncoder(b),
	})
	if err != nil {
		return fmt.Errorf("publish order event: %w: %w", apperr.ErrRemoteCall, err)
	}
	p.logger.Debug("order event published",
		logx.String("order_id", ev.OrderID),
		logx.String("status", ev.Status),
		logx.Int("partition", int(partition)),
		logx.Int64("offset", offset),
	)
	return nil
}

// Close closes the producer
func (p *Publisher) Close() error {
	return p.producer.Close()
}
