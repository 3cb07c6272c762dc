package events

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TypeOrderCreated       = "order_created"
	TypeOrderStatusChanged = "order_status_changed"
)

// OutboxEvent is a pending order event written in the same transaction as the
// order change it describes.
type OutboxEvent struct {
	ID          string
	AggregateID string
	EventType   string
	Payload     []byte
}

// Repository is the outbox side of the order repository.
type Repository interface {
	UnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventProcessed(ctx context.Context, id string) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher drains the outbox into Kafka. A failed publish leaves the event
// unprocessed; the next tick retries it.
type Publisher struct {
	tick      time.Duration
	batchSize int
	repo      Repository
	writer    messageWriter
}

func NewPublisher(repo Repository, brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{tick: time.Second, batchSize: 100, repo: repo, writer: w}
}

func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.publishPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Publisher) publishPending(ctx context.Context) {
	pending, err := p.repo.UnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		log.Printf("failed to fetch outbox events: %v", err)
		return
	}

	for _, event := range pending {
		msg := kafka.Message{
			Key:   []byte(event.AggregateID), // order id, keeps per-order ordering
			Value: event.Payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.EventType)},
			},
		}
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			log.Printf("failed to publish event id = %v with error %v", event.ID, err)
			continue
		}

		if err := p.repo.MarkEventProcessed(ctx, event.ID); err != nil {
			log.Printf("failed to mark event as processed id = %v with error %v", event.ID, err)
		}
	}
}

func (p *Publisher) Close() error {
	if w, ok := p.writer.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}
