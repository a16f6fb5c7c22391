package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const eventTypeOrdersPlaced = "orders_placed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrdersPlacedEvent struct {
	EventID  string    `json:"event_id"`
	OwnerID  string    `json:"owner_id"`
	OrderIDs []string  `json:"order_ids"`
	Units    int       `json:"units"`
	TotalINR int64     `json:"total_inr"`
	PlacedAt time.Time `json:"placed_at"`
}

// OrdersPublisher writes one Kafka message per submitted batch.
type OrdersPublisher struct {
	writer  messageWriter
	timeout time.Duration
	now     func() time.Time
}

func NewOrdersPublisher(topic string, brokers ...string) *OrdersPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &OrdersPublisher{writer: w, timeout: 5 * time.Second, now: time.Now}
}

func (p *OrdersPublisher) PublishOrdersPlaced(ctx context.Context, ownerID string, orders []*domain.Order) error {
	event := OrdersPlacedEvent{
		EventID:  uuid.NewString(),
		OwnerID:  ownerID,
		OrderIDs: make([]string, 0, len(orders)),
		PlacedAt: p.now().UTC(),
	}
	for _, o := range orders {
		event.OrderIDs = append(event.OrderIDs, o.ID)
		event.Units += o.Quantity
		event.TotalINR += o.Subtotal()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal orders placed event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ownerID), // owner id keeps a user's batches ordered
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventTypeOrdersPlaced)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write failed: %w", err)
	}
	return nil
}

func (p *OrdersPublisher) Close() error {
	return p.writer.Close()
}
