// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safar/coffee-shop/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const TypeOrderPlaced = "order.placed"

var ErrDisabled = errors.New("kafka disabled")

type OrderPlaced struct {
	EventID     string          `json:"event_id"`
	Type        string          `json:"type"`
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      string          `json:"user_id"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewOrderPlaced(order *models.Order) OrderPlaced {
	count := 0
	for _, item := range order.Items {
		count += item.Quantity
	}

	return OrderPlaced{
		EventID:     uuid.NewString(),
		Type:        TypeOrderPlaced,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.TotalAmount,
		ItemCount:   count,
		CreatedAt:   order.CreatedAt.UTC(),
	}
}

// ParseBrokers splits a comma separated broker list, skipping blanks.
func ParseBrokers(brokersCSV string) []string {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes events keyed by order id so every event for one order
// lands on the same partition. A Publisher without brokers returns
// ErrDisabled.
type Publisher struct {
	writer messageWriter
}

func NewPublisher(brokersCSV, topic string) *Publisher {
	brokers := ParseBrokers(brokersCSV)
	if len(brokers) == 0 {
		return &Publisher{}
	}

	return &Publisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	event := NewOrderPlaced(order)
	return p.publishJSON(ctx, strconv.FormatInt(order.ID, 10), event)
}

func (p *Publisher) publishJSON(ctx context.Context, key string, payload any) error {
	if !p.Enabled() {
		return ErrDisabled
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()})
}

func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
