// Package events publishes domain events about placed orders.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"github.com/diewo77/go-retail/internal/models"
)

const TypeOrderPlaced = "order.placed"

// OrderPlaced is emitted once an order and its invoice are committed.
type OrderPlaced struct {
	Type          string    `json:"type"`
	OrderID       uint      `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	InvoiceID     uint      `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	ClientID      uint      `json:"client_id"`
	UserID        uint      `json:"user_id"`
	Store         string    `json:"store"`
	TotalInclTax  string    `json:"total_incl_tax"`
	ItemCount     int       `json:"item_count"`
	PlacedAt      time.Time `json:"placed_at"`
}

// NewOrderPlaced builds the event from a committed order.
func NewOrderPlaced(o *models.Order) OrderPlaced {
	ev := OrderPlaced{
		Type:         TypeOrderPlaced,
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
		ClientID:     o.ClientID,
		UserID:       o.UserID,
		Store:        string(o.Store),
		TotalInclTax: o.TotalInclTax.StringFixed(2),
		ItemCount:    len(o.Items),
		PlacedAt:     o.CreatedAt,
	}
	if o.CompletedAt != nil {
		ev.PlacedAt = *o.CompletedAt
	}
	if o.Invoice != nil {
		ev.InvoiceID = o.Invoice.ID
		ev.InvoiceNumber = o.Invoice.Number
	}
	return ev
}

// Publisher delivers order events.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error
	Close() error
}

// MessageProducer writes a single kafka message.
type MessageProducer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaPublisher sends events to a kafka topic, keyed by order number.
type KafkaPublisher struct {
	producer MessageProducer
	topic    string
	log      *zap.Logger
}

// NewKafkaPublisher creates a traced kafka writer for topic.
func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) (*KafkaPublisher, error) {
	base := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	writer, err := otelkafka.NewWriter(base,
		otelkafka.WithTracerProvider(otel.GetTracerProvider()),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes([]attribute.KeyValue{
			semconv.MessagingDestinationNameKey.String(topic),
			attribute.String("messaging.kafka.client_id", "go-retail"),
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka writer")
	}
	return NewKafkaPublisherWithProducer(writer, topic, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(p MessageProducer, topic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic, log: log}
}

func (k *KafkaPublisher) PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "encode order event")
	}
	msg := kafka.Message{
		Key:   []byte(ev.OrderNumber),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "order-id", Value: []byte(strconv.FormatUint(uint64(ev.OrderID), 10))},
		},
	}
	if err := k.producer.WriteMessage(ctx, msg); err != nil {
		return errors.Wrapf(err, "publish %s to %s", ev.Type, k.topic)
	}
	k.log.Info("order event published", zap.String("topic", k.topic), zap.String("order_number", ev.OrderNumber))
	return nil
}

func (k *KafkaPublisher) Close() error { return k.producer.Close() }

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher { return &LogPublisher{log: log} }

func (l *LogPublisher) PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error {
	l.log.Info("order placed",
		zap.String("order_number", ev.OrderNumber),
		zap.String("invoice_number", ev.InvoiceNumber),
		zap.String("store", ev.Store),
		zap.String("total_incl_tax", ev.TotalInclTax),
	)
	return nil
}

func (l *LogPublisher) Close() error { return nil }
