package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/diewo77/go-retail/internal/models"
)

type fakeProducer struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeProducer) WriteMessage(_ context.Context, msg kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func order() *models.Order {
	done := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &models.Order{
		ID: 7, OrderNumber: "CMD-20250301100000-aaaaaaaa", ClientID: 3, UserID: 2,
		Store: models.StoreVilleAvray, TotalInclTax: decimal.RequireFromString("240"),
		CompletedAt: &done,
		Items:       []models.OrderItem{{ID: 1}},
		Invoice:     &models.Invoice{ID: 9, Number: "FAC-20250301100000-bbbbbbbb"},
	}
}

func TestNewOrderPlaced(t *testing.T) {
	ev := NewOrderPlaced(order())
	assert.Equal(t, TypeOrderPlaced, ev.Type)
	assert.Equal(t, "240.00", ev.TotalInclTax)
	assert.Equal(t, "FAC-20250301100000-bbbbbbbb", ev.InvoiceNumber)
	assert.Equal(t, 1, ev.ItemCount)
	assert.Equal(t, "ville_avray", ev.Store)
}

func TestKafkaPublisher(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewKafkaPublisherWithProducer(fp, "retail.orders", zaptest.NewLogger(t))

	require.NoError(t, pub.PublishOrderPlaced(context.Background(), NewOrderPlaced(order())))
	require.Len(t, fp.msgs, 1)
	msg := fp.msgs[0]
	assert.Equal(t, "CMD-20250301100000-aaaaaaaa", string(msg.Key))

	var decoded OrderPlaced
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.EqualValues(t, 7, decoded.OrderID)
	assert.EqualValues(t, 9, decoded.InvoiceID)

	require.NoError(t, pub.Close())
	assert.True(t, fp.closed)
}

func TestKafkaPublisherError(t *testing.T) {
	fp := &fakeProducer{err: errors.New("broker down")}
	pub := NewKafkaPublisherWithProducer(fp, "retail.orders", zaptest.NewLogger(t))
	err := pub.PublishOrderPlaced(context.Background(), NewOrderPlaced(order()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestLogPublisher(t *testing.T) {
	pub := NewLogPublisher(zaptest.NewLogger(t))
	assert.NoError(t, pub.PublishOrderPlaced(context.Background(), NewOrderPlaced(order())))
	assert.NoError(t, pub.Close())
}
