package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/heartscript/storefront/app/models"
	"github.com/segmentio/kafka-go"
)

const (
	EventUserUpserted       = "user.upserted"
	EventProductAdded       = "product.added"
	EventProductRemoved     = "product.removed"
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderRemoved       = "order.removed"
)

// Event is the JSON value of every message published by KafkaMirror.
type Event struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaMirror appends every mutation to a topic so downstream indexes can
// rebuild from the log.
type KafkaMirror struct {
	writer messageWriter
	now    func() time.Time
}

func NewKafkaMirror(w *kafka.Writer) *KafkaMirror {
	return &KafkaMirror{writer: w, now: time.Now}
}

func (k *KafkaMirror) publish(ctx context.Context, eventType, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("kafka mirror: encode %s payload: %w", eventType, err)
	}
	value, err := json.Marshal(Event{Type: eventType, OccurredAt: k.now().UTC(), Payload: body})
	if err != nil {
		return fmt.Errorf("kafka mirror: encode %s event: %w", eventType, err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		return fmt.Errorf("kafka mirror: publish %s: %w", eventType, err)
	}
	return nil
}

func (k *KafkaMirror) UpsertUser(ctx context.Context, user *models.User) error {
	return k.publish(ctx, EventUserUpserted, "user:"+user.Email, NewUserDocument(user))
}

func (k *KafkaMirror) InsertProduct(ctx context.Context, product *models.Product) error {
	return k.publish(ctx, EventProductAdded, "product:"+product.Name, NewProductDocument(product))
}

func (k *KafkaMirror) DeleteProduct(ctx context.Context, name string) error {
	return k.publish(ctx, EventProductRemoved, "product:"+name, map[string]string{"name": name})
}

func (k *KafkaMirror) InsertOrder(ctx context.Context, order *models.Order) error {
	return k.publish(ctx, EventOrderPlaced, orderKey(order.ID), NewOrderDocument(order))
}

func (k *KafkaMirror) UpdateOrderStatus(ctx context.Context, orderID uint, status string) error {
	return k.publish(ctx, EventOrderStatusChanged, orderKey(orderID), map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
}

func (k *KafkaMirror) DeleteOrder(ctx context.Context, orderID uint) error {
	return k.publish(ctx, EventOrderRemoved, orderKey(orderID), map[string]interface{}{"order_id": orderID})
}

func orderKey(id uint) string {
	return "order:" + strconv.FormatUint(uint64(id), 10)
}
