package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/heartscript/storefront/app/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct {
	Noop
	mu    sync.Mutex
	calls []string
	err   error
	panic bool
}

func (r *recordingMirror) record(call string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	if r.panic {
		panic("sink exploded")
	}
	return r.err
}

func (r *recordingMirror) InsertOrder(ctx context.Context, order *models.Order) error {
	return r.record("insert_order")
}

func (r *recordingMirror) DeleteProduct(ctx context.Context, name string) error {
	return r.record("delete_product:" + name)
}

func (r *recordingMirror) UpdateOrderStatus(ctx context.Context, orderID uint, status string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return r.record("update_order_status:" + status)
}

func TestMultiCallsEverySinkAndJoinsErrors(t *testing.T) {
	first := &recordingMirror{err: errors.New("mongo down")}
	second := &recordingMirror{}

	err := Multi{first, second}.InsertOrder(context.Background(), &models.Order{ID: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo down")
	assert.Equal(t, []string{"insert_order"}, first.calls)
	assert.Equal(t, []string{"insert_order"}, second.calls)
}

func TestSyncerSwallowsSinkErrors(t *testing.T) {
	sink := &recordingMirror{err: errors.New("unreachable")}
	s := NewSyncer(sink, time.Second)

	assert.NotPanics(t, func() {
		s.OrderPlaced(context.Background(), &models.Order{ID: 7})
	})
	assert.Equal(t, []string{"insert_order"}, sink.calls)
}

func TestSyncerRecoversPanics(t *testing.T) {
	sink := &recordingMirror{panic: true}
	s := NewSyncer(sink, time.Second)

	assert.NotPanics(t, func() {
		s.ProductRemoved(context.Background(), "Rose Card")
	})
	assert.Equal(t, []string{"delete_product:Rose Card"}, sink.calls)
}

func TestSyncerIgnoresCancelledRequestContext(t *testing.T) {
	sink := &recordingMirror{}
	s := NewSyncer(sink, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.OrderStatusChanged(ctx, 3, models.OrderStatusShipped)

	assert.Equal(t, []string{"update_order_status:Shipped"}, sink.calls)
}

func TestNewSyncerDefaults(t *testing.T) {
	s := NewSyncer(nil, 0)
	assert.Equal(t, DefaultTimeout, s.timeout)
	assert.IsType(t, Noop{}, s.target)
}

func TestDocumentBuilders(t *testing.T) {
	ordered := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	order := &models.Order{
		ID:           12,
		Name:         "Asha",
		Items:        "Rose Card",
		Total:        "499",
		DeliveryMode: models.DeliveryModeShipped,
		Status:       models.OrderStatusCODPending,
		DateOrdered:  ordered,
	}
	doc := NewOrderDocument(order)
	assert.Equal(t, OrderDocument{
		OrderID:      12,
		CustomerName: "Asha",
		Items:        "Rose Card",
		TotalAmount:  "499",
		DeliveryType: "shipped",
		Status:       "COD - Pending",
		DateOrdered:  ordered,
	}, doc)

	product := &models.Product{ID: 4, Name: "Mug", Price: 250, ImageURL: "a.png", CategoryID: 2}
	pdoc := NewProductDocument(product)
	assert.Equal(t, uint(4), pdoc.ProductID)
	assert.Equal(t, "a.png", pdoc.ImageURL1)
	assert.False(t, pdoc.CreatedAt.IsZero())

	user := &models.User{Username: "asha", Email: "asha@example.com", Role: models.RoleCustomer}
	udoc := NewUserDocument(user)
	assert.Equal(t, "asha@example.com", udoc.Email)
	assert.Equal(t, models.RoleCustomer, udoc.Role)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaMirrorPublishesKeyedEvents(t *testing.T) {
	w := &fakeWriter{}
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	k := &KafkaMirror{writer: w, now: func() time.Time { return fixed }}

	require.NoError(t, k.UpdateOrderStatus(context.Background(), 42, models.OrderStatusDelivered))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "order:42", string(w.msgs[0].Key))

	var ev Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, EventOrderStatusChanged, ev.Type)
	assert.True(t, fixed.Equal(ev.OccurredAt))
	assert.JSONEq(t, `{"order_id":42,"status":"Delivered"}`, string(ev.Payload))
}

func TestKafkaMirrorWrapsWriterErrors(t *testing.T) {
	k := &KafkaMirror{writer: &fakeWriter{err: errors.New("broker gone")}, now: time.Now}

	err := k.DeleteProduct(context.Background(), "Mug")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EventProductRemoved)
	assert.Contains(t, err.Error(), "broker gone")
}
