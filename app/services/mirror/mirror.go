// Package mirror copies every primary-store mutation to secondary stores.
// The copies are best effort: a failed mirror write is logged and counted,
// never returned to the caller and never rolled back against the primary.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/heartscript/storefront/app/models"
	"github.com/heartscript/storefront/app/utils/metrics"
	"github.com/rs/zerolog"
)

type Mirror interface {
	UpsertUser(ctx context.Context, user *models.User) error
	InsertProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, name string) error
	InsertOrder(ctx context.Context, order *models.Order) error
	UpdateOrderStatus(ctx context.Context, orderID uint, status string) error
	DeleteOrder(ctx context.Context, orderID uint) error
}

// Noop discards every write. It is used when no secondary store is configured.
type Noop struct{}

func (Noop) UpsertUser(context.Context, *models.User) error { return nil }
func (Noop) InsertProduct(context.Context, *models.Product) error { return nil }
func (Noop) DeleteProduct(context.Context, string) error { return nil }
func (Noop) InsertOrder(context.Context, *models.Order) error { return nil }
func (Noop) UpdateOrderStatus(context.Context, uint, string) error { return nil }
func (Noop) DeleteOrder(context.Context, uint) error { return nil }

// Multi fans a write out to every sink and joins their errors.
type Multi []Mirror

func (m Multi) each(fn func(Mirror) error) error {
	var errs []error
	for _, sink := range m {
		if err := fn(sink); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) UpsertUser(ctx context.Context, user *models.User) error {
	return m.each(func(s Mirror) error { return s.UpsertUser(ctx, user) })
}

func (m Multi) InsertProduct(ctx context.Context, product *models.Product) error {
	return m.each(func(s Mirror) error { return s.InsertProduct(ctx, product) })
}

func (m Multi) DeleteProduct(ctx context.Context, name string) error {
	return m.each(func(s Mirror) error { return s.DeleteProduct(ctx, name) })
}

func (m Multi) InsertOrder(ctx context.Context, order *models.Order) error {
	return m.each(func(s Mirror) error { return s.InsertOrder(ctx, order) })
}

func (m Multi) UpdateOrderStatus(ctx context.Context, orderID uint, status string) error {
	return m.each(func(s Mirror) error { return s.UpdateOrderStatus(ctx, orderID, status) })
}

func (m Multi) DeleteOrder(ctx context.Context, orderID uint) error {
	return m.each(func(s Mirror) error { return s.DeleteOrder(ctx, orderID) })
}

const DefaultTimeout = 5 * time.Second

// Syncer is called by services after a successful primary write. Failures
// are logged and counted; nothing is reported back.
type Syncer struct {
	target  Mirror
	timeout time.Duration
}

func NewSyncer(target Mirror, timeout time.Duration) *Syncer {
	if target == nil {
		target = Noop{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Syncer{target: target, timeout: timeout}
}

func (s *Syncer) UserSaved(ctx context.Context, user *models.User) {
	s.run(ctx, "upsert_user", func(ctx context.Context) error { return s.target.UpsertUser(ctx, user) })
}

func (s *Syncer) ProductAdded(ctx context.Context, product *models.Product) {
	s.run(ctx, "insert_product", func(ctx context.Context) error { return s.target.InsertProduct(ctx, product) })
}

func (s *Syncer) ProductRemoved(ctx context.Context, name string) {
	s.run(ctx, "delete_product", func(ctx context.Context) error { return s.target.DeleteProduct(ctx, name) })
}

func (s *Syncer) OrderPlaced(ctx context.Context, order *models.Order) {
	s.run(ctx, "insert_order", func(ctx context.Context) error { return s.target.InsertOrder(ctx, order) })
}

func (s *Syncer) OrderStatusChanged(ctx context.Context, orderID uint, status string) {
	s.run(ctx, "update_order_status", func(ctx context.Context) error { return s.target.UpdateOrderStatus(ctx, orderID, status) })
}

func (s *Syncer) OrderRemoved(ctx context.Context, orderID uint) {
	s.run(ctx, "delete_order", func(ctx context.Context) error { return s.target.DeleteOrder(ctx, orderID) })
}

func (s *Syncer) run(parent context.Context, op string, fn func(context.Context) error) {
	logger := zerolog.Ctx(parent)

	// the request may be finishing; the mirror write gets its own deadline
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.timeout)
	defer cancel()

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("mirror panic: %v", r)
			}
		}()
		err = fn(ctx)
	}()

	if err != nil {
		metrics.MirrorWrites.WithLabelValues(op, "failed").Inc()
		logger.Warn().Err(err).Str("op", op).Msg("Mirror sync failed, continuing with primary store only")
		return
	}
	metrics.MirrorWrites.WithLabelValues(op, "ok").Inc()
}
