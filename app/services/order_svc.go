package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/heartscript/storefront/app/models"
	"github.com/heartscript/storefront/app/repositories"
	"github.com/heartscript/storefront/app/services/invoice"
	"github.com/heartscript/storefront/app/services/mirror"
	"github.com/heartscript/storefront/app/utils/metrics"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	placeholderField = "N/A"
	placeholderTotal = "0"
	placeholderItems = "Unknown Item"
)

// Recipient is the delivery information typed at checkout.
type Recipient struct {
	Name          string
	Phone         string
	Email         string
	HouseNo       string
	Address       string
	Landmark      string
	Pincode       string
	CustomDetails string
}

// Invoice is a rendered PDF and the file name it should be downloaded as.
type Invoice struct {
	Filename string
	Body     []byte
}

type OrderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepositoryImpl
	renderer invoice.Renderer
	policy   StatusPolicy
	mirror   *mirror.Syncer
}

func NewOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepositoryImpl,
	renderer invoice.Renderer,
	policy StatusPolicy,
	syncer *mirror.Syncer,
) *OrderService {
	if policy == nil {
		policy = FreeFormPolicy{}
	}
	return &OrderService{
		orders:   orders,
		products: products,
		renderer: renderer,
		policy:   policy,
		mirror:   syncer,
	}
}

// NormalizeDeliveryMode maps a blank mode to self pickup and rejects anything
// other than self or shipped.
func NormalizeDeliveryMode(mode string) (string, error) {
	switch m := strings.ToLower(strings.TrimSpace(mode)); m {
	case "":
		return models.DeliveryModeSelf, nil
	case models.DeliveryModeSelf, models.DeliveryModeShipped:
		return m, nil
	default:
		return "", invalid("unknown delivery mode %q", mode)
	}
}

// CreateDirectOrder places a cash-on-delivery order for a single product. The
// total and item description are taken from the product, not the client.
func (s *OrderService) CreateDirectOrder(ctx context.Context, userID *uint, productID uint, to Recipient, mode string) (*models.Order, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", productID, err)
	}
	if product == nil {
		return nil, notFound("product", productID)
	}
	deliveryMode, err := NormalizeDeliveryMode(mode)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:        userID,
		Name:          to.Name,
		Phone:         to.Phone,
		Email:         to.Email,
		HouseNo:       to.HouseNo,
		Address:       to.Address,
		Landmark:      to.Landmark,
		Pincode:       to.Pincode,
		CustomDetails: to.CustomDetails,
		DeliveryMode:  deliveryMode,
		Total:         strconv.Itoa(product.Price),
		Items:         product.Name,
		Status:        models.OrderStatusCODPending,
	}
	return s.place(ctx, "direct", order)
}

// SubmitOrder stores a client-assembled order as given. Missing contact
// fields become "N/A", a missing total "0" and missing items "Unknown Item".
// The total is not required to be numeric.
func (s *OrderService) SubmitOrder(ctx context.Context, userID *uint, to Recipient, total, items string) (*models.Order, error) {
	order := &models.Order{
		UserID:        userID,
		Name:          orDefault(to.Name, placeholderField),
		Phone:         orDefault(to.Phone, placeholderField),
		Email:         to.Email,
		HouseNo:       orDefault(to.HouseNo, placeholderField),
		Address:       orDefault(to.Address, placeholderField),
		Landmark:      to.Landmark,
		Pincode:       to.Pincode,
		CustomDetails: to.CustomDetails,
		DeliveryMode:  models.DeliveryModeSelf,
		Total:         orDefault(total, placeholderTotal),
		Items:         orDefault(items, placeholderItems),
		Status:        models.OrderStatusPending,
	}
	return s.place(ctx, "submit", order)
}

func (s *OrderService) place(ctx context.Context, path string, order *models.Order) (*models.Order, error) {
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	metrics.OrdersCreated.WithLabelValues(path).Inc()
	log.Ctx(ctx).Info().Uint("order_id", order.ID).Str("path", path).Str("status", order.Status).Msg("OrderService: order placed")
	s.mirror.OrderPlaced(ctx, order)
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	if order == nil {
		return nil, notFound("order", id)
	}
	return order, nil
}

// ListOrders returns every order, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.GetAllOrders(ctx)
}

// UpdateStatus sets the order's status as allowed by the configured policy.
// Concurrent updates are not serialized; the last one to commit wins.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	status = strings.TrimSpace(status)
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Allow(order.Status, status); err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("order", id)
		}
		return nil, fmt.Errorf("failed to update order %d: %w", id, err)
	}
	order.Status = status

	metrics.OrderStatusUpdates.WithLabelValues(status).Inc()
	log.Ctx(ctx).Info().Uint("order_id", id).Str("status", status).Msg("OrderService.UpdateStatus: status changed")
	s.mirror.OrderStatusChanged(ctx, id, status)
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("order", id)
		}
		return fmt.Errorf("failed to delete order %d: %w", id, err)
	}
	log.Ctx(ctx).Info().Uint("order_id", id).Msg("OrderService.DeleteOrder: order removed")
	s.mirror.OrderRemoved(ctx, id)
	return nil
}

// RenderInvoice renders the order's invoice. A total that does not parse is
// printed as 0.00 rather than failing.
func (s *OrderService) RenderInvoice(ctx context.Context, id uint) (*Invoice, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := s.renderer.Render(invoice.FromOrder(order))
	if err != nil {
		return nil, err
	}
	return &Invoice{
		Filename: fmt.Sprintf("HeartScript_Invoice_%d.pdf", order.ID),
		Body:     body,
	}, nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
