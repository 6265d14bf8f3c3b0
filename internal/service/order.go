package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rookgm/homechef/internal/cache"
	"github.com/rookgm/homechef/internal/events"
	"github.com/rookgm/homechef/internal/logger"
	"github.com/rookgm/homechef/internal/models"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order
	CreateOrder(ctx context.Context, order *models.Order) error
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// UpdateOrder writes order if stored version equals expectedVersion
	UpdateOrder(ctx context.Context, order *models.Order, expectedVersion int64) error
	// DeleteOrder removes order permanently
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	// ListOrders returns orders matching filter
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
}

// CartRepository is interface for interacting with customer carts
type CartRepository interface {
	AddCartItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	ListCartItems(ctx context.Context, customerID uint64) ([]models.CartItem, error)
	ClearCart(ctx context.Context, customerID uint64) error
}

// Catalog looks up products
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// ReviewCreator persists product reviews
type ReviewCreator interface {
	CreateReview(ctx context.Context, review models.Review) (string, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// ChannelScheduler schedules chat channel creation in background
type ChannelScheduler interface {
	Enqueue(req events.ChannelRequest) bool
}

const (
	// maximum read-modify-write attempts of one mutation
	maxWriteAttempts = 5
	orderCacheTTL    = 30 * time.Second
)

var tracer = otel.Tracer("github.com/rookgm/homechef/internal/service")

// errUnchanged is returned by a mutation that has nothing to write
var errUnchanged = errors.New("order unchanged")

// OrderService implements order lifecycle operations
type OrderService struct {
	repo      OrderRepository
	carts     CartRepository
	catalog   Catalog
	reviews   ReviewCreator
	publisher EventPublisher
	channels  ChannelScheduler
	cache     cache.Cache
	now       func() time.Time
}

// NewOrderService creates new OrderService instance
func NewOrderService(
	repo OrderRepository,
	carts CartRepository,
	catalog Catalog,
	reviews ReviewCreator,
	publisher EventPublisher,
	channels ChannelScheduler,
	c cache.Cache,
) *OrderService {
	return &OrderService{
		repo:      repo,
		carts:     carts,
		catalog:   catalog,
		reviews:   reviews,
		publisher: publisher,
		channels:  channels,
		cache:     c,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// mutate loads the order, applies fn and writes it back guarded by the order version.
// On a version conflict the whole cycle is repeated. If fn returns errUnchanged the
// loaded order is returned without a write.
func (os *OrderService) mutate(ctx context.Context, id uuid.UUID, fn func(order *models.Order) error) (*models.Order, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		order, err := os.repo.GetOrderByID(ctx, id)
		if err != nil {
			return nil, err
		}

		expected := order.Version
		if err := fn(order); err != nil {
			if errors.Is(err, errUnchanged) {
				return order, nil
			}
			return nil, err
		}

		err = os.repo.UpdateOrder(ctx, order, expected)
		if err == nil {
			os.invalidate(ctx, id)
			return order, nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return nil, err
		}

		logger.Log.Debug("order version conflict",
			zap.String("order", id.String()),
			zap.Int("attempt", attempt))
	}

	return nil, models.ErrConflict
}

func (os *OrderService) cacheKey(id uuid.UUID) string {
	return os.cache.GenerateKey("order", id.String())
}

func (os *OrderService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := os.cache.Delete(ctx, os.cacheKey(id)); err != nil {
		logger.Log.Warn("invalidate order cache", zap.String("order", id.String()), zap.Error(err))
	}
}

// loadCached returns order from the read cache, falling back to the repository
func (os *OrderService) loadCached(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	key := os.cacheKey(id)

	if data, err := os.cache.Get(ctx, key); err == nil {
		order := models.Order{}
		if err := json.Unmarshal(data, &order); err == nil {
			return &order, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.Log.Warn("read order cache", zap.String("order", id.String()), zap.Error(err))
	}

	order, err := os.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(order); err == nil {
		if err := os.cache.Set(ctx, key, data, orderCacheTTL); err != nil {
			logger.Log.Warn("write order cache", zap.String("order", id.String()), zap.Error(err))
		}
	}

	return order, nil
}

func (os *OrderService) publish(ctx context.Context, event events.Event) {
	if err := os.publisher.Publish(ctx, event); err != nil {
		logger.Log.Error("publish event",
			zap.String("type", event.Type),
			zap.String("order", event.OrderID.String()),
			zap.Error(err))
	}
}

// GetOrder returns order visible to caller
func (os *OrderService) GetOrder(ctx context.Context, caller models.TokenPayload, id uuid.UUID) (*models.Order, error) {
	order, err := os.loadCached(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canAccess(order, caller) {
		return nil, models.ErrForbidden
	}

	return order, nil
}

// ListCustomerOrders returns orders of customer. Soft-deleted orders are hidden.
func (os *OrderService) ListCustomerOrders(ctx context.Context, customerID uint64) ([]models.Order, error) {
	return os.repo.ListOrders(ctx, models.OrderFilter{CustomerID: &customerID})
}

// ListChefOrders returns orders containing a sub-order of the chef, soft-deleted included
func (os *OrderService) ListChefOrders(ctx context.Context, chefID uint64) ([]models.Order, error) {
	return os.repo.ListOrders(ctx, models.OrderFilter{ChefID: &chefID, IncludeDeleted: true})
}

// ListAllOrders returns every order, admin only
func (os *OrderService) ListAllOrders(ctx context.Context, caller models.TokenPayload) ([]models.Order, error) {
	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}
	return os.repo.ListOrders(ctx, models.OrderFilter{IncludeDeleted: true})
}
