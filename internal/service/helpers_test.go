package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/rookgm/homechef/internal/cache"
	"github.com/rookgm/homechef/internal/models"
	"github.com/rookgm/homechef/internal/service/mocks"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

var (
	customer = models.TokenPayload{UserID: 1, Role: models.RoleCustomer}
	stranger = models.TokenPayload{UserID: 2, Role: models.RoleCustomer}
	chefA    = models.TokenPayload{UserID: 10, Role: models.RoleSeller}
	chefB    = models.TokenPayload{UserID: 20, Role: models.RoleSeller}
	chefC    = models.TokenPayload{UserID: 30, Role: models.RoleSeller}
	admin    = models.TokenPayload{UserID: 99, Role: models.RoleAdmin}
)

// memOrderRepo is an in-memory OrderRepository with version checks
type memOrderRepo struct {
	mu      sync.Mutex
	orders  map[uuid.UUID][]byte
	updates int
}

func newMemOrderRepo(t *testing.T, orders ...*models.Order) *memOrderRepo {
	t.Helper()
	r := &memOrderRepo{orders: map[uuid.UUID][]byte{}}
	for _, o := range orders {
		if err := r.CreateOrder(context.Background(), o); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func (r *memOrderRepo) CreateOrder(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; ok {
		return models.ErrConflictData
	}
	if order.Version == 0 {
		order.Version = 1
	}
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	r.orders[order.ID] = data
	return nil
}

func (r *memOrderRepo) GetOrderByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.orders[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	order := models.Order{}
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *memOrderRepo) UpdateOrder(_ context.Context, order *models.Order, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.orders[order.ID]
	if !ok {
		return models.ErrDataNotFound
	}
	stored := models.Order{}
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	if stored.Version != expectedVersion {
		return models.ErrConflict
	}
	next := *order
	next.Version = expectedVersion + 1
	data, err := json.Marshal(&next)
	if err != nil {
		return err
	}
	r.orders[order.ID] = data
	r.updates++
	*order = next
	return nil
}

func (r *memOrderRepo) DeleteOrder(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return models.ErrDataNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memOrderRepo) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	r.mu.Lock()
	ids := make([]uuid.UUID, 0, len(r.orders))
	for id := range r.orders {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	orders := []models.Order{}
	for _, id := range ids {
		o, err := r.GetOrderByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.ChefID != nil && !o.HasChef(*filter.ChefID) {
			continue
		}
		if !filter.IncludeDeleted && o.Deleted {
			continue
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (r *memOrderRepo) updateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates
}

type testDeps struct {
	carts     *mocks.MockCartRepository
	catalog   *mocks.MockCatalog
	reviews   *mocks.MockReviewCreator
	publisher *mocks.MockEventPublisher
	channels  *mocks.MockChannelScheduler
}

func newTestService(t *testing.T, repo OrderRepository, c cache.Cache) (*OrderService, testDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := testDeps{
		carts:     mocks.NewMockCartRepository(ctrl),
		catalog:   mocks.NewMockCatalog(ctrl),
		reviews:   mocks.NewMockReviewCreator(ctrl),
		publisher: mocks.NewMockEventPublisher(ctrl),
		channels:  mocks.NewMockChannelScheduler(ctrl),
	}
	if c == nil {
		c = cache.Nop{}
	}
	svc := NewOrderService(repo, d.carts, d.catalog, d.reviews, d.publisher, d.channels, c)
	svc.now = func() time.Time { return testNow }
	return svc, d
}

// stubCatalog serves products by id, unknown ids are not found
func stubCatalog(m *mocks.MockCatalog, products ...*models.Product) {
	byID := map[string]*models.Product{}
	for _, p := range products {
		byID[p.ID] = p
	}
	m.EXPECT().GetProduct(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string) (*models.Product, error) {
			p, ok := byID[id]
			if !ok {
				return nil, models.ErrDataNotFound
			}
			return p, nil
		}).AnyTimes()
}

func product(id string, chefID uint64, price float64, condiments ...models.CatalogCondiment) *models.Product {
	return &models.Product{
		ID:          id,
		ChefID:      chefID,
		Name:        "dish " + id,
		Price:       price,
		IsAvailable: true,
		Condiments:  condiments,
	}
}

// newOrder builds a pending order with one item per chef
func newOrder(customerID uint64, chefIDs ...uint64) *models.Order {
	started := testNow.Add(-time.Hour)
	order := &models.Order{
		ID:            uuid.New(),
		CustomerID:    customerID,
		Status:        models.StatusPending,
		StatusHistory: []models.StatusEntry{{Status: models.StatusPending, Timestamp: started}},
		PaymentStatus: models.PaymentStatusPaid,
		ReviewedItems: []models.ReviewedItem{},
		CreatedAt:     started,
		UpdatedAt:     started,
	}
	for _, chefID := range chefIDs {
		item := models.OrderItem{
			ProductID: productID(chefID),
			ChefID:    chefID,
			Name:      "dish",
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(10),
			Subtotal:  decimal.NewFromInt(10),
		}
		order.Items = append(order.Items, item)
		order.ChefSubOrders = append(order.ChefSubOrders, models.ChefSubOrder{
			ChefID:        chefID,
			Items:         []models.OrderItem{item},
			Status:        models.StatusPending,
			StatusHistory: []models.StatusEntry{{Status: models.StatusPending, Timestamp: started}},
		})
	}
	return order
}

func productID(chefID uint64) string {
	return fmt.Sprintf("p-%d", chefID)
}

// withStatus forces overall and sub-order statuses
func withStatus(order *models.Order, status models.OrderStatus) *models.Order {
	order.Status = status
	for i := range order.ChefSubOrders {
		order.ChefSubOrders[i].Status = status
	}
	return order
}
