package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/rookgm/homechef/internal/cache"
	"github.com/rookgm/homechef/internal/models"
	"github.com/rookgm/homechef/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCache is a map backed cache.Cache
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) GenerateKey(operation, key string) string {
	return "test:" + operation + ":" + key
}

// getter returns a fresh copy of order on every call
func getter(order *models.Order) func(context.Context, uuid.UUID) (*models.Order, error) {
	return func(context.Context, uuid.UUID) (*models.Order, error) {
		cp := *order
		cp.ChefSubOrders = append([]models.ChefSubOrder(nil), order.ChefSubOrders...)
		cp.StatusHistory = append([]models.StatusEntry(nil), order.StatusHistory...)
		return &cp, nil
	}
}

func TestOrderService_Mutate_RetriesOnConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	order := newOrder(1, 10)
	order.Version = 7

	repo := mocks.NewMockOrderRepository(ctrl)
	repo.EXPECT().GetOrderByID(gomock.Any(), order.ID).DoAndReturn(getter(order)).Times(2)
	gomock.InOrder(
		repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any(), int64(7)).Return(models.ErrConflict),
		repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any(), int64(7)).Return(nil),
	)

	svc, d := newTestService(t, repo, nil)
	d.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	got, err := svc.UpdateStatus(context.Background(), chefA, order.ID, models.StatusReceived)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceived, got.Status)
	// each attempt starts from a fresh read
	assert.Len(t, got.SubOrder(10).StatusHistory, 2)
}

func TestOrderService_Mutate_ExhaustsRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	order := newOrder(1, 10)

	repo := mocks.NewMockOrderRepository(ctrl)
	repo.EXPECT().GetOrderByID(gomock.Any(), order.ID).DoAndReturn(getter(order)).Times(maxWriteAttempts)
	repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.ErrConflict).Times(maxWriteAttempts)

	svc, _ := newTestService(t, repo, nil)

	_, err := svc.CancelOrder(context.Background(), customer, order.ID)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestOrderService_GetOrder(t *testing.T) {
	order := newOrder(1, 10)

	tests := []struct {
		name    string
		caller  models.TokenPayload
		wantErr error
	}{
		{name: "owner", caller: customer},
		{name: "chef", caller: chefA},
		{name: "admin", caller: admin},
		{name: "foreign_chef", caller: chefB, wantErr: models.ErrForbidden},
		{name: "stranger", caller: stranger, wantErr: models.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemOrderRepo(t, order)
			svc, _ := newTestService(t, repo, nil)

			got, err := svc.GetOrder(context.Background(), tt.caller, order.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, order.ID, got.ID)
		})
	}
}

func TestOrderService_GetOrder_Cache(t *testing.T) {
	ctrl := gomock.NewController(t)
	order := withStatus(newOrder(1, 10), models.StatusReceived)

	repo := mocks.NewMockOrderRepository(ctrl)
	// one read fills the cache, one read for the mutation, one after invalidation
	repo.EXPECT().GetOrderByID(gomock.Any(), order.ID).DoAndReturn(getter(order)).Times(3)
	repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	c := newMemCache()
	svc, d := newTestService(t, repo, c)
	d.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	for i := 0; i < 3; i++ {
		_, err := svc.GetOrder(context.Background(), customer, order.ID)
		require.NoError(t, err)
	}

	_, err := svc.UpdateStatus(context.Background(), chefA, order.ID, models.StatusReady)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), c.GenerateKey("order", order.ID.String()))
	assert.ErrorIs(t, err, cache.ErrMiss)

	_, err = svc.GetOrder(context.Background(), customer, order.ID)
	require.NoError(t, err)
}

func TestOrderService_ListAllOrders(t *testing.T) {
	deleted := newOrder(1, 10)
	deleted.Deleted = true
	repo := newMemOrderRepo(t, newOrder(1, 10), newOrder(2, 20), deleted)
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.ListAllOrders(context.Background(), chefA)
	assert.ErrorIs(t, err, models.ErrForbidden)

	all, err := svc.ListAllOrders(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.ListCustomerOrders(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	chef, err := svc.ListChefOrders(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, chef, 2)
}
