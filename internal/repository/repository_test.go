package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rookgm/homechef/internal/models"
	"github.com/rookgm/homechef/internal/repository/postgres"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_DSN and applies migrations.
// Tests are skipped when it is not set.
func newTestDB(t *testing.T) *postgres.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	db, err := postgres.New(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(db.Close)

	return db
}

func testOrder(customerID uint64, chefIDs ...uint64) *models.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	order := &models.Order{
		ID:            uuid.New(),
		CustomerID:    customerID,
		Status:        models.StatusPending,
		StatusHistory: []models.StatusEntry{{Status: models.StatusPending, Timestamp: now}},
		PaymentStatus: models.PaymentStatusPaid,
		Subtotal:      decimal.RequireFromString("10.50"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, chefID := range chefIDs {
		order.ChefSubOrders = append(order.ChefSubOrders, models.ChefSubOrder{ChefID: chefID, Status: models.StatusPending})
	}
	return order
}

func TestOrderRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	// ids unique per run
	customerID := uint64(time.Now().UnixNano())
	chefID := customerID + 1

	order := testOrder(customerID, chefID, chefID+1)
	require.NoError(t, repo.CreateOrder(ctx, order))
	assert.Equal(t, int64(1), order.Version)
	assert.ErrorIs(t, repo.CreateOrder(ctx, order), models.ErrConflictData)

	got, err := repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.True(t, order.Subtotal.Equal(got.Subtotal))

	_, err = repo.GetOrderByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrDataNotFound)

	// version guarded update
	got.Status = models.StatusReceived
	require.NoError(t, repo.UpdateOrder(ctx, got, 1))
	assert.Equal(t, int64(2), got.Version)

	stale := *order
	stale.Status = models.StatusCancelled
	assert.ErrorIs(t, repo.UpdateOrder(ctx, &stale, 1), models.ErrConflict)

	missing := testOrder(customerID)
	assert.ErrorIs(t, repo.UpdateOrder(ctx, missing, 1), models.ErrDataNotFound)

	// soft-deleted order is hidden from the customer listing only
	got.Deleted = true
	require.NoError(t, repo.UpdateOrder(ctx, got, 2))

	mine, err := repo.ListOrders(ctx, models.OrderFilter{CustomerID: &customerID})
	require.NoError(t, err)
	assert.Empty(t, mine)

	chefs, err := repo.ListOrders(ctx, models.OrderFilter{ChefID: &chefID, IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, chefs, 1)
	assert.Equal(t, int64(3), chefs[0].Version)

	require.NoError(t, repo.DeleteOrder(ctx, order.ID))
	assert.ErrorIs(t, repo.DeleteOrder(ctx, order.ID), models.ErrDataNotFound)
}

func TestCartRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	customerID := uint64(time.Now().UnixNano())

	_, err := repo.AddCartItem(ctx, &models.CartItem{CustomerID: customerID, ProductID: "p1", Quantity: 1, CondimentIDs: []string{"b", "a"}})
	require.NoError(t, err)
	// same condiments in another order merge into the same line
	merged, err := repo.AddCartItem(ctx, &models.CartItem{CustomerID: customerID, ProductID: "p1", Quantity: 2, CondimentIDs: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, 3, merged.Quantity)

	_, err = repo.AddCartItem(ctx, &models.CartItem{CustomerID: customerID, ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	items, err := repo.ListCartItems(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []string{"a", "b"}, items[0].CondimentIDs)

	require.NoError(t, repo.ClearCart(ctx, customerID))
	items, err = repo.ListCartItems(ctx, customerID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
