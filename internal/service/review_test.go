package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/rookgm/homechef/internal/models"
	"github.com/rookgm/homechef/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewEligibility(t *testing.T) {
	delivered := func() *models.Order { return withStatus(newOrder(1, 10), models.StatusDelivered) }
	reviewed := delivered()
	reviewed.ReviewedItems = append(reviewed.ReviewedItems, models.ReviewedItem{ProductID: productID(10), ReviewID: "r1"})

	tests := []struct {
		name      string
		order     *models.Order
		productID string
		caller    models.TokenPayload
		wantErr   error
	}{
		{name: "eligible", order: delivered(), productID: productID(10), caller: customer},
		{name: "not_owner", order: delivered(), productID: productID(10), caller: stranger, wantErr: models.ErrForbidden},
		{name: "chef_is_not_owner", order: delivered(), productID: productID(10), caller: chefA, wantErr: models.ErrForbidden},
		{name: "not_delivered", order: withStatus(newOrder(1, 10), models.StatusReady), productID: productID(10), caller: customer, wantErr: models.ErrNotDelivered},
		{name: "not_in_order", order: delivered(), productID: "other", caller: customer, wantErr: models.ErrNotInOrder},
		{name: "already_reviewed", order: reviewed, productID: productID(10), caller: customer, wantErr: models.ErrAlreadyReviewed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ReviewEligibility(tt.order, tt.productID, tt.caller)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOrderService_SubmitReview(t *testing.T) {
	order := withStatus(newOrder(1, 10, 20), models.StatusDelivered)
	repo := newMemOrderRepo(t, order)
	svc, d := newTestService(t, repo, nil)

	d.reviews.EXPECT().CreateReview(gomock.Any(), models.Review{
		OrderID:    order.ID,
		ProductID:  productID(10),
		CustomerID: 1,
		Rating:     5,
		Comment:    "great",
	}).Return("r-1", nil).Times(1)

	review := models.Review{OrderID: order.ID, ProductID: productID(10), Rating: 5, Comment: "great"}

	got, err := svc.SubmitReview(context.Background(), customer, review)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewedItem{ProductID: productID(10), ReviewID: "r-1", ReviewedAt: testNow}, *got)

	err = svc.CanReview(context.Background(), customer, order.ID, productID(10))
	assert.ErrorIs(t, err, models.ErrAlreadyReviewed)

	_, err = svc.SubmitReview(context.Background(), customer, review)
	assert.ErrorIs(t, err, models.ErrAlreadyReviewed)

	// the other product is still open
	assert.NoError(t, svc.CanReview(context.Background(), customer, order.ID, productID(20)))
}

func TestOrderService_SubmitReview_InvalidRating(t *testing.T) {
	order := withStatus(newOrder(1, 10), models.StatusDelivered)
	repo := newMemOrderRepo(t, order)
	svc, _ := newTestService(t, repo, nil)

	for _, rating := range []int{0, 6} {
		_, err := svc.SubmitReview(context.Background(), customer, models.Review{OrderID: order.ID, ProductID: productID(10), Rating: rating})
		assert.ErrorIs(t, err, models.ErrValidation)
	}
}

func TestOrderService_SubmitReview_RecordFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	order := withStatus(newOrder(1, 10), models.StatusDelivered)
	repo := mocks.NewMockOrderRepository(ctrl)
	repo.EXPECT().GetOrderByID(gomock.Any(), order.ID).DoAndReturn(
		func(context.Context, uuid.UUID) (*models.Order, error) {
			cp := *order
			return &cp, nil
		}).Times(2)
	repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any(), int64(0)).Return(errors.New("connection reset"))

	svc, d := newTestService(t, repo, nil)
	d.reviews.EXPECT().CreateReview(gomock.Any(), gomock.Any()).Return("r-1", nil).Times(1)

	_, err := svc.SubmitReview(context.Background(), customer, models.Review{OrderID: order.ID, ProductID: productID(10), Rating: 4})
	assert.EqualError(t, err, "connection reset")
}

func TestOrderService_SubmitReview_CollaboratorError(t *testing.T) {
	order := withStatus(newOrder(1, 10), models.StatusDelivered)
	repo := newMemOrderRepo(t, order)
	svc, d := newTestService(t, repo, nil)
	d.reviews.EXPECT().CreateReview(gomock.Any(), gomock.Any()).Return("", models.ErrInternalError)

	_, err := svc.SubmitReview(context.Background(), customer, models.Review{OrderID: order.ID, ProductID: productID(10), Rating: 4})
	assert.ErrorIs(t, err, models.ErrInternalError)
	assert.Equal(t, 0, repo.updateCount())
}
