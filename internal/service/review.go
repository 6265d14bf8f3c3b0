package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rookgm/homechef/internal/logger"
	"github.com/rookgm/homechef/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ReviewEligibility returns nil when caller may review the product of the order,
// otherwise the reason why not
func ReviewEligibility(order *models.Order, productID string, caller models.TokenPayload) error {
	switch {
	case !isOwner(order, caller):
		return models.ErrForbidden
	case order.Status != models.StatusDelivered:
		return models.ErrNotDelivered
	case !order.ContainsProduct(productID):
		return models.ErrNotInOrder
	case order.Reviewed(productID):
		return models.ErrAlreadyReviewed
	}
	return nil
}

// CanReview checks review eligibility against the current order state
func (os *OrderService) CanReview(ctx context.Context, caller models.TokenPayload, id uuid.UUID, productID string) error {
	order, err := os.repo.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}
	return ReviewEligibility(order, productID, caller)
}

// SubmitReview creates the review and records the product as reviewed in the order
func (os *OrderService) SubmitReview(ctx context.Context, caller models.TokenPayload, review models.Review) (*models.ReviewedItem, error) {
	ctx, span := tracer.Start(ctx, "OrderService.SubmitReview")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", review.OrderID.String()),
		attribute.String("product.id", review.ProductID),
	)

	if review.Rating < 1 || review.Rating > 5 {
		return nil, models.ErrValidation
	}

	if err := os.CanReview(ctx, caller, review.OrderID, review.ProductID); err != nil {
		return nil, err
	}

	review.CustomerID = caller.UserID
	reviewID, err := os.reviews.CreateReview(ctx, review)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var recorded models.ReviewedItem
	_, err = os.mutate(ctx, review.OrderID, func(order *models.Order) error {
		if err := ReviewEligibility(order, review.ProductID, caller); err != nil {
			return err
		}
		recorded = models.ReviewedItem{
			ProductID:  review.ProductID,
			ReviewID:   reviewID,
			ReviewedAt: os.now(),
		}
		order.ReviewedItems = append(order.ReviewedItems, recorded)
		return nil
	})
	if err != nil {
		// the review itself stays in place
		logger.Log.Error("record reviewed item",
			zap.String("order", review.OrderID.String()),
			zap.String("product", review.ProductID),
			zap.String("review", reviewID),
			zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &recorded, nil
}
