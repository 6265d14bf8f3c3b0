package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rookgm/homechef/internal/events"
	"github.com/rookgm/homechef/internal/logger"
	"github.com/rookgm/homechef/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// UpdateStatus changes order status on behalf of caller.
// A seller moves only the own sub-order forward and the overall status is re-aggregated.
// An admin sets the overall status and cascades it to every sub-order.
func (os *OrderService) UpdateStatus(ctx context.Context, caller models.TokenPayload, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.UpdateStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", id.String()),
		attribute.String("order.status", string(status)),
	)

	if !status.Valid() {
		return nil, models.ErrInvalidStatus
	}

	var (
		previous models.OrderStatus
		changed  bool
	)

	order, err := os.mutate(ctx, id, func(order *models.Order) error {
		previous, changed = order.Status, false
		if err := applyStatus(order, caller, status, os.now()); err != nil {
			return err
		}
		changed = order.Status != previous
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if changed {
		logger.Log.Info("order status changed",
			zap.String("order", id.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(order.Status)))

		os.publish(ctx, events.Event{
			Type:       events.TypeOrderStatusChanged,
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			ChefIDs:    order.ChefIDs(),
			Status:     order.Status,
			OccurredAt: os.now(),
		})
	}

	return order, nil
}

// applyStatus mutates order in memory. It returns errUnchanged when the requested
// status is already set.
func applyStatus(order *models.Order, caller models.TokenPayload, status models.OrderStatus, now time.Time) error {
	switch {
	case caller.IsAdmin():
		if order.Status == status {
			return errUnchanged
		}
		if !order.Status.CanTransition(status) {
			return models.ErrInvalidTransition
		}
		order.CascadeStatus(status, now)
	case isOrderChef(order, caller):
		// cancellation goes through the cancellation policy or the admin cascade
		if status == models.StatusCancelled {
			return models.ErrInvalidTransition
		}
		sub := order.SubOrder(caller.UserID)
		if sub.Status == status {
			return errUnchanged
		}
		if !sub.Status.CanTransition(status) {
			return models.ErrInvalidTransition
		}
		sub.SetStatus(status, now)
		order.Reaggregate(now)
	default:
		return models.ErrForbidden
	}

	return nil
}
