package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rookgm/homechef/internal/events"
	"github.com/rookgm/homechef/internal/logger"
	"github.com/rookgm/homechef/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Action requested by a caller on an order
type Action int

const (
	ActionCancel Action = iota
	ActionDelete
)

func (a Action) String() string {
	if a == ActionDelete {
		return "delete"
	}
	return "cancel"
}

// Effect decided by the cancellation policy
type Effect int

const (
	EffectCancel Effect = iota
	EffectSoftDelete
)

// DecideCancellation returns what the action does to the order.
// Delete requests and orders already delivered or cancelled are soft-deleted.
// The deleted flag hides the order from the customer listing whoever sets it.
// A genuine cancellation is only possible while the order is pending.
func DecideCancellation(order *models.Order, caller models.TokenPayload, action Action) (Effect, error) {
	if !canAccess(order, caller) {
		return 0, models.ErrForbidden
	}
	if action == ActionDelete || order.Status.Terminal() {
		return EffectSoftDelete, nil
	}
	if order.Status != models.StatusPending {
		return 0, models.ErrOrderAlreadyProcessing
	}
	return EffectCancel, nil
}

// CancelOrder cancels a pending order or soft-deletes a finished one
func (os *OrderService) CancelOrder(ctx context.Context, caller models.TokenPayload, id uuid.UUID) (*models.Order, error) {
	return os.cancelOrDelete(ctx, caller, id, ActionCancel)
}

// DeleteOrder soft-deletes order
func (os *OrderService) DeleteOrder(ctx context.Context, caller models.TokenPayload, id uuid.UUID) (*models.Order, error) {
	return os.cancelOrDelete(ctx, caller, id, ActionDelete)
}

func (os *OrderService) cancelOrDelete(ctx context.Context, caller models.TokenPayload, id uuid.UUID, action Action) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService."+action.String())
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id.String()))

	var cancelled bool

	order, err := os.mutate(ctx, id, func(order *models.Order) error {
		cancelled = false
		effect, err := DecideCancellation(order, caller, action)
		if err != nil {
			return err
		}

		now := os.now()
		switch effect {
		case EffectCancel:
			order.CascadeStatus(models.StatusCancelled, now)
			cancelled = true
		case EffectSoftDelete:
			if order.Deleted {
				return errUnchanged
			}
			order.Deleted = true
			order.DeletedAt = &now
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if cancelled {
		logger.Log.Info("order cancelled",
			zap.String("order", id.String()),
			zap.Uint64("by", caller.UserID))

		os.publish(ctx, events.Event{
			Type:       events.TypeOrderCancelled,
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			ChefIDs:    order.ChefIDs(),
			Status:     order.Status,
			OccurredAt: os.now(),
		})
	}

	return order, nil
}

// HardDeleteOrder removes a finished order permanently, admin only
func (os *OrderService) HardDeleteOrder(ctx context.Context, caller models.TokenPayload, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "OrderService.HardDelete")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id.String()))

	if !caller.IsAdmin() {
		return models.ErrForbidden
	}

	order, err := os.repo.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.Status.Terminal() {
		return models.ErrOrderActive
	}

	if err := os.repo.DeleteOrder(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	os.invalidate(ctx, id)

	logger.Log.Info("order removed", zap.String("order", id.String()), zap.Uint64("by", caller.UserID))

	return nil
}
