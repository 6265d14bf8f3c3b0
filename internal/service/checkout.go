package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rookgm/homechef/internal/events"
	"github.com/rookgm/homechef/internal/logger"
	"github.com/rookgm/homechef/internal/models"
	"github.com/rookgm/homechef/internal/pricing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// CheckoutRequest holds checkout input besides the cart itself
type CheckoutRequest struct {
	CustomerID    uint64
	Delivery      models.Delivery
	PaymentMethod string
}

// Checkout turns the customer cart into an order split into per-chef sub-orders
func (os *OrderService) Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.Checkout")
	defer span.End()

	order, err := os.checkout(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.Int("order.chefs", len(order.ChefSubOrders)),
	)

	return order, nil
}

func (os *OrderService) checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	cart, err := os.carts.ListCartItems(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, models.ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(cart))
	for _, line := range cart {
		priced, err := priceLine(ctx, os.catalog, QuoteLine{
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			CondimentIDs: line.CondimentIDs,
		})
		if err != nil {
			if errors.Is(err, models.ErrProductUnavailable) {
				logger.Log.Info("skip unavailable product",
					zap.Uint64("customer", req.CustomerID),
					zap.String("product", line.ProductID))
				continue
			}
			return nil, err
		}
		items = append(items, models.OrderItem{
			ProductID:  priced.ProductID,
			ChefID:     priced.ChefID,
			Name:       priced.Name,
			Quantity:   priced.Quantity,
			UnitPrice:  priced.ItemPrice,
			Condiments: priced.Condiments,
			Subtotal:   priced.Total,
		})
	}
	if len(items) == 0 {
		return nil, models.ErrProductUnavailable
	}

	now := os.now()
	summary := pricing.SummarizeItems(items)

	order := &models.Order{
		ID:            uuid.New(),
		CustomerID:    req.CustomerID,
		Items:         items,
		ChefSubOrders: splitByChef(items, now),
		Subtotal:      summary.Subtotal,
		ServiceFee:    summary.ServiceFee,
		TotalAmount:   summary.Total,
		Delivery:      req.Delivery,
		PaymentMethod: req.PaymentMethod,
		// payment capture is not performed
		PaymentStatus: models.PaymentStatusPaid,
		Status:        models.StatusPending,
		StatusHistory: []models.StatusEntry{{Status: models.StatusPending, Timestamp: now}},
		ReviewedItems: []models.ReviewedItem{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := os.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	if err := os.carts.ClearCart(ctx, req.CustomerID); err != nil {
		logger.Log.Error("clear cart after checkout",
			zap.Uint64("customer", req.CustomerID),
			zap.String("order", order.ID.String()),
			zap.Error(err))
	}

	os.publish(ctx, events.Event{
		Type:       events.TypeOrderCreated,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		ChefIDs:    order.ChefIDs(),
		Status:     order.Status,
		OccurredAt: now,
	})

	for _, chefID := range order.ChefIDs() {
		os.channels.Enqueue(events.ChannelRequest{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			ChefID:     chefID,
		})
	}

	logger.Log.Info("order created",
		zap.String("order", order.ID.String()),
		zap.Uint64("customer", order.CustomerID),
		zap.Int("chefs", len(order.ChefSubOrders)),
		zap.String("total", order.TotalAmount.StringFixed(2)))

	return order, nil
}

// splitByChef groups items into sub-orders in order of first appearance
func splitByChef(items []models.OrderItem, now time.Time) []models.ChefSubOrder {
	subs := []models.ChefSubOrder{}
	index := map[uint64]int{}

	for _, item := range items {
		i, ok := index[item.ChefID]
		if !ok {
			i = len(subs)
			index[item.ChefID] = i
			subs = append(subs, models.ChefSubOrder{
				ChefID:        item.ChefID,
				Status:        models.StatusPending,
				StatusHistory: []models.StatusEntry{{Status: models.StatusPending, Timestamp: now}},
			})
		}
		subs[i].Items = append(subs[i].Items, item)
	}

	return subs
}
