package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rookgm/homechef/internal/models"
	"github.com/rookgm/homechef/internal/service"
)

type OrderService interface {
	// Checkout creates order from the customer cart
	Checkout(ctx context.Context, req service.CheckoutRequest) (*models.Order, error)
	// GetOrder returns order visible to caller
	GetOrder(ctx context.Context, caller models.TokenPayload, id uuid.UUID) (*models.Order, error)
	// ListCustomerOrders returns orders of customer
	ListCustomerOrders(ctx context.Context, customerID uint64) ([]models.Order, error)
	// ListChefOrders returns orders containing a sub-order of the chef
	ListChefOrders(ctx context.Context, chefID uint64) ([]models.Order, error)
	// ListAllOrders returns every order
	ListAllOrders(ctx context.Context, caller models.TokenPayload) ([]models.Order, error)
	// UpdateStatus changes order or sub-order status
	UpdateStatus(ctx context.Context, caller models.TokenPayload, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	// CancelOrder cancels order
	CancelOrder(ctx context.Context, caller models.TokenPayload, id uuid.UUID) (*models.Order, error)
	// DeleteOrder soft-deletes order
	DeleteOrder(ctx context.Context, caller models.TokenPayload, id uuid.UUID) (*models.Order, error)
	// HardDeleteOrder removes order permanently
	HardDeleteOrder(ctx context.Context, caller models.TokenPayload, id uuid.UUID) error
	// CanReview checks whether caller may review the product
	CanReview(ctx context.Context, caller models.TokenPayload, id uuid.UUID, productID string) error
	// SubmitReview creates product review
	SubmitReview(ctx context.Context, caller models.TokenPayload, review models.Review) (*models.ReviewedItem, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	DeliveryAddress string `json:"delivery_address" validate:"required,max=500"`
	DeliveryDate    string `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	DeliveryTime    string `json:"delivery_time" validate:"omitempty,datetime=15:04"`
	DeliveryNotes   string `json:"delivery_notes" validate:"max=1000"`
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=card cash"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type canReviewResponse struct {
	CanReview bool   `json:"can_review"`
	Reason    string `json:"reason,omitempty"`
}

// review ineligibility reasons
const (
	reasonNotDelivered    = "NotDelivered"
	reasonNotInOrder      = "NotInOrder"
	reasonAlreadyReviewed = "AlreadyReviewed"
)

// reviewReason returns the stable reason code of a review ineligibility error
func reviewReason(err error) (string, bool) {
	switch {
	case errors.Is(err, models.ErrNotDelivered):
		return reasonNotDelivered, true
	case errors.Is(err, models.ErrNotInOrder):
		return reasonNotInOrder, true
	case errors.Is(err, models.ErrAlreadyReviewed):
		return reasonAlreadyReviewed, true
	}
	return "", false
}

// orderID parses order id path parameter
func orderID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, models.ErrValidation
	}
	return id, nil
}

// CreateOrder creates order from the customer cart
// 201 — заказ создан;
// 400 — неверный формат запроса;
// 401 — пользователь не аутентифицирован;
// 422 — корзина пуста или товары недоступны;
// 500 — внутренняя ошибка сервера.
func (oh *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createOrderRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, err)
			return
		}

		order, err := oh.svc.Checkout(r.Context(), service.CheckoutRequest{
			CustomerID: payload.UserID,
			Delivery: models.Delivery{
				Address: req.DeliveryAddress,
				Date:    req.DeliveryDate,
				Time:    req.DeliveryTime,
				Notes:   req.DeliveryNotes,
			},
			PaymentMethod: req.PaymentMethod,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newOrderResponse(order))
	}
}

// ListUserOrders returns orders of the caller
// 200 — успешная обработка запроса;
// 401 — пользователь не авторизован;
// 500 — внутренняя ошибка сервера.
func (oh *OrderHandler) ListUserOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := oh.svc.ListCustomerOrders(r.Context(), payload.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newOrdersResponse(orders))
	}
}

// ListChefOrders returns orders with a sub-order of the calling seller
func (oh *OrderHandler) ListChefOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if payload.Role != models.RoleSeller {
			writeError(w, models.ErrForbidden)
			return
		}

		orders, err := oh.svc.ListChefOrders(r.Context(), payload.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newOrdersResponse(orders))
	}
}

func (oh *OrderHandler) ListAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := oh.svc.ListAllOrders(r.Context(), *payload)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newOrdersResponse(orders))
	}
}

// GetOrder returns order by id
// 200 — успешная обработка запроса;
// 403 — заказ недоступен пользователю;
// 404 — заказ не найден.
func (oh *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := orderID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		order, err := oh.svc.GetOrder(r.Context(), *payload, id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

// UpdateOrderStatus changes order status. Sellers change their own sub-order,
// admins change the whole order.
// 200 — статус изменен;
// 400 — неизвестный статус;
// 403 — нет прав на изменение;
// 404 — заказ не найден;
// 409 — переход статуса невозможен или заказ изменен параллельно.
func (oh *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := orderID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		var req updateStatusRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, err)
			return
		}

		order, err := oh.svc.UpdateStatus(r.Context(), *payload, id, models.OrderStatus(req.Status))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

// CancelOrder cancels pending order, finished orders are hidden instead
// 200 — заказ отменен или скрыт;
// 403 — нет прав;
// 409 — заказ уже в обработке.
func (oh *OrderHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := orderID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		order, err := oh.svc.CancelOrder(r.Context(), *payload, id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

// DeleteOrder hides order from the customer listing
func (oh *OrderHandler) DeleteOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := orderID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		order, err := oh.svc.DeleteOrder(r.Context(), *payload, id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

// HardDeleteOrder removes finished order
// 204 — заказ удален;
// 403 — только для администратора;
// 409 — заказ еще активен.
func (oh *OrderHandler) HardDeleteOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := orderID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		if err := oh.svc.HardDeleteOrder(r.Context(), *payload, id); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// CanReviewProduct reports whether the caller may review the ordered product
func (oh *OrderHandler) CanReviewProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := orderID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		err = oh.svc.CanReview(r.Context(), *payload, id, chi.URLParam(r, "productID"))
		if err == nil {
			writeJSON(w, http.StatusOK, canReviewResponse{CanReview: true})
			return
		}
		if reason, ok := reviewReason(err); ok {
			writeJSON(w, http.StatusOK, canReviewResponse{CanReview: false, Reason: reason})
			return
		}
		writeError(w, err)
	}
}

// SubmitReview reviews the ordered product
// 201 — отзыв создан;
// 400 — неверный формат запроса;
// 409 — товар уже оценен;
// 422 — заказ не доставлен или товара нет в заказе.
func (oh *OrderHandler) SubmitReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := orderID(r)
		if err != nil {
			writeError(w, err)
			return
		}

		var req reviewRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, err)
			return
		}

		reviewed, err := oh.svc.SubmitReview(r.Context(), *payload, models.Review{
			OrderID:   id,
			ProductID: chi.URLParam(r, "productID"),
			Rating:    req.Rating,
			Comment:   req.Comment,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newReviewedItemResponse(*reviewed))
	}
}
