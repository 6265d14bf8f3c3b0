package handler

import (
	"context"
	"net/http"

	"github.com/rookgm/homechef/internal/models"
	"github.com/rookgm/homechef/internal/service"
)

type CartService interface {
	// AddItem adds line to the customer cart
	AddItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	// GetCart returns priced customer cart
	GetCart(ctx context.Context, customerID uint64) (*service.Quote, error)
	// Quote prices arbitrary lines
	Quote(ctx context.Context, lines []service.QuoteLine) (*service.Quote, error)
}

// CartHandler represents HTTP handler for cart and pricing requests
type CartHandler struct {
	svc CartService
}

// NewCartHandler creates new CartHandler instance
func NewCartHandler(svc CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

type cartItemRequest struct {
	ProductID    string   `json:"product_id" validate:"required"`
	Quantity     int      `json:"quantity"`
	CondimentIDs []string `json:"condiment_ids" validate:"dive,required"`
}

type cartItemResponse struct {
	ID           uint64   `json:"id"`
	ProductID    string   `json:"product_id"`
	Quantity     int      `json:"quantity"`
	CondimentIDs []string `json:"condiment_ids"`
	AddedAt      string   `json:"added_at"`
}

type priceQuoteRequest struct {
	Items []cartItemRequest `json:"items" validate:"required,min=1,dive"`
}

// GetCart returns cart lines with totals
// 200 — успешная обработка запроса;
// 401 — пользователь не авторизован;
// 500 — внутренняя ошибка сервера.
func (ch *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		quote, err := ch.svc.GetCart(r.Context(), payload.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newQuoteResponse(quote))
	}
}

// AddCartItem adds product to the cart
// 201 — товар добавлен;
// 400 — неверный формат запроса;
// 422 — товар недоступен или добавка не найдена.
func (ch *CartHandler) AddCartItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req cartItemRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, err)
			return
		}

		item, err := ch.svc.AddItem(r.Context(), &models.CartItem{
			CustomerID:   payload.UserID,
			ProductID:    req.ProductID,
			Quantity:     req.Quantity,
			CondimentIDs: req.CondimentIDs,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, cartItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			CondimentIDs: item.CondimentIDs,
			AddedAt:      timestamp(item.AddedAt),
		})
	}
}

// PriceQuote prices lines without touching the cart
func (ch *CartHandler) PriceQuote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req priceQuoteRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, err)
			return
		}

		lines := make([]service.QuoteLine, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, service.QuoteLine{
				ProductID:    item.ProductID,
				Quantity:     item.Quantity,
				CondimentIDs: item.CondimentIDs,
			})
		}

		quote, err := ch.svc.Quote(r.Context(), lines)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newQuoteResponse(quote))
	}
}
