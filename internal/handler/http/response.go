package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rookgm/homechef/internal/logger"
	"github.com/rookgm/homechef/internal/models"
	"github.com/rookgm/homechef/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var validate = validator.New()

// decodeRequest decodes JSON body into v and validates it
func decodeRequest(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.ErrValidation
	}
	if err := validate.Struct(v); err != nil {
		return models.ErrValidation
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("encode response", zap.Error(err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors to HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	var tooMany models.TooManyRequestsError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidStatus):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrDataNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrConflictData),
		errors.Is(err, models.ErrAlreadyReviewed),
		errors.Is(err, models.ErrOrderAlreadyProcessing),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrOrderActive):
		status = http.StatusConflict
	case errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrProductUnavailable),
		errors.Is(err, models.ErrUnknownCondiment),
		errors.Is(err, models.ErrNotDelivered),
		errors.Is(err, models.ErrNotInOrder):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &tooMany):
		w.Header().Set("Retry-After", strconv.Itoa(int(tooMany.RetryAfter.Seconds())))
		status = http.StatusTooManyRequests
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Log.Error("internal error", zap.Error(err))
		msg = "internal error"
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

type condimentResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type orderItemResponse struct {
	ProductID  string              `json:"product_id"`
	ChefID     uint64              `json:"chef_id"`
	Name       string              `json:"name"`
	Quantity   int                 `json:"quantity"`
	UnitPrice  string              `json:"unit_price"`
	Condiments []condimentResponse `json:"condiments"`
	Subtotal   string              `json:"subtotal"`
}

type statusEntryResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type subOrderResponse struct {
	ChefID        uint64                `json:"chef_id"`
	Status        string                `json:"status"`
	StatusHistory []statusEntryResponse `json:"status_history"`
	Items         []orderItemResponse   `json:"items"`
}

type reviewedItemResponse struct {
	ProductID  string `json:"product_id"`
	ReviewID   string `json:"review_id"`
	ReviewedAt string `json:"reviewed_at"`
}

type orderResponse struct {
	ID              string                 `json:"id"`
	CustomerID      uint64                 `json:"customer_id"`
	Status          string                 `json:"status"`
	StatusHistory   []statusEntryResponse  `json:"status_history"`
	Items           []orderItemResponse    `json:"items"`
	ChefSubOrders   []subOrderResponse     `json:"chef_sub_orders"`
	Subtotal        string                 `json:"subtotal"`
	ServiceFee      string                 `json:"service_fee"`
	TotalAmount     string                 `json:"total_amount"`
	DeliveryAddress string                 `json:"delivery_address"`
	DeliveryDate    string                 `json:"delivery_date,omitempty"`
	DeliveryTime    string                 `json:"delivery_time,omitempty"`
	DeliveryNotes   string                 `json:"delivery_notes,omitempty"`
	PaymentMethod   string                 `json:"payment_method"`
	PaymentStatus   string                 `json:"payment_status"`
	Deleted         bool                   `json:"deleted"`
	DeletedAt       string                 `json:"deleted_at,omitempty"`
	ReviewedItems   []reviewedItemResponse `json:"reviewed_items"`
	Version         int64                  `json:"version"`
	CreatedAt       string                 `json:"created_at"`
	UpdatedAt       string                 `json:"updated_at"`
}

func newHistoryResponse(history []models.StatusEntry) []statusEntryResponse {
	resp := make([]statusEntryResponse, 0, len(history))
	for _, e := range history {
		resp = append(resp, statusEntryResponse{Status: string(e.Status), Timestamp: timestamp(e.Timestamp)})
	}
	return resp
}

func newItemsResponse(items []models.OrderItem) []orderItemResponse {
	resp := make([]orderItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, orderItemResponse{
			ProductID:  item.ProductID,
			ChefID:     item.ChefID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  money(item.UnitPrice),
			Condiments: newCondimentsResponse(item.Condiments),
			Subtotal:   money(item.Subtotal),
		})
	}
	return resp
}

func newCondimentsResponse(condiments []models.Condiment) []condimentResponse {
	resp := make([]condimentResponse, 0, len(condiments))
	for _, c := range condiments {
		resp = append(resp, condimentResponse{ID: c.ID, Name: c.Name, Price: money(c.Price)})
	}
	return resp
}

func newOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:              order.ID.String(),
		CustomerID:      order.CustomerID,
		Status:          string(order.Status),
		StatusHistory:   newHistoryResponse(order.StatusHistory),
		Items:           newItemsResponse(order.Items),
		ChefSubOrders:   make([]subOrderResponse, 0, len(order.ChefSubOrders)),
		Subtotal:        money(order.Subtotal),
		ServiceFee:      money(order.ServiceFee),
		TotalAmount:     money(order.TotalAmount),
		DeliveryAddress: order.Delivery.Address,
		DeliveryDate:    order.Delivery.Date,
		DeliveryTime:    order.Delivery.Time,
		DeliveryNotes:   order.Delivery.Notes,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		Deleted:         order.Deleted,
		ReviewedItems:   make([]reviewedItemResponse, 0, len(order.ReviewedItems)),
		Version:         order.Version,
		CreatedAt:       timestamp(order.CreatedAt),
		UpdatedAt:       timestamp(order.UpdatedAt),
	}
	if order.DeletedAt != nil {
		resp.DeletedAt = timestamp(*order.DeletedAt)
	}
	for _, sub := range order.ChefSubOrders {
		resp.ChefSubOrders = append(resp.ChefSubOrders, subOrderResponse{
			ChefID:        sub.ChefID,
			Status:        string(sub.Status),
			StatusHistory: newHistoryResponse(sub.StatusHistory),
			Items:         newItemsResponse(sub.Items),
		})
	}
	for _, r := range order.ReviewedItems {
		resp.ReviewedItems = append(resp.ReviewedItems, newReviewedItemResponse(r))
	}
	return resp
}

func newReviewedItemResponse(r models.ReviewedItem) reviewedItemResponse {
	return reviewedItemResponse{ProductID: r.ProductID, ReviewID: r.ReviewID, ReviewedAt: timestamp(r.ReviewedAt)}
}

func newOrdersResponse(orders []models.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, newOrderResponse(&orders[i]))
	}
	return resp
}

type quoteLineResponse struct {
	ProductID  string              `json:"product_id"`
	ChefID     uint64              `json:"chef_id,omitempty"`
	Name       string              `json:"name,omitempty"`
	Quantity   int                 `json:"quantity"`
	ItemPrice  string              `json:"item_price"`
	Total      string              `json:"total"`
	Condiments []condimentResponse `json:"condiments"`
	Available  bool                `json:"available"`
}

type quoteResponse struct {
	Items      []quoteLineResponse `json:"items"`
	Subtotal   string              `json:"subtotal"`
	ServiceFee string              `json:"service_fee"`
	Total      string              `json:"total"`
}

func newQuoteResponse(quote *service.Quote) quoteResponse {
	resp := quoteResponse{
		Items:      make([]quoteLineResponse, 0, len(quote.Lines)),
		Subtotal:   money(quote.Summary.Subtotal),
		ServiceFee: money(quote.Summary.ServiceFee),
		Total:      money(quote.Summary.Total),
	}
	for _, l := range quote.Lines {
		resp.Items = append(resp.Items, quoteLineResponse{
			ProductID:  l.ProductID,
			ChefID:     l.ChefID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			ItemPrice:  money(l.ItemPrice),
			Total:      money(l.Total),
			Condiments: newCondimentsResponse(l.Condiments),
			Available:  l.Available,
		})
	}
	return resp
}
