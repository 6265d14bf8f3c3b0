package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// payment status
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Condiment is a priced add-on snapshot copied from the catalog
type Condiment struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OrderItem is an immutable line of an order
type OrderItem struct {
	ProductID  string          `json:"product_id"`
	ChefID     uint64          `json:"chef_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Condiments []Condiment     `json:"condiments"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// ChefSubOrder is the part of an order fulfilled by one chef
type ChefSubOrder struct {
	ChefID        uint64        `json:"chef_id"`
	Items         []OrderItem   `json:"items"`
	Status        OrderStatus   `json:"status"`
	StatusHistory []StatusEntry `json:"status_history"`
}

// ReviewedItem records that a product of the order has been reviewed
type ReviewedItem struct {
	ProductID  string    `json:"product_id"`
	ReviewID   string    `json:"review_id"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// Delivery holds delivery metadata captured at checkout
type Delivery struct {
	Address string `json:"address"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Notes   string `json:"notes"`
}

// Order is the multi-chef order aggregate. It is persisted as one document.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	CustomerID    uint64          `json:"customer_id"`
	Items         []OrderItem     `json:"items"`
	ChefSubOrders []ChefSubOrder  `json:"chef_sub_orders"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ServiceFee    decimal.Decimal `json:"service_fee"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Delivery      Delivery        `json:"delivery"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	Status        OrderStatus     `json:"status"`
	StatusHistory []StatusEntry   `json:"status_history"`
	Deleted       bool            `json:"deleted"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty"`
	ReviewedItems []ReviewedItem  `json:"reviewed_items"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ChefIDs returns ids of all chefs participating in the order
func (o *Order) ChefIDs() []uint64 {
	ids := make([]uint64, 0, len(o.ChefSubOrders))
	for _, sub := range o.ChefSubOrders {
		ids = append(ids, sub.ChefID)
	}
	return ids
}

// SubOrder returns the sub-order of the chef or nil
func (o *Order) SubOrder(chefID uint64) *ChefSubOrder {
	for i := range o.ChefSubOrders {
		if o.ChefSubOrders[i].ChefID == chefID {
			return &o.ChefSubOrders[i]
		}
	}
	return nil
}

// HasChef reports whether the chef has items in the order
func (o *Order) HasChef(chefID uint64) bool {
	return o.SubOrder(chefID) != nil
}

// ContainsProduct reports whether product is one of the order items
func (o *Order) ContainsProduct(productID string) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Reviewed reports whether product has already been reviewed
func (o *Order) Reviewed(productID string) bool {
	for _, r := range o.ReviewedItems {
		if r.ProductID == productID {
			return true
		}
	}
	return false
}

// SubStatuses returns statuses of all sub-orders
func (o *Order) SubStatuses() []OrderStatus {
	statuses := make([]OrderStatus, 0, len(o.ChefSubOrders))
	for _, sub := range o.ChefSubOrders {
		statuses = append(statuses, sub.Status)
	}
	return statuses
}

// SetStatus moves the overall status and appends a history entry.
// It returns false when the status is unchanged.
func (o *Order) SetStatus(status OrderStatus, now time.Time) bool {
	if o.Status == status {
		return false
	}
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, StatusEntry{Status: status, Timestamp: now})
	return true
}

// SetStatus moves the sub-order status and appends a history entry
func (s *ChefSubOrder) SetStatus(status OrderStatus, now time.Time) {
	s.Status = status
	s.StatusHistory = append(s.StatusHistory, StatusEntry{Status: status, Timestamp: now})
}

// Reaggregate recomputes the overall status from sub-orders.
// It returns true when the overall status changed.
func (o *Order) Reaggregate(now time.Time) bool {
	return o.SetStatus(Aggregate(o.Status, o.SubStatuses()), now)
}

// CascadeStatus sets status on the order and every sub-order
func (o *Order) CascadeStatus(status OrderStatus, now time.Time) {
	o.SetStatus(status, now)
	for i := range o.ChefSubOrders {
		o.ChefSubOrders[i].SetStatus(status, now)
	}
}

// Review is a customer review of one ordered product
type Review struct {
	OrderID    uuid.UUID
	ProductID  string
	CustomerID uint64
	Rating     int
	Comment    string
}

// OrderFilter narrows order listings
type OrderFilter struct {
	CustomerID     *uint64
	ChefID         *uint64
	IncludeDeleted bool
}
