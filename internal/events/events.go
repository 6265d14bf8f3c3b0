package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/rookgm/homechef/internal/models"
)

// event types
const (
	TypeOrderCreated         = "order.created"
	TypeOrderStatusChanged   = "order.status_changed"
	TypeOrderCancelled       = "order.cancelled"
	TypeChatChannelRequested = "chat.channel.requested"
)

// Event is a domain event published for notification and chat subsystems
type Event struct {
	Type       string             `json:"type"`
	OrderID    uuid.UUID          `json:"order_id"`
	CustomerID uint64             `json:"customer_id"`
	ChefID     uint64             `json:"chef_id,omitempty"`
	ChefIDs    []uint64           `json:"chef_ids,omitempty"`
	Status     models.OrderStatus `json:"status,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// ChannelRequest asks the messaging subsystem for a chat channel
type ChannelRequest struct {
	OrderID    uuid.UUID
	CustomerID uint64
	ChefID     uint64
}
