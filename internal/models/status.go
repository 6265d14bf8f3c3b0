package models

import "time"

// OrderStatus is the lifecycle value shared by orders and chef sub-orders.
type OrderStatus string

// order status
const (
	StatusPending    OrderStatus = "pending"
	StatusReceived   OrderStatus = "received"
	StatusInProgress OrderStatus = "in_progress"
	StatusReady      OrderStatus = "ready"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// progress rank of every non-cancelled status
var statusRank = map[OrderStatus]int{
	StatusPending:    0,
	StatusReceived:   1,
	StatusInProgress: 2,
	StatusReady:      3,
	StatusDelivered:  4,
}

// Valid reports whether s is one of the six lifecycle values.
func (s OrderStatus) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether the status may move from s to next.
// Progress is forward-only (skipping steps is allowed), cancelled is reachable
// from every non-terminal status, and delivered/cancelled are absorbing.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

// StatusEntry is one record of a status history.
type StatusEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// Aggregate derives the customer-facing order status from the current overall
// status and the statuses of all chef sub-orders. Rules are evaluated in fixed priority.
func Aggregate(current OrderStatus, subs []OrderStatus) OrderStatus {
	if current == StatusCancelled {
		return current
	}
	if len(subs) == 0 {
		return current
	}

	allDelivered, allReadyOrDelivered, anyStarted, nonePending := true, true, false, true
	for _, s := range subs {
		if s != StatusDelivered {
			allDelivered = false
		}
		if s != StatusReady && s != StatusDelivered {
			allReadyOrDelivered = false
		}
		if s == StatusInProgress || s == StatusReady || s == StatusDelivered {
			anyStarted = true
		}
		if s == StatusPending {
			nonePending = false
		}
	}

	switch {
	case allDelivered:
		return StatusDelivered
	case allReadyOrDelivered:
		return StatusReady
	case anyStarted:
		return StatusInProgress
	case nonePending:
		return StatusReceived
	default:
		return StatusPending
	}
}
