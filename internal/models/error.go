package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation    = errors.New("malformed request")
	ErrDataNotFound  = errors.New("data not found")
	ErrConflictData  = errors.New("data conflicts with existing data")
	ErrInternalError = errors.New("internal error")
	ErrUnauthorized  = errors.New("user is not authenticated")
	ErrForbidden     = errors.New("user is forbidden to access the resource")
	ErrInvalidToken  = errors.New("access token is invalid")

	// checkout and pricing
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product is unavailable")
	ErrUnknownCondiment   = errors.New("condiment does not belong to product")

	// lifecycle
	ErrOrderAlreadyProcessing = errors.New("order is already being processed")
	ErrInvalidTransition      = errors.New("status transition is not allowed")
	ErrInvalidStatus          = errors.New("unknown order status")
	ErrOrderActive            = errors.New("order is not delivered or cancelled")
	ErrConflict               = errors.New("order was modified concurrently")

	// reviews
	ErrAlreadyReviewed = errors.New("product already reviewed for this order")
	ErrNotDelivered    = errors.New("order is not delivered")
	ErrNotInOrder      = errors.New("product is not part of the order")
)

// TooManyRequestsError is returned by upstream clients when the remote side throttles us.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

// NewTooManyRequestsError creates TooManyRequestsError with retry delay
func NewTooManyRequestsError(retryAfter time.Duration) TooManyRequestsError {
	return TooManyRequestsError{RetryAfter: retryAfter}
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}
