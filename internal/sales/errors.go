package sales

import (
	"errors"
	"fmt"
)

// ErrInvalidSignature is returned when a webhook payload fails signature verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ErrInvalidCheckout is returned when an authentic checkout event lacks the fields needed to record a sale.
var ErrInvalidCheckout = errors.New("invalid checkout session")

// ErrAlreadyProcessed is returned when the provider redelivers an event that was already fulfilled.
var ErrAlreadyProcessed = errors.New("event already processed")

// PersistenceError reports a failed write to the primary store. Nothing after it runs.
type PersistenceError struct {
	EventID string
	Op      string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s for event %s: %v", e.Op, e.EventID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// PartialAttributionError reports a Sale that was recorded without its PartnerSale.
type PartialAttributionError struct {
	SaleID    string
	PartnerID string
	Err       error
}

func (e *PartialAttributionError) Error() string {
	return fmt.Sprintf("sale %s recorded without partner %s: %v", e.SaleID, e.PartnerID, e.Err)
}

func (e *PartialAttributionError) Unwrap() error { return e.Err }
