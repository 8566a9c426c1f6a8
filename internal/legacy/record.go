// Package legacy mirrors purchases into the document store read by the previous
// version of the storefront.
package legacy

import (
	"context"

	"github.com/shopspring/decimal"
)

// Record is the denormalized purchase document. Amount is in major currency units.
type Record struct {
	UID         string
	CourseID    string
	BundleID    string
	Amount      decimal.Decimal
	PaymentType string
	Coupon      string
}

// Store persists purchase records for the legacy storefront.
type Store interface {
	RecordPurchase(ctx context.Context, rec Record) error
}

// AmountFromMinor converts an amount in minor units (cents) to major units with two decimals.
func AmountFromMinor(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-2).Round(2)
}
