package sales

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
)

// SignatureHeader carries the provider's signature of the raw request body.
const SignatureHeader = "Stripe-Signature"

// Checkout session metadata keys set by the storefront when the session is created.
const (
	metadataCourseID  = "courseId"
	metadataBundleID  = "bundleId"
	metadataCoupon    = "coupon"
	metadataPartnerID = "partnerId"
)

var errSecretRequired = errors.New("stripe webhook secret is required")

// sessionAmounts tells an absent amount apart from a zero one, which the
// stripe types cannot: fully discounted checkouts total 0.
type sessionAmounts struct {
	AmountTotal *int64 `json:"amount_total"`
	LineItems   *struct {
		Data []struct {
			AmountTotal *int64 `json:"amount_total"`
		} `json:"data"`
	} `json:"line_items"`
}

func (a sessionAmounts) price() (int64, bool) {
	if a.LineItems != nil && len(a.LineItems.Data) > 0 && a.LineItems.Data[0].AmountTotal != nil {
		return *a.LineItems.Data[0].AmountTotal, true
	}
	if a.AmountTotal != nil {
		return *a.AmountTotal, true
	}
	return 0, false
}

// Verifier authenticates webhook payloads against the endpoint's signing secret.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errSecretRequired
	}
	return &Verifier{secret: secret}, nil
}

// Verify checks the signature of the exact request bytes and parses the event.
// Every failure, a missing signature included, wraps ErrInvalidSignature.
func (v *Verifier) Verify(payload []byte, signature string) (stripe.Event, error) {
	if strings.TrimSpace(signature) == "" {
		return stripe.Event{}, fmt.Errorf("%w: %s header missing", ErrInvalidSignature, SignatureHeader)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

// ParseCheckout reads the purchase out of a checkout.session.completed event.
// The price is the first line item's total; payloads without expanded line items
// fall back to the session total. A zero price is a valid, fully discounted purchase.
func ParseCheckout(event stripe.Event) (Checkout, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return Checkout{}, fmt.Errorf("%w: event %s has no data", ErrInvalidCheckout, event.ID)
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return Checkout{}, fmt.Errorf("%w: %v", ErrInvalidCheckout, err)
	}
	var amounts sessionAmounts
	if err := json.Unmarshal(event.Data.Raw, &amounts); err != nil {
		return Checkout{}, fmt.Errorf("%w: %v", ErrInvalidCheckout, err)
	}
	price, ok := amounts.price()

	checkout := Checkout{
		EventID:   event.ID,
		UserID:    sess.ClientReferenceID,
		CourseID:  sess.Metadata[metadataCourseID],
		BundleID:  sess.Metadata[metadataBundleID],
		Coupon:    sess.Metadata[metadataCoupon],
		PartnerID: sess.Metadata[metadataPartnerID],
		Price:     price,
	}

	switch {
	case checkout.UserID == "":
		return Checkout{}, fmt.Errorf("%w: client_reference_id missing", ErrInvalidCheckout)
	case checkout.CourseID == "":
		return Checkout{}, fmt.Errorf("%w: %s metadata missing", ErrInvalidCheckout, metadataCourseID)
	case !ok:
		return Checkout{}, fmt.Errorf("%w: no line item amount", ErrInvalidCheckout)
	case checkout.Price < 0:
		return Checkout{}, fmt.Errorf("%w: negative amount %d", ErrInvalidCheckout, checkout.Price)
	}
	return checkout, nil
}
