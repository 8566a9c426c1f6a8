// Package testutil builds signed Stripe webhook payloads for tests.
package testutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v80"
)

// WebhookSecret is the signing secret used by test verifiers.
const WebhookSecret = "whsec_test"

// Checkout describes the checkout session embedded in a test event.
type Checkout struct {
	UserID    string
	CourseID  string
	BundleID  string
	Coupon    string
	PartnerID string
	Amount    int64
	// NoLineItems leaves line_items out, as Stripe does unless they are expanded.
	NoLineItems bool
	// NoAmount leaves out both the session total and the line items.
	NoAmount bool
}

// CheckoutEvent returns the JSON of a checkout.session.completed event.
func CheckoutEvent(t testing.TB, eventID string, c Checkout) []byte {
	t.Helper()

	metadata := map[string]string{}
	for key, value := range map[string]string{
		"courseId":  c.CourseID,
		"bundleId":  c.BundleID,
		"coupon":    c.Coupon,
		"partnerId": c.PartnerID,
	} {
		if value != "" {
			metadata[key] = value
		}
	}

	session := map[string]any{
		"id":                  "cs_test_" + eventID,
		"object":              "checkout.session",
		"client_reference_id": c.UserID,
		"metadata":            metadata,
		"currency":            "usd",
	}
	if !c.NoAmount {
		session["amount_total"] = c.Amount
	}
	if !c.NoLineItems && !c.NoAmount {
		session["line_items"] = map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"id": "li_1", "object": "item", "amount_total": c.Amount, "currency": "usd"},
			},
		}
	}
	return Event(t, eventID, string(stripe.EventTypeCheckoutSessionCompleted), session)
}

// Event returns the JSON of an event wrapping the given data object.
func Event(t testing.TB, eventID, eventType string, object map[string]any) []byte {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"id":          eventID,
		"object":      "event",
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"type":        eventType,
		"data":        map[string]any{"object": object},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload
}

// Sign returns a Stripe-Signature header value for payload signed now.
func Sign(payload []byte, secret string) string {
	return SignAt(payload, secret, time.Now().Unix())
}

// SignAt returns a Stripe-Signature header value for payload signed at ts.
func SignAt(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
