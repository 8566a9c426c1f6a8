package sales

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"

	"course_sales/internal/testutil"
)

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := NewVerifier("  ")
	assert.Error(t, err)
}

func TestVerify_ValidSignature(t *testing.T) {
	v, err := NewVerifier(testutil.WebhookSecret)
	require.NoError(t, err)

	payload := testutil.CheckoutEvent(t, "evt_1", testutil.Checkout{UserID: "U1", CourseID: "C1", Amount: 2500})
	event, err := v.Verify(payload, testutil.Sign(payload, testutil.WebhookSecret))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, stripe.EventTypeCheckoutSessionCompleted, event.Type)
}

func TestVerify_Rejects(t *testing.T) {
	v, err := NewVerifier(testutil.WebhookSecret)
	require.NoError(t, err)
	payload := testutil.CheckoutEvent(t, "evt_1", testutil.Checkout{UserID: "U1", CourseID: "C1", Amount: 2500})

	tests := []struct {
		name      string
		payload   []byte
		signature string
	}{
		{name: "missing header", payload: payload, signature: ""},
		{name: "garbage header", payload: payload, signature: "t=1,v1=invalid"},
		{name: "wrong secret", payload: payload, signature: testutil.Sign(payload, "whsec_other")},
		{name: "tampered body", payload: append([]byte(" "), payload...), signature: testutil.Sign(payload, testutil.WebhookSecret)},
		{name: "stale timestamp", payload: payload, signature: testutil.SignAt(payload, testutil.WebhookSecret, time.Now().Add(-time.Hour).Unix())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.payload, tt.signature)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSignature), "expected ErrInvalidSignature, got %v", err)
		})
	}
}

func TestParseCheckout(t *testing.T) {
	v, err := NewVerifier(testutil.WebhookSecret)
	require.NoError(t, err)

	verify := func(t *testing.T, payload []byte) stripe.Event {
		t.Helper()
		event, err := v.Verify(payload, testutil.Sign(payload, testutil.WebhookSecret))
		require.NoError(t, err)
		return event
	}

	t.Run("all metadata", func(t *testing.T) {
		event := verify(t, testutil.CheckoutEvent(t, "evt_2", testutil.Checkout{
			UserID: "U1", CourseID: "C1", BundleID: "B1", Coupon: "SAVE10", PartnerID: "P9", Amount: 1999,
		}))

		checkout, err := ParseCheckout(event)
		require.NoError(t, err)
		assert.Equal(t, Checkout{
			EventID:   "evt_2",
			UserID:    "U1",
			CourseID:  "C1",
			BundleID:  "B1",
			Coupon:    "SAVE10",
			PartnerID: "P9",
			Price:     1999,
		}, checkout)
	})

	t.Run("session total without line items", func(t *testing.T) {
		event := verify(t, testutil.CheckoutEvent(t, "evt_3", testutil.Checkout{
			UserID: "U1", CourseID: "C1", Amount: 4200, NoLineItems: true,
		}))

		checkout, err := ParseCheckout(event)
		require.NoError(t, err)
		assert.Equal(t, int64(4200), checkout.Price)
		assert.Empty(t, checkout.PartnerID)
	})

	t.Run("missing user", func(t *testing.T) {
		event := verify(t, testutil.CheckoutEvent(t, "evt_4", testutil.Checkout{CourseID: "C1", Amount: 100}))
		_, err := ParseCheckout(event)
		assert.ErrorIs(t, err, ErrInvalidCheckout)
	})

	t.Run("missing course", func(t *testing.T) {
		event := verify(t, testutil.CheckoutEvent(t, "evt_5", testutil.Checkout{UserID: "U1", Amount: 100}))
		_, err := ParseCheckout(event)
		assert.ErrorIs(t, err, ErrInvalidCheckout)
	})

	t.Run("fully discounted", func(t *testing.T) {
		event := verify(t, testutil.CheckoutEvent(t, "evt_6", testutil.Checkout{
			UserID: "U1", CourseID: "C1", Coupon: "FREE100", Amount: 0,
		}))

		checkout, err := ParseCheckout(event)
		require.NoError(t, err)
		assert.Equal(t, int64(0), checkout.Price)
		assert.Equal(t, "FREE100", checkout.Coupon)
	})

	t.Run("fully discounted without line items", func(t *testing.T) {
		event := verify(t, testutil.CheckoutEvent(t, "evt_7", testutil.Checkout{
			UserID: "U1", CourseID: "C1", Amount: 0, NoLineItems: true,
		}))

		checkout, err := ParseCheckout(event)
		require.NoError(t, err)
		assert.Equal(t, int64(0), checkout.Price)
	})

	t.Run("no amount", func(t *testing.T) {
		event := verify(t, testutil.CheckoutEvent(t, "evt_8", testutil.Checkout{UserID: "U1", CourseID: "C1", NoAmount: true}))
		_, err := ParseCheckout(event)
		assert.ErrorIs(t, err, ErrInvalidCheckout)
	})

	t.Run("negative amount", func(t *testing.T) {
		event := verify(t, testutil.CheckoutEvent(t, "evt_9", testutil.Checkout{UserID: "U1", CourseID: "C1", Amount: -100}))
		_, err := ParseCheckout(event)
		assert.ErrorIs(t, err, ErrInvalidCheckout)
	})
}
