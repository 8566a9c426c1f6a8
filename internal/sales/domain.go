package sales

import "time"

const (
	// CurrencyUSD is the only currency checkout sessions are created in.
	CurrencyUSD = "USD"
	// PaymentTypeStripe marks sales fulfilled through the Stripe webhook.
	PaymentTypeStripe = "STRIPE"
)

// Sale represents a course or bundle purchase. It is never updated once written.
type Sale struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	UserID      string    `json:"user_id" gorm:"index;not null"`
	CourseID    string    `json:"course_id" gorm:"not null"`
	BundleID    string    `json:"bundle_id"`
	Price       int64     `json:"price" gorm:"not null"` // minor units
	Currency    string    `json:"currency" gorm:"size:10;not null"`
	PaymentType string    `json:"payment_type" gorm:"size:20;not null"`
	Coupon      *string   `json:"coupon,omitempty"`
	EventID     string    `json:"-" gorm:"index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// PartnerSale attributes a Sale to the partner who referred the buyer.
type PartnerSale struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	SaleID    string    `json:"sale_id" gorm:"index;not null"`
	PartnerID string    `json:"partner_id" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// ProcessedEvent remembers provider event ids so redelivered events are not fulfilled twice.
type ProcessedEvent struct {
	EventID   string    `gorm:"primaryKey;size:255"`
	SaleID    string    `gorm:"size:36;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Checkout is the purchase carried by a verified checkout-completed event.
type Checkout struct {
	EventID   string
	UserID    string
	CourseID  string
	BundleID  string
	Coupon    string
	PartnerID string
	Price     int64
}

// NewSale builds the Sale row for a checkout. The ID is assigned by the storage on insert.
func (c Checkout) NewSale() *Sale {
	sale := &Sale{
		UserID:      c.UserID,
		CourseID:    c.CourseID,
		BundleID:    c.BundleID,
		Price:       c.Price,
		Currency:    CurrencyUSD,
		PaymentType: PaymentTypeStripe,
		EventID:     c.EventID,
	}
	if c.Coupon != "" {
		coupon := c.Coupon
		sale.Coupon = &coupon
	}
	return sale
}
