package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"course_sales/internal/legacy"
	"course_sales/internal/metrics"
)

// ErrUserRequired is returned when listing sales without a user id.
var ErrUserRequired = errors.New("user id is required")

// Service fulfills verified checkout events against the primary and legacy stores.
type Service struct {
	storage Storage
	legacy  legacy.Store
	metrics *metrics.WebhookMetrics
	logger  *zap.Logger
}

// SalesMetadata summarizes the sales returned by ListUserSales.
type SalesMetadata struct {
	Quantity    int      `json:"quantity"`
	TotalAmount int64    `json:"total_amount"`
	CourseIDs   []string `json:"course_ids"`
}

// NewService creates a new Service. A nil legacy store disables the legacy mirror.
func NewService(storage Storage, legacyStore legacy.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		storage: storage,
		legacy:  legacyStore,
		logger:  logger,
	}
}

// WithMetrics counts partner and legacy write failures on m.
func (s *Service) WithMetrics(m *metrics.WebhookMetrics) *Service {
	s.metrics = m
	return s
}

// HandleEvent fulfills checkout.session.completed events and ignores every other type.
// It returns a nil Sale when nothing was recorded.
func (s *Service) HandleEvent(ctx context.Context, event stripe.Event) (*Sale, error) {
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		s.logger.Info("ignoring webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
		)
		return nil, nil
	}

	checkout, err := ParseCheckout(event)
	if err != nil {
		return nil, err
	}
	return s.Fulfill(ctx, checkout)
}

// Fulfill records the sale, then the partner attribution and the legacy mirror.
// Only a failure to record the sale is returned; the later steps are logged for
// reconciliation because the purchase itself is already durable.
func (s *Service) Fulfill(ctx context.Context, checkout Checkout) (*Sale, error) {
	log := s.logger.With(
		zap.String("event_id", checkout.EventID),
		zap.String("user_id", checkout.UserID),
		zap.String("course_id", checkout.CourseID),
	)

	sale := checkout.NewSale()
	saleID, err := s.storage.RecordSale(ctx, sale)
	if errors.Is(err, ErrAlreadyProcessed) {
		log.Info("skipping duplicate checkout event")
		return nil, err
	}
	if err != nil {
		log.Error("failed to record sale", zap.Error(err))
		return nil, &PersistenceError{EventID: checkout.EventID, Op: "record sale", Err: err}
	}
	log = log.With(zap.String("sale_id", saleID))

	if checkout.PartnerID != "" {
		if err := s.attribute(ctx, saleID, checkout.PartnerID); err != nil {
			s.metrics.IncStepFailure(metrics.StepPartner)
			log.Error("sale recorded without partner attribution",
				zap.String("partner_id", checkout.PartnerID),
				zap.Error(err),
			)
		}
	}

	if s.legacy != nil {
		if err := s.legacy.RecordPurchase(ctx, legacyRecord(sale)); err != nil {
			s.metrics.IncStepFailure(metrics.StepLegacy)
			log.Error("failed to mirror sale to legacy store", zap.Error(err))
		}
	}

	log.Info("sale recorded", zap.Int64("price", sale.Price))
	return sale, nil
}

func (s *Service) attribute(ctx context.Context, saleID, partnerID string) error {
	partnerSale := &PartnerSale{SaleID: saleID, PartnerID: partnerID}
	if err := s.storage.RecordPartnerSale(ctx, partnerSale); err != nil {
		return &PartialAttributionError{SaleID: saleID, PartnerID: partnerID, Err: err}
	}
	return nil
}

func legacyRecord(sale *Sale) legacy.Record {
	rec := legacy.Record{
		UID:         sale.UserID,
		CourseID:    sale.CourseID,
		BundleID:    sale.BundleID,
		Amount:      legacy.AmountFromMinor(sale.Price),
		PaymentType: sale.PaymentType,
	}
	if sale.Coupon != nil {
		rec.Coupon = *sale.Coupon
	}
	return rec
}

// ListUserSales returns the purchases of a user and which courses they unlock.
func (s *Service) ListUserSales(ctx context.Context, userID string) ([]*Sale, SalesMetadata, error) {
	if userID == "" {
		return nil, SalesMetadata{}, ErrUserRequired
	}

	userSales, err := s.storage.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list sales", zap.String("user_id", userID), zap.Error(err))
		return nil, SalesMetadata{}, fmt.Errorf("failed to retrieve sales: %w", err)
	}

	metadata := SalesMetadata{CourseIDs: make([]string, 0)}
	seen := make(map[string]bool)
	for _, sale := range userSales {
		metadata.Quantity++
		metadata.TotalAmount += sale.Price
		if !seen[sale.CourseID] {
			seen[sale.CourseID] = true
			metadata.CourseIDs = append(metadata.CourseIDs, sale.CourseID)
		}
	}

	s.logger.Debug("sales listed",
		zap.String("user_id", userID),
		zap.Int("results_count", len(userSales)),
	)
	return userSales, metadata, nil
}
