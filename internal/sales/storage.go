package sales

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// ErrEmptyEventID is returned when trying to store a sale without the provider event id.
var ErrEmptyEventID = errors.New("empty event ID")

// Storage is the primary store for sales and their partner attribution.
type Storage interface {
	// RecordSale inserts the sale together with its event marker and returns the generated ID.
	// It returns ErrAlreadyProcessed when the sale's event was recorded before.
	RecordSale(ctx context.Context, sale *Sale) (string, error)
	// RecordPartnerSale links an existing sale to a partner.
	// It returns ErrNotFound when the referenced sale does not exist.
	RecordPartnerSale(ctx context.Context, partnerSale *PartnerSale) error
	ListByUser(ctx context.Context, userID string) ([]*Sale, error)
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu       sync.Mutex
	sales    map[string]*Sale
	partners map[string]*PartnerSale
	events   map[string]string
}

// NewLocalStorage instantiates a new LocalStorage with empty maps.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		sales:    map[string]*Sale{},
		partners: map[string]*PartnerSale{},
		events:   map[string]string{},
	}
}

// RecordSale assigns a new ID to the sale and stores it.
// Returns ErrEmptyEventID if the sale has no event id.
func (l *LocalStorage) RecordSale(_ context.Context, sale *Sale) (string, error) {
	if sale.EventID == "" {
		return "", ErrEmptyEventID
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.events[sale.EventID]; ok {
		return "", ErrAlreadyProcessed
	}
	sale.ID = uuid.NewString()
	sale.CreatedAt = time.Now()
	l.sales[sale.ID] = sale
	l.events[sale.EventID] = sale.ID
	return sale.ID, nil
}

func (l *LocalStorage) RecordPartnerSale(_ context.Context, partnerSale *PartnerSale) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.sales[partnerSale.SaleID]; !ok {
		return ErrNotFound
	}
	partnerSale.ID = uuid.NewString()
	partnerSale.CreatedAt = time.Now()
	l.partners[partnerSale.ID] = partnerSale
	return nil
}

// ListByUser returns the sales of a user, oldest first.
func (l *LocalStorage) ListByUser(_ context.Context, userID string) ([]*Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sales := make([]*Sale, 0)
	for _, s := range l.sales {
		if s.UserID == userID {
			sales = append(sales, s)
		}
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].CreatedAt.Before(sales[j].CreatedAt) })
	return sales, nil
}

// PartnerSales returns the partner attributions recorded for a sale.
func (l *LocalStorage) PartnerSales(saleID string) []*PartnerSale {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*PartnerSale, 0)
	for _, p := range l.partners {
		if p.SaleID == saleID {
			out = append(out, p)
		}
	}
	return out
}
