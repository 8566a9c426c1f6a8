package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStorage is the relational Storage. The *gorm.DB should be opened with
// TranslateError so concurrent redeliveries surface as gorm.ErrDuplicatedKey.
type GormStorage struct {
	db *gorm.DB
}

func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

// Models lists the tables owned by GormStorage, in migration order.
func Models() []any {
	return []any{&Sale{}, &PartnerSale{}, &ProcessedEvent{}}
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (p *PartnerSale) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (g *GormStorage) RecordSale(ctx context.Context, sale *Sale) (string, error) {
	if sale.EventID == "" {
		return "", ErrEmptyEventID
	}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seen int64
		if err := tx.Model(&ProcessedEvent{}).Where("event_id = ?", sale.EventID).Count(&seen).Error; err != nil {
			return fmt.Errorf("check processed event: %w", err)
		}
		if seen > 0 {
			return ErrAlreadyProcessed
		}

		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		if err := tx.Create(&ProcessedEvent{EventID: sale.EventID, SaleID: sale.ID}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyProcessed
			}
			return fmt.Errorf("insert processed event: %w", err)
		}
		return nil
	})
	if err != nil {
		sale.ID = ""
		return "", err
	}
	return sale.ID, nil
}

func (g *GormStorage) RecordPartnerSale(ctx context.Context, partnerSale *PartnerSale) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Sale{}).Where("id = ?", partnerSale.SaleID).Count(&count).Error; err != nil {
			return fmt.Errorf("check sale: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Create(partnerSale).Error; err != nil {
			return fmt.Errorf("insert partner sale: %w", err)
		}
		return nil
	})
}

func (g *GormStorage) ListByUser(ctx context.Context, userID string) ([]*Sale, error) {
	var sales []*Sale
	if err := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
