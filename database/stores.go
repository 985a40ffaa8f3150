package database

import (
	"context"
	"errors"
	"time"

	"barangay-portal-backend/models"

	"gorm.io/gorm"
)

// RequestStore is the GORM-backed request store used when the records live in
// this process. It satisfies workflow.RequestStore.
type RequestStore struct {
	DB *gorm.DB
}

// UpdateStatus persists exactly the status column; it is the transition's
// single serialization point, so nothing else on the row is touched.
func (s *RequestStore) UpdateStatus(ctx context.Context, id uint, status models.RequestStatus) error {
	res := s.DB.WithContext(ctx).
		Model(&models.DocumentRequest{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LedgerStore is the GORM-backed revenue ledger. It satisfies
// workflow.LedgerStore: create and delete-by-reference are the only mutations,
// rows are never updated in place.
type LedgerStore struct {
	DB *gorm.DB
}

func (s *LedgerStore) Create(ctx context.Context, entry models.ReportEntry) (models.ReportEntry, error) {
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return models.ReportEntry{}, err
	}
	return entry, nil
}

// DeleteByReference removes the live row for referenceNo. A reference with no
// live row is a success, not an error, so re-running a reversal stays safe.
func (s *LedgerStore) DeleteByReference(ctx context.Context, referenceNo string) error {
	res := s.DB.WithContext(ctx).
		Where("reference_no = ?", referenceNo).
		Delete(&models.ReportEntry{})
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return res.Error
	}
	return nil
}

// IdempotencyStore is the GORM-backed record store behind the Idempotency-Key
// middleware. It satisfies middlewares.IdempotencyStore.
type IdempotencyStore struct {
	DB *gorm.DB
}

// FindOrCreate runs under a short transaction so concurrent calls with the
// same key resolve through the unique index rather than racing.
func (s *IdempotencyStore) FindOrCreate(rec models.IdempotencyKey) (models.IdempotencyKey, error) {
	var existing models.IdempotencyKey
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("key = ?", rec.Key).First(&existing).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// Not found -> create "pending"
			if e2 := tx.Create(&rec).Error; e2 != nil {
				// Could be a unique race: read again
				return tx.Where("key = ?", rec.Key).First(&existing).Error
			}
			existing = rec
		}
		return nil
	})
	if err != nil {
		return models.IdempotencyKey{}, err
	}
	return existing, nil
}

func (s *IdempotencyStore) Complete(key string, status int, body []byte) error {
	now := time.Now().UTC()
	return s.DB.Model(&models.IdempotencyKey{}).
		Where("key = ?", key).
		Updates(map[string]any{
			"response_status": status,
			"response_body":   body,
			"completed_at":    &now,
		}).Error
}
