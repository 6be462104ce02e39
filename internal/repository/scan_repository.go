package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taply/internal/model"
)

// ScanRepository appends and reads scan events. Events are immutable; there
// is no update or delete.
type ScanRepository interface {
	Create(ctx context.Context, event *model.ScanEvent) error
	ListByQRCode(ctx context.Context, qrCodeID uuid.UUID, offset, limit int) ([]model.ScanEvent, int64, error)
}

type scanRepository struct {
	db *gorm.DB
}

// NewScanRepository builds a GORM-backed repository.
func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{db: db}
}

func (r *scanRepository) Create(ctx context.Context, event *model.ScanEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *scanRepository) ListByQRCode(ctx context.Context, qrCodeID uuid.UUID, offset, limit int) ([]model.ScanEvent, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.ScanEvent{}).
		Where("qr_code_id = ?", qrCodeID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []model.ScanEvent
	if err := r.db.WithContext(ctx).
		Where("qr_code_id = ?", qrCodeID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
