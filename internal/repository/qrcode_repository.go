package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taply/internal/model"
)

// QRCodeRepository defines QR code persistence operations.
type QRCodeRepository interface {
	Create(ctx context.Context, qr *model.QRCode) error
	FindByCode(ctx context.Context, code string) (*model.QRCode, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.QRCode, error)
	FindByIDAny(ctx context.Context, id uuid.UUID) (*model.QRCode, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]model.QRCode, error)
	IncrementScans(ctx context.Context, id uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
}

type qrCodeRepository struct {
	db *gorm.DB
}

// NewQRCodeRepository builds a GORM-backed repository.
func NewQRCodeRepository(db *gorm.DB) QRCodeRepository {
	return &qrCodeRepository{db: db}
}

func (r *qrCodeRepository) Create(ctx context.Context, qr *model.QRCode) error {
	return r.db.WithContext(ctx).Create(qr).Error
}

// FindByCode resolves a live QR code by its opaque token. Soft-deleted codes
// behave like missing ones.
func (r *qrCodeRepository) FindByCode(ctx context.Context, code string) (*model.QRCode, error) {
	var qr model.QRCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *qrCodeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.QRCode, error) {
	var qr model.QRCode
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}

// FindByIDAny finds a QR code regardless of soft-delete state.
func (r *qrCodeRepository) FindByIDAny(ctx context.Context, id uuid.UUID) (*model.QRCode, error) {
	var qr model.QRCode
	if err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *qrCodeRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]model.QRCode, error) {
	var qrs []model.QRCode
	if err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Find(&qrs).Error; err != nil {
		return nil, err
	}
	return qrs, nil
}

// IncrementScans bumps the scan counter with a store-side expression so
// concurrent scans never lose updates.
func (r *qrCodeRepository) IncrementScans(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.QRCode{}).
		Where("id = ?", id).
		UpdateColumn("scans", gorm.Expr("scans + ?", 1)).Error
}

// SoftDelete marks a QR code deleted. Idempotent.
func (r *qrCodeRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.QRCode{}).Error
}

// Restore clears the soft-delete marker. Idempotent for active codes.
func (r *qrCodeRepository) Restore(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Model(&model.QRCode{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error
}
