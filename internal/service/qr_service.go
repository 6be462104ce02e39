package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taply/internal/auth"
	apperrors "taply/internal/errors"
	"taply/internal/model"
	"taply/internal/repository"
)

const qrCodeTokenBytes = 16

// FallbackRedirect is where unresolvable scans land. An unauthenticated
// scanner never sees an error page.
const FallbackRedirect = "/"

// QRService manages QR codes and resolves scans to profile redirects.
type QRService interface {
	Create(ctx context.Context, ownerID, profileID uuid.UUID) (*model.QRCode, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*model.QRCode, error)
	// Resolve maps a scanned code to a redirect path. It never fails: any
	// lookup miss yields the fallback destination.
	Resolve(ctx context.Context, code, ip, userAgent string) string
	SoftDelete(ctx context.Context, ownerID, id uuid.UUID) error
	Restore(ctx context.Context, ownerID, id uuid.UUID) (*model.QRCode, error)
	ListScans(ctx context.Context, ownerID, id uuid.UUID, page, limit int) ([]model.ScanEvent, int64, error)
}

type qrService struct {
	qrRepo      repository.QRCodeRepository
	profileRepo repository.ProfileRepository
	scanRepo    repository.ScanRepository
	recorder    *ScanRecorder
	log         *logrus.Logger
}

// NewQRService creates a QR service.
func NewQRService(qrRepo repository.QRCodeRepository, profileRepo repository.ProfileRepository, scanRepo repository.ScanRepository, recorder *ScanRecorder, log *logrus.Logger) QRService {
	return &qrService{
		qrRepo:      qrRepo,
		profileRepo: profileRepo,
		scanRepo:    scanRepo,
		recorder:    recorder,
		log:         log,
	}
}

// Create binds a new opaque code to one of the owner's profiles.
func (s *qrService) Create(ctx context.Context, ownerID, profileID uuid.UUID) (*model.QRCode, error) {
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if profile.UserID != ownerID {
		return nil, apperrors.ErrForbidden
	}

	code, err := auth.GenerateOpaqueToken(qrCodeTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	qr := &model.QRCode{
		Code:      code,
		ProfileID: profileID,
	}
	if err := s.qrRepo.Create(ctx, qr); err != nil {
		return nil, fmt.Errorf("create qr code: %w", err)
	}
	return qr, nil
}

func (s *qrService) Get(ctx context.Context, ownerID, id uuid.UUID) (*model.QRCode, error) {
	return s.ownedQRCode(ctx, ownerID, id)
}

// Resolve looks up a scanned code, bumps the counter and hands recording off
// to the background. The redirect is the critical path; everything else is
// best effort.
func (s *qrService) Resolve(ctx context.Context, code, ip, userAgent string) string {
	qr, err := s.qrRepo.FindByCode(ctx, code)
	if err != nil {
		return FallbackRedirect
	}

	profile, err := s.profileRepo.FindByID(ctx, qr.ProfileID)
	if err != nil {
		return FallbackRedirect
	}

	// The increment runs detached from the request context so a scanner
	// disconnecting mid-redirect cannot cancel it.
	incCtx, cancel := context.WithTimeout(context.Background(), scanRecordTimeout)
	defer cancel()
	if err := s.qrRepo.IncrementScans(incCtx, qr.ID); err != nil && s.log != nil {
		s.log.WithError(err).WithField("qr_code_id", qr.ID).Warn("scan counter increment failed")
	}

	if s.recorder != nil {
		s.recorder.RecordAsync(qr, ip, userAgent)
	}

	return "/u/" + profile.Username
}

// SoftDelete marks a QR code deleted. Idempotent.
func (s *qrService) SoftDelete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.ownedQRCodeAny(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.qrRepo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("soft delete qr code: %w", err)
	}
	return nil
}

// Restore clears the soft-delete marker; restoring an active code is a no-op.
func (s *qrService) Restore(ctx context.Context, ownerID, id uuid.UUID) (*model.QRCode, error) {
	if _, err := s.ownedQRCodeAny(ctx, ownerID, id); err != nil {
		return nil, err
	}
	if err := s.qrRepo.Restore(ctx, id); err != nil {
		return nil, fmt.Errorf("restore qr code: %w", err)
	}
	restored, err := s.qrRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload qr code: %w", err)
	}
	return restored, nil
}

func (s *qrService) ListScans(ctx context.Context, ownerID, id uuid.UUID, page, limit int) ([]model.ScanEvent, int64, error) {
	qr, err := s.ownedQRCodeAny(ctx, ownerID, id)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.scanRepo.ListByQRCode(ctx, qr.ID, (page-1)*limit, limit)
}

func (s *qrService) ownedQRCode(ctx context.Context, ownerID, id uuid.UUID) (*model.QRCode, error) {
	qr, err := s.qrRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find qr code: %w", err)
	}
	return s.checkOwner(ctx, ownerID, qr)
}

// ownedQRCodeAny resolves ownership for soft-deleted codes too, so delete and
// restore work on them.
func (s *qrService) ownedQRCodeAny(ctx context.Context, ownerID, id uuid.UUID) (*model.QRCode, error) {
	qr, err := s.qrRepo.FindByIDAny(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find qr code: %w", err)
	}
	return s.checkOwner(ctx, ownerID, qr)
}

// checkOwner walks through the profile: a QR code belongs to its profile's
// owner. The profile may itself be soft-deleted.
func (s *qrService) checkOwner(ctx context.Context, ownerID uuid.UUID, qr *model.QRCode) (*model.QRCode, error) {
	profile, err := s.profileRepo.FindByIDAny(ctx, qr.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if profile.UserID != ownerID {
		return nil, apperrors.ErrForbidden
	}
	return qr, nil
}
