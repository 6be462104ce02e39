package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taply/internal/cache"
	apperrors "taply/internal/errors"
	"taply/internal/model"
	"taply/internal/repository"
)

const publicProfileCacheTTL = 5 * time.Minute

// ProfileInput carries the owner-editable profile fields.
type ProfileInput struct {
	Username    string
	DisplayName string
	Title       string
	Company     string
	Bio         string
	Email       string
	Phone       string
	Website     string
	LinkedIn    string
	Twitter     string
	Instagram   string
	ShowEmail   bool
	ShowPhone   bool
}

// ProfileService exposes profile CRUD plus the public, visibility-filtered
// lookup used by the profile page.
type ProfileService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input ProfileInput) (*model.Profile, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input ProfileInput) (*model.Profile, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*model.Profile, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Profile, error)
	GetPublic(ctx context.Context, username string) (map[string]interface{}, error)
	SoftDelete(ctx context.Context, ownerID, id uuid.UUID) error
	Restore(ctx context.Context, ownerID, id uuid.UUID) (*model.Profile, error)
}

type profileService struct {
	repo  repository.ProfileRepository
	cache *cache.Client
}

// NewProfileService builds a ProfileService with repository and cache.
func NewProfileService(repo repository.ProfileRepository, cache *cache.Client) ProfileService {
	return &profileService{repo: repo, cache: cache}
}

func publicProfileCacheKey(username string) string {
	return "profile:public:" + username
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Create makes a new profile. Username uniqueness is enforced by the store's
// unique index, so concurrent creates with the same slug cannot both succeed.
func (s *profileService) Create(ctx context.Context, ownerID uuid.UUID, input ProfileInput) (*model.Profile, error) {
	profile := &model.Profile{UserID: ownerID}
	applyInput(profile, input)

	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

// Update edits an owned profile.
func (s *profileService) Update(ctx context.Context, ownerID, id uuid.UUID, input ProfileInput) (*model.Profile, error) {
	profile, err := s.ownedProfile(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	oldUsername := profile.Username
	applyInput(profile, input)

	if err := s.repo.Update(ctx, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUsernameTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	_ = s.cache.Delete(ctx, publicProfileCacheKey(oldUsername))
	_ = s.cache.Delete(ctx, publicProfileCacheKey(profile.Username))
	return profile, nil
}

func (s *profileService) Get(ctx context.Context, ownerID, id uuid.UUID) (*model.Profile, error) {
	return s.ownedProfile(ctx, ownerID, id)
}

func (s *profileService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Profile, error) {
	return s.repo.ListByUser(ctx, ownerID)
}

// GetPublic returns the visibility-filtered view of a live profile, served
// through the cache when possible.
func (s *profileService) GetPublic(ctx context.Context, username string) (map[string]interface{}, error) {
	username = normalizeUsername(username)

	if data, _ := s.cache.Get(ctx, publicProfileCacheKey(username)); data != nil {
		var cached map[string]interface{}
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	profile, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}

	view := profile.PublicView()
	if payload, err := json.Marshal(view); err == nil {
		_ = s.cache.Set(ctx, publicProfileCacheKey(username), payload, publicProfileCacheTTL)
	}
	return view, nil
}

// SoftDelete marks an owned profile deleted. Deleting twice is a no-op.
func (s *profileService) SoftDelete(ctx context.Context, ownerID, id uuid.UUID) error {
	profile, err := s.repo.FindByIDAny(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("find profile: %w", err)
	}
	if profile.UserID != ownerID {
		return apperrors.ErrForbidden
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("soft delete profile: %w", err)
	}
	_ = s.cache.Delete(ctx, publicProfileCacheKey(profile.Username))
	return nil
}

// Restore clears the soft-delete marker and returns the profile in its
// pre-deletion state. Restoring an active profile is a no-op.
func (s *profileService) Restore(ctx context.Context, ownerID, id uuid.UUID) (*model.Profile, error) {
	profile, err := s.repo.FindByIDAny(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if profile.UserID != ownerID {
		return nil, apperrors.ErrForbidden
	}

	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, fmt.Errorf("restore profile: %w", err)
	}

	restored, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload profile: %w", err)
	}
	return restored, nil
}

func (s *profileService) ownedProfile(ctx context.Context, ownerID, id uuid.UUID) (*model.Profile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if profile.UserID != ownerID {
		return nil, apperrors.ErrForbidden
	}
	return profile, nil
}

func applyInput(profile *model.Profile, input ProfileInput) {
	profile.Username = normalizeUsername(input.Username)
	profile.DisplayName = input.DisplayName
	profile.Title = input.Title
	profile.Company = input.Company
	profile.Bio = input.Bio
	profile.Email = input.Email
	profile.Phone = input.Phone
	profile.Website = input.Website
	profile.LinkedIn = input.LinkedIn
	profile.Twitter = input.Twitter
	profile.Instagram = input.Instagram
	profile.ShowEmail = input.ShowEmail
	profile.ShowPhone = input.ShowPhone
}
