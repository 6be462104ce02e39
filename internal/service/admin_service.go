package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"taply/internal/auth"
	apperrors "taply/internal/errors"
	"taply/internal/model"
	"taply/internal/repository"
)

const (
	invitationTokenBytes = 32
	invitationExpiry     = 7 * 24 * time.Hour
	defaultPageSize      = 20
	maxPageSize          = 100
)

// Pagination describes a page of results.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// UserPage is a paginated user listing. The password hash is excluded by the
// model's JSON tags.
type UserPage struct {
	Users      []model.User `json:"users"`
	Pagination Pagination   `json:"pagination"`
}

// AuditPage is a paginated audit log listing.
type AuditPage struct {
	Entries    []model.AuditLog `json:"entries"`
	Pagination Pagination       `json:"pagination"`
}

// AdminService exposes privileged user management gated by the role claim.
type AdminService interface {
	ListUsers(ctx context.Context, page, limit int) (*UserPage, error)
	DeleteUser(ctx context.Context, actorID, id uuid.UUID) error
	SuspendUser(ctx context.Context, actorID, id uuid.UUID) error
	// CreateSubAdmin creates a pending sub-admin with a time-boxed invitation
	// token and a default profile. The raw token is returned once for
	// delivery; only the stored copy can accept the invitation.
	CreateSubAdmin(ctx context.Context, actorID uuid.UUID, email string, permissions []string) (*model.User, string, error)
	ListAudit(ctx context.Context, page, limit int) (*AuditPage, error)
}

type adminService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	auditRepo   repository.AuditRepository
	audit       *AuditLogger
}

// NewAdminService creates an admin service.
func NewAdminService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, auditRepo repository.AuditRepository, audit *AuditLogger) AdminService {
	return &adminService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		auditRepo:   auditRepo,
		audit:       audit,
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return page, limit
}

func paginate(total int64, page, limit int) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

func (s *adminService) ListUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	page, limit = normalizePage(page, limit)

	users, total, err := s.userRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return &UserPage{
		Users:      users,
		Pagination: paginate(total, page, limit),
	}, nil
}

// DeleteUser removes a user permanently and records the action. The audit
// write is swallowed on failure; the deletion stands either way.
func (s *adminService) DeleteUser(ctx context.Context, actorID, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.audit.Record(ctx, model.AuditUserDeleted, "user deleted by admin", &actorID, map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

// SuspendUser sets a user's status to suspended. Already-issued session
// tokens stay valid until they expire.
func (s *adminService) SuspendUser(ctx context.Context, actorID, id uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if err := s.userRepo.UpdateStatus(ctx, id, model.StatusSuspended); err != nil {
		return fmt.Errorf("suspend user: %w", err)
	}

	s.audit.Record(ctx, model.AuditUserSuspended, "user suspended by admin", &actorID, map[string]interface{}{
		"user_id": id,
	})
	return nil
}

func (s *adminService) CreateSubAdmin(ctx context.Context, actorID uuid.UUID, email string, permissions []string) (*model.User, string, error) {
	email = normalizeEmail(email)

	token, err := auth.GenerateOpaqueToken(invitationTokenBytes)
	if err != nil {
		return nil, "", fmt.Errorf("generate invitation token: %w", err)
	}
	expires := time.Now().Add(invitationExpiry)

	perms, err := permissionsJSON(permissions)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Email:             email,
		Role:              model.RoleSubAdmin,
		Status:            model.StatusPending,
		Permissions:       perms,
		InvitationToken:   &token,
		InvitationExpires: &expires,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperrors.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create sub-admin: %w", err)
	}

	// Every sub-admin starts with a default profile under their email local
	// part; a collision falls back to a random slug.
	profile := &model.Profile{
		UserID:      user.ID,
		Username:    defaultUsername(email),
		DisplayName: email,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			suffix, suffixErr := auth.GenerateOpaqueToken(4)
			if suffixErr != nil {
				return nil, "", fmt.Errorf("generate username suffix: %w", suffixErr)
			}
			profile.Username = profile.Username + "-" + strings.ToLower(suffix)
			err = s.profileRepo.Create(ctx, profile)
		}
		if err != nil {
			return nil, "", fmt.Errorf("create default profile: %w", err)
		}
	}

	s.audit.Record(ctx, model.AuditSubAdminCreated, "sub-admin invited", &actorID, map[string]interface{}{
		"user_id":     user.ID,
		"email":       email,
		"permissions": permissions,
	})

	return user, token, nil
}

func (s *adminService) ListAudit(ctx context.Context, page, limit int) (*AuditPage, error) {
	page, limit = normalizePage(page, limit)

	entries, total, err := s.auditRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}

	return &AuditPage{
		Entries:    entries,
		Pagination: paginate(total, page, limit),
	}, nil
}

func permissionsJSON(permissions []string) (datatypes.JSON, error) {
	if len(permissions) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(permissions)
	if err != nil {
		return nil, fmt.Errorf("marshal permissions: %w", err)
	}
	return payload, nil
}

func defaultUsername(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r == '.' || r == '_':
			return '-'
		default:
			return -1
		}
	}, strings.ToLower(local))
	if slug == "" {
		slug = "member"
	}
	return slug
}
