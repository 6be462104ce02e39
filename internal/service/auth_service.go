package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taply/internal/auth"
	apperrors "taply/internal/errors"
	"taply/internal/model"
	"taply/internal/repository"
)

const bcryptCost = 10

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, email, password string, role model.Role) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Verify(token string) (*auth.Claims, error)
	AcceptInvitation(ctx context.Context, token, newPassword string) (*model.User, error)
	CurrentUser(ctx context.Context, claims *auth.Claims) (*model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	audit      *AuditLogger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, audit *AuditLogger) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		audit:      audit,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with a hashed password. The raw password is
// never stored.
func (s *authService) Register(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	email = normalizeEmail(email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		Status:       model.StatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique index is authoritative; a concurrent insert loses here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.audit.Record(ctx, model.AuditUserCreated, "user registered", &user.ID, map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})

	return user, nil
}

// Login authenticates a user and returns a signed session token. Unknown
// email and wrong password produce the identical error so account existence
// never leaks.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	switch user.Status {
	case model.StatusSuspended:
		return "", nil, apperrors.ErrAccountSuspended
	case model.StatusPending:
		return "", nil, apperrors.ErrAccountPending
	}

	token, err := s.jwtService.GenerateSessionToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}

	return token, user, nil
}

// Verify checks a session token's signature and expiry. It does not re-check
// database state: a token stays valid for its full lifetime even if the
// account is suspended afterwards.
func (s *authService) Verify(token string) (*auth.Claims, error) {
	return s.jwtService.ValidateToken(token)
}

// AcceptInvitation activates a pending account. The invitation token is
// single use: the fields are cleared on success.
func (s *authService) AcceptInvitation(ctx context.Context, token, newPassword string) (*model.User, error) {
	user, err := s.userRepo.FindByInvitationToken(ctx, token, time.Now())
	if err != nil {
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	user.Status = model.StatusActive
	user.InvitationToken = nil
	user.InvitationExpires = nil

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("activate user: %w", err)
	}

	s.audit.Record(ctx, model.AuditInvitationAccepted, "invitation accepted", &user.ID, map[string]interface{}{
		"email": user.Email,
	})

	return user, nil
}

// CurrentUser loads the user behind verified claims.
func (s *authService) CurrentUser(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("load current user: %w", err)
	}
	return user, nil
}
