package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taply/internal/auth"
	apperrors "taply/internal/errors"
	"taply/internal/model"
)

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "email is normalized before lookup",
			email:    "  Test@Example.COM ",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "email already registered",
			email:    "existing@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:     "concurrent insert loses to unique index",
			email:    "racer@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "racer@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockAudit := new(MockAuditRepository)
			mockAudit.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(mockRepo, jwtService, NewAuditLogger(mockAudit, nil))

			user, err := svc.Register(context.Background(), tt.email, tt.password, model.RoleUser)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, "test@example.com", user.Email)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.password, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					Email:        "test@example.com",
					PasswordHash: string(hashed),
					Role:         model.RoleUser,
					Status:       model.StatusActive,
				}, nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "not-the-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					Email:        "test@example.com",
					PasswordHash: string(hashed),
					Status:       model.StatusActive,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "suspended account",
			email:    "suspended@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "suspended@example.com").Return(&model.User{
					Email:        "suspended@example.com",
					PasswordHash: string(hashed),
					Status:       model.StatusSuspended,
				}, nil)
			},
			expectedError: apperrors.ErrAccountSuspended,
		},
		{
			name:     "pending account",
			email:    "pending@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "pending@example.com").Return(&model.User{
					Email:        "pending@example.com",
					PasswordHash: string(hashed),
					Status:       model.StatusPending,
				}, nil)
			},
			expectedError: apperrors.ErrAccountPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(mockRepo, jwtService, nil)

			token, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.NotNil(t, user)

				claims, verifyErr := svc.Verify(token)
				assert.NoError(t, verifyErr)
				assert.Equal(t, user.ID, claims.UserID)
				assert.Equal(t, user.Email, claims.Email)
				assert.Equal(t, string(user.Role), claims.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginStoreOutageIsNotInvalidCredentials(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, assert.AnError)

	svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), nil)

	_, _, err := svc.Login(context.Background(), "test@example.com", "password123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAuthService_LoginErrorDoesNotLeakAccountExistence(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("FindByEmail", mock.Anything, "somebody@example.com").Return(&model.User{
		Email:        "somebody@example.com",
		PasswordHash: string(hashed),
		Status:       model.StatusActive,
	}, nil)

	svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), nil)

	_, _, missingErr := svc.Login(context.Background(), "nobody@example.com", "whatever")
	_, _, wrongPassErr := svc.Login(context.Background(), "somebody@example.com", "wrong")

	assert.Equal(t, missingErr, wrongPassErr)
}

func TestAuthService_AcceptInvitation(t *testing.T) {
	token := "invite-token"
	expires := time.Now().Add(time.Hour)

	t.Run("valid invitation activates account and clears token", func(t *testing.T) {
		user := &model.User{
			Email:             "invited@example.com",
			Role:              model.RoleSubAdmin,
			Status:            model.StatusPending,
			InvitationToken:   &token,
			InvitationExpires: &expires,
		}

		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByInvitationToken", mock.Anything, token, mock.AnythingOfType("time.Time")).Return(user, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), nil)

		activated, err := svc.AcceptInvitation(context.Background(), token, "new-password-123")
		assert.NoError(t, err)
		assert.Equal(t, model.StatusActive, activated.Status)
		assert.Nil(t, activated.InvitationToken)
		assert.Nil(t, activated.InvitationExpires)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(activated.PasswordHash), []byte("new-password-123")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown or expired token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByInvitationToken", mock.Anything, "stale", mock.AnythingOfType("time.Time")).Return(nil, gorm.ErrRecordNotFound)

		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), nil)

		_, err := svc.AcceptInvitation(context.Background(), "stale", "new-password-123")
		assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
	})
}
