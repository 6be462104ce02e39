package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "taply/internal/errors"
	"taply/internal/model"
)

func TestAdminService_ListUsersPagination(t *testing.T) {
	tests := []struct {
		name           string
		page, limit    int
		total          int64
		wantOffset     int
		wantLimit      int
		wantTotalPages int
		wantHasMore    bool
	}{
		{name: "first page of many", page: 1, limit: 10, total: 35, wantOffset: 0, wantLimit: 10, wantTotalPages: 4, wantHasMore: true},
		{name: "last page", page: 4, limit: 10, total: 35, wantOffset: 30, wantLimit: 10, wantTotalPages: 4, wantHasMore: false},
		{name: "defaults applied", page: 0, limit: 0, total: 5, wantOffset: 0, wantLimit: 20, wantTotalPages: 1, wantHasMore: false},
		{name: "oversized limit clamped", page: 1, limit: 1000, total: 5, wantOffset: 0, wantLimit: 20, wantTotalPages: 1, wantHasMore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			userRepo.On("List", mock.Anything, tt.wantOffset, tt.wantLimit).Return([]model.User{}, tt.total, nil)

			svc := NewAdminService(userRepo, new(MockProfileRepository), new(MockAuditRepository), nil)

			page, err := svc.ListUsers(context.Background(), tt.page, tt.limit)
			assert.NoError(t, err)
			assert.Equal(t, tt.total, page.Pagination.Total)
			assert.Equal(t, tt.wantTotalPages, page.Pagination.TotalPages)
			assert.Equal(t, tt.wantHasMore, page.Pagination.HasMore)
			userRepo.AssertExpectations(t)
		})
	}
}

func TestAdminService_ListUsersNeverSerializesPasswordHash(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("List", mock.Anything, 0, 20).Return([]model.User{
		{Email: "u@example.com", PasswordHash: "bcrypt-hash", Role: model.RoleUser, Status: model.StatusActive},
	}, int64(1), nil)

	svc := NewAdminService(userRepo, new(MockProfileRepository), new(MockAuditRepository), nil)

	page, err := svc.ListUsers(context.Background(), 1, 20)
	assert.NoError(t, err)

	payload, err := json.Marshal(page)
	assert.NoError(t, err)
	assert.NotContains(t, string(payload), "bcrypt-hash")
}

func TestAdminService_DeleteUser(t *testing.T) {
	actorID := uuid.New()
	target := &model.User{ID: uuid.New(), Email: "gone@example.com"}

	t.Run("deletes and audits", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		auditRepo := new(MockAuditRepository)
		userRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)
		userRepo.On("Delete", mock.Anything, target.ID).Return(nil)
		auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
			return e.Action == model.AuditUserDeleted
		})).Return(nil)

		svc := NewAdminService(userRepo, new(MockProfileRepository), auditRepo, NewAuditLogger(auditRepo, nil))

		assert.NoError(t, svc.DeleteUser(context.Background(), actorID, target.ID))
		userRepo.AssertExpectations(t)
		auditRepo.AssertExpectations(t)
	})

	t.Run("audit failure does not fail the deletion", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		auditRepo := new(MockAuditRepository)
		userRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)
		userRepo.On("Delete", mock.Anything, target.ID).Return(nil)
		auditRepo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

		svc := NewAdminService(userRepo, new(MockProfileRepository), auditRepo, NewAuditLogger(auditRepo, nil))

		assert.NoError(t, svc.DeleteUser(context.Background(), actorID, target.ID))
	})

	t.Run("unknown user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", mock.Anything, target.ID).Return(nil, gorm.ErrRecordNotFound)

		svc := NewAdminService(userRepo, new(MockProfileRepository), new(MockAuditRepository), nil)

		assert.ErrorIs(t, svc.DeleteUser(context.Background(), actorID, target.ID), apperrors.ErrNotFound)
	})
}

func TestAdminService_CreateSubAdmin(t *testing.T) {
	actorID := uuid.New()

	t.Run("creates pending user with default profile", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		profileRepo := new(MockProfileRepository)
		auditRepo := new(MockAuditRepository)

		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
		profileRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Profile")).Return(nil)
		auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		svc := NewAdminService(userRepo, profileRepo, auditRepo, NewAuditLogger(auditRepo, nil))

		user, token, err := svc.CreateSubAdmin(context.Background(), actorID, "Bob.Jones@Example.com", []string{"users"})
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "bob.jones@example.com", user.Email)
		assert.Equal(t, model.RoleSubAdmin, user.Role)
		assert.Equal(t, model.StatusPending, user.Status)
		assert.NotNil(t, user.InvitationToken)
		assert.Equal(t, token, *user.InvitationToken)
		assert.NotNil(t, user.InvitationExpires)

		createdProfile := profileRepo.Calls[0].Arguments.Get(1).(*model.Profile)
		assert.Equal(t, "bob-jones", createdProfile.Username)
		assert.Equal(t, user.ID, createdProfile.UserID)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

		svc := NewAdminService(userRepo, new(MockProfileRepository), new(MockAuditRepository), nil)

		_, _, err := svc.CreateSubAdmin(context.Background(), actorID, "bob@example.com", nil)
		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	})

	t.Run("username collision falls back to suffixed slug", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		profileRepo := new(MockProfileRepository)

		userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		profileRepo.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey).Once()
		profileRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		svc := NewAdminService(userRepo, profileRepo, new(MockAuditRepository), nil)

		_, _, err := svc.CreateSubAdmin(context.Background(), actorID, "bob@example.com", nil)
		assert.NoError(t, err)
		profileRepo.AssertNumberOfCalls(t, "Create", 2)
	})
}

func TestAdminService_SuspendUser(t *testing.T) {
	actorID := uuid.New()
	target := &model.User{ID: uuid.New(), Email: "u@example.com", Status: model.StatusActive}

	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)
	userRepo.On("UpdateStatus", mock.Anything, target.ID, model.StatusSuspended).Return(nil)

	svc := NewAdminService(userRepo, new(MockProfileRepository), new(MockAuditRepository), nil)

	assert.NoError(t, svc.SuspendUser(context.Background(), actorID, target.ID))
	userRepo.AssertExpectations(t)
}
