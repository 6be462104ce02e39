package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"taply/internal/model"
	"taply/internal/service"
)

type MockQRService struct {
	mock.Mock
}

func (m *MockQRService) Create(ctx context.Context, ownerID, profileID uuid.UUID) (*model.QRCode, error) {
	args := m.Called(ctx, ownerID, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QRCode), args.Error(1)
}

func (m *MockQRService) Get(ctx context.Context, ownerID, id uuid.UUID) (*model.QRCode, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QRCode), args.Error(1)
}

func (m *MockQRService) Resolve(ctx context.Context, code, ip, userAgent string) string {
	args := m.Called(ctx, code, ip, userAgent)
	return args.String(0)
}

func (m *MockQRService) SoftDelete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockQRService) Restore(ctx context.Context, ownerID, id uuid.UUID) (*model.QRCode, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QRCode), args.Error(1)
}

func (m *MockQRService) ListScans(ctx context.Context, ownerID, id uuid.UUID, page, limit int) ([]model.ScanEvent, int64, error) {
	args := m.Called(ctx, ownerID, id, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.ScanEvent), args.Get(1).(int64), args.Error(2)
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestQRHandler_Resolve(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		target       string
		wantLocation string
	}{
		{name: "known code redirects to profile", code: "abc123", target: "/u/alice", wantLocation: "/u/alice"},
		{name: "unknown code falls back to home", code: "nope", target: service.FallbackRedirect, wantLocation: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qrService := new(MockQRService)
			qrService.On("Resolve", mock.Anything, tt.code, mock.Anything, "unit-test-agent").Return(tt.target)

			e := echo.New()
			e.GET("/qr/:code", NewQRHandler(qrService, newTestLogger()).Resolve)

			req := httptest.NewRequest(http.MethodGet, "/qr/"+tt.code, nil)
			req.Header.Set("User-Agent", "unit-test-agent")
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			qrService.AssertExpectations(t)
		})
	}
}
