package preview

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clubkasse/membership-tally/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) MonthlyFee(ctx context.Context, memberID int64, at time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, memberID, at)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *ServiceMock) TotalFee(ctx context.Context, memberID int64, at time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, memberID, at)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRouter(handler *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/members/{id}/fees", handler.ServeHTTP)
	return r
}

func TestPreviewHandler_ServeHTTP(t *testing.T) {
	at := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("explicit date", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("MonthlyFee", mock.Anything, int64(7), at).
			Return(decimal.RequireFromString("17.50"), nil).Once()
		serviceMock.On("TotalFee", mock.Anything, int64(7), at).
			Return(decimal.RequireFromString("47.50"), nil).Once()
		router := newRouter(New(newNoopLogger(), serviceMock))

		req := httptest.NewRequest(http.MethodGet, "/members/7/fees?date=2026-06-01", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got map[string]any
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		data := got["data"].(map[string]any)
		assert.Equal(t, "17.50", data["monthly_fee"])
		assert.Equal(t, "47.50", data["total_fee"])
		assert.Equal(t, "2026-06-01", data["date"])
		serviceMock.AssertExpectations(t)
	})

	t.Run("unknown member", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("MonthlyFee", mock.Anything, int64(99), at).
			Return(decimal.Zero, models.ErrMemberNotFound).Once()
		router := newRouter(New(newNoopLogger(), serviceMock))

		req := httptest.NewRequest(http.MethodGet, "/members/99/fees?date=2026-06-01", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		serviceMock.AssertExpectations(t)
	})

	t.Run("malformed date", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		router := newRouter(New(newNoopLogger(), serviceMock))

		req := httptest.NewRequest(http.MethodGet, "/members/7/fees?date=01.06.2026", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		serviceMock.AssertNotCalled(t, "MonthlyFee")
	})
}
