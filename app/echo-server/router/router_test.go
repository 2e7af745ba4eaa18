//go:build !integration

package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"whichGLP/business/snapshot"
	"whichGLP/domain"
	"whichGLP/internal/middleware"
	"whichGLP/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type fakeStats struct{}

func (fakeStats) GetAllStats(ctx context.Context) ([]domain.DrugStatistics, error) {
	return []domain.DrugStatistics{}, nil
}

func (fakeStats) GetDrugStats(ctx context.Context, drug string) (domain.DrugStatistics, error) {
	return domain.DrugStatistics{Drug: drug}, nil
}

func (fakeStats) GetPlatformStats(ctx context.Context) (domain.PlatformStats, error) {
	return domain.PlatformStats{}, nil
}

type fakeRefresher struct {
	calls int
}

func (f *fakeRefresher) Refresh(ctx context.Context) (*snapshot.Snapshot, error) {
	f.calls++
	return snapshot.New(uint64(f.calls), time.Now(), nil), nil
}

func newServer(adminToken string, refresher *fakeRefresher) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler

	api := e.Group("/api/v1")
	SetupHealthRoutes(api, rest.NewHealthHandler(snapshot.NewStore(), nil))
	SetupStatsRoutes(api, rest.NewStatsHandler(fakeStats{}, time.Second))
	SetupAdminRoutes(api, rest.NewAdminHandler(refresher), adminToken)
	return e
}

func TestRoutes(t *testing.T) {
	e := newServer("", &fakeRefresher{})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/stats", http.StatusOK},
		{http.MethodGet, "/api/v1/stats/platform", http.StatusOK},
		{http.MethodGet, "/api/v1/stats/drugs/Wegovy", http.StatusOK},
		{http.MethodGet, "/api/v1/health", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
		{http.MethodPost, "/api/v1/admin/refresh", http.StatusOK},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, tt.path)
	}
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	refresher := &fakeRefresher{}
	e := newServer("s3cret", refresher)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, refresher.calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/refresh", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer s3cret")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, refresher.calls)
}
