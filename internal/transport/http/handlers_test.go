package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "github.com/jasonmurdy-collab/MarketPulse/internal/errors"
	"github.com/jasonmurdy-collab/MarketPulse/internal/services"
	"github.com/jasonmurdy-collab/MarketPulse/internal/store"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

type mockIngestion struct {
	mock.Mock
}

func (m *mockIngestion) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockIngestion) Running() bool {
	return m.Called().Bool(0)
}

func (m *mockIngestion) LastReport() (domain.RunReport, bool) {
	args := m.Called()
	return args.Get(0).(domain.RunReport), args.Bool(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fp(v float64) *float64 { return &v }
func ip(v int64) *int64     { return &v }

func seededStore() *store.MarketStore {
	st := store.New()
	st.ReplacePriority(
		[]domain.WeeklyRecord{
			{ID: "w-Kingston-0", Region: domain.RegionKingston, WeekEndDate: "2024-01-07", AvgPrice: fp(500000), SalesVolume: ip(40)},
			{ID: "w-Kingston-1", Region: domain.RegionKingston, WeekEndDate: "2024-01-14", AvgPrice: fp(550000), SalesVolume: ip(44)},
		},
		[]domain.MonthlyRecord{
			{ID: "m-Kingston-0", Region: domain.RegionKingston, Year: 2024, Month: "January", Date: "2024-01-01", AvgPrice: fp(600000)},
		},
	)
	st.AppendBackground(
		[]domain.WeeklyRecord{
			{ID: "w-Napanee-0", Region: domain.RegionNapanee, WeekEndDate: "2024-01-07", AvgPrice: fp(350000)},
		},
		nil,
	)
	return st
}

func newTestRouter(st *store.MarketStore, ing Ingestion) http.Handler {
	logger := testLogger()
	h := NewMarketHandler(services.NewMarketService(st, logger), ing, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api/market", h.Routes())
	return r
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Count  int             `json:"count"`
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMarketHandler_Queries(t *testing.T) {
	router := newTestRouter(seededStore(), &mockIngestion{})

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCount  int
		wantFirst  string
	}{
		{name: "weekly newest first", target: "/api/market/weekly", wantStatus: http.StatusOK, wantCount: 3, wantFirst: "w-Kingston-1"},
		{name: "weekly by region", target: "/api/market/weekly?region=napanee", wantStatus: http.StatusOK, wantCount: 1, wantFirst: "w-Napanee-0"},
		{name: "weekly recent window", target: "/api/market/weekly?region=Kingston&recent=true", wantStatus: http.StatusOK, wantCount: 2, wantFirst: "w-Kingston-1"},
		{name: "monthly", target: "/api/market/monthly", wantStatus: http.StatusOK, wantCount: 1, wantFirst: "m-Kingston-0"},
		{name: "latest weekly per region", target: "/api/market/latest", wantStatus: http.StatusOK, wantCount: 2, wantFirst: "w-Kingston-1"},
		{name: "latest monthly", target: "/api/market/latest?granularity=monthly", wantStatus: http.StatusOK, wantCount: 1, wantFirst: "m-Kingston-0"},
		{name: "unknown region", target: "/api/market/weekly?region=Ottawa", wantStatus: http.StatusBadRequest},
		{name: "bad recent flag", target: "/api/market/weekly?recent=maybe", wantStatus: http.StatusBadRequest},
		{name: "bad granularity", target: "/api/market/latest?granularity=daily", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				var problem map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
				assert.Equal(t, "INVALID_PARAMETER", problem["error_code"])
				return
			}

			var body envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "success", body.Status)
			assert.Equal(t, tt.wantCount, body.Count)

			var items []struct {
				ID string `json:"id"`
			}
			require.NoError(t, json.Unmarshal(body.Data, &items))
			require.NotEmpty(t, items)
			assert.Equal(t, tt.wantFirst, items[0].ID)
		})
	}
}

func TestMarketHandler_Status(t *testing.T) {
	router := newTestRouter(seededStore(), &mockIngestion{})

	rec := do(t, router, http.MethodGet, "/api/market/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status domain.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 3, status.WeeklyCount)
	assert.Equal(t, 1, status.MonthlyCount)
	assert.False(t, status.Loading)
}

func TestMarketHandler_Regions(t *testing.T) {
	router := newTestRouter(store.New(), &mockIngestion{})

	rec := do(t, router, http.MethodGet, "/api/market/regions")
	require.Equal(t, http.StatusOK, rec.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.RegionCount(), body.Count)
}

func TestMarketHandler_RegionSummary(t *testing.T) {
	router := newTestRouter(seededStore(), &mockIngestion{})

	t.Run("percent change", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/market/regions/kingston/summary")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body struct {
			Data struct {
				CurrentPeriod  string `json:"current_period"`
				PreviousPeriod string `json:"previous_period"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "2024-01-14", body.Data.CurrentPeriod)
		assert.Equal(t, "2024-01-07", body.Data.PreviousPeriod)
	})

	t.Run("region without data", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/market/regions/Belleville/summary?granularity=monthly")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "NO_MARKET_DATA")
	})

	t.Run("unknown region", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/market/regions/Ottawa/summary")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMarketHandler_Refresh(t *testing.T) {
	tests := []struct {
		name       string
		startErr   error
		wantStatus int
	}{
		{name: "accepted", wantStatus: http.StatusAccepted},
		{name: "already running", startErr: services.ErrIngestionRunning, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing := &mockIngestion{}
			ing.On("Start", mock.Anything).Return(tt.startErr).Once()

			rec := do(t, newTestRouter(seededStore(), ing), http.MethodPost, "/api/market/refresh")
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			ing.AssertExpectations(t)
		})
	}
}

func TestMarketHandler_Report(t *testing.T) {
	ing := &mockIngestion{}
	ing.On("LastReport").Return(domain.RunReport{}, false).Once()
	router := newTestRouter(seededStore(), ing)

	rec := do(t, router, http.MethodGet, "/api/market/report")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ing.On("LastReport").Return(domain.RunReport{TraceID: "abc", Weekly: 3}, true).Once()
	ing.On("Running").Return(false).Once()

	rec = do(t, router, http.MethodGet, "/api/market/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"trace_id":"abc"`)
	ing.AssertExpectations(t)
}

func TestMarketHandler_Exports(t *testing.T) {
	router := newTestRouter(seededStore(), &mockIngestion{})

	t.Run("weekly csv", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/market/export.csv")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "marketpulse-weekly.csv")

		rows, err := csv.NewReader(rec.Body).ReadAll()
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("monthly display csv", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/market/export.csv?granularity=monthly&display=true")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "$600,000")
	})

	t.Run("bad granularity", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/market/export.csv?granularity=yearly")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("workbook", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/market/export.xlsx")
		require.Equal(t, http.StatusOK, rec.Code)

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Weekly")
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})
}

func TestHealthHandler(t *testing.T) {
	logger := testLogger()

	tests := []struct {
		name       string
		st         *store.MarketStore
		handler    func(*HealthHandler) http.HandlerFunc
		wantStatus int
		wantBody   string
	}{
		{
			name:       "health",
			st:         store.New(),
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.HealthCheck },
			wantStatus: http.StatusOK,
			wantBody:   `"status":"ok"`,
		},
		{
			name:       "ready while loading",
			st:         store.New(),
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"status":"not_ready"`,
		},
		{
			name:       "ready with data",
			st:         seededStore(),
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			wantStatus: http.StatusOK,
			wantBody:   `"status":"ready"`,
		},
		{
			name:       "live",
			st:         store.New(),
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.LivenessCheck },
			wantStatus: http.StatusOK,
			wantBody:   `"status":"alive"`,
		},
		{
			name:       "version",
			st:         store.New(),
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.Version },
			wantStatus: http.StatusOK,
			wantBody:   `"version"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(services.NewHealthService(tt.st, nil, nil, logger), logger)
			rec := do(t, tt.handler(h), http.MethodGet, "/")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
