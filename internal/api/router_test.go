package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/wonny/radar/internal/api/handlers"
	"github.com/wonny/radar/internal/brain"
	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/metrics"
	"github.com/wonny/radar/internal/s0_data"
	"github.com/wonny/radar/internal/strategyconfig"
	"github.com/wonny/radar/pkg/logger"
)

const leaderJSON = `{
	"symbol": "000660", "name": "Leader", "close": 50, "volume": 3000000,
	"ma20": 48, "ma60": 45, "ma240": 40,
	"avg_turnover_20": 100000000, "turnover_ratio_20": 0.01, "market_cap": 2000000000,
	"roe_ttm": 0.30, "opm_ttm": 0.30, "debt_ratio": 0.3,
	"revenue_yoy_m1": 0.06, "revenue_yoy_m2": 0.07, "revenue_yoy_m3": 0.08,
	"eps_growth_4q": 0.30, "rs60": 60
}`

type fixedSource struct{ snapshots []contracts.Snapshot }

func (s *fixedSource) Name() string { return "fixed" }

func (s *fixedSource) ListByDate(_ context.Context, date time.Time) ([]contracts.Snapshot, error) {
	out := make([]contracts.Snapshot, len(s.snapshots))
	for i, snap := range s.snapshots {
		snap.Date = date
		out[i] = snap
	}
	return out, nil
}

type mapLookup map[string]contracts.Snapshot

func (m mapLookup) GetBySymbol(_ context.Context, date time.Time, symbol string) (contracts.Snapshot, error) {
	snap, ok := m[symbol]
	if !ok {
		return contracts.Snapshot{}, fmt.Errorf("%w: %s", s0_data.ErrSnapshotNotFound, symbol)
	}
	snap.Date = date
	return snap, nil
}

func newTestRouter(t *testing.T, source contracts.SnapshotSource, limiter *rate.Limiter) (http.Handler, *metrics.Registry) {
	t.Helper()
	return newTestRouterWithLookup(t, source, nil, limiter)
}

func newTestRouterWithLookup(t *testing.T, source contracts.SnapshotSource, lookup handlers.SnapshotLookup, limiter *rate.Limiter) (http.Handler, *metrics.Registry) {
	t.Helper()

	m := metrics.New()
	orch, err := brain.NewOrchestrator(strategyconfig.Default(), m, logger.Nop())
	require.NoError(t, err)

	screening := handlers.NewScreeningHandler(orch, source, logger.Nop())
	if lookup != nil {
		screening.WithLookup(lookup)
	}

	return NewRouter(RouterDeps{
		Screening: screening,
		Health:    handlers.NewHealthHandler(nil, nil),
		Metrics:   m,
		Limiter:   limiter,
		Logger:    logger.Nop(),
	}), m
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t, nil, nil)

	rec := do(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "radar-api", body["service"])
}

func TestClassify(t *testing.T) {
	h, _ := newTestRouter(t, nil, nil)

	rec := do(h, http.MethodPost, "/api/classify", `{"snapshot":`+leaderJSON+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got contracts.Classification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, contracts.TierA, got.Tier)
	assert.Equal(t, 84, got.Score.Total)
	assert.True(t, got.Firm.IsFirm)
	assert.Contains(t, rec.Body.String(), `"tier":"A"`)

	rec = do(h, http.MethodPost, "/api/classify", `{"snapshot":`+leaderJSON+`,"price_cap":40}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, contracts.TierEliminated, got.Tier)
}

func TestClassify_BadInput(t *testing.T) {
	h, _ := newTestRouter(t, nil, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"snapshot":`, http.StatusBadRequest},
		{"unknown field", `{"snapshot":{"symbol":"A","close":1,"roe":0.1}}`, http.StatusBadRequest},
		{"negative price cap", `{"snapshot":` + leaderJSON + `,"price_cap":-1}`, http.StatusBadRequest},
		{"insufficient data", `{"snapshot":{"symbol":"A","close":0}}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/api/classify", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestClassifyStored(t *testing.T) {
	t.Run("no store configured", func(t *testing.T) {
		h, _ := newTestRouter(t, nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/api/classify/2025-01-15/000660", "").Code)
	})

	var leader contracts.Snapshot
	require.NoError(t, json.Unmarshal([]byte(leaderJSON), &leader))
	lookup := mapLookup{
		"000660": leader,
		"BROKEN": {Symbol: "BROKEN", Close: -1},
	}
	h, _ := newTestRouterWithLookup(t, nil, lookup, nil)

	rec := do(h, http.MethodGet, "/api/classify/2025-01-15/000660", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got contracts.Classification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, contracts.TierA, got.Tier)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/classify/2025-01-15/999999", http.StatusNotFound},
		{"/api/classify/2025-01-15/BROKEN", http.StatusUnprocessableEntity},
		{"/api/classify/20250115/000660", http.StatusBadRequest},
		{"/api/classify/2025-01-15/000660?price_cap=0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, do(h, http.MethodGet, tt.target, "").Code)
		})
	}
}

func TestScan_Document(t *testing.T) {
	h, _ := newTestRouter(t, nil, nil)

	leveraged := strings.Replace(leaderJSON, `"debt_ratio": 0.3`, `"debt_ratio": 0.65`, 1)
	leveraged = strings.Replace(leveraged, `"000660"`, `"035720"`, 1)
	doc := `{"date":"2025-01-15","snapshots":[` + leveraged + `,` + leaderJSON + `]}`

	rec := do(h, http.MethodPost, "/api/scan", doc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result contracts.ScanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Ranked, 2)
	assert.Equal(t, "000660", result.Ranked[0].Symbol)
	assert.Equal(t, 1, result.Ranked[0].Rank)
	assert.Equal(t, contracts.TierEliminated, result.Ranked[1].Tier)
	assert.Equal(t, "request", result.Source)
	assert.Equal(t, "2025-01-15", result.Date.Format("2006-01-02"))

	rec = do(h, http.MethodPost, "/api/scan?tier=eliminated", doc)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Ranked, 1)
	assert.Equal(t, "035720", result.Ranked[0].Symbol)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/api/scan?tier=Z", doc).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/api/scan?price_cap=abc", doc).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/api/scan", `{"snapshots":[]}`).Code)
}

func TestScanByDate(t *testing.T) {
	t.Run("no source configured", func(t *testing.T) {
		h, _ := newTestRouter(t, nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/api/scan/2025-01-15", "").Code)
	})

	t.Run("source backed", func(t *testing.T) {
		var snap contracts.Snapshot
		require.NoError(t, json.Unmarshal([]byte(leaderJSON), &snap))
		h, _ := newTestRouter(t, &fixedSource{snapshots: []contracts.Snapshot{snap}}, nil)

		rec := do(h, http.MethodGet, "/api/scan/2025-01-15?price_cap=100", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result contracts.ScanResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "fixed", result.Source)
		assert.Equal(t, 100.0, result.PriceCap)
		assert.Equal(t, 1, result.TierCounts["A"])

		assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/api/scan/15-01-2025", "").Code)
	})
}

func TestRules(t *testing.T) {
	h, _ := newTestRouter(t, nil, nil)

	rec := do(h, http.MethodGet, "/api/rules", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fp strategyconfig.Fingerprint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fp))
	assert.Equal(t, "radar_v798", fp.StrategyID)
	assert.Len(t, fp.Hash, 64)
	assert.Equal(t, 80.0, fp.Config.Universe.PriceCap)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, nil, nil)

	do(h, http.MethodGet, "/api/rules", "")
	rec := do(h, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `radar_http_requests_total{method="GET",route="/api/rules",status="200"} 1`)
}

func TestRateLimit(t *testing.T) {
	h, _ := newTestRouter(t, nil, rate.NewLimiter(rate.Every(time.Hour), 1))

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/rules", "").Code)

	rec := do(h, http.MethodGet, "/api/rules", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// health is outside the limited subrouter
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "").Code)
}

func TestNewLimiter(t *testing.T) {
	unlimited := NewLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, unlimited.Allow())
	}

	limited := NewLimiter(1, 0)
	assert.True(t, limited.Allow())
	assert.False(t, limited.Allow())
}

func TestRecoveryMiddleware(t *testing.T) {
	m := metrics.New()
	h := loggingMiddleware(logger.Nop(), m)(recoveryMiddleware(logger.Nop())(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
	))

	rec := do(h, http.MethodGet, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
