package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/radar/internal/brain"
	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/s0_data"
	"github.com/wonny/radar/internal/strategyconfig"
	"github.com/wonny/radar/pkg/logger"
)

// SnapshotLookup fetches a single stored snapshot
type SnapshotLookup interface {
	GetBySymbol(ctx context.Context, date time.Time, symbol string) (contracts.Snapshot, error)
}

// ScreeningHandler serves classification and scan endpoints
// ⭐ SSOT: 스크리닝 API 핸들러는 이 구조체에서만
type ScreeningHandler struct {
	orchestrator *brain.Orchestrator
	source       contracts.SnapshotSource // nil이면 날짜 기반 스캔 불가
	lookup       SnapshotLookup           // nil이면 종목 단건 조회 불가
	logger       *logger.Logger
}

// NewScreeningHandler creates a new screening handler. source may be nil.
func NewScreeningHandler(orch *brain.Orchestrator, source contracts.SnapshotSource, log *logger.Logger) *ScreeningHandler {
	return &ScreeningHandler{
		orchestrator: orch,
		source:       source,
		logger:       log,
	}
}

// WithLookup enables GET /api/classify/{date}/{symbol}
func (h *ScreeningHandler) WithLookup(lookup SnapshotLookup) *ScreeningHandler {
	h.lookup = lookup
	return h
}

// ClassifyRequest is the body of POST /api/classify
type ClassifyRequest struct {
	Snapshot contracts.Snapshot `json:"snapshot"`
	PriceCap float64            `json:"price_cap,omitempty"`
}

// Classify classifies a single snapshot
// POST /api/classify
func (h *ScreeningHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.PriceCap < 0 {
		respondError(w, http.StatusBadRequest, "price_cap must not be negative")
		return
	}

	result, err := h.orchestrator.ClassifyOne(req.Snapshot, req.PriceCap)
	if err != nil {
		if errors.Is(err, contracts.ErrInsufficientData) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to classify snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to classify snapshot")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ClassifyStored classifies one stored snapshot
// GET /api/classify/{date}/{symbol}?price_cap=80
func (h *ScreeningHandler) ClassifyStored(w http.ResponseWriter, r *http.Request) {
	if h.lookup == nil {
		respondError(w, http.StatusServiceUnavailable, "No snapshot store configured (set DATABASE_URL)")
		return
	}

	vars := mux.Vars(r)
	date, err := time.Parse(s0_data.DateLayout, vars["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (expected YYYY-MM-DD)")
		return
	}

	priceCap, _, ok := parseScanQuery(w, r)
	if !ok {
		return
	}

	snap, err := h.lookup.GetBySymbol(r.Context(), date, vars["symbol"])
	if err != nil {
		if errors.Is(err, s0_data.ErrSnapshotNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to load snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}

	result, err := h.orchestrator.ClassifyOne(snap, priceCap)
	if err != nil {
		if errors.Is(err, contracts.ErrInsufficientData) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to classify snapshot")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Scan classifies a posted document of snapshots
// POST /api/scan?price_cap=80&tier=A
func (h *ScreeningHandler) Scan(w http.ResponseWriter, r *http.Request) {
	priceCap, tier, ok := parseScanQuery(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	doc, err := s0_data.ParseDocument(data, "json")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.runScan(w, r, brain.RunConfig{
		Source:   s0_data.NewDocumentSource("request", doc),
		PriceCap: priceCap,
	}, tier)
}

// ScanByDate classifies every snapshot of a date from the configured source
// GET /api/scan/{date}?price_cap=80&tier=A
func (h *ScreeningHandler) ScanByDate(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		respondError(w, http.StatusServiceUnavailable, "No snapshot source configured (set DATABASE_URL)")
		return
	}

	date, err := time.Parse(s0_data.DateLayout, mux.Vars(r)["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (expected YYYY-MM-DD)")
		return
	}

	priceCap, tier, ok := parseScanQuery(w, r)
	if !ok {
		return
	}

	h.runScan(w, r, brain.RunConfig{
		Date:     date,
		Source:   h.source,
		PriceCap: priceCap,
	}, tier)
}

// Rules returns the active rule version and its hash
// GET /api/rules
func (h *ScreeningHandler) Rules(w http.ResponseWriter, r *http.Request) {
	fp, err := strategyconfig.NewFingerprint(h.orchestrator.Rules())
	if err != nil {
		h.logger.WithError(err).Error("Failed to fingerprint rules")
		respondError(w, http.StatusInternalServerError, "Failed to read rules")
		return
	}
	respondJSON(w, http.StatusOK, fp)
}

func (h *ScreeningHandler) runScan(w http.ResponseWriter, r *http.Request, cfg brain.RunConfig, tier *contracts.Tier) {
	result, err := h.orchestrator.Run(r.Context(), cfg)
	if err != nil {
		if r.Context().Err() != nil {
			respondError(w, http.StatusRequestTimeout, "Request cancelled")
			return
		}
		h.logger.WithError(err).Error("Scan failed")
		respondError(w, http.StatusInternalServerError, "Scan failed: "+err.Error())
		return
	}

	if tier != nil {
		result.Ranked = result.ByTier(*tier)
	}
	respondJSON(w, http.StatusOK, result)
}

// parseScanQuery reads ?price_cap= and ?tier=; writes 400 on bad input
func parseScanQuery(w http.ResponseWriter, r *http.Request) (float64, *contracts.Tier, bool) {
	q := r.URL.Query()

	var priceCap float64
	if v := q.Get("price_cap"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "price_cap must be a positive number")
			return 0, nil, false
		}
		priceCap = parsed
	}

	var tier *contracts.Tier
	if v := q.Get("tier"); v != "" {
		parsed, err := contracts.ParseTier(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return 0, nil, false
		}
		tier = &parsed
	}

	return priceCap, tier, true
}
