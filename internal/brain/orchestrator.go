package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/metrics"
	"github.com/wonny/radar/internal/s0_data/quality"
	"github.com/wonny/radar/internal/s1_universe"
	"github.com/wonny/radar/internal/s2_signals"
	"github.com/wonny/radar/internal/selection"
	"github.com/wonny/radar/internal/strategyconfig"
	"github.com/wonny/radar/pkg/logger"
)

// Orchestrator coordinates the screening pipeline
// S0 (gate) → S1 (universe) → S2 (firm, score) → S3 (tier) → rank
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	gate       contracts.SnapshotGate
	universe   contracts.UniverseEvaluator
	firm       contracts.FirmChecker
	scorer     contracts.ScoreCalculator
	classifier contracts.TierClassifier
	ranker     *selection.Ranker

	rules      *strategyconfig.Config
	configHash string

	metrics *metrics.Registry
	logger  *logger.Logger
}

// RunConfig holds configuration for a scan run
type RunConfig struct {
	Date     time.Time
	Source   contracts.SnapshotSource
	RunID    string  // 비어있으면 생성
	PriceCap float64 // 0이면 룰 설정값
	Workers  int     // 0이면 룰 설정값
}

// NewOrchestrator wires the rule components for one rule version.
// m may be nil.
func NewOrchestrator(rules *strategyconfig.Config, m *metrics.Registry, log *logger.Logger) (*Orchestrator, error) {
	if err := strategyconfig.Validate(rules); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	hash, err := strategyconfig.Hash(rules)
	if err != nil {
		return nil, fmt.Errorf("hash rules: %w", err)
	}

	return &Orchestrator{
		gate:       quality.NewGate(),
		universe:   s1_universe.NewFilter(),
		firm:       s2_signals.NewFirmEvaluator(rules.Firm),
		scorer:     s2_signals.NewScorer(),
		classifier: selection.NewClassifier(),
		ranker:     selection.NewRanker(log),
		rules:      rules,
		configHash: hash,
		metrics:    m,
		logger:     log.WithComponent("brain"),
	}, nil
}

// Rules returns the active rule version
func (o *Orchestrator) Rules() *strategyconfig.Config {
	return o.rules
}

// ConfigHash returns the fingerprint of the active rules
func (o *Orchestrator) ConfigHash() string {
	return o.configHash
}

// ClassifyOne gates and classifies a single snapshot.
// priceCap <= 0 uses the rule setting.
func (o *Orchestrator) ClassifyOne(snap contracts.Snapshot, priceCap float64) (contracts.Classification, error) {
	if err := o.gate.Check(snap); err != nil {
		return contracts.Classification{}, err
	}
	return o.classify(snap, o.priceCap(priceCap)), nil
}

// classify runs the pure stages; no I/O, no logging
func (o *Orchestrator) classify(snap contracts.Snapshot, priceCap float64) contracts.Classification {
	universe := o.universe.Evaluate(snap, priceCap)
	firm := o.firm.Evaluate(snap)
	score := o.scorer.Score(snap, firm)
	return o.classifier.Classify(snap, universe, firm, score)
}

// Run loads every snapshot of the date and classifies them concurrently.
// Results do not depend on the worker count. Cancelling ctx abandons the
// remaining snapshots and returns ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) (*contracts.ScanResult, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("run config: source is required")
	}

	start := time.Now()
	done := o.metrics.ScanStarted()
	defer done()

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	priceCap := o.priceCap(cfg.PriceCap)
	workers := o.workers(cfg.Workers)
	log := o.logger.WithRun(runID)

	log.WithFields(map[string]interface{}{
		"date":      formatDate(cfg.Date),
		"source":    cfg.Source.Name(),
		"price_cap": priceCap,
		"workers":   workers,
	}).Info("Starting scan")

	result, err := o.run(ctx, cfg, runID, priceCap, workers)
	elapsed := time.Since(start)
	o.metrics.ObserveScan(cfg.Source.Name(), result, err, elapsed)

	if err != nil {
		log.WithError(err).Error("Scan failed")
		return nil, err
	}

	result.Duration = elapsed
	log.WithFields(map[string]interface{}{
		"total":        result.Total(),
		"tier_counts":  result.TierCounts,
		"e_candidates": result.ECandidates,
		"insufficient": len(result.Insufficient),
		"duration":     elapsed.String(),
	}).Info("Scan completed")

	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, cfg RunConfig, runID string, priceCap float64, workers int) (*contracts.ScanResult, error) {
	// S0: load
	snapshots, err := cfg.Source.ListByDate(ctx, cfg.Date)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}

	// S0: gate
	valid, insufficient := o.screenInputs(snapshots)
	o.logger.WithFields(map[string]interface{}{
		"run_id":   runID,
		"loaded":   len(snapshots),
		"valid":    len(valid),
		"coverage": quality.Coverage(valid),
	}).Debug("Snapshots gated")

	// S1 → S3: 종목별 독립 계산 (병렬)
	classifications := make([]contracts.Classification, len(valid))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range valid {
		if gctx.Err() != nil {
			break
		}
		i := i // per-iteration copy; go directive lowered to 1.21 for the local toolchain
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			classifications[i] = o.classify(valid[i], priceCap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Rank + tally
	date := cfg.Date
	if date.IsZero() && len(valid) > 0 {
		date = valid[0].Date
	}

	result := &contracts.ScanResult{
		RunID:        runID,
		Date:         date,
		Source:       cfg.Source.Name(),
		ConfigHash:   o.configHash,
		PriceCap:     priceCap,
		Ranked:       o.ranker.Rank(classifications),
		TierCounts:   make(map[string]int, len(contracts.Tiers)),
		Insufficient: insufficient,
	}
	for _, tier := range contracts.Tiers {
		result.TierCounts[tier.String()] = 0
	}
	for _, c := range classifications {
		result.TierCounts[c.Tier.String()]++
		if c.ECandidate {
			result.ECandidates++
		}
	}

	return result, nil
}

// screenInputs splits snapshots into classifiable ones and insufficient ones.
// A repeated symbol keeps its first occurrence.
func (o *Orchestrator) screenInputs(snapshots []contracts.Snapshot) ([]contracts.Snapshot, map[string]string) {
	valid := make([]contracts.Snapshot, 0, len(snapshots))
	insufficient := make(map[string]string)
	seen := make(map[string]struct{}, len(snapshots))

	for i, snap := range snapshots {
		key := snap.Symbol
		if key == "" {
			key = fmt.Sprintf("#%d", i)
		}

		if err := o.gate.Check(snap); err != nil {
			insufficient[key] = err.Error()
			continue
		}
		if _, dup := seen[key]; dup {
			insufficient[fmt.Sprintf("%s#%d", key, i)] = fmt.Sprintf("%s: duplicate symbol", contracts.ErrInsufficientData)
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, snap)
	}

	return valid, insufficient
}

func (o *Orchestrator) priceCap(override float64) float64 {
	if override > 0 {
		return override
	}
	return o.rules.Universe.PriceCap
}

func (o *Orchestrator) workers(override int) int {
	if override > 0 && override <= strategyconfig.MaxWorkers {
		return override
	}
	return o.rules.Scan.Workers
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "(source default)"
	}
	return t.Format("2006-01-02")
}
