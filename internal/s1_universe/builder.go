package s1_universe

import (
	"context"
	"time"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/pkg/logger"
)

// Builder runs the universe filter over a batch of snapshots
type Builder struct {
	filter   contracts.UniverseEvaluator
	priceCap float64
	logger   *logger.Logger
}

// NewBuilder creates a new universe builder
func NewBuilder(filter contracts.UniverseEvaluator, priceCap float64, log *logger.Logger) *Builder {
	if priceCap <= 0 {
		priceCap = DefaultPriceCap
	}
	return &Builder{
		filter:   filter,
		priceCap: priceCap,
		logger:   log,
	}
}

// Build evaluates every snapshot and summarizes membership.
// Per-snapshot results are returned keyed by symbol.
func (b *Builder) Build(ctx context.Context, date time.Time, snapshots []contracts.Snapshot) (*contracts.Universe, map[string]contracts.UniverseResult, error) {
	universe := &contracts.Universe{
		Date:     date,
		Stocks:   make([]string, 0),
		Excluded: make(map[string]string),
	}
	results := make(map[string]contracts.UniverseResult, len(snapshots))

	for _, snap := range snapshots {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		result := b.filter.Evaluate(snap, b.priceCap)
		results[snap.Symbol] = result

		if !result.Passed {
			universe.Excluded[snap.Symbol] = result.Reason
			continue
		}
		universe.Stocks = append(universe.Stocks, snap.Symbol)
	}

	universe.TotalCount = len(snapshots)

	b.logger.WithFields(map[string]interface{}{
		"date":      date.Format("2006-01-02"),
		"total":     universe.TotalCount,
		"passed":    universe.Count(),
		"excluded":  len(universe.Excluded),
		"price_cap": b.priceCap,
	}).Info("Universe built")

	return universe, results, nil
}

// PriceCap returns the price cap in use
func (b *Builder) PriceCap() float64 {
	return b.priceCap
}
