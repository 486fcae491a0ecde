package selection

import (
	"sort"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/pkg/logger"
)

// Ranker orders classifications for presentation
// ⭐ SSOT: 결과 정렬 순서는 여기서만
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(logger *logger.Logger) *Ranker {
	return &Ranker{logger: logger}
}

// Rank sorts by tier (A first, Eliminated last), then E-candidates,
// then score descending, then symbol ascending, and assigns 1-based ranks.
// The input slice is not modified.
func (r *Ranker) Rank(items []contracts.Classification) []contracts.RankedClassification {
	ranked := make([]contracts.RankedClassification, len(items))
	for i, c := range items {
		ranked[i] = contracts.RankedClassification{Classification: c}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i].Classification, ranked[j].Classification)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if r.logger != nil && len(ranked) > 0 {
		r.logger.WithFields(map[string]interface{}{
			"total":     len(ranked),
			"top_code":  ranked[0].Symbol,
			"top_tier":  ranked[0].Tier.String(),
			"top_score": ranked[0].Score.Total,
		}).Debug("Ranking completed")
	}

	return ranked
}

func less(a, b contracts.Classification) bool {
	if a.Tier.Order() != b.Tier.Order() {
		return a.Tier.Order() < b.Tier.Order()
	}
	if a.ECandidate != b.ECandidate {
		return a.ECandidate
	}
	if a.Score.Total != b.Score.Total {
		return a.Score.Total > b.Score.Total
	}
	return a.Symbol < b.Symbol
}
