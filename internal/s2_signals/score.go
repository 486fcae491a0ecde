package s2_signals

import (
	"math"

	"github.com/wonny/radar/internal/contracts"
)

// Score ceilings and weights (rule version v7.9.8)
const (
	GrowthCeiling    = 30.0
	QualityCeiling   = 30.0
	MomentumCeiling  = 25.0
	ValuationCeiling = 15.0

	// FixedValuation stands in for a valuation model that is not implemented yet
	FixedValuation = 10.0

	componentPoints = 15.0 // 각 성장/품질 요소 만점
	ratioRangeMax   = 0.30 // [0, 0.30] → [0, 15]
	momentumAward   = 5.0

	// 금융주 자산건전성 복합 지표
	assetQualityBase     = 1.5
	assetQualityNPLScale = 10.0
	assetQualityRawMax   = 2.0

	// 점수 계산 전용 중립값 (유니버스 판정에는 사용 금지)
	neutralNPLRatio      = 0.02
	neutralCoverageRatio = 0.5
)

// Scorer computes the composite 0-100 score
// ⭐ SSOT: 종합 점수 계산은 여기서만
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes growth, quality, momentum and valuation sub-scores.
// Total is the clamped sum rounded half away from zero (math.Round);
// sub-scores are non-negative so this equals round-half-up.
func (s *Scorer) Score(snap contracts.Snapshot, firm contracts.FirmResult) contracts.ScoreResult {
	result := contracts.ScoreResult{
		Growth:    clamp(growthScore(snap), 0, GrowthCeiling),
		Quality:   clamp(qualityScore(snap), 0, QualityCeiling),
		Momentum:  clamp(momentumScore(snap, firm), 0, MomentumCeiling),
		Valuation: clamp(FixedValuation, 0, ValuationCeiling),
	}

	total := clamp(result.Growth+result.Quality+result.Momentum+result.Valuation, 0, 100)
	result.Total = int(math.Round(total))
	return result
}

func growthScore(snap contracts.Snapshot) float64 {
	if snap.IsFinancial {
		return ratioPoints(snap.EPSGrowth4Q) + ratioPoints(snap.NetIncomeGrowth3M)
	}
	return linearPoints(snap.AvgRevenueYoY()) + ratioPoints(snap.EPSGrowth4Q)
}

func qualityScore(snap contracts.Snapshot) float64 {
	if snap.IsFinancial {
		return ratioPoints(snap.ROETTM) + assetQualityPoints(snap.NPLRatio, snap.CoverageRatio)
	}
	return ratioPoints(snap.ROETTM) + ratioPoints(snap.OPMTTM)
}

// assetQualityPoints maps NPL and coverage to [0, 15].
// Absent inputs take neutral placeholders here only.
func assetQualityPoints(npl, coverage *float64) float64 {
	n := neutralNPLRatio
	if npl != nil {
		n = *npl
	}
	c := neutralCoverageRatio
	if coverage != nil {
		c = *coverage
	}

	raw := math.Max(0, assetQualityBase-n*assetQualityNPLScale+(c-1.0))
	raw = clamp(raw, 0, assetQualityRawMax)
	return raw / assetQualityRawMax * componentPoints
}

func momentumScore(snap contracts.Snapshot, firm contracts.FirmResult) float64 {
	score := 0.0
	if snap.MA60 != nil && snap.Close > *snap.MA60 {
		score += momentumAward
	}
	if snap.MA240 != nil && snap.Close > *snap.MA240 {
		score += momentumAward
	}
	if snap.MA20 != nil && snap.MA60 != nil && *snap.MA20 > *snap.MA60 {
		score += momentumAward
	}
	if snap.AvgTurnover20 != nil && snap.TradedValue() > *snap.AvgTurnover20 {
		score += momentumAward
	}
	if firm.Group {
		score += momentumAward
	}
	return score
}

// ratioPoints scores an optional ratio; absent earns nothing
func ratioPoints(v *float64) float64 {
	if v == nil {
		return 0
	}
	return linearPoints(*v)
}

// linearPoints maps [0, 0.30] onto [0, 15], clamping outside the range
func linearPoints(v float64) float64 {
	return clamp(v, 0, ratioRangeMax) * (componentPoints / ratioRangeMax)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
