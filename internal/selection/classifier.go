package selection

import (
	"fmt"
	"strings"

	"github.com/wonny/radar/internal/contracts"
)

// Tier thresholds (rule version v7.9.8)
const (
	TierAMinScore = 70

	TierBFirmCount = 3
	TierBMinScore  = 60
	TierBMaxScore  = 69

	TierCMinFirmCount  = 3
	TierCMinROE        = 0.10 // 초과
	TierCMinOPM        = 0.03
	RelaxedAvgRevenue  = 0.0  // 평균 매출 성장 하한
	RelaxedLastRevenue = 0.05 // 또는 최근월 매출 성장 하한

	TierDMinFirmCount    = 2
	TierDMinBottomLine   = 2 // 3개 중 최소 충족 개수
	BottomLineMinROE     = 0.08
	BottomLineMinOPM     = 0.02
	BottomLineMinRevenue = -0.03
)

// E-candidate thresholds
const (
	EMinRS60              = 75.0
	EMinInstNetBuy20      = 0.0
	EMaxIndustryRank      = 3
	EMinLastQuarterGrowth = 0.10
)

const universeFailedReason = "universe filter failed"

// Classifier assigns the final tier and the E-candidate flag
// ⭐ SSOT: 등급 판정 규칙은 여기서만
type Classifier struct{}

// NewClassifier creates a new classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify walks the decision tree; the first matching step wins.
// Absent optional fields fail the conditions that use them.
func (c *Classifier) Classify(
	snap contracts.Snapshot,
	universe contracts.UniverseResult,
	firm contracts.FirmResult,
	score contracts.ScoreResult,
) contracts.Classification {
	result := contracts.Classification{
		Symbol:   snap.Symbol,
		Name:     snap.Name,
		Tier:     contracts.TierEliminated,
		Universe: universe,
		Firm:     firm,
		Score:    score,
	}

	if !universe.Passed {
		result.Reason = eliminatedReason(universe)
		return result
	}

	result.ECandidate = IsECandidate(snap)
	result.Tier, result.Reason = decideTier(snap, firm, score)
	return result
}

func decideTier(snap contracts.Snapshot, firm contracts.FirmResult, score contracts.ScoreResult) (contracts.Tier, string) {
	if firm.IsFirm && score.Total >= TierAMinScore {
		return contracts.TierA, fmt.Sprintf("firm 4/4, score %d >= %d", score.Total, TierAMinScore)
	}

	if firm.Count == TierBFirmCount {
		return contracts.TierB, fmt.Sprintf("firm %d/4", firm.Count)
	}
	if score.Total >= TierBMinScore && score.Total <= TierBMaxScore {
		return contracts.TierB, fmt.Sprintf("score %d in [%d, %d]", score.Total, TierBMinScore, TierBMaxScore)
	}

	if firm.Count >= TierCMinFirmCount && firm.Price &&
		above(snap.ROETTM, TierCMinROE) &&
		atLeast(snap.OPMTTM, TierCMinOPM) &&
		relaxedGrowth(snap) {
		return contracts.TierC, fmt.Sprintf("firm %d/4 with price, quality and relaxed growth", firm.Count)
	}

	bottom := bottomLineCount(snap)
	if firm.Count >= TierDMinFirmCount && bottom >= TierDMinBottomLine {
		return contracts.TierD, fmt.Sprintf("firm %d/4, bottom line %d/3", firm.Count, bottom)
	}

	return contracts.TierEliminated, fmt.Sprintf("no tier matched (firm %d/4, score %d, bottom line %d/3)",
		firm.Count, score.Total, bottom)
}

// relaxedGrowth: 평균 매출 성장 >= 0 또는 최근월 >= 5%
func relaxedGrowth(snap contracts.Snapshot) bool {
	return snap.AvgRevenueYoY() >= RelaxedAvgRevenue || atLeast(snap.RevenueYoYM1, RelaxedLastRevenue)
}

// bottomLineCount tallies ROE, OPM and average revenue growth floors
func bottomLineCount(snap contracts.Snapshot) int {
	n := 0
	if atLeast(snap.ROETTM, BottomLineMinROE) {
		n++
	}
	if atLeast(snap.OPMTTM, BottomLineMinOPM) {
		n++
	}
	if snap.AvgRevenueYoY() >= BottomLineMinRevenue {
		n++
	}
	return n
}

// IsECandidate reports the early-turnaround flag.
// Every input must be present; the caller guarantees the universe passed.
func IsECandidate(snap contracts.Snapshot) bool {
	if snap.RS60 < EMinRS60 {
		return false
	}
	if !atLeast(snap.InstNetBuy20, EMinInstNetBuy20) {
		return false
	}
	if snap.IndustryRankBySize == nil || *snap.IndustryRankBySize > EMaxIndustryRank {
		return false
	}
	return atLeast(snap.LastQuarterGrowth, EMinLastQuarterGrowth)
}

func eliminatedReason(universe contracts.UniverseResult) string {
	if strings.HasPrefix(universe.Reason, universeFailedReason) {
		return universe.Reason
	}
	return universeFailedReason
}

func atLeast(v *float64, min float64) bool { return v != nil && *v >= min }
func above(v *float64, min float64) bool   { return v != nil && *v > min }
