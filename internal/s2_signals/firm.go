package s2_signals

import (
	"github.com/wonny/radar/internal/contracts"
)

// Firm condition thresholds (rule version v7.9.8)
const (
	VolumeSurgeMultiple  = 1.5  // 당일 거래대금 / 20일 평균
	TrendPremium         = 1.02 // close >= MA240 * 1.02
	MinIndustryAdvance5D = 0.6  // 업종 5일 상승 종목 비율
)

// FirmPolicy holds the overridable defaults of the Firm check
type FirmPolicy struct {
	// GroupDefaultWhenMissing decides the group condition when neither the
	// industry advance ratio nor the industry index/MA60 pair is available.
	GroupDefaultWhenMissing bool `yaml:"group_default_when_missing" json:"group_default_when_missing"`
}

// DefaultFirmPolicy returns the permissive policy used for sparse data
func DefaultFirmPolicy() FirmPolicy {
	return FirmPolicy{GroupDefaultWhenMissing: true}
}

// FirmEvaluator evaluates the four momentum confirmation conditions
// ⭐ SSOT: Firm 조건 판정은 여기서만
type FirmEvaluator struct {
	policy FirmPolicy
}

// NewFirmEvaluator creates a new Firm evaluator
func NewFirmEvaluator(policy FirmPolicy) *FirmEvaluator {
	return &FirmEvaluator{policy: policy}
}

// Policy returns the active policy
func (e *FirmEvaluator) Policy() FirmPolicy {
	return e.policy
}

// Evaluate returns the Firm vector for a snapshot. Conditions are independent.
func (e *FirmEvaluator) Evaluate(snap contracts.Snapshot) contracts.FirmResult {
	return contracts.NewFirmResult(
		priceCondition(snap),
		volumeCondition(snap),
		trendCondition(snap),
		e.groupCondition(snap),
	)
}

// priceCondition requires both MA60 and MA240; no fallback to the short average
func priceCondition(snap contracts.Snapshot) bool {
	if snap.MA60 == nil || snap.MA240 == nil {
		return false
	}
	return snap.Close > *snap.MA60 && snap.Close > *snap.MA240
}

func volumeCondition(snap contracts.Snapshot) bool {
	if snap.AvgTurnover20 == nil {
		return false
	}
	return snap.TradedValue() >= VolumeSurgeMultiple*(*snap.AvgTurnover20)
}

func trendCondition(snap contracts.Snapshot) bool {
	if snap.MA240 == nil {
		return false
	}
	return snap.Close >= *snap.MA240*TrendPremium
}

func (e *FirmEvaluator) groupCondition(snap contracts.Snapshot) bool {
	hasAdvance := snap.IndustryAdvanceRatio5D != nil
	hasIndex := snap.IndustryClose != nil && snap.IndustryMA60 != nil

	if !hasAdvance && !hasIndex {
		return e.policy.GroupDefaultWhenMissing
	}

	if hasAdvance && *snap.IndustryAdvanceRatio5D >= MinIndustryAdvance5D {
		return true
	}
	return hasIndex && *snap.IndustryClose > *snap.IndustryMA60
}
