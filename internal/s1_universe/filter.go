package s1_universe

import (
	"strings"

	"github.com/wonny/radar/internal/contracts"
)

// Rule version v7.9.8 universe thresholds
const (
	DefaultPriceCap = 80.0

	MinMarketCap       = 1_000_000_000 // 시가총액 하한
	MinRevenueYoY      = 0.05          // 월매출 YoY (3개월 모두)
	MinROE             = 0.10          // ROE 초과
	MinOPM             = 0.05          // 영업이익률 이상
	MaxDebtRatio       = 0.60          // 부채비율 미만
	MinAvgTurnover20   = 50_000_000    // 20일 평균 거래대금
	MinTurnoverRatio20 = 0.003         // 20일 회전율
	MaxNPLRatio        = 0.01          // 부실채권비율 미만 (금융)
	MinCoverageRatio   = 1.0           // 충당금 적립률 초과 (금융)
	MinFinancialGrowth = 0.05          // EPS 4Q 또는 순이익 3M 성장 (금융)
)

// NonFinancialChecks is the evaluation order for non-financial securities
var NonFinancialChecks = []string{
	contracts.CheckPriceCap,
	contracts.CheckMarketCap,
	contracts.CheckRevenueYoY,
	contracts.CheckROE,
	contracts.CheckOPM,
	contracts.CheckDebtRatio,
	contracts.CheckAvgTurnover,
	contracts.CheckTurnoverRatio,
}

// FinancialChecks is the evaluation order for financial securities
var FinancialChecks = []string{
	contracts.CheckPriceCap,
	contracts.CheckMarketCap,
	contracts.CheckROE,
	contracts.CheckNPL,
	contracts.CheckCoverage,
	contracts.CheckGrowth,
	contracts.CheckAvgTurnover,
	contracts.CheckTurnoverRatio,
}

// Filter implements the universe eligibility rules
// ⭐ SSOT: S1 유니버스 조건은 여기서만
type Filter struct{}

// NewFilter creates a universe filter
func NewFilter() *Filter {
	return &Filter{}
}

// Evaluate applies the rule set matching snap.IsFinancial.
// Every check is kept in the result; absent required fields fail their check.
func (f *Filter) Evaluate(snap contracts.Snapshot, priceCap float64) contracts.UniverseResult {
	var (
		checks map[string]bool
		order  []string
	)
	if snap.IsFinancial {
		checks = financialChecks(snap, priceCap)
		order = FinancialChecks
	} else {
		checks = nonFinancialChecks(snap, priceCap)
		order = NonFinancialChecks
	}

	result := contracts.UniverseResult{
		Passed: true,
		Checks: checks,
		Reason: "OK",
	}
	for _, ok := range checks {
		if !ok {
			result.Passed = false
			break
		}
	}

	if !result.Passed {
		result.Reason = "universe filter failed: " + strings.Join(result.Failed(order), ", ")
	}
	return result
}

func nonFinancialChecks(snap contracts.Snapshot, priceCap float64) map[string]bool {
	revenueOK := true
	for _, v := range snap.RevenueYoY() {
		if !atLeast(v, MinRevenueYoY) {
			revenueOK = false
		}
	}

	return map[string]bool{
		contracts.CheckPriceCap:      snap.Close <= priceCap,
		contracts.CheckMarketCap:     snap.MarketCap >= MinMarketCap,
		contracts.CheckRevenueYoY:    revenueOK,
		contracts.CheckROE:           above(snap.ROETTM, MinROE),
		contracts.CheckOPM:           atLeast(snap.OPMTTM, MinOPM),
		contracts.CheckDebtRatio:     below(snap.DebtRatio, MaxDebtRatio),
		contracts.CheckAvgTurnover:   atLeast(snap.AvgTurnover20, MinAvgTurnover20),
		contracts.CheckTurnoverRatio: atLeast(snap.TurnoverRatio20, MinTurnoverRatio20),
	}
}

func financialChecks(snap contracts.Snapshot, priceCap float64) map[string]bool {
	// 둘 중 하나만 충족해도 통과
	growthOK := atLeast(snap.EPSGrowth4Q, MinFinancialGrowth) ||
		atLeast(snap.NetIncomeGrowth3M, MinFinancialGrowth)

	return map[string]bool{
		contracts.CheckPriceCap:      snap.Close <= priceCap,
		contracts.CheckMarketCap:     snap.MarketCap >= MinMarketCap,
		contracts.CheckROE:           above(snap.ROETTM, MinROE),
		contracts.CheckNPL:           below(snap.NPLRatio, MaxNPLRatio),
		contracts.CheckCoverage:      above(snap.CoverageRatio, MinCoverageRatio),
		contracts.CheckGrowth:        growthOK,
		contracts.CheckAvgTurnover:   atLeast(snap.AvgTurnover20, MinAvgTurnover20),
		contracts.CheckTurnoverRatio: atLeast(snap.TurnoverRatio20, MinTurnoverRatio20),
	}
}

// absent ⇒ false
func atLeast(v *float64, min float64) bool { return v != nil && *v >= min }
func above(v *float64, min float64) bool   { return v != nil && *v > min }
func below(v *float64, max float64) bool   { return v != nil && *v < max }
