package quality

import (
	"fmt"
	"math"

	"github.com/wonny/radar/internal/contracts"
)

// Gate rejects snapshots that cannot be classified
// ⭐ SSOT: S0 → S1 스냅샷 완결성 검증
//
// Absent optional fields are not a gate failure; the rules treat them
// as failing conditions. The gate only catches records that are malformed.
type Gate struct{}

// NewGate creates a new completeness gate
func NewGate() *Gate {
	return &Gate{}
}

// Check returns nil, or an error wrapping contracts.ErrInsufficientData
func (g *Gate) Check(snap contracts.Snapshot) error {
	if snap.Symbol == "" {
		return insufficient("symbol", "empty")
	}
	if !finite(snap.Close) || snap.Close <= 0 {
		return insufficient("close", fmt.Sprintf("must be > 0, got %v", snap.Close))
	}
	if !finite(snap.Volume) || snap.Volume < 0 {
		return insufficient("volume", fmt.Sprintf("must be >= 0, got %v", snap.Volume))
	}
	if !finite(snap.MarketCap) || snap.MarketCap < 0 {
		return insufficient("market_cap", fmt.Sprintf("must be >= 0, got %v", snap.MarketCap))
	}
	if !finite(snap.RS60) || snap.RS60 < 0 || snap.RS60 > 100 {
		return insufficient("rs60", fmt.Sprintf("must be in [0, 100], got %v", snap.RS60))
	}

	for _, f := range optionalFields(snap) {
		if f.value != nil && !finite(*f.value) {
			return insufficient(f.name, "not a finite number")
		}
	}
	return nil
}

// Coverage returns, per optional field, the share of snapshots carrying it
func Coverage(snaps []contracts.Snapshot) map[string]float64 {
	coverage := make(map[string]float64)
	if len(snaps) == 0 {
		return coverage
	}

	present := make(map[string]int)
	for _, snap := range snaps {
		for _, f := range optionalFields(snap) {
			if f.value != nil {
				present[f.name]++
			}
		}
		if snap.IndustryRankBySize != nil {
			present["industry_rank_by_size"]++
		}
	}

	n := float64(len(snaps))
	for _, f := range optionalFields(contracts.Snapshot{}) {
		coverage[f.name] = float64(present[f.name]) / n
	}
	coverage["industry_rank_by_size"] = float64(present["industry_rank_by_size"]) / n
	return coverage
}

type field struct {
	name  string
	value *float64
}

func optionalFields(s contracts.Snapshot) []field {
	return []field{
		{"ma20", s.MA20},
		{"ma60", s.MA60},
		{"ma240", s.MA240},
		{"avg_turnover_20", s.AvgTurnover20},
		{"turnover_ratio_20", s.TurnoverRatio20},
		{"roe_ttm", s.ROETTM},
		{"opm_ttm", s.OPMTTM},
		{"debt_ratio", s.DebtRatio},
		{"revenue_yoy_m1", s.RevenueYoYM1},
		{"revenue_yoy_m2", s.RevenueYoYM2},
		{"revenue_yoy_m3", s.RevenueYoYM3},
		{"eps_growth_4q", s.EPSGrowth4Q},
		{"npl_ratio", s.NPLRatio},
		{"coverage_ratio", s.CoverageRatio},
		{"net_income_growth_3m", s.NetIncomeGrowth3M},
		{"industry_close", s.IndustryClose},
		{"industry_ma60", s.IndustryMA60},
		{"industry_advance_ratio_5d", s.IndustryAdvanceRatio5D},
		{"inst_net_buy_20", s.InstNetBuy20},
		{"last_quarter_growth", s.LastQuarterGrowth},
	}
}

func insufficient(field, detail string) error {
	return fmt.Errorf("%w: %s %s", contracts.ErrInsufficientData, field, detail)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
