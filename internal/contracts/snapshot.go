package contracts

import (
	"errors"
	"time"
)

// ErrInsufficientData is returned when a snapshot cannot be classified
// because a required field is missing or malformed.
var ErrInsufficientData = errors.New("insufficient data")

// Snapshot is the fully-resolved daily record of one security
// ⭐ SSOT: S0 → S1/S2 종목 스냅샷 전달
//
// All ratio fields are decimal fractions (0.15 = 15%).
// nil pointer = 값 없음 (0으로 대체하지 않음)
type Snapshot struct {
	Date time.Time `json:"date" yaml:"-"` // 문서/DB 기준일로 채움

	// Identity
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`

	// Classification flags
	IsFinancial bool `json:"is_financial" yaml:"is_financial"`
	IsCyclical  bool `json:"is_cyclical" yaml:"is_cyclical"`

	// Price / volume
	Close  float64  `json:"close" yaml:"close"`
	Volume float64  `json:"volume" yaml:"volume"`
	MA20   *float64 `json:"ma20,omitempty" yaml:"ma20,omitempty"`
	MA60   *float64 `json:"ma60,omitempty" yaml:"ma60,omitempty"`
	MA240  *float64 `json:"ma240,omitempty" yaml:"ma240,omitempty"`

	// Liquidity
	AvgTurnover20   *float64 `json:"avg_turnover_20,omitempty" yaml:"avg_turnover_20,omitempty"`     // 20일 평균 거래대금
	TurnoverRatio20 *float64 `json:"turnover_ratio_20,omitempty" yaml:"turnover_ratio_20,omitempty"` // 20일 회전율
	MarketCap       float64  `json:"market_cap" yaml:"market_cap"`

	// Fundamentals (non-financial)
	ROETTM       *float64 `json:"roe_ttm,omitempty" yaml:"roe_ttm,omitempty"`
	OPMTTM       *float64 `json:"opm_ttm,omitempty" yaml:"opm_ttm,omitempty"`
	DebtRatio    *float64 `json:"debt_ratio,omitempty" yaml:"debt_ratio,omitempty"`
	RevenueYoYM1 *float64 `json:"revenue_yoy_m1,omitempty" yaml:"revenue_yoy_m1,omitempty"`
	RevenueYoYM2 *float64 `json:"revenue_yoy_m2,omitempty" yaml:"revenue_yoy_m2,omitempty"`
	RevenueYoYM3 *float64 `json:"revenue_yoy_m3,omitempty" yaml:"revenue_yoy_m3,omitempty"`
	EPSGrowth4Q  *float64 `json:"eps_growth_4q,omitempty" yaml:"eps_growth_4q,omitempty"`

	// Fundamentals (financial)
	NPLRatio          *float64 `json:"npl_ratio,omitempty" yaml:"npl_ratio,omitempty"`           // 부실채권비율
	CoverageRatio     *float64 `json:"coverage_ratio,omitempty" yaml:"coverage_ratio,omitempty"` // 대손충당금 적립률
	NetIncomeGrowth3M *float64 `json:"net_income_growth_3m,omitempty" yaml:"net_income_growth_3m,omitempty"`

	// Relative strength percentile (0 ~ 100)
	RS60 float64 `json:"rs60" yaml:"rs60"`

	// Peer / institutional signals (optional)
	IndustryID             string   `json:"industry_id,omitempty" yaml:"industry_id,omitempty"`
	IndustryClose          *float64 `json:"industry_close,omitempty" yaml:"industry_close,omitempty"`
	IndustryMA60           *float64 `json:"industry_ma60,omitempty" yaml:"industry_ma60,omitempty"`
	IndustryAdvanceRatio5D *float64 `json:"industry_advance_ratio_5d,omitempty" yaml:"industry_advance_ratio_5d,omitempty"`
	InstNetBuy20           *float64 `json:"inst_net_buy_20,omitempty" yaml:"inst_net_buy_20,omitempty"` // 기관 20일 순매수
	IndustryRankBySize     *int     `json:"industry_rank_by_size,omitempty" yaml:"industry_rank_by_size,omitempty"`
	LastQuarterGrowth      *float64 `json:"last_quarter_growth,omitempty" yaml:"last_quarter_growth,omitempty"`
}

// TradedValue returns same-day traded value (close * volume)
func (s Snapshot) TradedValue() float64 {
	return s.Close * s.Volume
}

// RevenueYoY returns the three trailing monthly revenue growth figures, most recent first
func (s Snapshot) RevenueYoY() [3]*float64 {
	return [3]*float64{s.RevenueYoYM1, s.RevenueYoYM2, s.RevenueYoYM3}
}

// AvgRevenueYoY averages the present monthly revenue growth figures.
// Returns 0 when none is present.
func (s Snapshot) AvgRevenueYoY() float64 {
	sum := 0.0
	n := 0
	for _, v := range s.RevenueYoY() {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// F returns a pointer to v. Used to fill optional snapshot fields.
func F(v float64) *float64 {
	return &v
}

// I returns a pointer to v.
func I(v int) *int {
	return &v
}
