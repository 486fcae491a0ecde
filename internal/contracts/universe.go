package contracts

import "time"

// Universe check names (non-financial + financial)
const (
	CheckPriceCap      = "price_cap"
	CheckMarketCap     = "market_cap"
	CheckRevenueYoY    = "revenue_yoy"
	CheckROE           = "roe"
	CheckOPM           = "opm"
	CheckDebtRatio     = "debt_ratio"
	CheckAvgTurnover   = "avg_turnover"
	CheckTurnoverRatio = "turnover_ratio"
	CheckNPL           = "npl"
	CheckCoverage      = "coverage"
	CheckGrowth        = "growth"
)

// UniverseResult is the S1 verdict for a single snapshot
// ⭐ SSOT: S1 → S4 유니버스 판정 결과
type UniverseResult struct {
	Passed bool            `json:"passed"`
	Checks map[string]bool `json:"checks"` // 개별 조건 결과 (진단용, 전부 보존)
	Reason string          `json:"reason"` // "OK" 또는 실패 조건 설명
}

// Failed returns the names of failed checks in the given order
func (u UniverseResult) Failed(order []string) []string {
	failed := make([]string, 0)
	for _, name := range order {
		if ok, exists := u.Checks[name]; exists && !ok {
			failed = append(failed, name)
		}
	}
	return failed
}

// Universe summarizes the universe pass over a batch of snapshots
type Universe struct {
	Date       time.Time         `json:"date"`
	Stocks     []string          `json:"stocks"`                // 통과 종목
	Excluded   map[string]string `json:"excluded"`              // 제외 종목: 사유
	TotalCount int               `json:"total_count,omitempty"` // 평가 종목 수
}

// Contains checks if a symbol passed the universe filter
func (u *Universe) Contains(symbol string) bool {
	for _, stock := range u.Stocks {
		if stock == symbol {
			return true
		}
	}
	return false
}

// IsExcluded checks if a symbol is excluded and returns the reason
func (u *Universe) IsExcluded(symbol string) (bool, string) {
	reason, exists := u.Excluded[symbol]
	return exists, reason
}

// Count returns the number of symbols that passed
func (u *Universe) Count() int {
	return len(u.Stocks)
}
