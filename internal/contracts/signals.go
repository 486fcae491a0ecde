package contracts

// FirmResult is the four-condition momentum confirmation vector
// ⭐ SSOT: S2 Firm 판정 결과
type FirmResult struct {
	Price  bool `json:"f_price"`  // close > MA60 && close > MA240
	Volume bool `json:"f_volume"` // 당일 거래대금 >= 1.5 * 20일 평균
	Trend  bool `json:"f_trend"`  // close >= MA240 * 1.02
	Group  bool `json:"f_group"`  // 업종 동조

	Count  int  `json:"count"`   // 0 ~ 4
	IsFirm bool `json:"is_firm"` // Count == 4
}

// NewFirmResult builds a FirmResult with a consistent count and aggregate
func NewFirmResult(price, volume, trend, group bool) FirmResult {
	r := FirmResult{Price: price, Volume: volume, Trend: trend, Group: group}
	for _, ok := range []bool{price, volume, trend, group} {
		if ok {
			r.Count++
		}
	}
	r.IsFirm = r.Count == 4
	return r
}

// ScoreResult is the composite 0-100 score
// ⭐ SSOT: S2 점수 결과
type ScoreResult struct {
	Growth    float64 `json:"growth"`    // <= 30
	Quality   float64 `json:"quality"`   // <= 30
	Momentum  float64 `json:"momentum"`  // <= 25
	Valuation float64 `json:"valuation"` // <= 15 (현재 고정값)
	Total     int     `json:"total"`     // 0 ~ 100
}
