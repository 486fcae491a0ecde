package contracts

import "time"

// RankedClassification is a classification with its 1-based rank
type RankedClassification struct {
	Rank int `json:"rank"`
	Classification
}

// ScanResult is the outcome of classifying every snapshot of one date
// ⭐ SSOT: 스캔 결과 (표시 계층 / API 응답)
type ScanResult struct {
	RunID        string                 `json:"run_id"`
	Date         time.Time              `json:"date"`
	Source       string                 `json:"source"`
	ConfigHash   string                 `json:"config_hash"`
	PriceCap     float64                `json:"price_cap"`
	Ranked       []RankedClassification `json:"ranked"`
	TierCounts   map[string]int         `json:"tier_counts"`
	ECandidates  int                    `json:"e_candidates"`
	Insufficient map[string]string      `json:"insufficient"` // 데이터 부족: 사유
	Duration     time.Duration          `json:"duration"`
}

// Total returns the number of classified securities
func (r *ScanResult) Total() int {
	return len(r.Ranked)
}

// ByTier returns classifications in the given tier, preserving rank order
func (r *ScanResult) ByTier(tier Tier) []RankedClassification {
	out := make([]RankedClassification, 0)
	for _, c := range r.Ranked {
		if c.Tier == tier {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the classification for a symbol
func (r *ScanResult) Find(symbol string) (RankedClassification, bool) {
	for _, c := range r.Ranked {
		if c.Symbol == symbol {
			return c, true
		}
	}
	return RankedClassification{}, false
}
