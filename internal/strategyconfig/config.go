package strategyconfig

import (
	"time"

	"github.com/wonny/radar/internal/s2_signals"
)

// Config is one rule version of the screening engine
type Config struct {
	Meta     Meta                  `yaml:"meta" json:"meta"`
	Universe Universe              `yaml:"universe" json:"universe"`
	Firm     s2_signals.FirmPolicy `yaml:"firm" json:"firm"`
	Scan     Scan                  `yaml:"scan" json:"scan"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Universe S1 설정
type Universe struct {
	PriceCap float64 `yaml:"price_cap" json:"price_cap"` // 종가 상한 (호출자 지정)
}

// Scan 배치 실행 설정
type Scan struct {
	Workers  int           `yaml:"workers" json:"workers"`
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
	DailyAt  string        `yaml:"daily_at" json:"daily_at"` // HH:MM, 평일 자동 스캔
}

// Default returns the built-in v7.9.8 rule set
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "radar_v798",
			Version:    "7.9.8",
		},
		Universe: Universe{PriceCap: 80},
		Firm:     s2_signals.DefaultFirmPolicy(),
		Scan: Scan{
			Workers:  8,
			CacheTTL: 24 * time.Hour,
			DailyAt:  "18:30",
		},
	}
}

// WithOverrides returns a copy with non-zero overrides applied
func (c *Config) WithOverrides(priceCap float64, workers int) *Config {
	out := *c
	if priceCap > 0 {
		out.Universe.PriceCap = priceCap
	}
	if workers > 0 {
		out.Scan.Workers = workers
	}
	return &out
}

// Fingerprint identifies the rule version a result was produced with
type Fingerprint struct {
	StrategyID string  `json:"strategy_id"`
	Version    string  `json:"version"`
	Hash       string  `json:"hash"`
	Config     *Config `json:"config"`
}
