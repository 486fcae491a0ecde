package strategyconfig

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/wonny/radar/internal/s1_universe"
)

// MaxWorkers bounds scan concurrency
const MaxWorkers = 256

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var hhmm = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if cfg.Meta.Version == "" {
		return ValidationError{"meta.version", "required"}
	}

	// === Universe ===
	if cfg.Universe.PriceCap <= 0 {
		return ValidationError{"universe.price_cap", "must be > 0"}
	}

	// === Scan ===
	if cfg.Scan.Workers < 1 || cfg.Scan.Workers > MaxWorkers {
		return ValidationError{"scan.workers", fmt.Sprintf("must be in [1, %d]", MaxWorkers)}
	}
	if cfg.Scan.CacheTTL <= 0 {
		return ValidationError{"scan.cache_ttl", "must be > 0"}
	}
	if err := validateHHMM(cfg.Scan.DailyAt); err != nil {
		return ValidationError{"scan.daily_at", err.Error()}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Universe.PriceCap != s1_universe.DefaultPriceCap {
		warnings = append(warnings, Warning{
			Code:    "CUSTOM_PRICE_CAP",
			Message: fmt.Sprintf("price_cap %.2f differs from the rule default %.0f", cfg.Universe.PriceCap, s1_universe.DefaultPriceCap),
		})
	}

	// 업종 데이터 없을 때 group 조건 통과 처리
	if cfg.Firm.GroupDefaultWhenMissing {
		warnings = append(warnings, Warning{
			Code:    "PERMISSIVE_GROUP",
			Message: "group condition passes when industry data is missing",
		})
	}

	if cfg.Scan.CacheTTL > 7*24*time.Hour {
		warnings = append(warnings, Warning{
			Code:    "LONG_CACHE_TTL",
			Message: "cache_ttl > 7d: stale snapshots may be served",
		})
	}

	return warnings
}

// CronSpec converts scan.daily_at into a weekday cron spec with seconds
func (s Scan) CronSpec() (string, error) {
	if err := validateHHMM(s.DailyAt); err != nil {
		return "", err
	}
	t, _ := time.Parse("15:04", s.DailyAt)
	return fmt.Sprintf("0 %d %d * * 1-5", t.Minute(), t.Hour()), nil
}

func validateHHMM(s string) error {
	if !hhmm.MatchString(s) {
		return errors.New("must be HH:MM format")
	}
	_, err := time.Parse("15:04", s)
	return err
}
