package strategyconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesPath = "../../config/rules/radar_v798.yaml"

func TestLoad_RuleFile(t *testing.T) {
	if _, err := os.Stat(rulesPath); os.IsNotExist(err) {
		t.Skip("rules file not found")
	}

	cfg, data, err := Load(rulesPath)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	assert.Equal(t, "radar_v798", cfg.Meta.StrategyID)
	assert.Equal(t, "7.9.8", cfg.Meta.Version)
	assert.Equal(t, 80.0, cfg.Universe.PriceCap)
	assert.True(t, cfg.Firm.GroupDefaultWhenMissing)
	assert.Equal(t, 8, cfg.Scan.Workers)
	assert.Equal(t, 24*time.Hour, cfg.Scan.CacheTTL)

	// 파일과 내장 기본값은 동일한 해시 (description 제외)
	fromFile := *cfg
	fromFile.Meta.Description = ""
	h1, err := Hash(&fromFile)
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, h2, h1)
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("universe:\n  price_cap: 120\n"))
	require.NoError(t, err)

	assert.Equal(t, 120.0, cfg.Universe.PriceCap)
	assert.Equal(t, "radar_v798", cfg.Meta.StrategyID)
	assert.Equal(t, 8, cfg.Scan.Workers)
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse([]byte("universe:\n  price_cao: 120\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"missing version", func(c *Config) { c.Meta.Version = "" }, "meta.version"},
		{"zero price cap", func(c *Config) { c.Universe.PriceCap = 0 }, "universe.price_cap"},
		{"zero workers", func(c *Config) { c.Scan.Workers = 0 }, "scan.workers"},
		{"too many workers", func(c *Config) { c.Scan.Workers = MaxWorkers + 1 }, "scan.workers"},
		{"zero ttl", func(c *Config) { c.Scan.CacheTTL = 0 }, "scan.cache_ttl"},
		{"bad daily_at", func(c *Config) { c.Scan.DailyAt = "6pm" }, "scan.daily_at"},
		{"out of range daily_at", func(c *Config) { c.Scan.DailyAt = "25:00" }, "scan.daily_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var verr ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	assert.NoError(t, Validate(Default()))
}

func TestWarn(t *testing.T) {
	cfg := Default()
	assert.Len(t, Warn(cfg), 1, "default policy is permissive on group")

	cfg.Universe.PriceCap = 100
	cfg.Firm.GroupDefaultWhenMissing = false
	cfg.Scan.CacheTTL = 30 * 24 * time.Hour

	codes := make([]string, 0)
	for _, w := range Warn(cfg) {
		codes = append(codes, w.Code)
	}
	assert.ElementsMatch(t, []string{"CUSTOM_PRICE_CAP", "LONG_CACHE_TTL"}, codes)
}

func TestHash_Deterministic(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)

	changed := Default().WithOverrides(90, 0)
	h3, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestWithOverrides(t *testing.T) {
	base := Default()

	out := base.WithOverrides(120, 4)
	assert.Equal(t, 120.0, out.Universe.PriceCap)
	assert.Equal(t, 4, out.Scan.Workers)
	assert.Equal(t, 80.0, base.Universe.PriceCap, "base untouched")

	same := base.WithOverrides(0, 0)
	assert.Equal(t, base, same)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  workers: 0\n"), 0o644))

	_, err = LoadOrDefault(path)
	assert.Error(t, err)

	_, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScan_CronSpec(t *testing.T) {
	spec, err := Scan{DailyAt: "18:30"}.CronSpec()
	require.NoError(t, err)
	assert.Equal(t, "0 30 18 * * 1-5", spec)

	spec, err = Scan{DailyAt: "07:05"}.CronSpec()
	require.NoError(t, err)
	assert.Equal(t, "0 5 7 * * 1-5", spec)

	_, err = Scan{DailyAt: ""}.CronSpec()
	assert.Error(t, err)
}

func TestNewFingerprint(t *testing.T) {
	fp, err := NewFingerprint(Default())
	require.NoError(t, err)

	assert.Equal(t, "radar_v798", fp.StrategyID)
	assert.Equal(t, "7.9.8", fp.Version)
	assert.Len(t, fp.Hash, 64)
}
