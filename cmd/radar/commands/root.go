package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/brain"
	"github.com/wonny/radar/internal/metrics"
	"github.com/wonny/radar/internal/strategyconfig"
	"github.com/wonny/radar/pkg/config"
	"github.com/wonny/radar/pkg/logger"
)

var (
	// Global flags
	rulesFile    string
	priceCapFlag float64
	workersFlag  int
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "radar - 종목 스크리닝 룰 엔진",
	Long: `radar Unified CLI

스냅샷 → Universe → Firm → Score → Tier(A/B/C/D/Eliminated) + E 후보.
같은 입력과 같은 룰 버전이면 항상 같은 결과.

Usage:
  go run ./cmd/radar [command]

Examples:
  go run ./cmd/radar classify --file snapshots.yaml
  go run ./cmd/radar scan --date 2025-01-15
  go run ./cmd/radar rules show
  go run ./cmd/radar api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "rule version YAML (default: RULES_FILE or built-in v7.9.8)")
	rootCmd.PersistentFlags().Float64Var(&priceCapFlag, "price-cap", 0, "close price cap override (0 = rule file)")
	rootCmd.PersistentFlags().IntVar(&workersFlag, "workers", 0, "scan worker count override (0 = rule file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// runtime bundles what every command loads first
type runtime struct {
	cfg   *config.Config
	log   *logger.Logger
	rules *strategyconfig.Config
}

// bootstrap loads env config, the logger and the active rule version.
// Flags override env, env overrides the rule file.
func bootstrap() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	path := rulesFile
	if path == "" {
		path = cfg.Scan.RulesFile
	}
	rules, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	priceCap, workers := cfg.Scan.PriceCap, cfg.Scan.Workers
	if priceCapFlag > 0 {
		priceCap = priceCapFlag
	}
	if workersFlag > 0 {
		workers = workersFlag
	}
	rules = rules.WithOverrides(priceCap, workers)
	if err := strategyconfig.Validate(rules); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}

	for _, w := range strategyconfig.Warn(rules) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	return &runtime{cfg: cfg, log: log, rules: rules}, nil
}

// metricsRegistry returns nil when METRICS_ENABLED=false
func (rt *runtime) metricsRegistry() *metrics.Registry {
	if !rt.cfg.MetricsEnabled {
		return nil
	}
	return metrics.New()
}

func (rt *runtime) orchestrator(m *metrics.Registry) (*brain.Orchestrator, error) {
	orch, err := brain.NewOrchestrator(rt.rules, m, rt.log)
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}
	return orch, nil
}
