package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/brain"
	"github.com/wonny/radar/internal/s0_data"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "DB 스냅샷 전체 스캔",
	Long: `data.screening_snapshots 테이블에서 지정일 스냅샷을 읽어 분류합니다.
REDIS_ENABLED=true이면 스냅샷을 rule 파일의 cache_ttl 동안 캐시합니다.

휴장일 보정은 하지 않습니다. --date는 실제 거래일이어야 합니다.

Example:
  go run ./cmd/radar scan --date 2025-01-15
  go run ./cmd/radar scan --date 2025-01-15 --tier B --json
  go run ./cmd/radar scan --date 2025-01-15 --no-cache`,
	RunE: runScan,
}

var (
	scanDate    string
	scanJSON    bool
	scanTier    string
	scanSymbol  string
	scanNoCache bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanDate, "date", "", "trade date (YYYY-MM-DD)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print JSON instead of a table")
	scanCmd.Flags().StringVar(&scanTier, "tier", "", "only show this tier (A, B, C, D, Eliminated)")
	scanCmd.Flags().StringVar(&scanSymbol, "symbol", "", "show stage detail for one symbol")
	scanCmd.Flags().BoolVar(&scanNoCache, "no-cache", false, "bypass the redis snapshot cache")
	_ = scanCmd.MarkFlagRequired("date")
}

func runScan(cmd *cobra.Command, args []string) error {
	date, err := time.Parse(s0_data.DateLayout, scanDate)
	if err != nil {
		return fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", scanDate)
	}

	rt, err := bootstrap()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	res, err := openResources(ctx, rt)
	if err != nil {
		return err
	}
	defer res.Close()

	source := res.snapshotSource(rt, !scanNoCache)
	if source == nil {
		return fmt.Errorf("scan needs DATABASE_URL; use classify --file for documents")
	}

	orch, err := rt.orchestrator(nil)
	if err != nil {
		return err
	}

	result, err := orch.Run(ctx, brain.RunConfig{Date: date, Source: source})
	if err != nil {
		return fmt.Errorf("scan %s: %w", scanDate, err)
	}

	return renderResult(cmd, result, scanTier, scanSymbol, scanJSON)
}
