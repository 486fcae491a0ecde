package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/brain"
	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/s0_data"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "스냅샷 파일 분류",
	Long: `JSON/YAML 스냅샷 문서를 읽어 전 종목을 분류합니다.

문서 형식:
  date: "2025-01-15"
  snapshots:
    - symbol: "000660"
      close: 50
      ...

Example:
  go run ./cmd/radar classify --file snapshots.yaml
  go run ./cmd/radar classify --file snapshots.json --tier A --json
  go run ./cmd/radar classify --file snapshots.yaml --symbol 000660`,
	RunE: runClassify,
}

var (
	classifyFile   string
	classifyJSON   bool
	classifyTier   string
	classifySymbol string
)

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "", "snapshot document (.json, .yaml)")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print JSON instead of a table")
	classifyCmd.Flags().StringVar(&classifyTier, "tier", "", "only show this tier (A, B, C, D, Eliminated)")
	classifyCmd.Flags().StringVar(&classifySymbol, "symbol", "", "show stage detail for one symbol")
	_ = classifyCmd.MarkFlagRequired("file")
}

func runClassify(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}

	orch, err := rt.orchestrator(nil)
	if err != nil {
		return err
	}

	result, err := orch.Run(cmd.Context(), brain.RunConfig{
		Source: s0_data.NewFileSource(classifyFile),
	})
	if err != nil {
		return fmt.Errorf("classify %s: %w", classifyFile, err)
	}

	return renderResult(cmd, result, classifyTier, classifySymbol, classifyJSON)
}

// renderResult applies the tier/symbol filters and prints table or JSON
func renderResult(cmd *cobra.Command, result *contracts.ScanResult, tier, symbol string, asJSON bool) error {
	out := cmd.OutOrStdout()

	if symbol != "" {
		c, ok := result.Find(symbol)
		if !ok {
			if reason, skipped := result.Insufficient[symbol]; skipped {
				return fmt.Errorf("%s was not classified: %s", symbol, reason)
			}
			return fmt.Errorf("symbol %s not found", symbol)
		}
		if asJSON {
			return PrintJSON(out, c)
		}
		PrintClassification(out, c.Classification)
		return nil
	}

	if tier != "" {
		t, err := contracts.ParseTier(tier)
		if err != nil {
			return err
		}
		result.Ranked = result.ByTier(t)
	}

	if asJSON {
		return PrintJSON(out, result)
	}
	PrintScanResult(out, result)
	return nil
}
