package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/s0_data"
	"github.com/wonny/radar/internal/s1_universe"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Universe 필터만 실행",
	Long: `스냅샷 문서에 S1 Universe 필터만 적용하고 통과/제외 종목을 출력합니다.

Example:
  go run ./cmd/radar universe --file snapshots.yaml
  go run ./cmd/radar universe --file snapshots.yaml --price-cap 100 --json`,
	RunE: runUniverse,
}

var (
	universeFile string
	universeJSON bool
)

func init() {
	rootCmd.AddCommand(universeCmd)

	universeCmd.Flags().StringVarP(&universeFile, "file", "f", "", "snapshot document (.json, .yaml)")
	universeCmd.Flags().BoolVar(&universeJSON, "json", false, "print JSON")
	_ = universeCmd.MarkFlagRequired("file")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}

	doc, err := s0_data.NewFileSource(universeFile).Load()
	if err != nil {
		return err
	}
	date, err := doc.TradeDate()
	if err != nil {
		return err
	}

	builder := s1_universe.NewBuilder(s1_universe.NewFilter(), rt.rules.Universe.PriceCap, rt.log)
	universe, _, err := builder.Build(cmd.Context(), date, doc.Snapshots)
	if err != nil {
		return fmt.Errorf("build universe: %w", err)
	}

	out := cmd.OutOrStdout()
	if universeJSON {
		return PrintJSON(out, universe)
	}

	PrintHeader(out, fmt.Sprintf("Universe %s (price cap %.2f)", doc.Date, builder.PriceCap()))
	fmt.Fprintf(out, "Passed (%d/%d):\n", universe.Count(), universe.TotalCount)
	for _, symbol := range universe.Stocks {
		fmt.Fprintf(out, "   • %s\n", symbol)
	}

	excluded := make([]string, 0, len(universe.Excluded))
	for symbol := range universe.Excluded {
		excluded = append(excluded, symbol)
	}
	sort.Strings(excluded)

	fmt.Fprintf(out, "Excluded (%d):\n", len(excluded))
	for _, symbol := range excluded {
		fmt.Fprintf(out, "   • %s: %s\n", symbol, universe.Excluded[symbol])
	}
	PrintDoubleSeparator(out)
	return nil
}
