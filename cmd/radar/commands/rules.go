package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/radar/internal/strategyconfig"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "활성 룰 버전 조회",
	Long: `현재 적용되는 룰 버전(파일 + 환경변수 + 플래그 반영)을 조회합니다.

Subcommands:
  show  - 룰 YAML과 경고 출력
  hash  - 룰 해시 출력 (결과 재현성 확인용)

Example:
  go run ./cmd/radar rules show --rules config/rules/radar_v798.yaml
  go run ./cmd/radar rules hash --price-cap 100`,
}

var (
	rulesShowCmd = &cobra.Command{
		Use:   "show",
		Short: "룰 YAML 출력",
		RunE:  showRules,
	}

	rulesHashCmd = &cobra.Command{
		Use:   "hash",
		Short: "룰 해시 출력",
		RunE:  hashRules,
	}
)

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesHashCmd)
}

func showRules(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(rt.rules)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, string(data))

	for _, w := range strategyconfig.Warn(rt.rules) {
		fmt.Fprintf(out, "# warning %s: %s\n", w.Code, w.Message)
	}
	return nil
}

func hashRules(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}

	fp, err := strategyconfig.NewFingerprint(rt.rules)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", fp.Hash, fp.StrategyID, fp.Version)
	return nil
}
