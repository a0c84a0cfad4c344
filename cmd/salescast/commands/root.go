package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "salescast",
	Short: "Salescast - 제품별 일일 판매량(EOD) 예측",
	Long: `Salescast Unified CLI

판매 이력 + 할인/장바구니 피처로 제품별 일일 판매량을 예측합니다.
seed(고정 기준) / live(최신) 두 모델과 당일 부분 판매 블렌딩을 제공합니다.

Usage:
  go run ./cmd/salescast [command]

Examples:
  go run ./cmd/salescast api
  go run ./cmd/salescast train --mode seed
  go run ./cmd/salescast forecast --start 2025-10-01 --end 2025-10-07
  go run ./cmd/salescast intraday --as-of 2025-10-15T15:00:00
  go run ./cmd/salescast test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}
