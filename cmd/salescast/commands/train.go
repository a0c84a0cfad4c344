package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/model"
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "모델 학습",
	Long: `판매 이력으로 모델을 학습하고 아티팩트를 원자적으로 저장합니다.

seed: 시드 구간(정책 seed_window)의 학습 월만 사용
live: 시드 시작일부터 오늘까지의 학습 월 사용

Example:
  go run ./cmd/salescast train --mode seed
  go run ./cmd/salescast train --mode live --json`,
	RunE: runTrain,
}

var (
	trainMode string
)

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&trainMode, "mode", "live", "seed | live")
}

func runTrain(cmd *cobra.Command, args []string) error {
	mode, err := contracts.ParseMode(trainMode, contracts.ModeLive)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	summary, err := a.trainer.Run(cmd.Context(), mode)
	if err != nil {
		return fmt.Errorf("train %s: %w", mode, err)
	}

	if jsonOutput {
		return printJSON(summary)
	}

	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  Training (%s)\n", summary.Mode)
	PrintSeparator()
	fmt.Printf("  Run ID    : %s\n", summary.RunID)
	fmt.Printf("  Model     : %s\n", summary.ModelPath)
	fmt.Printf("  Rows      : %d (train %d / valid %d / test %d)\n",
		summary.Rows.Total, summary.Rows.Train, summary.Rows.Valid, summary.Rows.Test)
	fmt.Printf("  Products  : %d\n", summary.Products)
	printScores("Valid", summary.Metrics.Valid)
	printScores("Test", summary.Metrics.Test)
	PrintDoubleSeparator()
	fmt.Printf("✅ Trained in %.2fs\n", summary.Duration)
	return nil
}

func printScores(label string, s *model.Scores) {
	if s == nil {
		fmt.Printf("  %-9s : n/a\n", label)
		return
	}
	fmt.Printf("  %-9s : MAPE %.4f  MAE %.3f  RMSE %.3f\n", label, s.MAPE, s.MAE, s.RMSE)
}
