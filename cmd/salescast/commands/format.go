package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/wonny/salescast/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// printJSON writes v as indented JSON to stdout
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printForecast renders a forecast response as a ranked table
func printForecast(title string, resp *contracts.ForecastResponse) error {
	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
	fmt.Printf("  Period    : %s ~ %s\n", resp.DateRange.Start, resp.DateRange.End)
	fmt.Printf("  Mode      : %s (requested %s)\n", resp.ModeUsed, resp.ModeRequested)
	if resp.TrainedAt != nil {
		fmt.Printf("  Trained   : %s\n", *resp.TrainedAt)
	}
	if resp.AsOf != nil {
		fmt.Printf("  As of     : %s\n", *resp.AsOf)
	}
	if resp.DayFraction != nil && resp.BlendWeight != nil {
		fmt.Printf("  Day done  : %.1f%% (blend weight %.3f)\n", *resp.DayFraction*100, *resp.BlendWeight)
	}
	fmt.Printf("  Products  : top %d of %d\n", len(resp.Items), resp.TotalProducts)
	PrintSeparator()

	if len(resp.Items) == 0 {
		fmt.Println("  (no products)")
	}
	for i, item := range resp.Items {
		conf := "   -"
		if item.Confidence != nil {
			conf = fmt.Sprintf("%.3f", *item.Confidence)
		}
		fmt.Printf("  %2d. %-28s %10.2f  conf %s\n", i+1, truncate(item.ProductName, 28), item.PredictedUnits, conf)
	}
	PrintDoubleSeparator()
	return nil
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
