package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/contracts"
)

// saleCmd represents the sale command
var saleCmd = &cobra.Command{
	Use:   "sale",
	Short: "판매 기록 입력",
	Long: `판매 한 건을 기록합니다 (당일 블렌딩의 부분 관측으로 사용).

Example:
  go run ./cmd/salescast sale --product "Candy Corn" --units 3
  go run ./cmd/salescast sale --product "Candy Corn" --units 5 --date 2025-10-14`,
	RunE: runSale,
}

var (
	saleProduct string
	saleUnits   int
	saleDate    string
)

func init() {
	rootCmd.AddCommand(saleCmd)

	saleCmd.Flags().StringVar(&saleProduct, "product", "", "제품명")
	saleCmd.Flags().IntVar(&saleUnits, "units", 1, "판매 수량 (>= 0)")
	saleCmd.Flags().StringVar(&saleDate, "date", "", "판매 날짜 (기본: 오늘, APP_TZ)")
	_ = saleCmd.MarkFlagRequired("product")
}

func runSale(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(saleProduct)
	if name == "" {
		return contracts.NewValidationError("product", "is required")
	}
	if saleUnits < 0 {
		return contracts.NewValidationError("units", "must be a non-negative integer")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	loc := a.cfg.Location()
	obs := contracts.SalesObservation{
		ProductName: name,
		Units:       saleUnits,
		Date:        contracts.CivilDate(time.Now().In(loc)),
	}
	if saleDate != "" {
		d, err := contracts.ParseDate(saleDate)
		if err != nil {
			return contracts.NewValidationError("date", err.Error())
		}
		obs.Date = d
	}

	saved, err := a.sales.RecordSale(cmd.Context(), obs)
	if err != nil {
		return fmt.Errorf("record sale: %w", err)
	}

	if jsonOutput {
		return printJSON(saved)
	}
	fmt.Printf("✅ Recorded %d × %s on %s (at %s)\n",
		saved.Units, saved.ProductName, saved.Date.Format(contracts.DateLayout),
		saved.CreatedAt.In(loc).Format(time.RFC3339))
	return nil
}
