package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/forecast"
	"github.com/wonny/salescast/internal/intraday"
)

// forecastCmd represents the forecast command
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "기간 EOD 예측",
	Long: `[start, end] 구간의 제품별 판매량 합계를 예측합니다.

Example:
  go run ./cmd/salescast forecast --start 2025-10-01 --end 2025-10-07
  go run ./cmd/salescast forecast --start 2025-10-31 --end 2025-10-31 --mode live --top-k 5`,
	RunE: runForecast,
}

// intradayCmd represents the intraday command
var intradayCmd = &cobra.Command{
	Use:   "intraday",
	Short: "당일 블렌딩 예측",
	Long: `모델 예측(prior)과 현재까지의 판매량을 블렌딩해 당일 EOD 를 예측합니다.

--as-of 미지정 시 해당 날짜의 마지막 판매 기록 시각 (없으면 영업 시작)

Example:
  go run ./cmd/salescast intraday
  go run ./cmd/salescast intraday --date 2025-10-15 --as-of 2025-10-15T15:00:00`,
	RunE: runIntraday,
}

// baselineCmd represents the baseline command
var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "평균 기반 QA 기준선",
	Long: `시드 구간 학습 월의 일평균 판매량 × 일수 (모델 미사용).

Example:
  go run ./cmd/salescast baseline --start 2025-10-01 --end 2025-10-07`,
	RunE: runBaseline,
}

var (
	fcStart     string
	fcEnd       string
	fcTopK      int
	fcMode      string
	idMode      string
	idDate      string
	idAsOf      string
	idOpenHour  int
	idCloseHour int
)

func init() {
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(intradayCmd)
	rootCmd.AddCommand(baselineCmd)

	for _, c := range []*cobra.Command{forecastCmd, baselineCmd} {
		c.Flags().StringVar(&fcStart, "start", "", "시작일 (YYYY-MM-DD)")
		c.Flags().StringVar(&fcEnd, "end", "", "종료일 (YYYY-MM-DD)")
		_ = c.MarkFlagRequired("start")
		_ = c.MarkFlagRequired("end")
	}
	for _, c := range []*cobra.Command{forecastCmd, intradayCmd, baselineCmd} {
		c.Flags().IntVar(&fcTopK, "top-k", 0, "상위 N개 (기본: 정책)")
	}
	forecastCmd.Flags().StringVar(&fcMode, "mode", "seed", "seed | live")
	intradayCmd.Flags().StringVar(&idMode, "mode", "live", "seed | live")

	intradayCmd.Flags().StringVar(&idDate, "date", "", "대상 날짜 (기본: 오늘, APP_TZ)")
	intradayCmd.Flags().StringVar(&idAsOf, "as-of", "", "기준 시각 (ISO 8601)")
	intradayCmd.Flags().IntVar(&idOpenHour, "open-hour", 0, "영업 시작 시 (기본: 정책)")
	intradayCmd.Flags().IntVar(&idCloseHour, "close-hour", 0, "영업 종료 시 (기본: 정책)")
}

// parseRange parses --start/--end
func parseRange() (time.Time, time.Time, error) {
	start, err := contracts.ParseDate(fcStart)
	if err != nil {
		return time.Time{}, time.Time{}, contracts.NewValidationError("start", err.Error())
	}
	end, err := contracts.ParseDate(fcEnd)
	if err != nil {
		return time.Time{}, time.Time{}, contracts.NewValidationError("end", err.Error())
	}
	return start, end, nil
}

func runForecast(cmd *cobra.Command, args []string) error {
	start, end, err := parseRange()
	if err != nil {
		return err
	}
	mode, err := contracts.ParseMode(fcMode, contracts.ModeSeed)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.service.Forecast(cmd.Context(), forecast.Request{
		Start: start,
		End:   end,
		TopK:  fcTopK,
		Mode:  mode,
	})
	if err != nil {
		return err
	}
	return printForecast("EOD Forecast", resp)
}

func runIntraday(cmd *cobra.Command, args []string) error {
	mode, err := contracts.ParseMode(idMode, contracts.ModeLive)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	req := forecast.IntradayRequest{TopK: fcTopK, Mode: mode}
	if idDate != "" {
		d, err := contracts.ParseDate(idDate)
		if err != nil {
			return contracts.NewValidationError("date", err.Error())
		}
		req.Date = &d
	}
	if idAsOf != "" {
		asOf, err := intraday.ParseAsOf(idAsOf, a.cfg.Location())
		if err != nil {
			return contracts.NewValidationError("as_of", err.Error())
		}
		req.AsOf = &asOf
	}
	if cmd.Flags().Changed("open-hour") {
		req.OpenHour = &idOpenHour
	}
	if cmd.Flags().Changed("close-hour") {
		req.CloseHour = &idCloseHour
	}

	resp, err := a.service.Intraday(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printForecast("Intraday EOD Forecast", resp)
}

func runBaseline(cmd *cobra.Command, args []string) error {
	start, end, err := parseRange()
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := a.service.Historical(cmd.Context(), forecast.HistoricalRequest{
		Start: start,
		End:   end,
		TopK:  fcTopK,
	})
	if err != nil {
		return err
	}
	return printForecast("Historical Baseline", resp)
}
