package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/salescast/internal/contracts"
)

// HistoricalRequest QA 기준선 요청
type HistoricalRequest struct {
	Start time.Time
	End   time.Time
	TopK  int
}

// Historical is the frozen QA baseline: mean daily units per product over the seed window
// (training month only) times the number of requested days. No model is involved.
func (s *Service) Historical(ctx context.Context, req HistoricalRequest) (*contracts.ForecastResponse, error) {
	started := time.Now()

	span, err := contracts.NewDateRange(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	topK, err := s.policy.TopK(req.TopK)
	if err != nil {
		return nil, err
	}

	avgs, err := s.store.DailyAverages(ctx, s.policy.SeedRange(), s.policy.Training.Month)
	if err != nil {
		return nil, fmt.Errorf("historical baseline: %w", err)
	}
	if len(avgs) == 0 {
		return nil, fmt.Errorf("%w: no rows for the historical baseline in the seed window", contracts.ErrNoProducts)
	}

	days := float64(span.Days())
	ranked := make([]contracts.ForecastItem, 0, len(avgs))
	for _, a := range avgs {
		ranked = append(ranked, contracts.ForecastItem{
			ProductName:    a.ProductName,
			PredictedUnits: a.AvgDailyUnits * days,
		})
	}
	sortItems(ranked)

	mode := string(contracts.ModeHistorical)
	resp := s.response(mode, mode, span, topK, ranked, nil)
	s.metrics.ForecastServed("historical", mode, time.Since(started))
	return resp, nil
}
