package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/intraday"
)

// IntradayRequest 당일 EOD 예측 요청
type IntradayRequest struct {
	Date      *time.Time          // nil = today in the app timezone
	AsOf      *time.Time          // nil = latest recorded sale for Date, else opening time
	OpenHour  *int                // nil = policy
	CloseHour *int                // nil = policy
	TopK      int                 // 0 = policy default
	Mode      contracts.ModelMode // "" = live
}

// Intraday blends the model's full-day prior with units already sold on the target date
func (s *Service) Intraday(ctx context.Context, req IntradayRequest) (*contracts.ForecastResponse, error) {
	started := time.Now()

	target := contracts.CivilDate(s.now().In(s.loc))
	if req.Date != nil {
		target = contracts.CivilDate(*req.Date)
	}
	openHour, closeHour, err := s.tradingHours(req.OpenHour, req.CloseHour)
	if err != nil {
		return nil, err
	}
	topK, err := s.policy.TopK(req.TopK)
	if err != nil {
		return nil, err
	}
	mode, err := contracts.ParseMode(string(req.Mode), contracts.ModeLive)
	if err != nil {
		return nil, err
	}

	// "now" = 마지막 판매 입력 시각 (서버 시계가 아님)
	var latest time.Time
	var hasLatest bool
	if req.AsOf == nil {
		latest, hasLatest, err = s.store.LatestObservationAt(ctx, target)
		if err != nil {
			return nil, err
		}
	}
	now := intraday.ResolveNow(target, req.AsOf, latest, hasLatest, openHour, s.loc)

	h, err := s.registry.Select(ctx, mode)
	if err != nil {
		return nil, err
	}

	products, err := s.universe(ctx, h, target)
	if err != nil {
		return nil, err
	}

	span := contracts.DateRange{Start: target, End: target}
	prior := map[string]float64{}
	if len(products) > 0 {
		prior, err = s.predictTotals(ctx, h, products, span)
		if err != nil {
			return nil, err
		}
	}

	partial, err := s.store.PartialUnits(ctx, target, now)
	if err != nil {
		return nil, err
	}

	res := s.blender.Blend(intraday.Input{
		Now:            now,
		OpenHour:       openHour,
		CloseHour:      closeHour,
		ModelPred:      prior,
		PartialUnits:   partial,
		BaseConfidence: h.BaseConfidence(),
	})

	ranked := make([]contracts.ForecastItem, len(res.Estimates))
	for i, e := range res.Estimates {
		item := contracts.ForecastItem{ProductName: e.ProductName, PredictedUnits: e.EODUnits}
		if e.Confidence != nil {
			c := contracts.Round3(*e.Confidence)
			item.Confidence = &c
		}
		ranked[i] = item
	}

	resp := s.response(string(mode)+"-intraday", string(h.Mode)+"-intraday", span, topK, ranked, h)
	asOf := now.Format(time.RFC3339)
	resp.AsOf = &asOf
	resp.DayFraction = &res.DayFraction
	resp.BlendWeight = &res.Weight

	s.metrics.ForecastServed("intraday", string(h.Mode), time.Since(started))
	s.log.Info().
		Str("mode_used", string(h.Mode)).
		Str("date", target.Format(contracts.DateLayout)).
		Str("as_of", asOf).
		Float64("day_fraction", res.DayFraction).
		Float64("weight", res.Weight).
		Int("products", len(ranked)).
		Msg("intraday forecast served")

	return resp, nil
}

// tradingHours applies overrides on top of the policy window
func (s *Service) tradingHours(openOverride, closeOverride *int) (int, int, error) {
	openHour, closeHour := s.policy.Intraday.OpenHour, s.policy.Intraday.CloseHour
	if openOverride != nil {
		openHour = *openOverride
	}
	if closeOverride != nil {
		closeHour = *closeOverride
	}
	if openHour < 0 || openHour > 23 {
		return 0, 0, contracts.NewValidationError("open_hour", "must be between 0 and 23")
	}
	if closeHour < 0 || closeHour > 23 {
		return 0, 0, contracts.NewValidationError("close_hour", "must be between 0 and 23")
	}
	if openHour >= closeHour {
		return 0, 0, contracts.NewValidationError("open_hour", fmt.Sprintf("must be before close_hour (%d >= %d)", openHour, closeHour))
	}
	return openHour, closeHour, nil
}
