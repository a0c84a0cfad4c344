package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/features"
	"github.com/wonny/salescast/internal/intraday"
	"github.com/wonny/salescast/internal/model"
	"github.com/wonny/salescast/internal/policy"
	"github.com/wonny/salescast/pkg/metrics"
)

// Service 예측 서비스 (기간 합계 / 당일 블렌딩 / 과거 평균 기준선)
type Service struct {
	registry *model.Registry
	store    contracts.SalesStore
	enricher *features.Enricher
	blender  intraday.Blender
	policy   *policy.Policy
	metrics  *metrics.Metrics
	loc      *time.Location
	now      func() time.Time
	log      zerolog.Logger
}

// Deps 서비스 의존성
type Deps struct {
	Registry *model.Registry
	Store    contracts.SalesStore
	Enricher *features.Enricher
	Policy   *policy.Policy
	Metrics  *metrics.Metrics
	Location *time.Location
	Now      func() time.Time // optional, defaults to time.Now
}

// NewService creates a new forecast service
func NewService(d Deps, log zerolog.Logger) *Service {
	s := &Service{
		registry: d.Registry,
		store:    d.Store,
		enricher: d.Enricher,
		policy:   d.Policy,
		metrics:  d.Metrics,
		loc:      d.Location,
		now:      d.Now,
		log:      log.With().Str("component", "forecast.service").Logger(),
	}
	if s.policy == nil {
		s.policy = policy.Default()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.blender = intraday.NewBlender(s.policy.Intraday.WeightAccel, s.policy.Intraday.MinFraction)
	return s
}

// Request 기간 예측 요청
type Request struct {
	Start time.Time
	End   time.Time
	TopK  int                 // 0 = policy default
	Mode  contracts.ModelMode // "" = seed
}

// Forecast predicts EOD totals per product summed over [Start, End]
func (s *Service) Forecast(ctx context.Context, req Request) (*contracts.ForecastResponse, error) {
	started := time.Now()

	span, err := contracts.NewDateRange(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	topK, err := s.policy.TopK(req.TopK)
	if err != nil {
		return nil, err
	}
	mode, err := contracts.ParseMode(string(req.Mode), contracts.ModeSeed)
	if err != nil {
		return nil, err
	}

	h, err := s.registry.Select(ctx, mode)
	if err != nil {
		return nil, err
	}

	products, err := s.universe(ctx, h, span.End)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: mode=%s", contracts.ErrNoProducts, h.Mode)
	}

	totals, err := s.predictTotals(ctx, h, products, span)
	if err != nil {
		return nil, err
	}
	s.applyActualsFloor(ctx, totals, span, h.Mode == contracts.ModeLive)

	ranked := rank(totals, h.BaseConfidence())

	resp := s.response(string(mode), string(h.Mode), span, topK, ranked, h)
	s.metrics.ForecastServed("range", string(h.Mode), time.Since(started))

	s.log.Info().
		Str("mode_requested", string(mode)).
		Str("mode_used", string(h.Mode)).
		Str("start", span.Start.Format(contracts.DateLayout)).
		Str("end", span.End.Format(contracts.DateLayout)).
		Int("products", len(ranked)).
		Dur("duration", time.Since(started)).
		Msg("forecast served")

	return resp, nil
}

// predictTotals builds the enriched grid, predicts daily EOD units and sums them per product
func (s *Service) predictTotals(ctx context.Context, h *model.Handle, products []string, span contracts.DateRange) (map[string]float64, error) {
	table, err := s.enricher.Inference(ctx, products, span)
	if err != nil {
		return nil, err
	}

	preds, err := h.Gateway.Predict(ctx, table.Rows)
	if err != nil {
		return nil, fmt.Errorf("model predict: %w", err)
	}
	if len(preds) != table.Len() {
		return nil, fmt.Errorf("%w: %d predictions for %d rows", contracts.ErrSchemaMismatch, len(preds), table.Len())
	}

	totals := make(map[string]float64)
	for i, row := range table.Rows {
		y := preds[i]
		if math.IsNaN(y) || y < 0 {
			y = 0
		}
		totals[row.ProductName] += y
	}
	return totals, nil
}

// applyActualsFloor keeps each total at or above units already recorded in span.
// addMissing also adds products that sold in span but were not predicted.
func (s *Service) applyActualsFloor(ctx context.Context, totals map[string]float64, span contracts.DateRange, addMissing bool) {
	actuals, err := s.store.ActualsBetween(ctx, span)
	if err != nil {
		s.log.Warn().Err(err).Msg("actuals lookup failed, serving model totals")
		return
	}
	for name, units := range actuals {
		if units <= 0 {
			continue
		}
		pred, ok := totals[name]
		if !ok && !addMissing {
			continue
		}
		totals[name] = math.Max(pred, units)
	}
}

func (s *Service) response(requested, used string, span contracts.DateRange, topK int, ranked []contracts.ForecastItem, h *model.Handle) *contracts.ForecastResponse {
	resp := &contracts.ForecastResponse{
		Status:        "ok",
		ModeRequested: requested,
		ModeUsed:      used,
		DateRange:     span.JSON(),
		TopK:          topK,
		TotalProducts: len(ranked),
		Items:         topItems(ranked, topK),
	}
	if h != nil {
		path := h.Path
		resp.ModelPath = &path
		resp.TrainedAt = h.TrainedAt()
	}
	return resp
}
