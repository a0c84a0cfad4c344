package features

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/pkg/metrics"
)

// Enricher 학습/추론 공용 피처 파이프라인
// ⭐ SSOT: 학습과 서빙이 같은 경로로 피처를 생성해야 스키마가 일치함
type Enricher struct {
	discounts *DiscountResolver
	baskets   *BasketResolver
	log       zerolog.Logger
}

// NewEnricher creates a new enricher over one data source
func NewEnricher(source contracts.EnrichmentDataSource, m *metrics.Metrics, log zerolog.Logger) *Enricher {
	return &Enricher{
		discounts: NewDiscountResolver(source, m, log),
		baskets:   NewBasketResolver(source, m, log),
		log:       log.With().Str("component", "features.enricher").Logger(),
	}
}

// Training normalizes raw rows and builds the feature table with its target vector
func (e *Enricher) Training(ctx context.Context, raw []contracts.RawSale) (Table, error) {
	obs, err := Normalize(raw)
	if err != nil {
		return Table{}, err
	}
	return e.TrainingFromObservations(ctx, obs)
}

// TrainingFromObservations builds the training table from already-clean observations
func (e *Enricher) TrainingFromObservations(ctx context.Context, obs []contracts.SalesObservation) (Table, error) {
	rows := make([]contracts.FeatureRow, len(obs))
	target := make([]float64, len(obs))
	for i, o := range obs {
		rows[i] = CalendarRow(o.ProductName, o.Date)
		target[i] = float64(o.Units)
	}

	e.enrich(ctx, rows)

	table := NewTable(rows, target)
	if err := table.Validate(); err != nil {
		return Table{}, err
	}
	e.log.Debug().Int("rows", len(rows)).Msg("training features built")
	return table, nil
}

// Inference builds the product × date grid and enriches it (no target)
func (e *Enricher) Inference(ctx context.Context, products []string, span contracts.DateRange) (Table, error) {
	rows, err := BuildGrid(products, span)
	if err != nil {
		return Table{}, err
	}

	e.enrich(ctx, rows)

	table := NewTable(rows, nil)
	if err := table.Validate(); err != nil {
		return Table{}, err
	}
	e.log.Debug().
		Int("rows", len(rows)).
		Str("start", span.Start.Format(contracts.DateLayout)).
		Str("end", span.End.Format(contracts.DateLayout)).
		Msg("inference features built")
	return table, nil
}

func (e *Enricher) enrich(ctx context.Context, rows []contracts.FeatureRow) {
	if len(rows) == 0 {
		return
	}

	for i, c := range e.discounts.Resolve(ctx, rows) {
		rows[i].ApplyDiscount(c)
	}

	stats := e.baskets.Resolve(ctx, distinctProducts(rows))
	for i := range rows {
		rows[i].ApplyBasket(stats[rows[i].ProductName])
	}
}
