package features

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/pkg/metrics"
)

// DiscountResolver 할인 컨텍스트 리졸버
// 데이터 소스 장애 시 기본값(0, 0.0, 0.0)으로 대체하고 에러를 내지 않음
type DiscountResolver struct {
	source  contracts.EnrichmentDataSource
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewDiscountResolver creates a new discount resolver
func NewDiscountResolver(source contracts.EnrichmentDataSource, m *metrics.Metrics, log zerolog.Logger) *DiscountResolver {
	return &DiscountResolver{
		source:  source,
		metrics: m,
		log:     log.With().Str("component", "features.discount").Logger(),
	}
}

type effectivenessKey struct {
	product string
	percent float64
}

// Resolve returns one DiscountContext per row, aligned with rows
func (r *DiscountResolver) Resolve(ctx context.Context, rows []contracts.FeatureRow) []contracts.DiscountContext {
	out := make([]contracts.DiscountContext, len(rows))
	if len(rows) == 0 {
		return out
	}

	products, dates := distinctProducts(rows), rowSpan(rows)

	windows := r.source.ActiveDiscounts(ctx, products, dates)
	if !windows.OK() {
		r.degraded("windows", windows.Cause())
		return out
	}

	idx := newIntervalIndex(windows.Data())
	anyDiscount := false
	for i, row := range rows {
		if pct, ok := idx.lookup(row.ProductName, dayNumber(row.Date)); ok {
			out[i].HasActiveDiscount = 1
			out[i].DiscountPercent = pct
			anyDiscount = anyDiscount || pct > 0
		}
	}
	if !anyDiscount {
		return out
	}

	records := r.source.DiscountEffectiveness(ctx, products)
	if !records.OK() {
		// flags stay resolved; only the lift falls back to 0
		r.degraded("effectiveness", records.Cause())
		return out
	}

	lift := effectivenessTable(records.Data())
	for i := range out {
		if out[i].DiscountPercent <= 0 {
			continue
		}
		// exact (product, percent) match
		out[i].AvgDiscountEffectiveness = lift[effectivenessKey{rows[i].ProductName, out[i].DiscountPercent}]
	}
	return out
}

func (r *DiscountResolver) degraded(lookup string, cause error) {
	r.metrics.EnrichmentDegraded("discount")
	r.log.Warn().Err(cause).Str("lookup", lookup).Msg("discount enrichment unavailable, using defaults")
}

// effectivenessTable averages duplicate (product, percent) records
func effectivenessTable(records []contracts.DiscountEffectivenessRecord) map[effectivenessKey]float64 {
	sums := make(map[effectivenessKey]float64, len(records))
	counts := make(map[effectivenessKey]int, len(records))
	for _, rec := range records {
		if rec.DiscountPercent <= 0 {
			continue
		}
		k := effectivenessKey{rec.ProductName, rec.DiscountPercent}
		sums[k] += rec.AvgSalesLiftPercent
		counts[k]++
	}
	for k, n := range counts {
		sums[k] /= float64(n)
	}
	return sums
}

func distinctProducts(rows []contracts.FeatureRow) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.ProductName
	}
	return CleanProducts(names)
}

// rowSpan is the [min, max] date across rows (rows must be non-empty)
func rowSpan(rows []contracts.FeatureRow) contracts.DateRange {
	lo, hi := rows[0].Date, rows[0].Date
	for _, r := range rows[1:] {
		if r.Date.Before(lo) {
			lo = r.Date
		}
		if r.Date.After(hi) {
			hi = r.Date
		}
	}
	return contracts.DateRange{Start: contracts.CivilDate(lo), End: contracts.CivilDate(hi)}
}
