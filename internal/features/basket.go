package features

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/pkg/metrics"
)

// BasketResolver 장바구니 연관 통계 리졸버
type BasketResolver struct {
	source  contracts.EnrichmentDataSource
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewBasketResolver creates a new basket resolver
func NewBasketResolver(source contracts.EnrichmentDataSource, m *metrics.Metrics, log zerolog.Logger) *BasketResolver {
	return &BasketResolver{
		source:  source,
		metrics: m,
		log:     log.With().Str("component", "features.basket").Logger(),
	}
}

// Resolve returns count / max / mean confidence per product.
// Products without associations, and every product when the source is down, get zero stats.
func (r *BasketResolver) Resolve(ctx context.Context, products []string) map[string]contracts.BasketStats {
	names := CleanProducts(products)
	out := make(map[string]contracts.BasketStats, len(names))
	if len(names) == 0 {
		return out
	}

	assoc := r.source.BasketAssociations(ctx, names)
	if !assoc.OK() {
		r.metrics.EnrichmentDegraded("basket")
		r.log.Warn().Err(assoc.Cause()).Int("products", len(names)).Msg("basket enrichment unavailable, using defaults")
		return out
	}

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	sums := make(map[string]float64)
	for _, a := range assoc.Data() {
		if _, ok := wanted[a.PrimaryProduct]; !ok {
			continue
		}
		s := out[a.PrimaryProduct]
		s.AssociationCount++
		s.TopConfidence = math.Max(s.TopConfidence, a.ConfidenceScore)
		out[a.PrimaryProduct] = s
		sums[a.PrimaryProduct] += a.ConfidenceScore
	}
	for p, s := range out {
		s.AvgConfidence = sums[p] / float64(s.AssociationCount)
		out[p] = s
	}
	return out
}
