package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
)

// DefaultEnrichmentTimeout bounds each enrichment query
const DefaultEnrichmentTimeout = 5 * time.Second

// EnrichmentSource 할인/장바구니 테이블 조회 (contracts.EnrichmentDataSource)
// ⭐ SSOT: 쿼리 실패는 모두 Unavailable 로 변환 (리졸버가 기본값으로 복구)
type EnrichmentSource struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	log     zerolog.Logger
}

// NewEnrichmentSource creates a source over pool; timeout <= 0 uses the default
func NewEnrichmentSource(pool *pgxpool.Pool, timeout time.Duration, log zerolog.Logger) *EnrichmentSource {
	if timeout <= 0 {
		timeout = DefaultEnrichmentTimeout
	}
	return &EnrichmentSource{
		pool:    pool,
		timeout: timeout,
		log:     log.With().Str("component", "store.enrichment").Logger(),
	}
}

// ActiveDiscounts returns windows for products that overlap span
func (s *EnrichmentSource) ActiveDiscounts(ctx context.Context, products []string, span contracts.DateRange) contracts.Lookup[[]contracts.DiscountWindow] {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT TRIM(product_name), discount_percent::float8, start_date, end_date
		FROM discounts
		WHERE TRIM(product_name) = ANY($1)
		  AND start_date <= $3
		  AND end_date >= $2`

	rows, err := s.pool.Query(ctx, query, products, span.Start, span.End)
	if err != nil {
		return contracts.Unavailable[[]contracts.DiscountWindow](err)
	}

	windows, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (contracts.DiscountWindow, error) {
		var w contracts.DiscountWindow
		err := row.Scan(&w.ProductName, &w.DiscountPercent, &w.StartDate, &w.EndDate)
		return w, err
	})
	if err != nil {
		return contracts.Unavailable[[]contracts.DiscountWindow](err)
	}
	return contracts.Available(windows)
}

// DiscountEffectiveness returns the mean lift per (product, percent) for positive percents
func (s *EnrichmentSource) DiscountEffectiveness(ctx context.Context, products []string) contracts.Lookup[[]contracts.DiscountEffectivenessRecord] {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT TRIM(product_name), discount_percent::float8, AVG(sales_lift_percent)::float8
		FROM discount_effectiveness
		WHERE TRIM(product_name) = ANY($1)
		  AND discount_percent > 0
		GROUP BY TRIM(product_name), discount_percent`

	rows, err := s.pool.Query(ctx, query, products)
	if err != nil {
		return contracts.Unavailable[[]contracts.DiscountEffectivenessRecord](err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (contracts.DiscountEffectivenessRecord, error) {
		var r contracts.DiscountEffectivenessRecord
		err := row.Scan(&r.ProductName, &r.DiscountPercent, &r.AvgSalesLiftPercent)
		return r, err
	})
	if err != nil {
		return contracts.Unavailable[[]contracts.DiscountEffectivenessRecord](err)
	}
	return contracts.Available(records)
}

// BasketAssociations returns every association whose primary product is in products
func (s *EnrichmentSource) BasketAssociations(ctx context.Context, products []string) contracts.Lookup[[]contracts.BasketAssociation] {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT TRIM(primary_product), confidence_score::float8
		FROM basket_analysis
		WHERE TRIM(primary_product) = ANY($1)`

	rows, err := s.pool.Query(ctx, query, products)
	if err != nil {
		return contracts.Unavailable[[]contracts.BasketAssociation](err)
	}

	assocs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (contracts.BasketAssociation, error) {
		var a contracts.BasketAssociation
		err := row.Scan(&a.PrimaryProduct, &a.ConfidenceScore)
		return a, err
	})
	if err != nil {
		return contracts.Unavailable[[]contracts.BasketAssociation](err)
	}
	return contracts.Available(assocs)
}

// NopSource 보강 테이블이 없는 배포용 (모든 조회 Unavailable)
type NopSource struct{}

// ActiveDiscounts always reports unavailable
func (NopSource) ActiveDiscounts(context.Context, []string, contracts.DateRange) contracts.Lookup[[]contracts.DiscountWindow] {
	return contracts.Unavailable[[]contracts.DiscountWindow](nil)
}

// DiscountEffectiveness always reports unavailable
func (NopSource) DiscountEffectiveness(context.Context, []string) contracts.Lookup[[]contracts.DiscountEffectivenessRecord] {
	return contracts.Unavailable[[]contracts.DiscountEffectivenessRecord](nil)
}

// BasketAssociations always reports unavailable
func (NopSource) BasketAssociations(context.Context, []string) contracts.Lookup[[]contracts.BasketAssociation] {
	return contracts.Unavailable[[]contracts.BasketAssociation](nil)
}
