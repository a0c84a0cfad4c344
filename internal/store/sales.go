package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/salescast/internal/contracts"
)

// SalesRepository sales 테이블 저장소 (contracts.SalesStore)
type SalesRepository struct {
	pool *pgxpool.Pool
}

// NewSalesRepository 새 저장소 생성
func NewSalesRepository(pool *pgxpool.Pool) *SalesRepository {
	return &SalesRepository{pool: pool}
}

// monthFilter matches every month when $n is 0
const monthFilter = `($%d::int = 0 OR EXTRACT(MONTH FROM date) = $%d::int)`

// DistinctProducts returns trimmed, non-empty product names sold inside span
func (r *SalesRepository) DistinctProducts(ctx context.Context, span contracts.DateRange, month int) ([]string, error) {
	query := `
		SELECT DISTINCT TRIM(product_name)
		FROM sales
		WHERE date BETWEEN $1 AND $2
		  AND ` + fmt.Sprintf(monthFilter, 3, 3) + `
		  AND TRIM(product_name) <> ''
		ORDER BY 1`

	rows, err := r.pool.Query(ctx, query, span.Start, span.End, month)
	if err != nil {
		return nil, fmt.Errorf("distinct products: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// History returns raw observations inside span ordered by date
func (r *SalesRepository) History(ctx context.Context, span contracts.DateRange, month int) ([]contracts.SalesObservation, error) {
	query := `
		SELECT product_name, date, units, created_at
		FROM sales
		WHERE date BETWEEN $1 AND $2
		  AND ` + fmt.Sprintf(monthFilter, 3, 3) + `
		ORDER BY date, product_name`

	rows, err := r.pool.Query(ctx, query, span.Start, span.End, month)
	if err != nil {
		return nil, fmt.Errorf("sales history: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (contracts.SalesObservation, error) {
		var o contracts.SalesObservation
		if err := row.Scan(&o.ProductName, &o.Date, &o.Units, &o.CreatedAt); err != nil {
			return o, err
		}
		o.ProductName = strings.TrimSpace(o.ProductName)
		o.Date = contracts.CivilDate(o.Date)
		return o, nil
	})
}

// LatestObservationAt returns the newest created_at recorded for date
func (r *SalesRepository) LatestObservationAt(ctx context.Context, date time.Time) (time.Time, bool, error) {
	query := `SELECT MAX(created_at) FROM sales WHERE date = $1`

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query, contracts.CivilDate(date)).Scan(&latest); err != nil {
		return time.Time{}, false, fmt.Errorf("latest observation: %w", err)
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return *latest, true, nil
}

// PartialUnits sums units per product for date recorded at or before asOf
func (r *SalesRepository) PartialUnits(ctx context.Context, date time.Time, asOf time.Time) (map[string]float64, error) {
	query := `
		SELECT TRIM(product_name), SUM(units)::float8
		FROM sales
		WHERE date = $1
		  AND created_at <= $2
		  AND TRIM(product_name) <> ''
		GROUP BY TRIM(product_name)`

	return r.unitsByProduct(ctx, query, contracts.CivilDate(date), asOf)
}

// ActualsBetween sums recorded units per product inside span
func (r *SalesRepository) ActualsBetween(ctx context.Context, span contracts.DateRange) (map[string]float64, error) {
	query := `
		SELECT TRIM(product_name), SUM(units)::float8
		FROM sales
		WHERE date BETWEEN $1 AND $2
		  AND TRIM(product_name) <> ''
		GROUP BY TRIM(product_name)`

	return r.unitsByProduct(ctx, query, span.Start, span.End)
}

// DailyAverages averages per-day unit totals per product inside span
func (r *SalesRepository) DailyAverages(ctx context.Context, span contracts.DateRange, month int) ([]contracts.ProductAverage, error) {
	query := `
		WITH daily AS (
			SELECT TRIM(product_name) AS product_name, date, SUM(units) AS units
			FROM sales
			WHERE date BETWEEN $1 AND $2
			  AND ` + fmt.Sprintf(monthFilter, 3, 3) + `
			  AND TRIM(product_name) <> ''
			GROUP BY TRIM(product_name), date
		)
		SELECT product_name, AVG(units)::float8
		FROM daily
		GROUP BY product_name
		ORDER BY product_name`

	rows, err := r.pool.Query(ctx, query, span.Start, span.End, month)
	if err != nil {
		return nil, fmt.Errorf("daily averages: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (contracts.ProductAverage, error) {
		var a contracts.ProductAverage
		err := row.Scan(&a.ProductName, &a.AvgDailyUnits)
		return a, err
	})
}

// RecordSale inserts one observation; a zero CreatedAt uses the database clock
func (r *SalesRepository) RecordSale(ctx context.Context, obs contracts.SalesObservation) (contracts.SalesObservation, error) {
	query := `
		INSERT INTO sales (product_name, units, date, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
		RETURNING created_at`

	var createdAt *time.Time
	if !obs.CreatedAt.IsZero() {
		createdAt = &obs.CreatedAt
	}

	obs.ProductName = strings.TrimSpace(obs.ProductName)
	obs.Date = contracts.CivilDate(obs.Date)
	if err := r.pool.QueryRow(ctx, query, obs.ProductName, obs.Units, obs.Date, createdAt).Scan(&obs.CreatedAt); err != nil {
		return contracts.SalesObservation{}, fmt.Errorf("record sale: %w", err)
	}
	return obs, nil
}

func (r *SalesRepository) unitsByProduct(ctx context.Context, query string, args ...any) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("units by product: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var (
			name  string
			units float64
		)
		if err := rows.Scan(&name, &units); err != nil {
			return nil, err
		}
		out[name] += units
	}
	return out, rows.Err()
}
