package model

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/features"
)

// halloweenEdges buckets days_to_halloween: after, day-of, 1-3, 4-7, 8-14, 15-30, >30
var halloweenEdges = []int{-1, 0, 3, 7, 14, 30}

// shrinkage pulls sparse factors toward 1
const shrinkage = 5.0

// ProfileModel 곱셈형 프로필 회귀 모델
// 예측 = 제품 평균 × 요일 계수 × 핼러윈 근접 계수 × 할인 계수 (미학습 제품은 전체 평균)
type ProfileModel struct {
	SchemaVersion   string             `json:"schemaVersion"`
	Columns         []string           `json:"columns"`
	GlobalMean      float64            `json:"globalMean"`
	ProductMean     map[string]float64 `json:"productMean"`
	DOWFactor       [7]float64         `json:"dowFactor"`
	HalloweenFactor []float64          `json:"halloweenFactor"`
	PromoFactor     float64            `json:"promoFactor"`
	TrainRows       int                `json:"trainRows"`
}

// FitProfile fits the profile model on a validated training table
func FitProfile(table features.Table) (*ProfileModel, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if table.Len() == 0 || table.Target == nil {
		return nil, fmt.Errorf("%w: no training rows", contracts.ErrInsufficientData)
	}

	m := &ProfileModel{
		SchemaVersion:   contracts.SchemaVersion,
		Columns:         features.Columns(),
		ProductMean:     make(map[string]float64),
		HalloweenFactor: make([]float64, len(halloweenEdges)+1),
		TrainRows:       table.Len(),
	}

	// product means
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var total float64
	for i, r := range table.Rows {
		y := math.Max(0, table.Target[i])
		sums[r.ProductName] += y
		counts[r.ProductName]++
		total += y
	}
	m.GlobalMean = total / float64(table.Len())
	for p, s := range sums {
		m.ProductMean[p] = s / float64(counts[p])
	}

	// ratios of each row to its product mean, grouped per factor
	var (
		dowSum   [7]float64
		dowN     [7]float64
		hwSum    = make([]float64, len(m.HalloweenFactor))
		hwN      = make([]float64, len(m.HalloweenFactor))
		promoSum float64
		promoN   float64
	)
	for i, r := range table.Rows {
		base := m.ProductMean[r.ProductName]
		if base <= 0 {
			continue
		}
		ratio := math.Max(0, table.Target[i]) / base

		dowSum[r.DOW] += ratio
		dowN[r.DOW]++

		b := halloweenBucket(r.DaysToHalloween)
		hwSum[b] += ratio
		hwN[b]++

		if r.HasActiveDiscount == 1 {
			promoSum += ratio
			promoN++
		}
	}
	for d := range m.DOWFactor {
		m.DOWFactor[d] = shrink(dowSum[d], dowN[d])
	}
	for b := range m.HalloweenFactor {
		m.HalloweenFactor[b] = shrink(hwSum[b], hwN[b])
	}
	m.PromoFactor = shrink(promoSum, promoN)

	return m, nil
}

// Predict returns a non-negative daily prediction per row
func (m *ProfileModel) Predict(_ context.Context, rows []contracts.FeatureRow) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, r := range rows {
		if r.DOW < 0 || r.DOW > 6 {
			return nil, fmt.Errorf("%w: dow %d out of range", contracts.ErrSchemaMismatch, r.DOW)
		}
		base, ok := m.ProductMean[r.ProductName]
		if !ok {
			base = m.GlobalMean
		}
		y := base * m.DOWFactor[r.DOW] * m.HalloweenFactor[halloweenBucket(r.DaysToHalloween)]
		if r.HasActiveDiscount == 1 {
			y *= m.PromoFactor
		}
		out[i] = math.Max(0, y)
	}
	return out, nil
}

// KnownProductVocabulary returns the sorted products seen at fit time
func (m *ProfileModel) KnownProductVocabulary() ([]string, bool) {
	if len(m.ProductMean) == 0 {
		return nil, false
	}
	names := make([]string, 0, len(m.ProductMean))
	for p := range m.ProductMean {
		names = append(names, p)
	}
	sort.Strings(names)
	return names, true
}

// Check verifies a decoded artifact matches the serving schema
func (m *ProfileModel) Check() error {
	if m.SchemaVersion != contracts.SchemaVersion {
		return fmt.Errorf("%w: artifact schema %q, serving %q", contracts.ErrSchemaMismatch, m.SchemaVersion, contracts.SchemaVersion)
	}
	if err := features.ValidateColumns(m.Columns); err != nil {
		return err
	}
	if len(m.HalloweenFactor) != len(halloweenEdges)+1 {
		return fmt.Errorf("%w: %d halloween buckets", contracts.ErrSchemaMismatch, len(m.HalloweenFactor))
	}
	return nil
}

func halloweenBucket(days int) int {
	for i, edge := range halloweenEdges {
		if days <= edge {
			return i
		}
	}
	return len(halloweenEdges)
}

// shrink is the mean ratio blended with shrinkage pseudo-observations of 1
func shrink(sum, n float64) float64 {
	return (sum + shrinkage) / (n + shrinkage)
}
