package contracts

import (
	"context"
	"time"
)

// ModelGateway 학습된 회귀 모델 (예측 + 학습된 제품 어휘)
// ⭐ SSOT: 모델 내부(fit/predict)는 이 인터페이스 뒤에 숨김
type ModelGateway interface {
	// Predict returns one value per row, in row order
	Predict(ctx context.Context, rows []FeatureRow) ([]float64, error)
	// KnownProductVocabulary returns the products seen at fit time, if the model knows them
	KnownProductVocabulary() ([]string, bool)
}

// EnrichmentDataSource 할인/장바구니 보강 데이터 조회
// 백엔드 장애는 error 가 아니라 Unavailable 로 전달됨
type EnrichmentDataSource interface {
	ActiveDiscounts(ctx context.Context, products []string, span DateRange) Lookup[[]DiscountWindow]
	DiscountEffectiveness(ctx context.Context, products []string) Lookup[[]DiscountEffectivenessRecord]
	BasketAssociations(ctx context.Context, products []string) Lookup[[]BasketAssociation]
}

// SalesStore 판매 기록 저장소
// month = 0 이면 월 필터 없음
type SalesStore interface {
	DistinctProducts(ctx context.Context, span DateRange, month int) ([]string, error)
	History(ctx context.Context, span DateRange, month int) ([]SalesObservation, error)
	// LatestObservationAt returns the newest created_at recorded for date (false when none)
	LatestObservationAt(ctx context.Context, date time.Time) (time.Time, bool, error)
	// PartialUnits sums units per product for date with created_at <= asOf
	PartialUnits(ctx context.Context, date time.Time, asOf time.Time) (map[string]float64, error)
	ActualsBetween(ctx context.Context, span DateRange) (map[string]float64, error)
	// DailyAverages averages per-day unit totals per product
	DailyAverages(ctx context.Context, span DateRange, month int) ([]ProductAverage, error)
	RecordSale(ctx context.Context, obs SalesObservation) (SalesObservation, error)
}
