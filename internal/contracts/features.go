package contracts

import "time"

// SchemaVersion 피처 스키마 버전. 컬럼 추가/순서 변경 시 올려야 하며 기존 모델과 호환되지 않음
const SchemaVersion = "v1"

// CategoricalColumns 범주형 컬럼
var CategoricalColumns = []string{"product_name"}

// NumericColumns 수치형 컬럼 (순서 고정)
var NumericColumns = []string{
	"year", "month", "day", "dow", "doy", "is_weekend", "days_to_halloween",
	"has_active_discount", "discount_percent", "avg_discount_effectiveness",
	"basket_association_count", "top_basket_confidence", "avg_basket_confidence",
}

// FeatureRow 학습/추론 공용 피처 행 (요청마다 새로 생성, 저장하지 않음)
type FeatureRow struct {
	ProductName string    `json:"product_name"`
	Date        time.Time `json:"-"`

	// calendar
	Year            int `json:"year"`
	Month           int `json:"month"`
	Day             int `json:"day"`
	DOW             int `json:"dow"` // Monday=0 .. Sunday=6
	DOY             int `json:"doy"`
	IsWeekend       int `json:"is_weekend"`
	DaysToHalloween int `json:"days_to_halloween"`

	// discount
	HasActiveDiscount        int     `json:"has_active_discount"`
	DiscountPercent          float64 `json:"discount_percent"`
	AvgDiscountEffectiveness float64 `json:"avg_discount_effectiveness"`

	// basket
	BasketAssociationCount int     `json:"basket_association_count"`
	TopBasketConfidence    float64 `json:"top_basket_confidence"`
	AvgBasketConfidence    float64 `json:"avg_basket_confidence"`
}

// Numeric returns the numeric fields in NumericColumns order
func (r FeatureRow) Numeric() []float64 {
	return []float64{
		float64(r.Year),
		float64(r.Month),
		float64(r.Day),
		float64(r.DOW),
		float64(r.DOY),
		float64(r.IsWeekend),
		float64(r.DaysToHalloween),
		float64(r.HasActiveDiscount),
		r.DiscountPercent,
		r.AvgDiscountEffectiveness,
		float64(r.BasketAssociationCount),
		r.TopBasketConfidence,
		r.AvgBasketConfidence,
	}
}

// ApplyDiscount copies a resolved discount context into the row
func (r *FeatureRow) ApplyDiscount(c DiscountContext) {
	r.HasActiveDiscount = c.HasActiveDiscount
	r.DiscountPercent = c.DiscountPercent
	r.AvgDiscountEffectiveness = c.AvgDiscountEffectiveness
}

// ApplyBasket copies basket stats into the row
func (r *FeatureRow) ApplyBasket(s BasketStats) {
	r.BasketAssociationCount = s.AssociationCount
	r.TopBasketConfidence = s.TopConfidence
	r.AvgBasketConfidence = s.AvgConfidence
}
