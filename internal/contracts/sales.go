package contracts

import "time"

// SalesObservation 판매 기록 (학습 타깃 + 당일 부분 관측의 원천)
type SalesObservation struct {
	ProductName string    `json:"productName"`
	Date        time.Time `json:"date"`  // 달력 날짜 (UTC 자정)
	Units       int       `json:"units"` // >= 0
	CreatedAt   time.Time `json:"createdAt"`
}

// RawSale 정규화 전 학습 입력 행
// Units 는 숫자, 문자열, nil 등 무엇이든 올 수 있음
type RawSale struct {
	ProductName string
	Date        string
	Units       any
}

// DailyTotal 제품별 일일 EOD 합계
type DailyTotal struct {
	ProductName string
	Date        time.Time
	Units       float64
}

// ProductAverage 기간 평균 일판매량
type ProductAverage struct {
	ProductName   string
	AvgDailyUnits float64
}

// DiscountWindow 프로모션 구간 (양끝 포함)
type DiscountWindow struct {
	ProductName     string
	DiscountPercent float64 // 0~100
	StartDate       time.Time
	EndDate         time.Time
}

// Covers reports whether date falls inside [StartDate, EndDate]
func (w DiscountWindow) Covers(date time.Time) bool {
	d := CivilDate(date)
	return !d.Before(CivilDate(w.StartDate)) && !d.After(CivilDate(w.EndDate))
}

// DiscountEffectivenessRecord (product, percent) 별 과거 평균 판매 상승률
type DiscountEffectivenessRecord struct {
	ProductName         string
	DiscountPercent     float64
	AvgSalesLiftPercent float64
}

// BasketAssociation 장바구니 연관 규칙 한 건
type BasketAssociation struct {
	PrimaryProduct  string
	ConfidenceScore float64 // 0~1
}

// DiscountContext 한 (product, date) 행의 할인 피처
type DiscountContext struct {
	HasActiveDiscount        int
	DiscountPercent          float64
	AvgDiscountEffectiveness float64
}

// BasketStats 제품별 장바구니 연관 통계
type BasketStats struct {
	AssociationCount int
	TopConfidence    float64
	AvgConfidence    float64
}
