package contracts

import "math"

// ModelMode 모델 캐시 모드
type ModelMode string

const (
	// ModeSeed 고정 시드 구간으로 학습된 기준 모델 (제품 유니버스 동결)
	ModeSeed ModelMode = "seed"
	// ModeLive 최신 데이터까지 학습된 현재 모델
	ModeLive ModelMode = "live"
	// ModeHistorical 모델 없이 평균 기반 QA 기준선
	ModeHistorical ModelMode = "historical"
)

// ParseMode validates a seed/live mode string ("" → fallback)
func ParseMode(s string, fallback ModelMode) (ModelMode, error) {
	switch ModelMode(s) {
	case "":
		return fallback, nil
	case ModeSeed, ModeLive:
		return ModelMode(s), nil
	default:
		return "", NewValidationError("mode", "must be one of: seed, live")
	}
}

// ForecastItem 제품별 예측 결과
type ForecastItem struct {
	ProductName    string   `json:"productName"`
	PredictedUnits float64  `json:"predictedUnits"` // >= 0
	Confidence     *float64 `json:"confidence"`     // 0~1, 없으면 null
}

// ForecastResponse 예측 응답
type ForecastResponse struct {
	Status        string         `json:"status"`
	ModeRequested string         `json:"modeRequested"`
	ModeUsed      string         `json:"modeUsed"`
	DateRange     DateRangeJSON  `json:"dateRange"`
	TopK          int            `json:"topK"`
	TotalProducts int            `json:"totalProducts"`
	Items         []ForecastItem `json:"items"`
	ModelPath     *string        `json:"modelPath"`
	TrainedAt     *string        `json:"trainedAt"`

	// 당일 예측 전용
	AsOf        *string  `json:"asOf,omitempty"`
	DayFraction *float64 `json:"dayFraction,omitempty"`
	BlendWeight *float64 `json:"blendWeight,omitempty"`
}

// Round3 rounds to 3 decimals (confidence reporting precision)
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Clamp01 clamps v into [0, 1]
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
