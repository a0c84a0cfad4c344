package model

import (
	"time"

	"github.com/wonny/salescast/internal/contracts"
)

// Metadata 학습 결과 메타데이터 (<artifact>.meta.json)
type Metadata struct {
	Mode          contracts.ModelMode `json:"mode"`
	RunID         string              `json:"runId"`
	Backend       string              `json:"backend"`
	TrainedAt     string              `json:"trainedAt"` // RFC3339
	Window        WindowInfo          `json:"window"`
	Month         int                 `json:"month"`
	Rows          RowCounts           `json:"rows"`
	Metrics       MetricsSet          `json:"metrics"`
	Features      FeatureInfo         `json:"features"`
	SchemaVersion string              `json:"schemaVersion"`
	Products      ProductInfo         `json:"products"`
	PolicyHash    string              `json:"policyHash"`
	DurationMs    int64               `json:"durationMs"`
}

// WindowInfo 학습 데이터 구간
type WindowInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RowCounts 분할별 행 수
type RowCounts struct {
	Total int `json:"total"`
	Train int `json:"train"`
	Valid int `json:"valid"`
	Test  int `json:"test"`
}

// MetricsSet 검증/테스트 지표 (테스트 세트가 없으면 Test = nil)
type MetricsSet struct {
	Valid *Scores `json:"valid"`
	Test  *Scores `json:"test"`
}

// Scores 회귀 지표
type Scores struct {
	MAPE float64 `json:"mape"`
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
}

// FeatureInfo 학습에 쓰인 컬럼
type FeatureInfo struct {
	Categorical []string `json:"categorical"`
	Numeric     []string `json:"numeric"`
}

// ProductInfo 동결된 제품 유니버스
type ProductInfo struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

// TrainedTime parses TrainedAt (zero when absent)
func (m *Metadata) TrainedTime() time.Time {
	if m == nil {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339, m.TrainedAt)
	return t
}
