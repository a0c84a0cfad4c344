package policy

import (
	"fmt"

	"github.com/wonny/salescast/internal/contracts"
)

// Policy 예측 정책 (YAML)
// ⭐ SSOT: 영업시간, 블렌딩 상수, 시드 구간, top-k 한도는 여기서만 정의
type Policy struct {
	Intraday   IntradayPolicy `yaml:"intraday" json:"intraday"`
	SeedWindow SeedWindow     `yaml:"seed_window" json:"seed_window"`
	Training   TrainingPolicy `yaml:"training" json:"training"`
	Forecast   ForecastPolicy `yaml:"forecast" json:"forecast"`
}

// IntradayPolicy 당일 블렌딩 파라미터
type IntradayPolicy struct {
	OpenHour    int     `yaml:"open_hour" json:"open_hour"`       // 영업 시작 (APP_TZ)
	CloseHour   int     `yaml:"close_hour" json:"close_hour"`     // 영업 종료
	WeightAccel float64 `yaml:"weight_accel" json:"weight_accel"` // > 1, 관측치 쪽으로 가중
	MinFraction float64 `yaml:"min_fraction" json:"min_fraction"` // 0 나눗셈 방지 하한
}

// SeedWindow 시드 모델 고정 구간 (YYYY-MM-DD)
type SeedWindow struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// TrainingPolicy 학습 데이터 범위 / 분할
type TrainingPolicy struct {
	Month          int     `yaml:"month" json:"month"`                         // 학습 대상 월 (0 = 전체)
	ValidFraction  float64 `yaml:"valid_fraction" json:"valid_fraction"`       // 검증 비율
	TestFraction   float64 `yaml:"test_fraction" json:"test_fraction"`         // 테스트 비율
	MinRowsForTest int     `yaml:"min_rows_for_test" json:"min_rows_for_test"` // 미만이면 테스트 세트 없음
}

// ForecastPolicy 응답 크기
type ForecastPolicy struct {
	DefaultTopK int `yaml:"default_top_k" json:"default_top_k"`
	MaxTopK     int `yaml:"max_top_k" json:"max_top_k"`
}

// Default returns the built-in policy
func Default() *Policy {
	return &Policy{
		Intraday: IntradayPolicy{
			OpenHour:    8,
			CloseHour:   22,
			WeightAccel: 1.25,
			MinFraction: 1e-6,
		},
		SeedWindow: SeedWindow{
			Start: "2015-10-01",
			End:   "2024-10-31",
		},
		Training: TrainingPolicy{
			Month:          10,
			ValidFraction:  0.2,
			TestFraction:   0.2,
			MinRowsForTest: 10,
		},
		Forecast: ForecastPolicy{
			DefaultTopK: 10,
			MaxTopK:     100,
		},
	}
}

// SeedRange returns the seed window as a date range (policy must be validated)
func (p *Policy) SeedRange() contracts.DateRange {
	start, _ := contracts.ParseDate(p.SeedWindow.Start)
	end, _ := contracts.ParseDate(p.SeedWindow.End)
	return contracts.DateRange{Start: start, End: end}
}

// TopK resolves a requested top-k: 0 means default, otherwise it must be in [1, MaxTopK]
func (p *Policy) TopK(requested int) (int, error) {
	if requested == 0 {
		return p.Forecast.DefaultTopK, nil
	}
	if requested < 1 || requested > p.Forecast.MaxTopK {
		return 0, contracts.NewValidationError("top_k", fmt.Sprintf("must be between 1 and %d", p.Forecast.MaxTopK))
	}
	return requested, nil
}
