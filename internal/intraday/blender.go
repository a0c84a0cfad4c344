package intraday

import (
	"math"
	"sort"
	"time"
)

// confidenceEps bounds the confidence denominator away from zero
const confidenceEps = 1e-9

// Blender 모델 사전예측 + 당일 부분 관측 → EOD 추정
// 순수 함수: 공유 상태 없음
type Blender struct {
	accel       float64 // > 1
	minFraction float64 // > 0
}

// NewBlender creates a blender with the acceleration constant and fraction floor
func NewBlender(accel, minFraction float64) Blender {
	return Blender{accel: accel, minFraction: minFraction}
}

// Input 블렌딩 입력
type Input struct {
	Now            time.Time
	OpenHour       int
	CloseHour      int
	ModelPred      map[string]float64 // 대상 날짜의 하루 전체 예측
	PartialUnits   map[string]float64 // Now 까지 관측된 판매량
	BaseConfidence *float64           // 0~1, nil 이면 confidence 없음
}

// Estimate 제품별 EOD 추정
type Estimate struct {
	ProductName  string
	EODUnits     float64
	ModelPred    float64
	PartialUnits float64
	Extrapolated float64
	Confidence   *float64
}

// Result 블렌딩 결과
type Result struct {
	DayFraction       float64
	EffectiveFraction float64
	Weight            float64
	Estimates         []Estimate // EODUnits 내림차순, 동률은 이름 오름차순
}

// Blend combines the model prior with partial observations
func (b Blender) Blend(in Input) Result {
	frac := DayFraction(in.Now, in.OpenHour, in.CloseHour)
	return b.BlendAt(frac, in.ModelPred, in.PartialUnits, in.BaseConfidence)
}

// BlendAt runs the blend for an already computed day fraction
func (b Blender) BlendAt(frac float64, modelPred, partial map[string]float64, baseConfidence *float64) Result {
	frac = clamp01(frac)
	eff := math.Max(frac, b.minFraction)
	w := clamp01(frac * b.accel)

	res := Result{DayFraction: frac, EffectiveFraction: eff, Weight: w}

	names := unionKeys(modelPred, partial)
	if len(names) == 0 {
		res.Estimates = []Estimate{}
		return res
	}

	res.Estimates = make([]Estimate, 0, len(names))
	for _, name := range names {
		m := math.Max(0, modelPred[name])
		p := math.Max(0, partial[name])

		extrapolated := p / eff
		eod := (1-w)*m + w*extrapolated
		// never below what was already observed
		eod = math.Max(eod, p)

		est := Estimate{
			ProductName:  name,
			EODUnits:     eod,
			ModelPred:    m,
			PartialUnits: p,
			Extrapolated: extrapolated,
		}
		if baseConfidence != nil {
			share := ((1 - w) * m) / math.Max(eod, confidenceEps)
			c := clamp01(*baseConfidence * share)
			est.Confidence = &c
		}
		res.Estimates = append(res.Estimates, est)
	}

	sort.SliceStable(res.Estimates, func(i, j int) bool {
		a, c := res.Estimates[i], res.Estimates[j]
		if a.EODUnits != c.EODUnits {
			return a.EODUnits > c.EODUnits
		}
		return a.ProductName < c.ProductName
	})
	return res
}

// BaseConfidenceFromMAPE converts a validation MAPE into a base confidence in [0, 1].
// A MAPE above 1 is read as a percentage.
func BaseConfidenceFromMAPE(mape float64) float64 {
	if math.IsNaN(mape) || math.IsInf(mape, 0) {
		return 0
	}
	if mape > 1 {
		mape /= 100
	}
	return clamp01(1 - mape)
}

func unionKeys(a, b map[string]float64) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
