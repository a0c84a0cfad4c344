package intraday

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func at(loc *time.Location, hour, min int) time.Time {
	return time.Date(2024, 10, 10, hour, min, 0, 0, loc)
}

func ptr(v float64) *float64 { return &v }

func TestDayFraction(t *testing.T) {
	loc := newYork(t)

	tests := []struct {
		name string
		now  time.Time
		want float64
	}{
		{"before open", at(loc, 6, 30), 0},
		{"at open", at(loc, 8, 0), 0},
		{"midday", at(loc, 15, 0), 0.5},
		{"at close", at(loc, 22, 0), 1},
		{"after close", at(loc, 23, 59), 1},
		{"quarter", at(loc, 11, 30), 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DayFraction(tt.now, 8, 22), 1e-12)
		})
	}
}

func TestDayFractionMonotonic(t *testing.T) {
	loc := newYork(t)
	prev := -1.0
	for m := 0; m < 24*60; m += 7 {
		f := DayFraction(at(loc, 0, 0).Add(time.Duration(m)*time.Minute), 8, 22)
		assert.GreaterOrEqual(t, f, prev)
		assert.True(t, f >= 0 && f <= 1)
		prev = f
	}
}

func TestResolveNow(t *testing.T) {
	loc := newYork(t)
	target := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	latest := time.Date(2024, 10, 10, 17, 45, 0, 0, time.UTC) // 13:45 EDT
	override := at(loc, 20, 0)

	got := ResolveNow(target, &override, latest, true, 8, loc)
	assert.True(t, override.Equal(got))

	got = ResolveNow(target, nil, latest, true, 8, loc)
	assert.True(t, latest.Equal(got))
	assert.Equal(t, 13, got.Hour())

	got = ResolveNow(target, nil, time.Time{}, false, 8, loc)
	assert.True(t, at(loc, 8, 0).Equal(got))
	assert.Equal(t, 0.0, DayFraction(got, 8, 22))
}

func TestParseAsOf(t *testing.T) {
	loc := newYork(t)

	got, err := ParseAsOf("2024-10-10T15:00:00", loc)
	require.NoError(t, err)
	assert.True(t, at(loc, 15, 0).Equal(got))

	got, err = ParseAsOf("2024-10-10T19:00:00Z", loc)
	require.NoError(t, err)
	assert.True(t, at(loc, 15, 0).Equal(got))
	assert.Equal(t, 15, got.Hour())

	_, err = ParseAsOf("yesterday", loc)
	assert.Error(t, err)
}

func TestBlendScenario(t *testing.T) {
	b := NewBlender(1.25, 1e-6)

	res := b.BlendAt(0.5, map[string]float64{"CandyX": 100}, map[string]float64{"CandyX": 40}, nil)

	assert.Equal(t, 0.5, res.DayFraction)
	assert.Equal(t, 0.5, res.EffectiveFraction)
	assert.Equal(t, 0.625, res.Weight)
	require.Len(t, res.Estimates, 1)

	e := res.Estimates[0]
	assert.InDelta(t, 80, e.Extrapolated, 1e-9)
	assert.InDelta(t, 87.5, e.EODUnits, 1e-9)
	assert.Nil(t, e.Confidence)
}

func TestBlendFromClock(t *testing.T) {
	loc := newYork(t)
	b := NewBlender(1.25, 1e-6)

	res := b.Blend(Input{
		Now:          at(loc, 15, 0),
		OpenHour:     8,
		CloseHour:    22,
		ModelPred:    map[string]float64{"CandyX": 100},
		PartialUnits: map[string]float64{"CandyX": 40},
	})
	assert.InDelta(t, 87.5, res.Estimates[0].EODUnits, 1e-9)
}

func TestBlendAtOpenReturnsModelPrior(t *testing.T) {
	b := NewBlender(1.25, 1e-6)

	res := b.BlendAt(0, map[string]float64{"CandyX": 100}, nil, ptr(0.8))
	e := res.Estimates[0]
	assert.Equal(t, 0.0, res.Weight)
	assert.Equal(t, 1e-6, res.EffectiveFraction)
	assert.Equal(t, 100.0, e.EODUnits)
	require.NotNil(t, e.Confidence)
	assert.InDelta(t, 0.8, *e.Confidence, 1e-12)
}

func TestBlendLateDayTracksObservations(t *testing.T) {
	b := NewBlender(1.25, 1e-6)

	res := b.BlendAt(0.9, map[string]float64{"CandyX": 10}, map[string]float64{"CandyX": 90}, ptr(0.9))
	e := res.Estimates[0]
	assert.Equal(t, 1.0, res.Weight)
	assert.InDelta(t, 100, e.EODUnits, 1e-9)
	require.NotNil(t, e.Confidence)
	assert.Equal(t, 0.0, *e.Confidence)
}

func TestBlendObservedFloor(t *testing.T) {
	b := NewBlender(1.25, 1e-6)
	fractions := []float64{0, 1e-9, 0.01, 0.1, 0.3, 0.5, 0.79, 0.8, 0.95, 1}
	preds := []float64{0, 1, 5, 50, 500}
	partials := []float64{0, 1, 7, 60, 1000}

	for _, f := range fractions {
		for _, m := range preds {
			for _, p := range partials {
				res := b.BlendAt(f, map[string]float64{"X": m}, map[string]float64{"X": p}, ptr(1))
				e := res.Estimates[0]
				assert.GreaterOrEqual(t, e.EODUnits, p, "f=%v m=%v p=%v", f, m, p)
				assert.False(t, math.IsNaN(e.EODUnits) || math.IsInf(e.EODUnits, 0))
				require.NotNil(t, e.Confidence)
				assert.True(t, *e.Confidence >= 0 && *e.Confidence <= 1, "confidence %v", *e.Confidence)
			}
		}
	}
}

func TestBlendConfidenceDecays(t *testing.T) {
	b := NewBlender(1.25, 1e-6)
	prev := math.Inf(1)
	for _, f := range []float64{0, 0.1, 0.2, 0.4, 0.6, 0.8} {
		res := b.BlendAt(f, map[string]float64{"X": 100}, map[string]float64{"X": 100 * f}, ptr(0.9))
		c := *res.Estimates[0].Confidence
		assert.LessOrEqual(t, c, prev)
		prev = c
	}
}

func TestBlendUnionAndOrdering(t *testing.T) {
	b := NewBlender(1.25, 1e-6)

	res := b.BlendAt(0,
		map[string]float64{"B": 10, "A": 10, "C": 30},
		map[string]float64{"D": 5},
		nil,
	)

	names := make([]string, len(res.Estimates))
	for i, e := range res.Estimates {
		names[i] = e.ProductName
	}
	// C first, A/B tie broken by name, D kept via its partial floor
	assert.Equal(t, []string{"C", "A", "B", "D"}, names)
	assert.Equal(t, 5.0, res.Estimates[3].EODUnits)
	assert.Equal(t, 0.0, res.Estimates[3].ModelPred)
}

func TestBlendEmpty(t *testing.T) {
	res := NewBlender(1.25, 1e-6).BlendAt(0.5, nil, map[string]float64{}, ptr(0.5))
	assert.NotNil(t, res.Estimates)
	assert.Empty(t, res.Estimates)
}

func TestBaseConfidenceFromMAPE(t *testing.T) {
	tests := []struct {
		mape float64
		want float64
	}{
		{0, 1},
		{0.25, 0.75},
		{1, 0},
		{25, 0.75}, // percent form
		{150, 0},
		{-0.5, 1},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, BaseConfidenceFromMAPE(tt.mape), 1e-12, "mape=%v", tt.mape)
	}
}
