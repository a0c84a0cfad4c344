package features

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/internal/contracts"
)

func grid(t *testing.T, products []string, start, end string) []contracts.FeatureRow {
	t.Helper()
	rows, err := BuildGrid(products, rangeOf(start, end))
	require.NoError(t, err)
	return rows
}

func TestDiscountSingleCoveringWindow(t *testing.T) {
	src := &fakeSource{
		windows: []contracts.DiscountWindow{
			{ProductName: "CandyX", DiscountPercent: 20, StartDate: day("2024-10-01"), EndDate: day("2024-10-15")},
		},
	}
	r := NewDiscountResolver(src, nil, nop)

	out := r.Resolve(context.Background(), grid(t, []string{"CandyX"}, "2024-10-10", "2024-10-10"))
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].HasActiveDiscount)
	assert.Equal(t, 20.0, out[0].DiscountPercent)
	assert.Equal(t, 0.0, out[0].AvgDiscountEffectiveness)
}

func TestDiscountNoOverlap(t *testing.T) {
	src := &fakeSource{
		windows: []contracts.DiscountWindow{
			{ProductName: "CandyX", DiscountPercent: 20, StartDate: day("2024-10-01"), EndDate: day("2024-10-05")},
			{ProductName: "CandyY", DiscountPercent: 30, StartDate: day("2024-10-01"), EndDate: day("2024-10-31")},
		},
		records: []contracts.DiscountEffectivenessRecord{
			{ProductName: "CandyX", DiscountPercent: 20, AvgSalesLiftPercent: 15},
		},
	}
	r := NewDiscountResolver(src, nil, nop)

	out := r.Resolve(context.Background(), grid(t, []string{"CandyX"}, "2024-10-06", "2024-10-08"))
	for _, c := range out {
		assert.Equal(t, contracts.DiscountContext{}, c)
	}
	// no active percent, so no effectiveness lookup
	assert.Equal(t, 0, src.recordCalls)
}

func TestDiscountSingleRangeQuery(t *testing.T) {
	src := &fakeSource{}
	r := NewDiscountResolver(src, nil, nop)

	r.Resolve(context.Background(), grid(t, []string{"A", "B", "C"}, "2024-10-03", "2024-10-20"))
	assert.Equal(t, 1, src.windowCalls)
	assert.True(t, day("2024-10-03").Equal(src.lastSpan.Start))
	assert.True(t, day("2024-10-20").Equal(src.lastSpan.End))
}

func TestDiscountOverlapMaxPercentWins(t *testing.T) {
	src := &fakeSource{
		windows: []contracts.DiscountWindow{
			{ProductName: "CandyX", DiscountPercent: 10, StartDate: day("2024-10-01"), EndDate: day("2024-10-31")},
			{ProductName: "CandyX", DiscountPercent: 25, StartDate: day("2024-10-10"), EndDate: day("2024-10-12")},
			{ProductName: "CandyX", DiscountPercent: 15, StartDate: day("2024-10-11"), EndDate: day("2024-10-20")},
		},
		records: []contracts.DiscountEffectivenessRecord{
			{ProductName: "CandyX", DiscountPercent: 25, AvgSalesLiftPercent: 40},
			{ProductName: "CandyX", DiscountPercent: 15, AvgSalesLiftPercent: 18},
			{ProductName: "CandyX", DiscountPercent: 15, AvgSalesLiftPercent: 22},
		},
	}
	r := NewDiscountResolver(src, nil, nop)

	rows := grid(t, []string{"CandyX"}, "2024-10-09", "2024-10-13")
	out := r.Resolve(context.Background(), rows)

	want := []struct {
		pct  float64
		lift float64
	}{
		{10, 0},  // 10-09: only the month-long window, no record for 10%
		{25, 40}, // 10-10
		{25, 40}, // 10-11: 10, 25, 15 overlap
		{25, 40}, // 10-12
		{15, 20}, // 10-13: duplicates averaged
	}
	require.Len(t, out, len(want))
	for i, w := range want {
		assert.Equal(t, 1, out[i].HasActiveDiscount, "row %d", i)
		assert.Equal(t, w.pct, out[i].DiscountPercent, "row %d", i)
		assert.Equal(t, w.lift, out[i].AvgDiscountEffectiveness, "row %d", i)
	}
}

func TestDiscountEffectivenessExactMatchOnly(t *testing.T) {
	src := &fakeSource{
		windows: []contracts.DiscountWindow{
			{ProductName: "CandyX", DiscountPercent: 20, StartDate: day("2024-10-01"), EndDate: day("2024-10-15")},
		},
		records: []contracts.DiscountEffectivenessRecord{
			{ProductName: "CandyX", DiscountPercent: 19.99, AvgSalesLiftPercent: 30},
			{ProductName: "CandyY", DiscountPercent: 20, AvgSalesLiftPercent: 30},
		},
	}
	r := NewDiscountResolver(src, nil, nop)

	out := r.Resolve(context.Background(), grid(t, []string{"CandyX"}, "2024-10-10", "2024-10-10"))
	assert.Equal(t, 20.0, out[0].DiscountPercent)
	assert.Equal(t, 0.0, out[0].AvgDiscountEffectiveness)
}

func TestDiscountBackendUnavailable(t *testing.T) {
	r := NewDiscountResolver(down(), nil, nop)

	out := r.Resolve(context.Background(), grid(t, []string{"CandyX", "CandyY"}, "2024-10-01", "2024-10-03"))
	require.Len(t, out, 6)
	for _, c := range out {
		assert.Equal(t, contracts.DiscountContext{}, c)
	}
}

func TestDiscountEffectivenessUnavailableKeepsFlags(t *testing.T) {
	src := &fakeSource{
		windows: []contracts.DiscountWindow{
			{ProductName: "CandyX", DiscountPercent: 20, StartDate: day("2024-10-01"), EndDate: day("2024-10-15")},
		},
		recordsDown: true,
	}
	r := NewDiscountResolver(src, nil, nop)

	out := r.Resolve(context.Background(), grid(t, []string{"CandyX"}, "2024-10-10", "2024-10-10"))
	assert.Equal(t, contracts.DiscountContext{HasActiveDiscount: 1, DiscountPercent: 20}, out[0])
}

func TestDiscountEmptyRows(t *testing.T) {
	src := &fakeSource{}
	r := NewDiscountResolver(src, nil, nop)

	out := r.Resolve(context.Background(), nil)
	assert.Empty(t, out)
	assert.Equal(t, 0, src.windowCalls)
}

func TestDiscountZeroPercentWindowIsActive(t *testing.T) {
	src := &fakeSource{
		windows: []contracts.DiscountWindow{
			{ProductName: "CandyX", DiscountPercent: 0, StartDate: day("2024-10-01"), EndDate: day("2024-10-15")},
		},
	}
	r := NewDiscountResolver(src, nil, nop)

	out := r.Resolve(context.Background(), grid(t, []string{"CandyX"}, "2024-10-10", "2024-10-10"))
	assert.Equal(t, contracts.DiscountContext{HasActiveDiscount: 1}, out[0])
}

// bruteForce is the cross-product-then-filter reference the index must reproduce
func bruteForce(rows []contracts.FeatureRow, windows []contracts.DiscountWindow) []contracts.DiscountContext {
	out := make([]contracts.DiscountContext, len(rows))
	for i, row := range rows {
		for _, w := range windows {
			if w.ProductName != row.ProductName || !w.Covers(row.Date) {
				continue
			}
			if out[i].HasActiveDiscount == 0 || w.DiscountPercent > out[i].DiscountPercent {
				out[i].DiscountPercent = w.DiscountPercent
			}
			out[i].HasActiveDiscount = 1
		}
	}
	return out
}

func TestIntervalIndexMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []string{"A", "B", "C", "D"}
	percents := []float64{0, 5, 10, 15, 20, 25, 50}
	base := day("2024-09-20")

	for trial := 0; trial < 200; trial++ {
		t.Run(fmt.Sprintf("trial_%d", trial), func(t *testing.T) {
			var windows []contracts.DiscountWindow
			n := rng.Intn(12)
			for i := 0; i < n; i++ {
				start := base.AddDate(0, 0, rng.Intn(50))
				windows = append(windows, contracts.DiscountWindow{
					ProductName:     products[rng.Intn(len(products))],
					DiscountPercent: percents[rng.Intn(len(percents))],
					StartDate:       start,
					EndDate:         start.AddDate(0, 0, rng.Intn(15)),
				})
			}

			rows := grid(t, products, "2024-09-25", "2024-11-05")
			src := &fakeSource{windows: windows}
			got := NewDiscountResolver(src, nil, nop).Resolve(context.Background(), rows)
			want := bruteForce(rows, windows)

			for i := range rows {
				assert.Equal(t, want[i].HasActiveDiscount, got[i].HasActiveDiscount, "%s %s", rows[i].ProductName, rows[i].Date)
				assert.Equal(t, want[i].DiscountPercent, got[i].DiscountPercent, "%s %s", rows[i].ProductName, rows[i].Date)
			}
		})
	}
}
