package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/internal/contracts"
)

func liveLoader(gw *fakeGateway) stubLoader {
	return stubLoader{contracts.ModeLive: handle(contracts.ModeLive, gw, seedMeta())}
}

func TestIntradayBlendAtAsOf(t *testing.T) {
	store := &fakeStore{
		products: []string{"X"},
		partial:  map[string]float64{"X": 6, "NewP": 4},
	}
	svc := newTestService(liveLoader(&fakeGateway{perDay: map[string]float64{"X": 10}}), store)
	asOf := time.Date(2024, 10, 15, 15, 0, 0, 0, est)

	resp, err := svc.Intraday(context.Background(), IntradayRequest{
		Date: ptr(day("2024-10-15")),
		AsOf: &asOf,
	})
	require.NoError(t, err)

	assert.Equal(t, "live-intraday", resp.ModeRequested)
	assert.Equal(t, "live-intraday", resp.ModeUsed)
	assert.Equal(t, contracts.DateRangeJSON{Start: "2024-10-15", End: "2024-10-15"}, resp.DateRange)
	require.NotNil(t, resp.AsOf)
	assert.Equal(t, "2024-10-15T15:00:00-05:00", *resp.AsOf)
	assert.Equal(t, 0.5, *resp.DayFraction)
	assert.Equal(t, 0.625, *resp.BlendWeight)
	assert.True(t, store.partialAsOf.Equal(asOf))

	require.Len(t, resp.Items, 2)
	assert.Equal(t, "X", resp.Items[0].ProductName)
	assert.InDelta(t, 11.25, resp.Items[0].PredictedUnits, 1e-9)
	assert.Equal(t, 0.267, *resp.Items[0].Confidence)

	// sold today but unknown to the model: observed floor, no model share
	assert.Equal(t, "NewP", resp.Items[1].ProductName)
	assert.InDelta(t, 5.0, resp.Items[1].PredictedUnits, 1e-9)
	assert.Equal(t, 0.0, *resp.Items[1].Confidence)
}

func TestIntradayNowFromLatestSale(t *testing.T) {
	store := &fakeStore{
		products:  []string{"X"},
		latest:    time.Date(2024, 10, 15, 20, 0, 0, 0, time.UTC),
		hasLatest: true,
		partial:   map[string]float64{"X": 6},
	}
	svc := newTestService(liveLoader(&fakeGateway{perDay: map[string]float64{"X": 10}}), store)

	resp, err := svc.Intraday(context.Background(), IntradayRequest{Date: ptr(day("2024-10-15"))})
	require.NoError(t, err)
	assert.Equal(t, "2024-10-15T15:00:00-05:00", *resp.AsOf)
	assert.Equal(t, 0.5, *resp.DayFraction)
	assert.True(t, store.partialAsOf.Equal(store.latest))
}

func TestIntradayNoSalesYetUsesOpeningTime(t *testing.T) {
	store := &fakeStore{products: []string{"X"}}
	svc := newTestService(liveLoader(&fakeGateway{perDay: map[string]float64{"X": 10}}), store)

	resp, err := svc.Intraday(context.Background(), IntradayRequest{})
	require.NoError(t, err)

	// today comes from the service clock in the app timezone
	assert.Equal(t, "2025-10-15", resp.DateRange.Start)
	assert.Equal(t, "2025-10-15T08:00:00-05:00", *resp.AsOf)
	assert.Equal(t, 0.0, *resp.DayFraction)
	assert.Equal(t, 0.0, *resp.BlendWeight)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 10.0, resp.Items[0].PredictedUnits)
	assert.Equal(t, 0.8, *resp.Items[0].Confidence)
}

func TestIntradayEmptyUniverse(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(liveLoader(gw), &fakeStore{})

	resp, err := svc.Intraday(context.Background(), IntradayRequest{Date: ptr(day("2024-10-15"))})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.TotalProducts)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
	assert.Zero(t, gw.calls)
}

func TestIntradaySeedLabel(t *testing.T) {
	svc := newTestService(stubLoader{
		contracts.ModeSeed: handle(contracts.ModeSeed, &fakeGateway{}, seedMeta("A")),
	}, &fakeStore{})

	resp, err := svc.Intraday(context.Background(), IntradayRequest{Mode: contracts.ModeSeed})
	require.NoError(t, err)
	assert.Equal(t, "seed-intraday", resp.ModeRequested)
	assert.Equal(t, "seed-intraday", resp.ModeUsed)
	assert.Equal(t, []string{"A"}, names(resp.Items))
}

func TestIntradayValidation(t *testing.T) {
	svc := newTestService(liveLoader(&fakeGateway{}), &fakeStore{})
	ctx := context.Background()

	tests := []struct {
		name string
		req  IntradayRequest
	}{
		{"open after close", IntradayRequest{OpenHour: ptr(22), CloseHour: ptr(8)}},
		{"open equals close", IntradayRequest{OpenHour: ptr(10), CloseHour: ptr(10)}},
		{"hour out of range", IntradayRequest{OpenHour: ptr(-1)}},
		{"close out of range", IntradayRequest{CloseHour: ptr(24)}},
		{"top_k", IntradayRequest{TopK: 500}},
		{"mode", IntradayRequest{Mode: "historical"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Intraday(ctx, tt.req)
			assert.ErrorIs(t, err, contracts.ErrValidation)
		})
	}
}

func TestIntradayNoModel(t *testing.T) {
	svc := newTestService(stubLoader{}, &fakeStore{})
	_, err := svc.Intraday(context.Background(), IntradayRequest{})
	assert.ErrorIs(t, err, contracts.ErrModelUnavailable)
}
