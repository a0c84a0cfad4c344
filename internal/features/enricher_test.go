package features

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/internal/contracts"
)

func TestInferenceEnrichment(t *testing.T) {
	src := &fakeSource{
		windows: []contracts.DiscountWindow{
			{ProductName: "CandyX", DiscountPercent: 20, StartDate: day("2024-10-01"), EndDate: day("2024-10-15")},
		},
		records: []contracts.DiscountEffectivenessRecord{
			{ProductName: "CandyX", DiscountPercent: 20, AvgSalesLiftPercent: 12.5},
		},
		assoc: []contracts.BasketAssociation{
			{PrimaryProduct: "CandyY", ConfidenceScore: 0.7},
		},
	}
	e := NewEnricher(src, nil, nop)

	table, err := e.Inference(context.Background(), []string{"CandyX", "CandyY"}, rangeOf("2024-10-15", "2024-10-16"))
	require.NoError(t, err)
	require.NoError(t, table.Validate())
	require.Equal(t, 4, table.Len())
	assert.Nil(t, table.Target)

	byKey := map[string]contracts.FeatureRow{}
	for _, r := range table.Rows {
		byKey[r.ProductName+"/"+r.Date.Format(contracts.DateLayout)] = r
	}

	x15 := byKey["CandyX/2024-10-15"]
	assert.Equal(t, 1, x15.HasActiveDiscount)
	assert.Equal(t, 20.0, x15.DiscountPercent)
	assert.Equal(t, 12.5, x15.AvgDiscountEffectiveness)

	x16 := byKey["CandyX/2024-10-16"]
	assert.Equal(t, 0, x16.HasActiveDiscount)

	y := byKey["CandyY/2024-10-16"]
	assert.Equal(t, 1, y.BasketAssociationCount)
	assert.Equal(t, 0.7, y.TopBasketConfidence)
	assert.Equal(t, 0.7, y.AvgBasketConfidence)

	for _, r := range table.Rows {
		assert.Len(t, r.Numeric(), len(contracts.NumericColumns))
	}
}

func TestInferenceBackendUnreachable(t *testing.T) {
	e := NewEnricher(down(), nil, nop)

	table, err := e.Inference(context.Background(), []string{"CandyX"}, rangeOf("2024-10-01", "2024-10-31"))
	require.NoError(t, err)
	require.Equal(t, 31, table.Len())

	for _, r := range table.Rows {
		assert.Equal(t, 0, r.HasActiveDiscount)
		assert.Equal(t, 0.0, r.DiscountPercent)
		assert.Equal(t, 0.0, r.AvgDiscountEffectiveness)
		assert.Equal(t, 0, r.BasketAssociationCount)
		assert.Equal(t, 0.0, r.TopBasketConfidence)
		assert.Equal(t, 0.0, r.AvgBasketConfidence)
		// calendar still populated
		assert.Equal(t, 2024, r.Year)
	}
}

func TestInferenceValidation(t *testing.T) {
	e := NewEnricher(&fakeSource{}, nil, nop)

	_, err := e.Inference(context.Background(), nil, rangeOf("2024-10-01", "2024-10-02"))
	assert.ErrorIs(t, err, contracts.ErrValidation)
}

func TestTrainingTable(t *testing.T) {
	src := &fakeSource{
		windows: []contracts.DiscountWindow{
			{ProductName: "CandyX", DiscountPercent: 30, StartDate: day("2024-10-01"), EndDate: day("2024-10-31")},
		},
	}
	e := NewEnricher(src, nil, nop)

	table, err := e.Training(context.Background(), []contracts.RawSale{
		{ProductName: " CandyX", Date: "2024-10-10", Units: "12"},
		{ProductName: "CandyY", Date: "2024-10-11", Units: -1},
	})
	require.NoError(t, err)
	require.NoError(t, table.Validate())

	assert.Equal(t, []float64{12, 0}, table.Target)
	assert.Equal(t, "CandyX", table.Rows[0].ProductName)
	assert.Equal(t, 30.0, table.Rows[0].DiscountPercent)
	assert.Equal(t, 0, table.Rows[1].HasActiveDiscount)
	assert.Equal(t, []string{"CandyX", "CandyY"}, table.Products())
	assert.Len(t, table.Matrix()[0], len(contracts.NumericColumns))

	_, err = e.Training(context.Background(), []contracts.RawSale{{ProductName: "CandyX", Date: "10-10-2024"}})
	assert.ErrorIs(t, err, contracts.ErrValidation)
}

func TestTrainingEmpty(t *testing.T) {
	e := NewEnricher(&fakeSource{}, nil, nop)

	table, err := e.TrainingFromObservations(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}
