package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/internal/contracts"
)

func TestDefaultIsValid(t *testing.T) {
	p := Default()
	require.NoError(t, Validate(p))

	assert.Equal(t, 8, p.Intraday.OpenHour)
	assert.Equal(t, 22, p.Intraday.CloseHour)
	assert.Equal(t, 1.25, p.Intraday.WeightAccel)
	assert.Equal(t, 1e-6, p.Intraday.MinFraction)

	seed := p.SeedRange()
	assert.Equal(t, "2015-10-01", seed.Start.Format(contracts.DateLayout))
	assert.Equal(t, "2024-10-31", seed.End.Format(contracts.DateLayout))
}

func TestParseOverridesDefaults(t *testing.T) {
	p, err := Parse([]byte(`
intraday:
  open_hour: 7
  close_hour: 21
forecast:
  default_top_k: 5
`))
	require.NoError(t, err)

	assert.Equal(t, 7, p.Intraday.OpenHour)
	assert.Equal(t, 21, p.Intraday.CloseHour)
	// untouched fields keep defaults
	assert.Equal(t, 1.25, p.Intraday.WeightAccel)
	assert.Equal(t, 5, p.Forecast.DefaultTopK)
	assert.Equal(t, 100, p.Forecast.MaxTopK)
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse([]byte("intraday:\n  opne_hour: 7\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Policy)
		field  string
	}{
		{"accel not above one", func(p *Policy) { p.Intraday.WeightAccel = 1 }, "intraday.weight_accel"},
		{"zero min fraction", func(p *Policy) { p.Intraday.MinFraction = 0 }, "intraday.min_fraction"},
		{"open after close", func(p *Policy) { p.Intraday.OpenHour = 22; p.Intraday.CloseHour = 8 }, "intraday"},
		{"hour out of range", func(p *Policy) { p.Intraday.CloseHour = 24 }, "intraday.close_hour"},
		{"inverted seed window", func(p *Policy) { p.SeedWindow.End = "2014-01-01" }, "seed_window"},
		{"bad seed date", func(p *Policy) { p.SeedWindow.Start = "Oct 1" }, "seed_window.start"},
		{"split too large", func(p *Policy) { p.Training.ValidFraction = 0.6; p.Training.TestFraction = 0.4 }, "training"},
		{"default above max", func(p *Policy) { p.Forecast.DefaultTopK = 200 }, "forecast.default_top_k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(p)

			err := Validate(p)
			var ve ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("training:\n  month: 0\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Training.Month)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	def, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), def)
}

func TestRepoPolicyFile(t *testing.T) {
	path := "../../config/forecast_policy.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("policy file not found")
	}

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestHash(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, _ := Hash(Default())
	assert.Equal(t, a, b, "hash must be deterministic")

	p := Default()
	p.Intraday.WeightAccel = 1.5
	c, _ := Hash(p)
	assert.NotEqual(t, a, c)
}

func TestTopK(t *testing.T) {
	p := Default()

	k, err := p.TopK(0)
	require.NoError(t, err)
	assert.Equal(t, 10, k)

	k, err = p.TopK(100)
	require.NoError(t, err)
	assert.Equal(t, 100, k)

	_, err = p.TopK(101)
	assert.ErrorIs(t, err, contracts.ErrValidation)
	_, err = p.TopK(-1)
	assert.ErrorIs(t, err, contracts.ErrValidation)
}
