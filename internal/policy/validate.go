package policy

import (
	"fmt"
	"time"

	"github.com/wonny/salescast/internal/contracts"
)

// ValidationError 정책 검증 실패 (기동 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(p *Policy) error {
	// === Intraday ===
	if p.Intraday.OpenHour < 0 || p.Intraday.OpenHour > 23 {
		return ValidationError{"intraday.open_hour", "must be in [0, 23]"}
	}
	if p.Intraday.CloseHour < 0 || p.Intraday.CloseHour > 23 {
		return ValidationError{"intraday.close_hour", "must be in [0, 23]"}
	}
	if p.Intraday.OpenHour >= p.Intraday.CloseHour {
		return ValidationError{"intraday", "open_hour must be before close_hour"}
	}
	if p.Intraday.WeightAccel <= 1 {
		return ValidationError{"intraday.weight_accel", "must be > 1"}
	}
	if p.Intraday.MinFraction <= 0 || p.Intraday.MinFraction >= 1 {
		return ValidationError{"intraday.min_fraction", "must be in (0, 1)"}
	}

	// === Seed window ===
	start, err := time.Parse(contracts.DateLayout, p.SeedWindow.Start)
	if err != nil {
		return ValidationError{"seed_window.start", "must be YYYY-MM-DD"}
	}
	end, err := time.Parse(contracts.DateLayout, p.SeedWindow.End)
	if err != nil {
		return ValidationError{"seed_window.end", "must be YYYY-MM-DD"}
	}
	if end.Before(start) {
		return ValidationError{"seed_window", "end must be on or after start"}
	}

	// === Training ===
	if p.Training.Month < 0 || p.Training.Month > 12 {
		return ValidationError{"training.month", "must be in [0, 12]"}
	}
	if p.Training.ValidFraction <= 0 || p.Training.TestFraction < 0 ||
		p.Training.ValidFraction+p.Training.TestFraction >= 1 {
		return ValidationError{"training", "valid_fraction > 0, test_fraction >= 0 and their sum < 1"}
	}
	if p.Training.MinRowsForTest < 0 {
		return ValidationError{"training.min_rows_for_test", "must be >= 0"}
	}

	// === Forecast ===
	if p.Forecast.MaxTopK < 1 {
		return ValidationError{"forecast.max_top_k", "must be >= 1"}
	}
	if p.Forecast.DefaultTopK < 1 || p.Forecast.DefaultTopK > p.Forecast.MaxTopK {
		return ValidationError{"forecast.default_top_k", "must be in [1, max_top_k]"}
	}

	return nil
}
