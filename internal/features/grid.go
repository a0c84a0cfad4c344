package features

import (
	"time"

	"github.com/wonny/salescast/internal/contracts"
)

// BuildGrid builds the (product × date) inference grid with calendar features.
// products must be non-empty after cleaning; span must be a valid range.
func BuildGrid(products []string, span contracts.DateRange) ([]contracts.FeatureRow, error) {
	names := CleanProducts(products)
	if len(names) == 0 {
		return nil, contracts.NewValidationError("products", "must contain at least one non-empty name")
	}
	if err := span.Validate(); err != nil {
		return nil, err
	}

	dates := span.Dates()
	rows := make([]contracts.FeatureRow, 0, len(names)*len(dates))
	for _, p := range names {
		for _, d := range dates {
			rows = append(rows, CalendarRow(p, d))
		}
	}
	return rows, nil
}

// CalendarRow derives the calendar-only fields for one (product, date)
func CalendarRow(product string, date time.Time) contracts.FeatureRow {
	d := contracts.CivilDate(date)
	dow := (int(d.Weekday()) + 6) % 7 // Monday=0
	isWeekend := 0
	if dow >= 5 {
		isWeekend = 1
	}
	halloween := time.Date(d.Year(), time.October, 31, 0, 0, 0, 0, time.UTC)

	return contracts.FeatureRow{
		ProductName:     product,
		Date:            d,
		Year:            d.Year(),
		Month:           int(d.Month()),
		Day:             d.Day(),
		DOW:             dow,
		DOY:             d.YearDay(),
		IsWeekend:       isWeekend,
		DaysToHalloween: dayNumber(halloween) - dayNumber(d),
	}
}

// dayNumber counts days since the Unix epoch for a UTC-midnight date
func dayNumber(d time.Time) int {
	return int(contracts.CivilDate(d).Unix() / 86400)
}
