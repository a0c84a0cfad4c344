package contracts

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout 날짜 문자열 형식
const DateLayout = "2006-01-02"

// CivilDate strips the clock and zone, keeping the calendar date as UTC midnight
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp and returns its calendar date
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return CivilDate(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}

// DateRange 닫힌 날짜 구간 [Start, End]
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a validated range from two calendar dates
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: CivilDate(start), End: CivilDate(end)}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate rejects zero or inverted ranges
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return NewValidationError("dateRange", "start and end are required")
	}
	if CivilDate(r.End).Before(CivilDate(r.Start)) {
		return NewValidationError("dateRange", "end must be on or after start")
	}
	return nil
}

// Days returns the number of calendar days in the range (inclusive)
func (r DateRange) Days() int {
	return int(CivilDate(r.End).Sub(CivilDate(r.Start)).Hours()/24) + 1
}

// Dates lists every date in the range in ascending order
func (r DateRange) Dates() []time.Time {
	n := r.Days()
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	start := CivilDate(r.Start)
	for i := 0; i < n; i++ {
		out = append(out, start.AddDate(0, 0, i))
	}
	return out
}

// Contains reports whether date lies inside the range
func (r DateRange) Contains(date time.Time) bool {
	d := CivilDate(date)
	return !d.Before(CivilDate(r.Start)) && !d.After(CivilDate(r.End))
}

// DateRangeJSON 응답용 날짜 구간
type DateRangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// JSON returns the wire form of the range
func (r DateRange) JSON() DateRangeJSON {
	return DateRangeJSON{
		Start: r.Start.Format(DateLayout),
		End:   r.End.Format(DateLayout),
	}
}
