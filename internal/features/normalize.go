package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/salescast/internal/contracts"
)

// CleanProducts trims names, drops empties and duplicates, keeping first-seen order
func CleanProducts(products []string) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0, len(products))
	for _, p := range products {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Normalize cleans raw training rows. An unparseable date fails the whole batch.
func Normalize(raw []contracts.RawSale) ([]contracts.SalesObservation, error) {
	out := make([]contracts.SalesObservation, 0, len(raw))
	for i, r := range raw {
		d, err := contracts.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", contracts.ErrValidation, i, err)
		}
		out = append(out, contracts.SalesObservation{
			ProductName: strings.TrimSpace(r.ProductName),
			Date:        d,
			Units:       CoerceUnits(r.Units),
		})
	}
	return out, nil
}

// CoerceUnits converts anything to a non-negative integer unit count.
// Non-numeric input becomes 0, fractions truncate toward zero.
func CoerceUnits(v any) int {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case float32:
		f = float64(x)
	case float64:
		f = x
	case bool:
		if x {
			f = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
