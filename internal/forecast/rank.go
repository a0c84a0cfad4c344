package forecast

import (
	"sort"

	"github.com/wonny/salescast/internal/contracts"
)

// rank orders totals by units descending, ties by name ascending.
// Every item carries the base confidence rounded to 3 decimals (nil when unknown).
func rank(totals map[string]float64, baseConfidence *float64) []contracts.ForecastItem {
	var conf *float64
	if baseConfidence != nil {
		c := contracts.Round3(contracts.Clamp01(*baseConfidence))
		conf = &c
	}

	items := make([]contracts.ForecastItem, 0, len(totals))
	for name, units := range totals {
		items = append(items, contracts.ForecastItem{
			ProductName:    name,
			PredictedUnits: units,
			Confidence:     conf,
		})
	}
	sortItems(items)
	return items
}

func sortItems(items []contracts.ForecastItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].PredictedUnits != items[j].PredictedUnits {
			return items[i].PredictedUnits > items[j].PredictedUnits
		}
		return items[i].ProductName < items[j].ProductName
	})
}

// topItems returns the first k items (never nil)
func topItems(items []contracts.ForecastItem, k int) []contracts.ForecastItem {
	if k < len(items) {
		items = items[:k]
	}
	out := make([]contracts.ForecastItem, len(items))
	copy(out, items)
	return out
}
