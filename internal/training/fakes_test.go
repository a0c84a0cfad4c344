package training

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/salescast/internal/contracts"
)

var errDown = errors.New("connection refused")

// memStore is an in-memory SalesStore over a fixed observation list
type memStore struct {
	obs     []contracts.SalesObservation
	gate    chan struct{} // History blocks until closed when set
	entered chan struct{}
}

func (s *memStore) DistinctProducts(ctx context.Context, span contracts.DateRange, month int) ([]string, error) {
	return nil, errors.New("not used")
}

func (s *memStore) History(ctx context.Context, span contracts.DateRange, month int) ([]contracts.SalesObservation, error) {
	if s.entered != nil {
		close(s.entered)
	}
	if s.gate != nil {
		<-s.gate
	}
	var out []contracts.SalesObservation
	for _, o := range s.obs {
		if !span.Contains(o.Date) {
			continue
		}
		if month != 0 && int(o.Date.Month()) != month {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *memStore) LatestObservationAt(ctx context.Context, date time.Time) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func (s *memStore) PartialUnits(ctx context.Context, date, asOf time.Time) (map[string]float64, error) {
	return map[string]float64{}, nil
}

func (s *memStore) ActualsBetween(ctx context.Context, span contracts.DateRange) (map[string]float64, error) {
	return map[string]float64{}, nil
}

func (s *memStore) DailyAverages(ctx context.Context, span contracts.DateRange, month int) ([]contracts.ProductAverage, error) {
	return nil, nil
}

func (s *memStore) RecordSale(ctx context.Context, obs contracts.SalesObservation) (contracts.SalesObservation, error) {
	s.obs = append(s.obs, obs)
	return obs, nil
}

// downSource reports every enrichment lookup as unavailable
type downSource struct{}

func (downSource) ActiveDiscounts(context.Context, []string, contracts.DateRange) contracts.Lookup[[]contracts.DiscountWindow] {
	return contracts.Unavailable[[]contracts.DiscountWindow](errDown)
}

func (downSource) DiscountEffectiveness(context.Context, []string) contracts.Lookup[[]contracts.DiscountEffectivenessRecord] {
	return contracts.Unavailable[[]contracts.DiscountEffectivenessRecord](errDown)
}

func (downSource) BasketAssociations(context.Context, []string) contracts.Lookup[[]contracts.BasketAssociation] {
	return contracts.Unavailable[[]contracts.BasketAssociation](errDown)
}

func day(s string) time.Time {
	d, err := contracts.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// octoberSales returns two split sales per product per day for October of year, plus one September row
func octoberSales(year int) []contracts.SalesObservation {
	var out []contracts.SalesObservation
	start := time.Date(year, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 31; i++ {
		d := start.AddDate(0, 0, i)
		out = append(out,
			contracts.SalesObservation{ProductName: "CandyX", Date: d, Units: 60},
			contracts.SalesObservation{ProductName: " CandyX ", Date: d, Units: 40},
			contracts.SalesObservation{ProductName: "CandyY", Date: d, Units: 10},
		)
	}
	out = append(out, contracts.SalesObservation{ProductName: "Summer", Date: time.Date(year, 9, 15, 0, 0, 0, 0, time.UTC), Units: 5})
	return out
}
