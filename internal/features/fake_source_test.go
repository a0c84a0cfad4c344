package features

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
)

var errBackendDown = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

// fakeSource is an in-memory EnrichmentDataSource
type fakeSource struct {
	windows []contracts.DiscountWindow
	records []contracts.DiscountEffectivenessRecord
	assoc   []contracts.BasketAssociation

	windowsDown bool
	recordsDown bool
	basketDown  bool

	windowCalls int
	recordCalls int
	basketCalls int
	lastSpan    contracts.DateRange
}

func (f *fakeSource) ActiveDiscounts(_ context.Context, _ []string, span contracts.DateRange) contracts.Lookup[[]contracts.DiscountWindow] {
	f.windowCalls++
	f.lastSpan = span
	if f.windowsDown {
		return contracts.Unavailable[[]contracts.DiscountWindow](errBackendDown)
	}
	var out []contracts.DiscountWindow
	for _, w := range f.windows {
		if !w.StartDate.After(span.End) && !w.EndDate.Before(span.Start) {
			out = append(out, w)
		}
	}
	return contracts.Available(out)
}

func (f *fakeSource) DiscountEffectiveness(_ context.Context, _ []string) contracts.Lookup[[]contracts.DiscountEffectivenessRecord] {
	f.recordCalls++
	if f.recordsDown {
		return contracts.Unavailable[[]contracts.DiscountEffectivenessRecord](errBackendDown)
	}
	return contracts.Available(f.records)
}

func (f *fakeSource) BasketAssociations(_ context.Context, _ []string) contracts.Lookup[[]contracts.BasketAssociation] {
	f.basketCalls++
	if f.basketDown {
		return contracts.Unavailable[[]contracts.BasketAssociation](errBackendDown)
	}
	return contracts.Available(f.assoc)
}

func down() *fakeSource {
	return &fakeSource{windowsDown: true, recordsDown: true, basketDown: true}
}

func day(s string) time.Time {
	t, err := time.Parse(contracts.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func rangeOf(start, end string) contracts.DateRange {
	return contracts.DateRange{Start: day(start), End: day(end)}
}

var nop = zerolog.Nop()
