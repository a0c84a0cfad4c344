package forecast

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/features"
	"github.com/wonny/salescast/internal/model"
	"github.com/wonny/salescast/internal/policy"
)

var errDown = errors.New("connection refused")

// fakeGateway predicts a fixed daily value per product
type fakeGateway struct {
	perDay map[string]float64
	vocab  []string
	short  bool
	calls  int
}

func (g *fakeGateway) Predict(_ context.Context, rows []contracts.FeatureRow) ([]float64, error) {
	g.calls++
	out := make([]float64, len(rows))
	for i, r := range rows {
		v, ok := g.perDay[r.ProductName]
		if !ok {
			v = 1
		}
		out[i] = v
	}
	if g.short && len(out) > 0 {
		out = out[1:]
	}
	return out, nil
}

func (g *fakeGateway) KnownProductVocabulary() ([]string, bool) {
	return g.vocab, len(g.vocab) > 0
}

// stubLoader serves fixed handles per mode
type stubLoader map[contracts.ModelMode]*model.Handle

func (l stubLoader) Load(_ context.Context, mode contracts.ModelMode) (*model.Handle, error) {
	h, ok := l[mode]
	if !ok {
		return nil, contracts.ErrModelUnavailable
	}
	cp := *h
	return &cp, nil
}

// fakeStore records the arguments it was called with
type fakeStore struct {
	products     []string
	productSpans []contracts.DateRange
	latest       time.Time
	hasLatest    bool
	partial      map[string]float64
	partialAsOf  time.Time
	actuals      map[string]float64
	actualsErr   error
	averages     []contracts.ProductAverage
	averageSpan  contracts.DateRange
	averageMonth int
}

func (s *fakeStore) DistinctProducts(_ context.Context, span contracts.DateRange, month int) ([]string, error) {
	s.productSpans = append(s.productSpans, span)
	return s.products, nil
}

func (s *fakeStore) History(context.Context, contracts.DateRange, int) ([]contracts.SalesObservation, error) {
	return nil, nil
}

func (s *fakeStore) LatestObservationAt(context.Context, time.Time) (time.Time, bool, error) {
	return s.latest, s.hasLatest, nil
}

func (s *fakeStore) PartialUnits(_ context.Context, _ time.Time, asOf time.Time) (map[string]float64, error) {
	s.partialAsOf = asOf
	if s.partial == nil {
		return map[string]float64{}, nil
	}
	return s.partial, nil
}

func (s *fakeStore) ActualsBetween(context.Context, contracts.DateRange) (map[string]float64, error) {
	if s.actualsErr != nil {
		return nil, s.actualsErr
	}
	return s.actuals, nil
}

func (s *fakeStore) DailyAverages(_ context.Context, span contracts.DateRange, month int) ([]contracts.ProductAverage, error) {
	s.averageSpan = span
	s.averageMonth = month
	return s.averages, nil
}

func (s *fakeStore) RecordSale(_ context.Context, obs contracts.SalesObservation) (contracts.SalesObservation, error) {
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

var est = time.FixedZone("EST", -5*3600)

func day(s string) time.Time {
	d, err := contracts.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func handle(mode contracts.ModelMode, gw contracts.ModelGateway, meta *model.Metadata) *model.Handle {
	return &model.Handle{Mode: mode, Gateway: gw, Meta: meta, Path: "/models/" + string(mode) + ".json"}
}

func seedMeta(names ...string) *model.Metadata {
	return &model.Metadata{
		TrainedAt: "2024-11-01T00:00:00Z",
		Metrics:   model.MetricsSet{Valid: &model.Scores{MAPE: 0.2}},
		Products:  model.ProductInfo{Count: len(names), Names: names},
	}
}

func newTestService(loader stubLoader, store *fakeStore) *Service {
	return NewService(Deps{
		Registry: model.NewRegistry(loader, nil, zerolog.Nop()),
		Store:    store,
		Enricher: features.NewEnricher(downSource{}, nil, zerolog.Nop()),
		Policy:   policy.Default(),
		Location: est,
		Now:      func() time.Time { return time.Date(2025, 10, 15, 12, 0, 0, 0, est) },
	}, zerolog.Nop())
}

func ptr[T any](v T) *T { return &v }
