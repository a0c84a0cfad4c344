package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/features"
	"github.com/wonny/salescast/internal/model"
)

// universe resolves the products to forecast.
// seed is frozen: metadata names, then the model vocabulary, then sales inside the seed window.
// live: every product sold between the seed start and end.
func (s *Service) universe(ctx context.Context, h *model.Handle, end time.Time) ([]string, error) {
	if h.Mode == contracts.ModeSeed {
		if h.Meta != nil && len(h.Meta.Products.Names) > 0 {
			return features.CleanProducts(h.Meta.Products.Names), nil
		}
		if vocab, ok := h.Gateway.KnownProductVocabulary(); ok && len(vocab) > 0 {
			return features.CleanProducts(vocab), nil
		}
		return s.storeProducts(ctx, s.policy.SeedRange().End)
	}
	return s.storeProducts(ctx, end)
}

func (s *Service) storeProducts(ctx context.Context, end time.Time) ([]string, error) {
	start := s.policy.SeedRange().Start
	if contracts.CivilDate(end).Before(start) {
		return nil, nil
	}
	names, err := s.store.DistinctProducts(ctx, contracts.DateRange{Start: start, End: contracts.CivilDate(end)}, s.policy.Training.Month)
	if err != nil {
		return nil, fmt.Errorf("product universe: %w", err)
	}
	return features.CleanProducts(names), nil
}
