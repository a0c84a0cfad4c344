package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/intraday"
	"github.com/wonny/salescast/pkg/metrics"
)

// Handle 로드된 모델 한 개 (불변, 교체는 포인터 스왑으로만)
type Handle struct {
	Mode     contracts.ModelMode
	Gateway  contracts.ModelGateway
	Meta     *Metadata
	Path     string
	LoadedAt time.Time
}

// BaseConfidence derives 1 - validation MAPE from metadata (nil when unknown)
func (h *Handle) BaseConfidence() *float64 {
	if h == nil || h.Meta == nil || h.Meta.Metrics.Valid == nil {
		return nil
	}
	c := intraday.BaseConfidenceFromMAPE(h.Meta.Metrics.Valid.MAPE)
	return &c
}

// TrainedAt returns the metadata timestamp string (nil when unknown)
func (h *Handle) TrainedAt() *string {
	if h == nil || h.Meta == nil || h.Meta.TrainedAt == "" {
		return nil
	}
	s := h.Meta.TrainedAt
	return &s
}

// Loader 모드별 모델 로더
type Loader interface {
	Load(ctx context.Context, mode contracts.ModelMode) (*Handle, error)
}

// ArtifactLoader loads profile models from an ArtifactStore
type ArtifactLoader struct {
	store *ArtifactStore
}

// NewArtifactLoader creates a loader over store
func NewArtifactLoader(store *ArtifactStore) *ArtifactLoader {
	return &ArtifactLoader{store: store}
}

// Load reads the mode's artifact from disk
func (l *ArtifactLoader) Load(_ context.Context, mode contracts.ModelMode) (*Handle, error) {
	m, meta, err := l.store.Load(mode)
	if err != nil {
		return nil, err
	}
	return &Handle{Mode: mode, Gateway: m, Meta: meta, Path: l.store.ModelPath(mode)}, nil
}

// Registry 모드별 모델 캐시
// 모드당 최대 1개, 첫 사용 시 지연 로드, 명시적 Reload 로만 교체 (atomic swap)
type Registry struct {
	loader  Loader
	metrics *metrics.Metrics
	log     zerolog.Logger

	seed atomic.Pointer[Handle]
	live atomic.Pointer[Handle]

	mu sync.Mutex // serializes loads; readers never take it
}

// NewRegistry creates an empty registry
func NewRegistry(loader Loader, m *metrics.Metrics, log zerolog.Logger) *Registry {
	return &Registry{
		loader:  loader,
		metrics: m,
		log:     log.With().Str("component", "model.registry").Logger(),
	}
}

func (r *Registry) slot(mode contracts.ModelMode) (*atomic.Pointer[Handle], error) {
	switch mode {
	case contracts.ModeSeed:
		return &r.seed, nil
	case contracts.ModeLive:
		return &r.live, nil
	default:
		return nil, contracts.NewValidationError("mode", fmt.Sprintf("unknown model mode %q", mode))
	}
}

// Get returns the cached handle for mode, loading it on first use.
// A missing model is not cached, so a later train makes it visible without a restart.
func (r *Registry) Get(ctx context.Context, mode contracts.ModelMode) (*Handle, error) {
	slot, err := r.slot(mode)
	if err != nil {
		return nil, err
	}
	if h := slot.Load(); h != nil {
		return h, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if h := slot.Load(); h != nil {
		return h, nil
	}
	h, err := r.load(ctx, mode)
	if err != nil {
		return nil, err
	}
	slot.Store(h)
	return h, nil
}

// Reload loads mode again and swaps the handle atomically.
// On failure the previous handle stays in place.
func (r *Registry) Reload(ctx context.Context, mode contracts.ModelMode) (*Handle, error) {
	slot, err := r.slot(mode)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, err := r.load(ctx, mode)
	if err != nil {
		return nil, err
	}
	slot.Store(h)
	return h, nil
}

// Select implements mode fallback: live prefers live then seed, seed requires seed.
func (r *Registry) Select(ctx context.Context, requested contracts.ModelMode) (*Handle, error) {
	switch requested {
	case contracts.ModeSeed:
		h, err := r.Get(ctx, contracts.ModeSeed)
		if errors.Is(err, contracts.ErrModelUnavailable) {
			return nil, fmt.Errorf("%w: seed model not found, train with mode=seed first", contracts.ErrModelUnavailable)
		}
		return h, err
	case contracts.ModeLive:
		h, err := r.Get(ctx, contracts.ModeLive)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, contracts.ErrModelUnavailable) {
			return nil, err
		}
		h, err = r.Get(ctx, contracts.ModeSeed)
		if errors.Is(err, contracts.ErrModelUnavailable) {
			return nil, fmt.Errorf("%w: no trained model found, train seed or live first", contracts.ErrModelUnavailable)
		}
		return h, err
	default:
		return nil, contracts.NewValidationError("mode", "must be one of: seed, live")
	}
}

// Loaded reports the currently cached handle for mode without loading
func (r *Registry) Loaded(mode contracts.ModelMode) *Handle {
	slot, err := r.slot(mode)
	if err != nil {
		return nil
	}
	return slot.Load()
}

func (r *Registry) load(ctx context.Context, mode contracts.ModelMode) (*Handle, error) {
	start := time.Now()
	h, err := r.loader.Load(ctx, mode)
	if err != nil {
		if errors.Is(err, contracts.ErrModelUnavailable) {
			r.log.Debug().Str("mode", string(mode)).Msg("model not trained yet")
		} else {
			r.log.Error().Err(err).Str("mode", string(mode)).Msg("model load failed")
		}
		return nil, err
	}
	h.LoadedAt = time.Now()

	r.metrics.ModelReloaded(string(mode))
	r.log.Info().
		Str("mode", string(mode)).
		Str("path", h.Path).
		Dur("duration", time.Since(start)).
		Msg("model loaded")
	return h, nil
}
