package training

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/features"
	"github.com/wonny/salescast/internal/model"
	"github.com/wonny/salescast/internal/policy"
	"github.com/wonny/salescast/pkg/metrics"
	"github.com/wonny/salescast/pkg/redis"
)

// BackendProfile 로컬 프로필 모델 (학습 가능한 유일한 백엔드)
const BackendProfile = "profile"

// Summary 학습 실행 요약 (API 응답 + Redis 캐시)
type Summary struct {
	Status    string           `json:"status"`
	Mode      string           `json:"mode"`
	RunID     string           `json:"runId"`
	ModelPath string           `json:"modelPath"`
	MetaPath  string           `json:"metaPath"`
	Rows      model.RowCounts  `json:"rows"`
	Metrics   model.MetricsSet `json:"metrics"`
	Products  int              `json:"products"`
	TrainedAt string           `json:"trainedAt"`
	Duration  float64          `json:"durationSeconds"`
}

// Trainer 모델 학습기
// 판매 이력 → 일별 EOD 합계 → 피처 → 시간 분할 → 학습 → 평가 → 원자적 저장 → 레지스트리 교체
type Trainer struct {
	store    contracts.SalesStore
	enricher *features.Enricher
	artifact *model.ArtifactStore
	registry *model.Registry
	policy   *policy.Policy
	cache    *redis.Cache
	metrics  *metrics.Metrics
	log      zerolog.Logger

	backend string
	loc     *time.Location
	now     func() time.Time

	locks map[contracts.ModelMode]*sync.Mutex
}

// Config 학습기 의존성
type Config struct {
	Store    contracts.SalesStore
	Enricher *features.Enricher
	Artifact *model.ArtifactStore
	Registry *model.Registry
	Policy   *policy.Policy
	Cache    *redis.Cache // optional
	Metrics  *metrics.Metrics
	Backend  string
	Location *time.Location
	Now      func() time.Time // optional, defaults to time.Now
}

// NewTrainer creates a new trainer
func NewTrainer(cfg Config, log zerolog.Logger) *Trainer {
	t := &Trainer{
		store:    cfg.Store,
		enricher: cfg.Enricher,
		artifact: cfg.Artifact,
		registry: cfg.Registry,
		policy:   cfg.Policy,
		cache:    cfg.Cache,
		metrics:  cfg.Metrics,
		log:      log.With().Str("component", "training.trainer").Logger(),
		backend:  cfg.Backend,
		loc:      cfg.Location,
		now:      cfg.Now,
		locks: map[contracts.ModelMode]*sync.Mutex{
			contracts.ModeSeed: {},
			contracts.ModeLive: {},
		},
	}
	if t.backend == "" {
		t.backend = BackendProfile
	}
	if t.loc == nil {
		t.loc = time.UTC
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.policy == nil {
		t.policy = policy.Default()
	}
	return t
}

// Window returns the training window for mode: seed is frozen, live runs to today
func (t *Trainer) Window(mode contracts.ModelMode) (contracts.DateRange, error) {
	seed := t.policy.SeedRange()
	switch mode {
	case contracts.ModeSeed:
		return seed, nil
	case contracts.ModeLive:
		return contracts.NewDateRange(seed.Start, t.now().In(t.loc))
	default:
		return contracts.DateRange{}, contracts.NewValidationError("mode", "must be one of: seed, live")
	}
}

// Run trains mode and publishes the artifact. A second run for the same mode fails fast.
func (t *Trainer) Run(ctx context.Context, mode contracts.ModelMode) (*Summary, error) {
	if t.backend != BackendProfile {
		return nil, contracts.NewValidationError("backend", fmt.Sprintf("training is not available for model backend %q", t.backend))
	}
	lock, ok := t.locks[mode]
	if !ok {
		return nil, contracts.NewValidationError("mode", "must be one of: seed, live")
	}
	if !lock.TryLock() {
		return nil, fmt.Errorf("%w: mode=%s", contracts.ErrTrainingInProgress, mode)
	}
	defer lock.Unlock()

	summary, err := t.run(ctx, mode)
	if err != nil {
		t.metrics.TrainingFinished(string(mode), "failed")
		t.log.Error().Err(err).Str("mode", string(mode)).Msg("training failed")
		return nil, err
	}
	t.metrics.TrainingFinished(string(mode), "success")
	return summary, nil
}

func (t *Trainer) run(ctx context.Context, mode contracts.ModelMode) (*Summary, error) {
	start := time.Now()
	runID := uuid.New().String()

	window, err := t.Window(mode)
	if err != nil {
		return nil, err
	}

	t.log.Info().
		Str("mode", string(mode)).
		Str("run_id", runID).
		Str("start", window.Start.Format(contracts.DateLayout)).
		Str("end", window.End.Format(contracts.DateLayout)).
		Int("month", t.policy.Training.Month).
		Msg("training started")

	// 1. 이력 로드 + 일별 EOD 합계
	history, err := t.store.History(ctx, window, t.policy.Training.Month)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	daily := DailyTotals(history)
	if len(daily) == 0 {
		return nil, fmt.Errorf("%w: no sales in %s..%s", contracts.ErrInsufficientData,
			window.Start.Format(contracts.DateLayout), window.End.Format(contracts.DateLayout))
	}

	// 2. 피처 (서빙과 같은 경로)
	table, err := t.enricher.TrainingFromObservations(ctx, daily)
	if err != nil {
		return nil, fmt.Errorf("build features: %w", err)
	}

	// 3. 시간 분할 + 학습
	split := TimeSplit(table, t.policy.Training)
	if split.Train.Len() == 0 {
		return nil, fmt.Errorf("%w: no training rows", contracts.ErrInsufficientData)
	}
	fitted, err := model.FitProfile(split.Train)
	if err != nil {
		return nil, err
	}

	// 4. 평가
	valid, err := t.score(ctx, fitted, split.Valid)
	if err != nil {
		return nil, err
	}
	test, err := t.score(ctx, fitted, split.Test)
	if err != nil {
		return nil, err
	}

	// 5. 메타데이터 + 원자적 저장
	hash, err := policy.Hash(t.policy)
	if err != nil {
		return nil, err
	}
	products := productNames(daily)
	meta := &model.Metadata{
		Mode:      mode,
		RunID:     runID,
		Backend:   t.backend,
		TrainedAt: time.Now().UTC().Format(time.RFC3339),
		Window: model.WindowInfo{
			Start: window.Start.Format(contracts.DateLayout),
			End:   window.End.Format(contracts.DateLayout),
		},
		Month: t.policy.Training.Month,
		Rows: model.RowCounts{
			Total: table.Len(),
			Train: split.Train.Len(),
			Valid: split.Valid.Len(),
			Test:  split.Test.Len(),
		},
		Metrics: model.MetricsSet{Valid: valid, Test: test},
		Features: model.FeatureInfo{
			Categorical: contracts.CategoricalColumns,
			Numeric:     contracts.NumericColumns,
		},
		SchemaVersion: contracts.SchemaVersion,
		Products:      model.ProductInfo{Count: len(products), Names: products},
		PolicyHash:    hash,
		DurationMs:    time.Since(start).Milliseconds(),
	}
	if err := t.artifact.Save(mode, fitted, meta); err != nil {
		return nil, err
	}

	// 6. 캐시 교체 (실패해도 파일은 이미 공개됨, 다음 Get 에서 로드)
	if t.registry != nil {
		if _, err := t.registry.Reload(ctx, mode); err != nil {
			t.log.Warn().Err(err).Str("mode", string(mode)).Msg("registry reload after training failed")
		}
	}

	summary := &Summary{
		Status:    "ok",
		Mode:      string(mode),
		RunID:     runID,
		ModelPath: t.artifact.ModelPath(mode),
		MetaPath:  t.artifact.MetaPath(mode),
		Rows:      meta.Rows,
		Metrics:   meta.Metrics,
		Products:  len(products),
		TrainedAt: meta.TrainedAt,
		Duration:  time.Since(start).Seconds(),
	}
	t.cacheSummary(ctx, summary)

	evt := t.log.Info().
		Str("mode", string(mode)).
		Str("run_id", runID).
		Int("rows", table.Len()).
		Int("train", split.Train.Len()).
		Int("valid", split.Valid.Len()).
		Int("test", split.Test.Len()).
		Int("products", len(products)).
		Dur("duration", time.Since(start))
	if valid != nil {
		evt = evt.Float64("valid_mape", valid.MAPE)
	}
	evt.Msg("training completed")

	return summary, nil
}

// LastSummary returns the cached summary of the latest run for mode (false when none)
func (t *Trainer) LastSummary(ctx context.Context, mode contracts.ModelMode) (*Summary, bool, error) {
	if t.cache != nil {
		var s Summary
		found, err := t.cache.Get(ctx, redis.TrainingSummaryKey(string(mode)), &s)
		if err != nil {
			t.log.Warn().Err(err).Msg("training summary cache read failed")
		} else if found {
			return &s, true, nil
		}
	}

	// 캐시가 없으면 메타 파일에서 재구성
	meta := t.artifact.LoadMeta(mode)
	if meta == nil {
		return nil, false, nil
	}
	return &Summary{
		Status:    "ok",
		Mode:      string(mode),
		RunID:     meta.RunID,
		ModelPath: t.artifact.ModelPath(mode),
		MetaPath:  t.artifact.MetaPath(mode),
		Rows:      meta.Rows,
		Metrics:   meta.Metrics,
		Products:  meta.Products.Count,
		TrainedAt: meta.TrainedAt,
		Duration:  float64(meta.DurationMs) / 1000,
	}, true, nil
}

// InProgress reports whether a run for mode currently holds the lock
func (t *Trainer) InProgress(mode contracts.ModelMode) bool {
	lock, ok := t.locks[mode]
	if !ok {
		return false
	}
	if lock.TryLock() {
		lock.Unlock()
		return false
	}
	return true
}

func (t *Trainer) score(ctx context.Context, m *model.ProfileModel, table features.Table) (*model.Scores, error) {
	if table.Len() == 0 {
		return nil, nil
	}
	preds, err := m.Predict(ctx, table.Rows)
	if err != nil {
		return nil, err
	}
	return Evaluate(table.Target, preds), nil
}

func (t *Trainer) cacheSummary(ctx context.Context, s *Summary) {
	if t.cache == nil {
		return
	}
	if err := t.cache.Set(ctx, redis.TrainingSummaryKey(s.Mode), s, redis.TTLDaily); err != nil {
		t.log.Warn().Err(err).Msg("training summary cache write failed")
	}
}

// DailyTotals aggregates observations to one EOD total per (product, date), ordered by date then product
func DailyTotals(obs []contracts.SalesObservation) []contracts.SalesObservation {
	type key struct {
		product string
		date    time.Time
	}
	totals := make(map[key]int)
	for _, o := range obs {
		name := features.CleanProducts([]string{o.ProductName})
		if len(name) == 0 {
			continue
		}
		totals[key{name[0], contracts.CivilDate(o.Date)}] += max(0, o.Units)
	}

	out := make([]contracts.SalesObservation, 0, len(totals))
	for k, units := range totals {
		out = append(out, contracts.SalesObservation{ProductName: k.product, Date: k.date, Units: units})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ProductName < out[j].ProductName
	})
	return out
}

func productNames(obs []contracts.SalesObservation) []string {
	seen := make(map[string]struct{})
	for _, o := range obs {
		seen[o.ProductName] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for p := range seen {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}
