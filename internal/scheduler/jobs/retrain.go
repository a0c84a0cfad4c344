package jobs

import (
	"context"
	"errors"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/scheduler"
	"github.com/wonny/salescast/internal/training"
	"github.com/wonny/salescast/pkg/logger"
)

// DefaultRetrainSchedule 매일 23:30:00 (APP_TZ)
const DefaultRetrainSchedule = "0 30 23 * * *"

// Trainer 학습 실행기 (training.Trainer)
type Trainer interface {
	Run(ctx context.Context, mode contracts.ModelMode) (*training.Summary, error)
}

// RetrainJob retrains a model mode on a cron schedule and hot-swaps it
type RetrainJob struct {
	trainer  Trainer
	mode     contracts.ModelMode
	schedule string
	logger   *logger.Logger
}

// NewRetrainJob creates a retrain job ("" schedule → DefaultRetrainSchedule)
func NewRetrainJob(trainer Trainer, mode contracts.ModelMode, schedule string, log *logger.Logger) *RetrainJob {
	if schedule == "" {
		schedule = DefaultRetrainSchedule
	}
	return &RetrainJob{
		trainer:  trainer,
		mode:     mode,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *RetrainJob) Name() string {
	return "retrain_" + string(j.mode)
}

// Schedule returns the cron schedule
func (j *RetrainJob) Schedule() string {
	return j.schedule
}

// Run executes one training run
// 입력/데이터 문제와 동시 실행 충돌은 재시도하지 않음
func (j *RetrainJob) Run(ctx context.Context) error {
	j.logger.WithField("mode", j.mode).Info("Starting scheduled retrain")

	summary, err := j.trainer.Run(ctx, j.mode)
	if err != nil {
		if errors.Is(err, contracts.ErrValidation) ||
			errors.Is(err, contracts.ErrInsufficientData) ||
			errors.Is(err, contracts.ErrTrainingInProgress) {
			return scheduler.Permanent(err)
		}
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"mode":     summary.Mode,
		"run_id":   summary.RunID,
		"rows":     summary.Rows.Total,
		"products": summary.Products,
	}).Info("Scheduled retrain completed")

	return nil
}
