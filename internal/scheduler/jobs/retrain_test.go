package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/scheduler"
	"github.com/wonny/salescast/internal/training"
	"github.com/wonny/salescast/pkg/logger"
)

type fakeTrainer struct {
	err  error
	mode contracts.ModelMode
}

func (f *fakeTrainer) Run(_ context.Context, mode contracts.ModelMode) (*training.Summary, error) {
	f.mode = mode
	if f.err != nil {
		return nil, f.err
	}
	return &training.Summary{Status: "success", Mode: string(mode), RunID: "r1"}, nil
}

func TestRetrainJob(t *testing.T) {
	tr := &fakeTrainer{}
	job := NewRetrainJob(tr, contracts.ModeLive, "", logger.Nop())

	assert.Equal(t, "retrain_live", job.Name())
	assert.Equal(t, DefaultRetrainSchedule, job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, contracts.ModeLive, tr.mode)

	custom := NewRetrainJob(tr, contracts.ModeSeed, "0 0 4 * * *", logger.Nop())
	assert.Equal(t, "0 0 4 * * *", custom.Schedule())
}

func TestRetrainJob_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{"busy", contracts.ErrTrainingInProgress, true},
		{"no data", fmt.Errorf("%w: no sales", contracts.ErrInsufficientData), true},
		{"remote backend", contracts.NewValidationError("backend", "remote"), true},
		{"store down", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewRetrainJob(&fakeTrainer{err: tt.err}, contracts.ModeLive, "", logger.Nop())
			err := job.Run(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)

			var perm *scheduler.PermanentError
			assert.Equal(t, tt.permanent, errors.As(err, &perm))
		})
	}
}

func TestRetrainJobSchedules(t *testing.T) {
	s := scheduler.New(nil, logger.Nop())
	require.NoError(t, s.AddJob(NewRetrainJob(&fakeTrainer{}, contracts.ModeLive, "", logger.Nop())))
	assert.Equal(t, []string{"retrain_live"}, s.GetAllJobs())
}
