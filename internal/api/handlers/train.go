package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/training"
	"github.com/wonny/salescast/pkg/logger"
)

// Trainer 모델 학습기 (training.Trainer)
type Trainer interface {
	Run(ctx context.Context, mode contracts.ModelMode) (*training.Summary, error)
	LastSummary(ctx context.Context, mode contracts.ModelMode) (*training.Summary, bool, error)
	InProgress(mode contracts.ModelMode) bool
}

// TrainHandler handles model training endpoints
type TrainHandler struct {
	trainer Trainer
	logger  *logger.Logger
}

// NewTrainHandler creates a new train handler
func NewTrainHandler(trainer Trainer, log *logger.Logger) *TrainHandler {
	return &TrainHandler{
		trainer: trainer,
		logger:  log,
	}
}

// TrainStatus 학습 상태 응답
type TrainStatus struct {
	Mode       string            `json:"mode"`
	InProgress bool              `json:"inProgress"`
	Last       *training.Summary `json:"last"`
}

// Train trains the requested mode synchronously and hot-swaps the served model
// POST /api/ml/train?mode=seed|live
func (h *TrainHandler) Train(w http.ResponseWriter, r *http.Request) {
	mode, err := queryMode(r, contracts.ModeLive)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.trainer.Run(r.Context(), mode)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"mode":   summary.Mode,
		"run_id": summary.RunID,
		"rows":   summary.Rows.Total,
	}).Info("Model trained")

	respondJSON(w, http.StatusOK, summary)
}

// Status reports whether a run is active and the latest summary
// GET /api/ml/train/status?mode=seed|live
func (h *TrainHandler) Status(w http.ResponseWriter, r *http.Request) {
	mode, err := queryMode(r, contracts.ModeLive)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	last, _, err := h.trainer.LastSummary(r.Context(), mode)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, TrainStatus{
		Mode:       string(mode),
		InProgress: h.trainer.InProgress(mode),
		Last:       last,
	})
}
