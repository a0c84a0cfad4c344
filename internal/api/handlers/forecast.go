package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/forecast"
	"github.com/wonny/salescast/internal/intraday"
	"github.com/wonny/salescast/pkg/logger"
)

// Forecaster 예측 서비스 (forecast.Service)
type Forecaster interface {
	Forecast(ctx context.Context, req forecast.Request) (*contracts.ForecastResponse, error)
	Intraday(ctx context.Context, req forecast.IntradayRequest) (*contracts.ForecastResponse, error)
	Historical(ctx context.Context, req forecast.HistoricalRequest) (*contracts.ForecastResponse, error)
}

// ForecastHandler handles forecast API endpoints
// ⭐ SSOT: Forecast API 핸들러는 이 구조체에서만
type ForecastHandler struct {
	service Forecaster
	loc     *time.Location
	logger  *logger.Logger
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(service Forecaster, loc *time.Location, log *logger.Logger) *ForecastHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ForecastHandler{
		service: service,
		loc:     loc,
		logger:  log,
	}
}

// Forecast returns EOD totals per product over [start, end]
// GET /api/ml/forecast?start=&end=&top_k=&mode=
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	req, err := h.rangeRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Forecast(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Intraday returns the blended EOD forecast for one date
// GET /api/ml/forecast_intraday?date_str=&as_of=&open_hour=&close_hour=&top_k=&mode=
func (h *ForecastHandler) Intraday(w http.ResponseWriter, r *http.Request) {
	req, err := h.intradayRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Intraday(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Historical returns the frozen QA baseline
// GET /api/ml/forecast_historical?start=&end=&top_k=
func (h *ForecastHandler) Historical(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	topK, err := queryTopK(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Historical(r.Context(), forecast.HistoricalRequest{Start: start, End: end, TopK: topK})
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *ForecastHandler) rangeRequest(r *http.Request) (forecast.Request, error) {
	start, err := queryDate(r, "start")
	if err != nil {
		return forecast.Request{}, err
	}
	end, err := queryDate(r, "end")
	if err != nil {
		return forecast.Request{}, err
	}
	topK, err := queryTopK(r)
	if err != nil {
		return forecast.Request{}, err
	}
	mode, err := queryMode(r, contracts.ModeSeed)
	if err != nil {
		return forecast.Request{}, err
	}
	return forecast.Request{Start: start, End: end, TopK: topK, Mode: mode}, nil
}

func (h *ForecastHandler) intradayRequest(r *http.Request) (forecast.IntradayRequest, error) {
	var req forecast.IntradayRequest
	q := r.URL.Query()

	if strings.TrimSpace(q.Get("date_str")) != "" {
		d, err := queryDate(r, "date_str")
		if err != nil {
			return req, err
		}
		req.Date = &d
	}
	if raw := strings.TrimSpace(q.Get("as_of")); raw != "" {
		asOf, err := intraday.ParseAsOf(raw, h.loc)
		if err != nil {
			return req, contracts.NewValidationError("as_of", err.Error())
		}
		req.AsOf = &asOf
	}

	var err error
	if req.OpenHour, err = queryInt(r, "open_hour"); err != nil {
		return req, err
	}
	if req.CloseHour, err = queryInt(r, "close_hour"); err != nil {
		return req, err
	}
	if req.TopK, err = queryTopK(r); err != nil {
		return req, err
	}
	if req.Mode, err = queryMode(r, contracts.ModeLive); err != nil {
		return req, err
	}
	return req, nil
}
