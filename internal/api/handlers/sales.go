package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/intraday"
	"github.com/wonny/salescast/pkg/logger"
)

// SalesHandler handles sale entry endpoints
type SalesHandler struct {
	store  contracts.SalesStore
	loc    *time.Location
	logger *logger.Logger
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(store contracts.SalesStore, loc *time.Location, log *logger.Logger) *SalesHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SalesHandler{
		store:  store,
		loc:    loc,
		logger: log,
	}
}

// RecordSaleRequest 판매 입력 요청
type RecordSaleRequest struct {
	ProductName string `json:"productName"`
	Units       *int   `json:"units"`
	Date        string `json:"date"`      // YYYY-MM-DD, default today (APP_TZ)
	CreatedAt   string `json:"createdAt"` // ISO 8601, default now
}

// Record stores one sale observation
// POST /api/sales
func (h *SalesHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	obs, err := h.observation(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.store.RecordSale(r.Context(), obs)
	if err != nil {
		respondServiceError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"productName": saved.ProductName,
		"units":       saved.Units,
		"date":        saved.Date.Format(contracts.DateLayout),
		"createdAt":   saved.CreatedAt.In(h.loc).Format(time.RFC3339),
	})
}

func (h *SalesHandler) observation(req RecordSaleRequest) (contracts.SalesObservation, error) {
	name := strings.TrimSpace(req.ProductName)
	if name == "" {
		return contracts.SalesObservation{}, contracts.NewValidationError("productName", "is required")
	}
	if req.Units == nil || *req.Units < 0 {
		return contracts.SalesObservation{}, contracts.NewValidationError("units", "must be a non-negative integer")
	}

	obs := contracts.SalesObservation{ProductName: name, Units: *req.Units}

	if strings.TrimSpace(req.CreatedAt) != "" {
		createdAt, err := intraday.ParseAsOf(req.CreatedAt, h.loc)
		if err != nil {
			return contracts.SalesObservation{}, contracts.NewValidationError("createdAt", err.Error())
		}
		obs.CreatedAt = createdAt
	}

	if strings.TrimSpace(req.Date) != "" {
		d, err := contracts.ParseDate(req.Date)
		if err != nil {
			return contracts.SalesObservation{}, contracts.NewValidationError("date", err.Error())
		}
		obs.Date = d
	} else if !obs.CreatedAt.IsZero() {
		obs.Date = contracts.CivilDate(obs.CreatedAt.In(h.loc))
	} else {
		obs.Date = contracts.CivilDate(time.Now().In(h.loc))
	}
	return obs, nil
}
