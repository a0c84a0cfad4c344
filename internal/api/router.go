package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/salescast/internal/api/handlers"
	"github.com/wonny/salescast/pkg/logger"
	"github.com/wonny/salescast/pkg/metrics"
	"github.com/wonny/salescast/pkg/redis"
)

// Routes bundles the handlers and cross-cutting dependencies of the router
type Routes struct {
	Forecast *handlers.ForecastHandler
	Train    *handlers.TrainHandler
	Sales    *handlers.SalesHandler
	Health   *handlers.HealthHandler

	Secret      string
	RateLimiter *redis.RateLimiter // nil = 학습 레이트 리밋 없음
	TrainLimit  int                // requests per minute
	Metrics     *metrics.Metrics   // nil = /metrics 비활성
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(rt Routes, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", rt.Health.Health).Methods("GET")

	if rt.Metrics != nil {
		r.Handle("/metrics", rt.Metrics.Handler()).Methods("GET")
	}

	// API (shared secret)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(secretMiddleware(rt.Secret))

	// Forecast endpoints
	api.HandleFunc("/ml/forecast", rt.Forecast.Forecast).Methods("GET")
	api.HandleFunc("/ml/forecast_intraday", rt.Forecast.Intraday).Methods("GET")
	api.HandleFunc("/ml/forecast_historical", rt.Forecast.Historical).Methods("GET")

	// Training endpoints
	api.HandleFunc("/ml/train/status", rt.Train.Status).Methods("GET")
	var train http.Handler = http.HandlerFunc(rt.Train.Train)
	if rt.RateLimiter != nil {
		train = rateLimitMiddleware(rt.RateLimiter, redis.TrainRateLimit(rt.TrainLimit), log)(train)
	}
	api.Handle("/ml/train", train).Methods("POST")

	// Sales endpoints
	api.HandleFunc("/sales", rt.Sales.Record).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}
