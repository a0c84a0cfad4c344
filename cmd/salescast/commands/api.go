package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/api"
	"github.com/wonny/salescast/internal/api/handlers"
	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/policy"
	"github.com/wonny/salescast/internal/scheduler"
	"github.com/wonny/salescast/internal/scheduler/jobs"
	"github.com/wonny/salescast/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 예측/학습/판매 입력 엔드포인트 제공
- RETRAIN_ENABLED=true 이면 live 모델 정기 재학습

Endpoints:
  GET  /health                       - Health check
  GET  /metrics                      - Prometheus metrics
  GET  /api/ml/forecast              - 기간 EOD 예측
  GET  /api/ml/forecast_intraday     - 당일 블렌딩 예측
  GET  /api/ml/forecast_historical   - 평균 기반 기준선
  POST /api/ml/train                 - 모델 학습 + 교체
  GET  /api/ml/train/status          - 학습 상태
  POST /api/sales                    - 판매 기록

Example:
  go run ./cmd/salescast api
  go run ./cmd/salescast api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Salescast API Server ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log
	loc := a.cfg.Location()

	// Handlers
	routes := api.Routes{
		Forecast:   handlers.NewForecastHandler(a.service, loc, log),
		Train:      handlers.NewTrainHandler(a.trainer, log),
		Sales:      handlers.NewSalesHandler(a.sales, loc, log),
		Health:     handlers.NewHealthHandler(a.db, a.redis, a.registry),
		Secret:     a.cfg.MLSecret,
		TrainLimit: a.cfg.APIRateLimit,
		Metrics:    a.metrics,
	}
	if a.redis.Enabled() && a.cfg.APIRateLimit > 0 {
		routes.RateLimiter = redis.NewRateLimiter(a.redis, cachePrefix)
	}

	router := api.NewRouter(routes, log)
	server := api.New(a.cfg, log, router)

	// Scheduled retraining
	var sched *scheduler.Scheduler
	if a.cfg.Retrain.Enabled {
		sched = scheduler.New(loc, log)
		job := jobs.NewRetrainJob(a.trainer, contracts.ModeLive, a.cfg.Retrain.Schedule, log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("schedule retrain: %w", err)
		}
		sched.Start()
	}

	policyHash, _ := policy.Hash(a.policy)
	log.WithField("policy_hash", policyHash).Info("API server starting")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	if sched != nil {
		fmt.Printf("   Retrain schedule: %s (%s)\n", a.cfg.Retrain.Schedule, a.cfg.AppTZ)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Serve until interrupt, then drain with timeout
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = server.Run(ctx, 30*time.Second)

	if sched != nil {
		sched.Stop()
	}
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
