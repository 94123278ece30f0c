package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/client"
	"github.com/kube-rca/aiops-processor/internal/config"
	"github.com/kube-rca/aiops-processor/internal/db"
	"github.com/kube-rca/aiops-processor/internal/service"
)

// app - serve / analyze 명령이 공유하는 구성 요소
type app struct {
	prometheus *client.PrometheusClient
	loki       *client.LokiClient
	llm        *client.LLMClient
	store      *db.Postgres
	pool       *pgxpool.Pool
	analyzer   *service.AnalyzerService
	notifier   *service.NotifierService
	pipeline   *service.PipelineService
}

// buildApp - 설정 기반으로 클라이언트와 서비스 생성
// Postgres 연결 실패는 이력 저장만 비활성화하고 계속 진행
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger, withNotify bool) (*app, error) {
	prom, err := client.NewPrometheusClient(cfg.Prometheus, logger)
	if err != nil {
		return nil, fmt.Errorf("prometheus client: %w", err)
	}
	loki := client.NewLokiClient(cfg.Loki, cfg.Analysis.MaxLogLines, logger)

	completer, err := client.NewCompleter(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}
	llm := client.NewLLMClient(cfg.LLM, cfg.Analysis, completer, logger)
	if !llm.Enabled() {
		logger.Warn("LLM API key not configured, analyses will be placeholders")
	}

	a := &app{
		prometheus: prom,
		loki:       loki,
		llm:        llm,
	}

	var store service.AnalysisStore
	if cfg.Postgres.Enabled() {
		pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Error("Analysis history disabled", zap.String("stage", "store"), zap.Error(err))
		} else {
			pg := &db.Postgres{Pool: pool}
			if err := pg.EnsureAnalysisSchema(ctx); err != nil {
				pool.Close()
				return nil, fmt.Errorf("ensure analysis schema: %w", err)
			}
			a.pool = pool
			a.store = pg
			store = pg
		}
	}

	var channels []service.Channel
	if withNotify {
		channels = service.ChannelsFromConfig(cfg.Notify)
		if len(channels) == 0 {
			logger.Warn("No notification channel configured, results will only be logged")
		}
	}

	a.analyzer = service.NewAnalyzerService(prom, loki, llm, store, cfg.Analysis.TimeWindow, logger)
	a.notifier = service.NewNotifierService(channels, prom.URL(), logger)
	a.pipeline = service.NewPipelineService(a.analyzer, a.notifier, logger)
	return a, nil
}

func (a *app) healthTargets() []service.HealthTarget {
	return []service.HealthTarget{
		{Name: "prometheus", URL: a.prometheus.URL(), Enabled: true, Prober: a.prometheus},
		{Name: "loki", URL: a.loki.URL(), Enabled: true, Prober: a.loki},
		{Name: "llm", Model: a.llm.Model(), Enabled: a.llm.Enabled(), Prober: a.llm},
	}
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
