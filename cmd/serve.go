package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/handler"
	"github.com/kube-rca/aiops-processor/internal/service"
	"github.com/kube-rca/aiops-processor/internal/tracing"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server and analysis worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe
//
// 처리 흐름:
//  1. 설정/로거/트레이싱 초기화
//  2. 클라이언트, 서비스, 큐 워커 생성 및 시작
//  3. HTTP 서버 시작
//  4. SIGINT/SIGTERM 수신 시 HTTP 서버 종료 -> 워커 종료 대기 (처리 중인 알림은 마무리)
func runServe(parent context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := tracing.InitOTel(tracing.Config{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: handler.Version,
		Enabled:        cfg.Tracing.Enabled,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	queue := service.NewAlertQueue(a.pipeline, logger.With(zap.String("stage", "queue")))
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	queue.Start(workerCtx)

	var tokens *service.TokenService
	if cfg.Auth.Enabled() {
		tokens, err = service.NewTokenService(cfg.Auth.JWTSecret)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("WEBHOOK_JWT_SECRET not set, ingestion endpoints are unauthenticated")
	}

	gin.SetMode(cfg.Server.GinMode)
	deps := handler.RouterDeps{
		Alerts:  handler.NewAlertHandler(queue, logger),
		Analyze: handler.NewAnalyzeHandler(a.pipeline, logger),
		Health:  handler.NewHealthHandler(service.NewHealthService(a.healthTargets(), queue), queue),
		Logger:  logger,
	}
	// WEBHOOK_JWT_SECRET이 있을 때만 인증 적용
	if tokens != nil {
		deps.Tokens = tokens
	}
	deps.Analyses = handler.NewAnalysisHandler(nil)
	if a.store != nil {
		deps.Analyses = handler.NewAnalysisHandler(a.store)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("addr", srv.Addr),
			zap.String("llm_model", a.llm.Model()),
			zap.Bool("llm_enabled", a.llm.Enabled()),
			zap.String("prometheus_url", a.prometheus.URL()),
			zap.String("loki_url", a.loki.URL()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	stopWorker()
	select {
	case <-queue.Done():
	case <-shutdownCtx.Done():
		logger.Warn("Worker did not finish in-flight alert before shutdown timeout")
	}

	logger.Info("Server stopped")
	return nil
}
