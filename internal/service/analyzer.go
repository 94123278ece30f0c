// 알림 분석 비즈니스 로직 정의
// 알림 1건에 대해 메트릭/로그를 수집하고 LLM으로 원인 분석 결과를 생성
//
// 처리 흐름:
//  1. 알림 시작 시각 기준 [startsAt-W, startsAt+W] 조회 구간 계산
//  2. Prometheus 메트릭과 Loki 로그를 동시에 조회 (실패 시 빈 데이터셋으로 계속 진행)
//  3. LLM이 비활성화되어 있으면 "no analysis available" 결과 반환
//  4. LLM 호출 (재시도는 client 레이어에서 처리)
//  5. AnalysisResult 생성 후 이력 저장소가 있으면 저장 (실패해도 결과는 반환)

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kube-rca/aiops-processor/internal/client"
	"github.com/kube-rca/aiops-processor/internal/logging"
	"github.com/kube-rca/aiops-processor/internal/metrics"
	"github.com/kube-rca/aiops-processor/internal/model"
	"github.com/kube-rca/aiops-processor/internal/tracing"
)

const noAnalysisRootCause = "No analysis available: LLM API key not configured"

// metricsSource - Prometheus 조회 인터페이스 (테스트에서 fake 주입)
type metricsSource interface {
	MetricsForAlert(ctx context.Context, labels map[string]string, window model.TimeWindow) model.MetricsDataset
}

type logsSource interface {
	LogsForAlert(ctx context.Context, labels map[string]string, window model.TimeWindow) model.LogsDataset
}

type analyst interface {
	Enabled() bool
	Model() string
	Analyze(ctx context.Context, alert model.Alert, metricsData model.MetricsDataset, logsData model.LogsDataset) (*model.LLMAnalysis, error)
}

// AnalysisStore - 분석 이력 저장소 (Postgres, 선택)
type AnalysisStore interface {
	InsertAnalysis(ctx context.Context, result *model.AnalysisResult) error
}

// AnalyzerService 구조체 정의
type AnalyzerService struct {
	metrics metricsSource
	logs    logsSource
	llm     analyst
	store   AnalysisStore
	window  time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// AnalyzerService 객체 생성 (store는 nil 허용)
func NewAnalyzerService(metricsClient metricsSource, logsClient logsSource, llm analyst, store AnalysisStore, window time.Duration, logger *zap.Logger) *AnalyzerService {
	return &AnalyzerService{
		metrics: metricsClient,
		logs:    logsClient,
		llm:     llm,
		store:   store,
		window:  window,
		now:     time.Now,
		logger:  logger,
	}
}

// Analyze - 알림 1건 분석
// LLM 호출이 최종 실패하면 *client.LLMError 반환, 메트릭/로그 조회 실패는 에러가 아님
func (s *AnalyzerService) Analyze(ctx context.Context, alert model.Alert) (*model.AnalysisResult, error) {
	name, fp := alert.AlertName(), alert.Fingerprint
	logger := s.logger.With(logging.AlertFields(name, fp)...)

	ctx, span := tracing.StageSpan(ctx, "analyze", name, fp)
	var spanErr error
	defer func() { tracing.End(span, spanErr) }()

	// 1. 조회 구간 계산 (resolved 알림도 startsAt 기준)
	window := model.WindowAround(alert.StartsAt, s.window)

	// 2. 메트릭/로그 동시 조회
	var (
		metricsData model.MetricsDataset
		logsData    model.LogsDataset
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer observeStage("metrics", time.Now())
		metricsData = s.metrics.MetricsForAlert(gctx, alert.Labels, window)
		return nil
	})
	g.Go(func() error {
		defer observeStage("logs", time.Now())
		logsData = s.logs.LogsForAlert(gctx, alert.Labels, window)
		return nil
	})
	_ = g.Wait()

	logger.Info("Collected alert context",
		zap.Int("metric_queries", len(metricsData)),
		zap.Int("metric_series", metricsData.SeriesCount()),
		zap.Int("log_queries", len(logsData)),
		zap.Int("log_lines", logsData.LineCount()),
	)

	result := s.newResult(alert, window, metricsData, logsData)

	// 3. LLM 비활성화
	if s.llm == nil || !s.llm.Enabled() {
		logger.Warn("LLM disabled, producing placeholder analysis", zap.String("stage", "llm"))
		result.RootCause = noAnalysisRootCause
		result.Summary = alert.Annotations["summary"]
		s.save(ctx, logger, result)
		return result, nil
	}

	// 4. LLM 분석
	start := time.Now()
	analysis, err := s.llm.Analyze(ctx, alert, metricsData, logsData)
	observeStage("llm", start)
	if err != nil {
		spanErr = err
		return nil, err
	}

	result.AnalysisAvailable = true
	result.Model = s.llm.Model()
	result.Summary = analysis.Summary
	result.RootCause = analysis.RootCause
	result.Evidence = analysis.Evidence
	result.RemediationSteps = analysis.RemediationSteps
	result.SeverityAssessment = analysis.SeverityAssessment
	result.Confidence = analysis.Confidence
	if analysis.Severity != "" && analysis.Severity != model.SeverityUnknown {
		result.Severity = analysis.Severity
	}

	// 5. 이력 저장
	s.save(ctx, logger, result)

	logger.Info("Analysis completed",
		zap.String("analysis_id", result.AnalysisID),
		zap.String("severity", result.Severity),
		zap.Float64("confidence", result.Confidence),
	)
	return result, nil
}

func (s *AnalyzerService) newResult(alert model.Alert, window model.TimeWindow, metricsData model.MetricsDataset, logsData model.LogsDataset) *model.AnalysisResult {
	return &model.AnalysisResult{
		AnalysisID:       uuid.NewString(),
		AlertName:        alert.AlertName(),
		Fingerprint:      alert.Fingerprint,
		Evidence:         []string{},
		RemediationSteps: []string{},
		Severity:         client.NormalizeSeverity(alert.Severity()),
		Labels:           alert.Labels,
		Annotations:      alert.Annotations,
		GeneratorURL:     alert.GeneratorURL,
		Window:           window,
		Context: model.AnalysisContext{
			MetricQueries: len(metricsData),
			MetricSeries:  metricsData.SeriesCount(),
			LogQueries:    len(logsData),
			LogLines:      logsData.LineCount(),
		},
		AnalyzedAt: s.now().UTC(),
	}
}

func (s *AnalyzerService) save(ctx context.Context, logger *zap.Logger, result *model.AnalysisResult) {
	if s.store == nil {
		return
	}
	if err := s.store.InsertAnalysis(ctx, result); err != nil {
		logger.Error("Failed to store analysis", zap.String("stage", "store"), zap.Error(err))
	}
}

func observeStage(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
