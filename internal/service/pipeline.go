// 알림 1건의 전체 처리 파이프라인 (분석 -> 알림 전송)
// 큐 워커와 수동 분석 핸들러가 공통으로 사용

package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/client"
	"github.com/kube-rca/aiops-processor/internal/logging"
	"github.com/kube-rca/aiops-processor/internal/metrics"
	"github.com/kube-rca/aiops-processor/internal/model"
)

// 분석 결과 라벨
const (
	OutcomeNotified       = "notified"
	OutcomeNotifyFailed   = "notify_failed"
	OutcomeAnalysisFailed = "analysis_failed"
	OutcomeUnavailable    = "unavailable"
)

type alertAnalyzer interface {
	Analyze(ctx context.Context, alert model.Alert) (*model.AnalysisResult, error)
}

type resultNotifier interface {
	Notify(ctx context.Context, result *model.AnalysisResult) NotifyReport
}

// PipelineService 구조체 정의
type PipelineService struct {
	analyzer alertAnalyzer
	notifier resultNotifier
	logger   *zap.Logger
}

// PipelineService 객체 생성
func NewPipelineService(analyzer alertAnalyzer, notifier resultNotifier, logger *zap.Logger) *PipelineService {
	return &PipelineService{
		analyzer: analyzer,
		notifier: notifier,
		logger:   logger,
	}
}

// Process - 큐 워커용, 결과는 버리고 분석 실패만 에러로 반환
func (p *PipelineService) Process(ctx context.Context, alert model.Alert) error {
	_, err := p.AnalyzeAndNotify(ctx, alert)
	return err
}

// AnalyzeAndNotify - 분석 성공 시에만 알림 전송
// 일부 채널 전송 실패는 에러로 보지 않음 (로그와 메트릭으로만 기록)
func (p *PipelineService) AnalyzeAndNotify(ctx context.Context, alert model.Alert) (*model.AnalysisResult, error) {
	logger := p.logger.With(logging.AlertFields(alert.AlertName(), alert.Fingerprint)...)

	result, err := p.analyzer.Analyze(ctx, alert)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(OutcomeAnalysisFailed).Inc()
		logAnalysisFailure(logger, err)
		return nil, err
	}

	report := p.notifier.Notify(ctx, result)

	switch {
	case !result.AnalysisAvailable:
		metrics.AnalysesTotal.WithLabelValues(OutcomeUnavailable).Inc()
	case report.Failed > 0:
		metrics.AnalysesTotal.WithLabelValues(OutcomeNotifyFailed).Inc()
		logger.Warn("Analysis notified with channel failures",
			zap.Int("sent", report.Sent),
			zap.Int("failed", report.Failed),
		)
	default:
		metrics.AnalysesTotal.WithLabelValues(OutcomeNotified).Inc()
	}
	return result, nil
}

// logAnalysisFailure - 네트워크 실패와 응답 파싱 실패를 구분해서 기록
func logAnalysisFailure(logger *zap.Logger, err error) {
	var llmErr *client.LLMError
	if !errors.As(err, &llmErr) {
		logger.Error("Analysis failed", zap.String("stage", "analyze"), zap.Error(err))
		return
	}
	fields := []zap.Field{
		zap.String("stage", "llm"),
		zap.String("kind", string(llmErr.Kind)),
		zap.Int("attempts", llmErr.Attempts),
		zap.Error(llmErr.Err),
	}
	if llmErr.StatusCode != 0 {
		fields = append(fields, zap.Int("status_code", llmErr.StatusCode))
	}
	switch llmErr.Kind {
	case client.LLMErrorParse:
		logger.Error("LLM response could not be parsed, analysis abandoned", fields...)
	case client.LLMErrorPermanent:
		logger.Error("LLM rejected request, analysis abandoned", fields...)
	default:
		logger.Error("LLM unavailable after retries, analysis abandoned", fields...)
	}
}
