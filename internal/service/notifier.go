// 분석 결과 알림 전송 로직 정의
//
// 처리 흐름:
//  1. AnalysisResult로 NotificationPayload 생성 (severity 색상 계산)
//  2. 설정된 채널(Slack, 범용 Webhook)마다 독립적으로 전송
//     - 한 채널 실패가 다른 채널 전송을 막지 않음
//  3. 채널이 하나도 없으면 전체 결과를 info 로그로 남김

package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/client"
	"github.com/kube-rca/aiops-processor/internal/config"
	"github.com/kube-rca/aiops-processor/internal/logging"
	"github.com/kube-rca/aiops-processor/internal/metrics"
	"github.com/kube-rca/aiops-processor/internal/model"
)

// Channel - 알림 채널 인터페이스
type Channel interface {
	Name() string
	Send(ctx context.Context, payload model.NotificationPayload) error
}

// NotifyReport - 채널별 전송 결과 집계
type NotifyReport struct {
	Sent   int
	Failed int
}

// NotifierService 구조체 정의
type NotifierService struct {
	channels      []Channel
	prometheusURL string
	logger        *zap.Logger
}

// NotifierService 객체 생성
func NewNotifierService(channels []Channel, prometheusURL string, logger *zap.Logger) *NotifierService {
	return &NotifierService{
		channels:      channels,
		prometheusURL: prometheusURL,
		logger:        logger,
	}
}

// ChannelsFromConfig - 설정된 Slack / 범용 Webhook URL로 채널 목록 구성
func ChannelsFromConfig(cfg config.NotifyConfig) []Channel {
	channels := make([]Channel, 0, len(cfg.SlackWebhookURLs)+len(cfg.GenericWebhookURLs))
	for _, url := range cfg.SlackWebhookURLs {
		channels = append(channels, client.NewSlackClient(url, cfg.Timeout))
	}
	for _, url := range cfg.GenericWebhookURLs {
		channels = append(channels, client.NewWebhookClient(url, cfg.GenericTemplate, cfg.Timeout))
	}
	return channels
}

// Notify - 모든 채널에 전송, 채널이 없으면 로그로 대체
func (s *NotifierService) Notify(ctx context.Context, result *model.AnalysisResult) NotifyReport {
	defer observeStage("notify", time.Now())

	logger := s.logger.With(logging.AlertFields(result.AlertName, result.Fingerprint)...)
	payload := model.NewNotificationPayload(result, s.prometheusURL)

	if len(s.channels) == 0 {
		logger.Info("No notification channel configured, logging analysis result",
			zap.String("analysis_id", result.AnalysisID),
			zap.String("severity", payload.Severity),
			zap.String("summary", result.Summary),
			zap.String("root_cause", result.RootCause),
			zap.Strings("evidence", result.Evidence),
			zap.Strings("remediation_steps", result.RemediationSteps),
			zap.Float64("confidence", result.Confidence),
		)
		metrics.NotificationsTotal.WithLabelValues("log", metrics.ResultSuccess).Inc()
		return NotifyReport{}
	}

	var report NotifyReport
	for _, ch := range s.channels {
		if err := ch.Send(ctx, payload); err != nil {
			report.Failed++
			metrics.NotificationsTotal.WithLabelValues(ch.Name(), metrics.ResultError).Inc()
			logger.Error("Failed to send notification",
				zap.String("stage", "notify"),
				zap.String("channel", ch.Name()),
				zap.Error(err),
			)
			continue
		}
		report.Sent++
		metrics.NotificationsTotal.WithLabelValues(ch.Name(), metrics.ResultSuccess).Inc()
		logger.Info("Sent notification", zap.String("channel", ch.Name()))
	}
	return report
}
