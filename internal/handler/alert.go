// Alertmanager 웹훅 요청을 처리하는 핸들러
//
// 요청 흐름:
//  1. Alertmanager가 POST /webhook/alerts로 알림 그룹 전송
//  2. JSON 페이로드를 AlertmanagerWebhook 구조체로 파싱 및 검증
//  3. firing 알림만 큐에 추가 (resolved 알림은 무시)
//  4. 분석 완료를 기다리지 않고 즉시 202 응답

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/logging"
	"github.com/kube-rca/aiops-processor/internal/metrics"
	"github.com/kube-rca/aiops-processor/internal/model"
	"github.com/kube-rca/aiops-processor/internal/service"
)

type alertEnqueuer interface {
	Enqueue(alert model.Alert) (int, error)
	Depth() int
}

// Alert 핸들러 구조체 정의
type AlertHandler struct {
	queue  alertEnqueuer
	logger *zap.Logger
}

// Alert 핸들러 객체 생성
func NewAlertHandler(queue alertEnqueuer, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		queue:  queue,
		logger: logger,
	}
}

// Webhook godoc
// @Summary Receive Alertmanager webhook
// @Tags alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body model.AlertmanagerWebhook true "Alertmanager webhook payload"
// @Success 202 {object} model.WebhookAcceptedResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /webhook/alerts [post]
func (h *AlertHandler) Webhook(c *gin.Context) {
	var webhook model.AlertmanagerWebhook

	// 1. JSON 페이로드 파싱 및 검증
	if err := c.ShouldBindJSON(&webhook); err != nil {
		h.logger.Warn("Failed to parse webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid payload", Detail: err.Error()})
		return
	}
	if err := webhook.Validate(); err != nil {
		h.logger.Warn("Invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid payload", Detail: err.Error()})
		return
	}

	// 2. 웹훅 메타데이터 로깅
	h.logger.Info("Received alert webhook",
		zap.String("status", webhook.Status),
		zap.Int("alert_count", len(webhook.Alerts)),
		zap.String("receiver", webhook.Receiver),
	)

	// 3. firing 알림만 도착 순서대로 큐에 추가
	queued := 0
	for _, alert := range webhook.Alerts {
		if !alert.IsFiring() {
			metrics.AlertsReceivedTotal.WithLabelValues(model.AlertStatusResolved).Inc()
			h.logger.Debug("Skipping resolved alert", logging.AlertFields(alert.AlertName(), alert.Fingerprint)...)
			continue
		}
		metrics.AlertsReceivedTotal.WithLabelValues(model.AlertStatusFiring).Inc()

		if _, err := h.queue.Enqueue(alert); err != nil {
			if errors.Is(err, service.ErrQueueStopped) {
				c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "service is shutting down"})
				return
			}
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "failed to enqueue alert", Detail: err.Error()})
			return
		}
		queued++
	}

	// 4. 응답 반환
	c.JSON(http.StatusAccepted, model.WebhookAcceptedResponse{
		Status:    "accepted",
		Message:   "alerts queued for analysis",
		Received:  len(webhook.Alerts),
		Queued:    queued,
		QueueSize: h.queue.Depth(),
	})
}
