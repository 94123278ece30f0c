// 수동 분석 핸들러
// 알림 1건을 큐를 거치지 않고 동기로 분석하고 결과를 응답 (알림 전송 포함)

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/client"
	"github.com/kube-rca/aiops-processor/internal/model"
)

type alertPipeline interface {
	AnalyzeAndNotify(ctx context.Context, alert model.Alert) (*model.AnalysisResult, error)
}

// Analyze 핸들러 구조체 정의
type AnalyzeHandler struct {
	pipeline alertPipeline
	logger   *zap.Logger
}

// Analyze 핸들러 객체 생성
func NewAnalyzeHandler(pipeline alertPipeline, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// Analyze godoc
// @Summary Analyze a single alert synchronously
// @Tags alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param alert body model.AnalyzeRequest true "Alert"
// @Success 200 {object} model.AnalysisResult
// @Failure 400 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /analyze [post]
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req model.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid payload", Detail: err.Error()})
		return
	}

	alert := req.ToAlert()
	if err := alert.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid payload", Detail: err.Error()})
		return
	}

	result, err := h.pipeline.AnalyzeAndNotify(c.Request.Context(), alert)
	if err != nil {
		var llmErr *client.LLMError
		if errors.As(err, &llmErr) {
			c.JSON(http.StatusBadGateway, model.ErrorResponse{
				Error:  "analysis failed",
				Detail: llmErr.Error(),
				Kind:   string(llmErr.Kind),
			})
			return
		}
		h.logger.Error("Manual analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "analysis failed", Detail: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
