// 분석 이력 조회 핸들러 (Postgres 설정 시에만 활성화)

package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kube-rca/aiops-processor/internal/model"
)

type analysisReader interface {
	ListRecentAnalyses(ctx context.Context, limit int) ([]model.AnalysisResult, error)
	GetLatestAnalysisByFingerprint(ctx context.Context, fingerprint string) (*model.AnalysisResult, error)
}

// Analysis 핸들러 구조체 정의
type AnalysisHandler struct {
	store analysisReader
}

// Analysis 핸들러 객체 생성 (store가 nil이면 503 응답)
func NewAnalysisHandler(store analysisReader) *AnalysisHandler {
	return &AnalysisHandler{store: store}
}

// ListAnalyses godoc
// @Summary List recent analyses
// @Tags analyses
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max results (default 20, max 100)"
// @Success 200 {object} model.AnalysisListResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/v1/analyses [get]
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "analysis history is not configured"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	list, err := h.store.ListRecentAnalyses(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.AnalysisListResponse{Status: "success", Data: list})
}

// GetAnalysis godoc
// @Summary Latest analysis for an alert fingerprint
// @Tags analyses
// @Produce json
// @Security BearerAuth
// @Param fingerprint path string true "Alert fingerprint"
// @Success 200 {object} model.AnalysisResult
// @Failure 404 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/v1/analyses/{fingerprint} [get]
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "analysis history is not configured"})
		return
	}

	result, err := h.store.GetLatestAnalysisByFingerprint(c.Request.Context(), c.Param("fingerprint"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "analysis not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}
