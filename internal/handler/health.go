package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kube-rca/aiops-processor/internal/model"
)

const serviceName = "aiops-processor"

// 버전 정보 (빌드 시 ldflags로 주입)
var Version = "dev"

type healthChecker interface {
	Check(ctx context.Context) model.HealthResponse
}

type queueStatuser interface {
	Status() model.QueueStatus
}

// Health 핸들러 구조체 정의
type HealthHandler struct {
	health healthChecker
	queue  queueStatuser
}

// Health 핸들러 객체 생성
func NewHealthHandler(health healthChecker, queue queueStatuser) *HealthHandler {
	return &HealthHandler{
		health: health,
		queue:  queue,
	}
}

// Ping godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} model.PingResponse
// @Router /ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

// Root godoc
// @Summary Service info
// @Tags health
// @Produce json
// @Success 200 {object} model.RootResponse
// @Router / [get]
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.RootResponse{
		Service: serviceName,
		Status:  "running",
		Version: Version,
	})
}

// Health godoc
// @Summary Backend reachability and queue status
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.health.Check(c.Request.Context()))
}

// QueueStatus godoc
// @Summary Queue depth and worker state
// @Tags health
// @Produce json
// @Success 200 {object} model.QueueStatus
// @Router /queue/status [get]
func (h *HealthHandler) QueueStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.queue.Status())
}
