// HTTP 라우터 구성
//
// 인증 대상 (WEBHOOK_JWT_SECRET 설정 시):
//   - POST /webhook/alerts, POST /analyze
//   - GET /api/v1/analyses...
//
// 항상 공개:
//   - /, /ping, /health, /queue/status, /metrics, /openapi.json

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Alerts   *AlertHandler
	Analyze  *AnalyzeHandler
	Health   *HealthHandler
	Analyses *AnalysisHandler
	// nil이면 인증 없이 공개
	Tokens tokenParser
	Logger *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(deps.Logger), Metrics())

	router.GET("/", Root)
	router.GET("/ping", Ping)
	router.GET("/health", deps.Health.Health)
	router.GET("/queue/status", deps.Health.QueueStatus)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/openapi.json", OpenAPIDoc)

	protected := router.Group("/")
	if deps.Tokens != nil {
		protected.Use(AuthMiddleware(deps.Tokens))
	}
	protected.POST("/webhook/alerts", deps.Alerts.Webhook)
	protected.POST("/analyze", deps.Analyze.Analyze)

	api := protected.Group("/api/v1")
	api.GET("/analyses", deps.Analyses.ListAnalyses)
	api.GET("/analyses/:fingerprint", deps.Analyses.GetAnalysis)

	return router
}
