package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/metrics"
	"github.com/kube-rca/aiops-processor/internal/model"
)

const authSubjectKey = "auth_subject"

type tokenParser interface {
	ParseToken(token string) (string, error)
}

func AuthMiddleware(tokens tokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
			return
		}

		subject, err := tokens.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
			return
		}

		c.Set(authSubjectKey, subject)
		c.Next()
	}
}

// GetAuthSubject - 인증된 호출자 subject (인증 비활성화 시 빈 문자열)
func GetAuthSubject(c *gin.Context) string {
	return c.GetString(authSubjectKey)
}

// RequestLogger - 요청 단위 access 로그
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if subject := GetAuthSubject(c); subject != "" {
			fields = append(fields, zap.String("subject", subject))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case c.Request.URL.Path == "/metrics" || c.Request.URL.Path == "/ping":
			logger.Debug("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}

// Metrics - 라우트 템플릿 기준 요청 수/지연 시간 기록
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
