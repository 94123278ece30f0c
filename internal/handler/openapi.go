package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kube-rca/aiops-processor/docs"
	"github.com/kube-rca/aiops-processor/internal/model"
)

// OpenAPIDoc godoc
// @Summary OpenAPI document
// @Description swag 문서에 빌드 버전과 요청 host를 채워 반환
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} model.ErrorResponse
// @Router /openapi.json [get]
func OpenAPIDoc(c *gin.Context) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc); err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "invalid openapi document", Detail: err.Error()})
		return
	}

	if info, ok := doc["info"].(map[string]any); ok {
		info["version"] = Version
	}
	// 배포 환경마다 host가 다르므로 고정값이 없으면 요청 기준
	if host, _ := doc["host"].(string); host == "" {
		doc["host"] = c.Request.Host
	}

	c.JSON(http.StatusOK, doc)
}
