package model

import "strings"

// severity별 메시지 색상
//   - critical: 빨강
//   - warning: 노랑
//   - info: 파랑
//   - 그 외: 회색
var severityColors = map[string]string{
	SeverityCritical: "#dc3545",
	SeverityWarning:  "#ffc107",
	SeverityInfo:     "#1976d2",
}

const defaultSeverityColor = "#757575"

// SeverityColor - 고정 lookup 테이블 기반 색상 반환 (대소문자 무시)
func SeverityColor(severity string) string {
	if color, ok := severityColors[strings.ToLower(strings.TrimSpace(severity))]; ok {
		return color
	}
	return defaultSeverityColor
}

// NotificationPayload - 채널 전송용 파생 뷰, 전송 시도마다 새로 생성
type NotificationPayload struct {
	Result        *AnalysisResult
	AlertName     string
	Severity      string
	Color         string
	Instance      string
	AlertURL      string
	PrometheusURL string
}

// NewNotificationPayload - AnalysisResult에서 채널 공통 표시 속성 계산
func NewNotificationPayload(result *AnalysisResult, prometheusURL string) NotificationPayload {
	severity := result.Severity
	if severity == "" {
		severity = SeverityUnknown
	}
	return NotificationPayload{
		Result:        result,
		AlertName:     result.AlertName,
		Severity:      severity,
		Color:         SeverityColor(severity),
		Instance:      result.Labels["instance"],
		AlertURL:      result.GeneratorURL,
		PrometheusURL: prometheusURL,
	}
}
