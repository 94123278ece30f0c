package model

import "time"

const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
	SeverityUnknown  = "unknown"
)

// AnalysisResult - 알림 1건당 최대 1번 생성되는 분석 결과 (생성 이후 변경하지 않음)
type AnalysisResult struct {
	AnalysisID  string `json:"analysis_id"`
	AlertName   string `json:"alert_name"`
	Fingerprint string `json:"fingerprint"`

	Summary            string   `json:"summary"`
	RootCause          string   `json:"root_cause"`
	Evidence           []string `json:"evidence"`
	RemediationSteps   []string `json:"remediation_steps"`
	Severity           string   `json:"severity"`
	SeverityAssessment string   `json:"severity_assessment,omitempty"`
	Confidence         float64  `json:"confidence"`

	// LLM이 비활성화된 경우 false ("no analysis available" 결과)
	AnalysisAvailable bool `json:"analysis_available"`

	// 원본 알림 참고용
	Labels       map[string]string `json:"labels"`
	Annotations  map[string]string `json:"annotations"`
	GeneratorURL string            `json:"generator_url,omitempty"`

	Window     TimeWindow      `json:"window"`
	Context    AnalysisContext `json:"context"`
	Model      string          `json:"model,omitempty"`
	AnalyzedAt time.Time       `json:"analyzed_at"`
}

// AnalysisContext - 프롬프트에 실제로 포함된 데이터 규모
type AnalysisContext struct {
	MetricQueries int `json:"metric_queries"`
	MetricSeries  int `json:"metric_series"`
	LogQueries    int `json:"log_queries"`
	LogLines      int `json:"log_lines"`
}

// LLMAnalysis - LLM 응답에서 파싱한 구조화된 답변
type LLMAnalysis struct {
	Summary            string
	RootCause          string
	Evidence           []string
	RemediationSteps   []string
	Severity           string
	SeverityAssessment string
	Confidence         float64
}
