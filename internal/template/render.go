// Package template provides generic webhook body template rendering.
//
// 지원하는 변수 형식:
//
//	{{analysis.id}}, {{analysis.summary}}, {{analysis.root_cause}},
//	{{analysis.severity}}, {{analysis.confidence}}, {{analysis.analyzed_at}},
//	{{analysis.color}}, {{analysis.evidence}}, {{analysis.remediation_steps}}
//
//	{{alert.alertname}}, {{alert.severity}}, {{alert.namespace}},
//	{{alert.instance}}, {{alert.description}}, {{alert.summary}},
//	{{alert.fingerprint}}, {{alert.generator_url}}
//
// 문자열 변수는 JSON 문자열 내부에 들어갈 수 있도록 escape 처리
// evidence, remediation_steps는 JSON 배열 그대로 치환
package template

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/kube-rca/aiops-processor/internal/model"
)

// AnalysisData - 템플릿 렌더링에 사용할 분석 결과 데이터
type AnalysisData struct {
	ID               string
	Summary          string
	RootCause        string
	Severity         string
	Color            string
	Confidence       float64
	AnalyzedAt       time.Time
	Evidence         []string
	RemediationSteps []string
}

// AlertData - 템플릿 렌더링에 사용할 Alert 데이터
type AlertData struct {
	AlertName    string
	Severity     string
	Namespace    string
	Instance     string
	Description  string
	Summary      string
	Fingerprint  string
	GeneratorURL string
}

// AnalysisDataFromPayload - NotificationPayload에서 AnalysisData 생성
func AnalysisDataFromPayload(p model.NotificationPayload) AnalysisData {
	r := p.Result
	return AnalysisData{
		ID:               r.AnalysisID,
		Summary:          r.Summary,
		RootCause:        r.RootCause,
		Severity:         p.Severity,
		Color:            p.Color,
		Confidence:       r.Confidence,
		AnalyzedAt:       r.AnalyzedAt,
		Evidence:         r.Evidence,
		RemediationSteps: r.RemediationSteps,
	}
}

// AlertDataFromResult - AnalysisResult의 원본 알림 정보로 AlertData 생성
func AlertDataFromResult(r *model.AnalysisResult) AlertData {
	return AlertData{
		AlertName:    r.AlertName,
		Severity:     r.Labels["severity"],
		Namespace:    r.Labels["namespace"],
		Instance:     r.Labels["instance"],
		Description:  r.Annotations["description"],
		Summary:      r.Annotations["summary"],
		Fingerprint:  r.Fingerprint,
		GeneratorURL: r.GeneratorURL,
	}
}

// RenderBody - webhook body 템플릿의 변수를 실제 값으로 치환
//
// nil로 전달된 항목의 변수는 빈 값으로 치환됩니다.
func RenderBody(body string, analysis *AnalysisData, alert *AlertData) string {
	pairs := make([]string, 0, 34)

	// --- Analysis 변수 ---
	if analysis != nil {
		pairs = append(pairs,
			"{{analysis.id}}", escape(analysis.ID),
			"{{analysis.summary}}", escape(analysis.Summary),
			"{{analysis.root_cause}}", escape(analysis.RootCause),
			"{{analysis.severity}}", escape(analysis.Severity),
			"{{analysis.color}}", escape(analysis.Color),
			"{{analysis.confidence}}", strconv.FormatFloat(analysis.Confidence, 'f', -1, 64),
			"{{analysis.analyzed_at}}", analysis.AnalyzedAt.UTC().Format(time.RFC3339),
			"{{analysis.evidence}}", jsonList(analysis.Evidence),
			"{{analysis.remediation_steps}}", jsonList(analysis.RemediationSteps),
		)
	} else {
		pairs = append(pairs,
			"{{analysis.id}}", "",
			"{{analysis.summary}}", "",
			"{{analysis.root_cause}}", "",
			"{{analysis.severity}}", "",
			"{{analysis.color}}", "",
			"{{analysis.confidence}}", "0",
			"{{analysis.analyzed_at}}", "",
			"{{analysis.evidence}}", "[]",
			"{{analysis.remediation_steps}}", "[]",
		)
	}

	// --- Alert 변수 ---
	if alert != nil {
		pairs = append(pairs,
			"{{alert.alertname}}", escape(alert.AlertName),
			"{{alert.severity}}", escape(alert.Severity),
			"{{alert.namespace}}", escape(alert.Namespace),
			"{{alert.instance}}", escape(alert.Instance),
			"{{alert.description}}", escape(alert.Description),
			"{{alert.summary}}", escape(alert.Summary),
			"{{alert.fingerprint}}", escape(alert.Fingerprint),
			"{{alert.generator_url}}", escape(alert.GeneratorURL),
		)
	} else {
		pairs = append(pairs,
			"{{alert.alertname}}", "",
			"{{alert.severity}}", "",
			"{{alert.namespace}}", "",
			"{{alert.instance}}", "",
			"{{alert.description}}", "",
			"{{alert.summary}}", "",
			"{{alert.fingerprint}}", "",
			"{{alert.generator_url}}", "",
		)
	}

	return strings.NewReplacer(pairs...).Replace(body)
}

// escape - JSON 문자열 리터럴 내부용 escape (앞뒤 따옴표 제외)
func escape(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(b[1 : len(b)-1])
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
