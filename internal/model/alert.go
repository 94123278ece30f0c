// Alertmanager 웹훅 페이로드 및 개별 알림 구조체를 정의
// handler, service, client 레이어에서 공통으로 사용하기 때문에 model 레이어에 별도로 정의

package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	AlertStatusFiring   = "firing"
	AlertStatusResolved = "resolved"
)

// AlertmanagerWebhook - Alertmanager 웹훅 페이로드
// 여러 개의 알림이 그룹으로 묶여서 전송 가능
type AlertmanagerWebhook struct {
	Version string `json:"version"`

	// 동일한 GroupKey를 가진 알림들은 함께 그룹핑됨
	GroupKey string `json:"groupKey"`

	// max_alerts 설정으로 인해 생략된 알림이 있을 경우 그 개수
	TruncatedAlerts int    `json:"truncatedAlerts"`
	Status          string `json:"status"`
	Receiver        string `json:"receiver"`

	GroupLabels       map[string]string `json:"groupLabels"`
	CommonLabels      map[string]string `json:"commonLabels"`
	CommonAnnotations map[string]string `json:"commonAnnotations"`
	ExternalURL       string            `json:"externalURL"`

	// 개별 알림 리스트 (nil이면 잘못된 페이로드로 간주)
	Alerts []Alert `json:"alerts"`
}

// Alert - 개별 알림
// 수신 이후에는 변경하지 않음 (큐, 분석기 모두 값 복사로 전달)
type Alert struct {
	Status string `json:"status"`

	// - alertname: 알림 이름 (필수)
	// - severity: 심각도 (critical, warning, info)
	// - instance, job, service, namespace, pod, component: 쿼리 규칙 매칭에 사용
	Labels map[string]string `json:"labels"`

	// - summary, description, runbook_url
	Annotations map[string]string `json:"annotations"`

	StartsAt time.Time `json:"startsAt"`

	// firing 상태일 때는 "0001-01-01T00:00:00Z"
	EndsAt time.Time `json:"endsAt"`

	GeneratorURL string `json:"generatorURL"`

	// Labels 조합으로 생성되는 해시값, 로그 추적에 사용
	Fingerprint string `json:"fingerprint"`
}

func (a Alert) AlertName() string {
	return a.Labels["alertname"]
}

func (a Alert) Severity() string {
	return a.Labels["severity"]
}

func (a Alert) IsFiring() bool {
	return a.Status == AlertStatusFiring
}

// Validate - 큐에 넣기 전 최소 필드 검증
func (a Alert) Validate() error {
	switch a.Status {
	case AlertStatusFiring, AlertStatusResolved:
	default:
		return fmt.Errorf("invalid status %q (want firing or resolved)", a.Status)
	}
	if strings.TrimSpace(a.AlertName()) == "" {
		return fmt.Errorf("labels.alertname is required")
	}
	if a.StartsAt.IsZero() {
		return fmt.Errorf("startsAt is required")
	}
	return nil
}

// Validate - 배치 전체를 검증하고 첫 번째 오류를 인덱스와 함께 반환
func (w AlertmanagerWebhook) Validate() error {
	if w.Alerts == nil {
		return fmt.Errorf("alerts is required")
	}
	for i, alert := range w.Alerts {
		if err := alert.Validate(); err != nil {
			return fmt.Errorf("alerts[%d]: %w", i, err)
		}
	}
	return nil
}

// FiringAlerts - 분석 대상인 firing 알림만 순서 그대로 반환
func (w AlertmanagerWebhook) FiringAlerts() []Alert {
	firing := make([]Alert, 0, len(w.Alerts))
	for _, alert := range w.Alerts {
		if alert.IsFiring() {
			firing = append(firing, alert)
		}
	}
	return firing
}

// AnalyzeRequest - 수동 분석 요청 (POST /analyze)
// alertname을 labels 대신 최상위 필드로 보내는 경우도 허용
type AnalyzeRequest struct {
	Alert
	AlertNameField string `json:"alertname,omitempty"`
}

// ToAlert - 누락된 필드를 보정한 Alert 반환
func (r AnalyzeRequest) ToAlert() Alert {
	alert := r.Alert
	labels := make(map[string]string, len(alert.Labels)+1)
	for k, v := range alert.Labels {
		labels[k] = v
	}
	if labels["alertname"] == "" && r.AlertNameField != "" {
		labels["alertname"] = r.AlertNameField
	}
	alert.Labels = labels
	if alert.Annotations == nil {
		alert.Annotations = map[string]string{}
	}
	if alert.Status == "" {
		alert.Status = AlertStatusFiring
	}
	return alert
}
