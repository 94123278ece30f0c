// 범용 Webhook 전송 클라이언트
//
// GENERIC_WEBHOOK_TEMPLATE이 비어 있으면 기본 JSON 본문 전송
// 템플릿이 있으면 {{analysis.*}}, {{alert.*}} 변수를 치환한 본문 전송

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kube-rca/aiops-processor/internal/model"
	tmpl "github.com/kube-rca/aiops-processor/internal/template"
)

type WebhookClient struct {
	url        string
	template   string
	httpClient *http.Client
}

// WebhookPayload - 기본 JSON 본문
type WebhookPayload struct {
	AlertName   string            `json:"alert_name"`
	Fingerprint string            `json:"fingerprint"`
	Severity    string            `json:"severity"`
	Color       string            `json:"color"`
	Instance    string            `json:"instance,omitempty"`
	Analysis    WebhookAnalysis   `json:"analysis"`
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
	URLs        WebhookURLs       `json:"urls"`
}

type WebhookAnalysis struct {
	ID                string    `json:"id"`
	Summary           string    `json:"summary"`
	RootCause         string    `json:"root_cause"`
	Evidence          []string  `json:"evidence"`
	RemediationSteps  []string  `json:"remediation_steps"`
	Severity          string    `json:"severity"`
	Confidence        float64   `json:"confidence"`
	AnalysisAvailable bool      `json:"analysis_available"`
	AnalyzedAt        time.Time `json:"analyzed_at"`
}

type WebhookURLs struct {
	Alert      string `json:"alert,omitempty"`
	Prometheus string `json:"prometheus,omitempty"`
}

// WebhookClient 객체 생성
func NewWebhookClient(url, bodyTemplate string, timeout time.Duration) *WebhookClient {
	return &WebhookClient{
		url:      url,
		template: bodyTemplate,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *WebhookClient) Name() string {
	return "webhook"
}

// Send - 분석 결과를 JSON(또는 템플릿) 본문으로 POST
func (c *WebhookClient) Send(ctx context.Context, payload model.NotificationPayload) error {
	body, err := c.render(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}
	return nil
}

func (c *WebhookClient) render(p model.NotificationPayload) ([]byte, error) {
	if c.template != "" {
		analysis := tmpl.AnalysisDataFromPayload(p)
		alert := tmpl.AlertDataFromResult(p.Result)
		return []byte(tmpl.RenderBody(c.template, &analysis, &alert)), nil
	}
	body, err := json.Marshal(BuildWebhookPayload(p))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}
	return body, nil
}

// BuildWebhookPayload - 기본 JSON 본문 구성
func BuildWebhookPayload(p model.NotificationPayload) WebhookPayload {
	r := p.Result
	evidence := r.Evidence
	if evidence == nil {
		evidence = []string{}
	}
	steps := r.RemediationSteps
	if steps == nil {
		steps = []string{}
	}
	return WebhookPayload{
		AlertName:   p.AlertName,
		Fingerprint: r.Fingerprint,
		Severity:    p.Severity,
		Color:       p.Color,
		Instance:    p.Instance,
		Analysis: WebhookAnalysis{
			ID:                r.AnalysisID,
			Summary:           r.Summary,
			RootCause:         r.RootCause,
			Evidence:          evidence,
			RemediationSteps:  steps,
			Severity:          r.Severity,
			Confidence:        r.Confidence,
			AnalysisAvailable: r.AnalysisAvailable,
			AnalyzedAt:        r.AnalyzedAt,
		},
		Labels:      r.Labels,
		Annotations: r.Annotations,
		URLs: WebhookURLs{
			Alert:      p.AlertURL,
			Prometheus: p.PrometheusURL,
		},
	}
}
