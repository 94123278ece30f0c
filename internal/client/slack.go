// Slack Incoming Webhook 전송 클라이언트
//
// 분석 결과를 Block Kit 블록으로 구성하고 severity 색상을 가진 attachment로 감싸서 전송
// 채널별로 독립적으로 전송 (하나의 실패가 다른 채널에 영향 없음)

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/kube-rca/aiops-processor/internal/model"
)

const maxSlackEvidence = 5

// SlackClient(웹훅 전송) 구조체 정의
type SlackClient struct {
	webhookURL string
	httpClient *http.Client
}

// SlackMessage(메시지 내용) 구조체 정의
type SlackMessage struct {
	Text        string            `json:"text"`                  // 알림 미리보기 텍스트
	Attachments []SlackAttachment `json:"attachments,omitempty"` // 색상 + 블록
}

// SlackAttachment(메시지 포맷) 구조체 정의
type SlackAttachment struct {
	// - critical: #dc3545 (빨강)
	// - warning: #ffc107 (노랑)
	// - info: #1976d2 (파랑)
	// - 그 외: #757575 (회색)
	Color  string       `json:"color"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock - header / section / divider / context 블록
type SlackBlock struct {
	Type     string      `json:"type"`
	Text     *SlackText  `json:"text,omitempty"`
	Fields   []SlackText `json:"fields,omitempty"`
	Elements []SlackText `json:"elements,omitempty"`
}

type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SlackClient 객체 생성
func NewSlackClient(webhookURL string, timeout time.Duration) *SlackClient {
	return &SlackClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *SlackClient) Name() string {
	return "slack"
}

// Send - 분석 결과를 Slack 메시지로 변환 후 전송
func (c *SlackClient) Send(ctx context.Context, payload model.NotificationPayload) error {
	return c.send(ctx, BuildSlackMessage(payload))
}

// Slack Webhook 호출
func (c *SlackClient) send(ctx context.Context, msg SlackMessage) error {
	// JSON 직렬화
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// HTTP 요청 생성
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// 요청 전송
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	// 에러 확인 (incoming webhook은 성공 시 "ok" 텍스트 반환)
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// BuildSlackMessage - 분석 결과를 Block Kit 메시지로 구성
func BuildSlackMessage(p model.NotificationPayload) SlackMessage {
	r := p.Result
	emoji := severityEmoji(p.Severity)

	blocks := []SlackBlock{
		{
			Type: "header",
			Text: &SlackText{Type: "plain_text", Text: truncate(fmt.Sprintf("%s AI Analysis: %s", emoji, p.AlertName), 150)},
		},
		{
			Type: "section",
			Fields: []SlackText{
				mrkdwn(fmt.Sprintf("*Severity:*\n%s", strings.ToUpper(p.Severity))),
				mrkdwn(fmt.Sprintf("*Confidence:*\n%.0f%%", r.Confidence*100)),
				mrkdwn(fmt.Sprintf("*Instance:*\n%s", valueOr(p.Instance, "n/a"))),
				mrkdwn(fmt.Sprintf("*Fingerprint:*\n`%s`", valueOr(r.Fingerprint, "n/a"))),
			},
		},
	}

	if r.Summary != "" {
		blocks = append(blocks, section(fmt.Sprintf("*📋 Summary*\n%s", toSlackMarkdown(r.Summary))))
	}
	blocks = append(blocks, section(fmt.Sprintf("*🎯 Root Cause*\n%s", toSlackMarkdown(r.RootCause))))

	if len(r.Evidence) > 0 {
		evidence := r.Evidence
		if len(evidence) > maxSlackEvidence {
			evidence = evidence[:maxSlackEvidence]
		}
		lines := make([]string, 0, len(evidence))
		for _, e := range evidence {
			lines = append(lines, "• "+toSlackMarkdown(e))
		}
		blocks = append(blocks, section("*🔍 Evidence*\n"+strings.Join(lines, "\n")))
	}

	if len(r.RemediationSteps) > 0 {
		lines := make([]string, 0, len(r.RemediationSteps))
		for i, step := range r.RemediationSteps {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, toSlackMarkdown(step)))
		}
		blocks = append(blocks, section("*🔧 Remediation Steps*\n"+strings.Join(lines, "\n")))
	}

	footer := []SlackText{mrkdwn(fmt.Sprintf("Analyzed at %s", r.AnalyzedAt.UTC().Format(time.RFC3339)))}
	if p.AlertURL != "" {
		footer = append(footer, mrkdwn(fmt.Sprintf("<%s|View alert source>", p.AlertURL)))
	}
	if p.PrometheusURL != "" {
		footer = append(footer, mrkdwn(fmt.Sprintf("<%s|Prometheus>", p.PrometheusURL)))
	}
	blocks = append(blocks, SlackBlock{Type: "divider"}, SlackBlock{Type: "context", Elements: footer})

	return SlackMessage{
		Text: fmt.Sprintf("%s [%s] %s: %s", emoji, strings.ToUpper(p.Severity), p.AlertName, truncate(r.RootCause, 200)),
		Attachments: []SlackAttachment{
			{Color: p.Color, Blocks: blocks},
		},
	}
}

func mrkdwn(text string) SlackText {
	return SlackText{Type: "mrkdwn", Text: text}
}

// section - Slack section 텍스트 최대 3000자
func section(text string) SlackBlock {
	t := mrkdwn(truncate(text, 2900))
	return SlackBlock{Type: "section", Text: &t}
}

// severity에 따른 이모지 반환
func severityEmoji(severity string) string {
	switch severity {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityWarning:
		return "🟡"
	case model.SeverityInfo:
		return "🔵"
	default:
		return "⚪"
	}
}

var (
	slackCodeRe    = regexp.MustCompile("(?s)```.*?```|`[^`\n]*`")
	slackBoldRe    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	slackHeadingRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.+?)\s*$`)
)

// toSlackMarkdown - LLM이 생성한 Markdown을 Slack mrkdwn으로 변환
// 코드 블록과 인라인 코드 내부는 변환하지 않음
func toSlackMarkdown(text string) string {
	var sb strings.Builder
	last := 0
	for _, loc := range slackCodeRe.FindAllStringIndex(text, -1) {
		sb.WriteString(convertMarkdown(text[last:loc[0]]))
		sb.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	sb.WriteString(convertMarkdown(text[last:]))
	return sb.String()
}

func convertMarkdown(s string) string {
	s = slackHeadingRe.ReplaceAllString(s, "**$1**")
	return slackBoldRe.ReplaceAllString(s, "*$1*")
}
