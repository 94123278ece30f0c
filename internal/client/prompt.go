package client

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kube-rca/aiops-processor/internal/model"
)

const (
	SystemPrompt = "You are an expert Site Reliability Engineer (SRE) and DevOps engineer specializing in incident analysis and root cause determination. Always respond with valid JSON."

	maxLogLineChars      = 200
	maxSeriesPerMetric   = 3
	samplesPerSeries     = 10
	maxLogLinesPerQuery  = 10
	truncatedPromptNotes = "\n\n[context truncated]\n"
)

const outputContract = `**OUTPUT FORMAT:**
Respond ONLY with a valid JSON object in this exact format:
{
  "summary": "Brief summary here",
  "root_cause": "Identified root cause",
  "evidence": [
    "Evidence point 1",
    "Evidence point 2",
    "Evidence point 3"
  ],
  "remediation_steps": [
    "Step 1: Immediate action",
    "Step 2: Short-term fix",
    "Step 3: Long-term solution"
  ],
  "severity": "critical|warning|info",
  "severity_assessment": "Critical/High/Medium/Low - Justification",
  "confidence": 0.85
}

Provide your analysis now:`

// PromptBuilder - 알림/메트릭/로그를 하나의 프롬프트로 직렬화
// 0 이하의 제한값은 제한 없음
type PromptBuilder struct {
	MaxLogLines     int
	MaxMetricPoints int
	MaxChars        int
}

func (b PromptBuilder) Build(alert model.Alert, metricsData model.MetricsDataset, logsData model.LogsDataset) string {
	var sb strings.Builder

	sb.WriteString("You are an expert Site Reliability Engineer (SRE) analyzing a production alert. ")
	sb.WriteString("Your task is to perform root cause analysis and provide actionable remediation steps.\n\n")

	sb.WriteString("**ALERT INFORMATION:**\n")
	fmt.Fprintf(&sb, "- Alert Name: %s\n", valueOr(alert.AlertName(), "Unknown"))
	fmt.Fprintf(&sb, "- Severity: %s\n", valueOr(alert.Severity(), "unknown"))
	fmt.Fprintf(&sb, "- Status: %s\n", alert.Status)
	fmt.Fprintf(&sb, "- Started At: %s\n", alert.StartsAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "- Summary: %s\n", alert.Annotations["summary"])
	fmt.Fprintf(&sb, "- Description: %s\n", alert.Annotations["description"])
	if runbook := alert.Annotations["runbook_url"]; runbook != "" {
		fmt.Fprintf(&sb, "- Runbook: %s\n", runbook)
	}
	labelsJSON, _ := json.MarshalIndent(alert.Labels, "", "  ")
	fmt.Fprintf(&sb, "- Labels: %s\n\n", labelsJSON)

	sb.WriteString("**METRICS DATA:**\n")
	sb.WriteString(b.formatMetrics(metricsData))
	sb.WriteString("\n\n**LOG DATA:**\n")
	sb.WriteString(b.formatLogs(logsData))
	sb.WriteString("\n\n")

	sb.WriteString(`**ANALYSIS REQUIRED:**
Please analyze the above information and provide:

1. **Summary**: A brief 2-3 sentence summary of the incident
2. **Root Cause**: The most likely root cause based on metrics and logs
3. **Evidence**: Specific evidence from metrics and logs supporting your analysis (list 3-5 key pieces of evidence)
4. **Remediation Steps**: Concrete, actionable steps to resolve the issue (ordered by priority)
5. **Severity Assessment**: Your assessment of the actual impact with justification

`)

	return b.fit(sb.String(), outputContract)
}

// fit - 출력 형식 안내는 항상 유지하고 컨텍스트 부분을 잘라 MaxChars 이내로 맞춤
// MaxChars가 안내문 + 잘림 표시보다 작으면 안내문을 우선해 MaxChars를 넘김
// (config에서 LLM_MAX_PROMPT_CHARS를 config.MinPromptChars 이상으로 보정)
func (b PromptBuilder) fit(body, tail string) string {
	if b.MaxChars <= 0 || len(body)+len(tail) <= b.MaxChars {
		return body + tail
	}
	budget := b.MaxChars - len(tail) - len(truncatedPromptNotes)
	if budget < 0 {
		budget = 0
	}
	// 잘린 멀티바이트 문자 제거
	cut := strings.ToValidUTF8(body[:budget], "")
	return cut + truncatedPromptNotes + tail
}

func (b PromptBuilder) formatMetrics(data model.MetricsDataset) string {
	if len(data) == 0 {
		return "No metrics data available."
	}

	remaining := b.MaxMetricPoints
	unlimited := remaining <= 0
	var lines []string
	for _, result := range data {
		lines = append(lines, fmt.Sprintf("\n**%s:**", result.Name))
		for i, series := range result.Series {
			if i >= maxSeriesPerMetric {
				lines = append(lines, fmt.Sprintf("  ... and %d more series", len(result.Series)-maxSeriesPerMetric))
				break
			}
			lines = append(lines, "  - "+formatSeriesLabels(series.Labels))
			if len(series.Points) == 0 {
				lines = append(lines, "    (no data points)")
				continue
			}
			minV, maxV := seriesRange(series.Points)
			first := series.Points[0].Value
			last := series.Points[len(series.Points)-1].Value
			lines = append(lines, fmt.Sprintf("    Start: %s, End: %s, Min: %s, Max: %s (%d data points)",
				formatValue(first), formatValue(last), formatValue(minV), formatValue(maxV), len(series.Points)))

			n := samplesPerSeries
			if !unlimited && remaining < n {
				n = remaining
			}
			sample := samplePoints(series.Points, n)
			remaining -= len(sample)
			if len(sample) > 0 {
				vals := make([]string, 0, len(sample))
				for _, p := range sample {
					vals = append(vals, fmt.Sprintf("%s=%s", p.Timestamp.UTC().Format("15:04:05"), formatValue(p.Value)))
				}
				lines = append(lines, "    Samples: "+strings.Join(vals, ", "))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// samplePoints - 시계열 전체에 고르게 분포된 포인트 n개 선택 (첫/마지막 포함)
func samplePoints(points []model.MetricPoint, n int) []model.MetricPoint {
	if n <= 0 {
		return nil
	}
	if len(points) <= n {
		return points
	}
	if n == 1 {
		return []model.MetricPoint{points[len(points)-1]}
	}
	out := make([]model.MetricPoint, 0, n)
	step := float64(len(points)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		out = append(out, points[int(math.Round(float64(i)*step))])
	}
	return out
}

func (b PromptBuilder) formatLogs(data model.LogsDataset) string {
	if len(data) == 0 {
		return "No log data available."
	}

	budget := b.MaxLogLines
	lines := []string{fmt.Sprintf("Total log entries: %d", data.LineCount())}
	for _, result := range data {
		if len(result.Entries) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("\n**%s** (%d entries):", result.Name, len(result.Entries)))

		limit := maxLogLinesPerQuery
		if b.MaxLogLines > 0 && budget < limit {
			limit = budget
		}
		shown := 0
		for _, entry := range result.Entries {
			if shown >= limit {
				break
			}
			lines = append(lines, fmt.Sprintf("  [%s] %s", entry.Timestamp.UTC().Format(time.RFC3339), truncate(entry.Line, maxLogLineChars)))
			shown++
		}
		if b.MaxLogLines > 0 {
			budget -= shown
		}
		if rest := len(result.Entries) - shown; rest > 0 {
			lines = append(lines, fmt.Sprintf("  ... and %d more entries", rest))
		}
	}
	return strings.Join(lines, "\n")
}

func formatSeriesLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		if k == "__name__" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	if len(parts) == 0 {
		return "(no labels)"
	}
	return strings.Join(parts, ", ")
}

func seriesRange(points []model.MetricPoint) (float64, float64) {
	minV, maxV := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		minV = math.Min(minV, p.Value)
		maxV = math.Max(maxV, p.Value)
	}
	return minV, maxV
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.4g", v)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
