package client

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kube-rca/aiops-processor/internal/config"
	"github.com/kube-rca/aiops-processor/internal/model"
)

func TestPromptBuildIncludesContext(t *testing.T) {
	b := PromptBuilder{MaxLogLines: 100, MaxMetricPoints: 50}
	ts := time.Date(2025, 10, 16, 10, 30, 0, 0, time.UTC)

	metricsData := model.MetricsDataset{{
		Name: "cpu_usage",
		Series: []model.MetricSeries{{
			Labels: map[string]string{"__name__": "x", "instance": "node-exporter:9100"},
			Points: []model.MetricPoint{{Timestamp: ts, Value: 10}, {Timestamp: ts.Add(15 * time.Second), Value: 95}},
		}},
	}}
	logsData := model.LogsDataset{{
		Name:    "service_errors",
		Entries: []model.LogEntry{{Timestamp: ts, Line: "ERROR worker pool exhausted"}},
	}}

	prompt := b.Build(testAlert(), metricsData, logsData)

	assert.Contains(t, prompt, "- Alert Name: HighCPUUsage")
	assert.Contains(t, prompt, "- Severity: warning")
	assert.Contains(t, prompt, "- Summary: CPU above 90%")
	assert.Contains(t, prompt, "**cpu_usage:**")
	assert.Contains(t, prompt, "instance=node-exporter:9100")
	assert.NotContains(t, prompt, "__name__=")
	assert.Contains(t, prompt, "Min: 10, Max: 95 (2 data points)")
	assert.Contains(t, prompt, "Total log entries: 1")
	assert.Contains(t, prompt, "ERROR worker pool exhausted")
	assert.True(t, strings.HasSuffix(prompt, "Provide your analysis now:"))
}

func TestPromptBuildEmptyDatasets(t *testing.T) {
	prompt := PromptBuilder{}.Build(testAlert(), model.MetricsDataset{}, nil)
	assert.Contains(t, prompt, "No metrics data available.")
	assert.Contains(t, prompt, "No log data available.")
}

func TestPromptTruncatesLongLogLines(t *testing.T) {
	long := strings.Repeat("x", 500)
	logsData := model.LogsDataset{{Name: "job_logs", Entries: []model.LogEntry{{Line: long}}}}

	prompt := PromptBuilder{MaxLogLines: 10}.Build(testAlert(), nil, logsData)
	assert.Contains(t, prompt, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, prompt, strings.Repeat("x", 201))
}

func TestPromptRespectsLogLineBudget(t *testing.T) {
	entries := make([]model.LogEntry, 8)
	for i := range entries {
		entries[i] = model.LogEntry{Line: "line"}
	}
	logsData := model.LogsDataset{
		{Name: "a", Entries: entries},
		{Name: "b", Entries: entries},
	}

	prompt := PromptBuilder{MaxLogLines: 10}.Build(testAlert(), nil, logsData)
	assert.Equal(t, 10, strings.Count(prompt, "] line"))
	assert.Contains(t, prompt, "... and 6 more entries")
}

func TestPromptRespectsMetricPointBudget(t *testing.T) {
	points := make([]model.MetricPoint, 100)
	for i := range points {
		points[i] = model.MetricPoint{Timestamp: time.Unix(int64(i*15), 0), Value: float64(i)}
	}
	metricsData := model.MetricsDataset{{
		Name:   "load_average",
		Series: []model.MetricSeries{{Points: points}, {Points: points}},
	}}

	prompt := PromptBuilder{MaxMetricPoints: 12}.Build(testAlert(), metricsData, nil)
	samples := 0
	for _, line := range strings.Split(prompt, "\n") {
		if strings.Contains(line, "Samples: ") {
			samples += strings.Count(line, "=")
		}
	}
	assert.Equal(t, 12, samples)
}

func TestPromptMaxCharsKeepsOutputContract(t *testing.T) {
	logsData := model.LogsDataset{{Name: "job_logs", Entries: make([]model.LogEntry, 10)}}
	for i := range logsData[0].Entries {
		logsData[0].Entries[i].Line = strings.Repeat("é", 150)
	}

	prompt := PromptBuilder{MaxChars: 1500}.Build(testAlert(), nil, logsData)
	assert.LessOrEqual(t, len(prompt), 1500)
	assert.Contains(t, prompt, "[context truncated]")
	assert.True(t, strings.HasSuffix(prompt, "Provide your analysis now:"))
}

func TestPromptMaxCharsAtConfigFloor(t *testing.T) {
	logsData := model.LogsDataset{{Name: "job_logs", Entries: make([]model.LogEntry, 200)}}
	for i := range logsData[0].Entries {
		logsData[0].Entries[i].Line = strings.Repeat("x", 200)
	}

	prompt := PromptBuilder{MaxChars: config.MinPromptChars}.Build(testAlert(), nil, logsData)
	assert.LessOrEqual(t, len(prompt), config.MinPromptChars)
	assert.Contains(t, prompt, outputContract)
	assert.Greater(t, config.MinPromptChars, len(outputContract)+len(truncatedPromptNotes))
}

func TestSamplePointsIncludesEnds(t *testing.T) {
	points := make([]model.MetricPoint, 30)
	for i := range points {
		points[i].Value = float64(i)
	}
	sample := samplePoints(points, 4)
	assert.Len(t, sample, 4)
	assert.InDelta(t, 0, sample[0].Value, 1e-9)
	assert.InDelta(t, 29, sample[3].Value, 1e-9)
}
