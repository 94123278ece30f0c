package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kube-rca/aiops-processor/internal/config"
	"github.com/kube-rca/aiops-processor/internal/model"
)

type fakeMetrics struct {
	data  model.MetricsDataset
	calls int
}

func (f *fakeMetrics) MetricsForAlert(context.Context, map[string]string, model.TimeWindow) model.MetricsDataset {
	f.calls++
	return f.data
}

type fakeLogs struct {
	data model.LogsDataset
}

func (f *fakeLogs) LogsForAlert(context.Context, map[string]string, model.TimeWindow) model.LogsDataset {
	return f.data
}

// scriptedCompleter - 호출 순서대로 에러 또는 응답 반환
type scriptedCompleter struct {
	mu       sync.Mutex
	errs     []error
	response string
	calls    int
}

func (c *scriptedCompleter) Complete(context.Context, string, string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if len(c.errs) > 0 && i >= len(c.errs) && c.response == "" {
		return "", c.errs[len(c.errs)-1]
	}
	return c.response, nil
}

func (c *scriptedCompleter) Model() string              { return "test-model" }
func (c *scriptedCompleter) Ping(context.Context) error { return nil }

func (c *scriptedCompleter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type recordingChannel struct {
	name string
	err  error

	mu       sync.Mutex
	payloads []model.NotificationPayload
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Send(_ context.Context, payload model.NotificationPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return c.err
}

func (c *recordingChannel) Sent() []model.NotificationPayload {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.NotificationPayload, len(c.payloads))
	copy(out, c.payloads)
	return out
}

type memoryStore struct {
	mu      sync.Mutex
	results []*model.AnalysisResult
	err     error
}

func (s *memoryStore) InsertAnalysis(_ context.Context, result *model.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.results = append(s.results, result)
	return nil
}

var errUnavailable = errors.New("connection refused")

const cpuAnswer = `{"summary": "CPU pegged", "root_cause": "CPU saturation", "evidence": ["cpu_usage max 97%"], "severity": "warning", "confidence": 0.8, "remediation_steps": ["scale up"]}`

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		APIKey:       "k",
		MaxRetries:   3,
		RetryInitial: time.Millisecond,
		RetryMax:     2 * time.Millisecond,
		MaxElapsed:   5 * time.Second,
		Timeout:      time.Second,
	}
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{TimeWindow: 15 * time.Minute, MaxLogLines: 100, MaxMetricsPoints: 50}
}

func cpuAlert(fingerprint string) model.Alert {
	return model.Alert{
		Status:       model.AlertStatusFiring,
		Labels:       map[string]string{"alertname": "HighCPUUsage", "instance": "node-exporter:9100", "severity": "critical"},
		Annotations:  map[string]string{"summary": "CPU above 90%"},
		StartsAt:     time.Date(2025, 10, 16, 10, 30, 0, 0, time.UTC),
		GeneratorURL: "http://prometheus:9090/graph?g0.expr=cpu",
		Fingerprint:  fingerprint,
	}
}
