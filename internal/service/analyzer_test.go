package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/client"
	"github.com/kube-rca/aiops-processor/internal/config"
	"github.com/kube-rca/aiops-processor/internal/model"
)

func TestAnalyzeProducesResultFromLLM(t *testing.T) {
	completer := &scriptedCompleter{response: cpuAnswer}
	llm := client.NewLLMClient(testLLMConfig(), testAnalysisConfig(), completer, zap.NewNop())
	metricsData := model.MetricsDataset{{
		Name:  "cpu_usage",
		Query: "q",
		Series: []model.MetricSeries{{
			Labels: map[string]string{"instance": "node-exporter:9100"},
			Points: []model.MetricPoint{{Timestamp: time.Unix(0, 0), Value: 97}},
		}},
	}}
	store := &memoryStore{}
	svc := NewAnalyzerService(&fakeMetrics{data: metricsData}, &fakeLogs{}, llm, store, 15*time.Minute, zap.NewNop())

	alert := cpuAlert("fp-1")
	result, err := svc.Analyze(context.Background(), alert)
	require.NoError(t, err)

	assert.NotEmpty(t, result.AnalysisID)
	assert.Equal(t, "HighCPUUsage", result.AlertName)
	assert.Equal(t, "fp-1", result.Fingerprint)
	assert.Equal(t, "CPU saturation", result.RootCause)
	assert.Equal(t, "warning", result.Severity)
	assert.Equal(t, []string{"scale up"}, result.RemediationSteps)
	assert.True(t, result.AnalysisAvailable)
	assert.Equal(t, "test-model", result.Model)
	assert.Equal(t, 1, result.Context.MetricQueries)
	assert.Equal(t, 1, result.Context.MetricSeries)
	assert.Equal(t, alert.StartsAt.Add(-15*time.Minute), result.Window.Start)
	assert.Equal(t, alert.StartsAt.Add(15*time.Minute), result.Window.End)

	require.Len(t, store.results, 1)
	assert.Equal(t, result.AnalysisID, store.results[0].AnalysisID)
}

func TestAnalyzeWithoutLLMReturnsPlaceholder(t *testing.T) {
	svc := NewAnalyzerService(&fakeMetrics{}, &fakeLogs{}, client.NewLLMClient(config.LLMConfig{}, testAnalysisConfig(), nil, zap.NewNop()), nil, 15*time.Minute, zap.NewNop())

	result, err := svc.Analyze(context.Background(), cpuAlert("fp-1"))
	require.NoError(t, err)

	assert.False(t, result.AnalysisAvailable)
	assert.Equal(t, noAnalysisRootCause, result.RootCause)
	assert.Equal(t, "CPU above 90%", result.Summary)
	assert.Equal(t, "critical", result.Severity)
	assert.Empty(t, result.RemediationSteps)
	assert.NotNil(t, result.RemediationSteps)
}

func TestAnalyzeLLMFailureReturnsError(t *testing.T) {
	completer := &scriptedCompleter{errs: []error{&client.StatusError{Code: 503}}}
	llm := client.NewLLMClient(testLLMConfig(), testAnalysisConfig(), completer, zap.NewNop())
	store := &memoryStore{}
	svc := NewAnalyzerService(&fakeMetrics{}, &fakeLogs{}, llm, store, 15*time.Minute, zap.NewNop())

	result, err := svc.Analyze(context.Background(), cpuAlert("fp-1"))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 3, completer.Calls())
	assert.Empty(t, store.results)

	var llmErr *client.LLMError
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, client.LLMErrorTransient, llmErr.Kind)
}

func TestAnalyzeWithUnreachableBackends(t *testing.T) {
	// 즉시 닫아서 연결 거부 상태로 만듦
	srv := httptest.NewServer(http.NotFoundHandler())
	deadURL := srv.URL
	srv.Close()

	prom, err := client.NewPrometheusClient(config.PrometheusConfig{URL: deadURL, Step: time.Minute, Timeout: time.Second}, zap.NewNop())
	require.NoError(t, err)
	loki := client.NewLokiClient(config.LokiConfig{URL: deadURL, Timeout: time.Second}, 100, zap.NewNop())

	completer := &scriptedCompleter{response: cpuAnswer}
	llm := client.NewLLMClient(testLLMConfig(), testAnalysisConfig(), completer, zap.NewNop())
	svc := NewAnalyzerService(prom, loki, llm, nil, 15*time.Minute, zap.NewNop())

	result, err := svc.Analyze(context.Background(), cpuAlert("fp-1"))
	require.NoError(t, err)
	assert.Equal(t, "CPU saturation", result.RootCause)
	assert.Zero(t, result.Context.MetricQueries)
	assert.Zero(t, result.Context.LogQueries)
	assert.Equal(t, 1, completer.Calls())
}

func TestAnalyzeStoreFailureIsNotFatal(t *testing.T) {
	completer := &scriptedCompleter{response: cpuAnswer}
	llm := client.NewLLMClient(testLLMConfig(), testAnalysisConfig(), completer, zap.NewNop())
	svc := NewAnalyzerService(&fakeMetrics{}, &fakeLogs{}, llm, &memoryStore{err: errUnavailable}, 15*time.Minute, zap.NewNop())

	result, err := svc.Analyze(context.Background(), cpuAlert("fp-1"))
	require.NoError(t, err)
	assert.Equal(t, "CPU saturation", result.RootCause)
}
