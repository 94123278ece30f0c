package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/client"
	"github.com/kube-rca/aiops-processor/internal/config"
)

func newTestPipeline(completer client.Completer, channels ...Channel) *PipelineService {
	cfg := testLLMConfig()
	if completer == nil {
		cfg = config.LLMConfig{}
	}
	llm := client.NewLLMClient(cfg, testAnalysisConfig(), completer, zap.NewNop())
	analyzer := NewAnalyzerService(&fakeMetrics{}, &fakeLogs{}, llm, nil, 15*time.Minute, zap.NewNop())
	notifier := NewNotifierService(channels, "http://prometheus:9090", zap.NewNop())
	return NewPipelineService(analyzer, notifier, zap.NewNop())
}

func TestPipelineNotifiesOnSuccess(t *testing.T) {
	ch := &recordingChannel{name: "slack"}
	p := newTestPipeline(&scriptedCompleter{response: cpuAnswer}, ch)

	result, err := p.AnalyzeAndNotify(context.Background(), cpuAlert("fp-1"))
	require.NoError(t, err)
	assert.Equal(t, "CPU saturation", result.RootCause)

	sent := ch.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "warning", sent[0].Severity)
	assert.Equal(t, "#ffc107", sent[0].Color)
}

func TestPipelineSkipsNotifyWhenLLMFails(t *testing.T) {
	ch := &recordingChannel{name: "slack"}
	completer := &scriptedCompleter{errs: []error{&client.StatusError{Code: 500}}}
	p := newTestPipeline(completer, ch)

	err := p.Process(context.Background(), cpuAlert("fp-1"))
	require.Error(t, err)
	assert.Equal(t, 3, completer.Calls())
	assert.Empty(t, ch.Sent())
}

func TestPipelineSkipsNotifyOnUnparseableAnswer(t *testing.T) {
	ch := &recordingChannel{name: "slack"}
	p := newTestPipeline(&scriptedCompleter{response: "I think the CPU is busy."}, ch)

	_, err := p.AnalyzeAndNotify(context.Background(), cpuAlert("fp-1"))
	var llmErr *client.LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, client.LLMErrorParse, llmErr.Kind)
	assert.Empty(t, ch.Sent())
}

func TestPipelineNotifiesPlaceholderWhenLLMDisabled(t *testing.T) {
	ch := &recordingChannel{name: "webhook"}
	p := newTestPipeline(nil, ch)

	result, err := p.AnalyzeAndNotify(context.Background(), cpuAlert("fp-1"))
	require.NoError(t, err)
	assert.False(t, result.AnalysisAvailable)
	require.Len(t, ch.Sent(), 1)
	assert.Equal(t, noAnalysisRootCause, ch.Sent()[0].Result.RootCause)
}
