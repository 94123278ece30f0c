package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kube-rca/aiops-processor/internal/model"
)

func TestWebhookRoundTripPreservesAnalysis(t *testing.T) {
	received := make(chan WebhookPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p WebhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		received <- p
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	result := testResult()
	result.Severity = model.SeverityWarning
	c := NewWebhookClient(srv.URL, "", time.Second)
	require.NoError(t, c.Send(context.Background(), model.NewNotificationPayload(result, "http://prometheus:9090")))

	p := <-received
	assert.Equal(t, "CPU saturation", p.Analysis.RootCause)
	assert.Equal(t, []string{"scale up", "add HPA", "profile hot path"}, p.Analysis.RemediationSteps)
	assert.Equal(t, model.SeverityWarning, p.Analysis.Severity)
	assert.Equal(t, model.SeverityWarning, p.Severity)
	assert.Equal(t, "#ffc107", p.Color)
	assert.Equal(t, "abc123", p.Fingerprint)
	assert.Equal(t, "http://prometheus:9090", p.URLs.Prometheus)
	assert.True(t, p.Analysis.AnalyzedAt.Equal(result.AnalyzedAt))
}

func TestWebhookTemplateBody(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL, `{"title":"{{alert.alertname}}","cause":"{{analysis.root_cause}}","steps":{{analysis.remediation_steps}}}`, time.Second)
	require.NoError(t, c.Send(context.Background(), model.NewNotificationPayload(testResult(), "")))

	assert.Equal(t, "HighCPUUsage", body["title"])
	assert.Equal(t, "CPU saturation", body["cause"])
	assert.Equal(t, []any{"scale up", "add HPA", "profile hot path"}, body["steps"])
}

func TestWebhookNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookClient(srv.URL, "", time.Second).Send(context.Background(), model.NewNotificationPayload(testResult(), ""))
	assert.ErrorContains(t, err, "status 502")
}
