package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/config"
)

const streamsResponse = `{
	"status": "success",
	"data": {
		"resultType": "streams",
		"result": [
			{"stream": {"service": "checkout"}, "values": [["1760610600000000000", "older error"]]},
			{"stream": {"service": "checkout", "level": "error"}, "values": [["1760610660000000000", "newer error"]]}
		]
	}
}`

func TestLokiQueryRangeParams(t *testing.T) {
	window := testWindow()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loki/api/v1/query_range", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, `{service="checkout"}`, q.Get("query"))
		assert.Equal(t, strconv.FormatInt(window.Start.UnixNano(), 10), q.Get("start"))
		assert.Equal(t, strconv.FormatInt(window.End.UnixNano(), 10), q.Get("end"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "backward", q.Get("direction"))
		_, _ = w.Write([]byte(streamsResponse))
	}))
	defer srv.Close()

	c := NewLokiClient(config.LokiConfig{URL: srv.URL, Timeout: 5 * time.Second}, 50, zap.NewNop())
	entries, err := c.QueryRange(context.Background(), `{service="checkout"}`, window)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "newer error", entries[0].Line)
	assert.Equal(t, "error", entries[0].Labels["level"])
	assert.Equal(t, time.Unix(0, 1760610600000000000).UTC(), entries[1].Timestamp)
}

func TestLokiLogsForAlertSkipsFailedAndEmptyQueries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("query") {
		case `{job="node"}`:
			_, _ = w.Write([]byte(streamsResponse))
		case `{job="node"} |~ "(?i)(error|exception|fatal)"`:
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"status":"success","data":{"resultType":"streams","result":[]}}`))
		}
	}))
	defer srv.Close()

	c := NewLokiClient(config.LokiConfig{URL: srv.URL, Timeout: 5 * time.Second}, 100, zap.NewNop())
	dataset := c.LogsForAlert(context.Background(), map[string]string{"job": "node"}, testWindow())

	require.Len(t, dataset, 1)
	assert.Equal(t, "job_logs", dataset[0].Name)
	assert.Equal(t, 2, dataset.LineCount())
}

func TestLokiUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewLokiClient(config.LokiConfig{URL: url, Timeout: time.Second}, 100, zap.NewNop())
	dataset := c.LogsForAlert(context.Background(), map[string]string{"service": "checkout"}, testWindow())
	assert.Empty(t, dataset)
	assert.Error(t, c.Ping(context.Background()))
}
