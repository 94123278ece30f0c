// Loki range 쿼리 클라이언트
//
// Loki 공식 Go 클라이언트가 없어 HTTP API(/loki/api/v1/query_range)를 직접 호출
// Prometheus 클라이언트와 동일하게 실패한 쿼리는 건너뛰고 빈 데이터셋을 허용

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/config"
	"github.com/kube-rca/aiops-processor/internal/metrics"
	"github.com/kube-rca/aiops-processor/internal/model"
	"github.com/kube-rca/aiops-processor/internal/tracing"
)

type LokiClient struct {
	baseURL    string
	limit      int
	httpClient *http.Client
	rules      RuleSet
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// lokiResponse - query_range 응답 중 streams 결과만 사용
type lokiResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string `json:"resultType"`
		Result     []struct {
			Stream map[string]string `json:"stream"`
			Values [][2]string       `json:"values"`
		} `json:"result"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// LokiClient 객체 생성
func NewLokiClient(cfg config.LokiConfig, maxLines int, logger *zap.Logger) *LokiClient {
	if maxLines <= 0 {
		maxLines = 500
	}
	return &LokiClient{
		baseURL: cfg.URL,
		limit:   maxLines,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rules:   LokiRules,
		breaker: newBackendBreaker("loki"),
		logger:  logger.With(zap.String("backend", "loki")),
	}
}

func (c *LokiClient) URL() string {
	return c.baseURL
}

// QueryRange - 단일 LogQL range 쿼리 (최신 로그부터, limit 적용)
func (c *LokiClient) QueryRange(ctx context.Context, query string, window model.TimeWindow) ([]model.LogEntry, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.queryRange(ctx, query, window)
	})
	if err != nil {
		return nil, err
	}
	entries, _ := out.([]model.LogEntry)
	return entries, nil
}

func (c *LokiClient) queryRange(ctx context.Context, query string, window model.TimeWindow) ([]model.LogEntry, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("start", strconv.FormatInt(window.Start.UnixNano(), 10))
	params.Set("end", strconv.FormatInt(window.End.UnixNano(), 10))
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("direction", "backward")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/loki/api/v1/query_range?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query loki: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("loki returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed lokiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Status != "success" {
		return nil, fmt.Errorf("loki query failed: %s", parsed.Error)
	}
	return parseLokiStreams(parsed), nil
}

// parseLokiStreams - 스트림별 결과를 하나로 합쳐 최신순 정렬
func parseLokiStreams(resp lokiResponse) []model.LogEntry {
	var entries []model.LogEntry
	for _, stream := range resp.Data.Result {
		for _, v := range stream.Values {
			ns, err := strconv.ParseInt(v[0], 10, 64)
			if err != nil {
				continue
			}
			entries = append(entries, model.LogEntry{
				Timestamp: time.Unix(0, ns).UTC(),
				Line:      v[1],
				Labels:    stream.Stream,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries
}

// LogsForAlert - 알림 라벨 기반 쿼리를 모두 실행하고 결과가 있는 쿼리만 규칙 순서대로 반환
func (c *LokiClient) LogsForAlert(ctx context.Context, labels map[string]string, window model.TimeWindow) model.LogsDataset {
	ctx, span := tracing.ClientSpan(ctx, "loki", "query_range")
	defer span.End()

	dataset := model.LogsDataset{}
	for _, q := range c.rules.Build(labels) {
		c.logger.Debug("Executing log query", zap.String("name", q.Name), zap.String("query", q.Query))

		entries, err := c.QueryRange(ctx, q.Query, window)
		if err != nil {
			metrics.BackendQueriesTotal.WithLabelValues("loki", metrics.ResultError).Inc()
			c.logger.Warn("Loki query failed, skipping",
				zap.String("name", q.Name),
				zap.Error(err),
			)
			continue
		}
		metrics.BackendQueriesTotal.WithLabelValues("loki", metrics.ResultSuccess).Inc()
		if len(entries) == 0 {
			continue
		}
		dataset = append(dataset, model.LogResult{Name: q.Name, Query: q.Query, Entries: entries})
	}
	return dataset
}

// Ping - /ready 엔드포인트 확인
func (c *LokiClient) Ping(ctx context.Context) error {
	ctx, cancel := withOptionalTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ready", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("loki not ready: status %d", resp.StatusCode)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
