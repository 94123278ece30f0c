// Prometheus range 쿼리 클라이언트
//
// 처리 흐름:
//   1. PrometheusRules로 알림 라벨에서 쿼리 목록 생성
//   2. 쿼리별로 query_range 호출 (쿼리 단위 타임아웃)
//   3. 실패한 쿼리는 로그만 남기고 건너뜀
//   4. 연속 실패 시 circuit breaker가 열려 나머지 쿼리는 네트워크 호출 없이 건너뜀
//
// 어떤 경우에도 호출자에게 에러를 반환하지 않음 (빈 데이터셋 허용)

package client

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/config"
	"github.com/kube-rca/aiops-processor/internal/metrics"
	domain "github.com/kube-rca/aiops-processor/internal/model"
	"github.com/kube-rca/aiops-processor/internal/tracing"
)

type PrometheusClient struct {
	api     v1.API
	url     string
	step    time.Duration
	timeout time.Duration
	rules   RuleSet
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// PrometheusClient 객체 생성
func NewPrometheusClient(cfg config.PrometheusConfig, logger *zap.Logger) (*PrometheusClient, error) {
	c, err := api.NewClient(api.Config{Address: cfg.URL})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}
	step := cfg.Step
	if step <= 0 {
		step = 15 * time.Second
	}
	return &PrometheusClient{
		api:     v1.NewAPI(c),
		url:     cfg.URL,
		step:    step,
		timeout: cfg.Timeout,
		rules:   PrometheusRules,
		breaker: newBackendBreaker("prometheus"),
		logger:  logger.With(zap.String("backend", "prometheus")),
	}, nil
}

func (c *PrometheusClient) URL() string {
	return c.url
}

// QueryRange - 단일 PromQL range 쿼리
func (c *PrometheusClient) QueryRange(ctx context.Context, query string, window domain.TimeWindow) ([]domain.MetricSeries, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		qctx, cancel := withOptionalTimeout(ctx, c.timeout)
		defer cancel()

		val, warnings, err := c.api.QueryRange(qctx, query, v1.Range{
			Start: window.Start,
			End:   window.End,
			Step:  c.step,
		})
		if err != nil {
			return nil, err
		}
		if len(warnings) > 0 {
			c.logger.Debug("Prometheus query warnings", zap.Strings("warnings", warnings))
		}
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	val, ok := out.(model.Value)
	if !ok || val == nil {
		return nil, nil
	}
	return toMetricSeries(val)
}

// MetricsForAlert - 알림 라벨 기반 쿼리를 모두 실행하고 성공한 결과만 규칙 순서대로 반환
func (c *PrometheusClient) MetricsForAlert(ctx context.Context, labels map[string]string, window domain.TimeWindow) domain.MetricsDataset {
	ctx, span := tracing.ClientSpan(ctx, "prometheus", "query_range")
	defer span.End()

	dataset := domain.MetricsDataset{}
	for _, q := range c.rules.Build(labels) {
		c.logger.Debug("Executing query", zap.String("name", q.Name), zap.String("query", q.Query))

		series, err := c.QueryRange(ctx, q.Query, window)
		if err != nil {
			metrics.BackendQueriesTotal.WithLabelValues("prometheus", metrics.ResultError).Inc()
			c.logger.Warn("Prometheus query failed, skipping",
				zap.String("name", q.Name),
				zap.Error(err),
			)
			continue
		}
		metrics.BackendQueriesTotal.WithLabelValues("prometheus", metrics.ResultSuccess).Inc()
		if len(series) == 0 {
			continue
		}
		dataset = append(dataset, domain.MetricResult{Name: q.Name, Query: q.Query, Series: series})
	}
	return dataset
}

// Ping - buildinfo 조회로 도달 가능 여부 확인
func (c *PrometheusClient) Ping(ctx context.Context) error {
	ctx, cancel := withOptionalTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := c.api.Buildinfo(ctx)
	return err
}

func toMetricSeries(val model.Value) ([]domain.MetricSeries, error) {
	switch v := val.(type) {
	case model.Matrix:
		out := make([]domain.MetricSeries, 0, len(v))
		for _, stream := range v {
			points := make([]domain.MetricPoint, 0, len(stream.Values))
			for _, sp := range stream.Values {
				points = append(points, domain.MetricPoint{
					Timestamp: sp.Timestamp.Time().UTC(),
					Value:     float64(sp.Value),
				})
			}
			out = append(out, domain.MetricSeries{
				Labels: metricLabels(stream.Metric),
				Points: points,
			})
		}
		return out, nil
	case model.Vector:
		out := make([]domain.MetricSeries, 0, len(v))
		for _, s := range v {
			out = append(out, domain.MetricSeries{
				Labels: metricLabels(s.Metric),
				Points: []domain.MetricPoint{{Timestamp: s.Timestamp.Time().UTC(), Value: float64(s.Value)}},
			})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected result type %s", val.Type())
	}
}

func metricLabels(m model.Metric) map[string]string {
	labels := make(map[string]string, len(m))
	for k, v := range m {
		labels[string(k)] = string(v)
	}
	return labels
}

// newBackendBreaker - 조회 백엔드 공용 circuit breaker 설정
func newBackendBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
