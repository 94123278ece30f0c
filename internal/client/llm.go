// LLM 호출 및 재시도 로직
//
// 처리 흐름:
//   1. 알림 + 메트릭 + 로그로 프롬프트 생성 (prompt.go)
//   2. Completer 호출 (OpenAI 호환 API 또는 Gemini)
//   3. 일시적 오류(timeout, 5xx, 429)는 지수 백오프로 재시도, 최대 시도 횟수 제한
//   4. 응답을 JSON으로 파싱 (parse.go)
//
// 전체 소요 시간은 MaxElapsed로 제한 (큐 워커가 무한정 묶이지 않도록)

package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kube-rca/aiops-processor/internal/config"
	"github.com/kube-rca/aiops-processor/internal/metrics"
	"github.com/kube-rca/aiops-processor/internal/model"
)

// ErrLLMNotConfigured - API Key가 없어 LLM 호출이 비활성화된 경우
var ErrLLMNotConfigured = errors.New("llm api key not configured")

var errEmptyCompletion = errors.New("empty completion")

type LLMErrorKind string

const (
	// 재시도 예산 소진
	LLMErrorTransient LLMErrorKind = "transient"
	// 인증 실패, 4xx 등 재시도해도 의미 없는 오류
	LLMErrorPermanent LLMErrorKind = "permanent"
	// 응답은 받았지만 JSON 파싱 실패
	LLMErrorParse LLMErrorKind = "parse"
)

type LLMError struct {
	Kind       LLMErrorKind
	Attempts   int
	StatusCode int
	Err        error
}

func (e *LLMError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm %s error after %d attempt(s) (status %d): %v", e.Kind, e.Attempts, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm %s error after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// StatusError - provider HTTP 응답 코드 오류
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Completer - 단일 프롬프트 completion provider
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Model() string
	Ping(ctx context.Context) error
}

// NewCompleter - provider 설정에 맞는 Completer 생성, API Key가 없으면 nil
func NewCompleter(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Completer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	switch cfg.Provider {
	case config.LLMProviderGemini:
		return NewGeminiCompleter(ctx, cfg)
	default:
		return NewOpenAICompleter(cfg, logger), nil
	}
}

type LLMClient struct {
	completer    Completer
	prompt       PromptBuilder
	maxAttempts  int
	retryInitial time.Duration
	retryMax     time.Duration
	maxElapsed   time.Duration
	callTimeout  time.Duration
	limiter      *rate.Limiter
	logger       *zap.Logger
}

// LLMClient 객체 생성 (completer가 nil이면 비활성화 상태)
func NewLLMClient(cfg config.LLMConfig, analysis config.AnalysisConfig, completer Completer, logger *zap.Logger) *LLMClient {
	var limiter *rate.Limiter
	if cfg.RateLimitPerMin > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RateLimitPerMin)/60.0), 1)
	}
	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	return &LLMClient{
		completer: completer,
		prompt: PromptBuilder{
			MaxLogLines:     analysis.MaxLogLines,
			MaxMetricPoints: analysis.MaxMetricsPoints,
			MaxChars:        cfg.MaxPromptChars,
		},
		maxAttempts:  attempts,
		retryInitial: cfg.RetryInitial,
		retryMax:     cfg.RetryMax,
		maxElapsed:   cfg.MaxElapsed,
		callTimeout:  cfg.Timeout,
		limiter:      limiter,
		logger:       logger.With(zap.String("stage", "llm")),
	}
}

func (c *LLMClient) Enabled() bool {
	return c != nil && c.completer != nil
}

func (c *LLMClient) Model() string {
	if !c.Enabled() {
		return ""
	}
	return c.completer.Model()
}

func (c *LLMClient) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return ErrLLMNotConfigured
	}
	return c.completer.Ping(ctx)
}

// Analyze - 프롬프트 생성, 재시도 포함 호출, 응답 파싱
func (c *LLMClient) Analyze(ctx context.Context, alert model.Alert, metricsData model.MetricsDataset, logsData model.LogsDataset) (*model.LLMAnalysis, error) {
	if !c.Enabled() {
		return nil, ErrLLMNotConfigured
	}

	prompt := c.prompt.Build(alert, metricsData, logsData)
	raw, attempts, err := c.completeWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	analysis, err := ParseAnalysis(raw)
	if err != nil {
		metrics.LLMAttemptsTotal.WithLabelValues(string(LLMErrorParse)).Inc()
		c.logger.Debug("Unparseable LLM response", zap.String("response", truncate(raw, 500)))
		return nil, &LLMError{Kind: LLMErrorParse, Attempts: attempts, Err: err}
	}
	return analysis, nil
}

// completeWithRetry - 명시적 시도 횟수와 지수 백오프를 사용하는 재시도 루프
func (c *LLMClient) completeWithRetry(ctx context.Context, prompt string) (string, int, error) {
	if c.maxElapsed > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.maxElapsed)
		defer cancel()
	}

	attempt := 0
	backoff := c.retryInitial
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		attempt++

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", attempt, &LLMError{Kind: LLMErrorTransient, Attempts: attempt, Err: err}
			}
		}

		raw, err := c.completeOnce(ctx, prompt)
		if err == nil {
			metrics.LLMAttemptsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
			if attempt > 1 {
				c.logger.Info("LLM call recovered after retries", zap.Int("attempt", attempt))
			}
			return raw, attempt, nil
		}

		kind, status := classifyLLMError(err)
		metrics.LLMAttemptsTotal.WithLabelValues(string(kind)).Inc()
		c.logger.Warn("LLM call attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)

		if kind != LLMErrorTransient {
			return "", attempt, &LLMError{Kind: kind, Attempts: attempt, StatusCode: status, Err: err}
		}
		if attempt >= c.maxAttempts {
			return "", attempt, &LLMError{Kind: LLMErrorTransient, Attempts: attempt, StatusCode: status, Err: err}
		}

		if timer == nil {
			timer = time.NewTimer(backoff)
		} else {
			timer.Reset(backoff)
		}
		select {
		case <-ctx.Done():
			return "", attempt, &LLMError{Kind: LLMErrorTransient, Attempts: attempt, StatusCode: status, Err: ctx.Err()}
		case <-timer.C:
		}

		backoff *= 2
		if c.retryMax > 0 && backoff > c.retryMax {
			backoff = c.retryMax
		}
	}
}

func (c *LLMClient) completeOnce(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withOptionalTimeout(ctx, c.callTimeout)
	defer cancel()

	raw, err := c.completer.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", errEmptyCompletion
	}
	return raw, nil
}

// classifyLLMError - 재시도 여부 판단
//   - timeout, 네트워크 오류, 5xx, 429: transient
//   - 빈 응답: parse
//   - 그 외 HTTP 오류: permanent
func classifyLLMError(err error) (LLMErrorKind, int) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code == 429 || statusErr.Code >= 500 {
			return LLMErrorTransient, statusErr.Code
		}
		return LLMErrorPermanent, statusErr.Code
	}
	if errors.Is(err, errEmptyCompletion) {
		return LLMErrorParse, 0
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return LLMErrorTransient, 0
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return LLMErrorTransient, 0
	}
	if errors.Is(err, context.Canceled) {
		return LLMErrorPermanent, 0
	}
	return LLMErrorTransient, 0
}
