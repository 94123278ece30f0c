// 환경변수 기반 설정 로딩
//
// 모든 설정은 key=value 환경변수로만 주입 (.env 파일은 cmd 레이어에서 godotenv로 선로딩)
// 값이 비어 있거나 파싱할 수 없으면 기본값을 사용하고 Warnings에 기록

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	LLMProviderOpenAI = "openai"
	LLMProviderGemini = "gemini"
)

// LLM_MAX_PROMPT_CHARS 하한 (출력 형식 안내 + 잘림 표시가 들어갈 여유 포함)
// 0 이하는 제한 없음
const MinPromptChars = 2000

// provider별 LLM_MODEL 기본값
var defaultModels = map[string]string{
	LLMProviderOpenAI: "deepseek-r1-distil-qwen-32b_raziqt",
	LLMProviderGemini: "gemini-2.5-flash",
}

type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Prometheus PrometheusConfig
	Loki       LokiConfig
	LLM        LLMConfig
	Analysis   AnalysisConfig
	Notify     NotifyConfig
	Auth       AuthConfig
	Postgres   PostgresConfig
	Tracing    TracingConfig

	// 파싱 실패 등으로 기본값이 적용된 항목
	Warnings []string
}

type ServerConfig struct {
	Host            string
	Port            int
	GinMode         string
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type PrometheusConfig struct {
	URL     string
	Step    time.Duration
	Timeout time.Duration
}

type LokiConfig struct {
	URL     string
	Timeout time.Duration
}

type LLMConfig struct {
	Provider        string
	APIURL          string
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxRetries      int
	RetryInitial    time.Duration
	RetryMax        time.Duration
	MaxElapsed      time.Duration
	Temperature     float64
	TopP            float64
	TopK            int
	MaxTokens       int
	MaxPromptChars  int
	RateLimitPerMin int
}

// Enabled - API Key가 없으면 LLM 호출을 하지 않음
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

type AnalysisConfig struct {
	TimeWindow       time.Duration
	MaxLogLines      int
	MaxMetricsPoints int
}

type NotifyConfig struct {
	SlackWebhookURLs   []string
	GenericWebhookURLs []string
	GenericTemplate    string
	Timeout            time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

// Enabled - 시크릿이 설정된 경우에만 인입 엔드포인트 인증
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

// Enabled - DATABASE_URL 또는 PGUSER/PGDATABASE가 있어야 분석 이력 저장 활성화
func (c PostgresConfig) Enabled() bool {
	return c.DatabaseURL != "" || (c.User != "" && c.Database != "")
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
}

func Load() Config {
	l := &loader{}

	cfg := Config{
		Server: ServerConfig{
			Host:            getenv("API_HOST", "0.0.0.0"),
			Port:            l.int("API_PORT", 8000),
			GinMode:         getenv("GIN_MODE", "release"),
			ShutdownTimeout: l.duration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getenv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getenv("LOG_FORMAT", "json")),
		},
		Prometheus: PrometheusConfig{
			URL:     strings.TrimRight(getenv("PROMETHEUS_URL", "http://prometheus:9090"), "/"),
			Step:    l.duration("PROMETHEUS_STEP", 15*time.Second),
			Timeout: l.duration("PROMETHEUS_TIMEOUT", 30*time.Second),
		},
		Loki: LokiConfig{
			URL:     strings.TrimRight(getenv("LOKI_URL", "http://loki:3100"), "/"),
			Timeout: l.duration("LOKI_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			Provider:        strings.ToLower(getenv("LLM_PROVIDER", LLMProviderOpenAI)),
			APIURL:          getenvAny([]string{"LLM_API_URL", "HUAWEI_API_URL"}, "https://pangu.ap-southeast-1.myhuaweicloud.com/api/v2/chat/completions"),
			APIKey:          getenvAny([]string{"LLM_API_KEY", "HUAWEI_API_KEY"}, ""),
			Model:           getenvAny([]string{"LLM_MODEL", "HUAWEI_MODEL_NAME"}, ""),
			Timeout:         l.duration("LLM_TIMEOUT", 180*time.Second),
			MaxRetries:      l.int("LLM_MAX_RETRIES", 3),
			RetryInitial:    l.duration("LLM_RETRY_INITIAL", 4*time.Second),
			RetryMax:        l.duration("LLM_RETRY_MAX", 10*time.Second),
			MaxElapsed:      l.duration("LLM_MAX_ELAPSED", 10*time.Minute),
			Temperature:     l.float("LLM_TEMPERATURE", 0.3),
			TopP:            l.float("LLM_TOP_P", 0.9),
			TopK:            l.int("LLM_TOP_K", 40),
			MaxTokens:       l.int("LLM_MAX_TOKENS", 2000),
			MaxPromptChars:  l.int("LLM_MAX_PROMPT_CHARS", 24000),
			RateLimitPerMin: l.int("LLM_RATE_LIMIT_PER_MIN", 30),
		},
		Analysis: AnalysisConfig{
			TimeWindow:       time.Duration(l.int("TIME_WINDOW_MINUTES", 15)) * time.Minute,
			MaxLogLines:      l.int("MAX_LOG_LINES", 500),
			MaxMetricsPoints: l.int("MAX_METRICS_POINTS", 100),
		},
		Notify: NotifyConfig{
			SlackWebhookURLs:   getenvList("SLACK_WEBHOOK_URL", "SLACK_WEBHOOK_URLS"),
			GenericWebhookURLs: getenvList("GENERIC_WEBHOOK_URL", "GENERIC_WEBHOOK_URLS"),
			GenericTemplate:    os.Getenv("GENERIC_WEBHOOK_TEMPLATE"),
			Timeout:            l.duration("NOTIFY_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("WEBHOOK_JWT_SECRET"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Tracing: TracingConfig{
			Enabled:     l.bool("TRACING_ENABLED", false),
			ServiceName: getenv("OTEL_SERVICE_NAME", "aiops-processor"),
		},
	}

	if cfg.LLM.Provider != LLMProviderOpenAI && cfg.LLM.Provider != LLMProviderGemini {
		l.warn("LLM_PROVIDER", cfg.LLM.Provider, LLMProviderOpenAI)
		cfg.LLM.Provider = LLMProviderOpenAI
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModels[cfg.LLM.Provider]
	}
	if cfg.LLM.MaxRetries < 1 {
		l.warn("LLM_MAX_RETRIES", strconv.Itoa(cfg.LLM.MaxRetries), "1")
		cfg.LLM.MaxRetries = 1
	}
	if cfg.LLM.MaxPromptChars > 0 && cfg.LLM.MaxPromptChars < MinPromptChars {
		l.warn("LLM_MAX_PROMPT_CHARS", strconv.Itoa(cfg.LLM.MaxPromptChars), strconv.Itoa(MinPromptChars))
		cfg.LLM.MaxPromptChars = MinPromptChars
	}
	if cfg.Analysis.TimeWindow <= 0 {
		l.warn("TIME_WINDOW_MINUTES", cfg.Analysis.TimeWindow.String(), "15")
		cfg.Analysis.TimeWindow = 15 * time.Minute
	}

	cfg.Warnings = l.warnings
	return cfg
}

// Addr - gin 서버 listen 주소
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type loader struct {
	warnings []string
}

func (l *loader) warn(key, value, fallback string) {
	l.warnings = append(l.warnings, fmt.Sprintf("invalid %s=%q, using %s", key, value, fallback))
}

func (l *loader) int(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		l.warn(key, val, strconv.Itoa(fallback))
		return fallback
	}
	return n
}

func (l *loader) float(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		l.warn(key, val, strconv.FormatFloat(fallback, 'f', -1, 64))
		return fallback
	}
	return f
}

func (l *loader) bool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		l.warn(key, val, strconv.FormatBool(fallback))
		return fallback
	}
	return b
}

// duration - "30s" 같은 Go duration 또는 정수(초) 모두 허용
func (l *loader) duration(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		l.warn(key, val, fallback.String())
		return fallback
	}
	return d
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvAny(keys []string, fallback string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return fallback
}

// getenvList - 단일 키와 콤마 구분 목록 키를 합쳐 중복 없이 반환
func getenvList(keys ...string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, key := range keys {
		for _, part := range strings.Split(os.Getenv(key), ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}
