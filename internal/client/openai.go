// OpenAI 호환 chat completions 클라이언트 (Huawei Cloud ModelArts, vLLM, OpenAI 등)
//
// 인증: Authorization: Bearer <LLM_API_KEY>

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/config"
)

type OpenAICompleter struct {
	apiURL      string
	apiKey      string
	model       string
	temperature float64
	topP        float64
	topK        int
	maxTokens   int
	httpClient  *http.Client
	logger      *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
	TopK        int           `json:"top_k,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// OpenAICompleter 객체 생성
// 호출 타임아웃은 LLMClient가 context로 적용
func NewOpenAICompleter(cfg config.LLMConfig, logger *zap.Logger) *OpenAICompleter {
	return &OpenAICompleter{
		apiURL:      cfg.APIURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		topK:        cfg.TopK,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

func (c *OpenAICompleter) Model() string {
	return c.model
}

func (c *OpenAICompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		TopK:        c.topK,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call llm api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 300)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: invalid response body: %v", errEmptyCompletion, err)
	}
	if len(parsed.Choices) == 0 {
		return "", errEmptyCompletion
	}
	if parsed.Usage != nil {
		c.logger.Debug("LLM token usage",
			zap.Int("prompt_tokens", parsed.Usage.PromptTokens),
			zap.Int("completion_tokens", parsed.Usage.CompletionTokens),
			zap.Int("total_tokens", parsed.Usage.TotalTokens),
		)
	}
	return parsed.Choices[0].Message.Content, nil
}

// Ping - 최소 요청으로 인증/도달 가능 여부 확인 (HTTP 응답이 오면 reachable)
func (c *OpenAICompleter) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, c.apiURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 500 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}
