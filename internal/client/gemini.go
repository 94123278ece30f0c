package client

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/kube-rca/aiops-processor/internal/config"
)

// GeminiCompleter - LLM_PROVIDER=gemini 일 때 사용하는 genai 기반 Completer
type GeminiCompleter struct {
	client      *genai.Client
	model       string
	temperature float32
	topP        float32
	topK        float32
	maxTokens   int32
}

// GeminiCompleter 객체 생성
func NewGeminiCompleter(ctx context.Context, cfg config.LLMConfig) (*GeminiCompleter, error) {
	if cfg.APIKey == "" {
		return nil, ErrLLMNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiCompleter{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		topP:        float32(cfg.TopP),
		topK:        float32(cfg.TopK),
		maxTokens:   int32(cfg.MaxTokens),
	}, nil
}

func (c *GeminiCompleter) Model() string {
	return c.model
}

func (c *GeminiCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.temperature),
		TopP:             genai.Ptr(c.topP),
		ResponseMIMEType: "application/json",
	}
	if c.topK > 0 {
		genCfg.TopK = genai.Ptr(c.topK)
	}
	if c.maxTokens > 0 {
		genCfg.MaxOutputTokens = c.maxTokens
	}
	if system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", geminiError(err)
	}
	if res == nil {
		return "", errEmptyCompletion
	}
	return res.Text(), nil
}

func (c *GeminiCompleter) Ping(ctx context.Context) error {
	_, err := c.client.Models.Get(ctx, c.model, nil)
	return geminiError(err)
}

// geminiError - genai API 오류를 StatusError로 변환해 재시도 분류에 사용
func geminiError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini: %w", &StatusError{Code: apiErr.Code, Body: apiErr.Message})
	}
	return err
}
