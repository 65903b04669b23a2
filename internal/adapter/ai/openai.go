package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient produces chat completions for document generation and
// template suggestions. Calls run with the platform key unless the user
// supplied their own.
type OpenAIClient struct {
	platformKey string
	model       string
	timeout     time.Duration
	log         *zap.Logger
}

// NewOpenAIClient creates an OpenAIClient.
func NewOpenAIClient(platformKey, model string, timeout time.Duration, log *zap.Logger) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{platformKey: platformKey, model: model, timeout: timeout, log: log}
}

// Complete runs one chat completion. keyOverride, when non-empty,
// replaces the platform API key for this call.
func (c *OpenAIClient) Complete(ctx context.Context, keyOverride, system, prompt string, maxTokens int) (string, error) {
	apiKey := c.platformKey
	if keyOverride != "" {
		apiKey = keyOverride
	}
	if apiKey == "" {
		return "", errors.New("no openai api key configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client := openai.NewClient(apiKey)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		c.log.Error("chat completion failed", zap.String("model", c.model), zap.Error(err))
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
