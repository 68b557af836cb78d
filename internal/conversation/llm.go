package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TokenUsage mirrors the provider's token accounting for one call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// LLMClient produces one completion for a system prompt and a single
// user turn. Implementations must bound the call with a timeout.
type LLMClient interface {
	Complete(ctx context.Context, system, user string) (string, TokenUsage, error)
}

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient is the production LLMClient.
type OpenAIClient struct {
	client    chatClient
	model     string
	maxTokens int
	timeout   time.Duration
	tracer    trace.Tracer
}

// NewOpenAIClient wires a client for the given model. maxTokens keeps
// replies SMS-sized; timeout bounds each completion call.
func NewOpenAIClient(apiKey, model string, maxTokens int, timeout time.Duration) *OpenAIClient {
	if apiKey == "" {
		panic("conversation: openai api key cannot be empty")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
		tracer:    otel.Tracer("concierge.internal.conversation.llm"),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, TokenUsage, error) {
	ctx, span := c.tracer.Start(ctx, "conversation.openai")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		span.RecordError(err)
		return "", TokenUsage{}, fmt.Errorf("conversation: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		err := errors.New("conversation: openai returned no choices")
		span.RecordError(err)
		return "", TokenUsage{}, err
	}

	usage := TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Int("concierge.llm.prompt_tokens", usage.PromptTokens),
			attribute.Int("concierge.llm.completion_tokens", usage.CompletionTokens),
		)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), usage, nil
}
