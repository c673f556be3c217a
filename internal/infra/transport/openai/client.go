package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
	"github.com/bryanwahyu/riskscope/internal/infra/ai/prompt"
)

const (
	maxTokens    = 1000
	defaultModel = "gpt-4o-mini"
)

var fence = regexp.MustCompile("(?s)^```(?:json)?\\s*|\\s*```$")

// Client talks to an OpenAI-compatible chat completion API (OpenAI, OpenRouter)
// and turns the model's answer into a risk service payload.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func (c *Client) Send(ctx context.Context, text string) (domain.Payload, error) {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(text)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, transportError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &domain.TransportError{Kind: domain.TransportMalformed, Message: "empty response from AI API"}
	}
	return ParseContent(resp.Choices[0].Message.Content), nil
}

// ParseContent turns model output into a payload. Text that is not a JSON
// object becomes a narrative-only payload.
func ParseContent(content string) domain.Payload {
	content = strings.TrimSpace(fence.ReplaceAllString(strings.TrimSpace(content), ""))
	var p domain.Payload
	if err := json.Unmarshal([]byte(content), &p); err == nil && p != nil {
		return p
	}
	return domain.Payload{"response": content}
}

func transportError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		te := &domain.TransportError{Kind: domain.TransportStatus, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			te.Err = fmt.Errorf("%w: %v", domain.ErrQuotaExceeded, err)
		}
		return te
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &domain.TransportError{
			Kind:       domain.TransportStatus,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    fmt.Sprintf("http error status: %d", reqErr.HTTPStatusCode),
			Err:        err,
		}
	}
	return &domain.TransportError{Kind: domain.TransportUnreachable, Message: "cannot connect to AI API", Err: fmt.Errorf("failed to create chat completion: %w", err)}
}
