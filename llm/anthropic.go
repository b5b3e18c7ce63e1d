package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"help-desk/errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicCompleter calls the Messages API. Retries are disabled: a failed call becomes a local fallback.
type AnthropicCompleter struct {
	client  anthropic.Client
	timeout time.Duration
}

func NewAnthropicCompleter(apiKey string, timeout time.Duration) *AnthropicCompleter {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &AnthropicCompleter{
		client:  anthropic.NewClient(opts...),
		timeout: timeout,
	}
}

func (a *AnthropicCompleter) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserMessage)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Completion{}, classify(err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return Completion{}, errors.ErrEmptyCompletion
	}
	return Completion{
		Content:          content,
		Model:            string(msg.Model),
		PromptTokens:     int(msg.Usage.InputTokens),
		CompletionTokens: int(msg.Usage.OutputTokens),
	}, nil
}

// classify maps SDK errors onto the provider sentinels.
func classify(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", errors.ErrProviderTimeout, err)
	}
	var apiErr *anthropic.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", errors.ErrProviderAuth, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", errors.ErrProviderRateLimited, err)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%w: %v", errors.ErrProviderTimeout, err)
		}
	}
	return fmt.Errorf("%w: %v", errors.ErrProviderUnavailable, err)
}
