// Package llm is the completion port of the help-desk: the call shape, the model catalog,
// the selector and the provider adapters.
package llm

import (
	"context"

	"help-desk/domain"
)

// CompletionRequest is the single call shape used by every stage.
type CompletionRequest struct {
	Task         domain.TaskType
	Model        string
	SystemPrompt string
	UserMessage  string
	Temperature  float64
	MaxTokens    int
}

// Completion carries the generated text and the provider-reported token usage.
type Completion struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	// Cost is filled by the metered decorator, in credits.
	Cost float64
}

//go:generate go run go.uber.org/mock/mockgen -source=completer.go -destination=../mocks/mock_completer.go -package=mocks
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// UsageTracker turns token counts into credits and accumulates them.
type UsageTracker interface {
	Track(model ModelDescriptor, promptTokens, completionTokens int) domain.Usage
}
