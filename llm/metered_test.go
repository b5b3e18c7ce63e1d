package llm_test

import (
	"context"
	"log/slog"
	"testing"

	"help-desk/domain"
	"help-desk/errors"
	"help-desk/llm"
	"help-desk/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMetered_TracksSuccessfulCalls(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	catalog := llm.MustDefaultCatalog()
	haiku, _ := catalog.Resolve(llm.ModelHaiku3)

	next := mocks.NewMockCompleter(ctrl)
	tracker := mocks.NewMockUsageTracker(ctrl)
	request := llm.CompletionRequest{Task: domain.TaskSpecialist, Model: llm.ModelHaiku3, UserMessage: "hi"}

	// Given a provider answering with token counts
	next.EXPECT().Complete(gomock.Any(), request).
		Return(llm.Completion{Content: "hello", Model: llm.ModelHaiku3, PromptTokens: 120, CompletionTokens: 30}, nil).
		Times(1)
	tracker.EXPECT().Track(haiku, 120, 30).Return(domain.Usage{Cost: 0.42, Calls: 1}).Times(1)

	// When the metered completer is called
	resp, err := llm.NewMetered(log, next, catalog, tracker, nil).Complete(context.Background(), request)

	// Then the usage is tracked and the cost reported
	req.NoError(err)
	req.Equal("hello", resp.Content)
	req.Equal(0.42, resp.Cost)
}

func TestMetered_UnknownModelIsPricedAsRequested(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	catalog := llm.MustDefaultCatalog()
	sonnet, _ := catalog.Resolve(llm.ModelSonnet45)

	next := mocks.NewMockCompleter(ctrl)
	tracker := mocks.NewMockUsageTracker(ctrl)
	request := llm.CompletionRequest{Task: domain.TaskSynthesis, Model: llm.ModelSonnet45}

	next.EXPECT().Complete(gomock.Any(), request).
		Return(llm.Completion{Content: "ok", Model: "claude-sonnet-4-5-20250929", PromptTokens: 10, CompletionTokens: 10}, nil)
	tracker.EXPECT().Track(sonnet, 10, 10).Return(domain.Usage{Cost: 1, Calls: 1})

	_, err := llm.NewMetered(log, next, catalog, tracker, nil).Complete(context.Background(), request)
	req.NoError(err)
}

func TestMetered_FailedCallsAreNotTracked(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	next := mocks.NewMockCompleter(ctrl)
	tracker := mocks.NewMockUsageTracker(ctrl)

	// Given a rate limited provider
	next.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(llm.Completion{}, errors.ErrProviderRateLimited).Times(1)
	tracker.EXPECT().Track(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// When the metered completer is called
	_, err := llm.NewMetered(log, next, llm.MustDefaultCatalog(), tracker, nil).
		Complete(context.Background(), llm.CompletionRequest{Task: domain.TaskGuardrail, Model: llm.ModelHaiku3})

	// Then the error is returned untouched
	req.ErrorIs(err, errors.ErrProviderRateLimited)
}
