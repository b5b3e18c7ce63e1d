// Package perspective expands a decision answer with three one-sided lenses and merges them back.
package perspective

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"help-desk/domain"
	"help-desk/errors"
	"help-desk/llm"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout = 8 * time.Second

	lensMaxTokens      = 200
	lensTemperature    = 0.7
	synthesisMaxTokens = 1200
	synthesisTemp      = 0.4
)

type Lens string

const (
	Optimist Lens = "optimist"
	Critic   Lens = "critic"
	Neutral  Lens = "neutral"
)

var lenses = []Lens{Optimist, Critic, Neutral}

var instructions = map[Lens]string{
	Optimist: "You are the optimist on a school leadership team. In 2-3 sentences, name the concrete benefits or opportunities in this specific situation. Be specific to the question and do not restate generic positivity.",
	Critic:   "You are the critic on a school leadership team. In 2-3 sentences, name the concrete risks, costs or failure points in this specific situation. Be specific to the question and do not restate generic negativity.",
	Neutral:  "You are the neutral analyst on a school leadership team. In 2-3 sentences, name the facts, constraints and evidence this decision depends on. Be specific to the question and do not take a side.",
}

// fallbacks stand in for a lens whose call failed.
var fallbacks = map[Lens]string{
	Optimist: "Consider what would improve for pupils and staff if this goes well, and how quickly the benefit would show.",
	Critic:   "Consider what it would cost, who carries the extra workload, and what happens if it has to be reversed.",
	Neutral:  "Check the statutory requirements, the budget position and the views of the staff affected before deciding.",
}

const synthesisPrompt = "You combine a specialist answer with three perspectives into one coherent answer for a school leader. " +
	"Keep the specialist's facts and thresholds, weigh the perspectives honestly, stay concise, and end with one clear next action."

// Request carries the specialist answer to expand.
type Request struct {
	Question         string
	Answer           string
	PerspectiveModel string
	SynthesisModel   string
}

// Result is additive: Text is never empty when Request.Answer is not.
type Result struct {
	Set               domain.PerspectiveSet
	Text              string
	FallbackLenses    []Lens
	SynthesisFallback bool
}

type Synthesizer struct {
	log       *slog.Logger
	completer llm.Completer
	timeout   time.Duration
}

func NewSynthesizer(log *slog.Logger, completer llm.Completer, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Synthesizer{log: log, completer: completer, timeout: timeout}
}

// Synthesize runs the three lenses concurrently, waits for all of them, then merges.
// Every branch has its own deadline and its own fallback.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) Result {
	views := make([]string, len(lenses))
	failed := make([]bool, len(lenses))

	var g errgroup.Group
	for i, lens := range lenses {
		g.Go(func() error {
			text, err := s.lens(ctx, lens, req)
			if err != nil {
				s.log.Warn("Perspective failed, using fallback", "lens", lens, "error", err)
				text, failed[i] = fallbacks[lens], true
			}
			views[i] = text
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Set: domain.PerspectiveSet{Optimist: views[0], Critic: views[1], Neutral: views[2]}}
	for i, f := range failed {
		if f {
			res.FallbackLenses = append(res.FallbackLenses, lenses[i])
		}
	}

	merged, err := s.merge(ctx, req, res.Set)
	if err != nil {
		s.log.Warn("Synthesis failed, listing perspectives", "error", err)
		merged, res.SynthesisFallback = FallbackText(req.Answer, res.Set), true
	}
	res.Set.Synthesized = merged
	res.Text = merged
	return res
}

func (s *Synthesizer) lens(ctx context.Context, lens Lens, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.completer.Complete(ctx, llm.CompletionRequest{
		Task:         domain.TaskPerspective,
		Model:        req.PerspectiveModel,
		SystemPrompt: instructions[lens],
		UserMessage:  fmt.Sprintf("Question: %s\n\nProposed answer:\n%s", req.Question, req.Answer),
		Temperature:  lensTemperature,
		MaxTokens:    lensMaxTokens,
	})
	if err != nil {
		return "", err
	}
	if text := strings.TrimSpace(resp.Content); text != "" {
		return text, nil
	}
	return "", errors.ErrEmptyCompletion
}

func (s *Synthesizer) merge(ctx context.Context, req Request, set domain.PerspectiveSet) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.completer.Complete(ctx, llm.CompletionRequest{
		Task:         domain.TaskSynthesis,
		Model:        req.SynthesisModel,
		SystemPrompt: synthesisPrompt,
		UserMessage: fmt.Sprintf("Question: %s\n\nSpecialist answer:\n%s\n\nOptimist:\n%s\n\nCritic:\n%s\n\nNeutral:\n%s",
			req.Question, req.Answer, set.Optimist, set.Critic, set.Neutral),
		Temperature: synthesisTemp,
		MaxTokens:   synthesisMaxTokens,
	})
	if err != nil {
		return "", err
	}
	if text := strings.TrimSpace(resp.Content); text != "" {
		return text, nil
	}
	return "", errors.ErrEmptyCompletion
}

// FallbackText lists the specialist answer followed by the three labeled perspectives.
func FallbackText(answer string, set domain.PerspectiveSet) string {
	return fmt.Sprintf("%s\n\nOther perspectives to weigh:\n- Optimist: %s\n- Critic: %s\n- Neutral: %s",
		answer, set.Optimist, set.Critic, set.Neutral)
}
