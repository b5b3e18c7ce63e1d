// Package guardrail validates a candidate answer with five independent checks and folds the verdicts
// into a single decision.
package guardrail

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"help-desk/domain"
	"help-desk/llm"
	"help-desk/observability"
	"help-desk/scoring"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout = 5 * time.Second

	// blockAbove is the verdict confidence above which a failed safety or tone check acts.
	blockAbove = 0.7
)

// SafetyWrapper replaces an answer blocked by the safety check.
const SafetyWrapper = "I can't share this answer because it may conflict with statutory safeguarding or safety duties. " +
	"Please speak to your designated safeguarding lead or health and safety lead before acting."

const (
	toneWarning       = "The wording of this answer was adjusted for tone."
	lowConfidenceNote = "Confidence in this answer is low. Check it with a colleague before acting on it."
	reviewWarning     = "Automated %s review was unavailable. A person should review this answer."
)

// Input is the candidate answer and what the checks need to know about the caller.
type Input struct {
	Question    string
	Text        string
	Role        domain.Role
	Domain      domain.Domain
	Attribution string
	// Model is used by the reviewer calls.
	Model string
	// LocalOnly runs the pattern and phrase checks without reviewer calls, and never adds the
	// attribution. It is meant for fallback text that carries no domain content.
	LocalOnly bool
}

// Decision is the aggregated outcome.
type Decision struct {
	Text             string
	Blocked          bool
	RequiresHuman    bool
	Warnings         []string
	Confidence       domain.ConfidenceLevel
	Verdicts         []domain.GuardrailVerdict
	AttributionAdded bool
}

type Pipeline struct {
	log       *slog.Logger
	completer llm.Completer
	rules     *Rules
	policy    FailurePolicy
	timeout   time.Duration
	metrics   *observability.Metrics
}

func NewPipeline(log *slog.Logger, completer llm.Completer, rules *Rules, policy FailurePolicy, timeout time.Duration, metrics *observability.Metrics) *Pipeline {
	if !policy.Valid() {
		policy = FailOpen
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Pipeline{
		log:       log,
		completer: completer,
		rules:     rules,
		policy:    policy,
		timeout:   timeout,
		metrics:   metrics,
	}
}

// Validate runs the five checks concurrently, joins them, then aggregates.
func (p *Pipeline) Validate(ctx context.Context, in Input) Decision {
	verdicts := make([]domain.GuardrailVerdict, 5)

	var g errgroup.Group
	g.Go(func() error {
		verdicts[0] = p.patternCheck(ctx, CheckSafety, p.rules.safety, safetyReviewer, in)
		return nil
	})
	g.Go(func() error {
		verdicts[1] = p.complianceCheck(in)
		return nil
	})
	g.Go(func() error {
		verdicts[2] = p.patternCheck(ctx, CheckTone, p.rules.tone, toneReviewer, in)
		return nil
	})
	g.Go(func() error {
		verdicts[3] = p.permissionCheck(in)
		return nil
	})
	g.Go(func() error {
		verdicts[4] = confidenceCheck(in)
		return nil
	})
	_ = g.Wait()

	for _, v := range verdicts {
		p.metrics.ObserveVerdict(v.Check, result(v))
	}
	return p.aggregate(in, verdicts)
}

func result(v domain.GuardrailVerdict) string {
	switch {
	case v.Degraded:
		return "degraded"
	case v.Passed:
		return "pass"
	default:
		return "fail"
	}
}

// aggregate applies, in order: safety block, tone adjustment, permission block, then acceptance
// with advisories and a default attribution when nothing is cited.
func (p *Pipeline) aggregate(in Input, verdicts []domain.GuardrailVerdict) Decision {
	safety, compliance, tone, permission, confidence := verdicts[0], verdicts[1], verdicts[2], verdicts[3], verdicts[4]
	d := Decision{Text: in.Text, Verdicts: verdicts, Confidence: domain.ConfidenceLevel(confidence.Reason)}

	if !safety.Passed && !safety.Degraded && safety.Confidence > blockAbove {
		p.log.Warn("Answer blocked by safety check", "domain", in.Domain, "reason", safety.Reason)
		return Decision{
			Text:          SafetyWrapper,
			Blocked:       true,
			RequiresHuman: true,
			Warnings:      []string{"Blocked by safety review: " + safety.Reason},
			Confidence:    domain.ConfidenceLow,
			Verdicts:      verdicts,
		}
	}

	if !tone.Passed && !tone.Degraded && tone.Confidence > blockAbove {
		if softened, ok := p.soften(d.Text); ok {
			p.log.Warn("Answer adjusted for tone", "domain", in.Domain, "reason", tone.Reason)
			d.Text = softened
			d.Warnings = append(d.Warnings, toneWarning)
		} else {
			p.log.Warn("Tone check failed, nothing to soften", "domain", in.Domain, "reason", tone.Reason)
		}
	}

	if !permission.Passed {
		p.log.Warn("Answer blocked by permission check", "domain", in.Domain, "reason", permission.Reason)
		return Decision{
			Text:       permission.Suggestion,
			Blocked:    true,
			Warnings:   append(d.Warnings, "Blocked by permission check: "+permission.Reason),
			Confidence: domain.ConfidenceLow,
			Verdicts:   verdicts,
		}
	}

	for _, v := range []domain.GuardrailVerdict{safety, tone} {
		if v.Degraded && p.policy == RequireReview {
			d.RequiresHuman = true
			d.Warnings = append(d.Warnings, fmt.Sprintf(reviewWarning, v.Check))
		}
	}
	if compliance.Suggestion != "" {
		d.Warnings = append(d.Warnings, compliance.Suggestion)
	}
	if d.Confidence == domain.ConfidenceLow {
		d.Warnings = append(d.Warnings, lowConfidenceNote)
	}
	if !in.LocalOnly && !scoring.HasSource(d.Text) && in.Attribution != "" {
		d.Text = strings.TrimRight(d.Text, "\n ") + "\n\n" + in.Attribution
		d.AttributionAdded = true
	}
	return d
}

var spaces = regexp.MustCompile(`[ \t]{2,}`)

// soften removes the listed phrases as whole words and closes the gaps they leave.
// It reports false when nothing was removed.
func (p *Pipeline) soften(text string) (string, bool) {
	spans := p.rules.softener.Spans(text)
	if len(spans) == 0 {
		return text, false
	}
	runes := []rune(text)
	var b strings.Builder
	next := 0
	for _, s := range spans {
		if s.Start < next {
			s.Start = next
		}
		if s.End <= s.Start {
			continue
		}
		b.WriteString(string(runes[next:s.Start]))
		next = s.End
	}
	b.WriteString(string(runes[next:]))

	cleaned := spaces.ReplaceAllString(b.String(), " ")
	cleaned = strings.ReplaceAll(cleaned, " ,", ",")
	cleaned = strings.ReplaceAll(cleaned, " .", ".")
	cleaned = strings.TrimLeft(cleaned, " ,")
	if strings.TrimSpace(cleaned) == "" {
		return text, false
	}
	return capitalize(cleaned), true
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - 'a' + 'A'
	}
	return string(r)
}
