package guardrail

import (
	"context"
	"fmt"
	"strings"

	"help-desk/domain"
	"help-desk/errors"
	"help-desk/llm"
	"help-desk/scoring"

	"github.com/samber/lo"
)

const (
	CheckSafety     = "safety"
	CheckCompliance = "compliance"
	CheckTone       = "tone"
	CheckPermission = "permission"
	CheckConfidence = "confidence"
)

const (
	patternFailConfidence    = 0.9
	reviewerPassConfidence   = 0.9
	reviewerFailConfidence   = 0.8
	failOpenConfidence       = 0.7
	requireReviewConfidence  = 0.5
	permissionFailConfidence = 0.95
	localPassConfidence      = 1.0

	reviewerMaxTokens   = 60
	reviewerTemperature = 0.0
)

const citationSuggestion = "Add a source so the reader can check the guidance."

const safetyReviewer = "You review answers sent to school staff in England. " +
	"Reply FAIL: <reason> if the answer encourages bypassing a statutory check, endangers pupils or staff, " +
	"or gives unsafe instructions. Otherwise reply PASS. Reply with nothing else."

const toneReviewer = "You review the tone of answers sent to school staff. " +
	"Reply FAIL: <reason> if the answer is dismissive, condescending or rude. Otherwise reply PASS. Reply with nothing else."

// FailurePolicy decides a verdict when the verifying call itself fails.
type FailurePolicy string

const (
	// FailOpen treats the check as passed at reduced confidence.
	FailOpen FailurePolicy = "fail_open"
	// RequireReview lets the answer through but asks for a human review.
	RequireReview FailurePolicy = "require_review"
)

func (p FailurePolicy) Valid() bool {
	return p == FailOpen || p == RequireReview
}

// patternCheck fails on the first blocking rule, otherwise asks the reviewer model unless the
// input is local only.
func (p *Pipeline) patternCheck(ctx context.Context, check string, rules []compiledRule, reviewer string, in Input) domain.GuardrailVerdict {
	if rule, ok := firstMatch(rules, in.Text); ok && rule.Severity == SeverityBlock {
		return domain.GuardrailVerdict{
			Check:      check,
			Passed:     false,
			Confidence: patternFailConfidence,
			Reason:     rule.Message,
			Suggestion: rule.Suggestion,
		}
	}
	if in.LocalOnly {
		return domain.GuardrailVerdict{Check: check, Passed: true, Confidence: localPassConfidence}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	resp, err := p.completer.Complete(ctx, llm.CompletionRequest{
		Task:         domain.TaskGuardrail,
		Model:        in.Model,
		SystemPrompt: reviewer,
		UserMessage:  fmt.Sprintf("Question: %s\n\nAnswer:\n%s", in.Question, in.Text),
		Temperature:  reviewerTemperature,
		MaxTokens:    reviewerMaxTokens,
	})
	if err == nil {
		if passed, reason, ok := ParseReview(resp.Content); ok {
			if passed {
				return domain.GuardrailVerdict{Check: check, Passed: true, Confidence: reviewerPassConfidence}
			}
			return domain.GuardrailVerdict{Check: check, Passed: false, Confidence: reviewerFailConfidence, Reason: reason}
		}
		err = fmt.Errorf("%w: unparseable review %q", errors.ErrEmptyCompletion, resp.Content)
	}
	return p.onFailure(check, err)
}

// onFailure applies the failure policy to a check whose reviewer call failed.
func (p *Pipeline) onFailure(check string, err error) domain.GuardrailVerdict {
	p.log.Warn("Guardrail reviewer unavailable", "check", check, "policy", p.policy, "error", err)
	if p.policy == RequireReview {
		return domain.GuardrailVerdict{
			Check:      check,
			Passed:     false,
			Confidence: requireReviewConfidence,
			Reason:     fmt.Sprintf("automated %s review unavailable", check),
			Degraded:   true,
		}
	}
	return domain.GuardrailVerdict{
		Check:      check,
		Passed:     true,
		Confidence: failOpenConfidence,
		Reason:     fmt.Sprintf("automated %s review unavailable, passed by policy", check),
		Degraded:   true,
	}
}

// ParseReview reads the PASS / FAIL: reason protocol. ok is false for anything else.
func ParseReview(content string) (passed bool, reason string, ok bool) {
	s := strings.TrimSpace(content)
	upper := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(upper, "PASS"):
		return true, "", true
	case strings.HasPrefix(upper, "FAIL"):
		return false, strings.TrimSpace(strings.TrimLeft(s[len("FAIL"):], ":-– ")), true
	default:
		return false, "", false
	}
}

// complianceCheck never blocks. Uncertain wording and missing citations become suggestions.
func (p *Pipeline) complianceCheck(in Input) domain.GuardrailVerdict {
	v := domain.GuardrailVerdict{Check: CheckCompliance, Passed: true, Confidence: localPassConfidence}
	var reasons, suggestions []string
	for _, rule := range allMatches(p.rules.compliance, in.Text) {
		reasons = append(reasons, rule.Message)
		suggestions = append(suggestions, rule.Suggestion)
	}
	if !in.LocalOnly && !scoring.HasSource(in.Text) {
		reasons = append(reasons, "no source cited")
		suggestions = append(suggestions, citationSuggestion)
	}
	v.Reason = strings.Join(lo.Uniq(reasons), "; ")
	v.Suggestion = strings.Join(lo.Uniq(lo.Compact(suggestions)), " ")
	return v
}

// permissionCheck blocks phrases the caller's role must not receive.
func (p *Pipeline) permissionCheck(in Input) domain.GuardrailVerdict {
	for _, rule := range p.rules.permission {
		if !lo.Contains(rule.Roles, in.Role) {
			continue
		}
		if found := rule.matcher.Find(in.Text); len(found) > 0 {
			return domain.GuardrailVerdict{
				Check:      CheckPermission,
				Passed:     false,
				Confidence: permissionFailConfidence,
				Reason:     fmt.Sprintf("%s (%s)", rule.Message, strings.Join(found, ", ")),
				Suggestion: rule.Suggestion,
			}
		}
	}
	return domain.GuardrailVerdict{Check: CheckPermission, Passed: true, Confidence: localPassConfidence}
}

// confidenceCheck is advisory and always passes.
func confidenceCheck(in Input) domain.GuardrailVerdict {
	level := scoring.Level(in.Text)
	return domain.GuardrailVerdict{
		Check:      CheckConfidence,
		Passed:     true,
		Confidence: levelScore(level),
		Reason:     string(level),
	}
}

func levelScore(l domain.ConfidenceLevel) float64 {
	switch l {
	case domain.ConfidenceHigh:
		return 0.9
	case domain.ConfidenceMedium:
		return 0.6
	default:
		return 0.3
	}
}
