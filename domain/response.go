package domain

import "time"

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// rank orders levels so the weaker of two can be picked.
func (c ConfidenceLevel) rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// Weakest returns the lower of two confidence levels.
func Weakest(a, b ConfidenceLevel) ConfidenceLevel {
	if a.rank() <= b.rank() {
		return a
	}
	return b
}

type Outcome string

const (
	OutcomeAnswered        Outcome = "answered"
	OutcomeCached          Outcome = "cached"
	OutcomeOffTopic        Outcome = "off_topic"
	OutcomeUpgradeRequired Outcome = "upgrade_required"
	OutcomeBlocked         Outcome = "blocked"
	OutcomeError           Outcome = "error"
)

type ErrorCategory string

const (
	ErrorCategoryNone      ErrorCategory = ""
	ErrorCategoryAuth      ErrorCategory = "auth"
	ErrorCategoryRateLimit ErrorCategory = "rate_limit"
	ErrorCategoryTimeout   ErrorCategory = "timeout"
	ErrorCategoryUnknown   ErrorCategory = "unknown"
)

// GuardrailVerdict is produced once per check and discarded with the request.
type GuardrailVerdict struct {
	Check      string  `json:"check"`
	Passed     bool    `json:"passed"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
	Suggestion string  `json:"suggestion,omitempty"`
	// Degraded is set when the verifying call failed and the policy decided the outcome.
	Degraded bool `json:"degraded,omitempty"`
}

type PerspectiveSet struct {
	Optimist    string `json:"optimist"`
	Critic      string `json:"critic"`
	Neutral     string `json:"neutral"`
	Synthesized string `json:"synthesized"`
}

// Usage counts tokens and credits.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	Cost             float64 `json:"cost"`
	Calls            int     `json:"calls"`
}

func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		Cost:             u.Cost + o.Cost,
		Calls:            u.Calls + o.Calls,
	}
}

func (u Usage) Sub(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens - o.PromptTokens,
		CompletionTokens: u.CompletionTokens - o.CompletionTokens,
		Cost:             u.Cost - o.Cost,
		Calls:            u.Calls - o.Calls,
	}
}

type ResponseMetadata struct {
	RequestID                string        `json:"request_id"`
	Domain                   Domain        `json:"domain"`
	ClassificationConfidence float64       `json:"classification_confidence"`
	Language                 string        `json:"language,omitempty"`
	Model                    string        `json:"model,omitempty"`
	Usage                    Usage         `json:"usage"`
	SessionCreditsUsed       float64       `json:"session_credits_used"`
	CreditsRemaining         float64       `json:"credits_remaining"`
	Cached                   bool          `json:"cached"`
	ErrorCategory            ErrorCategory `json:"error_category,omitempty"`
	StartedAt                time.Time     `json:"started_at"`
	CompletedAt              time.Time     `json:"completed_at"`
}

// EdResponse is the unit handed back to the caller; it lives for one request.
type EdResponse struct {
	Text          string           `json:"text"`
	Outcome       Outcome          `json:"outcome"`
	SpecialistID  SpecialistID     `json:"specialist_id"`
	Confidence    ConfidenceLevel  `json:"confidence"`
	Sources       []string         `json:"sources"`
	RequiresHuman bool             `json:"requires_human"`
	Warnings      []string         `json:"warnings"`
	Perspectives  *PerspectiveSet  `json:"perspectives,omitempty"`
	Metadata      ResponseMetadata `json:"metadata"`
}
