package specialist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"help-desk/domain"
	"help-desk/errors"
	"help-desk/llm"
)

const (
	DefaultMaxTokens   = 1500
	DefaultTemperature = 0.4

	// asbestosCutoff is the year from which asbestos was no longer used in UK buildings.
	asbestosCutoff = 2000
)

// DegradedText is returned when the specialist could not be reached.
const DegradedText = "I couldn't reach the specialist just now, so I can't give you a reliable answer. " +
	"Please try again in a few minutes, or ask a colleague who is responsible for this area."

// Request is everything needed to ask one specialist one question.
type Request struct {
	Question       domain.Question
	Classification domain.IntentClassification
	School         domain.SchoolContext
	Model          string
}

// Answer is what the specialist produced. It always carries text.
type Answer struct {
	Text          string
	SpecialistID  domain.SpecialistID
	Model         string
	Degraded      bool
	Confidence    domain.ConfidenceLevel
	RequiresHuman bool
	ErrorCategory domain.ErrorCategory
}

type Invoker struct {
	log         *slog.Logger
	registry    *Registry
	completer   llm.Completer
	maxTokens   int
	temperature float64
}

func NewInvoker(log *slog.Logger, registry *Registry, completer llm.Completer) *Invoker {
	return &Invoker{
		log:         log,
		registry:    registry,
		completer:   completer,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}
}

// Invoke issues exactly one completion. Provider failures never escape:
// they become a degraded answer with LOW confidence that requires a human.
func (i *Invoker) Invoke(ctx context.Context, req Request) Answer {
	def := i.registry.ForDomain(req.Classification.Domain)
	if req.Classification.SpecialistID != "" {
		if d, err := i.registry.Get(req.Classification.SpecialistID); err == nil {
			def = d
		}
	}

	system := BuildPrompt(def, req.School, req.Classification.Language)
	i.log.Debug("Specialist prompt built",
		"specialist", def.ID,
		"model", req.Model,
		"prompt_chars", len(system))

	start := time.Now()
	resp, err := i.completer.Complete(ctx, llm.CompletionRequest{
		Task:         domain.TaskSpecialist,
		Model:        req.Model,
		SystemPrompt: system,
		UserMessage:  req.Question.Text,
		Temperature:  i.temperature,
		MaxTokens:    i.maxTokens,
	})
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = errors.ErrEmptyCompletion
	}
	if err != nil {
		category := errors.Categorize(err)
		i.log.Warn("Specialist unavailable, answering degraded",
			"specialist", def.ID,
			"model", req.Model,
			"category", category,
			"latency_ms", time.Since(start).Milliseconds(),
			"error", err)
		return Answer{
			Text:          DegradedText,
			SpecialistID:  def.ID,
			Model:         req.Model,
			Degraded:      true,
			Confidence:    domain.ConfidenceLow,
			RequiresHuman: true,
			ErrorCategory: category,
		}
	}

	model := resp.Model
	if model == "" {
		model = req.Model
	}
	return Answer{
		Text:         strings.TrimSpace(resp.Content),
		SpecialistID: def.ID,
		Model:        model,
	}
}

// BuildPrompt concatenates the organisation facts, the guidance derived from them and the behavior template.
func BuildPrompt(def domain.SpecialistDefinition, school domain.SchoolContext, language string) string {
	var sections []string
	if facts := factsBlock(school); facts != "" {
		sections = append(sections, facts)
	}
	if guidance := typeGuidance(school); guidance != "" {
		sections = append(sections, guidance)
	}
	sections = append(sections, def.Template)
	if language != "" && language != "en" {
		sections = append(sections, fmt.Sprintf("Write your answer in the language with ISO 639-1 code %q.", language))
	}
	return strings.Join(sections, "\n\n")
}

func factsBlock(s domain.SchoolContext) string {
	if s.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("Known facts about this organisation:")
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "\n- %s: %s", label, value)
		}
	}
	line("School", s.Name)
	line("Type", s.Type)
	line("Phase", s.Phase)
	line("Local authority", s.LocalAuthority)
	line("Trust", s.TrustName)
	if s.PupilCount > 0 {
		line("Pupils on roll", fmt.Sprint(s.PupilCount))
	}
	if s.OldestBuildingYear > 0 {
		line("Oldest building", fmt.Sprint(s.OldestBuildingYear))
	}
	return b.String()
}

func typeGuidance(s domain.SchoolContext) string {
	var lines []string
	switch strings.ToLower(s.Type) {
	case "academy":
		lines = append(lines, "This is an academy: the trust is the employer and duty holder. Refer to the Academy Trust Handbook rather than local authority schemes.")
	case "maintained":
		lines = append(lines, "This is a maintained school: local authority schemes and policies apply, and the local authority is the employer for community schools.")
	case "special":
		lines = append(lines, "This is a special school: account for EHCP provision, medical needs and enhanced staffing ratios.")
	case "independent":
		lines = append(lines, "This is an independent school: the Independent School Standards apply instead of maintained school duties.")
	}
	if s.OldestBuildingYear > 0 && s.OldestBuildingYear < asbestosCutoff {
		lines = append(lines, "Some buildings predate 2000 and may contain asbestos. Check the asbestos register before any work that disturbs the fabric.")
	}
	return strings.Join(lines, "\n")
}
