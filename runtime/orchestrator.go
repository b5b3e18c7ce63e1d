// Package runtime composes the help-desk pipeline for one session and keeps sessions alive
// between requests. It holds no domain rules of its own.
package runtime

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"help-desk/access"
	"help-desk/classifier"
	"help-desk/credit"
	"help-desk/domain"
	"help-desk/errors"
	"help-desk/guardrail"
	"help-desk/llm"
	"help-desk/observability"
	"help-desk/perspective"
	"help-desk/repositories"
	"help-desk/scoring"
	"help-desk/specialist"

	"github.com/google/uuid"
)

const DefaultCacheMinConfidence = 0.8

// OffTopicText answers questions that are not about running a school. No model is called.
const OffTopicText = "I'm Ed, the help desk for school staff. I can help with estates compliance, HR, SEND, " +
	"data protection, safeguarding, finance, governance and day-to-day operations. What would you like to know?"

// ApologyText replaces any answer whose preparation failed unexpectedly.
const ApologyText = "Sorry, something went wrong while preparing your answer. " +
	"Please try again shortly, or contact support if it keeps happening."

const perspectiveWarning = "Some perspectives could not be generated and were replaced by general prompts."

// Toolkit is the read-only part of the pipeline shared by every session.
type Toolkit struct {
	Classifier *classifier.Classifier
	Registry   *specialist.Registry
	Catalog    *llm.Catalog
	// Completer is the raw provider. Each session meters it against its own credits.
	Completer llm.Completer
	Rules     *guardrail.Rules
	// Knowledge is optional.
	Knowledge repositories.KnowledgeRepository
	Metrics   *observability.Metrics
}

type Options struct {
	EnablePerspectives bool
	CacheMinConfidence float64
	GuardrailPolicy    guardrail.FailurePolicy
	PerspectiveTimeout time.Duration
	GuardrailTimeout   time.Duration
}

// Orchestrator serves one session. Requests on the same session are served one at a time,
// and the credit manager is the only state that survives a request.
type Orchestrator struct {
	mu          sync.Mutex
	log         *slog.Logger
	session     domain.Session
	classifier  *classifier.Classifier
	registry    *specialist.Registry
	selector    *llm.Selector
	invoker     *specialist.Invoker
	synthesizer *perspective.Synthesizer
	guardrails  *guardrail.Pipeline
	credits     *credit.Manager
	knowledge   repositories.KnowledgeRepository
	metrics     *observability.Metrics
	options     Options
}

func NewOrchestrator(log *slog.Logger, session domain.Session, toolkit Toolkit, options Options) *Orchestrator {
	if options.CacheMinConfidence <= 0 {
		options.CacheMinConfidence = DefaultCacheMinConfidence
	}
	log = log.With("session", session.ID)
	credits := credit.NewManager(session.Subscription, toolkit.Metrics)
	completer := llm.NewMetered(log, toolkit.Completer, toolkit.Catalog, credits, toolkit.Metrics)

	return &Orchestrator{
		log:         log,
		session:     session,
		classifier:  toolkit.Classifier,
		registry:    toolkit.Registry,
		selector:    llm.NewSelector(toolkit.Catalog),
		invoker:     specialist.NewInvoker(log, toolkit.Registry, completer),
		synthesizer: perspective.NewSynthesizer(log, completer, options.PerspectiveTimeout),
		guardrails:  guardrail.NewPipeline(log, completer, toolkit.Rules, options.GuardrailPolicy, options.GuardrailTimeout, toolkit.Metrics),
		credits:     credits,
		knowledge:   toolkit.Knowledge,
		metrics:     toolkit.Metrics,
		options:     options,
	}
}

func (o *Orchestrator) Session() domain.Session {
	return o.session
}

// Subscription is the session start snapshot with this session's usage applied.
func (o *Orchestrator) Subscription() domain.SubscriptionState {
	return o.credits.Subscription()
}

// ProcessQuestion always returns a well-formed response. Errors and panics become an apology
// that requires a human and carries the error category.
func (o *Orchestrator) ProcessQuestion(ctx context.Context, q domain.Question) (resp domain.EdResponse) {
	o.mu.Lock()
	defer o.mu.Unlock()

	t := newTrace(uuid.New().String(), o.credits.SessionUsage())
	log := o.log.With("request_id", t.requestID)

	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			log.Error("Question processing panicked", "error", err)
			resp = o.apology(t, errors.Categorize(err))
		}
		o.metrics.ObserveRequest(string(resp.Outcome), string(resp.Metadata.Domain), time.Since(t.started))
		log.Info("Question processed",
			"outcome", resp.Outcome,
			"domain", resp.Metadata.Domain,
			"specialist", resp.SpecialistID,
			"model", resp.Metadata.Model,
			"cost", resp.Metadata.Usage.Cost,
			"latency_ms", time.Since(t.started).Milliseconds())
	}()

	resp, err := o.process(ctx, log, t, q)
	if err != nil {
		log.Error("Question processing failed", "error", err)
		return o.apology(t, errors.Categorize(err))
	}
	return resp
}

// trace carries what every response of one request shares.
type trace struct {
	requestID      string
	started        time.Time
	before         domain.Usage
	classification domain.IntentClassification
}

func newTrace(requestID string, before domain.Usage) *trace {
	return &trace{requestID: requestID, started: time.Now().UTC(), before: before}
}

func (o *Orchestrator) process(ctx context.Context, log *slog.Logger, t *trace, q domain.Question) (domain.EdResponse, error) {
	if strings.TrimSpace(q.Text) == "" {
		return domain.EdResponse{}, errors.ErrEmptyQuestion
	}
	if q.ReceivedAt.IsZero() {
		q.ReceivedAt = t.started
	}

	c := o.classifier.Classify(q, o.session.Role)
	t.classification = c
	log.Debug("Question classified",
		"domain", c.Domain,
		"specialist", c.SpecialistID,
		"confidence", c.Confidence,
		"work_related", c.IsWorkRelated,
		"multi_perspective", c.RequiresMultiPerspective,
		"language", c.Language)

	if !c.IsWorkRelated {
		return o.respond(t, domain.EdResponse{
			Text:         OffTopicText,
			Outcome:      domain.OutcomeOffTopic,
			SpecialistID: c.SpecialistID,
			Confidence:   domain.ConfidenceHigh,
		}), nil
	}

	plan := o.session.Subscription.Plan
	if !access.Allowed(plan, c.Domain) {
		log.Info("Domain not included in plan", "domain", c.Domain, "plan", plan)
		return o.respond(t, domain.EdResponse{
			Text:         access.UpgradeMessage(plan, c.Domain),
			Outcome:      domain.OutcomeUpgradeRequired,
			SpecialistID: c.SpecialistID,
			Confidence:   domain.ConfidenceHigh,
		}), nil
	}

	if cached, ok := o.lookup(ctx, log, q.Text, c); ok {
		sources := cached.Sources
		if len(sources) == 0 {
			sources = scoring.ExtractSources(cached.Answer)
		}
		specialistID := cached.SpecialistID
		if specialistID == "" {
			specialistID = c.SpecialistID
		}
		return o.respond(t, domain.EdResponse{
			Text:         cached.Answer,
			Outcome:      domain.OutcomeCached,
			SpecialistID: specialistID,
			Confidence:   domain.ConfidenceHigh,
			Sources:      sources,
		}), nil
	}

	model := o.selector.Select(domain.TaskSpecialist, plan, o.credits.Remaining())
	answer := o.invoker.Invoke(ctx, specialist.Request{
		Question:       q,
		Classification: c,
		School:         o.session.School,
		Model:          model.ID,
	})

	text := answer.Text
	var (
		perspectives *domain.PerspectiveSet
		warnings     []string
	)
	if !answer.Degraded && c.RequiresMultiPerspective && o.options.EnablePerspectives && o.session.PerspectivesEnabled {
		remaining := o.credits.Remaining()
		res := o.synthesizer.Synthesize(ctx, perspective.Request{
			Question:         q.Text,
			Answer:           answer.Text,
			PerspectiveModel: o.selector.Select(domain.TaskPerspective, plan, remaining).ID,
			SynthesisModel:   o.selector.Select(domain.TaskSynthesis, plan, remaining).ID,
		})
		text, perspectives = res.Text, &res.Set
		if len(res.FallbackLenses) > 0 || res.SynthesisFallback {
			warnings = append(warnings, perspectiveWarning)
		}
	}

	def, err := o.registry.Get(answer.SpecialistID)
	if err != nil {
		return domain.EdResponse{}, err
	}
	decision := o.guardrails.Validate(ctx, guardrail.Input{
		Question:    q.Text,
		Text:        text,
		Role:        o.session.Role,
		Domain:      c.Domain,
		Attribution: def.Attribution,
		Model:       o.selector.Select(domain.TaskGuardrail, plan, o.credits.Remaining()).ID,
		LocalOnly:   answer.Degraded,
	})

	confidence := decision.Confidence
	if answer.Degraded {
		confidence = domain.Weakest(answer.Confidence, confidence)
	}
	outcome := domain.OutcomeAnswered
	switch {
	case decision.Blocked:
		outcome = domain.OutcomeBlocked
		perspectives = nil
	case answer.Degraded:
		outcome = domain.OutcomeError
	}

	resp := domain.EdResponse{
		Text:          decision.Text,
		Outcome:       outcome,
		SpecialistID:  answer.SpecialistID,
		Confidence:    confidence,
		Sources:       scoring.ExtractSources(decision.Text),
		RequiresHuman: answer.RequiresHuman || decision.RequiresHuman,
		Warnings:      append(warnings, decision.Warnings...),
		Perspectives:  perspectives,
	}
	resp.Metadata.Model = answer.Model
	resp.Metadata.ErrorCategory = answer.ErrorCategory
	return o.respond(t, resp), nil
}

// lookup consults the knowledge cache for confident classifications. Failures count as misses.
func (o *Orchestrator) lookup(ctx context.Context, log *slog.Logger, question string, c domain.IntentClassification) (repositories.CachedAnswer, bool) {
	if o.knowledge == nil || c.Confidence < o.options.CacheMinConfidence {
		return repositories.CachedAnswer{}, false
	}
	cached, err := o.knowledge.Lookup(ctx, question, c.Domain)
	switch {
	case err == nil:
		o.metrics.ObserveCacheLookup("hit")
		log.Info("Answered from knowledge cache", "domain", c.Domain, "entry", cached.ID, "exact", cached.Exact, "score", cached.Score)
		return cached, true
	case stderrors.Is(err, errors.ErrKnowledgeNotFound):
		o.metrics.ObserveCacheLookup("miss")
	default:
		o.metrics.ObserveCacheLookup("error")
		log.Warn("Knowledge cache lookup failed", "domain", c.Domain, "error", err)
	}
	return repositories.CachedAnswer{}, false
}

// respond fills the metadata every outcome shares.
func (o *Orchestrator) respond(t *trace, resp domain.EdResponse) domain.EdResponse {
	session := o.credits.SessionUsage()
	c := t.classification

	resp.Metadata.RequestID = t.requestID
	resp.Metadata.Domain = c.Domain
	resp.Metadata.ClassificationConfidence = c.Confidence
	resp.Metadata.Language = c.Language
	resp.Metadata.Usage = session.Sub(t.before)
	resp.Metadata.SessionCreditsUsed = session.Cost
	resp.Metadata.CreditsRemaining = o.credits.Remaining()
	resp.Metadata.Cached = resp.Outcome == domain.OutcomeCached
	resp.Metadata.StartedAt = t.started
	resp.Metadata.CompletedAt = time.Now().UTC()
	if resp.Sources == nil {
		resp.Sources = []string{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	return resp
}

func (o *Orchestrator) apology(t *trace, category domain.ErrorCategory) domain.EdResponse {
	resp := domain.EdResponse{
		Text:          ApologyText,
		Outcome:       domain.OutcomeError,
		SpecialistID:  domain.GeneralAssistant,
		Confidence:    domain.ConfidenceLow,
		RequiresHuman: true,
	}
	resp.Metadata.ErrorCategory = category
	return o.respond(t, resp)
}
