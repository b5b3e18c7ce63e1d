package llm

import (
	"context"
	"log/slog"
	"time"

	"help-desk/observability"
)

// Metered decorates a Completer: successful calls are priced and tracked, every call is measured.
type Metered struct {
	log     *slog.Logger
	next    Completer
	catalog *Catalog
	tracker UsageTracker
	metrics *observability.Metrics
}

func NewMetered(log *slog.Logger, next Completer, catalog *Catalog, tracker UsageTracker, metrics *observability.Metrics) *Metered {
	return &Metered{log: log, next: next, catalog: catalog, tracker: tracker, metrics: metrics}
}

func (m *Metered) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	start := time.Now()
	resp, err := m.next.Complete(ctx, req)
	latency := time.Since(start)
	if err != nil {
		m.metrics.ObserveCompletion(string(req.Task), req.Model, "error", latency)
		m.log.Warn("Completion failed",
			"task", req.Task,
			"model", req.Model,
			"latency_ms", latency.Milliseconds(),
			"error", err)
		return Completion{}, err
	}
	m.metrics.ObserveCompletion(string(req.Task), req.Model, "ok", latency)

	// Providers may answer with a dated model name; price what was requested in that case.
	model, rerr := m.catalog.Resolve(resp.Model)
	if rerr != nil {
		if model, rerr = m.catalog.Resolve(req.Model); rerr != nil {
			model = m.catalog.Default()
		}
	}
	usage := m.tracker.Track(model, resp.PromptTokens, resp.CompletionTokens)
	resp.Cost = usage.Cost
	m.log.Debug("Completion tracked",
		"task", req.Task,
		"model", model.ID,
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens,
		"cost", usage.Cost,
		"latency_ms", latency.Milliseconds())
	return resp, nil
}
