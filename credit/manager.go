// Package credit tracks the token-derived cost of one session against its subscription.
package credit

import (
	"sync"

	"help-desk/domain"
	"help-desk/llm"
	"help-desk/observability"
)

// Manager holds the cumulative usage of a session. It only projects the subscription;
// persisting debits is left to the caller.
type Manager struct {
	mu           sync.RWMutex
	subscription domain.SubscriptionState
	usage        domain.Usage
	metrics      *observability.Metrics
}

func NewManager(subscription domain.SubscriptionState, metrics *observability.Metrics) *Manager {
	return &Manager{subscription: subscription, metrics: metrics}
}

// Track prices one completion and adds it to the session. It returns the usage of that call alone.
func (m *Manager) Track(model llm.ModelDescriptor, promptTokens, completionTokens int) domain.Usage {
	event := domain.Usage{
		PromptTokens:     max(0, promptTokens),
		CompletionTokens: max(0, completionTokens),
		Calls:            1,
	}
	event.Cost = model.Credits(event.PromptTokens, event.CompletionTokens)

	m.mu.Lock()
	m.usage = m.usage.Add(event)
	m.mu.Unlock()

	m.metrics.AddCredits(string(m.subscription.Plan), event.Cost)
	return event
}

func (m *Manager) SessionUsage() domain.Usage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usage
}

// Remaining is max(0, credits remaining at session start - session usage).
func (m *Manager) Remaining() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return max(0, m.subscription.CreditsRemaining-m.usage.Cost)
}

// Subscription projects the session usage onto the subscription read at session start.
func (m *Manager) Subscription() domain.SubscriptionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.SubscriptionState{
		Plan:             m.subscription.Plan,
		CreditsRemaining: max(0, m.subscription.CreditsRemaining-m.usage.Cost),
		CreditsUsed:      m.subscription.CreditsUsed + m.usage.Cost,
	}
}
