package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"help-desk/domain"
	"help-desk/observability"
)

const DefaultIdleTimeout = 30 * time.Minute

// Builder creates the orchestrator of a new session.
type Builder func(session domain.Session) *Orchestrator

type entry struct {
	session      domain.Session
	orchestrator *Orchestrator
	lastSeen     time.Time
}

// Registry keeps one orchestrator, and so one credit counter, per session id.
type Registry struct {
	mu          sync.RWMutex
	log         *slog.Logger
	sessions    map[string]*entry
	build       Builder
	idleTimeout time.Duration
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewRegistry(log *slog.Logger, build Builder, idleTimeout time.Duration, metrics *observability.Metrics) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		log:         log,
		sessions:    make(map[string]*entry),
		build:       build,
		idleTimeout: idleTimeout,
		metrics:     metrics,
		now:         time.Now,
	}
}

// Acquire returns the orchestrator of the session, creating it on first use.
// A request whose caller, organization, role, subscription or perspective grant differs from
// the one the session was opened with gets a fresh orchestrator built from the new grant.
func (r *Registry) Acquire(session domain.Session) *Orchestrator {
	now := r.now()

	r.mu.RLock()
	e, ok := r.sessions[session.ID]
	r.mu.RUnlock()
	if ok && sameGrant(e.session, session) {
		r.touch(e, now)
		return e.orchestrator
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another request may have created it between the two locks.
	e, ok = r.sessions[session.ID]
	if ok && sameGrant(e.session, session) {
		e.lastSeen = now
		return e.orchestrator
	}
	if ok {
		r.log.Info("Session grant changed, rebuilding",
			"session", session.ID,
			"plan", session.Subscription.Plan,
			"previous_plan", e.session.Subscription.Plan,
			"role", session.Role,
			"previous_role", e.session.Role)
	}
	e = &entry{session: session, orchestrator: r.build(session), lastSeen: now}
	r.sessions[session.ID] = e
	r.metrics.SetActiveSessions(len(r.sessions))
	r.log.Debug("Session opened", "session", session.ID, "plan", session.Subscription.Plan, "role", session.Role)
	return e.orchestrator
}

// sameGrant compares what the caller is entitled to. School facts are looked up per request
// and do not count.
func sameGrant(a, b domain.Session) bool {
	return a.CallerID == b.CallerID &&
		a.OrganizationID == b.OrganizationID &&
		a.Role == b.Role &&
		a.Subscription == b.Subscription &&
		a.PerspectivesEnabled == b.PerspectivesEnabled
}

func (r *Registry) touch(e *entry, now time.Time) {
	r.mu.Lock()
	e.lastSeen = now
	r.mu.Unlock()
}

// Release forgets a session. Its usage is lost with it.
func (r *Registry) Release(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	r.metrics.SetActiveSessions(len(r.sessions))
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Evict removes the sessions idle for longer than the idle timeout and returns how many went.
func (r *Registry) Evict() int {
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.metrics.SetActiveSessions(len(r.sessions))
		r.log.Debug("Idle sessions evicted", "count", evicted, "active", len(r.sessions))
	}
	return evicted
}

// Run evicts idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}
