package guard

import (
	"sync"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
)

// TenantState is the observable state of tenant resolution.
type TenantState struct {
	Loading bool
	// Agency is nil once Loading is false when the lookup found nothing or
	// failed; the guard treats both the same way.
	Agency *domain.Agency
}

// Watcher joins tenant resolution, session observation and the current path,
// re-evaluating the decision table whenever any of them changes. Evaluation
// does not begin until both resolutions have left their loading state at
// least once: this is a join, not a race, and whichever settles last triggers
// the first real decision.
//
// Re-evaluation fires on navigation, on tenant refetch completion and on
// every session event. Identical state yields the identical decision; the
// callback still runs so the mounting layer can stay declarative.
type Watcher struct {
	mu       sync.Mutex
	path     string
	tenant   TenantState
	session  SessionSnapshot
	decision Decision
	notify   func(Decision)
}

// NewWatcher creates a watcher starting in the loading state. The callback
// receives every decision, including the initial ShowLoading.
func NewWatcher(notify func(Decision)) *Watcher {
	w := &Watcher{
		tenant:  TenantState{Loading: true},
		session: SessionSnapshot{State: SessionLoading},
		notify:  notify,
	}
	w.decision = Evaluate(w.inputs())
	if notify != nil {
		notify(w.decision)
	}
	return w
}

// Navigate sets the current path and re-evaluates.
func (w *Watcher) Navigate(path string) Decision {
	w.mu.Lock()
	w.path = path
	return w.reevaluate()
}

// SetTenant records a tenant resolution result and re-evaluates.
func (w *Watcher) SetTenant(state TenantState) Decision {
	w.mu.Lock()
	w.tenant = state
	return w.reevaluate()
}

// SetSession records a session snapshot and re-evaluates. Wire this to
// SessionProvider.Watch.
func (w *Watcher) SetSession(snapshot SessionSnapshot) Decision {
	w.mu.Lock()
	w.session = snapshot
	return w.reevaluate()
}

// Decision returns the last evaluated decision.
func (w *Watcher) Decision() Decision {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.decision
}

// reevaluate must be called with the lock held; it releases it.
func (w *Watcher) reevaluate() Decision {
	decision := Evaluate(w.inputs())
	w.decision = decision
	notify := w.notify
	w.mu.Unlock()

	if notify != nil {
		notify(decision)
	}
	return decision
}

func (w *Watcher) inputs() Inputs {
	return Inputs{
		Path:           w.path,
		TenantLoading:  w.tenant.Loading,
		Agency:         w.tenant.Agency,
		SessionLoading: w.session.State == SessionLoading,
		Identity:       w.session.Identity,
	}
}
