package service

import (
	"sync"
	"time"

	"crux-escrow/internal/core/domain"
)

// GateState is the local eligibility of a release/cancel action.
type GateState string

const (
	GateBlocked  GateState = "BLOCKED"
	GateEligible GateState = "ELIGIBLE"
)

type gateAction string

const (
	gateRelease gateAction = "release"
	gateCancel  gateAction = "cancel"
)

// gateKey identifies one action on one escrow. Sequences are only unique per
// payer, so the owner account is part of the key; release and cancel have
// independent windows, so the action is too.
type gateKey struct {
	owner    string
	sequence uint32
	action   gateAction
}

// EligibilityGate performs pre-submission time-window checks so the service
// does not submit transactions the ledger will certainly reject. Advisory
// only: the ledger re-validates at submission time, since local clocks may
// be skewed. Per payment and action the transition Blocked -> Eligible is
// one-way; the gate never re-blocks an action it has seen become eligible.
type EligibilityGate struct {
	now func() time.Time

	mu       sync.Mutex
	eligible map[gateKey]bool
	timers   map[gateKey]*time.Timer
}

// NewEligibilityGate creates a gate using the given clock.
func NewEligibilityGate(now func() time.Time) *EligibilityGate {
	if now == nil {
		now = time.Now
	}
	return &EligibilityGate{
		now:      now,
		eligible: make(map[gateKey]bool),
		timers:   make(map[gateKey]*time.Timer),
	}
}

// ReleaseState reports whether a release may be attempted. The boundary is
// inclusive: at exactly FinishAfter the action is eligible.
func (g *EligibilityGate) ReleaseState(e *domain.Escrow) GateState {
	return g.state(gateKey{e.Payer, e.Sequence, gateRelease}, e.FinishAfter)
}

// CancelState reports whether a payer-side cancel may be attempted, gated
// against CancelAfter.
func (g *EligibilityGate) CancelState(e *domain.Escrow) GateState {
	return g.state(gateKey{e.Payer, e.Sequence, gateCancel}, e.CancelAfter)
}

func (g *EligibilityGate) state(key gateKey, after *int64) GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.eligible[key] {
		return GateEligible
	}
	if after == nil || g.now().Unix() >= *after {
		g.eligible[key] = true
		return GateEligible
	}
	return GateBlocked
}

// ScheduleRelease arms a deferred, cancellable timer firing exactly when the
// escrow becomes releasable. fn runs immediately if it already is. Arming the
// same escrow again replaces its previous timer. Returns a cancel function.
func (g *EligibilityGate) ScheduleRelease(e *domain.Escrow, fn func()) func() {
	if g.ReleaseState(e) == GateEligible {
		fn()
		return func() {}
	}

	remaining := time.Duration(*e.FinishAfter-g.now().Unix()) * time.Second
	key := gateKey{e.Payer, e.Sequence, gateRelease}

	g.mu.Lock()
	if old, ok := g.timers[key]; ok {
		old.Stop()
	}
	timer := time.AfterFunc(remaining, func() {
		g.mu.Lock()
		g.eligible[key] = true
		delete(g.timers, key)
		g.mu.Unlock()
		fn()
	})
	g.timers[key] = timer
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		if t, ok := g.timers[key]; ok && t == timer {
			t.Stop()
			delete(g.timers, key)
		}
		g.mu.Unlock()
	}
}

// Forget drops all gate state for an escrow. Called once the escrow is
// observed terminal; the one-way guarantee only holds while the payment is
// live, so pruning keeps the maps bounded by the open-escrow count.
func (g *EligibilityGate) Forget(e *domain.Escrow) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, action := range []gateAction{gateRelease, gateCancel} {
		key := gateKey{e.Payer, e.Sequence, action}
		if t, ok := g.timers[key]; ok {
			t.Stop()
			delete(g.timers, key)
		}
		delete(g.eligible, key)
	}
}

// Stop cancels all armed timers.
func (g *EligibilityGate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, t := range g.timers {
		t.Stop()
		delete(g.timers, key)
	}
}
