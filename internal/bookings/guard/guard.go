// Package guard admits persistence-capable booking commands only when they
// carry the single-use intent token minted for their trigger.
package guard

import (
	"crypto/subtle"
	"sync"

	"booking_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Trigger names the one user action allowed to run a guarded command.
type Trigger string

const (
	TriggerAddressConfirm Trigger = "address.confirm"
	TriggerVolumeSave     Trigger = "volume.save"
	TriggerScheduleSave   Trigger = "schedule.save"
	TriggerServiceToggle  Trigger = "services.toggle"
	TriggerCancel         Trigger = "booking.cancel"
	TriggerChecklistSave  Trigger = "checklist.save"
	TriggerReviewSubmit   Trigger = "review.submit"
)

// Intent is the evidence a command presents: the trigger it claims to come
// from and the token minted for that trigger.
type Intent struct {
	Trigger Trigger `json:"trigger"`
	Token   string  `json:"token"`
}

// Guard tracks at most one outstanding intent per scope (an edit session).
type Guard struct {
	mu       sync.Mutex
	grants   map[string]Intent
	log      *logger.Logger
	newToken func() string
}

// New creates a guard that logs refusals to log.
func New(log *logger.Logger) *Guard {
	return &Guard{
		grants:   make(map[string]Intent),
		log:      log,
		newToken: uuid.NewString,
	}
}

// Issue mints a fresh intent for scope, replacing any outstanding one.
func (g *Guard) Issue(scope string, trigger Trigger) Intent {
	intent := Intent{Trigger: trigger, Token: g.newToken()}
	g.mu.Lock()
	g.grants[scope] = intent
	g.mu.Unlock()
	return intent
}

// Verify reports whether presented matches the outstanding intent for
// scope without consuming it. A mismatch is logged like a refused Admit.
func (g *Guard) Verify(scope string, presented Intent) bool {
	g.mu.Lock()
	reason := g.mismatch(scope, presented)
	g.mu.Unlock()

	if reason != "" {
		g.log.MutationRefused(string(presented.Trigger), scope, reason)
		return false
	}
	return true
}

// Admit consumes the outstanding intent for scope when presented matches it.
// Anything else is refused: the refusal is logged and false is returned.
func (g *Guard) Admit(scope string, presented Intent) bool {
	g.mu.Lock()
	reason := g.mismatch(scope, presented)
	if reason == "" {
		delete(g.grants, scope)
	}
	g.mu.Unlock()

	if reason != "" {
		g.log.MutationRefused(string(presented.Trigger), scope, reason)
		return false
	}
	return true
}

// mismatch names why presented does not match the grant for scope. g.mu must be held.
func (g *Guard) mismatch(scope string, presented Intent) string {
	grant, ok := g.grants[scope]
	switch {
	case !ok:
		return "no outstanding intent"
	case presented.Trigger != grant.Trigger:
		return "trigger mismatch"
	case subtle.ConstantTimeCompare([]byte(presented.Token), []byte(grant.Token)) != 1:
		return "token mismatch"
	}
	return ""
}

// Revoke drops any outstanding intent for scope.
func (g *Guard) Revoke(scope string) {
	g.mu.Lock()
	delete(g.grants, scope)
	g.mu.Unlock()
}
