// Package editsession implements the lifecycle of one customer edit: the
// propose, preview, confirm and commit sequence behind every modal of the
// booking portal.
package editsession

import (
	"errors"
	"fmt"
)

// Kind is the kind of change a session edits.
type Kind string

const (
	KindAddress      Kind = "address"
	KindVolume       Kind = "volume"
	KindSchedule     Kind = "schedule"
	KindServices     Kind = "services"
	KindCancellation Kind = "cancellation"
	KindChecklist    Kind = "checklist"
	KindReview       Kind = "review"
)

// ParseKind validates a kind received from a client.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindAddress, KindVolume, KindSchedule, KindServices, KindCancellation, KindChecklist, KindReview:
		return k, nil
	default:
		return "", fmt.Errorf("unknown edit kind %q", s)
	}
}

// TwoPhase reports whether commits need a confirmed preview first.
func (k Kind) TwoPhase() bool { return k == KindAddress }

// Phase is the protocol state of a session.
type Phase string

const (
	Editing        Phase = "editing"
	Previewing     Phase = "previewing"
	ConfirmPending Phase = "confirm_pending"
	Committing     Phase = "committing"
	Committed      Phase = "committed"
	Aborted        Phase = "aborted"
)

// ErrInvalidTransition is wrapped by every refused phase change.
var ErrInvalidTransition = errors.New("invalid edit session transition")

// ErrStalePreview is returned when a preview result belongs to an older proposal.
var ErrStalePreview = errors.New("preview belongs to a superseded proposal")

// TransitionError describes a refused phase change.
type TransitionError struct {
	Kind   Kind
	From   Phase
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s session cannot %s while %s", e.Kind, e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// AddressProposal holds the address values a customer entered.
type AddressProposal struct {
	StartAddress  string
	EndAddress    string
	StartFloor    string
	EndFloor      string
	StartElevator string
	EndElevator   string
}

// Preview is the outcome of a successful price recalculation. Basis
// identifies the booking state the price was calculated from.
type Preview struct {
	DistanceKm float64
	OldPrice   int64
	NewPrice   int64
	PriceDelta int64
	Basis      string
}

// NewPreview derives the delta from old and new price.
func NewPreview(distanceKm float64, oldPrice, newPrice int64) Preview {
	return Preview{
		DistanceKm: distanceKm,
		OldPrice:   oldPrice,
		NewPrice:   newPrice,
		PriceDelta: newPrice - oldPrice,
	}
}

// Observer is notified after every phase change.
type Observer func(sessionID string, from, to Phase)

// Session is the transient state of one open edit modal. It is not safe for
// concurrent use; the owner serialises access.
type Session struct {
	id         string
	kind       Kind
	generation uint64

	phase     Phase
	attempt   uint64
	proposal  *AddressProposal
	preview   *Preview
	saving    bool
	lastError string

	observe Observer
}

// New opens a session in Editing.
func New(id string, kind Kind, generation uint64, observe Observer) *Session {
	return &Session{
		id:         id,
		kind:       kind,
		generation: generation,
		phase:      Editing,
		observe:    observe,
	}
}

func (s *Session) ID() string         { return s.id }
func (s *Session) Kind() Kind         { return s.kind }
func (s *Session) Generation() uint64 { return s.generation }
func (s *Session) Phase() Phase       { return s.phase }
func (s *Session) Saving() bool       { return s.saving }
func (s *Session) LastError() string  { return s.lastError }

// Proposal returns a copy of the proposed values, if any.
func (s *Session) Proposal() (AddressProposal, bool) {
	if s.proposal == nil {
		return AddressProposal{}, false
	}
	return *s.proposal, true
}

// Preview returns a copy of the current preview, if any.
func (s *Session) Preview() (Preview, bool) {
	if s.preview == nil {
		return Preview{}, false
	}
	return *s.preview, true
}

// BeginPreview records the proposal and moves to Previewing. A proposal
// made while a previous one is still previewing supersedes it. The returned
// attempt number must be passed to PreviewReady or PreviewFailed.
func (s *Session) BeginPreview(p AddressProposal) (uint64, error) {
	if !s.kind.TwoPhase() {
		return 0, s.refuse("preview")
	}
	if s.phase != Editing && s.phase != Previewing {
		return 0, s.refuse("preview")
	}
	s.attempt++
	s.proposal = &p
	s.preview = nil
	s.lastError = ""
	s.moveTo(Previewing)
	return s.attempt, nil
}

// PreviewReady stores the preview and waits for the customer to confirm.
func (s *Session) PreviewReady(attempt uint64, p Preview) error {
	if s.phase != Previewing {
		return s.refuse("accept a preview")
	}
	if attempt != s.attempt {
		return ErrStalePreview
	}
	s.preview = &p
	s.moveTo(ConfirmPending)
	return nil
}

// PreviewFailed returns to Editing with a retryable message. The proposal is kept.
func (s *Session) PreviewFailed(attempt uint64, message string) error {
	if s.phase != Previewing {
		return s.refuse("fail a preview")
	}
	if attempt != s.attempt {
		return ErrStalePreview
	}
	s.lastError = message
	s.moveTo(Editing)
	return nil
}

// Undo discards the preview and returns to Editing with the proposal kept.
func (s *Session) Undo() error {
	if s.phase != ConfirmPending && s.phase != Aborted {
		return s.refuse("undo")
	}
	s.preview = nil
	s.lastError = ""
	s.moveTo(Editing)
	return nil
}

// Invalidate drops a preview that no longer matches the booking and returns
// to Editing with message. The proposal is kept so it can be recalculated.
func (s *Session) Invalidate(message string) error {
	if s.phase != ConfirmPending && s.phase != Aborted {
		return s.refuse("invalidate a preview")
	}
	s.preview = nil
	s.lastError = message
	s.moveTo(Editing)
	return nil
}

// CanCommit reports whether BeginCommit would succeed.
func (s *Session) CanCommit() bool {
	if s.kind.TwoPhase() {
		return (s.phase == ConfirmPending || s.phase == Aborted) && s.preview != nil
	}
	return s.phase == Editing || s.phase == Aborted || s.phase == Committed
}

// BeginCommit enters Committing and raises the saving flag. Two-phase
// sessions need a confirmed preview; an aborted commit may be retried with
// the same preview.
func (s *Session) BeginCommit() error {
	if !s.CanCommit() {
		return s.refuse("commit")
	}
	s.saving = true
	s.lastError = ""
	s.moveTo(Committing)
	return nil
}

// CommitSucceeded records a persisted change.
func (s *Session) CommitSucceeded() error {
	if s.phase != Committing {
		return s.refuse("complete a commit")
	}
	s.saving = false
	s.moveTo(Committed)
	return nil
}

// CommitFailed records a failed commit. The preview is kept for a retry.
func (s *Session) CommitFailed(message string) error {
	if s.phase != Committing {
		return s.refuse("fail a commit")
	}
	s.saving = false
	s.lastError = message
	s.moveTo(Aborted)
	return nil
}

// Settle forces the transient flags to a terminal value. It is deferred
// around commits so no exit path leaves a session saving.
func (s *Session) Settle() {
	if s.phase == Committing {
		_ = s.CommitFailed("the change could not be saved, please try again")
	}
	s.saving = false
}

// Reset clears everything and returns to Editing, whatever the phase.
func (s *Session) Reset() {
	from := s.phase
	s.attempt++
	s.proposal = nil
	s.preview = nil
	s.saving = false
	s.lastError = ""
	s.phase = Editing
	if s.observe != nil && from != Editing {
		s.observe(s.id, from, Editing)
	}
}

func (s *Session) moveTo(to Phase) {
	from := s.phase
	s.phase = to
	if s.observe != nil && from != to {
		s.observe(s.id, from, to)
	}
}

func (s *Session) refuse(action string) error {
	return &TransitionError{Kind: s.kind, From: s.phase, Action: action}
}
