package service

import (
	"context"
	"errors"
	"time"

	"booking_portal_backend/internal/bookings/domain"
	"booking_portal_backend/internal/bookings/editsession"
	"booking_portal_backend/internal/bookings/guard"
	"booking_portal_backend/internal/bookings/repository"
	"booking_portal_backend/internal/bookings/transport"
	"booking_portal_backend/internal/events"
	"booking_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	sessionNotFoundMsg = "this edit is no longer open"
	previewOutdatedMsg = "the booking changed since this price was calculated, please recalculate"
	readOnlyMsg        = "this booking can only be viewed here, please contact us to change it"
	notEditableMsg     = "this booking can no longer be changed here"
)

var triggers = map[editsession.Kind]guard.Trigger{
	editsession.KindAddress:      guard.TriggerAddressConfirm,
	editsession.KindVolume:       guard.TriggerVolumeSave,
	editsession.KindSchedule:     guard.TriggerScheduleSave,
	editsession.KindServices:     guard.TriggerServiceToggle,
	editsession.KindCancellation: guard.TriggerCancel,
	editsession.KindChecklist:    guard.TriggerChecklistSave,
	editsession.KindReview:       guard.TriggerReviewSubmit,
}

// The services and checklist modals stay open across saves; every other
// modal closes shortly after a successful save.
func closesOnCommit(kind editsession.Kind) bool {
	return kind != editsession.KindServices && kind != editsession.KindChecklist
}

// errPreviewOutdated is returned by a build whose preview was priced from a
// booking state that has since changed.
var errPreviewOutdated = errors.New("preview is outdated")

// OpenEdit opens the modal for kind. An already open session of that kind
// is closed first, so the new one always starts clean. Single-phase kinds
// receive their intent right away; address sessions receive it once a
// preview is ready.
func (s *Service) OpenEdit(ctx context.Context, viewID string, kindName string) (*transport.SessionResponse, error) {
	kind, err := editsession.ParseKind(kindName)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	v, err := s.lookupView(viewID)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch(s.now())

	if err := s.checkEditable(v.snapshot); err != nil {
		return nil, err
	}

	if _, open := v.sessions[kind]; open {
		s.discardLocked(v, kind)
	}

	sess := editsession.New(uuid.NewString(), kind, s.generation.Add(1), s.observe)
	v.sessions[kind] = sess

	var intent *guard.Intent
	if !kind.TwoPhase() {
		issued := s.guard.Issue(sess.ID(), triggers[kind])
		intent = &issued
	}

	s.log.WithContext(ctx).Info("edit_session_opened",
		"view_id", v.id,
		"session_id", sess.ID(),
		"kind", string(kind),
	)
	return s.sessionResponse(v, sess, intent), nil
}

// Session returns the state of an open session. It never carries an intent.
func (s *Service) Session(viewID, sessionID string) (*transport.SessionResponse, error) {
	v, err := s.lookupView(viewID)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch(s.now())

	sess := v.findSession(sessionID)
	if sess == nil {
		return nil, apperr.NotFound(sessionNotFoundMsg)
	}
	return s.sessionResponse(v, sess, nil), nil
}

// CloseEdit closes a modal in whatever phase it is. Its transient state and
// outstanding intent are dropped and any in-flight recalculation is
// cancelled. Closing an unknown session is a no-op.
func (s *Service) CloseEdit(viewID, sessionID string) error {
	v, err := s.lookupView(viewID)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch(s.now())

	if sess := v.findSession(sessionID); sess != nil {
		s.discardLocked(v, sess.Kind())
	}
	return nil
}

func (v *view) findSession(sessionID string) *editsession.Session {
	for _, sess := range v.sessions {
		if sess.ID() == sessionID {
			return sess
		}
	}
	return nil
}

// discardLocked resets and removes the session of kind. v.mu must be held.
func (s *Service) discardLocked(v *view, kind editsession.Kind) {
	sess, ok := v.sessions[kind]
	if !ok {
		return
	}
	sess.Reset()
	s.guard.Revoke(sess.ID())
	s.quoter.Cancel(sess.ID())
	delete(v.sessions, kind)
}

// scheduleDiscard removes a committed session after the success message
// had time to show, unless it was replaced or reopened meanwhile.
func (s *Service) scheduleDiscard(v *view, kind editsession.Kind, generation uint64) {
	time.AfterFunc(s.cfg.GetSuccessDisplayDelay(), func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		sess, ok := v.sessions[kind]
		if !ok || sess.Generation() != generation || sess.Phase() != editsession.Committed {
			return
		}
		s.discardLocked(v, kind)
	})
}

func (s *Service) observe(sessionID string, from, to editsession.Phase) {
	s.log.SessionTransition(sessionID, string(from), string(to))
}

func (s *Service) checkEditable(snap *domain.Snapshot) error {
	if snap.IsFallback {
		return apperr.Forbidden(readOnlyMsg)
	}
	if !snap.Status.IsAccepted() {
		return apperr.Forbidden(notEditableMsg).WithDetails(map[string]string{"status": string(snap.Status)})
	}
	return nil
}

// mutation is a validated change ready to be persisted.
type mutation struct {
	patch repository.Patch
	// apply updates the in-memory snapshot after the patch was persisted.
	apply    func(snap *domain.Snapshot)
	event    events.Event
	oldTotal int64
	newTotal int64
}

// commitRequest describes one guarded command.
type commitRequest struct {
	viewID    string
	sessionID string
	kind      editsession.Kind
	intent    guard.Intent
	// build validates the input against the current snapshot and session
	// and prepares the change. It must not modify either.
	build func(snap *domain.Snapshot, sess *editsession.Session) (*mutation, error)
}

// commit runs a guarded command. A command for a session that is not open
// or not ready to commit is refused, and so is one that does not present
// the outstanding intent: nothing is persisted and nothing changes.
// Refusals are not errors. The intent is checked before business rules run
// and consumed only once the change is valid. The view stays locked for the
// whole commit, so changes made from different modals of one page are
// applied one at a time.
func (s *Service) commit(ctx context.Context, req commitRequest) (*transport.CommitResponse, error) {
	v, err := s.lookupView(req.viewID)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch(s.now())
	log := s.log.WithContext(ctx)

	sess, ok := v.sessions[req.kind]
	if !ok || sess.ID() != req.sessionID {
		log.MutationRefused(string(req.intent.Trigger), req.sessionID, "session not open")
		return &transport.CommitResponse{Applied: false}, nil
	}
	if !sess.CanCommit() {
		log.MutationRefused(string(req.intent.Trigger), req.sessionID, "session not ready to commit")
		return &transport.CommitResponse{Applied: false, Session: s.sessionResponse(v, sess, nil)}, nil
	}
	if err := s.checkEditable(v.snapshot); err != nil {
		return nil, err
	}

	if !s.guard.Verify(sess.ID(), req.intent) {
		return &transport.CommitResponse{Applied: false, Session: s.sessionResponse(v, sess, nil)}, nil
	}

	m, err := req.build(v.snapshot, sess)
	if errors.Is(err, errPreviewOutdated) {
		log.MutationRefused(string(req.intent.Trigger), req.sessionID, "preview outdated")
		s.guard.Revoke(sess.ID())
		if err := sess.Invalidate(previewOutdatedMsg); err != nil {
			return nil, apperr.Conflict(err.Error())
		}
		return &transport.CommitResponse{
			Applied: true,
			Success: false,
			Error:   sess.LastError(),
			Session: s.sessionResponse(v, sess, nil),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if !s.guard.Admit(sess.ID(), req.intent) {
		return &transport.CommitResponse{Applied: false, Session: s.sessionResponse(v, sess, nil)}, nil
	}

	if err := sess.BeginCommit(); err != nil {
		return nil, apperr.Conflict(err.Error())
	}
	defer sess.Settle()

	commitCtx, cancel := context.WithTimeout(ctx, commitTimeout)
	defer cancel()

	if err := s.store.UpdateBooking(commitCtx, v.snapshot.ID, m.patch); err != nil {
		log.DatabaseError("update booking", err)
		_ = sess.CommitFailed(s.commitFailureMessage(err))
		retry := s.guard.Issue(sess.ID(), triggers[req.kind])
		return &transport.CommitResponse{
			Applied: true,
			Success: false,
			Error:   sess.LastError(),
			Session: s.sessionResponse(v, sess, &retry),
		}, nil
	}

	m.apply(v.snapshot)
	_ = sess.CommitSucceeded()
	log.MutationCommitted(v.snapshot.ID, string(req.kind), m.oldTotal, m.newTotal)
	if m.event != nil {
		s.bus.Publish(ctx, m.event)
	}

	var next *guard.Intent
	if closesOnCommit(req.kind) {
		s.scheduleDiscard(v, req.kind, sess.Generation())
	} else {
		issued := s.guard.Issue(sess.ID(), triggers[req.kind])
		next = &issued
	}

	booking := s.bookingResponse(v.snapshot)
	return &transport.CommitResponse{
		Applied: true,
		Success: true,
		Session: s.sessionResponse(v, sess, next),
		Booking: &booking,
	}, nil
}

func toIntent(in transport.Intent) guard.Intent {
	return guard.Intent{Trigger: guard.Trigger(in.Trigger), Token: in.Token}
}
