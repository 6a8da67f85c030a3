package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"booking_portal_backend/internal/bookings/domain"
	"booking_portal_backend/internal/bookings/editsession"
	"booking_portal_backend/internal/bookings/guard"
	"booking_portal_backend/internal/bookings/repository"
	"booking_portal_backend/internal/bookings/transport"
	"booking_portal_backend/internal/events"
	"booking_portal_backend/internal/quoting"
	"booking_portal_backend/platform/apperr"
	"booking_portal_backend/platform/money"
	"booking_portal_backend/platform/sanitize"
	"booking_portal_backend/platform/validator"
)

const previewFailedMsg = "we could not calculate a price for these addresses, check them and try again"

// ProposeAddress asks for a new price for the proposed addresses. The call
// blocks while the price is recalculated; the view is not locked meanwhile.
// A newer proposal for the same session supersedes this one, in which case
// the session is returned as it is. On success the session waits for
// confirmation and the response carries the confirm intent.
func (s *Service) ProposeAddress(ctx context.Context, viewID, sessionID string, req transport.ProposeAddressRequest) (*transport.SessionResponse, error) {
	proposal := editsession.AddressProposal{
		StartAddress:  sanitize.Line(req.StartAddress),
		EndAddress:    sanitize.Line(req.EndAddress),
		StartFloor:    sanitize.Line(req.StartFloor),
		EndFloor:      sanitize.Line(req.EndFloor),
		StartElevator: sanitize.Line(req.StartElevator),
		EndElevator:   sanitize.Line(req.EndElevator),
	}
	if !validator.IsAddress(proposal.StartAddress) || !validator.IsAddress(proposal.EndAddress) {
		return nil, apperr.Validation(fmt.Sprintf("both addresses need at least %d characters", validator.MinAddressLength))
	}

	v, err := s.lookupView(viewID)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.touch(s.now())
	sess, ok := v.sessions[editsession.KindAddress]
	if !ok || sess.ID() != sessionID {
		v.mu.Unlock()
		return nil, apperr.NotFound(sessionNotFoundMsg)
	}
	if err := s.checkEditable(v.snapshot); err != nil {
		v.mu.Unlock()
		return nil, err
	}
	attempt, err := sess.BeginPreview(proposal)
	if err != nil {
		v.mu.Unlock()
		return nil, apperr.Conflict(err.Error())
	}
	// A new proposal invalidates any confirm intent handed out for the old one.
	s.guard.Revoke(sess.ID())
	oldPrice := v.snapshot.TotalPrice()
	basis := priceBasis(v.snapshot)
	quoteReq := quoting.Request{
		BookingID:    v.snapshot.ID,
		StartAddress: proposal.StartAddress,
		EndAddress:   proposal.EndAddress,
		Trip: quoting.TripParameters{
			VolumeCubicMeters: v.snapshot.VolumeCubicMeters,
			ServiceTypes:      append([]string(nil), v.snapshot.ServiceTypes...),
			LivingArea:        v.snapshot.Details.LivingArea(),
		},
	}
	v.mu.Unlock()

	result, ok := s.quoter.Recalculate(ctx, sess.ID(), quoteReq)

	v.mu.Lock()
	defer v.mu.Unlock()
	if current := v.sessions[editsession.KindAddress]; current != sess {
		return nil, apperr.Gone(sessionNotFoundMsg)
	}

	if !ok {
		err = sess.PreviewFailed(attempt, previewFailedMsg)
	} else {
		preview := editsession.NewPreview(result.DistanceKm, oldPrice, result.NewPrice)
		preview.Basis = basis
		err = sess.PreviewReady(attempt, preview)
	}
	switch {
	case errors.Is(err, editsession.ErrStalePreview):
		return s.sessionResponse(v, sess, nil), nil
	case err != nil:
		return nil, apperr.Conflict(err.Error())
	case !ok:
		return s.sessionResponse(v, sess, nil), nil
	}

	intent := s.guard.Issue(sess.ID(), guard.TriggerAddressConfirm)
	return s.sessionResponse(v, sess, &intent), nil
}

// UndoAddress rejects the preview and returns to editing with the proposed
// values kept. The outstanding confirm intent is revoked.
func (s *Service) UndoAddress(viewID, sessionID string) (*transport.SessionResponse, error) {
	v, err := s.lookupView(viewID)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch(s.now())

	sess, ok := v.sessions[editsession.KindAddress]
	if !ok || sess.ID() != sessionID {
		return nil, apperr.NotFound(sessionNotFoundMsg)
	}
	if err := sess.Undo(); err != nil {
		return nil, apperr.Conflict(err.Error())
	}
	s.guard.Revoke(sess.ID())
	return s.sessionResponse(v, sess, nil), nil
}

// ConfirmAddress commits the previewed address change. It is the only
// operation that persists an address or a distance-based price. A failed
// commit keeps the preview so the customer can retry without recalculating.
func (s *Service) ConfirmAddress(ctx context.Context, viewID, sessionID string, req transport.ConfirmAddressRequest) (*transport.CommitResponse, error) {
	return s.commit(ctx, commitRequest{
		viewID:    viewID,
		sessionID: sessionID,
		kind:      editsession.KindAddress,
		intent:    toIntent(req.Intent),
		build:     s.buildAddressChange,
	})
}

func (s *Service) buildAddressChange(snap *domain.Snapshot, sess *editsession.Session) (*mutation, error) {
	proposal, okProposal := sess.Proposal()
	preview, okPreview := sess.Preview()
	if !okProposal || !okPreview {
		return nil, apperr.Conflict("there is no confirmed price to save")
	}
	if preview.Basis != priceBasis(snap) {
		return nil, errPreviewOutdated
	}

	ledger := snap.Ledger.Clone()
	if err := ledger.ApplyConfirmedAddressChange(preview.NewPrice); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	details := map[string]any{
		"calculatedDistance": roundKm(preview.DistanceKm),
	}
	setIfPresent(details, "startFloor", proposal.StartFloor)
	setIfPresent(details, "endFloor", proposal.EndFloor)
	setIfPresent(details, "startElevator", proposal.StartElevator)
	setIfPresent(details, "endElevator", proposal.EndElevator)
	if ledger.Reconcile() {
		servicesJSON, err := ledger.ServicesJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode line items: %w", err)
		}
		details["full_services_json"] = servicesJSON
	}

	newTotal := ledger.Total()
	return &mutation{
		patch: repository.Patch{
			StartAddress: &proposal.StartAddress,
			EndAddress:   &proposal.EndAddress,
			TotalPrice:   &newTotal,
			Details:      details,
		},
		apply: func(snap *domain.Snapshot) {
			snap.StartAddress = proposal.StartAddress
			snap.EndAddress = proposal.EndAddress
			snap.Ledger = ledger
			mergeDetails(snap, details)
		},
		event: changedEvent(snap, events.ChangeAddress, snap.TotalPrice(), newTotal,
			"Från: "+proposal.StartAddress,
			"Till: "+proposal.EndAddress,
			fmt.Sprintf("Avstånd: %.1f km", preview.DistanceKm),
			"Nytt pris: "+money.SEK(newTotal),
		),
		oldTotal: snap.TotalPrice(),
		newTotal: newTotal,
	}, nil
}

// priceBasis fingerprints the booking values an address price depends on.
// A preview is only valid while the booking still has the same basis.
func priceBasis(snap *domain.Snapshot) string {
	tags := make([]string, len(snap.ServiceTypes))
	for i, t := range snap.ServiceTypes {
		tags[i] = strings.ToLower(t)
	}
	sort.Strings(tags)
	return fmt.Sprintf("%d|%g|%g|%s", snap.TotalPrice(), snap.VolumeCubicMeters, snap.Details.LivingArea(), strings.Join(tags, ","))
}

func roundKm(km float64) float64 {
	return math.Round(km*10) / 10
}

func setIfPresent(details map[string]any, key, value string) {
	if value != "" {
		details[key] = value
	}
}

func mergeDetails(snap *domain.Snapshot, details map[string]any) {
	if snap.Details == nil {
		snap.Details = domain.Details{}
	}
	for k, v := range details {
		snap.Details[k] = v
	}
}
