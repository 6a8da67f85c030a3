package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"booking_portal_backend/internal/bookings/domain"
	"booking_portal_backend/internal/bookings/editsession"
	"booking_portal_backend/internal/bookings/repository"
	"booking_portal_backend/internal/bookings/transport"
	"booking_portal_backend/internal/events"
	"booking_portal_backend/platform/apperr"
	"booking_portal_backend/platform/money"
)

const maxVolumeCubicMeters = 500

// PreviewVolume prices a new moving volume without saving anything.
func (s *Service) PreviewVolume(viewID, sessionID string, req transport.VolumePreviewRequest) (*transport.VolumePreviewResponse, error) {
	if err := validateVolume(req.Volume); err != nil {
		return nil, err
	}

	v, err := s.lookupView(viewID)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch(s.now())

	if sess, ok := v.sessions[editsession.KindVolume]; !ok || sess.ID() != sessionID {
		return nil, apperr.NotFound(sessionNotFoundMsg)
	}

	oldPrice := v.snapshot.TotalPrice()
	newPrice := s.catalog.VolumeTotal(oldPrice, v.snapshot.VolumeCubicMeters, req.Volume)
	return &transport.VolumePreviewResponse{
		OldVolume:           v.snapshot.VolumeCubicMeters,
		NewVolume:           req.Volume,
		OldPrice:            oldPrice,
		NewPrice:            newPrice,
		PriceDelta:          newPrice - oldPrice,
		PriceDeltaFormatted: money.SignedSEK(newPrice - oldPrice),
	}, nil
}

// SaveVolume reprices the booking for a new moving volume and persists it.
func (s *Service) SaveVolume(ctx context.Context, viewID, sessionID string, req transport.SaveVolumeRequest) (*transport.CommitResponse, error) {
	if err := validateVolume(req.Volume); err != nil {
		return nil, err
	}
	return s.commit(ctx, commitRequest{
		viewID:    viewID,
		sessionID: sessionID,
		kind:      editsession.KindVolume,
		intent:    toIntent(req.Intent),
		build: func(snap *domain.Snapshot, _ *editsession.Session) (*mutation, error) {
			return s.buildVolumeChange(snap, req.Volume)
		},
	})
}

func (s *Service) buildVolumeChange(snap *domain.Snapshot, volume float64) (*mutation, error) {
	oldTotal := snap.TotalPrice()
	newTotal := s.catalog.VolumeTotal(oldTotal, snap.VolumeCubicMeters, volume)

	ledger := snap.Ledger.Clone()
	if err := ledger.ReplaceVolumePrice(newTotal); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	details := map[string]any{"estimatedVolume": volume}
	if ledger.Reconcile() {
		servicesJSON, err := ledger.ServicesJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode line items: %w", err)
		}
		details["full_services_json"] = servicesJSON
	}

	return &mutation{
		patch: repository.Patch{TotalPrice: &newTotal, Details: details},
		apply: func(snap *domain.Snapshot) {
			snap.VolumeCubicMeters = volume
			snap.Ledger = ledger
			mergeDetails(snap, details)
		},
		event: changedEvent(snap, events.ChangeVolume, oldTotal, newTotal,
			fmt.Sprintf("Volym: %g m³", volume),
			"Nytt pris: "+money.SEK(newTotal),
		),
		oldTotal: oldTotal,
		newTotal: newTotal,
	}, nil
}

func validateVolume(volume float64) error {
	if volume <= 0 || volume > maxVolumeCubicMeters {
		return apperr.Validation(fmt.Sprintf("volume must be between 1 and %d m³", maxVolumeCubicMeters))
	}
	return nil
}

// SaveSchedule moves the booking to a new date and time. Both are required
// and the new start must lie in the future. The price does not change.
func (s *Service) SaveSchedule(ctx context.Context, viewID, sessionID string, req transport.SaveScheduleRequest) (*transport.CommitResponse, error) {
	moveDate := strings.TrimSpace(req.MoveDate)
	moveTime := strings.TrimSpace(req.MoveTime)
	if moveDate == "" || moveTime == "" {
		return nil, apperr.Validation("both date and time are required")
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", moveDate+" "+moveTime, s.loc)
	if err != nil {
		return nil, apperr.Validation("date must be YYYY-MM-DD and time HH:MM")
	}
	if !start.After(s.now()) {
		return nil, apperr.Validation("the new move date must be in the future")
	}

	return s.commit(ctx, commitRequest{
		viewID:    viewID,
		sessionID: sessionID,
		kind:      editsession.KindSchedule,
		intent:    toIntent(req.Intent),
		build: func(snap *domain.Snapshot, _ *editsession.Session) (*mutation, error) {
			total := snap.TotalPrice()
			return &mutation{
				patch: repository.Patch{MoveDate: &moveDate, MoveTime: &moveTime},
				apply: func(snap *domain.Snapshot) {
					snap.MoveDate = moveDate
					snap.MoveTime = moveTime
				},
				event: changedEvent(snap, events.ChangeSchedule, total, total,
					"Nytt datum: "+moveDate,
					"Ny tid: "+moveTime,
				),
				oldTotal: total,
				newTotal: total,
			}, nil
		},
	})
}

// ToggleService adds the add-on when the booking lacks it and removes it
// otherwise. Only add-on items change; the total becomes their sum.
func (s *Service) ToggleService(ctx context.Context, viewID, sessionID string, req transport.ToggleServiceRequest) (*transport.CommitResponse, error) {
	addOn, ok := s.catalog.AddOn(req.AddOnID)
	if !ok {
		return nil, apperr.Validation(fmt.Sprintf("unknown service %q", req.AddOnID))
	}
	if addOn.Name == s.catalog.BaseService {
		return nil, apperr.Validation(domain.ErrBaseServiceToggle.Error())
	}

	return s.commit(ctx, commitRequest{
		viewID:    viewID,
		sessionID: sessionID,
		kind:      editsession.KindServices,
		intent:    toIntent(req.Intent),
		build: func(snap *domain.Snapshot, _ *editsession.Session) (*mutation, error) {
			oldTotal := snap.TotalPrice()
			price := s.catalog.AddOnPrice(addOn, snap.Details.LivingArea())

			ledger := snap.Ledger.Clone()
			added, err := ledger.ToggleAddOn(domain.AddOnRef{ID: addOn.ID, Name: addOn.Name}, price)
			if err != nil {
				return nil, apperr.Validation(err.Error())
			}
			servicesJSON, err := ledger.ServicesJSON()
			if err != nil {
				return nil, fmt.Errorf("failed to encode line items: %w", err)
			}

			serviceTypes := snap.ServiceTypes
			if addOn.ServiceType != "" {
				serviceTypes = toggleTag(serviceTypes, addOn.ServiceType, added)
			}
			details := map[string]any{
				"additionalServices": s.presentAddOns(ledger),
				"full_services_json": servicesJSON,
			}
			newTotal := ledger.Total()

			line := "Borttagen tjänst: " + addOn.Name
			if added {
				line = fmt.Sprintf("Tillagd tjänst: %s (%s)", addOn.Name, money.SEK(price))
			}

			return &mutation{
				patch: repository.Patch{
					TotalPrice:   &newTotal,
					ServiceTypes: serviceTypes,
					Details:      details,
				},
				apply: func(snap *domain.Snapshot) {
					snap.Ledger = ledger
					snap.ServiceTypes = serviceTypes
					mergeDetails(snap, details)
				},
				event:    changedEvent(snap, events.ChangeServices, oldTotal, newTotal, line, "Nytt pris: "+money.SEK(newTotal)),
				oldTotal: oldTotal,
				newTotal: newTotal,
			}, nil
		},
	})
}

// presentAddOns lists the catalog ids of the add-ons on the ledger.
func (s *Service) presentAddOns(ledger domain.Ledger) []string {
	ids := make([]string, 0)
	for _, a := range s.catalog.AddOns {
		if ledger.Has(a.Name) {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// toggleTag returns a copy of tags with tag present or absent.
func toggleTag(tags []string, tag string, present bool) []string {
	out := make([]string, 0, len(tags)+1)
	found := false
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			found = true
			if !present {
				continue
			}
		}
		out = append(out, t)
	}
	if present && !found {
		out = append(out, tag)
	}
	return out
}

func changedEvent(snap *domain.Snapshot, kind events.ChangeKind, oldTotal, newTotal int64, summary ...string) events.BookingChanged {
	return events.BookingChanged{
		BaseEvent:     events.NewBaseEvent(),
		BookingID:     snap.ID,
		Reference:     snap.Reference,
		Kind:          kind,
		CustomerName:  snap.Customer.Name,
		CustomerEmail: snap.Customer.Email,
		OldTotal:      oldTotal,
		NewTotal:      newTotal,
		Summary:       summary,
	}
}
