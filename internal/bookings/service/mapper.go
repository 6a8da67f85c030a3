package service

import (
	"sort"

	"booking_portal_backend/internal/bookings/domain"
	"booking_portal_backend/internal/bookings/editsession"
	"booking_portal_backend/internal/bookings/guard"
	"booking_portal_backend/internal/bookings/transport"
	"booking_portal_backend/platform/money"
	"booking_portal_backend/platform/phone"
)

// viewResponse renders v. v.mu must be held.
func (s *Service) viewResponse(v *view) *transport.ViewResponse {
	sessions := make([]transport.SessionResponse, 0, len(v.sessions))
	for _, sess := range v.sessions {
		sessions = append(sessions, *s.sessionResponse(v, sess, nil))
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Kind < sessions[j].Kind })

	return &transport.ViewResponse{
		ViewID:   v.id,
		ReadOnly: s.checkEditable(v.snapshot) != nil,
		Booking:  s.bookingResponse(v.snapshot),
		Sessions: sessions,
	}
}

func (s *Service) bookingResponse(snap *domain.Snapshot) transport.BookingResponse {
	items := snap.Ledger.Items()
	lineItems := make([]transport.LineItemResponse, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, transport.LineItemResponse{
			ID:             item.ID,
			Name:           item.Name,
			Price:          item.Price,
			PriceFormatted: money.SEK(item.Price),
		})
	}

	return transport.BookingResponse{
		ID:        snap.ID,
		Reference: snap.Reference,
		Status:    string(snap.Status),
		Customer: transport.CustomerResponse{
			Name:         snap.Customer.Name,
			Email:        snap.Customer.Email,
			Phone:        snap.Customer.Phone,
			PhoneDisplay: phone.Display(snap.Customer.Phone),
		},
		StartAddress:        snap.StartAddress,
		EndAddress:          snap.EndAddress,
		MoveDate:            snap.MoveDate,
		MoveTime:            snap.MoveTime,
		VolumeCubicMeters:   snap.VolumeCubicMeters,
		ServiceTypes:        append([]string{}, snap.ServiceTypes...),
		LineItems:           lineItems,
		TotalPrice:          snap.TotalPrice(),
		TotalPriceFormatted: money.SEK(snap.TotalPrice()),
		Details:             snap.Details.Clone(),
		IsFallback:          snap.IsFallback,
	}
}

// sessionResponse renders sess. intent is set only by the call that minted it.
func (s *Service) sessionResponse(v *view, sess *editsession.Session, intent *guard.Intent) *transport.SessionResponse {
	resp := &transport.SessionResponse{
		ID:     sess.ID(),
		Kind:   string(sess.Kind()),
		Phase:  string(sess.Phase()),
		Saving: sess.Saving(),
		Error:  sess.LastError(),
	}

	if p, ok := sess.Proposal(); ok {
		resp.Proposal = &transport.AddressProposalResponse{
			StartAddress:  p.StartAddress,
			EndAddress:    p.EndAddress,
			StartFloor:    p.StartFloor,
			EndFloor:      p.EndFloor,
			StartElevator: p.StartElevator,
			EndElevator:   p.EndElevator,
		}
	}
	if p, ok := sess.Preview(); ok {
		resp.Preview = &transport.PreviewResponse{
			DistanceKm:          p.DistanceKm,
			OldPrice:            p.OldPrice,
			NewPrice:            p.NewPrice,
			PriceDelta:          p.PriceDelta,
			PriceDeltaFormatted: money.SignedSEK(p.PriceDelta),
		}
	}
	if sess.Kind() == editsession.KindCancellation && sess.Phase() != editsession.Committed {
		if terms, err := s.cancellationTerms(v.snapshot); err == nil {
			resp.Cancellation = &transport.CancellationTermsResponse{
				Free:           terms.Free,
				Fee:            terms.Fee,
				FeeFormatted:   money.SEK(terms.Fee),
				HoursUntilMove: terms.HoursUntilMove,
			}
		}
	}
	switch sess.Kind() {
	case editsession.KindChecklist:
		resp.Checklist = checklistResponse(v.snapshot.Details.ChecklistProgress())
	case editsession.KindReview:
		if review, ok := v.snapshot.Details.Review(); ok {
			resp.Review = reviewResponse(review)
		}
	}
	if intent != nil {
		resp.Intent = &transport.Intent{Trigger: string(intent.Trigger), Token: intent.Token}
	}
	return resp
}

func checklistResponse(progress domain.ChecklistProgress) *transport.ChecklistResponse {
	items := domain.ChecklistItems()
	resp := &transport.ChecklistResponse{
		Items:   make([]transport.ChecklistItemResponse, 0, len(items)),
		Done:    progress.Done(),
		Total:   len(items),
		Percent: progress.Percent(),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, transport.ChecklistItemResponse{
			ID:    item.ID,
			Phase: item.Phase,
			Done:  progress[item.ID],
		})
	}
	return resp
}

func reviewResponse(r domain.Review) *transport.ReviewResponse {
	return &transport.ReviewResponse{
		Rating:      r.Rating,
		Feedback:    r.Feedback,
		SubmittedAt: r.SubmittedAt,
		FollowUp:    r.NeedsFollowUp(),
	}
}
