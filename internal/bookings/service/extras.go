package service

import (
	"context"

	"booking_portal_backend/internal/bookings/transport"
	"booking_portal_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

const photoListConcurrency = 3

// AdditionalServices lists services staff added on site. They are shown
// next to the booking and never merged into its line items or total.
func (s *Service) AdditionalServices(ctx context.Context, viewID string) (*transport.AdditionalServicesResponse, error) {
	v, err := s.lookupView(viewID)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.touch(s.now())
	bookingID := v.snapshot.ID
	v.mu.Unlock()

	items, err := s.store.ListAdditionalServices(ctx, bookingID)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("list additional services", err)
		return nil, err
	}

	resp := &transport.AdditionalServicesResponse{
		AdditionalServices: make([]transport.AdditionalServiceResponse, 0, len(items)),
	}
	for _, item := range items {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		total := item.Price * int64(quantity)
		resp.AdditionalServices = append(resp.AdditionalServices, transport.AdditionalServiceResponse{
			ID:        item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  quantity,
			Unit:      item.Unit,
			Total:     total,
			CreatedAt: item.CreatedAt,
		})
		resp.TotalAdditionalCost += total
	}
	return resp, nil
}

// Photos returns the crew's job photos grouped by the booking's services.
// Photos are stored under "<booking id>/<service type>/".
func (s *Service) Photos(ctx context.Context, viewID string) (*transport.PhotosResponse, error) {
	v, err := s.lookupView(viewID)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.touch(s.now())
	bookingID := v.snapshot.ID
	serviceTypes := append([]string(nil), v.snapshot.ServiceTypes...)
	v.mu.Unlock()

	groups := make([]transport.PhotoGroupResponse, len(serviceTypes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(photoListConcurrency)
	for i, tag := range serviceTypes {
		g.Go(func() error {
			photos, err := s.photos.ListPhotos(gctx, s.photoBucket, bookingID+"/"+tag+"/")
			if err != nil {
				return err
			}
			groups[i] = transport.PhotoGroupResponse{
				ServiceType: tag,
				Label:       s.serviceLabel(tag),
				Photos:      photos,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.WithContext(ctx).ExternalCallFailed("photo storage", err)
		return nil, apperr.Unavailable("photos are not available right now, please try again later", err)
	}

	resp := &transport.PhotosResponse{Groups: make([]transport.PhotoGroupResponse, 0, len(groups))}
	for _, group := range groups {
		if len(group.Photos) > 0 {
			resp.Groups = append(resp.Groups, group)
		}
	}
	return resp, nil
}

func (s *Service) serviceLabel(tag string) string {
	if st, ok := s.catalog.ServiceTypes[tag]; ok && st.Name != "" {
		return st.Name
	}
	return tag
}
