package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/logger"
	"booking_portal_backend/platform/validator"
)

type Service struct {
	client       *http.Client
	searchURL    string
	countryCodes string
	log          *logger.Logger
}

func NewService(cfg config.MapsConfig, log *logger.Logger) *Service {
	return &Service{
		client:       &http.Client{Timeout: 5 * time.Second},
		searchURL:    cfg.GetMapsSearchURL(),
		countryCodes: cfg.GetMapsCountryCodes(),
		log:          log,
	}
}

// Suggest resolves a partial address to candidates. Input shorter than the
// minimum address length yields no candidates and no upstream call.
func (s *Service) Suggest(ctx context.Context, partial string) ([]Candidate, error) {
	query := strings.TrimSpace(partial)
	if !validator.IsAddress(query) {
		return []Candidate{}, nil
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	params.Add("limit", "5")
	if s.countryCodes != "" {
		params.Add("countrycodes", s.countryCodes)
	}

	reqURL := fmt.Sprintf("%s?%s", s.searchURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", "BookingPortal/1.0")
	req.Header.Set("Accept-Language", "sv")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.ExternalCallFailed("nominatim", err)
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		s.log.Error("nominatim upstream error", "status", resp.StatusCode)
		return nil, fmt.Errorf("upstream api error: %d", resp.StatusCode)
	}

	var rawResults []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&rawResults); err != nil {
		s.log.Error("failed to decode nominatim payload", "error", err)
		return nil, err
	}

	candidates := make([]Candidate, 0, len(rawResults))
	for _, raw := range rawResults {
		candidate, ok := buildCandidate(raw)
		if !ok {
			continue
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

func buildCandidate(raw nominatimResponse) (Candidate, bool) {
	if raw.Address.Road == "" {
		return Candidate{}, false
	}

	city := pickCity(raw.Address)
	if city == "" {
		return Candidate{}, false
	}

	candidate := Candidate{
		Street:      raw.Address.Road,
		HouseNumber: raw.Address.HouseNumber,
		ZipCode:     raw.Address.Postcode,
		City:        city,
		Lat:         raw.Lat,
		Lon:         raw.Lon,
	}

	candidate.Description = buildDescription(candidate)

	return candidate, true
}

func pickCity(address nominatimAddress) string {
	if address.City != "" {
		return address.City
	}
	if address.Town != "" {
		return address.Town
	}
	if address.Village != "" {
		return address.Village
	}
	if address.Municipality != "" {
		return address.Municipality
	}
	return address.Hamlet
}

// buildDescription formats "Storgatan 1, 111 22 Stockholm".
func buildDescription(c Candidate) string {
	parts := []string{c.Street}
	if c.HouseNumber != "" {
		parts = append(parts, c.HouseNumber)
	}
	parts = append(parts, ",")
	if c.ZipCode != "" {
		parts = append(parts, c.ZipCode)
	}
	parts = append(parts, c.City)

	description := strings.Join(parts, " ")
	description = strings.ReplaceAll(description, " ,", ",")
	return strings.TrimSpace(description)
}
