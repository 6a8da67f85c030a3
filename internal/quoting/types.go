// Package quoting turns a proposed pair of addresses into a distance and a
// new booking price by asking the external pricing service. Results are
// advisory: nothing here touches a booking.
package quoting

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// TripParameters are the booking facts the pricing service needs besides the addresses.
type TripParameters struct {
	VolumeCubicMeters float64
	ServiceTypes      []string
	LivingArea        float64
}

// Request asks for a price for moving between two addresses.
type Request struct {
	BookingID    string
	StartAddress string
	EndAddress   string
	Trip         TripParameters
}

// Result is a successful recalculation. Prices are whole kronor.
type Result struct {
	DistanceKm float64 `json:"distanceKm"`
	NewPrice   int64   `json:"newPrice"`
}

type recalculateRequest struct {
	BookingID          string             `json:"bookingId"`
	NewStartAddress    string             `json:"newStartAddress"`
	NewEndAddress      string             `json:"newEndAddress"`
	CurrentBookingData currentBookingData `json:"currentBookingData"`
}

type currentBookingData struct {
	VolymM3      float64  `json:"volym_m3"`
	ServiceTypes []string `json:"serviceTypes"`
	LivingArea   float64  `json:"livingArea"`
}

// recalculateResponse mirrors the pricing service payload. Numbers have
// been seen both as JSON numbers and as strings such as "12.4".
type recalculateResponse struct {
	Success    bool            `json:"success"`
	Distance   json.RawMessage `json:"distance"`
	DistanceKm json.RawMessage `json:"distanceKm"`
	NewPrice   json.RawMessage `json:"newPrice"`
	Error      string          `json:"error"`
}

func newWireRequest(req Request) recalculateRequest {
	serviceTypes := req.Trip.ServiceTypes
	if serviceTypes == nil {
		serviceTypes = []string{}
	}
	return recalculateRequest{
		BookingID:       req.BookingID,
		NewStartAddress: strings.TrimSpace(req.StartAddress),
		NewEndAddress:   strings.TrimSpace(req.EndAddress),
		CurrentBookingData: currentBookingData{
			VolymM3:      req.Trip.VolumeCubicMeters,
			ServiceTypes: serviceTypes,
			LivingArea:   req.Trip.LivingArea,
		},
	}
}

func parseNumber(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimSuffix(strings.TrimSpace(s), "km")
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.Replace(s, ",", ".", 1)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
