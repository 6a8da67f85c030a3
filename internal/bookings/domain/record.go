package domain

import (
	"encoding/json"
	"strings"
)

// RawRecord is a stored booking as returned by the booking fetch, before its
// shape is known.
type RawRecord struct {
	Data json.RawMessage
	// IsFallback is set when the store could not match the requested id
	// exactly and returned a substitute record.
	IsFallback bool
}

type customerRef struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type pricingBlock struct {
	TotalAfterRUT     flexNumber `json:"total_after_rut"`
	SlutgiltigKostnad flexNumber `json:"slutgiltig_kostnad"`
	Slutpris          flexNumber `json:"slutpris"`
}

// recordCommon holds the fields both stored shapes share.
type recordCommon struct {
	ID               flexString    `json:"id"`
	Status           string        `json:"status"`
	Name             string        `json:"name"`
	CustomerName     string        `json:"customer_name"`
	Email            string        `json:"email"`
	Phone            string        `json:"phone"`
	StartAddress     string        `json:"start_address"`
	EndAddress       string        `json:"end_address"`
	MoveDate         string        `json:"move_date"`
	MoveTime         string        `json:"move_time"`
	TotalPriceSnake  flexNumber    `json:"total_price"`
	TotalPrice       flexNumber    `json:"totalPrice"`
	Value            flexNumber    `json:"value"`
	Pricing          *pricingBlock `json:"pricing"`
	BookingReference string        `json:"booking_reference"`
	OrderNumber      string        `json:"orderNumber"`
	OrderNumberSnake string        `json:"order_number"`
	MovingBoxes      flexNumber    `json:"moving_boxes"`
	MoveDetails      *struct {
		VolymM3 flexNumber `json:"volym_m3"`
	} `json:"moveDetails"`
	Details Details `json:"details"`
}

// ConfirmedRecord is a row from the bookings table.
type ConfirmedRecord struct {
	recordCommon
	CustomerID         flexString `json:"customer_id"`
	ServiceTypes       []string   `json:"service_types"`
	AdditionalServices []string   `json:"additional_services"`
}

// RequestRecord is an accepted quote request that has not been converted
// into a bookings row.
type RequestRecord struct {
	recordCommon
	Customers    *customerRef `json:"customers"`
	ServiceTypes []string     `json:"serviceTypes"`
	Services     []LineItem   `json:"services"`
}

// Record is a decoded stored booking: exactly one of Confirmed or Request is set.
type Record struct {
	Shape      RecordShape
	Confirmed  *ConfirmedRecord
	Request    *RequestRecord
	IsFallback bool
}

// DecodeRecord decodes raw as a confirmed booking, else as a request, else
// fails with ErrUnknownRecordShape.
func DecodeRecord(raw RawRecord) (Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw.Data, &fields); err != nil {
		return Record{}, ErrUnknownRecordShape
	}

	if isConfirmedShape(fields) {
		var c ConfirmedRecord
		if err := json.Unmarshal(raw.Data, &c); err == nil && c.ID != "" {
			return Record{Shape: ShapeConfirmed, Confirmed: &c, IsFallback: raw.IsFallback}, nil
		}
	}

	if isRequestShape(fields) {
		var r RequestRecord
		if err := json.Unmarshal(raw.Data, &r); err == nil && r.ID != "" {
			return Record{Shape: ShapeRequest, Request: &r, IsFallback: raw.IsFallback}, nil
		}
	}

	return Record{}, ErrUnknownRecordShape
}

// A confirmed booking references its customer by id and carries its own
// start address; it never embeds a customers object.
func isConfirmedShape(fields map[string]json.RawMessage) bool {
	return present(fields, "customer_id") && present(fields, "start_address") && !present(fields, "customers")
}

func isRequestShape(fields map[string]json.RawMessage) bool {
	if !present(fields, "id") {
		return false
	}
	return present(fields, "customers") || present(fields, "details") || present(fields, "serviceTypes")
}

func present(fields map[string]json.RawMessage, key string) bool {
	v, ok := fields[key]
	if !ok {
		return false
	}
	s := strings.TrimSpace(string(v))
	return s != "" && s != "null" && s != `""`
}
