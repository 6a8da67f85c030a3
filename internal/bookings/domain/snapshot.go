package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RecordShape tells which stored representation a snapshot was built from.
type RecordShape string

const (
	ShapeConfirmed RecordShape = "confirmed"
	ShapeRequest   RecordShape = "request"
)

// Contact is the customer the booking belongs to.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Details is the open bag of auxiliary booking attributes (floors,
// elevators, property type, living area). Values keep their JSON types.
type Details map[string]any

// String returns the value at key as a trimmed string.
func (d Details) String(key string) string {
	switch v := d[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Float returns the value at key as a number, accepting numeric strings.
func (d Details) Float(key string) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(v), ",", ".", 1), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// LivingArea is the living area at the start address in square metres.
func (d Details) LivingArea() float64 {
	return d.Float("startLivingArea")
}

// Clone returns a shallow copy; nested values are shared.
func (d Details) Clone() Details {
	cp := make(Details, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp
}

// Snapshot is the normalised, in-memory read model of a stored booking.
type Snapshot struct {
	ID                   string
	Reference            string
	Status               Status
	Shape                RecordShape
	Customer             Contact
	ServiceTypes         []string
	AdditionalServiceIDs []string
	StartAddress         string
	EndAddress           string
	MoveDate             string
	MoveTime             string
	VolumeCubicMeters    float64
	Ledger               Ledger
	Details              Details
	IsFallback           bool
}

// Clone returns a copy that shares nothing mutable with s.
func (s *Snapshot) Clone() *Snapshot {
	cp := *s
	cp.ServiceTypes = append([]string(nil), s.ServiceTypes...)
	cp.AdditionalServiceIDs = append([]string(nil), s.AdditionalServiceIDs...)
	cp.Ledger = s.Ledger.Clone()
	cp.Details = s.Details.Clone()
	return &cp
}

// TotalPrice is the ledger total.
func (s *Snapshot) TotalPrice() int64 { return s.Ledger.Total() }

// MoveStart combines move date and time in loc.
func (s *Snapshot) MoveStart(loc *time.Location) (time.Time, error) {
	clock := s.MoveTime
	if clock == "" {
		clock = DefaultMoveTime
	}
	return time.ParseInLocation("2006-01-02 15:04", s.MoveDate+" "+clock, loc)
}
