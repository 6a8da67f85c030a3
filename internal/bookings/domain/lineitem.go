package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LineItem is one billable component of a booking. Prices are whole kronor.
type LineItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// UnmarshalJSON accepts stored line items whose id or price was written as a
// number or a numeric string.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    flexString `json:"id"`
		Name  string     `json:"name"`
		Price flexNumber `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	li.ID = string(raw.ID)
	li.Name = strings.TrimSpace(raw.Name)
	li.Price = raw.Price.Kronor()
	return nil
}

// flexNumber decodes a JSON number, a numeric string, or null.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(f)
	return nil
}

// Kronor rounds to whole kronor; negative values are clamped to zero.
func (n flexNumber) Kronor() int64 {
	if n <= 0 || math.IsNaN(float64(n)) {
		return 0
	}
	return int64(math.Round(float64(n)))
}

// flexString decodes a JSON string or number as a string.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = flexString(num.String())
		return nil
	}
	*s = ""
	return nil
}

func sumPrices(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Price
	}
	return total
}
