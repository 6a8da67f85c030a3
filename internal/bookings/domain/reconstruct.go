package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"booking_portal_backend/internal/pricing"
	"booking_portal_backend/platform/phone"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultMoveTime is used when a record has no move time.
	DefaultMoveTime = "08:00"
	// UnknownCustomerName is shown when a record carries no customer name.
	UnknownCustomerName = "Ej angivet"
	// ReferencePrefix prefixes references derived from the booking id.
	ReferencePrefix = "NF-"
)

var titleCaser = cases.Title(language.Swedish)

// Reconstruct builds a Snapshot from a decoded record. It fails with
// *NotAcceptedError for bookings that are not accepted and with
// *PriceResolutionError when no usable price exists.
func Reconstruct(rec Record, catalog *pricing.Catalog) (*Snapshot, error) {
	var (
		common       *recordCommon
		serviceTypes []string
		additional   []string
		legacyItems  []LineItem
		customer     customerRef
	)

	switch rec.Shape {
	case ShapeConfirmed:
		c := rec.Confirmed
		common = &c.recordCommon
		serviceTypes = c.ServiceTypes
		additional = c.AdditionalServices
		if len(additional) == 0 {
			additional = stringList(c.Details["additional_services"])
		}
	case ShapeRequest:
		r := rec.Request
		common = &r.recordCommon
		serviceTypes = r.ServiceTypes
		additional = stringList(r.Details["additionalBusinessServices"])
		legacyItems = r.Services
		if r.Customers != nil {
			customer = *r.Customers
		}
	default:
		return nil, ErrUnknownRecordShape
	}

	details := common.Details
	if details == nil {
		details = Details{}
	}

	status := Status(common.Status)
	if !status.IsAccepted() {
		return nil, &NotAcceptedError{Status: status}
	}

	if len(serviceTypes) == 0 {
		serviceTypes = []string{"moving"}
	}

	total := resolveTotal(common, catalog, serviceTypes)
	if total <= 0 {
		return nil, &PriceResolutionError{BookingID: string(common.ID)}
	}

	items := storedLineItems(details)
	if len(items) == 0 {
		items = nonEmpty(legacyItems)
	}
	if len(items) == 0 {
		items = synthesizeLineItems(serviceTypes, details.LivingArea(), total, catalog)
	}
	items = appendIncluded(items, additional, details, common.MovingBoxes, catalog)
	if len(items) == 0 {
		items = []LineItem{{ID: "service-0", Name: catalog.BaseService, Price: total}}
	}

	if sum := sumPrices(items); sum > 0 && sum != total {
		total = sum
	}

	snap := &Snapshot{
		ID:                   string(common.ID),
		Reference:            resolveReference(common),
		Status:               status,
		Shape:                rec.Shape,
		Customer:             resolveContact(common, details, customer),
		ServiceTypes:         append([]string(nil), serviceTypes...),
		AdditionalServiceIDs: additional,
		StartAddress:         firstNonEmpty(common.StartAddress, details.String("startAddress")),
		EndAddress:           firstNonEmpty(common.EndAddress, details.String("endAddress")),
		MoveDate:             firstNonEmpty(common.MoveDate, details.String("moveDate")),
		MoveTime:             firstNonEmpty(common.MoveTime, details.String("moveTime"), details.String("time"), DefaultMoveTime),
		VolumeCubicMeters:    resolveVolume(common, details, catalog),
		Ledger:               NewLedger(catalog.BaseService, items, total),
		Details:              details,
		IsFallback:           rec.IsFallback,
	}
	return snap, nil
}

func resolveTotal(c *recordCommon, catalog *pricing.Catalog, serviceTypes []string) int64 {
	candidates := []flexNumber{c.TotalPriceSnake, c.TotalPrice, c.Value}
	if c.Pricing != nil {
		candidates = append(candidates, c.Pricing.TotalAfterRUT, c.Pricing.SlutgiltigKostnad, c.Pricing.Slutpris)
	}
	for _, n := range candidates {
		if v := n.Kronor(); v > 0 {
			return v
		}
	}
	return catalog.NaiveTotal(serviceTypes)
}

// storedLineItems reads details.full_services_json, which older writers
// stored either as a JSON string or as an inline array. Parse failures
// yield no items.
func storedLineItems(details Details) []LineItem {
	raw, ok := details["full_services_json"]
	if !ok || raw == nil {
		return nil
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		data = encoded
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return nonEmpty(items)
}

// synthesizeLineItems prices each service tag. Area-priced services use the
// catalog formula; the base move takes whatever remains of the stored total
// so the items add up to what the customer accepted.
func synthesizeLineItems(tags []string, livingArea float64, total int64, catalog *pricing.Catalog) []LineItem {
	items := make([]LineItem, 0, len(tags))
	baseIndex := -1
	var others int64

	for i, tag := range tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		st, known := catalog.ServiceTypes[key]
		item := LineItem{ID: fmt.Sprintf("service-%d", i), Name: tag}

		switch {
		case known && st.Name == catalog.BaseService:
			item.Name = st.Name
			baseIndex = len(items)
		case known && st.AddOn != "":
			item.Name = st.Name
			if addOn, ok := catalog.AddOn(st.AddOn); ok {
				item.Price = catalog.AddOnPrice(addOn, livingArea)
			}
		case known:
			item.Name = st.Name
		}
		others += item.Price
		items = append(items, item)
	}

	if baseIndex >= 0 {
		base := total - others
		if base < 0 {
			base = total
		}
		items[baseIndex].Price = base
	}
	return items
}

// appendIncluded adds services and boxes that are already included in the
// stored total as zero-priced items, skipping names already present.
func appendIncluded(items []LineItem, additional []string, details Details, movingBoxesCol flexNumber, catalog *pricing.Catalog) []LineItem {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		seen[item.Name] = true
	}
	add := func(id, name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		items = append(items, LineItem{ID: id, Name: name})
	}

	for i, id := range additional {
		name := id
		if mapped, ok := catalog.AdditionalServices[id]; ok {
			name = mapped
		}
		add(fmt.Sprintf("additional-%d", i), name)
	}

	boxes := int64(details.Float("movingBoxes"))
	if boxes <= 0 {
		boxes = movingBoxesCol.Kronor()
	}
	if boxes > 0 {
		add("moving-boxes", fmt.Sprintf("%s (%d st)", catalog.MovingBoxesName, boxes))
	}

	if rental, ok := details["rentalBoxes"].(map[string]any); ok {
		kinds := make([]string, 0, len(rental))
		for kind := range rental {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		nested := Details(rental)
		for _, kind := range kinds {
			count := int64(nested.Float(kind))
			if count <= 0 {
				continue
			}
			name := kind
			if mapped, ok := catalog.RentalBoxes[kind]; ok {
				name = mapped
			}
			add("rental-"+kind, fmt.Sprintf("%s (%d st)", name, count))
		}
	}
	return items
}

func resolveReference(c *recordCommon) string {
	if ref := firstNonEmpty(c.BookingReference, c.OrderNumber, c.OrderNumberSnake); ref != "" {
		return ref
	}
	return DerivedReference(string(c.ID))
}

// DerivedReference is the reference shown for records without a stored one:
// the prefix plus the first eight characters of the id without dashes.
func DerivedReference(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return ReferencePrefix + strings.ToUpper(compact)
}

func resolveContact(c *recordCommon, details Details, customer customerRef) Contact {
	name := firstNonEmpty(c.Name, details.String("name"), customer.Name, c.CustomerName)
	if name == "" {
		name = UnknownCustomerName
	} else {
		name = titleCaser.String(strings.Join(strings.Fields(name), " "))
	}
	return Contact{
		Name:  name,
		Email: strings.ToLower(firstNonEmpty(customer.Email, details.String("email"), c.Email)),
		Phone: phone.NormalizeE164(firstNonEmpty(customer.Phone, details.String("phone"), c.Phone)),
	}
}

func resolveVolume(c *recordCommon, details Details, catalog *pricing.Catalog) float64 {
	if v := details.Float("estimatedVolume"); v > 0 {
		return v
	}
	if c.MoveDetails != nil && c.MoveDetails.VolymM3 > 0 {
		return float64(c.MoveDetails.VolymM3)
	}
	return catalog.Volume.DefaultVolume
}

func nonEmpty(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.Name != "" {
			out = append(out, item)
		}
	}
	return out
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
