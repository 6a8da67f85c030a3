package domain

import "encoding/json"

// AddOnRef identifies an add-on by catalog id and canonical display name.
type AddOnRef struct {
	ID   string
	Name string
}

// Ledger holds the billable line items of a booking and its total price.
// The base move item is only ever replaced as a whole; add-on toggles
// insert or remove add-on items and never touch it.
type Ledger struct {
	baseName string
	items    []LineItem
	total    int64
}

// NewLedger builds a ledger from already resolved items and total.
func NewLedger(baseName string, items []LineItem, total int64) Ledger {
	cp := make([]LineItem, len(items))
	copy(cp, items)
	return Ledger{baseName: baseName, items: cp, total: total}
}

// Items returns a copy of the line items in display order.
func (l Ledger) Items() []LineItem {
	cp := make([]LineItem, len(l.items))
	copy(cp, l.items)
	return cp
}

// Total is the stored total price.
func (l Ledger) Total() int64 { return l.total }

// Sum is the sum of all line item prices.
func (l Ledger) Sum() int64 { return sumPrices(l.items) }

// Balanced reports whether the total equals the line item sum.
func (l Ledger) Balanced() bool { return l.total == l.Sum() }

// Has reports whether an item with the canonical name is present.
func (l Ledger) Has(name string) bool {
	for _, item := range l.items {
		if item.Name == name {
			return true
		}
	}
	return false
}

// BaseMove returns the base move line item.
func (l Ledger) BaseMove() (LineItem, bool) {
	for _, item := range l.items {
		if item.Name == l.baseName {
			return item, true
		}
	}
	return LineItem{}, false
}

// Clone returns an independent copy.
func (l Ledger) Clone() Ledger {
	return NewLedger(l.baseName, l.items, l.total)
}

// ToggleAddOn removes the add-on when an item with its canonical name exists
// and appends it at unitPrice otherwise. The total becomes the item sum.
// It reports whether the add-on is present afterwards.
func (l *Ledger) ToggleAddOn(addOn AddOnRef, unitPrice int64) (bool, error) {
	if addOn.Name == l.baseName {
		return false, ErrBaseServiceToggle
	}
	if unitPrice < 0 {
		return false, ErrNegativePrice
	}

	added := true
	if l.Has(addOn.Name) {
		kept := l.items[:0:0]
		for _, item := range l.items {
			if item.Name != addOn.Name {
				kept = append(kept, item)
			}
		}
		l.items = kept
		added = false
	} else {
		l.items = append(l.items, LineItem{
			ID:    "additional-" + addOn.ID,
			Name:  addOn.Name,
			Price: unitPrice,
		})
	}

	l.total = l.Sum()
	return added, nil
}

// ReplaceVolumePrice sets the total to a repriced whole-booking amount.
// Line items are left as they are; call Reconcile to fold the difference
// into the base move.
func (l *Ledger) ReplaceVolumePrice(newTotal int64) error {
	if newTotal < 0 {
		return ErrNegativePrice
	}
	l.total = newTotal
	return nil
}

// ApplyConfirmedAddressChange sets the total to the price the customer
// confirmed in the address preview. It is never recomputed here.
func (l *Ledger) ApplyConfirmedAddressChange(newTotal int64) error {
	if newTotal < 0 {
		return ErrNegativePrice
	}
	l.total = newTotal
	return nil
}

// Reconcile folds any difference between total and item sum into the base
// move price. It is a no-op when already balanced and refuses when the base
// item is missing or would go negative. It reports whether the ledger is
// balanced afterwards.
func (l *Ledger) Reconcile() bool {
	diff := l.total - l.Sum()
	if diff == 0 {
		return true
	}
	for i := range l.items {
		if l.items[i].Name != l.baseName {
			continue
		}
		price := l.items[i].Price + diff
		if price < 0 {
			return false
		}
		l.items[i] = LineItem{ID: l.items[i].ID, Name: l.items[i].Name, Price: price}
		return true
	}
	return false
}

// ServicesJSON serialises the line items in the format stored under
// details.full_services_json.
func (l Ledger) ServicesJSON() (string, error) {
	data, err := json.Marshal(l.items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
