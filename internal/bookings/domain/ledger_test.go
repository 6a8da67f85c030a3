package domain

import (
	"errors"
	"reflect"
	"testing"
)

var (
	cleaning = AddOnRef{ID: "cleaning", Name: "Flyttstädning"}
	assembly = AddOnRef{ID: "mobelmontering", Name: "Möbelmontering"}
)

func baseLedger(price int64) Ledger {
	return NewLedger("Flytthjälp", []LineItem{{ID: "service-0", Name: "Flytthjälp", Price: price}}, price)
}

func TestToggleAddOnAddsCleaning(t *testing.T) {
	l := baseLedger(2700)

	added, err := l.ToggleAddOn(cleaning, 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !added {
		t.Fatalf("expected add-on to be added")
	}

	want := []LineItem{
		{ID: "service-0", Name: "Flytthjälp", Price: 2700},
		{ID: "additional-cleaning", Name: "Flyttstädning", Price: 1500},
	}
	if !reflect.DeepEqual(l.Items(), want) {
		t.Fatalf("unexpected items: %+v", l.Items())
	}
	if l.Total() != 4200 {
		t.Fatalf("expected total 4200, got %d", l.Total())
	}
}

func TestToggleAddOnTwiceRestoresLedger(t *testing.T) {
	l := baseLedger(2700)
	before := l.Clone()

	if _, err := l.ToggleAddOn(cleaning, 1500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	added, err := l.ToggleAddOn(cleaning, 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added {
		t.Fatalf("expected second toggle to remove the add-on")
	}
	if !reflect.DeepEqual(l.Items(), before.Items()) || l.Total() != before.Total() {
		t.Fatalf("expected ledger restored, got %+v total %d", l.Items(), l.Total())
	}
}

func TestToggleSequenceKeepsSumAndBasePrice(t *testing.T) {
	l := baseLedger(3100)
	sequence := []struct {
		addOn AddOnRef
		price int64
	}{
		{cleaning, 3080},
		{assembly, 1200},
		{cleaning, 3080},
		{assembly, 1200},
		{assembly, 1200},
		{cleaning, 999},
		{cleaning, 999},
		{assembly, 1200},
	}

	for i, step := range sequence {
		if _, err := l.ToggleAddOn(step.addOn, step.price); err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if !l.Balanced() {
			t.Fatalf("step %d: total %d != sum %d", i, l.Total(), l.Sum())
		}
		base, ok := l.BaseMove()
		if !ok || base.Price != 3100 {
			t.Fatalf("step %d: base move drifted to %+v", i, base)
		}
	}
	if len(l.Items()) != 1 {
		t.Fatalf("expected only the base item after net-zero toggles, got %+v", l.Items())
	}
}

func TestToggleAddOnRejectsBaseAndNegative(t *testing.T) {
	l := baseLedger(2700)
	if _, err := l.ToggleAddOn(AddOnRef{ID: "moving", Name: "Flytthjälp"}, 100); !errors.Is(err, ErrBaseServiceToggle) {
		t.Fatalf("expected ErrBaseServiceToggle, got %v", err)
	}
	if _, err := l.ToggleAddOn(cleaning, -1); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("expected ErrNegativePrice, got %v", err)
	}
	if l.Total() != 2700 || len(l.Items()) != 1 {
		t.Fatalf("expected ledger unchanged")
	}
}

func TestAbsoluteTotalsThenReconcile(t *testing.T) {
	l := baseLedger(3000)
	if _, err := l.ToggleAddOn(assembly, 1200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := l.ApplyConfirmedAddressChange(4600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Total() != 4600 || l.Balanced() {
		t.Fatalf("expected absolute total without touching items")
	}

	if !l.Reconcile() {
		t.Fatalf("expected reconcile to succeed")
	}
	base, _ := l.BaseMove()
	if base.Price != 3400 || !l.Balanced() {
		t.Fatalf("expected base 3400 and balanced ledger, got base %d total %d sum %d", base.Price, l.Total(), l.Sum())
	}
}

func TestReconcileRefusesNegativeBase(t *testing.T) {
	l := baseLedger(1000)
	if _, err := l.ToggleAddOn(assembly, 1200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.ReplaceVolumePrice(500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Reconcile() {
		t.Fatalf("expected reconcile to refuse a negative base price")
	}
	if base, _ := l.BaseMove(); base.Price != 1000 {
		t.Fatalf("expected base untouched, got %d", base.Price)
	}
}
