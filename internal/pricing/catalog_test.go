package pricing

import "testing"

func TestDefaultCatalogPrices(t *testing.T) {
	c := Default()

	cleaning, ok := c.AddOn("flyttstadning")
	if !ok || cleaning.Name != "Flyttstädning" {
		t.Fatalf("expected alias lookup to find cleaning, got %+v", cleaning)
	}

	tests := []struct {
		name  string
		id    string
		area  float64
		price int64
	}{
		{name: "area priced", id: "cleaning", area: 70, price: 3080},
		{name: "area minimum", id: "cleaning", area: 10, price: 800},
		{name: "default area", id: "packing", area: 0, price: 3080},
		{name: "flat", id: "mobelmontering", area: 200, price: 1200},
	}
	for _, tt := range tests {
		a, ok := c.AddOn(tt.id)
		if !ok {
			t.Fatalf("%s: add-on %s missing", tt.name, tt.id)
		}
		if got := c.AddOnPrice(a, tt.area); got != tt.price {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.price, got)
		}
	}
}

func TestVolumeTotal(t *testing.T) {
	c := Default()
	if got := c.VolumeTotal(5000, 19, 25); got != 5900 {
		t.Fatalf("expected 5900, got %d", got)
	}
	if got := c.VolumeTotal(500, 19, 2); got != 0 {
		t.Fatalf("expected floor at zero, got %d", got)
	}
}

func TestNaiveTotal(t *testing.T) {
	c := Default()
	if got := c.NaiveTotal([]string{"moving", "Cleaning", "unknown"}); got != 5200 {
		t.Fatalf("expected 5200, got %d", got)
	}
}

func TestParseRejectsDuplicateKeys(t *testing.T) {
	_, err := Parse([]byte(`
baseService: Flytthjälp
volume: {pricePerCubicMeter: 150}
addOns:
  - {id: a, name: A, flatPrice: 1}
  - {id: b, name: B, aliases: [a], flatPrice: 1}
`))
	if err == nil {
		t.Fatalf("expected duplicate key error")
	}
}
