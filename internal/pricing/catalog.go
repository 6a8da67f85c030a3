// Package pricing holds the add-on catalog and tariffs used to price
// changes a customer makes to a confirmed booking.
package pricing

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// AddOn is a service a customer can add to or remove from a booking.
type AddOn struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Aliases     []string `yaml:"aliases"`
	ServiceType string   `yaml:"serviceType"`
	PerSqm      int64    `yaml:"perSqm"`
	MinPrice    int64    `yaml:"minPrice"`
	FlatPrice   int64    `yaml:"flatPrice"`
}

// ServiceType describes one of the service tags stored on a booking.
type ServiceType struct {
	Name       string `yaml:"name"`
	NaivePrice int64  `yaml:"naivePrice"`
	AddOn      string `yaml:"addOn"`
}

// VolumeTariff prices a change of moving volume.
type VolumeTariff struct {
	PricePerCubicMeter int64   `yaml:"pricePerCubicMeter"`
	DefaultVolume      float64 `yaml:"defaultVolume"`
}

// Catalog is the pricing reference data. All prices are whole kronor.
type Catalog struct {
	BaseService        string                 `yaml:"baseService"`
	DefaultLivingArea  float64                `yaml:"defaultLivingArea"`
	Volume             VolumeTariff           `yaml:"volume"`
	ServiceTypes       map[string]ServiceType `yaml:"serviceTypes"`
	AddOns             []AddOn                `yaml:"addOns"`
	AdditionalServices map[string]string      `yaml:"additionalServices"`
	RentalBoxes        map[string]string      `yaml:"rentalBoxes"`
	MovingBoxesName    string                 `yaml:"movingBoxesName"`

	byKey map[string]AddOn
}

// Load reads a catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read pricing catalog: %w", err)
		}
		data = raw
	}
	return Parse(data)
}

// Default returns the embedded catalog. It panics if the embedded file is invalid.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse pricing catalog: %w", err)
	}
	if c.BaseService == "" {
		return nil, fmt.Errorf("pricing catalog: baseService is required")
	}
	if c.Volume.PricePerCubicMeter <= 0 {
		return nil, fmt.Errorf("pricing catalog: volume.pricePerCubicMeter must be positive")
	}

	c.byKey = make(map[string]AddOn, len(c.AddOns)*2)
	for _, a := range c.AddOns {
		if a.ID == "" || a.Name == "" {
			return nil, fmt.Errorf("pricing catalog: add-on needs id and name")
		}
		if a.FlatPrice < 0 || a.PerSqm < 0 || a.MinPrice < 0 {
			return nil, fmt.Errorf("pricing catalog: add-on %s has a negative price", a.ID)
		}
		for _, key := range append([]string{a.ID}, a.Aliases...) {
			key = normalizeKey(key)
			if _, dup := c.byKey[key]; dup {
				return nil, fmt.Errorf("pricing catalog: duplicate add-on key %q", key)
			}
			c.byKey[key] = a
		}
	}
	return &c, nil
}

// AddOn looks up an add-on by id or alias.
func (c *Catalog) AddOn(id string) (AddOn, bool) {
	a, ok := c.byKey[normalizeKey(id)]
	return a, ok
}

// AddOnPrice prices an add-on for a home of livingArea square metres.
// Area-priced add-ons never go below their minimum.
func (c *Catalog) AddOnPrice(a AddOn, livingArea float64) int64 {
	if a.FlatPrice > 0 {
		return a.FlatPrice
	}
	if livingArea <= 0 {
		livingArea = c.DefaultLivingArea
	}
	price := int64(math.Round(livingArea * float64(a.PerSqm)))
	if price < a.MinPrice {
		return a.MinPrice
	}
	return price
}

// NaiveTotal prices a booking from its service tags alone. It is only used
// when a record carries no stored total.
func (c *Catalog) NaiveTotal(serviceTypes []string) int64 {
	var total int64
	for _, tag := range serviceTypes {
		if st, ok := c.ServiceTypes[normalizeKey(tag)]; ok {
			total += st.NaivePrice
		}
	}
	return total
}

// VolumeTotal reprices a booking after a volume change. The result is never negative.
func (c *Catalog) VolumeTotal(currentTotal int64, currentVolume, newVolume float64) int64 {
	delta := (newVolume - currentVolume) * float64(c.Volume.PricePerCubicMeter)
	total := currentTotal + int64(math.Round(delta))
	if total < 0 {
		return 0
	}
	return total
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
