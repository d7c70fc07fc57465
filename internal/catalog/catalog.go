// Package catalog holds the read-only item price table.
package catalog

import (
	"math"
	"sort"

	"github.com/verte-zerg/shoplog/internal/normalize"
)

// defaultPrices is the shop price list, in PLN.
var defaultPrices = map[string]float64{
	"sredni zestaw kluczy":                             9.99,
	"maly zestaw kluczy":                               4.99,
	"dostep do osobnego kanalu (/ch)":                  19.99,
	"gigabox (x5)":                                     99.99,
	"gigabox (x3)":                                     74.99,
	"gigabox (x2)":                                     54.99,
	"gigabox (x1)":                                     24.99,
	"range chad na edycje":                             49.99,
	"ogromny zestaw kluczy":                            49.99,
	"paiet chad":                                       99.99,
	"motyke 7x7 (49 blokow na raz)":                    129.99,
	"range vip na edycje":                              4.99,
	"range svip na edycje":                             9.99,
	"range elita na edycje":                            29.99,
	"duzy zestaw kluczy":                               19.99,
	"range sponsor na edycje":                          19.99,
	"odblokowanie slotow do /pet":                      19.99,
	"najwiekszy zestaw kluczy":                         99.99,
	"transfer wand":                                    49.99,
	"motyke hallowenowa (10x10, az 100 blokow na raz)": 194.99,
	"przepustka (mnozy zdobywane cukierki x3!)":        49.99,
	"pakiet chad":                                      99.99,
	"najlepsza motyke (/najlepsze)":                    49.99,
}

var defaultAliases = map[string]string{
	"motyke hallowenowa (10x10, az 100 blokow na raz)": "motyka 10x10",
	"przepustka (mnozy zdobywane cukierki x3!)":        "przepustka na cuksy",
}

// Catalog maps normalized item names to unit prices. A Catalog is immutable
// once built and safe for concurrent reads.
type Catalog struct {
	cents   map[string]int64
	aliases map[string]string
}

// Default returns the built-in price list.
func Default() *Catalog {
	return New(defaultPrices).WithAliases(defaultAliases)
}

// New builds a catalog from item names to prices in major units. Names are
// normalized and prices rounded to cents.
func New(prices map[string]float64) *Catalog {
	c := &Catalog{
		cents:   make(map[string]int64, len(prices)),
		aliases: map[string]string{},
	}
	for name, price := range prices {
		c.cents[normalize.Text(name)] = ToCents(price)
	}
	return c
}

// Merge returns a new catalog with overrides applied on top of c.
func (c *Catalog) Merge(overrides map[string]float64) *Catalog {
	out := c.clone()
	for name, price := range overrides {
		out.cents[normalize.Text(name)] = ToCents(price)
	}
	return out
}

// WithAliases returns a new catalog with extra display aliases.
func (c *Catalog) WithAliases(aliases map[string]string) *Catalog {
	out := c.clone()
	for name, label := range aliases {
		out.aliases[normalize.Text(name)] = label
	}
	return out
}

// Lookup returns the unit price in cents for a normalized item name.
func (c *Catalog) Lookup(name string) (int64, bool) {
	if c == nil {
		return 0, false
	}
	cents, ok := c.cents[name]
	return cents, ok
}

// Price returns the unit price in major units, or 0 for unpriced items.
func (c *Catalog) Price(name string) float64 {
	cents, _ := c.Lookup(name)
	return FromCents(cents)
}

// DisplayName returns the short label for name, or name itself.
func (c *Catalog) DisplayName(name string) string {
	if c != nil {
		if label, ok := c.aliases[name]; ok {
			return label
		}
	}
	return name
}

// Len returns the number of priced items.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.cents)
}

// Names returns the priced item names in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.cents))
	for name := range c.cents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) clone() *Catalog {
	out := &Catalog{
		cents:   make(map[string]int64, c.Len()),
		aliases: map[string]string{},
	}
	if c == nil {
		return out
	}
	for k, v := range c.cents {
		out.cents[k] = v
	}
	for k, v := range c.aliases {
		out.aliases[k] = v
	}
	return out
}

// ToCents converts a price in major units to whole cents.
func ToCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// FromCents converts cents to major units.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
