// Package model defines shared data structures.
package model

// Config defines analysis settings after config file and flags are merged.
type Config struct {
	Workers   int
	Width     int
	Currency  string
	NoColor   bool
	Verbs     []string
	CatalogDB string
	Wait      bool
	Verbose   bool
}

// PurchaseEvent is a purchase extracted from one log line.
type PurchaseEvent struct {
	Actor      string
	ItemPhrase string
	Timestamp  string
	// MessageKey is the message body of the line, used as dedup identity.
	MessageKey string
}

// ItemTally maps a normalized item name to its purchase count.
type ItemTally map[string]uint32

// PlayerRecord accumulates purchases for one normalized player name.
type PlayerRecord struct {
	Name  string
	Items map[string]uint32
	// SpentCents is the exact spend in minor currency units.
	SpentCents int64
}

// NewPlayerRecord returns an empty record for name.
func NewPlayerRecord(name string) PlayerRecord {
	return PlayerRecord{Name: name, Items: map[string]uint32{}}
}

// TotalSpent returns the spend in major currency units.
func (p PlayerRecord) TotalSpent() float64 {
	return float64(p.SpentCents) / 100
}

// Clone returns a deep copy of the record.
func (p PlayerRecord) Clone() PlayerRecord {
	items := make(map[string]uint32, len(p.Items))
	for k, v := range p.Items {
		items[k] = v
	}
	return PlayerRecord{Name: p.Name, Items: items, SpentCents: p.SpentCents}
}

// RunStats counts what happened to the lines of one analysis run.
type RunStats struct {
	Lines      int
	ShortLines int
	Events     int
	Duplicates int
	Accepted   int
	Workers    int
}

// Result is the outcome of analyzing one log file.
type Result struct {
	Items   ItemTally
	Players map[string]PlayerRecord
	Stats   RunStats
}
