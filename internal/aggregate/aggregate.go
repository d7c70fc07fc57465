// Package aggregate accumulates accepted purchase events into item and
// player totals.
package aggregate

import (
	"sync"

	"github.com/verte-zerg/shoplog/internal/catalog"
	"github.com/verte-zerg/shoplog/internal/model"
	"github.com/verte-zerg/shoplog/internal/normalize"
)

// Tally is a partial aggregate owned by a single goroutine.
type Tally struct {
	Items   model.ItemTally
	Players map[string]*model.PlayerRecord
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{
		Items:   model.ItemTally{},
		Players: map[string]*model.PlayerRecord{},
	}
}

// Record counts one accepted purchase. Items missing from cat still count
// but add nothing to the player's spend.
func (t *Tally) Record(ev model.PurchaseEvent, cat *catalog.Catalog) {
	player := normalize.Text(ev.Actor)
	item := normalize.Text(ev.ItemPhrase)

	t.Items[item]++

	rec, ok := t.Players[player]
	if !ok {
		r := model.NewPlayerRecord(player)
		rec = &r
		t.Players[player] = rec
	}
	rec.Items[item]++
	if cents, ok := cat.Lookup(item); ok {
		rec.SpentCents += cents
	}
}

// Merge adds other into t.
func (t *Tally) Merge(other *Tally) {
	for item, n := range other.Items {
		t.Items[item] += n
	}
	for name, src := range other.Players {
		dst, ok := t.Players[name]
		if !ok {
			r := model.NewPlayerRecord(name)
			dst = &r
			t.Players[name] = dst
		}
		for item, n := range src.Items {
			dst.Items[item] += n
		}
		dst.SpentCents += src.SpentCents
	}
}

// Aggregator is a tally shared between goroutines. Both views are guarded
// by one lock, so an item count and its player update are never observed
// apart.
type Aggregator struct {
	mu    sync.RWMutex
	tally *Tally
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{tally: NewTally()}
}

// Record counts one accepted purchase.
func (a *Aggregator) Record(ev model.PurchaseEvent, cat *catalog.Catalog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tally.Record(ev, cat)
}

// Merge folds a worker's partial tally in.
func (a *Aggregator) Merge(partial *Tally) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tally.Merge(partial)
}

// Snapshot returns deep copies of the item tally and player records.
func (a *Aggregator) Snapshot() (model.ItemTally, map[string]model.PlayerRecord) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	items := make(model.ItemTally, len(a.tally.Items))
	for k, v := range a.tally.Items {
		items[k] = v
	}
	players := make(map[string]model.PlayerRecord, len(a.tally.Players))
	for k, v := range a.tally.Players {
		players[k] = v.Clone()
	}
	return items, players
}
