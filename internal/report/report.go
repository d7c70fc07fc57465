// Package report turns aggregated purchases into console summaries.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/shoplog/internal/catalog"
	"github.com/verte-zerg/shoplog/internal/model"
)

const (
	// DefaultWidth bounds the wrapped player item lists.
	DefaultWidth = 80
	// DefaultCurrency labels amounts.
	DefaultCurrency = "PLN"

	itemNameWidth  = 40
	ruleWidth      = 70
	itemsLabel     = "   Items: "
	itemsIndent    = "         "
	noPurchasesMsg = "No purchases found in the log file."
)

// ItemRow is one line of the item summary.
type ItemRow struct {
	Name       string
	Label      string
	PriceCents int64
	Count      uint32
	TotalCents int64
}

// PlayerItem is one entry of a player's item list.
type PlayerItem struct {
	Name  string
	Count uint32
}

// PlayerRow is one entry of the player summary.
type PlayerRow struct {
	Rank       int
	Name       string
	SpentCents int64
	Items      []PlayerItem
}

// Report holds both summaries in display order.
type Report struct {
	Items           []ItemRow
	Players         []PlayerRow
	GrandTotalCents int64
}

// Options controls rendering.
type Options struct {
	Width    int
	Currency string
	Color    bool
}

// Build sorts the aggregates for display. Items are ordered by count and
// players by spend, both descending with ties broken by name. Prices are
// looked up again from cat by item name.
func Build(items model.ItemTally, players map[string]model.PlayerRecord, cat *catalog.Catalog) Report {
	var rep Report
	rep.Items = make([]ItemRow, 0, len(items))
	for name, count := range items {
		price, _ := cat.Lookup(name)
		total := int64(count) * price
		rep.Items = append(rep.Items, ItemRow{
			Name:       name,
			Label:      cat.DisplayName(name),
			PriceCents: price,
			Count:      count,
			TotalCents: total,
		})
		rep.GrandTotalCents += total
	}
	sort.Slice(rep.Items, func(i, j int) bool {
		if rep.Items[i].Count == rep.Items[j].Count {
			return rep.Items[i].Name < rep.Items[j].Name
		}
		return rep.Items[i].Count > rep.Items[j].Count
	})

	rep.Players = make([]PlayerRow, 0, len(players))
	for _, p := range players {
		row := PlayerRow{Name: p.Name, SpentCents: p.SpentCents}
		for item, n := range p.Items {
			row.Items = append(row.Items, PlayerItem{Name: item, Count: n})
		}
		sort.Slice(row.Items, func(i, j int) bool {
			if row.Items[i].Count == row.Items[j].Count {
				return row.Items[i].Name < row.Items[j].Name
			}
			return row.Items[i].Count > row.Items[j].Count
		})
		rep.Players = append(rep.Players, row)
	}
	sort.Slice(rep.Players, func(i, j int) bool {
		if rep.Players[i].SpentCents == rep.Players[j].SpentCents {
			return rep.Players[i].Name < rep.Players[j].Name
		}
		return rep.Players[i].SpentCents > rep.Players[j].SpentCents
	})
	for i := range rep.Players {
		rep.Players[i].Rank = i + 1
	}
	return rep
}

// Render prints the item summary followed by the player summary.
func Render(w io.Writer, rep Report, opts Options) error {
	if err := RenderItems(w, rep, opts); err != nil {
		return err
	}
	if len(rep.Items) == 0 {
		return nil
	}
	return RenderPlayers(w, rep, opts)
}

// RenderItems prints one line per item and the grand total.
func RenderItems(w io.Writer, rep Report, opts Options) error {
	opts = withDefaults(opts)
	st := newStyles(w, opts.Color)
	if len(rep.Items) == 0 {
		_, err := fmt.Fprintln(w, st.err.Render(noPurchasesMsg))
		return err
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", st.heading.Render("=== Purchase Summary ===")); err != nil {
		return err
	}
	for _, item := range rep.Items {
		label := padCell(item.Label, itemNameWidth, false)
		count := padCell(fmt.Sprintf("%d", item.Count), 3, true)
		if _, err := fmt.Fprintf(w, "• %s %sx %6.2f %s each - %7.2f %s total\n",
			st.item.Render(label),
			st.count.Render(count),
			catalog.FromCents(item.PriceCents), opts.Currency,
			catalog.FromCents(item.TotalCents), opts.Currency,
		); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", strings.Repeat("─", ruleWidth)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s %s %s\n",
		st.bold.Render("Total:"),
		st.total.Render(fmt.Sprintf("%7.2f", catalog.FromCents(rep.GrandTotalCents))),
		opts.Currency,
	); err != nil {
		return err
	}
	return nil
}

// RenderPlayers prints players by spend with wrapped item lists.
func RenderPlayers(w io.Writer, rep Report, opts Options) error {
	opts = withDefaults(opts)
	st := newStyles(w, opts.Color)
	if _, err := fmt.Fprintf(w, "\n%s\n", st.heading.Render("=== Player Purchase Summary ===")); err != nil {
		return err
	}
	for _, p := range rep.Players {
		if _, err := fmt.Fprintf(w, "%d. %s - spent: %s %s\n",
			p.Rank,
			st.player.Render(p.Name),
			st.spent.Render(fmt.Sprintf("%.2f", catalog.FromCents(p.SpentCents))),
			opts.Currency,
		); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, wrapItems(p.Items, opts.Width, st.item.Render)); err != nil {
			return err
		}
	}
	return nil
}

// RenderCatalog prints the price list as a table.
func RenderCatalog(w io.Writer, cat *catalog.Catalog, currency string) error {
	if currency == "" {
		currency = DefaultCurrency
	}
	names := cat.Names()
	if len(names) == 0 {
		_, err := fmt.Fprintln(w, "Price catalog is empty.")
		return err
	}
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		label := cat.DisplayName(name)
		if label == name {
			label = ""
		}
		rows = append(rows, []string{name, fmt.Sprintf("%.2f", cat.Price(name)), label})
	}
	headers := []string{"Item", "Price (" + currency + ")", "Label"}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// wrapItems joins "name (Nx)" entries with ", ", moving to an indented
// continuation line when the next entry would pass width.
func wrapItems(items []PlayerItem, width int, render func(...string) string) string {
	var b strings.Builder
	b.WriteString(itemsLabel)
	lineWidth := displayWidth(itemsLabel)
	for i, item := range items {
		entry := fmt.Sprintf("%s (%dx)", item.Name, item.Count)
		entryWidth := displayWidth(entry)
		if i > 0 {
			b.WriteByte(',')
			lineWidth += 2
		}
		if lineWidth+entryWidth > width {
			b.WriteByte('\n')
			b.WriteString(itemsIndent)
			lineWidth = displayWidth(itemsIndent)
		} else if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(render(entry))
		lineWidth += entryWidth
	}
	return b.String()
}

func withDefaults(opts Options) Options {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}
	return opts
}

type styles struct {
	heading lipgloss.Style
	item    lipgloss.Style
	count   lipgloss.Style
	total   lipgloss.Style
	bold    lipgloss.Style
	player  lipgloss.Style
	spent   lipgloss.Style
	err     lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		plain := r.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		heading: r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		item:    r.NewStyle().Foreground(lipgloss.Color("7")),
		count:   r.NewStyle().Foreground(lipgloss.Color("2")),
		total:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		bold:    r.NewStyle().Bold(true),
		player:  r.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		spent:   r.NewStyle().Foreground(lipgloss.Color("3")),
		err:     r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}
