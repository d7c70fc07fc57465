// Package generator builds synthetic shop logs.
package generator

import (
	"fmt"
	"math/rand"
	"time"
)

// Options controls the shape of a generated log.
type Options struct {
	Purchases int
	Players   []string
	Items     []string
	// DupPct is the probability that a purchase line is emitted twice.
	DupPct float64
	// NoisePct is the probability of a chat line between purchases.
	NoisePct float64
	// SmallCapsPct is the probability that a purchase uses the small-caps verb.
	SmallCapsPct float64
	Start        time.Time
}

// Generator produces randomized log lines.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate returns log lines in the shop plugin layout: a clock prefix padded
// so that the message body starts at byte 23.
func (g *Generator) Generate(opts Options) []string {
	players := opts.Players
	if len(players) == 0 {
		players = DefaultPlayers
	}
	items := opts.Items
	if len(items) == 0 {
		items = DefaultItems
	}
	clock := opts.Start
	if clock.IsZero() {
		clock = time.Date(2024, 10, 31, 12, 0, 0, 0, time.UTC)
	}

	lines := make([]string, 0, opts.Purchases*2)
	for i := 0; i < opts.Purchases; i++ {
		clock = clock.Add(time.Duration(g.rnd.Intn(40)) * time.Second)
		if opts.NoisePct > 0 && g.rnd.Float64() < opts.NoisePct {
			lines = append(lines, chatLine(clock, players[g.rnd.Intn(len(players))]))
		}
		verb := "zakupil"
		if opts.SmallCapsPct > 0 && g.rnd.Float64() < opts.SmallCapsPct {
			verb = "ᴢᴀᴋᴜᴘɪʟ"
		}
		player := players[g.rnd.Intn(len(players))]
		item := items[g.rnd.Intn(len(items))]
		line := fmt.Sprintf("%s » %s %s %s", prefix(clock, "Shop"), player, verb, item)
		lines = append(lines, line)
		if opts.DupPct > 0 && g.rnd.Float64() < opts.DupPct {
			lines = append(lines, line)
		}
	}
	return lines
}

// prefix renders "HH:MM:SS [INFO] [Shop]" padded to 22 bytes; the separating
// space makes the body start at byte 23.
func prefix(t time.Time, channel string) string {
	return fmt.Sprintf("%-22s", fmt.Sprintf("%s [INFO] [%s]", t.Format("15:04:05"), channel))[:22]
}

func chatLine(t time.Time, player string) string {
	return fmt.Sprintf("%s %s: gg", prefix(t, "Chat"), player)
}

// DefaultPlayers are used when Options.Players is empty.
var DefaultPlayers = []string{"Gracz1", "Kowal", "xXSteveXx", "Ania_PL", "ᴍᴀɢɪᴋ"}

// DefaultItems are used when Options.Items is empty.
var DefaultItems = []string{
	"maly zestaw kluczy",
	"sredni zestaw kluczy",
	"gigabox (x1)",
	"gigabox (x5)",
	"range vip na edycje",
	"transfer wand",
	"ᴘʀᴢᴇᴘᴜꜱᴛᴋᴀ (mnozy zdobywane cukierki x3!)",
	"kamien",
}
