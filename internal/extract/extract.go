// Package extract recognizes purchase events in raw log lines.
//
// Lines are expected in the shop plugin layout:
//
//	HH:MM <18 bytes of prefix>  <message body>
//	^0    ^5                    ^23
//
// The timestamp is the first TimestampWidth bytes and the message body starts
// at MessageOffset. Both offsets are positional; nothing in the line delimits
// them, so a producer that changes the prefix width breaks the dedup key.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/verte-zerg/shoplog/internal/model"
)

const (
	// TimestampWidth is the length of the leading timestamp token.
	TimestampWidth = 5
	// MessageOffset is where the message body starts.
	MessageOffset = 23
)

// DefaultVerbs are the purchase verbs: the small-caps form the plugin prints
// and its plain transliteration.
var DefaultVerbs = []string{"ᴢᴀᴋᴜᴘɪʟ", "zakupil"}

// Extractor matches the "actor VERB object" purchase grammar.
// It is safe for concurrent use.
type Extractor struct {
	re *regexp.Regexp
}

var defaultExtractor = MustNew(DefaultVerbs...)

// New builds an extractor for the given verbs. With no verbs, DefaultVerbs
// are used.
func New(verbs ...string) (*Extractor, error) {
	if len(verbs) == 0 {
		verbs = DefaultVerbs
	}
	quoted := make([]string, 0, len(verbs))
	for _, v := range verbs {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(v))
	}
	if len(quoted) == 0 {
		return nil, fmt.Errorf("no purchase verbs configured")
	}
	re, err := regexp.Compile(`(\S+) (` + strings.Join(quoted, "|") + `) (.+)`)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase pattern: %w", err)
	}
	return &Extractor{re: re}, nil
}

// MustNew is like New but panics on error.
func MustNew(verbs ...string) *Extractor {
	e, err := New(verbs...)
	if err != nil {
		panic(err)
	}
	return e
}

// Extract returns the purchase event in line, if any. Short or non-matching
// lines yield false.
func (e *Extractor) Extract(line string) (model.PurchaseEvent, bool) {
	if len(line) < MessageOffset {
		return model.PurchaseEvent{}, false
	}
	m := e.re.FindStringSubmatch(line)
	if m == nil {
		return model.PurchaseEvent{}, false
	}
	return model.PurchaseEvent{
		Actor:      m[1],
		ItemPhrase: m[3],
		Timestamp:  line[:TimestampWidth],
		MessageKey: line[MessageOffset:],
	}, true
}

// Line extracts with the default verbs.
func Line(line string) (model.PurchaseEvent, bool) {
	return defaultExtractor.Extract(line)
}
