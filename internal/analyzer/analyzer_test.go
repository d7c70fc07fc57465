package analyzer

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/shoplog/internal/catalog"
	"github.com/verte-zerg/shoplog/internal/extract"
	"github.com/verte-zerg/shoplog/internal/generator"
	"github.com/verte-zerg/shoplog/internal/model"
)

// line renders a purchase in the shop layout with the body at byte 23.
func line(ts, actor, item string) string {
	return fmt.Sprintf("%s:07 [INFO] [Shop] » %s zakupil %s", ts, actor, item)
}

func analyze(t *testing.T, lines []string, workers int) model.Result {
	t.Helper()
	res, err := Analyze(context.Background(), lines, catalog.Default(), Options{Workers: workers})
	require.NoError(t, err)
	return res
}

func TestDuplicateLineSameTimestamp(t *testing.T) {
	l := line("12:00", "Gracz1", "maly zestaw kluczy")
	res := analyze(t, []string{l, l}, 2)

	assert.Equal(t, model.ItemTally{"maly zestaw kluczy": 1}, res.Items)
	assert.Equal(t, 1, res.Stats.Duplicates)
	assert.Equal(t, 1, res.Stats.Accepted)
}

func TestSameMessageDifferentTimestamps(t *testing.T) {
	res := analyze(t, []string{
		line("12:00", "Gracz1", "maly zestaw kluczy"),
		line("12:01", "Gracz1", "maly zestaw kluczy"),
		line("12:02", "Gracz1", "maly zestaw kluczy"),
	}, 3)
	assert.Equal(t, uint32(3), res.Items["maly zestaw kluczy"])
	assert.Zero(t, res.Stats.Duplicates)
}

func TestPlayerTotalSpent(t *testing.T) {
	res := analyze(t, []string{
		line("12:00", "Gracz1", "gigabox (x1)"),
		line("12:01", "Gracz1", "maly zestaw kluczy"),
		line("12:02", "Gracz1", "maly zestaw kluczy"),
	}, 4)
	require.Contains(t, res.Players, "gracz1")
	assert.InDelta(t, 34.97, res.Players["gracz1"].TotalSpent(), 1e-9)
}

func TestShortLineIgnored(t *testing.T) {
	res := analyze(t, []string{"12:00 a zakupil b", ""}, 2)
	assert.Empty(t, res.Items)
	assert.Empty(t, res.Players)
	assert.Equal(t, 2, res.Stats.ShortLines)
}

func TestUnpricedItemCounted(t *testing.T) {
	res := analyze(t, []string{line("12:00", "Kowal", "Kamien")}, 1)
	assert.Equal(t, uint32(1), res.Items["kamien"])
	assert.Zero(t, res.Players["kowal"].SpentCents)
}

func TestEmptyInput(t *testing.T) {
	res := analyze(t, nil, 8)
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, res.Stats.Workers)
}

func TestMatchesSequential(t *testing.T) {
	lines := generator.NewSeeded(3).Generate(generator.Options{
		Purchases:    2000,
		DupPct:       0.3,
		NoisePct:     0.2,
		SmallCapsPct: 0.5,
	})
	cat := catalog.Default()
	want := AnalyzeSequential(lines, cat, nil)
	for _, workers := range []int{1, 2, 3, 8, 32} {
		got, err := Analyze(context.Background(), lines, cat, Options{Workers: workers})
		require.NoError(t, err)
		assert.Equal(t, want.Items, got.Items, "workers=%d", workers)
		assert.Equal(t, want.Players, got.Players, "workers=%d", workers)
		assert.Equal(t, want.Stats.Accepted, got.Stats.Accepted, "workers=%d", workers)
		assert.Equal(t, want.Stats.Duplicates, got.Stats.Duplicates, "workers=%d", workers)
	}
}

func TestPermutationInvariance(t *testing.T) {
	// Each message key appears either repeated at one timestamp, or at
	// several distinct timestamps once each.
	var lines []string
	for i := 0; i < 50; i++ {
		l := line("12:00", fmt.Sprintf("p%d", i%7), generator.DefaultItems[i%len(generator.DefaultItems)]+fmt.Sprintf(" #%d", i))
		for k := 0; k <= i%3; k++ {
			lines = append(lines, l)
		}
	}
	for m := 0; m < 30; m++ {
		lines = append(lines, line(fmt.Sprintf("13:%02d", m), "Kowal", "gigabox (x1)"))
	}

	cat := catalog.Default()
	want := AnalyzeSequential(lines, cat, nil)
	rnd := rand.New(rand.NewSource(9))
	for round := 0; round < 10; round++ {
		shuffled := append([]string(nil), lines...)
		rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got, err := Analyze(context.Background(), shuffled, cat, Options{Workers: 4})
		require.NoError(t, err)
		assert.Equal(t, want.Items, got.Items)
		assert.Equal(t, want.Players, got.Players)
	}
	assert.Equal(t, int64(30*2499), want.Players["kowal"].SpentCents)
}

func TestPlayerItemsSumToTally(t *testing.T) {
	lines := generator.NewSeeded(11).Generate(generator.Options{Purchases: 500, DupPct: 0.5})
	res := analyze(t, lines, 6)
	sums := map[string]uint32{}
	for _, p := range res.Players {
		for item, n := range p.Items {
			sums[item] += n
		}
	}
	assert.Equal(t, map[string]uint32(res.Items), sums)
}

func TestTotalSpentMatchesCatalog(t *testing.T) {
	lines := generator.NewSeeded(5).Generate(generator.Options{Purchases: 500})
	cat := catalog.Default()
	res := analyze(t, lines, 4)
	for name, p := range res.Players {
		var want int64
		for item, n := range p.Items {
			if cents, ok := cat.Lookup(item); ok {
				want += int64(n) * cents
			}
		}
		assert.Equal(t, want, p.SpentCents, "player %s", name)
	}
}

func TestCustomExtractor(t *testing.T) {
	ext, err := extract.New("kupil")
	require.NoError(t, err)
	lines := []string{
		"12:00:07 [INFO] [Shop] » Ania kupil transfer wand",
		line("12:00", "Ania", "transfer wand"),
	}
	res, err := Analyze(context.Background(), lines, catalog.Default(), Options{Workers: 2, Extractor: ext})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), res.Items["transfer wand"])
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, []string{line("12:00", "a", "b")}, catalog.Default(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerCount(t *testing.T) {
	assert.Equal(t, 1, workerCount(4, 0))
	assert.Equal(t, 3, workerCount(8, 3))
	assert.Equal(t, 2, workerCount(2, 100))
	assert.GreaterOrEqual(t, workerCount(0, 100), 1)
}

func BenchmarkAnalyze(b *testing.B) {
	lines := generator.NewSeeded(1).Generate(generator.Options{Purchases: 50000, DupPct: 0.2, NoisePct: 0.5})
	cat := catalog.Default()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Analyze(context.Background(), lines, cat, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
