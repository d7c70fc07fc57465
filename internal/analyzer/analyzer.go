// Package analyzer runs purchase extraction, deduplication, and aggregation
// over the lines of one log file in parallel.
package analyzer

import (
	"context"
	"hash/fnv"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/shoplog/internal/aggregate"
	"github.com/verte-zerg/shoplog/internal/catalog"
	"github.com/verte-zerg/shoplog/internal/dedup"
	"github.com/verte-zerg/shoplog/internal/extract"
	"github.com/verte-zerg/shoplog/internal/model"
)

// Options tunes an analysis run.
type Options struct {
	// Workers bounds parallelism. Zero means GOMAXPROCS.
	Workers int
	// Extractor overrides the default purchase grammar.
	Extractor *extract.Extractor
}

type chunkResult struct {
	shortLines int
	events     int
	// buckets[s] holds, in line order, the events owned by shard s.
	buckets [][]model.PurchaseEvent
}

type shardResult struct {
	accepted   int
	duplicates int
}

// Analyze aggregates the purchases in lines. The result is identical to
// AnalyzeSequential over the same lines.
//
// Lines are extracted in contiguous chunks, one goroutine per chunk. Events
// are then routed to shards by message key, so every event sharing a key is
// deduplicated by the same shard in original line order. Each shard fills a
// private tally which is merged once it finishes.
func Analyze(ctx context.Context, lines []string, cat *catalog.Catalog, opts Options) (model.Result, error) {
	ext := opts.Extractor
	if ext == nil {
		ext = extract.MustNew()
	}
	workers := workerCount(opts.Workers, len(lines))

	chunks := make([]chunkResult, workers)
	size := (len(lines) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for c := 0; c < workers; c++ {
		c := c // per-iteration copy (pre-Go 1.22 loop semantics)
		start := c * size
		end := min(start+size, len(lines))
		if start >= end {
			chunks[c].buckets = make([][]model.PurchaseEvent, workers)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunks[c] = extractChunk(ext, lines[start:end], workers)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Result{}, err
	}

	agg := aggregate.New()
	shards := make([]shardResult, workers)
	g, gctx = errgroup.WithContext(ctx)
	for s := 0; s < workers; s++ {
		s := s // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			window := dedup.NewWindow()
			tally := aggregate.NewTally()
			for _, chunk := range chunks {
				for _, ev := range chunk.buckets[s] {
					if !window.ShouldAccept(ev.MessageKey, ev.Timestamp) {
						shards[s].duplicates++
						continue
					}
					tally.Record(ev, cat)
					shards[s].accepted++
				}
			}
			agg.Merge(tally)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Result{}, err
	}

	stats := model.RunStats{Lines: len(lines), Workers: workers}
	for _, c := range chunks {
		stats.ShortLines += c.shortLines
		stats.Events += c.events
	}
	for _, s := range shards {
		stats.Accepted += s.accepted
		stats.Duplicates += s.duplicates
	}
	items, players := agg.Snapshot()
	return model.Result{Items: items, Players: players, Stats: stats}, nil
}

// AnalyzeSequential is the single-goroutine reference pass.
func AnalyzeSequential(lines []string, cat *catalog.Catalog, ext *extract.Extractor) model.Result {
	if ext == nil {
		ext = extract.MustNew()
	}
	window := dedup.NewWindow()
	agg := aggregate.New()
	stats := model.RunStats{Lines: len(lines), Workers: 1}
	for _, line := range lines {
		if len(line) < extract.MessageOffset {
			stats.ShortLines++
			continue
		}
		ev, ok := ext.Extract(line)
		if !ok {
			continue
		}
		stats.Events++
		if !window.ShouldAccept(ev.MessageKey, ev.Timestamp) {
			stats.Duplicates++
			continue
		}
		agg.Record(ev, cat)
		stats.Accepted++
	}
	items, players := agg.Snapshot()
	return model.Result{Items: items, Players: players, Stats: stats}
}

func extractChunk(ext *extract.Extractor, lines []string, shards int) chunkResult {
	res := chunkResult{buckets: make([][]model.PurchaseEvent, shards)}
	for _, line := range lines {
		if len(line) < extract.MessageOffset {
			res.shortLines++
			continue
		}
		ev, ok := ext.Extract(line)
		if !ok {
			continue
		}
		res.events++
		s := shardFor(ev.MessageKey, shards)
		res.buckets[s] = append(res.buckets[s], ev)
	}
	return res
}

func shardFor(key string, shards int) int {
	if shards <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(shards))
}

func workerCount(requested, lines int) int {
	n := requested
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > lines {
		n = lines
	}
	if n < 1 {
		n = 1
	}
	return n
}
