package scoring

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/weights"
)

// DefaultBatchWorkers bounds batch concurrency.
const DefaultBatchWorkers = 8

// BatchItem is the outcome for one ticker in a batch: a record, or the error
// that stopped it. Exactly one of the two is set.
type BatchItem struct {
	Ticker string
	Record *domain.ScoreRecord
	Err    error
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Items         []BatchItem
	WeightVersion string
	Scored        int
	Rejected      int
	Vetoed        int
	Failed        int
}

// ScoreBatch scores the tickers concurrently. One weight snapshot is taken
// up front so every item in the batch scores under the same version, even if
// a new version is published mid-run. A failing or panicking item never
// stops its siblings; its error is reported in the item slot.
func (p *Pipeline) ScoreBatch(ctx context.Context, tickers []string, workers int, opts Options) (*BatchResult, error) {
	snap, err := p.deps.Weights.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("no usable weight snapshot: %w", err)
	}
	p.noteWeightVersion(snap.Version)
	if workers <= 0 {
		workers = DefaultBatchWorkers
	}
	if workers > len(tickers) {
		workers = len(tickers)
	}

	items := make([]BatchItem, len(tickers))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				items[idx] = p.scoreItem(ctx, tickers[idx], snap, opts)
			}
		}()
	}
	for idx := range tickers {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			// Mark everything not yet dispatched as cancelled.
			for rest := idx; rest < len(tickers); rest++ {
				items[rest] = BatchItem{Ticker: tickers[rest], Err: ctx.Err()}
			}
			close(jobs)
			wg.Wait()
			return p.summarize(items, snap.Version), ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	return p.summarize(items, snap.Version), nil
}

func (p *Pipeline) scoreItem(ctx context.Context, ticker string, snap *weights.Snapshot, opts Options) (item BatchItem) {
	item.Ticker = ticker
	defer func() {
		if r := recover(); r != nil {
			p.deps.Log.Error().
				Str("ticker", ticker).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("scoring panicked")
			item.Record = nil
			item.Err = fmt.Errorf("scoring %s panicked: %v", ticker, r)
		}
	}()

	rec, err := p.scoreWithSnapshot(ctx, ticker, snap, opts)
	if err != nil {
		item.Err = err
		return item
	}
	item.Record = rec
	return item
}

func (p *Pipeline) summarize(items []BatchItem, version string) *BatchResult {
	res := &BatchResult{Items: items, WeightVersion: version}
	for _, it := range items {
		switch {
		case it.Err != nil:
			res.Failed++
			p.deps.Metrics.BatchItemError.Inc()
		case !it.Record.Gate.Passed:
			res.Rejected++
		case it.Record.Veto.Triggered:
			res.Vetoed++
		default:
			res.Scored++
		}
	}
	return res
}
