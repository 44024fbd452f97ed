package engine

import (
	"context"
	"runtime"
	"sync"

	"github.com/piwi3910/matcalc/internal/model"
)

// BatchItem is one row of a batch job. Exactly one of Rod or Plate is set.
type BatchItem struct {
	Label       string
	MaterialKey string
	Rod         *model.RodSpec
	Plate       *model.PlateSpec
}

// BatchOutcome is the result of one batch item, in input order.
type BatchOutcome struct {
	Index  int
	Label  string
	Result model.CalculationResult
	Err    error
}

// CalculateBatch runs every item through the matching calculator on a
// bounded pool of workers. Outcomes keep the input order. When ctx is
// cancelled, items not yet started are skipped and ctx.Err() is returned.
func CalculateBatch(ctx context.Context, items []BatchItem) ([]BatchOutcome, error) {
	outcomes := make([]BatchOutcome, len(items))
	workers := runtime.NumCPU()
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = calculateItem(i, items[i])
			}
		}()
	}

	var err error
	next := 0
feed:
	for ; next < len(items); next++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(items); i++ {
		outcomes[i] = BatchOutcome{Index: i, Label: items[i].Label, Err: err}
	}
	return outcomes, err
}

func calculateItem(i int, item BatchItem) BatchOutcome {
	out := BatchOutcome{Index: i, Label: item.Label}
	switch {
	case item.Rod != nil:
		out.Result, out.Err = CalculateRod(*item.Rod)
	case item.Plate != nil:
		out.Result, out.Err = CalculatePlate(*item.Plate)
	default:
		out.Err = model.InvalidInput("kind", "batch item %q has neither a rod nor a plate spec", item.Label)
	}
	return out
}
