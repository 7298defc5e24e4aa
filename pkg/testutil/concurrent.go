package testutil

import (
	"context"
	"errors"
	"sync"

	dErrors "credledger/pkg/domain-errors"
	"credledger/pkg/platform/sentinel"
)

// Tally buckets the outcomes of concurrent operations by domain error code.
type Tally struct {
	Successes int
	ByCode    map[dErrors.Code]int
}

// Conflicts counts losers that hit an occupied address or a conflicting state.
func (t *Tally) Conflicts() int { return t.ByCode[dErrors.CodeConflict] }

func (t *Tally) Count(code dErrors.Code) int { return t.ByCode[code] }

func (t *Tally) Total() int {
	n := t.Successes
	for _, c := range t.ByCode {
		n += c
	}
	return n
}

// RunConcurrent releases goroutines together through a barrier and tallies
// their results. Store sentinels are folded into the matching domain code.
func RunConcurrent(goroutines int, fn func(idx int) error) *Tally {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		start = make(chan struct{})
		tally = &Tally{ByCode: make(map[dErrors.Code]int)}
	)

	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := fn(i)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				tally.Successes++
				return
			}
			tally.ByCode[classify(err)]++
		}()
	}

	close(start)
	wg.Wait()
	return tally
}

// RunConcurrentCtx is RunConcurrent with a shared context.
func RunConcurrentCtx(ctx context.Context, goroutines int, fn func(ctx context.Context, idx int) error) *Tally {
	return RunConcurrent(goroutines, func(idx int) error { return fn(ctx, idx) })
}

func classify(err error) dErrors.Code {
	switch {
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.CodeConflict
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.CodeNotFound
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.CodeUnavailable
	}
	return dErrors.CodeOf(err)
}
