package testutil

import (
	"errors"
	"sync"

	"shortlink/pkg/platform/sentinel"
)

// ConcurrentResult counts how concurrent calls ended.
type ConcurrentResult struct {
	Successes int32
	// Conflicts are store-level "already taken" failures.
	Conflicts int32
	NotFounds int32
	Errors    int32
}

// Total is the number of calls that ran.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.NotFounds + r.Errors
}

// RunConcurrent calls fn from n goroutines at once and buckets each outcome
// by store sentinel: ErrAlreadyUsed and ErrConflict count as Conflicts,
// ErrNotFound as NotFounds and anything else as Errors.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	successes, errs := RunConcurrentCollect(n, fn)

	result := &ConcurrentResult{Successes: successes}
	for _, err := range errs {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed), errors.Is(err, sentinel.ErrConflict):
			result.Conflicts++
		case errors.Is(err, sentinel.ErrNotFound):
			result.NotFounds++
		default:
			result.Errors++
		}
	}
	return result
}

// RunConcurrentCollect calls fn from n goroutines released together and
// returns the success count plus every error, in no particular order.
func RunConcurrentCollect(n int, fn func(idx int) error) (successes int32, errs []error) {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		start = make(chan struct{})
	)

	for i := range n {
		wg.Go(func() {
			<-start
			err := fn(i)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			successes++
		})
	}
	close(start)
	wg.Wait()

	return successes, errs
}
