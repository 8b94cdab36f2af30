// Package navigation models the delayed redirect that follows a displayed link
// image. The pending navigation is an owned, cancelable task: once Cancel
// wins, the navigate callback never runs.
package navigation

import (
	"sync"
	"time"

	"shortlink/internal/redirect/models"
)

// DefaultDelay is how long the image is shown before navigating.
const DefaultDelay = time.Second

// Timer is a handle to a scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d. It exists so tests can fire timers by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler schedules with time.AfterFunc.
func RealScheduler() Scheduler {
	return clockScheduler{}
}

// Navigation is one visitor's pass through
// Loading -> Displaying -> Navigating | Cancelled, or Loading -> Rejected.
type Navigation struct {
	resolution models.Resolution
	scheduler  Scheduler

	mu       sync.Mutex
	state    models.State
	timer    Timer
	done     chan struct{}
	finished bool
}

// New starts in Loading, or directly in Rejected when res was rejected.
func New(res models.Resolution, scheduler Scheduler) *Navigation {
	if scheduler == nil {
		scheduler = RealScheduler()
	}
	n := &Navigation{
		resolution: res,
		scheduler:  scheduler,
		state:      models.Loading,
		done:       make(chan struct{}),
	}
	if res.Rejected() {
		n.finish(models.Rejected)
	}
	return n
}

// Display moves Loading to Displaying and schedules the navigation after
// delay. navigate, when non-nil, runs once on the timer goroutine if the
// navigation is not cancelled first. Display reports false when the
// navigation was not in Loading.
func (n *Navigation) Display(delay time.Duration, navigate func(destination string)) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != models.Loading {
		return false
	}
	n.state = models.Displaying
	n.timer = n.scheduler.AfterFunc(delay, func() {
		n.mu.Lock()
		if n.state != models.Displaying {
			n.mu.Unlock()
			return
		}
		n.finish(models.Navigating)
		n.mu.Unlock()

		if navigate != nil {
			navigate(n.resolution.Destination)
		}
	})
	return true
}

// Cancel abandons a pending navigation. It reports whether this call
// performed the cancellation; terminal navigations are left unchanged.
func (n *Navigation) Cancel() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state.Terminal() {
		return false
	}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.finish(models.Cancelled)
	return true
}

// finish records a terminal state and releases waiters. Callers hold mu,
// except New which runs before the value is shared.
func (n *Navigation) finish(state models.State) {
	n.state = state
	if !n.finished {
		n.finished = true
		close(n.done)
	}
}

// Done is closed once the navigation reaches a terminal state.
func (n *Navigation) Done() <-chan struct{} {
	return n.done
}

func (n *Navigation) State() models.State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Destination is the validated target, empty when rejected.
func (n *Navigation) Destination() string {
	return n.resolution.Destination
}
