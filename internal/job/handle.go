package job

import (
	"sync/atomic"
)

// Handle follows a running job. All methods are safe for concurrent use.
type Handle struct {
	id string

	state     atomic.Int32
	completed atomic.Int64
	total     atomic.Int64

	// updates holds at most the latest unread progress.
	updates chan Progress
	done    chan struct{}
	outcome Outcome
}

func newHandle(id string) *Handle {
	return &Handle{
		id:      id,
		updates: make(chan Progress, 1),
		done:    make(chan struct{}),
	}
}

// ID returns the job identifier.
func (h *Handle) ID() string {
	return h.id
}

// State returns the current state.
func (h *Handle) State() State {
	return State(h.state.Load())
}

// Progress returns a snapshot of the current progress.
func (h *Handle) Progress() Progress {
	return Progress{
		Completed: int(h.completed.Load()),
		Total:     int(h.total.Load()),
	}
}

// Updates delivers progress as it advances. Slow readers see the latest value, not every
// value. The channel is closed once the outcome is known.
func (h *Handle) Updates() <-chan Progress {
	return h.updates
}

// Done is closed once the outcome is known.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the job ends and returns its outcome.
func (h *Handle) Wait() Outcome {
	<-h.done

	return h.outcome
}

// publish replaces any unread update with p. Only the job goroutine calls it.
func (h *Handle) publish(p Progress) {
	for {
		select {
		case h.updates <- p:
			return
		default:
		}

		select {
		case <-h.updates:
		default:
		}
	}
}
