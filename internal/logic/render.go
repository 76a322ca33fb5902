package logic

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"

	"github.com/idelchi/treecrypt/internal/job"
)

const refresh = 100 * time.Millisecond

// renderer draws a spinner while the source is enumerated and a progress bar while files
// are processed. It runs on its own goroutine and owns both widgets.
type renderer struct {
	w     io.Writer
	quiet bool

	spin *spinner.Spinner
	bar  *progressbar.ProgressBar
	last job.Progress
	err  error
}

func newRenderer(w io.Writer, quiet bool) *renderer {
	return &renderer{w: w, quiet: quiet}
}

// run consumes state changes and progress until the updates channel is closed.
// Drawing failures do not stop the consumption; the first one is returned.
func (r *renderer) run(states <-chan job.State, updates <-chan job.Progress) error {
	for updates != nil {
		select {
		case state := <-states:
			r.state(state)
		case progress, ok := <-updates:
			if !ok {
				updates = nil

				continue
			}

			r.progress(progress)
		}
	}

	for {
		select {
		case state := <-states:
			r.state(state)
		default:
			r.stop()

			return r.err
		}
	}
}

func (r *renderer) state(state job.State) {
	if r.quiet {
		return
	}

	switch state {
	case job.Enumerating:
		r.spin = spinner.New(spinner.CharSets[14], refresh, spinner.WithWriter(r.w))
		r.spin.Suffix = " scanning source"
		r.spin.Start()
	case job.Processing:
		r.stopSpinner()
	default:
		if state.Terminal() {
			r.stopSpinner()
		}
	}
}

func (r *renderer) progress(progress job.Progress) {
	r.last = progress

	if r.quiet || progress.Total == 0 {
		return
	}

	if r.bar == nil {
		r.stopSpinner()

		r.bar = progressbar.NewOptions64(
			int64(progress.Total),
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetDescription("files"),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(refresh),
		)
	}

	r.record(r.bar.Set64(int64(progress.Completed)))
}

func (r *renderer) stop() {
	r.stopSpinner()

	if r.bar == nil {
		return
	}

	if r.last.Done() {
		r.record(r.bar.Finish())
	} else {
		r.record(r.bar.Exit())
	}

	_, err := io.WriteString(r.w, "\n")
	r.record(err)
}

func (r *renderer) record(err error) {
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("rendering progress: %w", err)
	}
}

func (r *renderer) stopSpinner() {
	if r.spin != nil {
		r.spin.Stop()
		r.spin = nil
	}
}
