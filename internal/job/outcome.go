package job

import (
	"fmt"
	"time"

	"github.com/idelchi/treecrypt/internal/keys"
)

// Outcome is the single terminal result of a job.
type Outcome struct {
	// JobID identifies the job in logs.
	JobID string
	// Err is nil on success.
	Err error
	// FailedPath is the source file being processed when the job failed, if any.
	FailedPath string
	// Progress is the final progress.
	Progress Progress
	// Bytes is the total size of the written files.
	Bytes int64
	// Duration is the wall time of the job.
	Duration time.Duration
	// Key is a copy of the key the job generated, nil when the caller supplied the key.
	// The job's own key is erased; erasing this copy is the caller's responsibility.
	Key *keys.Key
}

// Success reports whether the job completed.
func (o Outcome) Success() bool {
	return o.Err == nil
}

// Message is a human-readable summary of the outcome.
func (o Outcome) Message() string {
	if o.Success() {
		return fmt.Sprintf("processed %d file(s)", o.Progress.Completed)
	}

	if o.FailedPath != "" {
		return fmt.Sprintf("failed on %q after %d of %d file(s): %v",
			o.FailedPath, o.Progress.Completed, o.Progress.Total, o.Err)
	}

	return fmt.Sprintf("failed: %v", o.Err)
}
