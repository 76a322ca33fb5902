package job

import "fmt"

// State is the lifecycle position of a job.
type State int32

const (
	// Idle is the state before the job starts.
	Idle State = iota
	// Enumerating is the state while the file list is materialized.
	Enumerating
	// Processing is the state while files are transformed.
	Processing
	// Completed is the terminal state of a job in which every file was transformed.
	Completed
	// Failed is the terminal state of a job that stopped at its first error.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Enumerating:
		return "enumerating"
	case Processing:
		return "processing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == Completed || s == Failed
}
