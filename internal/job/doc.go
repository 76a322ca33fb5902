// Package job runs an encryption or decryption job over a whole directory tree.
//
// An Orchestrator runs one job at a time on a dedicated goroutine. A job enumerates every
// regular file below the source, transforms the files one after the other into the mirrored
// destination path, publishes progress after each file and ends with exactly one Outcome.
// The first failure aborts the job; files already written stay in place. The job's key is
// erased on every exit path.
//
// There is no cancellation: a caller that loses interest can only ignore the outcome.
package job
