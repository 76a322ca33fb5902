// Package keys generates, imports and erases the symmetric AES keys used for a job.
//
// Key material only ever lives in memory. Export and import through hex strings are explicit
// operations of the caller; nothing in this package persists a key.
package keys
