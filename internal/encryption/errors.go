package encryption

import "errors"

var (
	// ErrIO is returned when a source cannot be read or a destination cannot be written.
	ErrIO = errors.New("i/o error")
	// ErrCipher is returned for envelope, key or authentication mismatches.
	ErrCipher = errors.New("cipher error")
)
