package keys

import "errors"

var (
	// ErrKeyGeneration is returned when a fresh key cannot be produced.
	ErrKeyGeneration = errors.New("key generation failed")
	// ErrInvalidKeyMaterial is returned when supplied key bytes do not form a supported key.
	ErrInvalidKeyMaterial = errors.New("invalid key material")
)
