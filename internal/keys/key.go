package keys

import (
	"fmt"
	"strings"

	"github.com/idelchi/gogen/pkg/key"
)

// AlgorithmAES is the only algorithm tag a Key can carry.
const AlgorithmAES = "AES"

// Supported key lengths in bits.
const (
	Bits128 = 128
	Bits192 = 192
	Bits256 = 256
)

// Key is a symmetric AES key held in memory.
type Key struct {
	raw       key.Key
	bits      int
	algorithm string
	erased    bool
}

// Supported reports whether bits is a valid AES key length.
func Supported(bits int) bool {
	switch bits {
	case Bits128, Bits192, Bits256:
		return true
	default:
		return false
	}
}

// Generate creates a new random key of the given length in bits.
func Generate(bits int) (*Key, error) {
	if !Supported(bits) {
		return nil, fmt.Errorf("%w: unsupported key length %d bits", ErrKeyGeneration, bits)
	}

	raw, err := key.New(bits / 8) //nolint:mnd // bits to bytes
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyGeneration, err)
	}

	return &Key{raw: raw, bits: bits, algorithm: AlgorithmAES}, nil
}

// FromRaw wraps previously captured key bytes. The bytes are copied, so the caller may
// wipe its own slice afterwards.
func FromRaw(raw []byte, algorithm string) (*Key, error) {
	if !strings.EqualFold(algorithm, AlgorithmAES) {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidKeyMaterial, algorithm)
	}

	bits := len(raw) * 8
	if !Supported(bits) {
		return nil, fmt.Errorf("%w: key must be 16, 24 or 32 bytes, got %d", ErrInvalidKeyMaterial, len(raw))
	}

	owned := make(key.Key, len(raw))
	copy(owned, raw)

	return &Key{raw: owned, bits: bits, algorithm: AlgorithmAES}, nil
}

// FromHex imports a hex encoded AES key.
func FromHex(encoded string) (*Key, error) {
	raw, err := key.FromHex(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyMaterial, err)
	}

	defer wipe(raw)

	return FromRaw(raw, AlgorithmAES)
}

// Bytes returns the backing key bytes. The slice is shared with the key and becomes all
// zeros after Erase.
func (k *Key) Bytes() []byte {
	return k.raw
}

// Bits returns the declared key length.
func (k *Key) Bits() int {
	return k.bits
}

// Algorithm returns the algorithm tag.
func (k *Key) Algorithm() string {
	return k.algorithm
}

// Hex exports the key as a hex string.
func (k *Key) Hex() string {
	return k.raw.AsHex()
}

// Clone returns an independent copy which must be erased separately.
func (k *Key) Clone() *Key {
	raw := make(key.Key, len(k.raw))
	copy(raw, k.raw)

	return &Key{raw: raw, bits: k.bits, algorithm: k.algorithm, erased: k.erased}
}

// Erase overwrites every byte of the key with zero. It is safe to call more than once.
func (k *Key) Erase() {
	if k == nil {
		return
	}

	wipe(k.raw)

	k.erased = true
}

// Erased reports whether Erase has been called.
func (k *Key) Erased() bool {
	return k.erased
}

// String never prints key material.
func (k *Key) String() string {
	return fmt.Sprintf("%s-%d", k.algorithm, k.bits)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
