package encryption

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	envelopeMagic   = "TCRY"
	envelopeVersion = byte(1)
	envelopeTagSize = sha256.Size

	envelopeFlagExec = 0x01
)

// HeaderSize is the length of the envelope header that starts every encrypted file.
const HeaderSize = len(envelopeMagic) + 4

// Header is the parsed envelope header.
type Header struct {
	Suite      Suite
	KeyBytes   int
	Executable bool
}

func (h Header) marshal() []byte {
	header := make([]byte, HeaderSize)
	copy(header, envelopeMagic)

	var flags byte

	if h.Executable {
		flags |= envelopeFlagExec
	}

	header[len(envelopeMagic)] = envelopeVersion
	header[len(envelopeMagic)+1] = flags
	header[len(envelopeMagic)+2] = byte(h.Suite)
	header[len(envelopeMagic)+3] = byte(h.KeyBytes)

	return header
}

// ReadHeader consumes and validates the envelope header from r.
func ReadHeader(r io.Reader) (Header, []byte, error) {
	raw := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return Header{}, nil, fmt.Errorf("%w: reading envelope header: %w", ErrCipher, err)
	}

	header, err := parseHeader(raw)

	return header, raw, err
}

func parseHeader(raw []byte) (Header, error) {
	if len(raw) != HeaderSize {
		return Header{}, fmt.Errorf("%w: envelope header too short", ErrCipher)
	}

	if !bytes.Equal(raw[:len(envelopeMagic)], []byte(envelopeMagic)) {
		return Header{}, fmt.Errorf("%w: invalid envelope magic", ErrCipher)
	}

	if version := raw[len(envelopeMagic)]; version != envelopeVersion {
		return Header{}, fmt.Errorf("%w: unsupported envelope version %d", ErrCipher, version)
	}

	flags := raw[len(envelopeMagic)+1]
	suite := Suite(raw[len(envelopeMagic)+2])

	switch suite {
	case SuiteCTRHMAC, SuiteGCMStream:
	default:
		return Header{}, fmt.Errorf("%w: unsupported %s", ErrCipher, suite)
	}

	return Header{
		Suite:      suite,
		KeyBytes:   int(raw[len(envelopeMagic)+3]),
		Executable: flags&envelopeFlagExec != 0,
	}, nil
}

// deriveRandomizedKeys splits the master key into an AES key of the same length and a
// 32-byte HMAC key.
func deriveRandomizedKeys(key []byte) ([]byte, []byte, error) {
	const macKeyLen = 32

	reader := hkdf.New(sha256.New, key, nil, []byte("treecrypt/ctr-hmac"))
	derived := make([]byte, len(key)+macKeyLen)

	if _, err := io.ReadFull(reader, derived); err != nil {
		return nil, nil, fmt.Errorf("%w: deriving keys: %w", ErrCipher, err)
	}

	return derived[:len(key)], derived[len(key):], nil
}
