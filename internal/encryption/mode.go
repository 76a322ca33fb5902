package encryption

import (
	"fmt"
	"strings"
)

// Mode is the direction of a transform.
type Mode int

const (
	// Encrypt reads plaintext and writes ciphertext.
	Encrypt Mode = iota
	// Decrypt reads ciphertext and writes plaintext.
	Decrypt
)

func (m Mode) String() string {
	switch m {
	case Encrypt:
		return "encrypt"
	case Decrypt:
		return "decrypt"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Suite identifies the cipher construction recorded in the envelope header.
type Suite byte

const (
	// SuiteCTRHMAC is AES-CTR with a random IV and an HMAC-SHA256 trailer.
	SuiteCTRHMAC Suite = 0x01
	// SuiteGCMStream is Tink's AES-GCM-HKDF streaming AEAD.
	SuiteGCMStream Suite = 0x02
)

// DefaultSuite is used when no suite is configured.
const DefaultSuite = SuiteCTRHMAC

func (s Suite) String() string {
	switch s {
	case SuiteCTRHMAC:
		return "ctr-hmac"
	case SuiteGCMStream:
		return "gcm-stream"
	default:
		return fmt.Sprintf("suite(%d)", byte(s))
	}
}

// ParseSuite converts a suite name into a Suite. An empty name selects the default.
func ParseSuite(name string) (Suite, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ctr-hmac":
		return SuiteCTRHMAC, nil
	case "gcm-stream":
		return SuiteGCMStream, nil
	default:
		return 0, fmt.Errorf("unknown cipher suite %q", name)
	}
}
