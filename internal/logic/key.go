package logic

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/idelchi/treecrypt/internal/config"
	"github.com/idelchi/treecrypt/internal/keys"
)

// ErrNoKey is returned when decryption has no key and no terminal to prompt on.
var ErrNoKey = errors.New("no key supplied: use --key, --key-file or TREECRYPT_KEY")

// resolveKey returns the key given by flag, environment or file. For encryption without a
// supplied key it returns nil, and the job generates one. Decryption falls back to a prompt.
//
//nolint:nilnil // nil key means generate
func resolveKey(cfg *config.Config, in *os.File, prompt io.Writer) (*keys.Key, error) {
	switch {
	case cfg.Key != "":
		return keys.FromHex(cfg.Key)
	case cfg.KeyFile != "":
		data, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}

		defer clear(data)

		return keys.FromHex(string(data))
	case !cfg.Decrypt:
		return nil, nil
	}

	return promptKey(in, prompt)
}

// promptKey reads a hex key from the terminal without echo.
func promptKey(in *os.File, prompt io.Writer) (*keys.Key, error) {
	if in == nil || !term.IsTerminal(int(in.Fd())) {
		return nil, ErrNoKey
	}

	fmt.Fprint(prompt, "Enter key (hex): ")

	data, err := term.ReadPassword(int(in.Fd()))

	fmt.Fprintln(prompt)

	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}

	defer clear(data)

	return keys.FromHex(string(data))
}
