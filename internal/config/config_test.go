package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/treecrypt/internal/config"
)

func valid() config.Config {
	return config.Config{
		Source:      "in",
		Destination: "out",
		KeyLength:   256,
		Suite:       "ctr-hmac",
		LogLevel:    "warn",
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	t.Parallel()

	cfg := valid()
	require.NoError(t, cfg.Validate(&cfg))
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key.hex")
	require.NoError(t, os.WriteFile(keyFile, []byte("00"), 0o600))

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"missing source", func(c *config.Config) { c.Source = "" }, "source is a required field"},
		{"bad key length", func(c *config.Config) { c.KeyLength = 512 }, "--key-length must be one of [128 192 256]"},
		{"bad suite", func(c *config.Config) { c.Suite = "ecb" }, "--suite must be one of"},
		{"bad log level", func(c *config.Config) { c.LogLevel = "loud" }, "--log-level must be one of"},
		{"non hex key", func(c *config.Config) { c.Key = "xyz" }, "--key must be a valid hexadecimal"},
		{"missing key file", func(c *config.Config) { c.KeyFile = "/does/not/exist" }, "--key-file must be a readable file"},
		{"directory as key file", func(c *config.Config) { c.KeyFile = dir }, "--key-file must be a readable file"},
		{"key and key file", func(c *config.Config) {
			c.Key = "00"
			c.KeyFile = keyFile
		}, "--key is mutually exclusive"},
		{"same roots", func(c *config.Config) { c.Destination = "./in" }, "destination must differ"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tc.mutate(&cfg)

			err := cfg.Validate(&cfg)
			require.ErrorIs(t, err, config.ErrInvalid)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	t.Parallel()

	cfg := valid()
	cfg.Suite = "ecb"
	cfg.LogLevel = "loud"

	err := cfg.Validate(&cfg)
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.Contains(t, err.Error(), "--suite")
	assert.Contains(t, err.Error(), "--log-level")
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	cfg := valid()
	assert.False(t, cfg.Display())

	cfg.Show = true
	assert.True(t, cfg.Display())
}
