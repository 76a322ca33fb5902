package logic

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/treecrypt/internal/config"
	"github.com/idelchi/treecrypt/internal/job"
	"github.com/idelchi/treecrypt/internal/keys"
)

func baseConfig(src, dst string) *config.Config {
	return &config.Config{
		Source:      src,
		Destination: dst,
		KeyLength:   256,
		Suite:       "ctr-hmac",
		LogLevel:    "error",
		Quiet:       true,
	}
}

func buffers() (Streams, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer

	return Streams{Out: &out, Err: &errOut}, &out, &errOut
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func TestEncryptThenDecrypt(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"notes.txt":      "hello",
		"sub/data.bin":   strings.Repeat("x", 5000),
		"sub/deep/empty": "",
	}

	src, sealed, opened := t.TempDir(), t.TempDir(), t.TempDir()
	writeFiles(t, src, files)

	streams, out, _ := buffers()
	require.NoError(t, Run(baseConfig(src, sealed), streams))

	hexKey := strings.TrimSpace(out.String())
	require.Len(t, hexKey, 64)

	cfg := baseConfig(sealed, opened)
	cfg.Decrypt = true
	cfg.Key = hexKey

	streams, out, _ = buffers()
	require.NoError(t, Run(cfg, streams))
	assert.Empty(t, out.String(), "supplied keys are not echoed")

	for rel, want := range files {
		got, err := os.ReadFile(filepath.Join(opened, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.Equal(t, want, string(got), rel)
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	t.Parallel()

	src, sealed, opened := t.TempDir(), t.TempDir(), t.TempDir()
	writeFiles(t, src, map[string]string{"a.txt": "secret"})

	streams, _, _ := buffers()
	require.NoError(t, Run(baseConfig(src, sealed), streams))

	other, err := keys.Generate(keys.Bits256)
	require.NoError(t, err)

	cfg := baseConfig(sealed, opened)
	cfg.Decrypt = true
	cfg.Key = other.Hex()

	streams, _, errOut := buffers()
	err = Run(cfg, streams)
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "failed on")
	assert.NoFileExists(t, filepath.Join(opened, "a.txt"))
}

func TestSuppliedKeyFileAndStats(t *testing.T) {
	t.Parallel()

	key, err := keys.Generate(keys.Bits128)
	require.NoError(t, err)

	keyFile := filepath.Join(t.TempDir(), "key.hex")
	require.NoError(t, os.WriteFile(keyFile, []byte(key.Hex()+"\n"), 0o600))

	src, sealed := t.TempDir(), t.TempDir()
	writeFiles(t, src, map[string]string{"a.txt": "one", "b.txt": "two"})

	cfg := baseConfig(src, sealed)
	cfg.KeyFile = keyFile
	cfg.Suite = "gcm-stream"
	cfg.Stats = true

	streams, out, errOut := buffers()
	require.NoError(t, Run(cfg, streams))

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Processed: 2")
	assert.FileExists(t, filepath.Join(sealed, "b.txt"))
}

func TestDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	writeFiles(t, src, map[string]string{"keep.txt": "x", "skip.log": "y"})

	cfg := baseConfig(src, dst)
	cfg.Dry = true
	cfg.Quiet = false
	cfg.Exclude = []string{"*.log"}

	streams, out, _ := buffers()
	require.NoError(t, Run(cfg, streams))

	assert.Contains(t, out.String(), "keep.txt")
	assert.NotContains(t, out.String(), "skip.log")
	assert.NoDirExists(t, dst)
}

func TestResolveKey(t *testing.T) {
	t.Parallel()

	key, err := keys.Generate(keys.Bits192)
	require.NoError(t, err)

	t.Run("flag", func(t *testing.T) {
		t.Parallel()

		got, err := resolveKey(&config.Config{Key: key.Hex()}, nil, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, key.Bytes(), got.Bytes())
	})

	t.Run("generate on encrypt", func(t *testing.T) {
		t.Parallel()

		got, err := resolveKey(&config.Config{}, nil, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("decrypt without terminal", func(t *testing.T) {
		t.Parallel()

		in, err := os.Open(os.DevNull)
		require.NoError(t, err)
		t.Cleanup(func() { in.Close() })

		_, err = resolveKey(&config.Config{Decrypt: true}, in, &bytes.Buffer{})
		require.ErrorIs(t, err, ErrNoKey)
	})

	t.Run("invalid hex", func(t *testing.T) {
		t.Parallel()

		_, err := resolveKey(&config.Config{Key: "abc"}, nil, &bytes.Buffer{})
		require.ErrorIs(t, err, keys.ErrInvalidKeyMaterial)
	})
}

func TestBuildFilterMergesPatternFiles(t *testing.T) {
	t.Parallel()

	patterns := filepath.Join(t.TempDir(), "include.jsonc")
	require.NoError(t, os.WriteFile(patterns, []byte(`[
  // text only
  "*.txt",
]`), 0o600))

	flt, err := buildFilter(&config.Config{IncludeFrom: patterns, Exclude: []string{"secret.txt"}})
	require.NoError(t, err)

	assert.True(t, flt.Match("docs/readme.txt"))
	assert.False(t, flt.Match("image.png"))
	assert.False(t, flt.Match("secret.txt"))
}

func TestKeygen(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, Keygen(&out, keys.Bits128))
	assert.Len(t, strings.TrimSpace(out.String()), 32)

	require.ErrorIs(t, Keygen(&out, 100), keys.ErrKeyGeneration)
}

func TestRendererDrawsProgress(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	states := make(chan job.State, 4)
	updates := make(chan job.Progress, 4)

	states <- job.Enumerating
	states <- job.Processing
	updates <- job.Progress{Completed: 0, Total: 2}
	updates <- job.Progress{Completed: 2, Total: 2}
	close(updates)

	require.NoError(t, newRenderer(&buf, false).run(states, updates))

	assert.Contains(t, buf.String(), "files")
}

func TestRendererQuiet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	updates := make(chan job.Progress, 1)
	updates <- job.Progress{Completed: 1, Total: 1}
	close(updates)

	require.NoError(t, newRenderer(&buf, true).run(make(chan job.State), updates))

	assert.Empty(t, buf.String())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("terminal gone")
}

func TestRendererReportsDrawFailures(t *testing.T) {
	t.Parallel()

	states := make(chan job.State, 1)
	states <- job.Failed

	updates := make(chan job.Progress, 1)
	updates <- job.Progress{Completed: 1, Total: 3}
	close(updates)

	err := newRenderer(brokenWriter{}, false).run(states, updates)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendering progress")
}
