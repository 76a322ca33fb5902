package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/treecrypt/internal/fileutil"
)

func TestCommitCreatesParents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o600))

	out := filepath.Join(dir, "out", "nested", "dst.txt")

	tc, err := fileutil.NewTempContext(src, out)
	require.NoError(t, err)

	_, err = tc.TmpFile.WriteString("payload")
	require.NoError(t, err)
	require.NoError(t, tc.Commit())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(out), ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCleanupOnErrorRemovesTemp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o600))

	out := filepath.Join(dir, "dst.txt")

	tc, err := fileutil.NewTempContext(src, out)
	require.NoError(t, err)

	failure := errors.New("boom")
	tc.CleanupOnError(&failure)

	_, err = os.Stat(tc.TmpName)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = os.Stat(out)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFinalizeOutputPreservesTimestamps(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(out, []byte("abc"), 0o600))

	stamp := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

	size, err := fileutil.FinalizeOutput(out, true, stamp)
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(stamp))
}
