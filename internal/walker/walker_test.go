package walker_test

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/treecrypt/internal/filter"
	"github.com/idelchi/treecrypt/internal/walker"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func rels(entries []walker.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, filepath.ToSlash(e.Rel))
	}

	sort.Strings(out)

	return out
}

func TestWalkYieldsRegularFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.txt", "0123456789")
	writeFile(t, root, "sub/b.txt", "")
	writeFile(t, root, "sub/deeper/c.bin", "c")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	entries, err := walker.Collect(walker.Walk(root))
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "sub/b.txt", "sub/deeper/c.bin"}, rels(entries))

	for _, e := range entries {
		assert.True(t, filepath.IsAbs(e.Path))
		assert.Equal(t, filepath.Join(root, e.Rel), e.Path)
	}
}

func TestWalkSkipsSymlinks(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	root := t.TempDir()
	writeFile(t, root, "real.txt", "x")
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(t.TempDir(), filepath.Join(root, "linkdir")))

	entries, err := walker.Collect(walker.Walk(root))
	require.NoError(t, err)
	assert.Equal(t, []string{"real.txt"}, rels(entries))
}

func TestWalkFollowsSymlinkedRoot(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	base := t.TempDir()
	target := filepath.Join(base, "real")
	link := filepath.Join(base, "link")

	writeFile(t, target, "a.txt", "x")
	writeFile(t, target, "sub/b.txt", "y")
	require.NoError(t, os.Symlink(target, link))

	entries, err := walker.Collect(walker.Walk(link))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, rels(entries))

	for _, entry := range entries {
		assert.Equal(t, filepath.Join(link, entry.Rel), entry.Path)
	}
}

func TestWalkDanglingRootLink(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	base := t.TempDir()
	link := filepath.Join(base, "link")
	require.NoError(t, os.Symlink(filepath.Join(base, "gone"), link))

	_, err := walker.Collect(walker.Walk(link))

	var walkErr *walker.WalkError
	require.ErrorAs(t, err, &walkErr)
	assert.Equal(t, link, walkErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWalkMissingRoot(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope")

	_, err := walker.Collect(walker.Walk(missing))

	var walkErr *walker.WalkError
	require.ErrorAs(t, err, &walkErr)
	assert.Equal(t, missing, walkErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWalkRootIsFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "file", "x")

	_, err := walker.Collect(walker.Walk(filepath.Join(root, "file")))
	require.ErrorIs(t, err, walker.ErrNotDirectory)
}

func TestWalkStopsEarly(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d"} {
		writeFile(t, root, name, name)
	}

	count := 0

	for _, err := range walker.Walk(root) {
		require.NoError(t, err)

		count++
		if count == 2 {
			break
		}
	}

	assert.Equal(t, 2, count)
}

func TestWalkConsistentOrderWithinCall(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"z", "a/y", "a/b", "m"} {
		writeFile(t, root, name, name)
	}

	first, err := walker.Collect(walker.Walk(root))
	require.NoError(t, err)

	second, err := walker.Collect(walker.Walk(root))
	require.NoError(t, err)

	assert.ElementsMatch(t, first, second)
}

func TestWalkWithFilter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "keep.txt", "x")
	writeFile(t, root, "drop.log", "x")
	writeFile(t, root, "cache/keep.txt", "x")

	flt, err := filter.New([]string{"*.txt"}, []string{"cache/**"})
	require.NoError(t, err)

	entries, err := walker.Collect(walker.Walk(root, walker.WithFilter(flt)))
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.txt"}, rels(entries))
}
