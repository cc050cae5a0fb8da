package evercas

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "store"), opts...)
	require.NoError(t, err)
	require.NoError(t, s.Init())
	return s
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPutAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	entry, err := s.Put(writeSource(t, "round trip content"))
	require.NoError(t, err)
	assert.False(t, entry.IsDuplicate)
	assert.NotEmpty(t, entry.Checksum)

	got, err := s.Get(entry.Checksum)
	require.NoError(t, err)
	assert.Equal(t, entry.Path, got.Path)

	f, err := s.Open(entry.Checksum)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "round trip content", string(data))
}

func TestPutDuplicate(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Put(writeSource(t, "same bytes"))
	require.NoError(t, err)
	second, err := s.Put(writeSource(t, "same bytes"))
	require.NoError(t, err)

	assert.Equal(t, first.Checksum, second.Checksum)
	assert.Equal(t, first.Path, second.Path)
	assert.False(t, first.IsDuplicate)
	assert.True(t, second.IsDuplicate)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPutReader(t *testing.T) {
	s := newTestStore(t)

	entry, err := s.PutReader(strings.NewReader("from a reader"))
	require.NoError(t, err)

	f, err := s.Open(entry.Checksum)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "from a reader", string(data))
}

func TestPutUninitialized(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	assert.False(t, s.Initialized())

	_, err = s.PutReader(strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestPutWithExtension(t *testing.T) {
	s := newTestStore(t)

	entry, err := s.Put(writeSource(t, "extended"), WithExtension("txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(entry.Path, ".txt"))

	// Lookups ignore the stored extension.
	got, err := s.Get(entry.Checksum)
	require.NoError(t, err)
	assert.Equal(t, entry.Path, got.Path)
	assert.True(t, s.Exists(entry.Checksum))
}

func TestPutLowercaseExtensions(t *testing.T) {
	s := newTestStore(t, WithLowercaseExtensions())

	entry, err := s.Put(writeSource(t, "shouty"), WithExtension(".TXT"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(entry.Path, ".txt"))
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(strings.Repeat("0", 64))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Open(strings.Repeat("0", 64))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.False(t, s.Exists(strings.Repeat("0", 64)))
}

func TestDeletePrunesEmptyDirs(t *testing.T) {
	s := newTestStore(t, WithDepth(2), WithWidth(2))

	entry, err := s.Put(writeSource(t, "doomed"))
	require.NoError(t, err)

	prefix := filepath.Join(s.Root(), entry.Checksum[:2])
	require.DirExists(t, prefix)

	require.NoError(t, s.Delete(entry.Checksum))
	assert.False(t, s.Exists(entry.Checksum))
	assert.NoDirExists(t, prefix)
	assert.DirExists(t, s.Root())

	// Second delete is a no-op.
	assert.NoError(t, s.Delete(entry.Checksum))
}

func TestDeleteStopsAtNonEmptyAncestor(t *testing.T) {
	s := newTestStore(t, WithDepth(1), WithWidth(1))

	// Two contents sharing a first hex character would be ideal but can't
	// be forced, so plant a sibling next to the stored file instead.
	entry, err := s.Put(writeSource(t, "keeper's neighbor"))
	require.NoError(t, err)
	dir := filepath.Dir(filepath.Join(s.Root(), entry.Path))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sibling"), []byte("stay"), 0o644))

	require.NoError(t, s.Delete(entry.Checksum))
	assert.DirExists(t, dir)
}

func TestPutDir(t *testing.T) {
	s := newTestStore(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.log"), []byte("beta"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "c.txt"), []byte("gamma"), 0o644))

	var flat []PutDirResult
	for res := range s.PutDir(dir, false, true) {
		require.NoError(t, res.Err)
		flat = append(flat, res)
	}
	require.Len(t, flat, 2)
	assert.True(t, strings.HasSuffix(flat[0].Entry.Path, ".txt"))
	assert.True(t, strings.HasSuffix(flat[1].Entry.Path, ".log"))

	count := 0
	for res := range s.PutDir(dir, true, false) {
		require.NoError(t, res.Err)
		count++
	}
	assert.Equal(t, 3, count)

	total, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, total) // 2 with extension + 3 without
}

func TestFilesAndFolders(t *testing.T) {
	s := newTestStore(t)

	var entries []Entry
	for _, content := range []string{"one", "two", "three"} {
		e, err := s.PutReader(strings.NewReader(content))
		require.NoError(t, err)
		entries = append(entries, e)
	}

	seen := map[string]bool{}
	for path, err := range s.Files() {
		require.NoError(t, err)
		rel, err := filepath.Rel(s.Root(), path)
		require.NoError(t, err)
		seen[rel] = true
	}
	for _, e := range entries {
		assert.True(t, seen[e.Path], e.Path)
	}
	assert.Len(t, seen, len(entries))

	folders := 0
	for _, err := range s.Folders() {
		require.NoError(t, err)
		folders++
	}
	assert.Greater(t, folders, 0)
	assert.LessOrEqual(t, folders, len(entries))
}

func TestSize(t *testing.T) {
	s := newTestStore(t)

	_, err := s.PutReader(strings.NewReader("12345"))
	require.NoError(t, err)
	_, err = s.PutReader(strings.NewReader("1234567890"))
	require.NoError(t, err)

	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(15), size)
}

func TestChecksumMatchesPut(t *testing.T) {
	s := newTestStore(t)

	want, err := s.Checksum(strings.NewReader("pre-computed"))
	require.NoError(t, err)

	entry, err := s.PutReader(strings.NewReader("pre-computed"))
	require.NoError(t, err)
	assert.Equal(t, want, entry.Checksum)
}

func TestConcurrentPutSameContent(t *testing.T) {
	s := newTestStore(t)

	const goroutines = 8
	results := make([]Entry, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.PutReader(bytes.NewReader([]byte("contended content")))
		}()
	}
	wg.Wait()

	for i := range goroutines {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Checksum, results[i].Checksum)
		assert.Equal(t, results[0].Path, results[i].Path)
	}

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	f, err := s.Open(results[0].Checksum)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "contended content", string(data))
}

func TestCheckout(t *testing.T) {
	s := newTestStore(t)

	entry, err := s.PutReader(strings.NewReader("checked out"))
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "out", "copy.bin")
	require.NoError(t, s.Checkout(entry.Checksum, dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "checked out", string(data))

	link := filepath.Join(t.TempDir(), "out", "link.bin")
	require.NoError(t, s.CheckoutSymlink(entry.Checksum, link))
	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), entry.Path), target)
}

func TestCheckoutNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.Checkout(strings.Repeat("f", 64), filepath.Join(t.TempDir(), "x"))
	assert.ErrorIs(t, err, ErrNotFound)
}
