package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	// MkdirAll
	dir := filepath.Join(tmp, "subdir")
	assert.NoError(t, lfs.MkdirAll(dir, 0o755))

	// OpenFile (create + append)
	fpath := filepath.Join(dir, "part_0000.spill")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.NoError(t, f.Sync())

	info, err := f.Stat()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	assert.NoError(t, f.Close())

	// Stat via FS
	info2, err := lfs.Stat(fpath)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info2.Size())

	// ReadDir
	entries, err := lfs.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	// MkdirTemp + RemoveAll
	tmpDir, err := lfs.MkdirTemp(tmp, "ip6count-")
	require.NoError(t, err)
	assert.DirExists(t, tmpDir)
	assert.NoError(t, lfs.RemoveAll(tmpDir))
	assert.NoDirExists(t, tmpDir)

	// Remove
	assert.NoError(t, lfs.Remove(fpath))
	_, err = lfs.Stat(fpath)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFSWriteLimit(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("part_", Fault{FailAfterBytes: 10})

	f, err := ffs.OpenFile(filepath.Join(tmp, "part_0001.spill"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("12345"))
	assert.NoError(t, err)

	// Crossing the 10-byte limit fails.
	_, err = f.Write([]byte("6789abcdef!"))
	assert.Error(t, err)
}

func TestFaultyFSReadFault(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "part_0002.spill")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	ffs := NewFaultyFS(nil)
	ffs.AddRule("part_0002", Fault{FailAfterBytes: -1, FailOnRead: true})

	f, err := ffs.OpenFile(path, os.O_RDONLY, 0)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 4)
	_, err = f.Read(buf)
	assert.Error(t, err)
	_, err = f.ReadAt(buf, 0)
	assert.Error(t, err)
}

func TestFaultyFSUnmatchedFilesPass(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("part_", Fault{FailAfterBytes: 0})

	f, err := ffs.OpenFile(filepath.Join(tmp, "input.txt"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("unaffected"))
	assert.NoError(t, err)
}

func TestFaultyFSSyncAndClose(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("bad", Fault{FailAfterBytes: -1, FailOnSync: true, FailOnClose: true})

	f, err := ffs.OpenFile(filepath.Join(tmp, "bad.spill"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)

	assert.Error(t, f.Sync())
	assert.Error(t, f.Close())
}
