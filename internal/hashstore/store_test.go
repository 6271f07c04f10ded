package hashstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "hashes"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	_, ok := s.Lookup("example.com")
	assert.False(t, ok)
}

func TestCommitAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "hashes")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Commit("example.com", "abc123"))
	require.NoError(t, s.Commit("other.example.org", "def456"))

	// A second process lifetime sees the committed records.
	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())

	hash, ok := reopened.Lookup("example.com")
	require.True(t, ok)
	assert.Equal(t, "abc123", hash)
}

func TestCommit_OverwritesDomain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Commit("example.com", "old"))
	require.NoError(t, s.Commit("example.com", "new"))

	assert.Equal(t, 1, s.Len())
	hash, ok := s.Lookup("example.com")
	require.True(t, ok)
	assert.Equal(t, "new", hash)

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())
}

func TestCommit_NoTemporaryFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hashes")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Commit("example.com", "abc123"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hashes", entries[0].Name())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestOpen_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes")
	content := "example.com abc123\nnot-a-valid-line\n\nother.example.org def456\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	hash, ok := s.Lookup("other.example.org")
	require.True(t, ok)
	assert.Equal(t, "def456", hash)
}
