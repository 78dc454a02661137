package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "active_chat")
	s := NewFileStore(path)

	// Nothing persisted yet.
	handle, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, handle)

	require.NoError(t, s.Save("bob"))

	handle, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "bob", handle)
}

func TestFileStoreOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "active_chat")
	s := NewFileStore(path)

	require.NoError(t, s.Save("bob"))
	require.NoError(t, s.Save("carol"))

	handle, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "carol", handle)
}
