// Package store persists the single scalar the client restores at
// startup: which conversation was last open. The file store is the local
// analog of the web client's localStorage; the redis store keeps the same
// scalar server-side for clients whose preferences roam.
package store

import (
	"errors"
	"os"
	"strings"
)

// ActiveChatStore loads and saves the last-open conversation handle.
// Load returns "" with no error when nothing was persisted yet.
type ActiveChatStore interface {
	Load() (string, error)
	Save(handle string) error
}

// FileStore keeps the handle in a plain file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *FileStore) Save(handle string) error {
	return os.WriteFile(f.path, []byte(handle+"\n"), 0o600)
}
