package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

const sessionFileName = "session.json"

var _ Store = (*FileStore)(nil)

// FileStore keeps the session as one JSON file under a data folder.
// Writes go through a temp file and rename so readers never observe a
// partial blob.
type FileStore struct {
	path string
	lock sync.Mutex
}

// NewFileStore creates the data folder if needed and returns a store
// rooted there.
func NewFileStore(dataFolder string) (*FileStore, error) {
	if dataFolder == "" {
		return nil, errors.New("[NewFileStore] data folder is required")
	}
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] MkdirAll")
	}
	return &FileStore{path: filepath.Join(dataFolder, sessionFileName)}, nil
}

// Current reads the persisted session. A missing or unparsable file yields
// (nil, nil).
func (fs *FileStore) Current() (*Session, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, nil
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, nil
	}
	return &s, nil
}

// Save atomically replaces the persisted session.
func (fs *FileStore) Save(s *Session) error {
	if s == nil {
		return errors.New("[FileStore.Save] nil session")
	}
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "[FileStore.Save] Marshal")
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.Save] WriteFile")
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return errors.Wrap(err, "[FileStore.Save] Rename")
	}
	return nil
}

// Clear removes the persisted session. Removing an absent session is not
// an error.
func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] Remove")
	}
	return nil
}
