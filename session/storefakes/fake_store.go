package storefakes

import (
	"sync"

	"github.com/stockflowhq/stockflow-go/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory session.Store for tests.
type FakeStore struct {
	lock       sync.RWMutex
	current    *session.Session
	SaveCalls  int
	ClearCalls int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// Seed preloads a session without counting as a Save call.
func (fs *FakeStore) Seed(s *session.Session) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.current = s
}

func (fs *FakeStore) Current() (*session.Session, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	if fs.current == nil {
		return nil, nil
	}
	copied := *fs.current
	return &copied, nil
}

func (fs *FakeStore) Save(s *session.Session) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	copied := *s
	fs.current = &copied
	fs.SaveCalls++
	return nil
}

func (fs *FakeStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.current = nil
	fs.ClearCalls++
	return nil
}
