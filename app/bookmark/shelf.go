package bookmark

import (
	"sync"

	"github.com/Semior001/newsbook/app/store"
	"golang.org/x/exp/slog"
)

// Shelf holds a separate bookmark list for every owner (chat),
// all of them living in the same storage.
type Shelf struct {
	log *slog.Logger
	kv  store.KV

	mu        sync.Mutex
	stores    map[string]*Store
	listeners []Listener
}

// NewShelf makes a new Shelf.
func NewShelf(lg *slog.Logger, kv store.KV) *Shelf {
	return &Shelf{log: lg, kv: kv, stores: map[string]*Store{}}
}

// For returns the bookmark list of the owner.
// The same Store is returned for the same owner, so the updates of a
// single list are serialized.
func (s *Shelf) For(owner string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := KeyFor(owner)
	if st, ok := s.stores[key]; ok {
		return st
	}

	st := NewStore(s.log, s.kv, key)
	for _, l := range s.listeners {
		st.OnChange(l)
	}
	s.stores[key] = st

	return st
}

// OnChange registers a listener on every list of the shelf.
func (s *Shelf) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, l)
	for _, st := range s.stores {
		st.OnChange(l)
	}
}

// KeyFor returns the storage key of the owner's bookmark list.
func KeyFor(owner string) string {
	if owner == "" {
		return DefaultKey
	}
	return DefaultKey + "/" + owner
}
