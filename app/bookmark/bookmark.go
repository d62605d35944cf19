// Package bookmark keeps the list of articles saved by the user.
//
// The whole list is stored as a single JSON blob under one key of a
// key-value storage. Every mutation reads the full list, modifies it
// in memory and writes the full list back, all under a per-key lock.
// Storage failures never leave the package: they are logged and
// reported as empty results or false.
package bookmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Semior001/newsbook/app/store"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// DefaultKey is the storage key of the bookmark list.
const DefaultKey = "@news_bookmarks"

// PersistenceError describes a failed storage operation.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

// Error implements error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("bookmarks %s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error { return e.Err }

// EventKind is a kind of bookmark list change.
type EventKind string

// Bookmark list changes.
const (
	Saved   EventKind = "saved"
	Removed EventKind = "removed"
)

// Event describes a committed change of the bookmark list.
type Event struct {
	Key  string
	Kind EventKind
	URL  string
}

// Listener is notified after every successful Save or Remove.
type Listener func(ctx context.Context, ev Event)

// Store is a durable, URL-keyed list of saved articles.
type Store struct {
	log *slog.Logger
	kv  store.KV
	key string

	mu *sync.Mutex

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewStore makes a new Store over the given storage key.
func NewStore(lg *slog.Logger, kv store.KV, key string) *Store {
	return &Store{log: lg, kv: kv, key: key, mu: &sync.Mutex{}}
}

// Key returns the storage key of the list.
func (s *Store) Key() string { return s.key }

// OnChange registers a listener of bookmark changes.
func (s *Store) OnChange(l Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// GetAll returns all saved articles in the order they were saved.
// It returns an empty list if nothing is stored or the list can't be read.
func (s *Store) GetAll(ctx context.Context) []store.Article {
	articles, err := s.read(ctx)
	if err != nil {
		s.fail(ctx, err)
		return []store.Article{}
	}
	return articles
}

// Save appends the article to the list. It returns false if an article
// with the same URL is already saved or the list couldn't be written.
func (s *Store) Save(ctx context.Context, article store.Article) bool {
	s.mu.Lock()
	saved := s.save(ctx, article)
	s.mu.Unlock()

	if saved {
		s.notify(ctx, Event{Key: s.key, Kind: Saved, URL: article.URL})
	}
	return saved
}

func (s *Store) save(ctx context.Context, article store.Article) bool {
	articles, err := s.readForUpdate(ctx)
	if err != nil {
		s.fail(ctx, err)
		return false
	}

	if lo.ContainsBy(articles, func(a store.Article) bool { return a.URL == article.URL }) {
		return false
	}

	if err = s.write(ctx, append(articles, article)); err != nil {
		s.fail(ctx, err)
		return false
	}

	return true
}

// Remove drops every article with the given URL from the list.
// It returns true whenever the list was written, even if nothing matched.
func (s *Store) Remove(ctx context.Context, url string) bool {
	s.mu.Lock()
	removed := s.remove(ctx, url)
	s.mu.Unlock()

	if removed {
		s.notify(ctx, Event{Key: s.key, Kind: Removed, URL: url})
	}
	return removed
}

func (s *Store) remove(ctx context.Context, url string) bool {
	articles, err := s.readForUpdate(ctx)
	if err != nil {
		s.fail(ctx, err)
		return false
	}

	left := lo.Filter(articles, func(a store.Article, _ int) bool { return a.URL != url })

	if err = s.write(ctx, left); err != nil {
		s.fail(ctx, err)
		return false
	}

	return true
}

// Contains returns true if an article with the given URL is saved.
func (s *Store) Contains(ctx context.Context, url string) bool {
	articles, err := s.read(ctx)
	if err != nil {
		s.fail(ctx, err)
		return false
	}

	return lo.ContainsBy(articles, func(a store.Article) bool { return a.URL == url })
}

var errDecode = errors.New("decode")

func (s *Store) read(ctx context.Context) ([]store.Article, error) {
	blob, err := s.kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return []store.Article{}, nil
	case err != nil:
		return nil, &PersistenceError{Op: "read", Key: s.key, Err: err}
	}

	var articles []store.Article
	if err = json.Unmarshal([]byte(blob), &articles); err != nil {
		return nil, &PersistenceError{Op: "read", Key: s.key, Err: fmt.Errorf("%w: %v", errDecode, err)}
	}

	if articles == nil {
		articles = []store.Article{}
	}

	return articles, nil
}

// readForUpdate reads the list before a mutation. An undecodable blob
// is replaced by the mutated empty list, storage failures abort the update.
func (s *Store) readForUpdate(ctx context.Context) ([]store.Article, error) {
	articles, err := s.read(ctx)
	if errors.Is(err, errDecode) {
		s.fail(ctx, err)
		return []store.Article{}, nil
	}
	return articles, err
}

func (s *Store) write(ctx context.Context, articles []store.Article) error {
	bts, err := json.Marshal(articles)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: s.key, Err: err}
	}

	if err = s.kv.Set(ctx, s.key, string(bts)); err != nil {
		return &PersistenceError{Op: "write", Key: s.key, Err: err}
	}

	return nil
}

func (s *Store) fail(ctx context.Context, err error) {
	s.log.WarnCtx(ctx, "bookmark storage failure", slog.Any("err", err))
}

func (s *Store) notify(ctx context.Context, ev Event) {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()

	for _, l := range s.listeners {
		l(ctx, ev)
	}
}
