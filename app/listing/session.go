package listing

import (
	"context"
	"errors"
	"sync"

	"github.com/Semior001/newsbook/app/store"
)

// ErrStale is returned when the response was superseded by a newer request.
var ErrStale = errors.New("response superseded by a newer request")

// State is the pagination state shown to a user.
type State struct {
	Query        string
	Articles     []store.Article
	CurrentPage  int
	TotalPages   int
	TotalResults int
}

// Session holds the listing state of a single user. Every request takes
// a generation number and only the response of the latest generation
// is applied to the state.
type Session struct {
	mu    sync.Mutex
	gen   uint64
	state State
}

// NewSession makes a session showing the first page of headlines.
func NewSession() *Session {
	return &Session{state: State{CurrentPage: 1, TotalPages: 1}}
}

// Begin issues a new generation, making all previous ones stale.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Latest returns true if the generation is the latest issued one.
func (s *Session) Latest(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

// Apply replaces the state with the result, if the generation is still the latest.
func (s *Session) Apply(gen uint64, res Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}

	s.state = State{
		Query:        res.Query,
		Articles:     res.Articles,
		CurrentPage:  res.CurrentPage,
		TotalPages:   res.TotalPages,
		TotalResults: res.TotalResults,
	}
	return true
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Article returns the idx-th (1-based) article of the current page.
func (s *Session) Article(idx int) (store.Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 1 || idx > len(s.state.Articles) {
		return store.Article{}, false
	}
	return s.state.Articles[idx-1], true
}

// LoadInto loads the page and applies it to the session. It returns
// ErrStale if another request was issued for the session meanwhile.
func (c *Coordinator) LoadInto(ctx context.Context, sess *Session, query string, page int) (Result, error) {
	gen := sess.Begin()

	res, err := c.Load(ctx, query, page)
	if !sess.Latest(gen) {
		return Result{}, ErrStale
	}
	if err != nil {
		return Result{}, err
	}

	if !sess.Apply(gen, res) {
		return Result{}, ErrStale
	}

	return res, nil
}

// Sessions keeps a session per user.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessions makes an empty set of sessions.
func NewSessions() *Sessions {
	return &Sessions{sessions: map[string]*Session{}}
}

// Get returns the session of the user, creating it if needed.
func (s *Sessions) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = NewSession()
		s.sessions[id] = sess
	}
	return sess
}
