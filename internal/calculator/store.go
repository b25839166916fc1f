package calculator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
)

// StoreOptions bounds the session store. Zero values disable the bound.
type StoreOptions struct {
	TTL         time.Duration
	MaxSessions int
}

type session struct {
	mu       sync.Mutex
	machine  *Machine
	lastSeen time.Time
}

// Store keeps one Machine per session in memory. Events for a session are
// applied one at a time under that session's lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	opts     StoreOptions
	now      func() time.Time
}

func NewStore(opts StoreOptions) *Store {
	return &Store{
		sessions: make(map[string]*session),
		opts:     opts,
		now:      time.Now,
	}
}

// Create starts a new session in the initial state.
func (s *Store) Create() (string, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.MaxSessions > 0 && len(s.sessions) >= s.opts.MaxSessions {
		return "", State{}, ErrSessionLimit
	}

	id := uuid.New().String()
	sess := &session{machine: NewMachine(), lastSeen: s.now()}
	s.sessions[id] = sess
	sessionsActive.Set(float64(len(s.sessions)))

	return id, sess.machine.State(), nil
}

func (s *Store) lookup(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Get returns the current state of a session.
func (s *Store) Get(id string) (State, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return State{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.lastSeen = s.now()
	return sess.machine.State(), nil
}

// Dispatch applies e to the session's machine.
func (s *Store) Dispatch(id string, e Event) (Transition, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Transition{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.lastSeen = s.now()
	return sess.machine.Dispatch(e)
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	sessionsActive.Set(float64(len(s.sessions)))

	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep(now time.Time) int {
	if s.opts.TTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastSeen)
		sess.mu.Unlock()

		if idle > s.opts.TTL {
			delete(s.sessions, id)
			removed++
		}
	}

	sessionsActive.Set(float64(len(s.sessions)))
	sessionsEvicted.Add(float64(removed))

	return removed
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 || s.opts.TTL <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
