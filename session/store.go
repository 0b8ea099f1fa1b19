package session

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/infocampus/campus/models"
)

// State is a snapshot of the session as seen by the gate and the dispatcher
type State struct {
	Loading   bool
	Principal *models.Principal
}

// Authenticated reports whether a principal with a credential is present
func (s State) Authenticated() bool {
	return !s.Loading && s.Principal.HasToken()
}

// Listener is called after every change of the session state
type Listener func(State)

// Store is the single source of truth for the current principal.
// It starts in the loading state until Hydrate reads the persisted record.
type Store struct {
	mu        sync.RWMutex
	storage   Storage
	logger    *zap.Logger
	principal *models.Principal
	loading   bool

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// NewStore creates a store over storage. Call Hydrate before reading it.
func NewStore(storage Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		storage:   storage,
		logger:    logger,
		loading:   true,
		listeners: make(map[int]Listener),
	}
}

// Hydrate loads the persisted principal. A corrupt record is treated as
// absent and removed.
func (s *Store) Hydrate() error {
	p, err := s.storage.Load()
	if errors.Is(err, ErrCorrupt) {
		s.logger.Warn("discarding corrupt session", zap.Error(err))
		if clearErr := s.storage.Clear(); clearErr != nil {
			s.logger.Warn("failed to clear corrupt session", zap.Error(clearErr))
		}
		p, err = nil, nil
	}

	s.mu.Lock()
	s.principal = p
	s.loading = false
	s.mu.Unlock()

	s.notify()

	if err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}
	return nil
}

// State returns the current snapshot
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Loading: s.loading, Principal: copyPrincipal(s.principal)}
}

// Principal returns a copy of the current principal, or nil
func (s *Store) Principal() *models.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPrincipal(s.principal)
}

// Token returns the current bearer credential, or "" when unauthenticated
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return ""
	}
	return s.principal.BearerToken
}

// Login persists p and makes it the current principal
func (s *Store) Login(p *models.Principal) error {
	if !p.HasToken() {
		return ErrMissingToken
	}
	if !p.Role.Valid() {
		s.logger.Warn("login with unrecognized role", zap.String("username", p.Username))
	}
	if err := s.storage.Save(p); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.principal = copyPrincipal(p)
	s.loading = false
	s.mu.Unlock()

	s.logger.Info("session started",
		zap.Int64("user_id", p.ID),
		zap.String("role", string(p.Role)),
	)
	s.notify()
	return nil
}

// Logout clears the principal in memory and on disk. It is safe to call
// when already logged out.
func (s *Store) Logout() error {
	s.mu.Lock()
	was := s.principal != nil
	s.principal = nil
	s.loading = false
	s.mu.Unlock()

	err := s.storage.Clear()
	if was {
		s.logger.Info("session ended")
		s.notify()
	}
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Subscribe registers l and returns a function that removes it
func (s *Store) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Store) notify() {
	state := s.State()

	s.listenersMu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.listenersMu.Unlock()

	for _, l := range ls {
		l(state)
	}
}

func copyPrincipal(p *models.Principal) *models.Principal {
	if p == nil {
		return nil
	}
	cp := *p
	if p.CareerRef != nil {
		ref := *p.CareerRef
		cp.CareerRef = &ref
	}
	return &cp
}
