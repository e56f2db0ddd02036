package registry

import (
	"context"
	"sync"
	"time"

	"banker/events"
	"banker/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// AccountLoader loads or creates the durable account behind a session.
type AccountLoader interface {
	GetOrCreateAccount(ctx context.Context, ownerName string) (*models.Account, error)
}

// Session is the ephemeral record linking a connected player to their
// durable account. It is never persisted; only the account it points to
// survives the session. The account pointer and activity timestamp have
// their own lock so the registry mutex covers membership only.
type Session struct {
	ID        uuid.UUID
	OwnerName string
	JoinedAt  time.Time

	mu         sync.Mutex
	account    *models.Account
	lastActive time.Time
}

// Account returns the loaded account, or nil while loading is in flight.
func (s *Session) Account() *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

func (s *Session) attach(account *models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
}

// MarkActive records player activity. Called whenever the session reports
// a non-idle control state.
func (s *Session) MarkActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
}

// LastActive returns the time of the last recorded activity.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// IdleFor returns how long the session has been idle.
func (s *Session) IdleFor() time.Duration {
	return time.Since(s.LastActive())
}

// Registry owns the set of live sessions. A single mutex serializes
// membership changes and lookups; it deliberately does not serialize
// balance mutation, which belongs to the transfer protocol.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	loader AccountLoader
	bus    *events.Bus
}

// New creates an empty registry
func New(loader AccountLoader, bus *events.Bus) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		loader:   loader,
		bus:      bus,
	}
}

// Join creates a session for a connecting player. The account is not
// loaded yet; call EnsureAccountLoaded to start the load.
func (r *Registry) Join(ownerName string) *Session {
	session := &Session{
		ID:         uuid.New(),
		OwnerName:  ownerName,
		JoinedAt:   time.Now(),
		lastActive: time.Now(),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	log.WithFields(log.Fields{
		"sessionID": session.ID,
		"owner":     ownerName,
	}).Debug("Session joined")

	return session
}

// Leave removes a session. The account it pointed to stays durable.
func (r *Registry) Leave(sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// GetBySession returns the session with the given id, or nil.
func (r *Registry) GetBySession(sessionID uuid.UUID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[sessionID]
}

// GetByOwnerName returns the session for an owner, or nil. Linear scan;
// cardinality is the number of connected players.
func (r *Registry) GetByOwnerName(ownerName string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.OwnerName == ownerName {
			return session
		}
	}
	return nil
}

// GetByAccountName returns the session whose loaded account has the given
// owner name, or nil. Sessions still loading never match.
func (r *Registry) GetByAccountName(accountName string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if account := session.Account(); account != nil && account.OwnerName == accountName {
			return session
		}
	}
	return nil
}

// Snapshot returns a copy of the live session set.
func (r *Registry) Snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// AccountFor resolves a session's account. It fails rather than block:
// an unknown session is ErrNotFound and a session whose load has not
// finished is ErrAccountNotLoaded.
func (r *Registry) AccountFor(sessionID uuid.UUID) (*models.Account, error) {
	session := r.GetBySession(sessionID)
	if session == nil {
		return nil, models.ErrNotFound
	}
	account := session.Account()
	if account == nil {
		return nil, models.ErrAccountNotLoaded
	}
	return account, nil
}

// EnsureAccountLoaded asynchronously loads the durable account for the
// session's owner, creating one when none exists. The session's account
// reference stays nil until the load completes, at which point an
// account-loaded event fires.
func (r *Registry) EnsureAccountLoaded(ctx context.Context, session *Session) {
	go func() {
		account, err := r.loader.GetOrCreateAccount(ctx, session.OwnerName)
		if err != nil {
			log.WithFields(log.Fields{
				"sessionID": session.ID,
				"owner":     session.OwnerName,
			}).Errorf("Account load failed: %v", err)
			return
		}

		session.attach(account)

		log.WithFields(log.Fields{
			"owner":     session.OwnerName,
			"accountID": account.ID,
		}).Info("Account loaded for session")

		r.bus.Emit(ctx, events.AccountLoadedEvent{
			SessionID: session.ID,
			OwnerName: session.OwnerName,
			AccountID: account.ID,
		})
	}()
}
