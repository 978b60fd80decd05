// Package memory provides in-process repository implementations. The import
// session store lives here by default; the port allows swapping in an
// external session store without touching the coordinator.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openbooks/ledger_ingest_app/internal/apperrors"
	"github.com/openbooks/ledger_ingest_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_ingest_app/internal/core/ports/repositories"
)

// SessionRepository is a threadsafe in-memory ImportSessionRepository.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.ImportSession
}

// NewSessionRepository creates an empty in-memory session store.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.ImportSession)}
}

var _ portsrepo.ImportSessionRepository = (*SessionRepository)(nil)

// SaveSession stores a new session. Import ids are unique; storing an
// existing id is a programming error surfaced as validation failure.
func (r *SessionRepository) SaveSession(_ context.Context, session domain.ImportSession) error {
	if session.ImportID == "" {
		return fmt.Errorf("%w: import session ID is required", apperrors.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.ImportID]; exists {
		return fmt.Errorf("%w: import session %s already exists", apperrors.ErrValidation, session.ImportID)
	}
	r.sessions[session.ImportID] = session
	return nil
}

// FindSessionByID retrieves a session by its import id.
func (r *SessionRepository) FindSessionByID(_ context.Context, importID string) (*domain.ImportSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[importID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	// Copy out so callers never share the stored value.
	out := session
	return &out, nil
}

// UpdateSession replaces a stored session.
func (r *SessionRepository) UpdateSession(_ context.Context, session domain.ImportSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ImportID]; !ok {
		return apperrors.ErrNotFound
	}
	r.sessions[session.ImportID] = session
	return nil
}

// ListExpiredSessions returns non-terminal sessions whose decision window
// closed before now.
func (r *SessionRepository) ListExpiredSessions(_ context.Context, now time.Time) ([]domain.ImportSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expired := []domain.ImportSession{}
	for _, session := range r.sessions {
		if !session.State.Terminal() && session.Expired(now) {
			expired = append(expired, session)
		}
	}
	return expired, nil
}
