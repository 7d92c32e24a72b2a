package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"ai-docchat-be/pkg/store"
)

// SessionRepository keeps the live chat sessions in process memory. Sessions
// idle past the TTL are evicted together with their history; the vector
// collection itself is owned by the vector store, not this registry.
type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository builds a registry that expires sessions after an hour
// of inactivity and sweeps expired entries every ten minutes.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		cache: cache.New(1*time.Hour, 10*time.Minute),
	}
}

// Save stores or refreshes a session. Every save resets the idle TTL.
func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

// All returns the ids of every live session, for diagnostics.
func (r *SessionRepository) All() []string {
	items := r.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	return ids
}
