// Package session keeps active conversation state in process memory. Sessions
// are short-lived by design: an abandoned intake expires with its TTL and the
// candidate starts over.
package session

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/talentscout/talentscout-api/internal/models"
	"github.com/talentscout/talentscout-api/pkg/errors"
	"github.com/talentscout/talentscout-api/pkg/logger"
)

const cacheCheckPeriod = 1 * time.Minute

// Store holds live sessions keyed by conversation id
type Store struct {
	cache *gocache.Cache
	ttl   time.Duration

	// locks serializes turns per conversation. Entries are never removed;
	// a mutex is tiny and conversation ids are not client-chosen.
	locks sync.Map
}

// NewStore creates a session store where entries expire ttl after their last
// write.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		cache: gocache.New(ttl, cacheCheckPeriod),
		ttl:   ttl,
	}
}

// Put stores a session, resetting its expiration
func (st *Store) Put(s *models.Session) {
	st.cache.Set(s.ID, s, st.ttl)
}

// Get returns the session for a conversation id, or ErrNotFound if it never
// existed or has expired.
func (st *Store) Get(conversationID string) (*models.Session, error) {
	data, found := st.cache.Get(conversationID)
	if !found {
		return nil, errors.NotFoundError("conversation not found or expired")
	}

	s, ok := data.(*models.Session)
	if !ok {
		logger.Error("Invalid session cache data type", zap.String("conversation_id", conversationID))
		st.cache.Delete(conversationID)
		return nil, errors.InternalError("invalid session data")
	}

	return s, nil
}

// Lock acquires the per-conversation mutex and returns its unlock function.
// Exactly one turn is processed per conversation at a time.
func (st *Store) Lock(conversationID string) func() {
	muAny, _ := st.locks.LoadOrStore(conversationID, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Count returns the number of live sessions
func (st *Store) Count() int {
	return st.cache.ItemCount()
}
