package session

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/pbaille/moodjournal/internal/domain"
	"github.com/pbaille/moodjournal/internal/journal"
)

// Session is one visitor's journaling context
type Session struct {
	ID        string
	CreatedAt time.Time
	Journal   *journal.Journal

	rngMu sync.Mutex
	rng   *rand.Rand
}

// PickSuggestion draws a suggestion for emotion from bank using the session's random source
func (s *Session) PickSuggestion(bank *journal.SuggestionBank, emotion domain.Emotion) (string, error) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return bank.Pick(emotion, s.rng)
}

// Repository keeps sessions in memory and forgets them after ttl of inactivity
type Repository struct {
	cache      *cache.Cache
	classifier journal.Classifier
	clock      journal.Clock
	seed       func() *rand.Rand
}

// NewRepository creates a session store. Every new session gets its own Journal
// backed by the shared classifier.
func NewRepository(c journal.Classifier, clock journal.Clock, ttl time.Duration) *Repository {
	return &Repository{
		cache:      cache.New(ttl, 10*time.Minute),
		classifier: c,
		clock:      clock,
		seed: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

// WithRandSource makes new sessions draw suggestions from sources built by seed
func (r *Repository) WithRandSource(seed func() *rand.Rand) *Repository {
	r.seed = seed
	return r
}

// Create starts a new session with an empty journal
func (r *Repository) Create() *Session {
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Journal:   journal.New(r.classifier, r.clock),
		rng:       r.seed(),
	}
	r.cache.Set(s.ID, s, cache.DefaultExpiration)
	return s
}

// Get returns a live session and extends its lifetime
func (r *Repository) Get(id string) (*Session, bool) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, false
	}
	s := x.(*Session)
	r.cache.Set(id, s, cache.DefaultExpiration)
	return s, true
}

// GetOrCreate returns the session for id, or a fresh one when it is unknown or expired
func (r *Repository) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := r.Get(id); ok {
			return s, false
		}
	}
	return r.Create(), true
}

// Delete ends a session
func (r *Repository) Delete(id string) {
	r.cache.Delete(id)
}

// Count returns the number of live sessions
func (r *Repository) Count() int {
	return r.cache.ItemCount()
}
