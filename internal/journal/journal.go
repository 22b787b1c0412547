package journal

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pbaille/moodjournal/internal/domain"
)

// Classifier labels a piece of text with one of the fixed emotions
type Classifier interface {
	Classify(text string) domain.Emotion
}

// Clock returns the current wall-clock time as an entry timestamp
type Clock func() string

// SystemClock stamps entries with the local time at second precision
func SystemClock() string {
	return time.Now().Format(domain.TimestampLayout)
}

// Journal is one session's append-only history of classified entries
type Journal struct {
	classifier Classifier
	clock      Clock

	mu      sync.Mutex
	entries []domain.Entry
}

// New creates an empty Journal. A nil clock uses SystemClock.
func New(c Classifier, clock Clock) *Journal {
	if clock == nil {
		clock = SystemClock
	}
	return &Journal{classifier: c, clock: clock}
}

// Submit classifies text and appends the resulting entry.
// Text that is empty after trimming whitespace is rejected with
// domain.ErrEmptyInput and nothing is recorded.
func (j *Journal) Submit(text string) (domain.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Entry{}, domain.ErrEmptyInput
	}

	emotion := j.classifier.Classify(text)
	if !emotion.Valid() {
		return domain.Entry{}, fmt.Errorf("classifier returned unknown label %q", emotion)
	}

	entry := domain.Entry{
		ID:      uuid.New().String(),
		Text:    text,
		Emotion: emotion,
	}

	// stamp and append under one lock so history stays in clock order
	j.mu.Lock()
	entry.Timestamp = j.clock()
	j.entries = append(j.entries, entry)
	j.mu.Unlock()

	return entry, nil
}

// History returns a copy of the entries in submission order
func (j *Journal) History() []domain.Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]domain.Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Recent returns the entries newest first
func (j *Journal) Recent() []domain.Entry {
	out := j.History()
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// Len returns the number of recorded entries
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}
