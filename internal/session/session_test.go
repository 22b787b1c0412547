package session

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/moodjournal/internal/domain"
	"github.com/pbaille/moodjournal/internal/journal"
)

type joyClassifier struct{}

func (joyClassifier) Classify(string) domain.Emotion { return domain.Joy }

func TestSessionsHaveIndependentJournals(t *testing.T) {
	repo := NewRepository(joyClassifier{}, nil, time.Hour)

	a := repo.Create()
	b := repo.Create()
	require.NotEqual(t, a.ID, b.ID)

	_, err := a.Journal.Submit("hello")
	require.NoError(t, err)

	assert.Equal(t, 1, a.Journal.Len())
	assert.Equal(t, 0, b.Journal.Len())
	assert.Equal(t, 2, repo.Count())
}

func TestGetOrCreate(t *testing.T) {
	repo := NewRepository(joyClassifier{}, nil, time.Hour)

	s, created := repo.GetOrCreate("")
	assert.True(t, created)

	again, created := repo.GetOrCreate(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	_, created = repo.GetOrCreate("unknown")
	assert.True(t, created)

	repo.Delete(s.ID)
	_, ok := repo.Get(s.ID)
	assert.False(t, ok)
}

func TestSessionsExpire(t *testing.T) {
	repo := NewRepository(joyClassifier{}, nil, 20*time.Millisecond)
	s := repo.Create()

	time.Sleep(50 * time.Millisecond)

	_, ok := repo.Get(s.ID)
	assert.False(t, ok)
}

func TestPickSuggestionUsesSessionSource(t *testing.T) {
	table := map[domain.Emotion][]string{}
	for _, e := range domain.Emotions {
		table[e] = []string{"a", "b", "c", "d"}
	}
	bank, err := journal.NewSuggestionBank(table)
	require.NoError(t, err)

	seeded := func() *rand.Rand { return rand.New(rand.NewPCG(9, 9)) }
	r1 := NewRepository(joyClassifier{}, nil, time.Hour).WithRandSource(seeded)
	r2 := NewRepository(joyClassifier{}, nil, time.Hour).WithRandSource(seeded)
	s1, s2 := r1.Create(), r2.Create()

	for i := 0; i < 5; i++ {
		m1, err := s1.PickSuggestion(bank, domain.Joy)
		require.NoError(t, err)
		m2, err := s2.PickSuggestion(bank, domain.Joy)
		require.NoError(t, err)
		assert.Equal(t, m1, m2)
	}
}
