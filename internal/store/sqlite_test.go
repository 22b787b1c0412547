package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/moodjournal/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "corpus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadCorpusMissing(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.LoadCorpus("dair-ai/emotion", "train")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveAndLoadCorpusKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	c := domain.Corpus{
		Name:  "dair-ai/emotion",
		Split: "train",
		Samples: []domain.Sample{
			{Text: "i feel awful", Label: 0},
			{Text: "what a lovely day", Label: 1},
			{Text: "i didn't see that coming", Label: 5},
		},
	}

	info, err := s.SaveCorpus(c)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Samples)
	assert.NotEmpty(t, info.ID)

	got, found, err := s.LoadCorpus(c.Name, c.Split)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, c, got)
}

func TestSaveCorpusReplacesPreviousCopy(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SaveCorpus(domain.Corpus{Name: "ds", Split: "train", Samples: []domain.Sample{{Text: "old", Label: 0}}})
	require.NoError(t, err)
	_, err = s.SaveCorpus(domain.Corpus{Name: "ds", Split: "train", Samples: []domain.Sample{{Text: "new", Label: 1}, {Text: "newer", Label: 2}}})
	require.NoError(t, err)
	_, err = s.SaveCorpus(domain.Corpus{Name: "ds", Split: "test", Samples: []domain.Sample{{Text: "held", Label: 3}}})
	require.NoError(t, err)

	got, found, err := s.LoadCorpus("ds", "train")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []domain.Sample{{Text: "new", Label: 1}, {Text: "newer", Label: 2}}, got.Samples)

	infos, err := s.ListCorpora()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "test", infos[0].Split)
	assert.Equal(t, 1, infos[0].Samples)
	assert.Equal(t, "train", infos[1].Split)
	assert.Equal(t, 2, infos[1].Samples)
}

func TestListCorporaReportsErrors(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "corpus.db"))
	require.NoError(t, err)

	_, err = s.SaveCorpus(domain.Corpus{Name: "ds", Split: "train", Samples: []domain.Sample{{Text: "a", Label: 0}}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	infos, err := s.ListCorpora()
	assert.Error(t, err)
	assert.Nil(t, infos)
}
