package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/moodjournal/internal/domain"
	"github.com/pbaille/moodjournal/internal/logger"
	"github.com/pbaille/moodjournal/internal/store"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileSourceLoads(t *testing.T) {
	path := writeFile(t, `{"text": "i feel rotten", "label": 0}

{"text": "i am thrilled", "label": 1}
`)

	c, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Sample{
		{Text: "i feel rotten", Label: 0},
		{Text: "i am thrilled", Label: 1},
	}, c.Samples)
}

func TestFileSourceErrorsAreDataUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad json", `{"text": "oops"`},
		{"label out of range", `{"text": "hm", "label": 6}`},
		{"empty", "\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FileSource{Path: writeFile(t, tt.content)}.Load(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
		})
	}

	_, err := FileSource{Path: filepath.Join(t.TempDir(), "missing.jsonl")}.Load(context.Background())
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
}

// newHubServer serves total rows in pages, labelling row i with i%6.
func newHubServer(t *testing.T, total int, reportTotal bool, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/rows", r.URL.Path)
		assert.Equal(t, "dair-ai/emotion", r.URL.Query().Get("dataset"))

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		length, _ := strconv.Atoi(r.URL.Query().Get("length"))

		type row struct {
			RowIdx int           `json:"row_idx"`
			Row    domain.Sample `json:"row"`
		}
		var rows []row
		for i := offset; i < offset+length && i < total; i++ {
			rows = append(rows, row{RowIdx: i, Row: domain.Sample{Text: fmt.Sprintf("text %d", i), Label: i % 6}})
		}
		body := map[string]interface{}{"rows": rows}
		if reportTotal {
			body["num_rows_total"] = total
		}
		json.NewEncoder(w).Encode(body)
	}))
}

func TestHubSourcePages(t *testing.T) {
	var hits atomic.Int32
	srv := newHubServer(t, 250, true, &hits)
	defer srv.Close()

	h := NewHubSource()
	h.BaseURL = srv.URL

	c, err := h.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, c.Samples, 250)
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, "text 249", c.Samples[249].Text)
	assert.Equal(t, "dair-ai/emotion", c.Name)
}

func TestHubSourcePagesWithoutTotal(t *testing.T) {
	var hits atomic.Int32
	srv := newHubServer(t, 250, false, &hits)
	defer srv.Close()

	h := NewHubSource()
	h.BaseURL = srv.URL

	c, err := h.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, c.Samples, 250)
	assert.Equal(t, int32(4), hits.Load())
	assert.Equal(t, "text 249", c.Samples[249].Text)
}

func TestHubSourceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "dataset not found", http.StatusNotFound)
	}))
	defer srv.Close()

	h := NewHubSource()
	h.BaseURL = srv.URL

	_, err := h.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
	assert.Contains(t, err.Error(), "status 404")
}

func TestCachedSourceFetchesOnceThenServesCache(t *testing.T) {
	var hits atomic.Int32
	srv := newHubServer(t, 30, true, &hits)
	defer srv.Close()

	st, err := store.New(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer st.Close()

	hub := NewHubSource()
	hub.BaseURL = srv.URL
	src := &CachedSource{Upstream: hub, Store: st, Name: DefaultDataset, Split: DefaultSplit, Log: logger.NewNop()}

	first, err := src.Load(context.Background())
	require.NoError(t, err)
	second, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, first, second)

	src.Refresh = true
	_, err = src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}
