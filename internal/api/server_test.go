package api

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/moodjournal/internal/domain"
	"github.com/pbaille/moodjournal/internal/journal"
	"github.com/pbaille/moodjournal/internal/logger"
	"github.com/pbaille/moodjournal/internal/session"
)

// wordClassifier labels text by the first emotion name it contains, defaulting to joy.
type wordClassifier struct{}

func (wordClassifier) Classify(text string) domain.Emotion {
	for _, e := range domain.Emotions {
		if strings.Contains(strings.ToLower(text), string(e)) {
			return e
		}
	}
	return domain.Joy
}

func (c wordClassifier) Probabilities(text string) map[domain.Emotion]float64 {
	out := map[domain.Emotion]float64{}
	for _, e := range domain.Emotions {
		out[e] = 0
	}
	out[c.Classify(text)] = 1
	return out
}

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	table := map[domain.Emotion][]string{}
	for _, e := range domain.Emotions {
		table[e] = []string{"tip for " + string(e)}
	}
	bank, err := journal.NewSuggestionBank(table)
	require.NoError(t, err)

	n := 0
	clock := func() string {
		n++
		return time.Date(2024, 5, 1, 9, 0, n, 0, time.UTC).Format(domain.TimestampLayout)
	}
	repo := session.NewRepository(wordClassifier{}, clock, time.Hour).
		WithRandSource(func() *rand.Rand { return rand.New(rand.NewPCG(1, 1)) })

	srv := httptest.NewServer(New(repo, bank, wordClassifier{}, logger.NewNop(), "").Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}
}

func postEntry(t *testing.T, client *http.Client, base, text string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(AddEntryRequest{Text: text})
	resp, err := client.Post(base+"/entries", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAddEntry(t *testing.T) {
	srv, client := newTestServer(t)

	resp := postEntry(t, client, srv.URL, "Pure joy this morning")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got AddEntryResponse
	decode(t, resp, &got)
	assert.Equal(t, domain.Joy, got.Entry.Emotion)
	assert.Equal(t, "Pure joy this morning", got.Entry.Text)
	assert.Equal(t, "2024-05-01 09:00:01", got.Entry.Timestamp)
	assert.Equal(t, "tip for joy", got.Suggestion)
	assert.Equal(t, 1.0, got.Probabilities[domain.Joy])
}

func TestAddEntryRejectsBlank(t *testing.T) {
	srv, client := newTestServer(t)

	resp := postEntry(t, client, srv.URL, "   ")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "empty_input", body["code"])

	resp, err := client.Get(srv.URL + "/entries")
	require.NoError(t, err)
	var list struct {
		Total int `json:"total"`
	}
	decode(t, resp, &list)
	assert.Equal(t, 0, list.Total)
}

func TestAddEntryRejectsBadJSON(t *testing.T) {
	srv, client := newTestServer(t)

	resp, err := client.Post(srv.URL+"/entries", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSummariesFollowSession(t *testing.T) {
	srv, client := newTestServer(t)

	for _, text := range []string{"sadness everywhere", "a joy", "sadness again"} {
		resp := postEntry(t, client, srv.URL, text)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := client.Get(srv.URL + "/summary/frequency")
	require.NoError(t, err)
	var freq struct {
		Counts map[domain.Emotion]int `json:"counts"`
		Total  int                    `json:"total"`
	}
	decode(t, resp, &freq)
	assert.Equal(t, map[domain.Emotion]int{domain.Sadness: 2, domain.Joy: 1}, freq.Counts)
	assert.Equal(t, 3, freq.Total)

	resp, err = client.Get(srv.URL + "/summary/timeline")
	require.NoError(t, err)
	var tl struct {
		Points []journal.TimelinePoint `json:"points"`
	}
	decode(t, resp, &tl)
	require.Len(t, tl.Points, 3)
	assert.Equal(t, domain.Sadness, tl.Points[0].Emotion)
	assert.Equal(t, domain.Joy, tl.Points[1].Emotion)
	assert.Equal(t, "2024-05-01 09:00:03", tl.Points[2].Timestamp)

	resp, err = client.Get(srv.URL + "/entries")
	require.NoError(t, err)
	var list struct {
		Entries []domain.Entry `json:"entries"`
	}
	decode(t, resp, &list)
	require.Len(t, list.Entries, 3)
	assert.Equal(t, "sadness again", list.Entries[0].Text)

	// a client without the cookie sees its own empty journal
	resp, err = http.Get(srv.URL + "/summary/frequency")
	require.NoError(t, err)
	var fresh struct {
		Counts map[domain.Emotion]int `json:"counts"`
	}
	decode(t, resp, &fresh)
	assert.Empty(t, fresh.Counts)
}

func TestLabelsAndHealth(t *testing.T) {
	srv, client := newTestServer(t)

	resp, err := client.Get(srv.URL + "/labels")
	require.NoError(t, err)
	var labels struct {
		Labels []domain.Emotion `json:"labels"`
	}
	decode(t, resp, &labels)
	assert.Equal(t, domain.Emotions, labels.Labels)

	resp, err = client.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := http.NewRequest("OPTIONS", srv.URL+"/entries", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
