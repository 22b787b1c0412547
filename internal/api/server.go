package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pbaille/moodjournal/internal/domain"
	"github.com/pbaille/moodjournal/internal/journal"
	"github.com/pbaille/moodjournal/internal/logger"
	"github.com/pbaille/moodjournal/internal/session"
)

// SessionCookie carries the visitor's session ID
const SessionCookie = "moodjournal_session"

// Scorer exposes per-label probabilities for a text
type Scorer interface {
	Probabilities(text string) map[domain.Emotion]float64
}

// Server handles HTTP requests for the journal API
type Server struct {
	sessions *session.Repository
	bank     *journal.SuggestionBank
	scorer   Scorer
	log      logger.ILogger
	addr     string
}

// New creates a new API server. scorer may be nil.
func New(sessions *session.Repository, bank *journal.SuggestionBank, scorer Scorer, log logger.ILogger, addr string) *Server {
	return &Server{sessions: sessions, bank: bank, scorer: scorer, log: log, addr: addr}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Entries
	mux.HandleFunc("GET /entries", s.listEntries)
	mux.HandleFunc("POST /entries", s.addEntry)

	// Summaries
	mux.HandleFunc("GET /summary/frequency", s.frequency)
	mux.HandleFunc("GET /summary/timeline", s.timeline)

	mux.HandleFunc("GET /labels", s.labels)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return s.withLogging(withCORS(mux))
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.log.Info("api", "starting server", map[string]interface{}{"addr": s.addr})
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		s.log.Debug("api", "request", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

// sessionFor resolves the caller's session from its cookie, starting a new one if needed
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	sess, created := s.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		s.log.Debug("api", "session started", map[string]interface{}{"session": sess.ID})
	}
	return sess
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

// AddEntryRequest is the request body for adding an entry
type AddEntryRequest struct {
	Text string `json:"text"`
}

// AddEntryResponse is the response for adding an entry
type AddEntryResponse struct {
	Entry         domain.Entry               `json:"entry"`
	Suggestion    string                     `json:"suggestion"`
	Probabilities map[domain.Emotion]float64 `json:"probabilities,omitempty"`
}

func (s *Server) addEntry(w http.ResponseWriter, r *http.Request) {
	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	sess := s.sessionFor(w, r)

	entry, err := sess.Journal.Submit(req.Text)
	if errors.Is(err, domain.ErrEmptyInput) {
		writeError(w, http.StatusBadRequest, "empty_input", "please write something first")
		return
	}
	if err != nil {
		s.log.Error("api", "submit failed", map[string]interface{}{"error": err, "session": sess.ID})
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	suggestion, err := sess.PickSuggestion(s.bank, entry.Emotion)
	if err != nil {
		// the bank is validated at startup, so this is a configuration fault
		s.log.Error("api", "suggestion bank broken", map[string]interface{}{"error": err, "emotion": entry.Emotion})
		writeError(w, http.StatusInternalServerError, "no_suggestion", err.Error())
		return
	}

	resp := AddEntryResponse{Entry: entry, Suggestion: suggestion}
	if s.scorer != nil {
		resp.Probabilities = s.scorer.Probabilities(req.Text)
	}

	s.log.Info("api", "entry analyzed", map[string]interface{}{
		"session": sess.ID,
		"entry":   entry.ID,
		"emotion": entry.Emotion,
	})
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	entries := sess.Journal.Recent()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}

func (s *Server) frequency(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	counts := journal.SummarizeFrequency(sess.Journal.History())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"counts": counts,
		"total":  counts.Total(),
	})
}

func (s *Server) timeline(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"points": journal.SummarizeTimeline(sess.Journal.History()),
	})
}

func (s *Server) labels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"labels": domain.Emotions,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": message, "code": code})
}
