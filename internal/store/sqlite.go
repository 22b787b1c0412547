package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/moodjournal/internal/domain"
)

//go:embed schema.sql
var schema string

// Store caches fetched training corpora so later startups skip the network
type Store struct {
	db *sql.DB
}

// CorpusInfo describes one cached corpus
type CorpusInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Split     string    `json:"split"`
	Samples   int       `json:"samples"`
	FetchedAt time.Time `json:"fetched_at"`
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCorpus replaces any cached copy of the corpus with the given samples
func (s *Store) SaveCorpus(c domain.Corpus) (*CorpusInfo, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var oldID string
	err = tx.QueryRow("SELECT id FROM corpora WHERE name = ? AND split = ?", c.Name, c.Split).Scan(&oldID)
	switch {
	case err == nil:
		if _, err := tx.Exec("DELETE FROM samples WHERE corpus_id = ?", oldID); err != nil {
			return nil, fmt.Errorf("delete samples: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM corpora WHERE id = ?", oldID); err != nil {
			return nil, fmt.Errorf("delete corpus: %w", err)
		}
	case err != sql.ErrNoRows:
		return nil, fmt.Errorf("find corpus: %w", err)
	}

	id := uuid.New().String()
	now := time.Now()

	if _, err := tx.Exec(
		"INSERT INTO corpora (id, name, split, fetched_at) VALUES (?, ?, ?, ?)",
		id, c.Name, c.Split, now,
	); err != nil {
		return nil, fmt.Errorf("insert corpus: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO samples (corpus_id, position, text, label) VALUES (?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for i, sample := range c.Samples {
		if _, err := stmt.Exec(id, i, sample.Text, sample.Label); err != nil {
			return nil, fmt.Errorf("insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &CorpusInfo{
		ID:        id,
		Name:      c.Name,
		Split:     c.Split,
		Samples:   len(c.Samples),
		FetchedAt: now,
	}, nil
}

// LoadCorpus returns the cached corpus in its original order.
// found is false when nothing is cached under name and split.
func (s *Store) LoadCorpus(name, split string) (c domain.Corpus, found bool, err error) {
	var id string
	err = s.db.QueryRow("SELECT id FROM corpora WHERE name = ? AND split = ?", name, split).Scan(&id)
	if err == sql.ErrNoRows {
		return domain.Corpus{}, false, nil
	}
	if err != nil {
		return domain.Corpus{}, false, fmt.Errorf("find corpus: %w", err)
	}

	rows, err := s.db.Query(
		"SELECT text, label FROM samples WHERE corpus_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return domain.Corpus{}, false, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	c = domain.Corpus{Name: name, Split: split}
	for rows.Next() {
		var sample domain.Sample
		if err := rows.Scan(&sample.Text, &sample.Label); err != nil {
			return domain.Corpus{}, false, fmt.Errorf("scan sample: %w", err)
		}
		c.Samples = append(c.Samples, sample)
	}
	if err := rows.Err(); err != nil {
		return domain.Corpus{}, false, fmt.Errorf("iterate samples: %w", err)
	}

	return c, true, nil
}

// ListCorpora returns every cached corpus with its sample count
func (s *Store) ListCorpora() ([]CorpusInfo, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.split, c.fetched_at, COUNT(s.position)
		FROM corpora c
		LEFT JOIN samples s ON s.corpus_id = c.id
		GROUP BY c.id
		ORDER BY c.name, c.split
	`)
	if err != nil {
		return nil, fmt.Errorf("list corpora: %w", err)
	}
	defer rows.Close()

	var infos []CorpusInfo
	for rows.Next() {
		var info CorpusInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Split, &info.FetchedAt, &info.Samples); err != nil {
			return nil, fmt.Errorf("scan corpus: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list corpora: %w", err)
	}

	return infos, nil
}
