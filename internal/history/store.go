// Package history persists completed analyses so patients can review
// past results. The store is optional: with no DSN configured every
// method is a cheap no-op and the service runs stateless.
package history

import (
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Analysis is one stored flow result, input and output both kept as raw
// JSON so the schema layer stays the single owner of their shapes.
type Analysis struct {
	ID        string          `json:"id"`
	Flow      string          `json:"flow"`
	Input     json.RawMessage `json:"input"`
	Output    json.RawMessage `json:"output"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Store struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	recent *lru.Cache[string, Analysis]
}

// New opens a Postgres-backed store. An empty DSN returns a nil store,
// which every method tolerates.
func New(dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	recent, err := lru.New[string, Analysis](512)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, recent: recent}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS analyses (
  id TEXT PRIMARY KEY,
  flow TEXT NOT NULL,
  input JSONB NOT NULL DEFAULT '{}',
  output JSONB NOT NULL DEFAULT '{}',
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_analyses_flow ON analyses (flow);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC);
`)
	})
	return s.schemaErr
}

// Record stores a completed flow result and returns its id. A nil or
// unconfigured store records nothing and reports no error so flows
// never fail on persistence.
func (s *Store) Record(flow string, input, output json.RawMessage) (string, error) {
	if s == nil || s.db == nil {
		return "", nil
	}
	if err := s.ensureSchema(); err != nil {
		return "", err
	}
	a := Analysis{
		ID:        uuid.NewString(),
		Flow:      strings.TrimSpace(flow),
		Input:     input,
		Output:    output,
		CreatedAt: time.Now().UTC(),
	}
	if len(a.Input) == 0 {
		a.Input = json.RawMessage(`{}`)
	}
	if len(a.Output) == 0 {
		a.Output = json.RawMessage(`{}`)
	}
	_, err := s.db.Exec(`
INSERT INTO analyses (id, flow, input, output, created_at)
VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.Flow, []byte(a.Input), []byte(a.Output), a.CreatedAt)
	if err != nil {
		return "", err
	}
	s.recent.Add(a.ID, a)
	return a.ID, nil
}

// Get returns one stored analysis by id.
func (s *Store) Get(id string) (Analysis, bool) {
	if s == nil || s.db == nil {
		return Analysis{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Analysis{}, false
	}
	if a, ok := s.recent.Get(id); ok {
		return a, true
	}
	if err := s.ensureSchema(); err != nil {
		return Analysis{}, false
	}
	row := s.db.QueryRow(`SELECT id, flow, input, output, created_at
FROM analyses WHERE id = $1`, id)
	a, ok := scanAnalysis(row)
	if ok {
		s.recent.Add(a.ID, a)
	}
	return a, ok
}

// List returns the most recent analyses, newest first, optionally
// filtered by flow name. Limit is clamped to [1, 200].
func (s *Store) List(flow string, limit int) ([]Analysis, error) {
	if s == nil || s.db == nil {
		return []Analysis{}, nil
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	var (
		rows *sql.Rows
		err  error
	)
	flow = strings.TrimSpace(flow)
	if flow == "" {
		rows, err = s.db.Query(`SELECT id, flow, input, output, created_at
FROM analyses ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		rows, err = s.db.Query(`SELECT id, flow, input, output, created_at
FROM analyses WHERE flow = $1 ORDER BY created_at DESC LIMIT $2`, flow, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Analysis, 0, limit)
	for rows.Next() {
		if a, ok := scanAnalysis(rows); ok {
			out = append(out, a)
		}
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, bool) {
	var (
		a      Analysis
		input  []byte
		output []byte
	)
	if err := row.Scan(&a.ID, &a.Flow, &input, &output, &a.CreatedAt); err != nil {
		return Analysis{}, false
	}
	a.Input = json.RawMessage(input)
	a.Output = json.RawMessage(output)
	return a, true
}
