// internal/content/sqlstore.go
//
// SQL-backed Store for SQLite (mattn/go-sqlite3) and PostgreSQL (lib/pq).
// Queries are written with '?' placeholders and rebound for the driver by sqlx.
//
// Schema lives in assets/schema.sql and is applied idempotently by EnsureSchema.
// Import loads a set of countries in one transaction (used for tests and for
// bootstrapping an empty database from a fixture).

package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/narharikale/globe/assets"
)

// SQLStore implements Store on top of *sqlx.DB.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// EnsureSchema creates the content tables if missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	stmts, err := assets.SchemaStatements()
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Import inserts countries with their cities, clues and facts.
// Facts are stored as trivia; the split between fun facts and trivia is not
// kept by the Country model.
func (s *SQLStore) Import(ctx context.Context, countries []Country) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return unavailable("import", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range countries {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO countries (id, name) VALUES (?, ?)`), c.ID, c.Name); err != nil {
			return fmt.Errorf("insert country %d: %w", c.ID, err)
		}
		for i, city := range c.Cities {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO cities (country_id, position, name) VALUES (?, ?, ?)`), c.ID, i, city); err != nil {
				return fmt.Errorf("insert city %q: %w", city, err)
			}
		}
		for _, cl := range c.Clues {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO clues (id, country_id, text) VALUES (?, ?, ?)`), cl.ID, c.ID, cl.Text); err != nil {
				return fmt.Errorf("insert clue %d: %w", cl.ID, err)
			}
		}
		for i, fact := range c.Facts {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO facts (country_id, kind, position, text) VALUES (?, 'trivia', ?, ?)`), c.ID, i, fact); err != nil {
				return fmt.Errorf("insert fact: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return unavailable("import", err)
	}
	return nil
}

// Empty reports whether no country rows exist yet.
func (s *SQLStore) Empty(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM countries`); err != nil {
		return false, unavailable("count countries", err)
	}
	return n == 0, nil
}

type countryRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type textRow struct {
	CountryID int64  `db:"country_id"`
	Text      string `db:"text"`
}

func (s *SQLStore) ListCountries(ctx context.Context) ([]Country, error) {
	var rows []countryRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name FROM countries ORDER BY id`); err != nil {
		return nil, unavailable("list countries", err)
	}
	var cities, facts []textRow
	if err := s.db.SelectContext(ctx, &cities, `SELECT country_id, name AS text FROM cities ORDER BY country_id, position`); err != nil {
		return nil, unavailable("list cities", err)
	}
	var clues []Clue
	if err := s.db.SelectContext(ctx, &clues, `SELECT id, country_id, text FROM clues ORDER BY id`); err != nil {
		return nil, unavailable("list clues", err)
	}
	if err := s.db.SelectContext(ctx, &facts, `SELECT country_id, text FROM facts ORDER BY country_id, kind, position`); err != nil {
		return nil, unavailable("list facts", err)
	}

	out := make([]Country, len(rows))
	idx := make(map[int64]int, len(rows))
	for i, r := range rows {
		out[i] = Country{ID: r.ID, Name: r.Name}
		idx[r.ID] = i
	}
	for _, c := range cities {
		if i, ok := idx[c.CountryID]; ok {
			out[i].Cities = append(out[i].Cities, c.Text)
		}
	}
	for _, cl := range clues {
		if i, ok := idx[cl.CountryID]; ok {
			out[i].Clues = append(out[i].Clues, cl)
		}
	}
	for _, f := range facts {
		if i, ok := idx[f.CountryID]; ok {
			out[i].Facts = append(out[i].Facts, f.Text)
		}
	}
	return out, nil
}

func (s *SQLStore) Country(ctx context.Context, id int64) (Country, error) {
	var r countryRow
	if err := s.db.GetContext(ctx, &r, s.db.Rebind(`SELECT id, name FROM countries WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Country{}, fmt.Errorf("country %d: %w", id, ErrNotFound)
		}
		return Country{}, unavailable("get country", err)
	}
	c := Country{ID: r.ID, Name: r.Name}
	if err := s.db.SelectContext(ctx, &c.Cities, s.db.Rebind(`SELECT name FROM cities WHERE country_id = ? ORDER BY position`), id); err != nil {
		return Country{}, unavailable("get cities", err)
	}
	if err := s.db.SelectContext(ctx, &c.Clues, s.db.Rebind(`SELECT id, country_id, text FROM clues WHERE country_id = ? ORDER BY id`), id); err != nil {
		return Country{}, unavailable("get clues", err)
	}
	if err := s.db.SelectContext(ctx, &c.Facts, s.db.Rebind(`SELECT text FROM facts WHERE country_id = ? ORDER BY kind, position`), id); err != nil {
		return Country{}, unavailable("get facts", err)
	}
	return c, nil
}

func (s *SQLStore) CountClues(ctx context.Context, excluded []int64) (int, error) {
	q, args, err := s.excluding(`SELECT COUNT(1) FROM clues`, excluded, "")
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, unavailable("count clues", err)
	}
	return n, nil
}

func (s *SQLStore) ClueAt(ctx context.Context, excluded []int64, index int) (Clue, error) {
	if index < 0 {
		return Clue{}, fmt.Errorf("clue index %d: %w", index, ErrNotFound)
	}
	q, args, err := s.excluding(`SELECT id, country_id, text FROM clues`, excluded, ` ORDER BY id LIMIT 1 OFFSET ?`, index)
	if err != nil {
		return Clue{}, err
	}
	var cl Clue
	if err := s.db.GetContext(ctx, &cl, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Clue{}, fmt.Errorf("clue index %d: %w", index, ErrNotFound)
		}
		return Clue{}, unavailable("clue at", err)
	}
	return cl, nil
}

func (s *SQLStore) Facts(ctx context.Context, countryID int64) ([]string, error) {
	var facts []string
	if err := s.db.SelectContext(ctx, &facts, s.db.Rebind(`SELECT text FROM facts WHERE country_id = ? ORDER BY kind, position`), countryID); err != nil {
		return nil, unavailable("get facts", err)
	}
	if len(facts) > 0 {
		return facts, nil
	}
	// An empty pool is valid; an unknown country is not.
	var exists int
	if err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT COUNT(1) FROM countries WHERE id = ?`), countryID); err != nil {
		return nil, unavailable("get country", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("facts for %d: %w", countryID, ErrNotFound)
	}
	return []string{}, nil
}

func (s *SQLStore) Summaries(ctx context.Context) ([]CountrySummary, error) {
	var out []CountrySummary
	err := s.db.SelectContext(ctx, &out, `
		SELECT c.id, c.name, COUNT(cl.id) AS clue_count
		FROM countries c
		LEFT JOIN clues cl ON cl.country_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.id`)
	if err != nil {
		return nil, unavailable("summaries", err)
	}
	if out == nil {
		out = []CountrySummary{}
	}
	return out, nil
}

// excluding appends a "country_id NOT IN (...)" filter when excluded is non-empty,
// then the suffix (whose placeholders bind to extra), and rebinds for the driver.
func (s *SQLStore) excluding(base string, excluded []int64, suffix string, extra ...any) (string, []any, error) {
	if len(excluded) == 0 {
		return s.db.Rebind(base + suffix), extra, nil
	}
	q, args, err := sqlx.In(base+` WHERE country_id NOT IN (?)`+suffix, append([]any{excluded}, extra...)...)
	if err != nil {
		return "", nil, fmt.Errorf("build exclusion query: %w", err)
	}
	return s.db.Rebind(q), args, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
