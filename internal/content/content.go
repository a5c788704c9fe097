// internal/content/content.go
//
// Content model and the Store interface consumed by the game engine.
//
// A Store holds countries, each with cities, clues and a pooled list of facts
// (fun facts and trivia). Implementations in this package:
//   - Fixture:   immutable in-memory data (embedded JSON or a JSON file).
//   - SQLStore:  SQLite or PostgreSQL through sqlx.
//   - Breaker:   circuit-breaker decorator over any Store.
//
// Errors:
//   - ErrNotFound     a requested country/clue does not exist.
//   - ErrUnavailable  the backing storage failed (I/O, closed pool, open breaker).

package content

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("content: not found")
	ErrUnavailable = errors.New("content: store unavailable")
)

// Clue is a text hint bound to exactly one country.
type Clue struct {
	ID        int64  `json:"id" db:"id"`
	Text      string `json:"text" db:"text"`
	CountryID int64  `json:"countryId" db:"country_id"`
}

// Country is immutable once loaded.
type Country struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Cities []string `json:"cities"`
	Clues  []Clue   `json:"clues"`
	Facts  []string `json:"facts"` // fun facts followed by trivia
}

// CountrySummary is the lightweight listing shape (id, name, number of clues).
type CountrySummary struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	ClueCount int    `json:"clueCount" db:"clue_count"`
}

// Store is the read-only content collaborator of the game engine.
//
// CountClues and ClueAt address the clues whose country is not in excluded,
// ordered by clue id; index is 0-based into that ordering. Together they let
// the caller draw uniformly over eligible clues with its own random source.
type Store interface {
	ListCountries(ctx context.Context) ([]Country, error)
	Country(ctx context.Context, id int64) (Country, error)
	CountClues(ctx context.Context, excluded []int64) (int, error)
	ClueAt(ctx context.Context, excluded []int64, index int) (Clue, error)
	Facts(ctx context.Context, countryID int64) ([]string, error)
	Summaries(ctx context.Context) ([]CountrySummary, error)
}
