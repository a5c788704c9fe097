// internal/content/fixture.go
//
// Static-fixture Store.
//
// Loading behaviour (LoadFixture):
//   1. If path is set, read the JSON fixture from that file.
//   2. Otherwise use the fixture embedded in the assets package.
//
// Fixture format: a JSON array of
//   {"id": 1, "name": "France", "cities": [...], "clues": [...],
//    "funFacts": [...], "trivia": [...]}
// Clue ids are assigned sequentially (1-based) in file order.

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/narharikale/globe/assets"
)

// fixtureCountry is the on-disk shape of one country.
type fixtureCountry struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Cities   []string `json:"cities"`
	Clues    []string `json:"clues"`
	FunFacts []string `json:"funFacts"`
	Trivia   []string `json:"trivia"`
}

// Fixture is an immutable in-memory Store. Safe for concurrent use.
type Fixture struct {
	countries []Country     // sorted by ID
	byID      map[int64]int // country ID -> index in countries
	clues     []Clue        // sorted by ID
}

// LoadFixture reads a fixture from path, or the embedded default if path is empty.
func LoadFixture(path string) (*Fixture, error) {
	var (
		raw []byte
		err error
	)
	if path != "" {
		raw, err = os.ReadFile(path)
	} else {
		raw, err = assets.Countries()
	}
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes a JSON fixture and builds a Fixture store.
func ParseFixture(raw []byte) (*Fixture, error) {
	var in []fixtureCountry
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	var (
		out    []Country
		nextID int64 = 1
	)
	for _, fc := range in {
		c := Country{
			ID:     fc.ID,
			Name:   strings.TrimSpace(fc.Name),
			Cities: append([]string{}, fc.Cities...),
			Facts:  append(append([]string{}, fc.FunFacts...), fc.Trivia...),
		}
		for _, text := range fc.Clues {
			c.Clues = append(c.Clues, Clue{ID: nextID, Text: text, CountryID: fc.ID})
			nextID++
		}
		out = append(out, c)
	}
	return NewFixture(out)
}

// NewFixture builds a store from already-typed countries.
// Country ids and clue ids must be unique and every clue must belong to its country.
func NewFixture(countries []Country) (*Fixture, error) {
	f := &Fixture{byID: make(map[int64]int, len(countries))}
	seenClue := map[int64]bool{}
	for _, c := range countries {
		if c.Name == "" {
			return nil, fmt.Errorf("fixture: country %d has no name", c.ID)
		}
		if _, dup := f.byID[c.ID]; dup {
			return nil, fmt.Errorf("fixture: duplicate country id %d", c.ID)
		}
		f.byID[c.ID] = -1
		for _, cl := range c.Clues {
			if seenClue[cl.ID] {
				return nil, fmt.Errorf("fixture: duplicate clue id %d", cl.ID)
			}
			if cl.CountryID != c.ID {
				return nil, fmt.Errorf("fixture: clue %d belongs to %d, listed under %d", cl.ID, cl.CountryID, c.ID)
			}
			seenClue[cl.ID] = true
			f.clues = append(f.clues, cl)
		}
		f.countries = append(f.countries, cloneCountry(c))
	}
	sort.Slice(f.countries, func(i, j int) bool { return f.countries[i].ID < f.countries[j].ID })
	for i, c := range f.countries {
		f.byID[c.ID] = i
	}
	sort.Slice(f.clues, func(i, j int) bool { return f.clues[i].ID < f.clues[j].ID })
	return f, nil
}

func (f *Fixture) ListCountries(ctx context.Context) ([]Country, error) {
	out := make([]Country, len(f.countries))
	for i, c := range f.countries {
		out[i] = cloneCountry(c)
	}
	return out, nil
}

func (f *Fixture) Country(ctx context.Context, id int64) (Country, error) {
	i, ok := f.byID[id]
	if !ok {
		return Country{}, fmt.Errorf("country %d: %w", id, ErrNotFound)
	}
	return cloneCountry(f.countries[i]), nil
}

func (f *Fixture) CountClues(ctx context.Context, excluded []int64) (int, error) {
	return len(f.eligible(excluded)), nil
}

func (f *Fixture) ClueAt(ctx context.Context, excluded []int64, index int) (Clue, error) {
	el := f.eligible(excluded)
	if index < 0 || index >= len(el) {
		return Clue{}, fmt.Errorf("clue index %d of %d: %w", index, len(el), ErrNotFound)
	}
	return el[index], nil
}

func (f *Fixture) Facts(ctx context.Context, countryID int64) ([]string, error) {
	i, ok := f.byID[countryID]
	if !ok {
		return nil, fmt.Errorf("facts for %d: %w", countryID, ErrNotFound)
	}
	return slices.Clone(f.countries[i].Facts), nil
}

func (f *Fixture) Summaries(ctx context.Context) ([]CountrySummary, error) {
	out := make([]CountrySummary, 0, len(f.countries))
	for _, c := range f.countries {
		out = append(out, CountrySummary{ID: c.ID, Name: c.Name, ClueCount: len(c.Clues)})
	}
	return out, nil
}

// eligible returns clues (ordered by id) whose country is not excluded.
func (f *Fixture) eligible(excluded []int64) []Clue {
	skip := make(map[int64]struct{}, len(excluded))
	for _, id := range excluded {
		skip[id] = struct{}{}
	}
	out := make([]Clue, 0, len(f.clues))
	for _, cl := range f.clues {
		if _, ok := skip[cl.CountryID]; !ok {
			out = append(out, cl)
		}
	}
	return out
}

func cloneCountry(c Country) Country {
	c.Cities = slices.Clone(c.Cities)
	c.Clues = slices.Clone(c.Clues)
	c.Facts = slices.Clone(c.Facts)
	return c
}
