// internal/game/engine.go
//
// Core game engine shared by all trivia sessions.
// Responsibilities:
//   - Own the Clue Selector, Option Builder and Answer Verifier.
//   - Create new sessions and rehydrate persisted ones.
//   - Load the next question (clue + options) or report exhaustion.
//
// Notes:
//   - Every random decision goes through the single random.Source passed to New.
//   - Session ids are UUIDv4 strings.
package game

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/narharikale/globe/internal/content"
	"github.com/narharikale/globe/internal/random"
)

// Engine creates sessions bound to one content store and one random source.
type Engine struct {
	store       content.Store
	selector    *ClueSelector
	options     *OptionBuilder
	verifier    *AnswerVerifier
	optionCount int
}

// New constructs an Engine. optionCount < 1 means DefaultOptionCount.
func New(store content.Store, src random.Source, optionCount int) *Engine {
	if optionCount < 1 {
		optionCount = DefaultOptionCount
	}
	return &Engine{
		store:       store,
		selector:    NewClueSelector(store, src),
		options:     NewOptionBuilder(store, src),
		verifier:    NewAnswerVerifier(store, src),
		optionCount: optionCount,
	}
}

// OptionCount reports the number of choices offered per question.
func (e *Engine) OptionCount() int { return e.optionCount }

// NewSession returns a fresh session in StateNotStarted.
func (e *Engine) NewSession() *Session {
	return &Session{engine: e, snap: initial(uuid.NewString())}
}

// Restore rebuilds a session from a persisted snapshot.
func (e *Engine) Restore(snap Snapshot) *Session {
	return &Session{engine: e, snap: snap.clone()}
}

// LoadAllCountries returns every country in the store.
func (e *Engine) LoadAllCountries(ctx context.Context) ([]content.Country, error) {
	return e.store.ListCountries(ctx)
}

// CountryFacts returns the fact pool of a country and a random fact from it.
func (e *Engine) CountryFacts(ctx context.Context, countryID int64) (CountryFacts, error) {
	return e.verifier.FactsFor(ctx, countryID)
}

// Summaries lists every country with its clue count.
func (e *Engine) Summaries(ctx context.Context) ([]content.CountrySummary, error) {
	return e.store.Summaries(ctx)
}

// question is a freshly loaded clue with its option set.
type question struct {
	clue    content.Clue
	choices []Choice
}

// nextQuestion selects an unplayed clue and builds its options.
// ok is false when every country has been played.
func (e *Engine) nextQuestion(ctx context.Context, played []int64) (q question, ok bool, err error) {
	clue, err := e.selector.Select(ctx, played)
	if errors.Is(err, ErrExhausted) {
		return question{}, false, nil
	}
	if err != nil {
		return question{}, false, err
	}
	choices, err := e.options.Build(ctx, clue.CountryID, e.optionCount)
	if err != nil {
		return question{}, false, err
	}
	return question{clue: clue, choices: choices}, true, nil
}

func initial(id string) Snapshot {
	return Snapshot{
		ID:              id,
		State:           StateNotStarted,
		Options:         []Choice{},
		PlayedCountries: []PlayedRecord{},
	}
}
