package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narharikale/globe/internal/content"
	"github.com/narharikale/globe/internal/random"
)

// smallWorld: three countries; Gamma has clues but no facts.
func smallWorld() []content.Country {
	return []content.Country{
		{ID: 1, Name: "Alpha", Clues: []content.Clue{{ID: 1, Text: "a1", CountryID: 1}}, Facts: []string{"alpha fact"}},
		{ID: 2, Name: "Beta", Clues: []content.Clue{{ID: 2, Text: "b1", CountryID: 2}, {ID: 3, Text: "b2", CountryID: 2}}, Facts: []string{"beta fact"}},
		{ID: 3, Name: "Gamma", Clues: []content.Clue{{ID: 4, Text: "g1", CountryID: 3}}},
	}
}

func newFixture(t *testing.T, countries []content.Country) *content.Fixture {
	t.Helper()
	f, err := content.NewFixture(countries)
	require.NoError(t, err)
	return f
}

func newEngine(t *testing.T, store content.Store) *Engine {
	t.Helper()
	return New(store, random.New(7), DefaultOptionCount)
}

// checkSnapshot asserts the properties every committed snapshot must hold.
func checkSnapshot(t *testing.T, s Snapshot) {
	t.Helper()
	assert.Equal(t, len(s.PlayedCountries), s.Score.Correct+s.Score.Incorrect, "score matches play log")

	seen := map[int64]bool{}
	for _, p := range s.PlayedCountries {
		assert.False(t, seen[p.CountryID], "country %d played twice", p.CountryID)
		seen[p.CountryID] = true
	}

	if s.State == StateAwaitingAnswer || s.State == StateResolved {
		require.NotNil(t, s.CorrectCountryID)
		ids := map[int64]bool{}
		for _, c := range s.Options {
			assert.False(t, ids[c.ID], "duplicate option %d", c.ID)
			ids[c.ID] = true
		}
		assert.True(t, ids[*s.CorrectCountryID], "options contain the answer")
	}
	if s.State == StateAwaitingAnswer {
		assert.Nil(t, s.SelectedOption)
		assert.Nil(t, s.IsCorrect)
		assert.Empty(t, s.FactToShow)
	}
	if s.State == StateResolved {
		require.NotNil(t, s.SelectedOption)
		require.NotNil(t, s.IsCorrect)
		assert.Equal(t, *s.SelectedOption == *s.CorrectCountryID, *s.IsCorrect)
		assert.NotEmpty(t, s.FactToShow)
	}
}

func wrongChoice(t *testing.T, s Snapshot) int64 {
	t.Helper()
	for _, c := range s.Options {
		if c.ID != *s.CorrectCountryID {
			return c.ID
		}
	}
	t.Fatal("no wrong option offered")
	return 0
}

func TestFullGameOverEmbeddedFixture(t *testing.T) {
	f, err := content.LoadFixture("")
	require.NoError(t, err)
	ctx := context.Background()
	s := newEngine(t, f).NewSession()

	snap, err := s.Start(ctx)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingAnswer, snap.State)
	assert.True(t, snap.IsGameStarted)

	for round := 0; snap.State != StateCompleted; round++ {
		require.Less(t, round, 8, "game must complete after every country")
		require.Len(t, snap.Options, DefaultOptionCount)
		checkSnapshot(t, snap)

		pick := *snap.CorrectCountryID
		if round%2 == 1 {
			pick = wrongChoice(t, snap)
		}
		snap, err = s.Select(ctx, pick)
		require.NoError(t, err)
		checkSnapshot(t, snap)
		assert.Equal(t, round%2 == 0, *snap.IsCorrect)

		snap, err = s.Next(ctx)
		require.NoError(t, err)
	}

	assert.True(t, snap.IsGameCompleted)
	assert.Len(t, snap.PlayedCountries, 8)
	assert.Equal(t, Score{Correct: 4, Incorrect: 4}, snap.Score)
	checkSnapshot(t, snap)

	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = s.Select(ctx, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestInvalidTransitionsLeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newEngine(t, newFixture(t, smallWorld())).NewSession()

	for name, op := range map[string]func() (Snapshot, error){
		"next":   func() (Snapshot, error) { return s.Next(ctx) },
		"select": func() (Snapshot, error) { return s.Select(ctx, 1) },
		"replay": func() (Snapshot, error) { return s.ReplaySame(ctx) },
	} {
		snap, err := op()
		assert.ErrorIs(t, err, ErrInvalidTransition, name)
		assert.Equal(t, StateNotStarted, snap.State, name)
	}

	started, err := s.Start(ctx)
	require.NoError(t, err)

	_, err = s.Start(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// A country outside the option set is rejected.
	snap, err := s.Select(ctx, 999)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, started, snap)
	assert.Equal(t, started, s.Snapshot())
}

func TestSelectRecordsResult(t *testing.T) {
	ctx := context.Background()
	s := newEngine(t, newFixture(t, smallWorld())).NewSession()

	snap, err := s.Start(ctx)
	require.NoError(t, err)
	// Only three countries exist, so every one of them is offered.
	assert.Len(t, snap.Options, 3)

	correct := *snap.CorrectCountryID
	snap, err = s.Select(ctx, correct)
	require.NoError(t, err)
	assert.Equal(t, StateResolved, snap.State)
	assert.True(t, *snap.IsCorrect)
	assert.Equal(t, Score{Correct: 1}, snap.Score)
	assert.Equal(t, []PlayedRecord{{CountryID: correct, WasCorrect: true}}, snap.PlayedCountries)
	checkSnapshot(t, snap)

	// Already resolved: neither the same nor a different answer counts again.
	for _, c := range snap.Options {
		again, err := s.Select(ctx, c.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, snap, again)
	}
	assert.Equal(t, snap, s.Snapshot())
}

func TestReplaySameDoesNotRescore(t *testing.T) {
	ctx := context.Background()
	s := newEngine(t, newFixture(t, smallWorld())).NewSession()

	first, err := s.Start(ctx)
	require.NoError(t, err)
	resolved, err := s.Select(ctx, wrongChoice(t, first))
	require.NoError(t, err)

	replay, err := s.ReplaySame(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingAnswer, replay.State)
	assert.Equal(t, first.CurrentClue, replay.CurrentClue)
	assert.Equal(t, first.Options, replay.Options)
	assert.Equal(t, resolved.Score, replay.Score)
	assert.Equal(t, resolved.PlayedCountries, replay.PlayedCountries)
	checkSnapshot(t, replay)

	again, err := s.Select(ctx, *replay.CorrectCountryID)
	require.NoError(t, err)
	assert.True(t, *again.IsCorrect)
	assert.Equal(t, Score{Incorrect: 1}, again.Score)
	assert.Len(t, again.PlayedCountries, 1)
	checkSnapshot(t, again)
}

func TestNewGameResetsFromAnyState(t *testing.T) {
	ctx := context.Background()
	s := newEngine(t, newFixture(t, smallWorld())).NewSession()
	id := s.ID()

	snap, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.Select(ctx, *snap.CorrectCountryID)
	require.NoError(t, err)

	reset, err := s.NewGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, initial(id), reset)

	// Starting again is allowed and begins with an empty log.
	snap, err = s.Start(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.PlayedCountries)
	assert.Equal(t, Score{}, snap.Score)
}

func TestPlayAgain(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFixture(t, smallWorld()))
	s := e.NewSession()

	_, _, err := s.PlayAgain(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	snap, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.Select(ctx, *snap.CorrectCountryID)
	require.NoError(t, err)

	// From Resolved it loads the next question on the same session.
	same, snap, err := s.PlayAgain(ctx)
	require.NoError(t, err)
	assert.Same(t, s, same)
	assert.Equal(t, StateAwaitingAnswer, snap.State)
	assert.Len(t, snap.PlayedCountries, 1)

	for snap.State != StateCompleted {
		_, err = s.Select(ctx, *snap.CorrectCountryID)
		require.NoError(t, err)
		snap, err = s.Next(ctx)
		require.NoError(t, err)
	}

	// From Completed it hands back a new started session.
	fresh, snap, err := s.PlayAgain(ctx)
	require.NoError(t, err)
	assert.NotSame(t, s, fresh)
	assert.NotEqual(t, s.ID(), fresh.ID())
	assert.Equal(t, StateAwaitingAnswer, snap.State)
	assert.Empty(t, snap.PlayedCountries)
	assert.Equal(t, StateCompleted, s.Snapshot().State)
}

func TestEmptyStoreCompletesImmediately(t *testing.T) {
	s := newEngine(t, newFixture(t, nil)).NewSession()
	snap, err := s.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, snap.State)
	assert.True(t, snap.IsGameStarted)
	assert.True(t, snap.IsGameCompleted)
}

func TestRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFixture(t, smallWorld()))
	s := e.NewSession()
	snap, err := s.Start(ctx)
	require.NoError(t, err)

	r := e.Restore(snap)
	assert.Equal(t, snap, r.Snapshot())

	_, err = r.Select(ctx, *snap.CorrectCountryID)
	require.NoError(t, err)
	// The first session is independent of the restored one.
	assert.Equal(t, StateAwaitingAnswer, s.Snapshot().State)
}

func TestLoadAllCountries(t *testing.T) {
	s := newEngine(t, newFixture(t, smallWorld())).NewSession()
	countries, err := s.LoadAllCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 3)
	assert.Equal(t, "Alpha", countries[0].Name)
}
