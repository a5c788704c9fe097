// internal/game/session.go
//
// Session state machine.
//
//   NotStarted ──Start──▶ AwaitingAnswer ──Select──▶ Resolved
//                              ▲                        │
//                              ├──────ReplaySame────────┤
//                              └──────Next (clue left)──┤
//                                                       ▼
//                        Completed ◀──Next (exhausted)──┘
//
// NewGame returns any state to NotStarted. PlayAgain starts a fresh session
// from Completed and behaves like Next from Resolved.
//
// Transitions are atomic: each one works on a copy of the snapshot and commits
// only after every store call succeeded. At most one transition runs per
// session; a concurrent attempt fails with ErrTransitionInFlight.

package game

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/narharikale/globe/internal/content"
)

// Session is one player's game.
type Session struct {
	engine *Engine

	mu   sync.Mutex // held for the duration of a transition
	snap Snapshot
}

// ID returns the session id.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.ID
}

// Snapshot returns a copy of the observable state. It waits for an in-flight
// transition to finish, so it never observes a partial one.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

// Start loads the first question. Valid only in StateNotStarted.
func (s *Session) Start(ctx context.Context) (Snapshot, error) {
	return s.transition(ctx, func(next *Snapshot) error {
		if next.State != StateNotStarted {
			return invalid("start", next.State)
		}
		*next = initial(next.ID)
		next.IsGameStarted = true
		return s.engine.load(ctx, next)
	})
}

// Select records the player's answer. Valid only in StateAwaitingAnswer, and
// countryID must be one of the offered choices.
//
// Answering a replayed question reveals the result again but does not touch
// the score or play log; the country was already recorded the first time.
func (s *Session) Select(ctx context.Context, countryID int64) (Snapshot, error) {
	return s.transition(ctx, func(next *Snapshot) error {
		if next.State != StateAwaitingAnswer || next.CorrectCountryID == nil || next.SelectedOption != nil {
			return invalid("select", next.State)
		}
		if !slices.ContainsFunc(next.Options, func(c Choice) bool { return c.ID == countryID }) {
			return fmt.Errorf("%w: country %d is not an offered option", ErrInvalidTransition, countryID)
		}

		trueID := *next.CorrectCountryID
		v, err := s.engine.verifier.Verify(ctx, trueID, countryID)
		if err != nil {
			return err
		}

		next.SelectedOption = &countryID
		next.IsCorrect = &v.Correct
		next.FactToShow = v.Fact
		next.State = StateResolved
		if next.hasPlayed(trueID) {
			return nil
		}
		if v.Correct {
			next.Score.Correct++
		} else {
			next.Score.Incorrect++
		}
		next.PlayedCountries = append(next.PlayedCountries, PlayedRecord{CountryID: trueID, WasCorrect: v.Correct})
		return nil
	})
}

// Next loads a new question, or completes the game when no clue is left.
// Valid only in StateResolved.
func (s *Session) Next(ctx context.Context) (Snapshot, error) {
	return s.transition(ctx, func(next *Snapshot) error {
		if next.State != StateResolved {
			return invalid("next", next.State)
		}
		return s.engine.load(ctx, next)
	})
}

// ReplaySame shows the current question again with the selection cleared.
// Valid only in StateResolved. Score and play log are unchanged.
func (s *Session) ReplaySame(ctx context.Context) (Snapshot, error) {
	return s.transition(ctx, func(next *Snapshot) error {
		if next.State != StateResolved {
			return invalid("replay", next.State)
		}
		next.clearResult()
		next.State = StateAwaitingAnswer
		return nil
	})
}

// NewGame resets the session to StateNotStarted from any state, keeping its id.
func (s *Session) NewGame(ctx context.Context) (Snapshot, error) {
	return s.transition(ctx, func(next *Snapshot) error {
		*next = initial(next.ID)
		return nil
	})
}

// PlayAgain continues after a result. From StateCompleted it returns a brand
// new, started session and leaves s untouched; from StateResolved it behaves
// like Next and returns s itself.
func (s *Session) PlayAgain(ctx context.Context) (*Session, Snapshot, error) {
	if !s.mu.TryLock() {
		return s, Snapshot{}, ErrTransitionInFlight
	}
	st := s.snap.State
	s.mu.Unlock()

	switch st {
	case StateCompleted:
		fresh := s.engine.NewSession()
		snap, err := fresh.Start(ctx)
		if err != nil {
			return s, s.Snapshot(), err
		}
		return fresh, snap, nil
	case StateResolved:
		snap, err := s.Next(ctx)
		return s, snap, err
	default:
		return s, s.Snapshot(), invalid("play again", st)
	}
}

// LoadAllCountries returns every country in the session's content store.
func (s *Session) LoadAllCountries(ctx context.Context) ([]content.Country, error) {
	return s.engine.LoadAllCountries(ctx)
}

// transition runs step on a copy of the snapshot and commits it only if step
// succeeds and ctx is still live. The returned snapshot is the committed state
// on success and the unchanged prior state on failure.
func (s *Session) transition(ctx context.Context, step func(next *Snapshot) error) (Snapshot, error) {
	if !s.mu.TryLock() {
		return Snapshot{}, ErrTransitionInFlight
	}
	defer s.mu.Unlock()

	next := s.snap.clone()
	if err := step(&next); err != nil {
		return s.snap.clone(), err
	}
	if err := ctx.Err(); err != nil {
		return s.snap.clone(), err
	}
	s.snap = next
	return next.clone(), nil
}

// load puts the next question into snap, or marks it completed.
func (e *Engine) load(ctx context.Context, snap *Snapshot) error {
	q, ok, err := e.nextQuestion(ctx, snap.PlayedIDs())
	if err != nil {
		return err
	}
	snap.clearQuestion()
	if !ok {
		snap.State = StateCompleted
		snap.IsGameCompleted = true
		return nil
	}
	correct := q.clue.CountryID
	snap.State = StateAwaitingAnswer
	snap.CurrentClueID = q.clue.ID
	snap.CurrentClue = q.clue.Text
	snap.CorrectCountryID = &correct
	snap.Options = q.choices
	return nil
}

func invalid(op string, st State) error {
	return fmt.Errorf("%w: cannot %s in state %s", ErrInvalidTransition, op, st)
}
