package game

import (
	"errors"
	"fmt"

	"github.com/narharikale/globe/internal/content"
)

var (
	// ErrExhausted means every country has been played. It drives the
	// Completed state and is not surfaced to players.
	ErrExhausted = errors.New("game: no eligible clue left")

	// ErrInvalidTransition is returned when an operation does not apply to the
	// session's current state. The session is left unchanged.
	ErrInvalidTransition = errors.New("game: invalid transition")

	// ErrTransitionInFlight rejects a transition while another one runs.
	ErrTransitionInFlight = fmt.Errorf("%w: another transition is in flight", ErrInvalidTransition)

	// Content store failures, re-exported so callers only need this package.
	ErrNotFound           = content.ErrNotFound
	ErrContentUnavailable = content.ErrUnavailable
)
