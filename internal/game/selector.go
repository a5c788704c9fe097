package game

import (
	"context"
	"fmt"

	"github.com/narharikale/globe/internal/content"
	"github.com/narharikale/globe/internal/random"
)

// ClueSelector draws an unseen clue for a session.
//
// Selection is uniform over eligible clues, not over eligible countries: a
// country with three clues is three times as likely to come up as a country
// with one. A clue is eligible when its country has not been played.
type ClueSelector struct {
	store content.Store
	src   random.Source
}

// NewClueSelector returns a selector over store using src.
func NewClueSelector(store content.Store, src random.Source) *ClueSelector {
	return &ClueSelector{store: store, src: src}
}

// Select returns a random clue whose country is not in played, or ErrExhausted.
func (cs *ClueSelector) Select(ctx context.Context, played []int64) (content.Clue, error) {
	n, err := cs.store.CountClues(ctx, played)
	if err != nil {
		return content.Clue{}, fmt.Errorf("count eligible clues: %w", err)
	}
	if n == 0 {
		return content.Clue{}, ErrExhausted
	}
	clue, err := cs.store.ClueAt(ctx, played, cs.src.IntN(n))
	if err != nil {
		return content.Clue{}, fmt.Errorf("load clue: %w", err)
	}
	return clue, nil
}
