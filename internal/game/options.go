package game

import (
	"context"
	"fmt"

	"github.com/narharikale/globe/internal/content"
	"github.com/narharikale/globe/internal/random"
)

// OptionBuilder assembles the multiple-choice set for a question.
type OptionBuilder struct {
	store content.Store
	src   random.Source
}

// NewOptionBuilder returns a builder drawing distractors from store with src.
func NewOptionBuilder(store content.Store, src random.Source) *OptionBuilder {
	return &OptionBuilder{store: store, src: src}
}

// Build returns n distinct choices: the correct country plus n-1 others drawn
// uniformly from the store, in shuffled order. With fewer than n-1 other
// countries available every country is returned. n < 1 means DefaultOptionCount.
func (ob *OptionBuilder) Build(ctx context.Context, correctID int64, n int) ([]Choice, error) {
	if n < 1 {
		n = DefaultOptionCount
	}
	all, err := ob.store.Summaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}

	var (
		correct *Choice
		others  = make([]Choice, 0, len(all))
	)
	for _, c := range all {
		if c.ID == correctID {
			correct = &Choice{ID: c.ID, Name: c.Name}
			continue
		}
		others = append(others, Choice{ID: c.ID, Name: c.Name})
	}
	if correct == nil {
		return nil, fmt.Errorf("correct country %d: %w", correctID, content.ErrNotFound)
	}

	out := append([]Choice{*correct}, random.Sample(ob.src, others, n-1)...)
	random.Shuffle(ob.src, out)
	return out, nil
}
