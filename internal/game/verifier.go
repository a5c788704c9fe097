package game

import (
	"context"
	"fmt"

	"github.com/narharikale/globe/internal/content"
	"github.com/narharikale/globe/internal/random"
)

// AnswerVerifier judges a selection and picks a fact to reveal.
type AnswerVerifier struct {
	store content.Store
	src   random.Source
}

// NewAnswerVerifier returns a verifier drawing facts from store with src.
func NewAnswerVerifier(store content.Store, src random.Source) *AnswerVerifier {
	return &AnswerVerifier{store: store, src: src}
}

// Verify compares selectedID with trueID. The fact is drawn anew on every call.
func (av *AnswerVerifier) Verify(ctx context.Context, trueID, selectedID int64) (Verdict, error) {
	cf, err := av.FactsFor(ctx, trueID)
	if err != nil {
		return Verdict{}, err
	}
	fact := fallbackFact(cf.CountryName)
	if cf.RandomFact != nil {
		fact = *cf.RandomFact
	}
	return Verdict{
		Correct:     selectedID == trueID,
		CountryID:   cf.CountryID,
		CountryName: cf.CountryName,
		Fact:        fact,
	}, nil
}

// FactsFor returns a country's pooled facts and one of them picked at random.
// RandomFact is nil when the pool is empty.
func (av *AnswerVerifier) FactsFor(ctx context.Context, countryID int64) (CountryFacts, error) {
	c, err := av.store.Country(ctx, countryID)
	if err != nil {
		return CountryFacts{}, fmt.Errorf("load country: %w", err)
	}
	facts, err := av.store.Facts(ctx, countryID)
	if err != nil {
		return CountryFacts{}, fmt.Errorf("load facts: %w", err)
	}
	out := CountryFacts{CountryID: c.ID, CountryName: c.Name, Facts: facts}
	if out.Facts == nil {
		out.Facts = []string{}
	}
	if fact, ok := random.Pick(av.src, facts); ok {
		out.RandomFact = &fact
	}
	return out, nil
}

func fallbackFact(name string) string {
	return "Interesting fact about " + name
}
