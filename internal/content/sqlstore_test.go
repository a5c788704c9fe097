package content

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := sqlx.Open("sqlite3", filepath.Join(t.TempDir(), "content.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLStore(db)
	require.NoError(t, s.EnsureSchema(context.Background()))
	// idempotent
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestSQLStoreMatchesFixture(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	empty, err := s.Empty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, s.Import(ctx, testCountries()))
	f := testFixture(t)

	empty, err = s.Empty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)

	t.Run("list countries", func(t *testing.T) {
		got, err := s.ListCountries(ctx)
		require.NoError(t, err)
		want, _ := f.ListCountries(ctx)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID)
			assert.Equal(t, want[i].Name, got[i].Name)
			assert.ElementsMatch(t, want[i].Cities, got[i].Cities)
			assert.ElementsMatch(t, want[i].Clues, got[i].Clues)
			assert.ElementsMatch(t, want[i].Facts, got[i].Facts)
		}
	})

	t.Run("count and address clues", func(t *testing.T) {
		for _, excluded := range [][]int64{nil, {1}, {2}, {1, 2}, {1, 2, 3}} {
			wantN, _ := f.CountClues(ctx, excluded)
			gotN, err := s.CountClues(ctx, excluded)
			require.NoError(t, err)
			require.Equal(t, wantN, gotN, "excluded=%v", excluded)
			for i := 0; i < gotN; i++ {
				want, _ := f.ClueAt(ctx, excluded, i)
				got, err := s.ClueAt(ctx, excluded, i)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
			_, err = s.ClueAt(ctx, excluded, gotN)
			assert.ErrorIs(t, err, ErrNotFound)
		}
	})

	t.Run("country and facts", func(t *testing.T) {
		c, err := s.Country(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Beta", c.Name)
		assert.Len(t, c.Clues, 2)

		_, err = s.Country(ctx, 42)
		assert.ErrorIs(t, err, ErrNotFound)

		facts, err := s.Facts(ctx, 1)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"f1", "f2"}, facts)

		facts, err = s.Facts(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, facts)

		_, err = s.Facts(ctx, 42)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("summaries", func(t *testing.T) {
		got, err := s.Summaries(ctx)
		require.NoError(t, err)
		want, _ := f.Summaries(ctx)
		assert.Equal(t, want, got)
	})
}

func TestSQLStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	require.NoError(t, s.db.Close())

	_, err := s.CountClues(ctx, nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.Country(ctx, 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}
