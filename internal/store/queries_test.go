package store

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsWellFormed(t *testing.T) {
	queries := Queries()
	require.Len(t, queries, 16)

	seen := make(map[string]bool)
	for _, q := range queries {
		assert.False(t, seen[q.ID], "duplicate query id %s", q.ID)
		seen[q.ID] = true
		assert.NotEmpty(t, q.Title, "query %s has no title", q.ID)
		assert.NotEmpty(t, q.SQL, "query %s has no SQL", q.ID)
		assert.True(t, strings.HasPrefix(strings.ToUpper(strings.TrimSpace(q.SQL)), "SELECT") ||
			strings.HasPrefix(strings.ToUpper(strings.TrimSpace(q.SQL)), "WITH"),
			"query %s must be read-only", q.ID)
	}
}

func TestQueryByID(t *testing.T) {
	q, ok := QueryByID("q3")
	require.True(t, ok)
	assert.Contains(t, q.SQL, "top_players")

	_, ok = QueryByID("q99")
	assert.False(t, ok)
}

func TestRunQueryUnknownID(t *testing.T) {
	s, _ := mockStore(t)
	_, err := s.RunQuery(context.Background(), "drop-tables")
	assert.ErrorIs(t, err, ErrUnknownQuery)
}

func TestRunQuery(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("SELECT ground, city, country, capacity").
		WillReturnRows(sqlmock.NewRows([]string{"ground", "city", "country", "capacity"}).
			AddRow([]byte("Eden Gardens"), []byte("Kolkata"), []byte("India"), 68000).
			AddRow([]byte("MCG"), []byte("Melbourne"), []byte("Australia"), 100024))

	res, err := s.RunQuery(context.Background(), "q4")
	require.NoError(t, err)

	assert.Equal(t, "q4", res.ID)
	assert.Equal(t, []string{"ground", "city", "country", "capacity"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Eden Gardens", res.Rows[0][0], "byte slices become strings")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunQueryEmptyResult(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("SELECT player_id, name, battingstyle").
		WillReturnRows(sqlmock.NewRows([]string{"player_id", "name", "battingstyle", "bowlingstyle", "role"}))

	res, err := s.RunQuery(context.Background(), "q1")
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}
