package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdbkit/cmdbkit/pkg/search/index"
)

func TestParseKeywordEmpty(t *testing.T) {
	assert.Nil(t, parseKeyword(""))
	assert.Nil(t, parseKeyword("   "))
}

func TestParseKeywordSingleTerm(t *testing.T) {
	got := parseKeyword("web")
	require.Len(t, got, 1)
	require.Len(t, got[0], 1)
	assert.Equal(t, index.Term{Kind: index.TermSubstring, Text: "web"}, got[0][0])
}

func TestParseKeywordDelimiters(t *testing.T) {
	t.Run("pipe splits alternatives", func(t *testing.T) {
		got := parseKeyword("web|db")
		require.Len(t, got, 2)
		assert.Equal(t, "web", got[0][0].Text)
		assert.Equal(t, "db", got[1][0].Text)
	})

	t.Run("ampersand groups terms", func(t *testing.T) {
		got := parseKeyword("web&prod")
		require.Len(t, got, 1)
		require.Len(t, got[0], 2)
		assert.Equal(t, "web", got[0][0].Text)
		assert.Equal(t, "prod", got[0][1].Text)
	})

	t.Run("word forms split too", func(t *testing.T) {
		got := parseKeyword("web or db")
		require.Len(t, got, 2)

		got = parseKeyword("web AND prod")
		require.Len(t, got, 1)
		require.Len(t, got[0], 2)
	})

	t.Run("words need surrounding spaces", func(t *testing.T) {
		// "5 or 15" splits; "sword" does not.
		got := parseKeyword("5 or 15")
		require.Len(t, got, 2)
		assert.Equal(t, "5", got[0][0].Text)
		assert.Equal(t, "15", got[1][0].Text)

		got = parseKeyword("sword")
		require.Len(t, got, 1)
		assert.Equal(t, "sword", got[0][0].Text)
	})
}

func TestParseKeywordEmptySentinel(t *testing.T) {
	got := parseKeyword(EmptySearchCharacter)
	require.Len(t, got, 1)
	assert.Equal(t, index.TermEmpty, got[0][0].Kind)
}

func TestParseKeywordDates(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("plain date", func(t *testing.T) {
		got := parseKeyword("2024-03-15")
		require.Len(t, got, 1)
		assert.Equal(t, index.TermDateOn, got[0][0].Kind)
		assert.True(t, got[0][0].Date.Equal(day))
	})

	t.Run("before and after", func(t *testing.T) {
		got := parseKeyword("<2024-03-15")
		assert.Equal(t, index.TermDateBefore, got[0][0].Kind)

		got = parseKeyword(">2024-03-15")
		assert.Equal(t, index.TermDateAfter, got[0][0].Kind)
	})

	t.Run("slash separators accepted", func(t *testing.T) {
		got := parseKeyword("2024/03/15")
		assert.Equal(t, index.TermDateOn, got[0][0].Kind)
	})

	t.Run("impossible date falls back to substring", func(t *testing.T) {
		got := parseKeyword("2024-13-40")
		assert.Equal(t, index.TermSubstring, got[0][0].Kind)
		assert.Equal(t, "2024-13-40", got[0][0].Text)
	})
}

func TestCompile(t *testing.T) {
	q := Compile([]uint{1, 2}, []Hint{
		{Name: "hostname", Keyword: "web"},
		{Name: "os", Keyword: ""},
	}, Options{EntryName: "prod", Link: index.LinkAnd})

	assert.Equal(t, []uint{1, 2}, q.EntityIDs)
	assert.Equal(t, index.LinkAnd, q.Link)
	require.Len(t, q.Name, 1)

	// Hints without a keyword select output attributes but add no filter.
	require.Len(t, q.Attrs, 1)
	assert.Equal(t, "hostname", q.Attrs[0].Name)
}
