package internal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampNormalizer_Layouts(t *testing.T) {
	tests := []struct {
		name  string
		g     GrammarID
		order DateOrder
		raw   string
		want  time.Time
	}{
		{
			name: "ios 12h day first",
			g:    GrammarIOS12h, order: DayFirst,
			raw:  "[23/04/2025, 3:40:23 PM]",
			want: time.Date(2025, 4, 23, 15, 40, 23, 0, time.UTC),
		},
		{
			name: "ios 24h two digit year",
			g:    GrammarIOS24h, order: DayFirst,
			raw:  "05/06/24, 09:01:02",
			want: time.Date(2024, 6, 5, 9, 1, 2, 0, time.UTC),
		},
		{
			name: "android 12h month first",
			g:    GrammarAndroid12h, order: MonthFirst,
			raw:  "8/1/25, 10:07 AM",
			want: time.Date(2025, 8, 1, 10, 7, 0, 0, time.UTC),
		},
		{
			name: "android 12h lower case meridiem",
			g:    GrammarAndroid12h, order: MonthFirst,
			raw:  "8/1/25, 12:30 am",
			want: time.Date(2025, 8, 1, 0, 30, 0, 0, time.UTC),
		},
		{
			name: "android alt with seconds",
			g:    GrammarAndroidAlt, order: MonthFirst,
			raw:  "12/31/2024, 11:59:59 PM",
			want: time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "android 24h read day first",
			g:    GrammarAndroid24h, order: DayFirst,
			raw:  "8/1/25, 18:45",
			want: time.Date(2025, 1, 8, 18, 45, 0, 0, time.UTC),
		},
		{
			name: "european",
			g:    GrammarEuropean, order: DayFirst,
			raw:  "24.12.2024, 18:30",
			want: time.Date(2024, 12, 24, 18, 30, 0, 0, time.UTC),
		},
		{
			name: "iso",
			g:    GrammarISO24h, order: YearFirst,
			raw:  "2024-03-01 08:05:30",
			want: time.Date(2024, 3, 1, 8, 5, 30, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewTimestampNormalizer(&ResolvedFormat{Grammar: tt.g, DateOrder: tt.order})
			got, err := n.Normalize(tt.raw)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestTimestampNormalizer_Memoizes(t *testing.T) {
	n := NewTimestampNormalizer(&ResolvedFormat{Grammar: GrammarAndroid12h, DateOrder: MonthFirst})
	var seen []string
	n.OnParse = func(raw string) { seen = append(seen, raw) }

	for _, raw := range []string{"8/1/25, 10:07 AM", "8/1/25, 10:07 AM", "8/1/25, 10:30 AM", "8/1/25, 10:07 AM"} {
		_, err := n.Normalize(raw)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"8/1/25, 10:07 AM", "8/1/25, 10:30 AM"}, seen)
	assert.Equal(t, 2, n.Parses())
	assert.Equal(t, 2, n.CacheHits())

	n.Reset()
	assert.Zero(t, n.Parses())
	assert.Zero(t, n.CacheHits())

	_, err := n.Normalize("8/1/25, 10:07 AM")
	require.NoError(t, err)
	assert.Equal(t, 1, n.Parses(), "reset empties the memo table")
}

func TestTimestampNormalizer_Errors(t *testing.T) {
	n := NewTimestampNormalizer(&ResolvedFormat{Grammar: GrammarIOS12h, DateOrder: DayFirst})

	_, err := n.Normalize("[31/02/2025, 3:41:00 PM]")
	var tsErr *TimestampParseError
	require.True(t, errors.As(err, &tsErr))
	assert.Equal(t, GrammarIOS12h, tsErr.Grammar)
	assert.Equal(t, "[31/02/2025, 3:41:00 PM]", tsErr.Raw)

	// failures are not memoized
	_, err = n.Normalize("[31/02/2025, 3:41:00 PM]")
	assert.Error(t, err)
	assert.Equal(t, 2, n.Parses())
	assert.Zero(t, n.CacheHits())
}

func TestTimestampNormalizer_UnknownGrammar(t *testing.T) {
	n := NewTimestampNormalizer(&ResolvedFormat{Grammar: GrammarID("bogus")})
	_, err := n.Normalize("2024-01-01 00:00:00")
	assert.Error(t, err)
}
