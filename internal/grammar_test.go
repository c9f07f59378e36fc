package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrammars_HeadersAreExclusive(t *testing.T) {
	tests := []struct {
		line string
		want GrammarID
	}{
		{"[23/04/2025, 3:40:23 PM] Dana: hi", GrammarIOS12h},
		{"[23/04/2025, 15:40:23] Dana: hi", GrammarIOS24h},
		{"8/1/25, 3:40:23 PM - Ahmed: hi", GrammarAndroidAlt},
		{"8/1/25, 10:06 AM - Ahmed: hi", GrammarAndroid12h},
		{"8/1/25, 22:06 - Ahmed: hi", GrammarAndroid24h},
		{"24.12.2024, 18:30 - Jonas: hi", GrammarEuropean},
		{"2024-03-01 08:00:00 - Kim: hi", GrammarISO24h},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			var matched []GrammarID
			for _, g := range Grammars() {
				if m, ok := g.MatchHeader(tt.line); ok {
					matched = append(matched, g)
					assert.Equal(t, "hi", m.Body)
				}
			}
			assert.Equal(t, []GrammarID{tt.want}, matched)
		})
	}
}

func TestGrammars_PriorityOrder(t *testing.T) {
	want := []GrammarID{
		GrammarIOS12h, GrammarIOS24h, GrammarAndroidAlt, GrammarAndroid12h,
		GrammarAndroid24h, GrammarEuropean, GrammarISO24h,
	}
	assert.Equal(t, want, Grammars())
	for i, g := range want {
		assert.Equal(t, i, g.Priority())
	}
}

func TestGrammarID_Unknown(t *testing.T) {
	g := GrammarID("telegram")
	_, ok := g.MatchHeader("8/1/25, 10:06 AM - Ahmed: hi")
	assert.False(t, ok)
	_, ok = g.MatchSystem("8/1/25, 10:06 AM - Ahmed joined")
	assert.False(t, ok)
	assert.Nil(t, g.Layouts(DayFirst))
	assert.Equal(t, DayFirst, g.DefaultOrder())
}

func TestGrammarID_DefaultOrder(t *testing.T) {
	assert.Equal(t, DayFirst, GrammarIOS12h.DefaultOrder())
	assert.Equal(t, MonthFirst, GrammarAndroid24h.DefaultOrder())
	assert.Equal(t, DayFirst, GrammarEuropean.DefaultOrder())
	assert.Equal(t, YearFirst, GrammarISO24h.DefaultOrder())
	assert.Equal(t, []string{"2006-01-02 15:04:05"}, GrammarISO24h.Layouts(MonthFirst))
}

func TestGrammars_SenderWithColonInBody(t *testing.T) {
	m, ok := GrammarAndroid24h.MatchHeader("8/1/25, 22:06 - Ahmed: meet at 10:30: ok?")
	assert.True(t, ok)
	assert.Equal(t, "Ahmed", m.Sender)
	assert.Equal(t, "meet at 10:30: ok?", m.Body)
}
