package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseWith(t *testing.T, g GrammarID, text string) ([]RawMessageRecord, ParseStats) {
	t.Helper()
	p := NewLogParser(&ResolvedFormat{Grammar: g, DateOrder: g.DefaultOrder()})
	records, err := p.Parse(text)
	require.NoError(t, err)
	return records, p.Stats()
}

func TestLogParser_Continuations(t *testing.T) {
	text := "[23/04/2025, 3:45:10 PM] Dana: anyone up for lunch?\n" +
		"it's on me   \n" +
		"\n" +
		"really\n" +
		"[23/04/2025, 3:47:02 PM] Lee: sure\n"

	records, stats := parseWith(t, GrammarIOS12h, text)
	require.Len(t, records, 2)

	assert.Equal(t, RawMessageRecord{
		Line:           1,
		TimestampText:  "23/04/2025, 3:45:10 PM",
		SenderText:     "Dana",
		Body:           "anyone up for lunch?\nit's on me\n\nreally",
		IsContinuation: true,
	}, records[0])
	assert.Equal(t, 5, records[1].Line)
	assert.False(t, records[1].IsContinuation)
	assert.Equal(t, 5, stats.TotalLines)
	assert.Zero(t, stats.SkippedLines)
}

func TestLogParser_SkipsLeadingNoise(t *testing.T) {
	text := "WhatsApp Chat with Sara\n\n" +
		"8/1/25, 10:06 AM - Ahmed: hi\n"

	records, stats := parseWith(t, GrammarAndroid12h, text)
	require.Len(t, records, 1)
	assert.Equal(t, 1, stats.SkippedLines, "blank lines are not counted as skipped")
	assert.Equal(t, 3, stats.TotalLines)
}

func TestLogParser_SystemMessages(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "no sender field", line: "8/1/25, 9:00 AM - Ahmed added Sara"},
		{name: "encryption notice", line: "8/1/25, 9:00 AM - Messages and calls are end-to-end encrypted. Tap to learn more."},
		{name: "marker in body", line: "8/1/25, 9:00 AM - Ahmed: This message was deleted"},
		{name: "system sender", line: "8/1/25, 9:00 AM - WhatsApp: Your security code changed"},
		{name: "subject change", line: "8/1/25, 9:00 AM - Ahmed changed the subject to \"Trip: 2025\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, stats := parseWith(t, GrammarAndroid12h, tt.line+"\n8/1/25, 9:01 AM - Sara: hello\n")
			require.Len(t, records, 2)
			assert.True(t, records[0].IsSystem)
			assert.False(t, records[1].IsSystem)
			assert.Equal(t, 1, stats.SystemMessages)
		})
	}
}

func TestLogParser_ReactionSuffix(t *testing.T) {
	text := "[23/04/2025, 3:40:23 PM] Dana: lunch? {reactions: Lee 👍, Sara ❤️}\n"

	records, _ := parseWith(t, GrammarIOS12h, text)
	require.Len(t, records, 1)
	assert.Equal(t, "lunch?", records[0].Body)
	assert.Equal(t, []Reaction{{Reactor: "Lee", Emoji: "👍"}, {Reactor: "Sara", Emoji: "❤️"}}, records[0].Reactions)
}

func TestLogParser_ReactionEvents(t *testing.T) {
	text := "8/1/25, 10:06 AM - Ahmed: are you coming tonight?\n" +
		"8/1/25, 10:07 AM - Sara: yes\n" +
		"8/1/25, 10:08 AM - Sara reacted 👍 to \"are you coming...\"\n" +
		"8/1/25, 10:09 AM - Ahmed: reacted 😂 to \"yes\"\n" +
		"8/1/25, 10:10 AM - Lee reacted 🎉 to \"a message that is not here\"\n"

	records, stats := parseWith(t, GrammarAndroid12h, text)
	require.Len(t, records, 2)
	assert.Equal(t, []Reaction{{Reactor: "Sara", Emoji: "👍"}}, records[0].Reactions)
	assert.Equal(t, []Reaction{{Reactor: "Ahmed", Emoji: "😂"}}, records[1].Reactions)
	assert.Equal(t, 1, stats.OrphanReactions)
	assert.Zero(t, stats.SystemMessages)
}

func TestLogParser_FeedAndFlush(t *testing.T) {
	p := NewLogParser(&ResolvedFormat{Grammar: GrammarISO24h, DateOrder: YearFirst})
	assert.Equal(t, "AwaitingMessage", p.state.String())

	p.Feed(RawLine{Number: 1, Text: "2024-03-01 08:00:00 - Kim: morning"})
	assert.Equal(t, "InMessage", p.state.String())
	assert.Empty(t, p.Records(), "a record is emitted only when the next one opens")

	p.Feed(RawLine{Number: 2, Text: "all of you"})
	p.Flush()
	assert.Equal(t, stateAwaitingMessage, p.state)
	require.Len(t, p.Records(), 1)
	assert.Equal(t, "morning\nall of you", p.Records()[0].Body)

	p.Flush()
	assert.Len(t, p.Records(), 1, "flush is idempotent")
}

func TestLogParser_NoGrammar(t *testing.T) {
	_, err := NewLogParser(nil).Parse("anything")
	assert.Error(t, err)

	_, err = NewLogParser(&ResolvedFormat{Grammar: "unknown"}).Parse("anything")
	assert.Error(t, err)
}

func TestStripReactions(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantBody  string
		wantCount int
	}{
		{name: "none", body: "plain text", wantBody: "plain text"},
		{name: "single", body: "ok {reactions: Lee 👍}", wantBody: "ok", wantCount: 1},
		{name: "malformed entries kept as text", body: "ok {reactions: 👍}", wantBody: "ok {reactions: 👍}"},
		{name: "braces mid body", body: "use {reactions: Lee 👍} later", wantBody: "use {reactions: Lee 👍} later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, reactions := stripReactions(tt.body)
			assert.Equal(t, tt.wantBody, body)
			assert.Len(t, reactions, tt.wantCount)
		})
	}
}
