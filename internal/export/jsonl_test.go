package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/chat-session/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLExporter_Export(t *testing.T) {
	tests := []struct {
		name      string
		session   *internal.Session
		wantLines int
	}{
		{name: "four records", session: reactedSession("test1"), wantLines: 4},
		{name: "empty", session: internal.CreateTestSessionWithRecords("test2", nil), wantLines: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, (&JSONLExporter{}).Export(tt.session, &buf))

			lines := 0
			scanner := bufio.NewScanner(&buf)
			for scanner.Scan() {
				var obj map[string]any
				require.NoError(t, json.Unmarshal(scanner.Bytes(), &obj), "line %d", lines+1)
				lines++
			}
			assert.Equal(t, tt.wantLines, lines)
		})
	}
}

func TestJSONLExporter_RecordShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONLExporter{}).Export(reactedSession("test1"), &buf))

	var records []jsonlRecord
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var r jsonlRecord
		require.NoError(t, dec.Decode(&r))
		records = append(records, r)
	}
	require.Len(t, records, 4)

	first := records[0]
	assert.Equal(t, "2025-08-01 10:00:00", first.Timestamp)
	assert.Equal(t, "Ahmed", first.Sender)
	assert.Equal(t, "hi", first.Body)
	assert.Equal(t, 10, first.Hour)
	assert.Equal(t, "Friday", first.Weekday)
	assert.Equal(t, "Morning", first.Period)
	assert.Nil(t, first.Reactions)

	assert.Equal(t, []internal.Reaction{{Reactor: "Ahmed", Emoji: "👍"}}, records[1].Reactions)
	assert.True(t, records[2].Question)
	assert.True(t, records[3].Media)
}

func TestJSONLExporter_OmitsEmptyReactions(t *testing.T) {
	var buf bytes.Buffer
	session := internal.CreateTestSessionWithRecords("s", internal.CreateTestRecords("Sara: ok"))
	require.NoError(t, (&JSONLExporter{}).Export(session, &buf))
	assert.NotContains(t, buf.String(), "reactions")
}
