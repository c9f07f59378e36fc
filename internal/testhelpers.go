package internal

import (
	"strings"
	"time"
)

// testEpoch is the first instant used by the builders below
var testEpoch = time.Date(2025, time.August, 1, 10, 0, 0, 0, time.UTC)

// NewTestRecord builds a fully featured record as the assembler would
func NewTestRecord(sender, body string, ts time.Time) MessageRecord {
	return BuildRecord(RawMessageRecord{SenderText: sender, Body: body}, ts)
}

// CreateTestRecords builds messages one minute apart.
// Each entry is "Sender: body".
func CreateTestRecords(lines ...string) []MessageRecord {
	records := make([]MessageRecord, 0, len(lines))
	for i, line := range lines {
		sender, body, _ := strings.Cut(line, ": ")
		records = append(records, NewTestRecord(sender, body, testEpoch.Add(time.Duration(i)*time.Minute)))
	}
	return records
}

// CreateTestSession creates a test session with sample data
func CreateTestSession(id string) *Session {
	return CreateTestSessionWithRecords(id, CreateTestRecords(
		"Ahmed: hi",
		"Sara: hello 👋",
		"Ahmed: are you coming tonight?",
		"Sara: <Media omitted>",
	))
}

// CreateTestSessionWithRecords creates a test session with custom records
func CreateTestSessionWithRecords(id string, records []MessageRecord) *Session {
	md := BuildMetadata(records)
	md.ImportedAt = testEpoch
	return &Session{
		ID:          id,
		ContentHash: id + "-hash",
		RunID:       "run-" + id,
		Source:      "_chat.txt",
		Encoding:    EncodingUTF8,
		Grammar:     GrammarAndroid12h,
		DateOrder:   MonthFirst.String(),
		Confidence:  1,
		Records:     records,
		Stats:       ParseStats{TotalLines: len(records)},
		Metadata:    md,
	}
}
