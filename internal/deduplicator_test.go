package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHashContent(t *testing.T) {
	// sha256("")
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashContent(nil))

	a := HashContent([]byte("8/1/25, 10:00 AM - Ahmed: hi\n"))
	b := HashContent([]byte("8/1/25, 10:00 AM - Ahmed: hi\r\n"))
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b, "hash covers raw bytes, line endings included")
	assert.Equal(t, a, HashContent([]byte("8/1/25, 10:00 AM - Ahmed: hi\n")))
}

func TestDeduplicator_Deduplicate(t *testing.T) {
	unhashed := func(id string, lines ...string) *Session {
		s := CreateTestSessionWithRecords(id, CreateTestRecords(lines...))
		s.ContentHash = ""
		return s
	}

	tests := []struct {
		name     string
		sessions []*Session
		wantIDs  []string
	}{
		{
			name:     "empty",
			sessions: []*Session{},
			wantIDs:  nil,
		},
		{
			name:     "distinct hashes",
			sessions: []*Session{CreateTestSession("a"), CreateTestSession("b")},
			wantIDs:  []string{"a", "b"},
		},
		{
			name: "same content hash keeps first",
			sessions: func() []*Session {
				dup := CreateTestSession("b")
				dup.ContentHash = "a-hash"
				return []*Session{CreateTestSession("a"), dup, CreateTestSession("c")}
			}(),
			wantIDs: []string{"a", "c"},
		},
		{
			name:     "nil skipped",
			sessions: []*Session{nil, CreateTestSession("a"), nil},
			wantIDs:  []string{"a"},
		},
		{
			name: "records hashed when content hash missing",
			sessions: []*Session{
				unhashed("x", "Ahmed: hi", "Sara: hey"),
				unhashed("y", "Ahmed: hi", "Sara: hey"),
				unhashed("z", "Ahmed: hi", "Sara: bye"),
			},
			wantIDs: []string{"x", "z"},
		},
	}

	d := NewDeduplicator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, s := range d.Deduplicate(tt.sessions) {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestDeduplicator_HashRecordsUsesInstant(t *testing.T) {
	d := NewDeduplicator()
	utc := []MessageRecord{NewTestRecord("Ahmed", "hi", testEpoch)}
	offset := []MessageRecord{NewTestRecord("Ahmed", "hi", testEpoch.In(time.FixedZone("UTC+3", 3*3600)))}
	later := []MessageRecord{NewTestRecord("Ahmed", "hi", testEpoch.Add(time.Minute))}

	assert.Equal(t, d.hashRecords(utc), d.hashRecords(offset))
	assert.NotEqual(t, d.hashRecords(utc), d.hashRecords(later))
}
