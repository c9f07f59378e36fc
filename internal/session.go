package internal

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// sessionIDLength is the number of content-hash hex digits used as a short ID
const sessionIDLength = 16

// Session is a parsed chat export as persisted and exported
type Session struct {
	ID          string          `json:"id" yaml:"id"`
	ContentHash string          `json:"content_hash" yaml:"content_hash"`
	RunID       string          `json:"run_id" yaml:"run_id"`
	Source      string          `json:"source" yaml:"source"`
	Encoding    Encoding        `json:"encoding" yaml:"encoding"`
	Grammar     GrammarID       `json:"grammar" yaml:"grammar"`
	DateOrder   string          `json:"date_order" yaml:"date_order"`
	Confidence  float64         `json:"confidence" yaml:"confidence"`
	Records     []MessageRecord `json:"records" yaml:"records"`
	Stats       ParseStats      `json:"stats" yaml:"stats"`
	Metadata    Metadata        `json:"metadata" yaml:"metadata"`
}

// Metadata contains summary information about a session
type Metadata struct {
	ImportedAt   time.Time `json:"imported_at" yaml:"imported_at"`
	FirstMessage time.Time `json:"first_message,omitempty" yaml:"first_message,omitempty"`
	LastMessage  time.Time `json:"last_message,omitempty" yaml:"last_message,omitempty"`
	MessageCount int       `json:"message_count" yaml:"message_count"`
	Participants []string  `json:"participants" yaml:"participants"`
}

// NewSession wraps a parse result for storage under a fresh run ID
func NewSession(source string, res *ParseResult) *Session {
	s := &Session{
		ID:          ShortID(res.ContentHash),
		ContentHash: res.ContentHash,
		RunID:       uuid.NewString(),
		Source:      filepath.Base(source),
		Encoding:    res.Encoding,
		Records:     res.Records,
		Stats:       res.Stats,
	}
	if res.Format != nil {
		s.Grammar = res.Format.Grammar
		s.DateOrder = res.Format.DateOrder.String()
		s.Confidence = res.Format.Confidence
	}
	s.Metadata = BuildMetadata(s.Records)
	s.Metadata.ImportedAt = time.Now().UTC()
	return s
}

// ShortID returns the display ID for a content hash
func ShortID(hash string) string {
	if len(hash) <= sessionIDLength {
		return hash
	}
	return hash[:sessionIDLength]
}

// BuildMetadata summarizes records: time span, count and sorted participants
func BuildMetadata(records []MessageRecord) Metadata {
	md := Metadata{MessageCount: len(records), Participants: []string{}}
	seen := make(map[string]bool)
	for i, r := range records {
		if i == 0 || r.Timestamp.Before(md.FirstMessage) {
			md.FirstMessage = r.Timestamp
		}
		if i == 0 || r.Timestamp.After(md.LastMessage) {
			md.LastMessage = r.Timestamp
		}
		if !seen[r.Sender] {
			seen[r.Sender] = true
			md.Participants = append(md.Participants, r.Sender)
		}
	}
	sort.Strings(md.Participants)
	return md
}
