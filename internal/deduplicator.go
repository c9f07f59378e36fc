package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent returns the hex sha256 of raw export bytes; sessions are keyed by it
func HashContent(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Deduplicator removes duplicate sessions
type Deduplicator struct{}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Deduplicate keeps the first session for each content hash
func (d *Deduplicator) Deduplicate(sessions []*Session) []*Session {
	seen := make(map[string]bool)
	var unique []*Session

	for _, session := range sessions {
		if session == nil {
			continue
		}
		hash := session.ContentHash
		if hash == "" {
			hash = d.hashRecords(session.Records)
		}
		if !seen[hash] {
			seen[hash] = true
			unique = append(unique, session)
		}
	}

	return unique
}

// hashRecords hashes sender, body and instant of every record
func (d *Deduplicator) hashRecords(records []MessageRecord) string {
	h := sha256.New()
	for _, r := range records {
		h.Write([]byte(r.Sender))
		h.Write([]byte{0})
		h.Write([]byte(r.Body))
		h.Write([]byte{0})
		h.Write([]byte(r.Timestamp.UTC().Format("2006-01-02T15:04:05Z")))
	}
	return hex.EncodeToString(h.Sum(nil))
}
