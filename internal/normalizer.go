package internal

import (
	"fmt"
	"strings"
	"time"
)

// TimestampNormalizer converts raw header timestamps into instants for one file.
// Results are memoized by raw text; create one normalizer per parse run.
type TimestampNormalizer struct {
	grammar GrammarID
	layouts []string
	cache   map[string]time.Time
	hits    int
	parses  int

	// OnParse, if set, is called on every cache miss with the raw text
	OnParse func(raw string)
}

// NewTimestampNormalizer creates a normalizer bound to a resolved format
func NewTimestampNormalizer(format *ResolvedFormat) *TimestampNormalizer {
	return &TimestampNormalizer{
		grammar: format.Grammar,
		layouts: format.Grammar.Layouts(format.DateOrder),
		cache:   make(map[string]time.Time),
	}
}

// Normalize returns the canonical instant for raw, parsing it at most once
func (n *TimestampNormalizer) Normalize(raw string) (time.Time, error) {
	if t, ok := n.cache[raw]; ok {
		n.hits++
		return t, nil
	}

	n.parses++
	if n.OnParse != nil {
		n.OnParse(raw)
	}

	t, err := n.parse(raw)
	if err != nil {
		return time.Time{}, &TimestampParseError{Raw: raw, Grammar: n.grammar, Err: err}
	}
	n.cache[raw] = t
	return t, nil
}

// parse applies the file's layouts; the date order is never re-decided per line
func (n *TimestampNormalizer) parse(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if n.grammar.Clock() == Clock12h {
		s = strings.ToUpper(s)
	}

	var lastErr error
	for _, layout := range n.layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no layouts for grammar %s", n.grammar)
	}
	return time.Time{}, lastErr
}

// Parses returns the number of full parses performed (cache misses)
func (n *TimestampNormalizer) Parses() int {
	return n.parses
}

// CacheHits returns the number of lookups served from the cache
func (n *TimestampNormalizer) CacheHits() int {
	return n.hits
}

// Reset clears the memo table so the normalizer can serve another run
func (n *TimestampNormalizer) Reset() {
	n.cache = make(map[string]time.Time)
	n.hits = 0
	n.parses = 0
}
