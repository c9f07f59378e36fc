package internal

import (
	"strings"
	"unicode/utf8"
)

const (
	// FormatSampleLines bounds how much of a file is read to pick a grammar
	FormatSampleLines = 200
	// FormatEarlyExitMatches returns a grammar as soon as it reaches this many hits
	FormatEarlyExitMatches = 5
	// FormatMinMatches is the floor a best-scoring grammar must reach
	FormatMinMatches = 1

	minSampleLineRunes = 20
)

// ResolvedFormat is the grammar chosen for one input file
type ResolvedFormat struct {
	Grammar      GrammarID         `json:"grammar" yaml:"grammar"`
	DateOrder    DateOrder         `json:"date_order" yaml:"date_order"`
	Matches      int               `json:"matches" yaml:"matches"`
	SampledLines int               `json:"sampled_lines" yaml:"sampled_lines"`
	Confidence   float64           `json:"confidence" yaml:"confidence"`
	EarlyExit    bool              `json:"early_exit" yaml:"early_exit"`
	Scores       map[GrammarID]int `json:"scores" yaml:"scores"`
}

// FormatResolver picks the grammar of a decoded chat log
type FormatResolver struct {
	sampleLines int
	earlyExit   int
	minMatches  int
}

// NewFormatResolver creates a resolver with the default sampling parameters
func NewFormatResolver() *FormatResolver {
	return &FormatResolver{
		sampleLines: FormatSampleLines,
		earlyExit:   FormatEarlyExitMatches,
		minMatches:  FormatMinMatches,
	}
}

// ResolveFormat picks a grammar for text with the default resolver
func ResolveFormat(text string) (*ResolvedFormat, error) {
	return NewFormatResolver().Resolve(text)
}

// Resolve scores a bounded prefix of text against every grammar
func (r *FormatResolver) Resolve(text string) (*ResolvedFormat, error) {
	grammars := Grammars()
	scores := make(map[GrammarID]int, len(grammars))
	for _, g := range grammars {
		scores[g] = 0
	}

	sample := sampleLines(text, r.sampleLines)
	sampled := 0
	for _, line := range sample {
		if utf8.RuneCountInString(line) < minSampleLineRunes {
			continue
		}
		sampled++
		for _, g := range grammars {
			if _, ok := g.MatchHeader(line); !ok {
				continue
			}
			scores[g]++
			if scores[g] >= r.earlyExit {
				return r.finish(g, sample, sampled, scores, true), nil
			}
		}
	}

	best := GrammarID("")
	for _, g := range grammars {
		// strict > keeps the earlier grammar on ties
		if scores[g] > scores[best] {
			best = g
		}
	}
	if best == "" || scores[best] < r.minMatches {
		return nil, &UnrecognizedFormatError{SampledLines: sampled, Scores: scores}
	}
	return r.finish(best, sample, sampled, scores, false), nil
}

func (r *FormatResolver) finish(g GrammarID, sample []string, sampled int, scores map[GrammarID]int, early bool) *ResolvedFormat {
	confidence := 0.0
	if sampled > 0 {
		confidence = float64(scores[g]) / float64(sampled)
	}
	rf := &ResolvedFormat{
		Grammar:      g,
		DateOrder:    resolveDateOrder(g, sample),
		Matches:      scores[g],
		SampledLines: sampled,
		Confidence:   confidence,
		EarlyExit:    early,
		Scores:       scores,
	}
	LogDebug("Resolved format %s (%s, %d/%d sampled lines)", rf.Grammar, rf.DateOrder, rf.Matches, rf.SampledLines)
	return rf
}

// resolveDateOrder fixes day/month order once per file from the sampled headers
func resolveDateOrder(g GrammarID, sample []string) DateOrder {
	order := g.DefaultOrder()
	if order == YearFirst {
		return order
	}
	for _, line := range sample {
		m, ok := g.MatchHeader(line)
		if !ok {
			m, ok = g.MatchSystem(line)
		}
		if !ok {
			continue
		}
		a, b, ok := dateComponents(m.Timestamp)
		if !ok {
			continue
		}
		if a > 12 && b <= 12 {
			return DayFirst
		}
		if b > 12 && a <= 12 {
			return MonthFirst
		}
	}
	return order
}

func sampleLines(text string, n int) []string {
	lines := make([]string, 0, n)
	for len(lines) < n && text != "" {
		line, rest, found := strings.Cut(text, "\n")
		lines = append(lines, normalizeLine(line))
		if !found {
			break
		}
		text = rest
	}
	return lines
}

// normalizeLine trims the line ending and maps exotic spaces to ASCII
func normalizeLine(line string) string {
	line = strings.TrimRight(line, "\r")
	line = strings.TrimLeft(line, "\u200e\u200f\ufeff")
	return spaceNormalizer.Replace(line)
}

var spaceNormalizer = strings.NewReplacer("\u202f", " ", "\u00a0", " ")
