package internal

import (
	"regexp"
	"strconv"
	"strings"
)

// GrammarID identifies one line grammar of the fixed, versioned set.
// New export formats are added as new IDs; existing semantics never change.
type GrammarID string

const (
	GrammarIOS12h     GrammarID = "ios_12h"
	GrammarIOS24h     GrammarID = "ios_24h"
	GrammarAndroidAlt GrammarID = "android_alt"
	GrammarAndroid12h GrammarID = "android_12h"
	GrammarAndroid24h GrammarID = "android_24h"
	GrammarEuropean   GrammarID = "european"
	GrammarISO24h     GrammarID = "iso_24h"
)

// DateOrder fixes how the first two date components are read
type DateOrder int

const (
	DayFirst DateOrder = iota
	MonthFirst
	YearFirst
)

func (o DateOrder) String() string {
	switch o {
	case DayFirst:
		return "day-first"
	case MonthFirst:
		return "month-first"
	default:
		return "year-first"
	}
}

// Clock distinguishes 12-hour and 24-hour timestamps
type Clock int

const (
	Clock24h Clock = iota
	Clock12h
)

// HeaderMatch is the (timestamp, sender, body) triple captured from a header line
type HeaderMatch struct {
	Timestamp string
	Sender    string
	Body      string
	HasSender bool
}

type grammarDef struct {
	id     GrammarID
	header *regexp.Regexp
	system *regexp.Regexp
	clock  Clock
	order  DateOrder
	// layout uses {a} and {b} for the first two date components and {y} for the year
	layout string
}

const (
	meridiem = `\s[APap][Mm]`
	slashDay = `\d{1,2}/\d{1,2}/\d{2,4},\s\d{1,2}:\d{2}`
)

func bracketed(ts string) (*regexp.Regexp, *regexp.Regexp) {
	return regexp.MustCompile(`^\[(` + ts + `)\]\s([^:]+):\s(.*)$`),
		regexp.MustCompile(`^\[(` + ts + `)\]\s(.+)$`)
}

func dashed(ts string) (*regexp.Regexp, *regexp.Regexp) {
	return regexp.MustCompile(`^(` + ts + `)\s-\s([^:]+):\s(.*)$`),
		regexp.MustCompile(`^(` + ts + `)\s-\s(.+)$`)
}

func newGrammarDef(id GrammarID, pair func(string) (*regexp.Regexp, *regexp.Regexp), ts string, clock Clock, order DateOrder, layout string) grammarDef {
	header, system := pair(ts)
	return grammarDef{id: id, header: header, system: system, clock: clock, order: order, layout: layout}
}

// grammarDefs is the priority order: stricter formats first
var grammarDefs = []grammarDef{
	newGrammarDef(GrammarIOS12h, bracketed, slashDay+`:\d{2}`+meridiem, Clock12h, DayFirst, "{a}/{b}/{y}, 3:04:05 PM"),
	newGrammarDef(GrammarIOS24h, bracketed, slashDay+`:\d{2}`, Clock24h, DayFirst, "{a}/{b}/{y}, 15:04:05"),
	newGrammarDef(GrammarAndroidAlt, dashed, slashDay+`:\d{2}`+meridiem, Clock12h, MonthFirst, "{a}/{b}/{y}, 3:04:05 PM"),
	newGrammarDef(GrammarAndroid12h, dashed, slashDay+meridiem, Clock12h, MonthFirst, "{a}/{b}/{y}, 3:04 PM"),
	newGrammarDef(GrammarAndroid24h, dashed, slashDay, Clock24h, MonthFirst, "{a}/{b}/{y}, 15:04"),
	newGrammarDef(GrammarEuropean, dashed, `\d{1,2}\.\d{1,2}\.\d{2,4},\s\d{1,2}:\d{2}`, Clock24h, DayFirst, "{a}.{b}.{y}, 15:04"),
	newGrammarDef(GrammarISO24h, dashed, `\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}`, Clock24h, YearFirst, "2006-01-02 15:04:05"),
}

var grammarIndex = func() map[GrammarID]int {
	m := make(map[GrammarID]int, len(grammarDefs))
	for i, g := range grammarDefs {
		m[g.id] = i
	}
	return m
}()

// Grammars returns every grammar in priority order
func Grammars() []GrammarID {
	ids := make([]GrammarID, len(grammarDefs))
	for i, g := range grammarDefs {
		ids[i] = g.id
	}
	return ids
}

// IsKnown reports whether the ID belongs to the grammar set
func (g GrammarID) IsKnown() bool {
	_, ok := grammarIndex[g]
	return ok
}

// Priority is the grammar's position in the tie-break order (lower wins)
func (g GrammarID) Priority() int {
	if i, ok := grammarIndex[g]; ok {
		return i
	}
	return len(grammarDefs)
}

func (g GrammarID) def() *grammarDef {
	if i, ok := grammarIndex[g]; ok {
		return &grammarDefs[i]
	}
	return nil
}

// Clock returns the grammar's hour convention
func (g GrammarID) Clock() Clock {
	if s := g.def(); s != nil {
		return s.clock
	}
	return Clock24h
}

// DefaultOrder returns the date order assumed when a file gives no evidence
func (g GrammarID) DefaultOrder() DateOrder {
	if s := g.def(); s != nil {
		return s.order
	}
	return DayFirst
}

// MatchHeader matches a message header line carrying a sender field
func (g GrammarID) MatchHeader(line string) (HeaderMatch, bool) {
	s := g.def()
	if s == nil {
		return HeaderMatch{}, false
	}
	m := s.header.FindStringSubmatch(line)
	if m == nil {
		return HeaderMatch{}, false
	}
	return HeaderMatch{
		Timestamp: m[1],
		Sender:    strings.TrimSpace(m[2]),
		Body:      strings.TrimSpace(m[3]),
		HasSender: true,
	}, true
}

// MatchSystem matches a timestamped line without a sender field
func (g GrammarID) MatchSystem(line string) (HeaderMatch, bool) {
	s := g.def()
	if s == nil {
		return HeaderMatch{}, false
	}
	m := s.system.FindStringSubmatch(line)
	if m == nil {
		return HeaderMatch{}, false
	}
	return HeaderMatch{Timestamp: m[1], Body: strings.TrimSpace(m[2])}, true
}

// Layouts returns the time.Parse layouts for the given date order, four-digit year first
func (g GrammarID) Layouts(order DateOrder) []string {
	s := g.def()
	if s == nil {
		return nil
	}
	if s.order == YearFirst {
		return []string{s.layout}
	}

	a, b := "2", "1"
	if order == MonthFirst {
		a, b = "1", "2"
	}
	base := strings.NewReplacer("{a}", a, "{b}", b).Replace(s.layout)
	return []string{
		strings.Replace(base, "{y}", "2006", 1),
		strings.Replace(base, "{y}", "06", 1),
	}
}

var leadingDigits = regexp.MustCompile(`\d+`)

// dateComponents returns the first two numeric date components of a timestamp
func dateComponents(ts string) (int, int, bool) {
	parts := leadingDigits.FindAllString(ts, 2)
	if len(parts) < 2 {
		return 0, 0, false
	}
	a, errA := strconv.Atoi(parts[0])
	b, errB := strconv.Atoi(parts[1])
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return a, b, true
}
