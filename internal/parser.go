package internal

import (
	"fmt"
	"regexp"
	"strings"
)

// parserState is the state of the multi-line accumulation machine
type parserState int

const (
	stateAwaitingMessage parserState = iota
	stateInMessage
)

func (s parserState) String() string {
	if s == stateInMessage {
		return "InMessage"
	}
	return "AwaitingMessage"
}

// systemMarkers are content markers of service messages that carry a sender field
var systemMarkers = regexp.MustCompile(`(?i)(?:messages and calls are end-to-end encrypted|` +
	`changed the subject|changed the group description|changed this group's (?:icon|settings)|` +
	`created group|created this group|joined using (?:this group's |an? )?invite link|you joined using|` +
	`missed voice call|missed video call|this message was deleted|you deleted this message|` +
	`security code (?:changed|with)|disappearing messages|changed their phone number)`)

// LogParser turns decoded text into raw message records for one resolved grammar
type LogParser struct {
	format  *ResolvedFormat
	state   parserState
	current *RawMessageRecord
	body    []string
	records []RawMessageRecord
	pending []reactionEventMatch
	stats   ParseStats
}

// NewLogParser creates a parser bound to a resolved format
func NewLogParser(format *ResolvedFormat) *LogParser {
	return &LogParser{format: format}
}

// Parse runs the state machine over every line of text
func (p *LogParser) Parse(text string) ([]RawMessageRecord, error) {
	if p.format == nil || !p.format.Grammar.IsKnown() {
		return nil, fmt.Errorf("parser has no usable grammar")
	}
	p.reset()

	offset, number := 0, 0
	for text != "" {
		line, rest, _ := strings.Cut(text, "\n")
		number++
		p.Feed(RawLine{Offset: offset, Number: number, Text: line})
		offset += len(line) + 1
		text = rest
	}
	p.Flush()
	return p.records, nil
}

// Stats returns the line-level telemetry of the last run
func (p *LogParser) Stats() ParseStats {
	return p.stats
}

// Records returns the records emitted so far
func (p *LogParser) Records() []RawMessageRecord {
	return p.records
}

func (p *LogParser) reset() {
	p.state = stateAwaitingMessage
	p.current = nil
	p.body = nil
	p.records = nil
	p.pending = nil
	p.stats = ParseStats{}
}

// Feed advances the state machine by one physical line
func (p *LogParser) Feed(raw RawLine) {
	p.stats.TotalLines++
	line := normalizeLine(raw.Text)
	g := p.format.Grammar

	if m, ok := g.MatchHeader(line); ok {
		if ev, ok := matchReactionEvent(m.Sender, m.Body); ok {
			p.flush()
			p.attachReaction(ev)
			return
		}
		p.open(raw.Number, m, isSystemMessage(m))
		return
	}

	if m, ok := g.MatchSystem(line); ok {
		if ev, ok := matchReactionEvent("", m.Body); ok {
			p.flush()
			p.attachReaction(ev)
			return
		}
		p.open(raw.Number, m, true)
		return
	}

	switch p.state {
	case stateInMessage:
		p.body = append(p.body, strings.TrimRight(line, " \t"))
		p.current.IsContinuation = true
	case stateAwaitingMessage:
		if strings.TrimSpace(line) != "" {
			p.stats.SkippedLines++
			LogDebug("Skipping line %d with no open message", raw.Number)
		}
	}
}

// Flush emits any record still accumulating; call once at end of input
func (p *LogParser) Flush() {
	p.flush()
	p.stats.OrphanReactions += len(p.pending)
	p.pending = nil
}

// open transitions to InMessage with a new record, emitting the previous one
func (p *LogParser) open(line int, m HeaderMatch, system bool) {
	p.flush()
	p.current = &RawMessageRecord{
		Line:          line,
		TimestampText: m.Timestamp,
		SenderText:    m.Sender,
		IsSystem:      system,
	}
	p.body = []string{m.Body}
	p.state = stateInMessage
}

// flush transitions back to AwaitingMessage, finalizing the open record
func (p *LogParser) flush() {
	if p.state != stateInMessage || p.current == nil {
		return
	}

	rec := *p.current
	body := strings.TrimRightFunc(strings.Join(p.body, "\n"), isTrailingSpace)
	rec.Body, rec.Reactions = stripReactions(body)
	if rec.IsSystem {
		p.stats.SystemMessages++
	}
	p.records = append(p.records, rec)

	p.current = nil
	p.body = nil
	p.state = stateAwaitingMessage
}

// attachReaction adds a reaction event to the latest earlier message it quotes
func (p *LogParser) attachReaction(ev reactionEventMatch) {
	for i := len(p.records) - 1; i >= 0; i-- {
		rec := &p.records[i]
		if rec.IsSystem || ev.quoted == "" {
			continue
		}
		if strings.HasPrefix(rec.Body, ev.quoted) {
			rec.Reactions = append(rec.Reactions, ev.reaction)
			return
		}
	}
	p.pending = append(p.pending, ev)
}

// isSystemMessage flags service messages that still matched a sender header
func isSystemMessage(m HeaderMatch) bool {
	if !m.HasSender {
		return true
	}
	switch strings.ToLower(CleanSender(m.Sender)) {
	case "", "system", "whatsapp":
		return true
	}
	if strings.HasPrefix(m.Body, "\u202e") {
		return true
	}
	return systemMarkers.MatchString(m.Body) || systemMarkers.MatchString(m.Sender)
}
