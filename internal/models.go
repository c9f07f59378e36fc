package internal

import "time"

// RawLine is one physical line of decoded input
type RawLine struct {
	Offset int // byte offset in the decoded text
	Number int // 1-based line number
	Text   string
}

// Reaction is a single (reactor, emoji) annotation attached to a message
type Reaction struct {
	Reactor string `json:"reactor" yaml:"reactor"`
	Emoji   string `json:"emoji" yaml:"emoji"`
}

// RawMessageRecord is a logical message as read from the log, before timestamp conversion
type RawMessageRecord struct {
	Line           int
	TimestampText  string
	SenderText     string
	Body           string
	IsContinuation bool // at least one continuation line was merged into Body
	IsSystem       bool
	Reactions      []Reaction
}

// MessageRecord is a finalized, flat message with derived features
type MessageRecord struct {
	Timestamp    time.Time  `json:"timestamp" yaml:"timestamp"`
	Sender       string     `json:"sender" yaml:"sender"`
	Body         string     `json:"body" yaml:"body"`
	WordCount    int        `json:"word_count" yaml:"word_count"`
	CharCount    int        `json:"char_count" yaml:"char_count"`
	EmojiCount   int        `json:"emoji_count" yaml:"emoji_count"`
	IsMedia      bool       `json:"is_media" yaml:"is_media"`
	ContainsURL  bool       `json:"contains_url" yaml:"contains_url"`
	IsQuestion   bool       `json:"is_question" yaml:"is_question"`
	Hour         int        `json:"hour" yaml:"hour"`
	DayOfWeek    string     `json:"day_of_week" yaml:"day_of_week"`
	TimePeriod   TimePeriod `json:"time_period" yaml:"time_period"`
	Reactions    []Reaction `json:"reactions,omitempty" yaml:"reactions,omitempty"`
	SourceLine   int        `json:"source_line" yaml:"source_line"`
	Continuation bool       `json:"continuation,omitempty" yaml:"continuation,omitempty"`
}

// ResponseTimeSample is one observed reply delay for a sender
type ResponseTimeSample struct {
	Sender  string
	Minutes float64
}

// TimePeriod is a coarse bucket of the hour of day
type TimePeriod string

const (
	PeriodLateNight TimePeriod = "Late Night"
	PeriodMorning   TimePeriod = "Morning"
	PeriodAfternoon TimePeriod = "Afternoon"
	PeriodEvening   TimePeriod = "Evening"
	PeriodNight     TimePeriod = "Night"
)

// TimePeriods lists the buckets in chronological order
var TimePeriods = []TimePeriod{PeriodLateNight, PeriodMorning, PeriodAfternoon, PeriodEvening, PeriodNight}

// TimePeriodForHour buckets an hour of day (0-23)
func TimePeriodForHour(hour int) TimePeriod {
	switch {
	case hour <= 6:
		return PeriodLateNight
	case hour <= 12:
		return PeriodMorning
	case hour <= 17:
		return PeriodAfternoon
	case hour <= 21:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// ParseStats is the per-file completeness telemetry reported alongside records
type ParseStats struct {
	TotalLines      int `json:"total_lines" yaml:"total_lines"`
	SkippedLines    int `json:"skipped_lines" yaml:"skipped_lines"`
	SystemMessages  int `json:"system_messages" yaml:"system_messages"`
	DroppedRecords  int `json:"dropped_records" yaml:"dropped_records"`
	OrphanReactions int `json:"orphan_reactions" yaml:"orphan_reactions"`
	TimestampParses int `json:"timestamp_parses" yaml:"timestamp_parses"`
	CacheHits       int `json:"cache_hits" yaml:"cache_hits"`
}
