package internal

import "time"

// RecordAssembler zips raw records with their instants into final records
type RecordAssembler struct {
	normalizer *TimestampNormalizer
	dropped    int
	lastErr    error
}

// NewRecordAssembler creates an assembler using the run's normalizer
func NewRecordAssembler(normalizer *TimestampNormalizer) *RecordAssembler {
	return &RecordAssembler{normalizer: normalizer}
}

// Assemble converts raw records in file order. System records are excluded;
// records whose timestamp fails to parse are dropped and counted.
func (a *RecordAssembler) Assemble(raw []RawMessageRecord) []MessageRecord {
	records := make([]MessageRecord, 0, len(raw))
	for _, r := range raw {
		if r.IsSystem {
			continue
		}
		ts, err := a.normalizer.Normalize(r.TimestampText)
		if err != nil {
			a.dropped++
			a.lastErr = err
			LogDebug("Dropping record at line %d: %v", r.Line, err)
			continue
		}
		records = append(records, BuildRecord(r, ts))
	}
	return records
}

// Dropped returns how many records were discarded for bad timestamps
func (a *RecordAssembler) Dropped() int {
	return a.dropped
}

// LastError returns the most recent timestamp failure, if any
func (a *RecordAssembler) LastError() error {
	return a.lastErr
}

// BuildRecord derives the feature set of one message
func BuildRecord(raw RawMessageRecord, ts time.Time) MessageRecord {
	body := raw.Body
	hour := ts.Hour()
	return MessageRecord{
		Timestamp:    ts,
		Sender:       CleanSender(raw.SenderText),
		Body:         body,
		WordCount:    WordCount(body),
		CharCount:    CharCount(body),
		EmojiCount:   CountEmojis(body),
		IsMedia:      IsMedia(body),
		ContainsURL:  ContainsURL(body),
		IsQuestion:   IsQuestion(body),
		Hour:         hour,
		DayOfWeek:    ts.Weekday().String(),
		TimePeriod:   TimePeriodForHour(hour),
		Reactions:    raw.Reactions,
		SourceLine:   raw.Line,
		Continuation: raw.IsContinuation,
	}
}
