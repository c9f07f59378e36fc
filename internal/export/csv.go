package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iksnae/chat-session/internal"
)

// CSVExporter exports the flat record table
type CSVExporter struct{}

var csvHeader = []string{
	"timestamp", "sender", "body", "word_count", "char_count", "emoji_count",
	"is_media", "contains_url", "is_question", "hour", "day_of_week", "time_period", "reactions",
}

// Export writes a header row followed by one row per record
func (e *CSVExporter) Export(session *internal.Session, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range session.Records {
		reactions := make([]string, 0, len(r.Reactions))
		for _, rc := range r.Reactions {
			reactions = append(reactions, rc.Reactor+" "+rc.Emoji)
		}
		row := []string{
			r.Timestamp.Format(time.DateTime),
			r.Sender,
			r.Body,
			strconv.Itoa(r.WordCount),
			strconv.Itoa(r.CharCount),
			strconv.Itoa(r.EmojiCount),
			strconv.FormatBool(r.IsMedia),
			strconv.FormatBool(r.ContainsURL),
			strconv.FormatBool(r.IsQuestion),
			strconv.Itoa(r.Hour),
			r.DayOfWeek,
			string(r.TimePeriod),
			strings.Join(reactions, "; "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Extension returns the file extension for this format
func (e *CSVExporter) Extension() string {
	return "csv"
}
