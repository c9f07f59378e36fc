package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/chat-session/internal"
)

// JSONLExporter exports one message record per line
type JSONLExporter struct{}

type jsonlRecord struct {
	Timestamp string              `json:"timestamp"`
	Sender    string              `json:"sender"`
	Body      string              `json:"body"`
	Words     int                 `json:"word_count"`
	Chars     int                 `json:"char_count"`
	Emojis    int                 `json:"emoji_count"`
	Media     bool                `json:"is_media"`
	URL       bool                `json:"contains_url"`
	Question  bool                `json:"is_question"`
	Hour      int                 `json:"hour"`
	Weekday   string              `json:"day_of_week"`
	Period    string              `json:"time_period"`
	Reactions []internal.Reaction `json:"reactions,omitempty"`
}

// Export writes every record of the session as a JSON object
func (e *JSONLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for i, r := range session.Records {
		obj := jsonlRecord{
			Timestamp: r.Timestamp.Format(time.DateTime),
			Sender:    r.Sender,
			Body:      r.Body,
			Words:     r.WordCount,
			Chars:     r.CharCount,
			Emojis:    r.EmojiCount,
			Media:     r.IsMedia,
			URL:       r.ContainsURL,
			Question:  r.IsQuestion,
			Hour:      r.Hour,
			Weekday:   r.DayOfWeek,
			Period:    string(r.TimePeriod),
			Reactions: r.Reactions,
		}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
