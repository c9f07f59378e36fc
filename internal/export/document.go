package export

import (
	"time"

	"github.com/iksnae/chat-session/internal"
)

// document is the nested export shape shared by the JSON and YAML exporters
type document struct {
	Session  sessionHeader            `json:"session" yaml:"session"`
	Parse    internal.ParseStats      `json:"parse" yaml:"parse"`
	Records  []internal.MessageRecord `json:"records" yaml:"records"`
	Exported time.Time                `json:"exported_at" yaml:"exported_at"`
}

type sessionHeader struct {
	ID           string    `json:"id" yaml:"id"`
	RunID        string    `json:"run_id" yaml:"run_id"`
	Source       string    `json:"source" yaml:"source"`
	Encoding     string    `json:"encoding" yaml:"encoding"`
	Grammar      string    `json:"grammar" yaml:"grammar"`
	DateOrder    string    `json:"date_order,omitempty" yaml:"date_order,omitempty"`
	Messages     int       `json:"messages" yaml:"messages"`
	Participants []string  `json:"participants" yaml:"participants"`
	FirstMessage time.Time `json:"first_message" yaml:"first_message"`
	LastMessage  time.Time `json:"last_message" yaml:"last_message"`
}

// now is replaced in tests
var now = time.Now

func newDocument(session *internal.Session) document {
	records := session.Records
	if records == nil {
		records = []internal.MessageRecord{}
	}
	participants := session.Metadata.Participants
	if participants == nil {
		participants = []string{}
	}
	return document{
		Session: sessionHeader{
			ID:           session.ID,
			RunID:        session.RunID,
			Source:       session.Source,
			Encoding:     string(session.Encoding),
			Grammar:      string(session.Grammar),
			DateOrder:    session.DateOrder,
			Messages:     len(records),
			Participants: participants,
			FirstMessage: session.Metadata.FirstMessage,
			LastMessage:  session.Metadata.LastMessage,
		},
		Parse:    session.Stats,
		Records:  records,
		Exported: now().UTC(),
	}
}
