package export

import (
	"testing"
	"time"

	"github.com/iksnae/chat-session/internal"
)

var fixedNow = time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)

// freezeNow pins the export timestamp for the duration of the test
func freezeNow(t *testing.T) {
	t.Helper()
	prev := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = prev })
}

// reactedSession is the standard test session with a reaction and a multi-line body
func reactedSession(id string) *internal.Session {
	session := internal.CreateTestSession(id)
	session.Records[1].Reactions = []internal.Reaction{{Reactor: "Ahmed", Emoji: "👍"}}
	session.Records[2].Body = "are you coming tonight?\nbring **snacks**"
	return session
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{format: "jsonl", wantExt: "jsonl"},
		{format: "json", wantExt: "json"},
		{format: "yaml", wantExt: "yaml"},
		{format: "yml", wantExt: "yaml"},
		{format: "md", wantExt: "md"},
		{format: "markdown", wantExt: "md"},
		{format: "csv", wantExt: "csv"},
		{format: "xml", wantErr: true},
		{format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewExporter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if tt.wantErr {
				if exporter != nil {
					t.Errorf("NewExporter(%q) returned %T with an error", tt.format, exporter)
				}
				return
			}
			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}
		})
	}
}

func TestFormatsAreAllConstructible(t *testing.T) {
	for _, format := range Formats {
		if _, err := NewExporter(format); err != nil {
			t.Errorf("Formats lists %q but NewExporter rejects it: %v", format, err)
		}
	}
}
