package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/chat-session/internal"
)

// JSONExporter exports the session header, parse stats and records as one indented document
type JSONExporter struct{}

// Export exports a session to JSON format
func (e *JSONExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(newDocument(session))
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
