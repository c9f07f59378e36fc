package export

import (
	"io"

	"github.com/iksnae/chat-session/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports the same document as JSONExporter in YAML
type YAMLExporter struct{}

// Export exports a session to YAML format
func (e *YAMLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(newDocument(session))
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
