package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/chat-session/internal"
)

// MarkdownExporter exports a session as a readable transcript grouped by day
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(session *internal.Session, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Chat %s\n\n", session.ID)

	_, _ = fmt.Fprintf(w, "**Source:** %s  \n", session.Source)
	_, _ = fmt.Fprintf(w, "**Format:** %s (%s)  \n", session.Grammar, session.Encoding)
	if len(session.Metadata.Participants) > 0 {
		_, _ = fmt.Fprintf(w, "**Participants:** %s  \n", strings.Join(session.Metadata.Participants, ", "))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Records))

	day := ""
	for _, r := range session.Records {
		if d := r.Timestamp.Format("Monday, 2 January 2006"); d != day {
			day = d
			_, _ = fmt.Fprintf(w, "## %s\n\n", day)
		}

		body := escapeMarkdown(r.Body)
		if r.IsMedia {
			body = "_" + strings.TrimSpace(body) + "_"
		}
		_, _ = fmt.Fprintf(w, "**%s** (%s)\n\n%s\n\n", escapeMarkdown(r.Sender), r.Timestamp.Format("15:04"), quoteLines(body))

		if len(r.Reactions) > 0 {
			parts := make([]string, 0, len(r.Reactions))
			for _, rc := range r.Reactions {
				parts = append(parts, rc.Emoji+" "+rc.Reactor)
			}
			_, _ = fmt.Fprintf(w, "> Reactions: %s\n\n", strings.Join(parts, ", "))
		}
	}

	return nil
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	inCodeBlock := false

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			inCodeBlock = !inCodeBlock
		case !inCodeBlock:
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			lines[i] = line
		}
	}

	return strings.Join(lines, "\n")
}

// quoteLines renders a multi-line body as a block quote
func quoteLines(text string) string {
	return "> " + strings.ReplaceAll(text, "\n", "\n> ")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
