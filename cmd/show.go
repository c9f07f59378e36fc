package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat-session/internal"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var (
	limit     int
	since     string
	showWhere string
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	senderStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true),
		lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	}

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2)

	mediaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show messages for a specific session",
	Long: `Display the message records of a stored session.

The session ID may be abbreviated to any unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		filter, err := internal.CompileFilter(showWhere)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		session, err := store.LoadSession(args[0])
		if err != nil {
			return err
		}

		displaySessionHeader(out, session)

		records := session.Records
		if since != "" {
			sinceTime, err := parseSince(since)
			if err != nil {
				return err
			}
			filtered := make([]internal.MessageRecord, 0, len(records))
			for _, r := range records {
				if !r.Timestamp.Before(sinceTime) {
					filtered = append(filtered, r)
				}
			}
			records = filtered
		}
		if records, err = filter.Apply(records); err != nil {
			return err
		}

		totalFiltered := len(records)
		if limit > 0 && limit < len(records) {
			records = records[:limit]
		}

		colors := senderColors(session.Metadata.Participants)
		for i, r := range records {
			displayRecord(out, i+1, r, totalFiltered, colors[r.Sender])
		}

		if limit > 0 && limit < totalFiltered {
			fmt.Fprintln(out)
			fmt.Fprintln(out, timestampStyle.Render(fmt.Sprintf("... (%d more message(s))", totalFiltered-limit)))
		}
		return nil
	},
}

// parseSince accepts RFC3339, "2006-01-02 15:04" or a bare date
func parseSince(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --since timestamp %q (expected RFC3339, 2006-01-02 15:04 or 2006-01-02)", s)
}

func senderColors(participants []string) map[string]lipgloss.Style {
	colors := make(map[string]lipgloss.Style, len(participants))
	for i, p := range participants {
		colors[p] = senderStyles[i%len(senderStyles)]
	}
	return colors
}

func displaySessionHeader(w io.Writer, session *internal.Session) {
	if session == nil {
		return
	}
	fmt.Fprintln(w, sessionHeaderStyle.Render(fmt.Sprintf("💬 %s", session.Source)))

	metaParts := []string{
		fmt.Sprintf("ID: %s", session.ID),
		fmt.Sprintf("Messages: %d", len(session.Records)),
	}
	if !session.Metadata.FirstMessage.IsZero() {
		metaParts = append(metaParts, fmt.Sprintf("From %s to %s",
			session.Metadata.FirstMessage.Format("2006-01-02"), session.Metadata.LastMessage.Format("2006-01-02")))
	}
	if len(session.Metadata.Participants) > 0 {
		metaParts = append(metaParts, fmt.Sprintf("Participants: %s", strings.Join(session.Metadata.Participants, ", ")))
	}
	fmt.Fprintln(w, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
}

func displayRecord(w io.Writer, index int, r internal.MessageRecord, total int, style lipgloss.Style) {
	header := style.Render(r.Sender) + " " +
		timestampStyle.Render(fmt.Sprintf("[%d/%d] %s", index, total, r.Timestamp.Format("2006-01-02 15:04")))
	fmt.Fprintln(w, header)

	body := strings.TrimSpace(r.Body)
	switch {
	case r.IsMedia:
		fmt.Fprintln(w, messageContentStyle.Render(mediaStyle.Render(body)))
	case body == "":
		fmt.Fprintln(w, messageContentStyle.Render(mediaStyle.Render("(empty message)")))
	default:
		fmt.Fprintln(w, messageContentStyle.Render(wrapText(body, 80)))
	}

	if len(r.Reactions) > 0 {
		parts := make([]string, 0, len(r.Reactions))
		for _, rc := range r.Reactions {
			parts = append(parts, rc.Emoji+" "+rc.Reactor)
		}
		fmt.Fprintln(w, messageContentStyle.Render(timestampStyle.Render(strings.Join(parts, "  "))))
	}
	fmt.Fprintln(w)
}

// wrapText wraps each line at width terminal cells
func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if runewidth.StringWidth(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		currentLine := ""
		for _, word := range strings.Fields(line) {
			switch {
			case currentLine == "":
				currentLine = word
			case runewidth.StringWidth(currentLine)+1+runewidth.StringWidth(word) > width:
				wrapped = append(wrapped, currentLine)
				currentLine = word
			default:
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show")
	showCmd.Flags().StringVar(&since, "since", "", "Show messages since timestamp (RFC3339 or 2006-01-02)")
	showCmd.Flags().StringVar(&showWhere, "where", "", "Only show records matching an expression")
}
