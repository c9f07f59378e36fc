package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
)

var (
	listClearCache bool
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	participantStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Italic(true)
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Long:  `List every chat session stored in the session database, most recent import first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listClearCache {
			if err := cacheManager().ClearCache(); err != nil {
				internal.LogWarn("Failed to clear cache: %v", err)
			} else {
				internal.LogInfo("Cache cleared")
			}
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		sessions, err := store.ListSessions()
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		displaySessions(cmd.OutOrStdout(), sessions, time.Now())
		return nil
	},
}

func displaySessions(w io.Writer, sessions []internal.SessionSummary, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, headerStyle.Render("📋 No sessions stored yet. Run `chat-session analyze <export>` first."))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📋 Found %d session(s)", len(sessions))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("ID")+"\t"+titleStyle.Render("Source")+"\t"+titleStyle.Render("Messages")+"\t"+
		titleStyle.Render("Span")+"\t"+titleStyle.Render("Participants")+"\t"+titleStyle.Render("Imported")+"\t")
	_, _ = fmt.Fprintln(tw, strings.Repeat("─", 110))

	for _, s := range sessions {
		source := truncateWidth(s.Source, 30)

		span := dateStyle.Render("—")
		if !s.FirstMessage.IsZero() {
			span = dateStyle.Render(s.FirstMessage.Format("2006-01-02") + " → " + s.LastMessage.Format("2006-01-02"))
		}

		participants := participantStyle.Render(truncateWidth(strings.Join(s.Participants, ", "), 30))

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(s.ID), source, countStyle.Render(strconv.Itoa(s.MessageCount)),
			span, participants, dateStyle.Render(humanize.RelTime(s.ImportedAt, now, "ago", "from now")))
	}

	_ = tw.Flush()
	fmt.Fprintln(w)
	fmt.Fprintln(w, idStyle.Render("💡 Tip: Use the ID (or a unique prefix, e.g. ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(sessions[0].ID[:min(8, len(sessions[0].ID))])+
		idStyle.Render(") with `chat-session show <id>`"))
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listClearCache, "clear-cache", false, "Clear the statistics cache before running")
}
