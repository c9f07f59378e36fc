package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/iksnae/chat-session/internal"
	"github.com/mattn/go-runewidth"
)

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1)

	reportSectionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("62")).
				Bold(true).
				Underline(true)

	reportMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	reportCaveatStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214")).
				Italic(true)
)

const nameColumnWidth = 24

// truncateWidth shortens s to width terminal cells
func truncateWidth(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func renderSessionSummary(w io.Writer, s *internal.Session) {
	fmt.Fprintln(w, reportTitleStyle.Render(fmt.Sprintf("💬 %s  %s", s.Source, s.ID)))
	meta := []string{
		fmt.Sprintf("Format: %s, %s", s.Grammar, s.DateOrder),
		fmt.Sprintf("Encoding: %s", s.Encoding),
		fmt.Sprintf("Confidence: %.0f%%", s.Confidence*100),
	}
	fmt.Fprintln(w, reportMetaStyle.Render(strings.Join(meta, " • ")))
	fmt.Fprintln(w, reportMetaStyle.Render(fmt.Sprintf("%s message(s), %s skipped line(s), %s system message(s), %s dropped record(s), %s orphan reaction(s)",
		humanize.Comma(int64(len(s.Records))),
		humanize.Comma(int64(s.Stats.SkippedLines)),
		humanize.Comma(int64(s.Stats.SystemMessages)),
		humanize.Comma(int64(s.Stats.DroppedRecords)),
		humanize.Comma(int64(s.Stats.OrphanReactions)))))
	fmt.Fprintln(w)
}

func renderStatistics(w io.Writer, stats *internal.Statistics, records int) {
	if records == 0 {
		fmt.Fprintln(w, reportMetaStyle.Render("No messages to analyze"))
		fmt.Fprintln(w)
		return
	}
	g := stats.Global

	fmt.Fprintln(w, reportSectionStyle.Render("Overview"))
	fmt.Fprintf(w, "  Messages:     %s from %d participant(s)\n", humanize.Comma(int64(g.TotalMessages)), g.Participants)
	fmt.Fprintf(w, "  Span:         %s → %s\n", g.FirstMessage.Format("2006-01-02 15:04"), g.LastMessage.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "  Words:        %s (%.2f per message)\n", humanize.Comma(int64(g.TotalWords)), g.AvgWordsPerMessage)
	fmt.Fprintf(w, "  Media:        %d   Links: %d   Questions: %d\n", g.MediaMessages, g.URLMessages, g.Questions)
	fmt.Fprintf(w, "  Peak:         %02d:00 on %ss\n", stats.Temporal.PeakHour, stats.Temporal.PeakDay)
	fmt.Fprintln(w)

	fmt.Fprintln(w, reportSectionStyle.Render("Participants"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  Name\tMessages\tShare\tWords/msg\tEmojis\tReply (median)\tDelayed\tSentiment\t")
	for _, name := range sortedUsers(stats.Users) {
		u := stats.Users[name]
		reply := "—"
		if u.ResponseTime.Count > 0 {
			reply = formatMinutes(u.ResponseTime.Median)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%.1f%%\t%.2f\t%d\t%s\t%d\t%+.3f\t\n",
			truncateWidth(name, nameColumnWidth), humanize.Comma(int64(u.Messages)), u.MessageShare,
			u.AvgWords, u.Emojis, reply, u.ResponseTime.Delayed, u.Sentiment)
	}
	_ = tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, reportSectionStyle.Render("Conversations"))
	c := stats.Conversation
	fmt.Fprintf(w, "  %d conversation(s), %.1f messages on average, longest %d\n",
		c.Conversations, c.AvgMessagesPerConversation, c.LongestConversation)
	if starter := topKey(c.Initiators); starter != "" {
		fmt.Fprintf(w, "  Most often started by %s (%d)\n", starter, c.Initiators[starter])
	}
	a := stats.Activity
	fmt.Fprintf(w, "  %d active day(s), %.1f ± %.1f messages per day, busiest %s (%d)\n",
		a.ActiveDays, a.DailyMean, a.DailyStdDev, a.BusiestDay.Date, a.BusiestDay.Count)
	if len(a.AnomalyDays) > 0 {
		days := make([]string, 0, len(a.AnomalyDays))
		for _, d := range a.AnomalyDays {
			days = append(days, fmt.Sprintf("%s (%d)", d.Date, d.Count))
		}
		fmt.Fprintf(w, "  Unusually busy: %s\n", strings.Join(days, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, reportSectionStyle.Render("Content"))
	fmt.Fprintf(w, "  Top words:  %s\n", joinTerms(stats.TopWords))
	fmt.Fprintf(w, "  Top emojis: %s\n", joinTerms(stats.Emoji.Top))
	s := stats.Sentiment
	fmt.Fprintf(w, "  Sentiment:  %d positive, %d neutral, %d negative (mean %+.3f)\n",
		s.Positive, s.Neutral, s.Negative, s.Mean)
	if stats.Reactions.Total > 0 {
		fmt.Fprintf(w, "  Reactions:  %d (%s)\n", stats.Reactions.Total, joinTerms(stats.Reactions.TopEmojis))
	}
	if s.Sampled {
		fmt.Fprintln(w, reportCaveatStyle.Render(fmt.Sprintf("  Emoji and sentiment figures estimated from a sample of %s messages",
			humanize.Comma(int64(s.SampleSize)))))
	}
	fmt.Fprintln(w)
}

func sortedUsers(users map[string]*internal.UserStats) []string {
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := users[names[i]], users[names[j]]
		if a.Messages != b.Messages {
			return a.Messages > b.Messages
		}
		return names[i] < names[j]
	})
	return names
}

func topKey(counts map[string]int) string {
	best := ""
	for k, v := range counts {
		if best == "" || v > counts[best] || (v == counts[best] && k < best) {
			best = k
		}
	}
	return best
}

func joinTerms(terms []internal.TermCount) string {
	if len(terms) == 0 {
		return "—"
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, t.Term+" "+strconv.Itoa(t.Count))
	}
	return strings.Join(parts, ", ")
}

// formatMinutes renders a delay as "45s", "12m" or "3h05m"
func formatMinutes(m float64) string {
	switch {
	case m < 1:
		return fmt.Sprintf("%.0fs", m*60)
	case m < 60:
		return fmt.Sprintf("%.0fm", m)
	default:
		h := int(m) / 60
		return fmt.Sprintf("%dh%02dm", h, int(m)-h*60)
	}
}
