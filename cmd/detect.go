package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect <file>",
	Short: "Show the detected encoding and layout of an export",
	Long: `Decode a chat export and score its first lines against every known
layout, without parsing or storing it. Useful to check why a file is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		text, enc, err := internal.ResolveEncoding(raw)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Encoding:   %s\n", internal.DescribeEncoding(enc, len(raw)))

		format, err := internal.ResolveFormat(text)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Layout:     %s (%s)\n", format.Grammar, format.DateOrder)
		fmt.Fprintf(out, "Confidence: %.0f%% (%d of %d sampled lines", format.Confidence*100, format.Matches, format.SampledLines)
		if format.EarlyExit {
			fmt.Fprint(out, ", stopped early")
		}
		fmt.Fprintln(out, ")")
		fmt.Fprintln(out)

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Layout\tMatches\t")
		for _, g := range internal.Grammars() {
			marker := ""
			if g == format.Grammar {
				marker = " ✓"
			}
			fmt.Fprintf(tw, "%s\t%d%s\t\n", g, format.Scores[g], marker)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
