package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	statsOutput  string
	statsWhere   string
	statsNoCache bool
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <session-id>",
	Short: "Print the statistics report of a stored session",
	Long: `Compute per-user and global statistics for a stored session.

Results are cached per session and aggregation settings; filtered runs
(--where) are always computed fresh.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		filter, err := internal.CompileFilter(statsWhere)
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

		opts := cfg.AggregateOptions()
		key := internal.OptionsKey(opts)
		cache := cacheManager()
		useCache := !statsNoCache && filter.String() == ""

		records, err := filter.Apply(session.Records)
		if err != nil {
			return err
		}

		var stats *internal.Statistics
		if useCache {
			if cached, ok := cache.LoadStats(session, key); ok {
				internal.LogDebug("Loaded statistics for %s from cache", session.ID)
				stats = cached
			}
		}
		if stats == nil {
			err = internal.ShowProgress(contextOf(cmd), fmt.Sprintf("Analyzing %d message(s)", len(records)), func() error {
				var aerr error
				stats, aerr = internal.NewAggregator(opts).Aggregate(contextOf(cmd), records)
				return aerr
			})
			if err != nil {
				return err
			}
			if useCache {
				if err := cache.SaveStats(session, key, stats); err != nil {
					internal.LogWarn("Failed to cache statistics: %v", err)
				}
			}
		}

		switch statsOutput {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		case "yaml":
			enc := yaml.NewEncoder(out)
			defer func() { _ = enc.Close() }()
			return enc.Encode(stats)
		case "text", "":
			renderSessionSummary(out, session)
			renderStatistics(out, stats, len(records))
			return nil
		default:
			return fmt.Errorf("unsupported output: %s (supported: text, json, yaml)", statsOutput)
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "text", "Output format (text, json, yaml)")
	statsCmd.Flags().StringVar(&statsWhere, "where", "", "Only count records matching an expression")
	statsCmd.Flags().BoolVar(&statsNoCache, "no-cache", false, "Recompute even when cached statistics exist")
}
