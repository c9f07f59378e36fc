package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
)

var (
	analyzeWorkers     int
	analyzeWhere       string
	analyzeJSON        bool
	analyzeMetricsFile string
	analyzeNoSave      bool
	analyzeTop         int
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|dir|glob>... | -",
	Short: "Parse chat exports, store them and print statistics",
	Long: `Parse one or more chat exports and print a statistics report for each.

Inputs may be files, directories (every *.txt beneath them) or glob patterns
with ** support. Use "-" to read a single export from stdin. Files are parsed
in parallel; a file that cannot be decoded or whose layout is not recognized
is reported and skipped without stopping the others.

Parsed sessions are saved to the session database unless --no-save is given.
Importing the same bytes twice is a no-op.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		filter, err := internal.CompileFilter(analyzeWhere)
		if err != nil {
			return err
		}

		workers := cfg.Workers
		if analyzeWorkers > 0 {
			workers = analyzeWorkers
		}

		metrics := internal.NewMetrics()

		var results []internal.FileResult
		if len(args) == 1 && args[0] == "-" {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			res, err := internal.NewPipeline(internal.WithMetrics(metrics)).ParseSource("stdin", raw)
			results = []internal.FileResult{{Path: "stdin", Result: res, Err: err}}
		} else {
			paths, err := internal.ExpandInputs(args)
			if err != nil {
				return err
			}
			err = internal.ShowCountedProgress(contextOf(cmd), "Parsing files", len(paths), func(counter *internal.ProgressCounter) error {
				counted := internal.NewPipeline(internal.WithMetrics(metrics),
					internal.WithFileDone(func(internal.FileResult) { counter.Inc() }))
				var perr error
				results, perr = counted.ParseFiles(contextOf(cmd), paths, workers)
				return perr
			})
			if err != nil {
				return err
			}
		}

		var sessions []*internal.Session
		failed := 0
		for _, fr := range results {
			if fr.Err != nil {
				failed++
				internal.PrintError(fr.Err.Error())
				continue
			}
			sessions = append(sessions, internal.NewSession(fr.Path, fr.Result))
		}
		unique := internal.NewDeduplicator().Deduplicate(sessions)
		if dup := len(sessions) - len(unique); dup > 0 {
			internal.LogInfo("Skipped %d duplicate export(s)", dup)
		}

		if !analyzeNoSave && len(unique) > 0 {
			if err := saveSessions(unique); err != nil {
				return err
			}
		}

		opts := cfg.AggregateOptions()
		opts.Workers = workers
		if analyzeTop > 0 {
			opts.TopN = analyzeTop
		}
		aggregator := internal.NewAggregator(opts)

		reports := make(map[string]*internal.Statistics, len(unique))
		for _, s := range unique {
			records, err := filter.Apply(s.Records)
			if err != nil {
				return err
			}
			stats, err := aggregator.Aggregate(contextOf(cmd), records)
			if err != nil {
				return err
			}
			if analyzeJSON {
				reports[s.ID] = stats
				continue
			}
			renderSessionSummary(out, s)
			renderStatistics(out, stats, len(records))
		}

		if analyzeJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(reports); err != nil {
				return err
			}
		}

		if analyzeMetricsFile != "" {
			if err := metrics.WriteTextfile(analyzeMetricsFile); err != nil {
				internal.LogWarn("Failed to write metrics to %s: %v", analyzeMetricsFile, err)
			}
		}

		if failed > 0 && len(unique) == 0 {
			return fmt.Errorf("no export could be parsed (%d failure(s))", failed)
		}
		if failed > 0 {
			internal.PrintWarning(fmt.Sprintf("%d file(s) could not be parsed", failed))
		}
		return nil
	},
}

func saveSessions(sessions []*internal.Session) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, s := range sessions {
		saved, err := store.SaveSession(s)
		if err != nil {
			return err
		}
		if saved {
			internal.LogInfo("Stored session %s (%d messages)", s.ID, len(s.Records))
		} else {
			internal.LogInfo("Session %s already stored", s.ID)
		}
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().IntVarP(&analyzeWorkers, "workers", "w", 0, "Worker pool size (default from config, else CPU count)")
	analyzeCmd.Flags().StringVar(&analyzeWhere, "where", "", `Only analyze records matching an expression, e.g. 'sender == "Sara" && hour >= 22'`)
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print statistics as JSON keyed by session ID")
	analyzeCmd.Flags().StringVar(&analyzeMetricsFile, "metrics-file", "", "Write parse metrics in Prometheus textfile format")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Do not store parsed sessions")
	analyzeCmd.Flags().IntVar(&analyzeTop, "top", 0, "Number of top words and emojis to report")
}
