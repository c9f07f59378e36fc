package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/chat-session/internal"
	"github.com/iksnae/chat-session/internal/export"
	"github.com/spf13/cobra"
)

var (
	format      string
	outputDir   string
	sessionID   string
	exportWhere string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to file",
	Long: `Export stored chat sessions to various formats (jsonl, json, yaml, md, csv).

You can export all sessions or a specific session by ID, optionally keeping
only the records that match a --where expression.
Use 'chat-session list' to see available session IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		filter, err := internal.CompileFilter(exportWhere)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var ids []string
		if sessionID != "" {
			id, err := store.ResolveID(sessionID)
			if err != nil {
				return fmt.Errorf("%w (use 'chat-session list' to see available sessions)", err)
			}
			ids = append(ids, id)
		} else {
			summaries, err := store.ListSessions()
			if err != nil {
				return err
			}
			for _, s := range summaries {
				ids = append(ids, s.ID)
			}
		}
		if len(ids) == 0 {
			internal.PrintInfo("No sessions to export")
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		err = internal.ShowProgress(contextOf(cmd), fmt.Sprintf("Exporting %d session(s) to %s", len(ids), outputDir), func() error {
			for _, id := range ids {
				session, err := store.LoadSession(id)
				if err != nil {
					internal.LogError("Failed to load session %s: %v", id, err)
					continue
				}
				if session.Records, err = filter.Apply(session.Records); err != nil {
					return err
				}

				path := filepath.Join(outputDir, exportFilename(session, exporter.Extension()))
				if err := exportSession(exporter, session, path); err != nil {
					internal.LogError("%v", err)
					continue
				}
				exported++
			}
			return nil
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d session(s) exported to %s", exported, outputDir))
		return nil
	},
}

func exportSession(exporter export.Exporter, session *internal.Session, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := exporter.Export(session, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return nil
}

// exportFilename derives "<source stem>_<id>.<ext>" with path separators removed
func exportFilename(session *internal.Session, ext string) string {
	stem := strings.TrimSuffix(session.Source, filepath.Ext(session.Source))
	stem = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(stem))
	if stem == "" {
		stem = "session"
	}
	return fmt.Sprintf("%s_%s.%s", stem, session.ID, ext)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, json, yaml, md, csv)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by ID")
	exportCmd.Flags().StringVar(&exportWhere, "where", "", "Only export records matching an expression")
}
