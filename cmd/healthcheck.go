package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// selfTestExport is parsed on every healthcheck
const selfTestExport = "[23/01/2024, 9:15:02 AM] Dana: good morning\n" +
	"[23/01/2024, 9:16:40 AM] Lee: morning! coffee?\n" +
	"continued on a second line\n" +
	"[23/01/2024, 9:20:11 AM] Dana: sure 👍\n"

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that chat-session can store, cache and parse",
	Long: `Check the health of chat-session by verifying:
  • Configuration loading
  • Session database access
  • Statistics cache directory
  • Parser self-test on a built-in export

This command is useful for debugging setup issues, especially in CI/CD environments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0

		fmt.Fprintln(out, sectionStyle.Render("🔍 Chat Session Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if verbose {
			path := configPath
			if path == "" {
				path, _ = internal.DefaultConfigPath()
			}
			fmt.Fprintf(out, "   Config: %s\n", path)
			fmt.Fprintf(out, "   Workers: %d\n", cfg.Workers)
		}
		fmt.Fprintln(out)

		// Step 2: Session database
		fmt.Fprintln(out, infoStyle.Render("Step 2: Opening session database..."))
		sessions, messages := 0, 0
		if store, err := openStore(); err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open session database:"), err)
			failed++
		} else {
			sessions, messages, err = store.Count()
			_ = store.Close()
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render("❌ Failed to query session database:"), err)
				failed++
			} else {
				fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Session database ready (%d session(s), %d message(s))", sessions, messages)))
			}
			if verbose {
				fmt.Fprintf(out, "   Database: %s\n", cfg.DBPath)
			}
		}
		fmt.Fprintln(out)

		// Step 3: Cache directory
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking statistics cache..."))
		if err := checkCacheDir(cacheManager()); err != nil {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Cache directory not writable:"), err)
			fmt.Fprintln(out, "   Statistics will be recomputed on every run")
		} else {
			fmt.Fprintln(out, successStyle.Render("✅ Cache directory writable"))
		}
		if verbose {
			fmt.Fprintf(out, "   Directory: %s\n", cfg.CacheDir)
		}
		fmt.Fprintln(out)

		// Step 4: Parser self-test
		fmt.Fprintln(out, infoStyle.Render("Step 4: Running parser self-test..."))
		if err := parserSelfTest(out); err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Parser self-test failed:"), err)
			failed++
		} else {
			fmt.Fprintln(out, successStyle.Render("✅ Parser self-test passed"))
		}
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)

		if failed > 0 {
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			fmt.Fprintf(out, "   • %d check(s) failed\n", failed)
			return fmt.Errorf("health check failed: %d check(s) failed", failed)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("   • Sessions: %d stored", sessions)))
		return nil
	},
}

func checkCacheDir(cm *internal.CacheManager) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}
	probe, err := os.CreateTemp(cm.GetCacheDir(), ".healthcheck-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(filepath.Clean(name))
}

func parserSelfTest(w io.Writer) error {
	res, err := internal.NewPipeline().ParseSource("self-test", []byte(selfTestExport))
	if err != nil {
		return err
	}
	if res.Format.Grammar != internal.GrammarIOS12h {
		return fmt.Errorf("resolved %s, want %s", res.Format.Grammar, internal.GrammarIOS12h)
	}
	if len(res.Records) != 3 {
		return fmt.Errorf("parsed %d record(s), want 3", len(res.Records))
	}
	if verbose {
		fmt.Fprintf(w, "   Grammar: %s (%s)\n", res.Format.Grammar, res.Format.DateOrder)
		fmt.Fprintf(w, "   Result: %s\n", res.Summary())
	}
	return nil
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
