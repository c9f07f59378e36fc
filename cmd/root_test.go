package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/iksnae/chat-session/testutil"
)

// testEnv points the CLI at a throwaway config, database and cache
type testEnv struct {
	dir    string
	config string
	db     string
	cache  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := testutil.IsolateHome(t)
	env := &testEnv{
		dir:    dir,
		config: filepath.Join(dir, "config.toml"),
		db:     filepath.Join(dir, "sessions.db"),
		cache:  filepath.Join(dir, "cache"),
	}
	content := fmt.Sprintf("db_path = %q\ncache_dir = %q\nworkers = 2\n\n[logging]\nlevel = \"error\"\n", env.db, env.cache)
	if err := os.WriteFile(env.config, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return env
}

// run executes the root command with args and returns what it wrote
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", e.config))
	err := rootCmd.Execute()
	return out.String(), err
}

// importExport writes content to the env directory and analyzes it
func (e *testEnv) importExport(t *testing.T, name, content string) {
	t.Helper()
	path := testutil.WriteChatExport(t, e.dir, name, []byte(content))
	if _, err := e.run(t, "analyze", path); err != nil {
		t.Fatalf("analyze %s failed: %v", name, err)
	}
}

// resetFlags restores flag globals, which persist across Execute calls
func resetFlags() {
	verbose, configPath, dbPath = false, "", ""

	analyzeWorkers, analyzeWhere, analyzeJSON = 0, "", false
	analyzeMetricsFile, analyzeNoSave, analyzeTop = "", false, 0

	format, outputDir, sessionID, exportWhere = "jsonl", "./exports", "", ""
	deleteAll = false
	limit, since, showWhere = 0, "", ""
	statsOutput, statsWhere, statsNoCache = "text", "", false
	listClearCache = false
	inspectFormat, inspectSampleRows = "text", 3
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{
			name:    "version flag",
			args:    []string{"--version"},
			wantErr: false,
		},
		{
			name:    "help flag",
			args:    []string{"--help"},
			wantErr: false,
		},
		{
			name:    "unknown command",
			args:    []string{"nonexistent-command"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			rootCmd.SetArgs(tt.args)
			var stdout, stderr bytes.Buffer
			rootCmd.SetOut(&stdout)
			rootCmd.SetErr(&stderr)

			err := rootCmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Errorf("rootCmd.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRootCommand_MissingConfig(t *testing.T) {
	env := newTestEnv(t)
	resetFlags()
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"list", "--config", filepath.Join(env.dir, "missing.toml")})

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected an error for an explicit config path that does not exist")
	}
}

func TestRootCommand_DBOverride(t *testing.T) {
	env := newTestEnv(t)
	override := filepath.Join(env.dir, "override.db")

	if _, err := env.run(t, "list", "--db", override); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if cfg.DBPath != override {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, override)
	}
	if _, err := os.Stat(override); err != nil {
		t.Errorf("expected database at %s: %v", override, err)
	}
}

func TestRootCommand_SubcommandsRegistered(t *testing.T) {
	want := []string{"analyze", "delete", "detect", "export", "healthcheck", "inspect", "list", "show", "stats"}
	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}
