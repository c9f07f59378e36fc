package cmd

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/chat-session/internal"
	"github.com/iksnae/chat-session/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{
			name:    "export with invalid format",
			args:    []string{"export", "--format", "invalid"},
			wantErr: true,
		},
		{
			name:    "export with invalid filter",
			args:    []string{"export", "--where", "words >"},
			wantErr: true,
		},
		{
			name:    "export unknown session",
			args:    []string{"export", "--session-id", "ffffffff"},
			wantErr: true,
		},
		{
			name:    "export empty store",
			args:    []string{"export"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.run(t, append(tt.args, "--out", filepath.Join(env.dir, "exports"))...)
			if (err != nil) != tt.wantErr {
				t.Errorf("export error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExportCommand_AllFormats(t *testing.T) {
	env := newTestEnv(t)
	env.importExport(t, "_chat.txt", testutil.AndroidExport)
	id := internal.ShortID(internal.HashContent([]byte(testutil.AndroidExport)))

	for _, f := range []string{"jsonl", "json", "yaml", "md", "csv"} {
		t.Run(f, func(t *testing.T) {
			outDir := filepath.Join(env.dir, "out-"+f)
			_, err := env.run(t, "export", "--format", f, "--out", outDir)
			require.NoError(t, err)

			path := filepath.Join(outDir, "_chat_"+id+"."+f)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), "are you coming tonight?")
		})
	}
}

func TestExportCommand_FilteredJSONL(t *testing.T) {
	env := newTestEnv(t)
	env.importExport(t, "_chat.txt", testutil.AndroidExport)
	id := internal.ShortID(internal.HashContent([]byte(testutil.AndroidExport)))
	outDir := filepath.Join(env.dir, "exports")

	_, err := env.run(t, "export", "--session-id", id[:8], "--where", `sender == "Sara"`, "--out", outDir)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(outDir, "_chat_"+id+".jsonl"))
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		assert.Contains(t, scanner.Text(), `"sender":"Sara"`)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 2, lines)
}

func TestExportCommand_CSVRows(t *testing.T) {
	env := newTestEnv(t)
	env.importExport(t, "_chat.txt", testutil.IOSExport)
	id := internal.ShortID(internal.HashContent([]byte(testutil.IOSExport)))
	outDir := filepath.Join(env.dir, "exports")

	_, err := env.run(t, "export", "-f", "csv", "-o", outDir)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(outDir, "_chat_"+id+".csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "timestamp", rows[0][0])
	assert.Equal(t, "Dana", rows[3][1])
	assert.True(t, strings.Contains(rows[3][2], "\n"), "continuation kept inside one field")
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{source: "_chat.txt", want: "_chat_abc.jsonl"},
		{source: "WhatsApp Chat with Sara.txt", want: "WhatsApp_Chat_with_Sara_abc.jsonl"},
		{source: "stdin", want: "stdin_abc.jsonl"},
		{source: "", want: "session_abc.jsonl"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			s := &internal.Session{ID: "abc", Source: tt.source}
			if got := exportFilename(s, "jsonl"); got != tt.want {
				t.Errorf("exportFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}
