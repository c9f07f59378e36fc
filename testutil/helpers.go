package testutil

import (
	"encoding/json"
	"os"
	"testing"
)

// CreateTempDir creates a temporary directory removed when the test ends
func CreateTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "chat-session-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

// IsolateHome points HOME at a fresh directory so default config, database
// and cache paths never touch the real user profile
func IsolateHome(t *testing.T) string {
	t.Helper()
	home := CreateTempDir(t)
	t.Setenv("HOME", home)
	return home
}

// DecodeJSON decodes command output, failing the test with the output on error
func DecodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("Failed to decode JSON output: %v\n%s", err, out)
	}
}
