package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Chat export samples, one per common layout
const (
	IOSExport = "[23/04/2025, 3:40:23 PM] Three teams: hello\n" +
		"[23/04/2025, 3:41:00 PM] Three teams: world\n" +
		"[23/04/2025, 3:45:10 PM] Dana: anyone up for lunch?\n" +
		"it's on me\n" +
		"[23/04/2025, 3:47:02 PM] Three teams: sure 👍\n"

	AndroidExport = "8/1/25, 9:00 AM - Messages and calls are end-to-end encrypted. No one outside of this chat can read them.\n" +
		"8/1/25, 9:00 AM - Ahmed: <Media omitted>\n" +
		"8/1/25, 10:06 AM - Ahmed: hi\n" +
		"8/1/25, 10:07 AM - Sara: hello\n" +
		"8/1/25, 10:07 AM - Sara: check https://example.com\n" +
		"8/1/25, 10:30 AM - Ahmed: are you coming tonight?\n"

	EuropeanExport = "24.12.2024, 18:30 - Jonas: Frohe Weihnachten!\n" +
		"24.12.2024, 18:32 - Mia: Danke, dir auch 🎄\n" +
		"25.12.2024, 09:15 - Jonas: Gut geschlafen?\n"

	ISOExport = "2024-03-01 08:00:00 - Kim: morning all\n" +
		"2024-03-01 08:05:30 - Lee: morning!\n" +
		"2024-03-02 21:10:00 - Kim: good night\n"

	// NoiseExport matches no grammar
	NoiseExport = "this is just a text file\nwith a few lines that look nothing like a chat log\nat all, really.\n"
)

// WriteChatExport writes content to dir/name and returns the path
func WriteChatExport(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create export directory: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write export %s: %v", name, err)
	}
	return path
}

// CreateExportCorpus writes one export per layout into a fresh directory tree
func CreateExportCorpus(t *testing.T) string {
	t.Helper()
	dir := CreateTempDir(t)
	WriteChatExport(t, dir, "ios/_chat.txt", []byte(IOSExport))
	WriteChatExport(t, dir, "android/WhatsApp Chat with Sara.txt", []byte(AndroidExport))
	WriteChatExport(t, dir, "european.txt", []byte(EuropeanExport))
	WriteChatExport(t, dir, "notes.md", []byte("not a chat export"))
	return dir
}

// EncodeUTF16 returns text as UTF-16LE with a byte order mark
func EncodeUTF16(t *testing.T, text string) []byte {
	t.Helper()
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(text)
	if err != nil {
		t.Fatalf("Failed to encode UTF-16: %v", err)
	}
	return []byte(out)
}

// EncodeWindows1252 returns text in the Windows-1252 code page
func EncodeWindows1252(t *testing.T, text string) []byte {
	t.Helper()
	out, err := charmap.Windows1252.NewEncoder().String(text)
	if err != nil {
		t.Fatalf("Failed to encode Windows-1252: %v", err)
	}
	return []byte(out)
}
