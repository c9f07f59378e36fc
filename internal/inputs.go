package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandInputs resolves files, directories and glob patterns (including **)
// into a sorted, de-duplicated list of chat export files.
// Directories contribute every *.txt file beneath them.
func ExpandInputs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if !seen[abs] {
			seen[abs] = true
			files = append(files, path)
		}
	}

	for _, p := range patterns {
		if info, err := os.Stat(p); err == nil {
			if !info.IsDir() {
				add(p)
				continue
			}
			p = filepath.Join(p, "**", "*.txt")
		}

		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("invalid input pattern %s: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %s", p)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}

	return files, nil
}
