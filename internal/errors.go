package internal

import (
	"fmt"
	"sort"
	"strings"
)

// DecodeError is returned when no supported encoding yields valid text
type DecodeError struct {
	Tried []string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: no supported encoding produced valid text (tried %s): %v",
		strings.Join(e.Tried, ", "), e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnrecognizedFormatError is returned when no grammar matched the sampled lines
type UnrecognizedFormatError struct {
	SampledLines int
	Scores       map[GrammarID]int
}

func (e *UnrecognizedFormatError) Error() string {
	ids := make([]string, 0, len(e.Scores))
	for id := range e.Scores {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s=%d", id, e.Scores[GrammarID(id)]))
	}
	return fmt.Sprintf("unrecognized chat format: %d line(s) sampled, scores [%s]",
		e.SampledLines, strings.Join(parts, " "))
}

// TimestampParseError represents a header timestamp that could not be converted to an instant
type TimestampParseError struct {
	Raw     string
	Grammar GrammarID
	Err     error
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("timestamp parse error [%s] %q: %v", e.Grammar, e.Raw, e.Err)
}

func (e *TimestampParseError) Unwrap() error {
	return e.Err
}

// ParseError wraps a file-level pipeline failure with its source
type ParseError struct {
	Source string // file path or "stdin"
	Stage  string // "decode", "resolve", "parse"
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Stage, e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StorageError represents errors accessing the session store
type StorageError struct {
	Path string
	Op   string // "open", "migrate", "save", "load", "delete"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConfigError represents an invalid or unreadable configuration file
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
