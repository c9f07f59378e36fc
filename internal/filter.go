package internal

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FilterEnv is the variable set visible to --where expressions
type FilterEnv struct {
	Sender    string `expr:"sender"`
	Body      string `expr:"body"`
	Hour      int    `expr:"hour"`
	Weekday   string `expr:"weekday"`
	Period    string `expr:"period"`
	Date      string `expr:"date"` // 2006-01-02
	Words     int    `expr:"words"`
	Chars     int    `expr:"chars"`
	Emojis    int    `expr:"emojis"`
	Media     bool   `expr:"media"`
	URL       bool   `expr:"url"`
	Question  bool   `expr:"question"`
	Reactions int    `expr:"reactions"`
}

// RecordFilter is a compiled boolean expression over message records
type RecordFilter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles src; an empty source matches every record
func CompileFilter(src string) (*RecordFilter, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return &RecordFilter{}, nil
	}
	program, err := expr.Compile(src, expr.Env(FilterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter %q: %w", src, err)
	}
	return &RecordFilter{source: src, program: program}, nil
}

// String returns the expression source
func (f *RecordFilter) String() string {
	return f.source
}

// Match evaluates the filter against one record
func (f *RecordFilter) Match(r MessageRecord) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, envFor(r))
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", f.source, err)
	}
	matched, _ := out.(bool)
	return matched, nil
}

// Apply returns the matching records in their original order
func (f *RecordFilter) Apply(records []MessageRecord) ([]MessageRecord, error) {
	if f == nil || f.program == nil {
		return records, nil
	}
	out := make([]MessageRecord, 0, len(records))
	for _, r := range records {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func envFor(r MessageRecord) FilterEnv {
	return FilterEnv{
		Sender:    r.Sender,
		Body:      r.Body,
		Hour:      r.Hour,
		Weekday:   r.DayOfWeek,
		Period:    string(r.TimePeriod),
		Date:      r.Timestamp.Format("2006-01-02"),
		Words:     r.WordCount,
		Chars:     r.CharCount,
		Emojis:    r.EmojiCount,
		Media:     r.IsMedia,
		URL:       r.ContainsURL,
		Question:  r.IsQuestion,
		Reactions: len(r.Reactions),
	}
}
