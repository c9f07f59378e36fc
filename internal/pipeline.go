package internal

import (
	"context"
	"fmt"
	"os"
	"time"
)

// ParseResult is the outcome of parsing one chat export
type ParseResult struct {
	Records     []MessageRecord `json:"records"`
	Format      *ResolvedFormat `json:"format"`
	Encoding    Encoding        `json:"encoding"`
	ContentHash string          `json:"content_hash"`
	Stats       ParseStats      `json:"stats"`
}

// Pipeline runs decode, resolve, parse, normalize and assemble for one input at a time
type Pipeline struct {
	resolver *FormatResolver
	metrics  *Metrics
	onParse  func(raw string)
	onFile   func(FileResult)
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithMetrics records every parse on m
func WithMetrics(m *Metrics) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithParseHook installs a callback invoked on every timestamp cache miss
func WithParseHook(fn func(raw string)) PipelineOption {
	return func(p *Pipeline) {
		p.onParse = fn
	}
}

// WithFileDone installs a callback invoked as each file of ParseFiles finishes.
// It runs on pool goroutines.
func WithFileDone(fn func(FileResult)) PipelineOption {
	return func(p *Pipeline) {
		p.onFile = fn
	}
}

// NewPipeline creates a pipeline with the default resolver
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{resolver: NewFormatResolver()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse turns raw export bytes into ordered message records.
// Identical input always yields identical records.
func Parse(raw []byte) (*ParseResult, error) {
	return NewPipeline().Parse(raw)
}

// Parse runs all stages on raw. Decode and format failures abort the file;
// bad timestamps and noise lines are counted in the result's stats.
func (p *Pipeline) Parse(raw []byte) (*ParseResult, error) {
	start := time.Now()

	text, enc, err := ResolveEncoding(raw)
	if err != nil {
		p.metrics.ObserveFailure(err)
		return nil, err
	}

	format, err := p.resolver.Resolve(text)
	if err != nil {
		p.metrics.ObserveFailure(err)
		return nil, err
	}

	parser := NewLogParser(format)
	rawRecords, err := parser.Parse(text)
	if err != nil {
		p.metrics.ObserveFailure(err)
		return nil, err
	}

	// the normalizer cache lives only for this run
	normalizer := NewTimestampNormalizer(format)
	normalizer.OnParse = p.onParse
	assembler := NewRecordAssembler(normalizer)
	records := assembler.Assemble(rawRecords)

	stats := parser.Stats()
	stats.DroppedRecords = assembler.Dropped()
	stats.TimestampParses = normalizer.Parses()
	stats.CacheHits = normalizer.CacheHits()
	if stats.DroppedRecords > 0 {
		LogWarn("Dropped %d record(s) with unparseable timestamps (last: %v)", stats.DroppedRecords, assembler.LastError())
	}

	res := &ParseResult{
		Records:     records,
		Format:      format,
		Encoding:    enc,
		ContentHash: HashContent(raw),
		Stats:       stats,
	}
	p.metrics.ObserveResult(res, time.Since(start))
	LogDebug("Parsed %d record(s) as %s in %s", len(records), format.Grammar, time.Since(start))
	return res, nil
}

// FileResult pairs an input path with its parse outcome
type FileResult struct {
	Path   string
	Result *ParseResult
	Err    error
}

// ParseFiles parses independent files on a fixed-size pool.
// Per-file failures are reported in the result; results keep input order.
func (p *Pipeline) ParseFiles(ctx context.Context, paths []string, workers int) ([]FileResult, error) {
	return RunPool(ctx, workers, len(paths), func(ctx context.Context, i int) (FileResult, error) {
		if err := ctx.Err(); err != nil {
			return FileResult{}, err
		}
		path := paths[i]
		res, err := p.ParseFile(path)
		fr := FileResult{Path: path, Result: res, Err: err}
		if p.onFile != nil {
			p.onFile(fr)
		}
		return fr, nil
	})
}

// ParseFile reads and parses one file, wrapping failures with their source
func (p *Pipeline) ParseFile(path string) (*ParseResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		p.metrics.ObserveFailure(err)
		return nil, &ParseError{Source: path, Stage: "read", Err: err}
	}
	return p.ParseSource(path, raw)
}

// ParseSource parses raw, wrapping failures with source and the failing stage
func (p *Pipeline) ParseSource(source string, raw []byte) (*ParseResult, error) {
	res, err := p.Parse(raw)
	if err != nil {
		return nil, &ParseError{Source: source, Stage: stageOf(err), Err: err}
	}
	return res, nil
}

func stageOf(err error) string {
	switch FailureKind(err) {
	case "decode":
		return "decode"
	case "format":
		return "resolve"
	default:
		return "parse"
	}
}

// Summary renders the completeness line callers are expected to report
func (r *ParseResult) Summary() string {
	return fmt.Sprintf("%d message(s), %d skipped line(s), %d system message(s), %d dropped record(s)",
		len(r.Records), r.Stats.SkippedLines, r.Stats.SystemMessages, r.Stats.DroppedRecords)
}
