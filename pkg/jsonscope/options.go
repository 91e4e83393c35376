package jsonscope

import (
	"github.com/rs/zerolog"

	"github.com/jsonscope/jsonscope/pkg/internal/tokenizer"
)

// Option configures an Analyzer or Tokenizer.
type Option func(*config)

type config struct {
	chunkSize             int
	maxDepth              int
	sampleLimit           int
	structureOnly         bool
	errorDensityThreshold float64
	errorWindow           int
	maxStandardSize       int64
	retainLimit           int
	logger                zerolog.Logger
}

// Defaults for unset options.
const (
	DefaultChunkSize       = 10 << 20 // I/O granularity only; never affects results
	DefaultMaxStandardSize = 64 << 20 // largest document the standard tier will buffer
	DefaultRetainLimit     = 64 << 20 // content kept for fragment fallback when streaming
)

func newConfig(opts []Option) config {
	cfg := config{
		chunkSize:             DefaultChunkSize,
		maxDepth:              tokenizer.DefaultMaxDepth,
		sampleLimit:           tokenizer.DefaultSampleLimit,
		errorDensityThreshold: tokenizer.DefaultErrorDensityThreshold,
		errorWindow:           tokenizer.DefaultErrorWindow,
		maxStandardSize:       DefaultMaxStandardSize,
		retainLimit:           DefaultRetainLimit,
		logger:                zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.chunkSize <= 0 {
		cfg.chunkSize = DefaultChunkSize
	}
	return cfg
}

func (c config) tokenizerConfig() tokenizer.Config {
	return tokenizer.Config{
		MaxDepth:              c.maxDepth,
		SampleLimit:           c.sampleLimit,
		StructureOnly:         c.structureOnly,
		ErrorDensityThreshold: c.errorDensityThreshold,
		ErrorWindow:           c.errorWindow,
	}
}

// WithChunkSize sets the size of the pieces content is fed to the streaming
// tokenizer in. Chunk size affects I/O granularity only, never the report.
func WithChunkSize(n int) Option {
	return func(c *config) { c.chunkSize = n }
}

// WithMaxDepth caps the nesting depth tracked individually; deeper levels are
// reported as a single truncated node.
func WithMaxDepth(n int) Option {
	return func(c *config) { c.maxDepth = n }
}

// WithArraySampleLimit sets how many elements of any array get individual
// paths. Beyond the limit a synthetic node records the true total length.
func WithArraySampleLimit(n int) Option {
	return func(c *config) { c.sampleLimit = n }
}

// WithStructureOnly skips retaining per-object key lists, keeping only shape
// and statistics.
func WithStructureOnly() Option {
	return func(c *config) { c.structureOnly = true }
}

// WithErrorDensityThreshold sets the fraction of recent tokens that may be
// errors before the streaming tier declares structural collapse.
func WithErrorDensityThreshold(f float64) Option {
	return func(c *config) { c.errorDensityThreshold = f }
}

// WithStandardSizeLimit sets the largest document the whole-document tier
// will attempt; larger sources go straight to streaming.
func WithStandardSizeLimit(n int64) Option {
	return func(c *config) { c.maxStandardSize = n }
}

// WithLogger enables debug logging of tier transitions. The analyzer is
// silent by default.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}
