package jsonscope

import (
	"sync"

	"github.com/jsonscope/jsonscope/pkg/internal/tokenizer"
)

// Tokenizer provides explicit, resumable streaming control for callers that
// drive chunking themselves instead of using Analyze. Feed chunks of any
// size — down to a single byte — in arrival order; the report is identical
// regardless of how the input is split.
//
// Example:
//
//	tok := jsonscope.NewTokenizer()
//	tok.Feed([]byte(`{"name": "Jo`))
//	tok.Feed([]byte(`hn", "tags": [1, 2]}`))
//	report := tok.Finalize()
type Tokenizer struct {
	mu    sync.Mutex
	inner *tokenizer.Tokenizer
	done  bool
	rep   *Report
}

// NewTokenizer creates a resumable streaming tokenizer. Instances are
// single-use: after Finalize, create a new one for the next document.
func NewTokenizer(opts ...Option) *Tokenizer {
	cfg := newConfig(opts)
	return &Tokenizer{inner: tokenizer.New(cfg.tokenizerConfig())}
}

// Feed processes the next chunk. It never fails; malformed input is recorded
// in the eventual report. Chunks fed after Finalize are ignored.
func (t *Tokenizer) Feed(chunk []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.inner.Feed(chunk)
}

// Collapsed reports whether the container stack became unreliable; callers
// may stop feeding and fall back to fragment recovery.
func (t *Tokenizer) Collapsed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inner.Collapsed()
}

// Depth returns the current container nesting level. Zero after a complete
// well-formed document.
func (t *Tokenizer) Depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inner.Depth()
}

// Finalize closes the stream and returns the report. A partially fed
// document still yields a valid report, marked partial. Safe to call more
// than once; later calls return the same report.
func (t *Tokenizer) Finalize() *Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.done {
		t.rep = t.inner.Finalize()
		t.done = true
	}
	return t.rep
}
