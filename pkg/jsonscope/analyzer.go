// Package jsonscope extracts a structural description of a JSON document —
// the nesting of objects and arrays, the keys and paths present, and basic
// shape statistics — without requiring the document to parse successfully or
// fit comfortably in memory.
//
// Analysis is tiered: a whole-document parse for well-formed input, a
// streaming character-level tokenizer with error recovery for large or
// damaged input, and a fragment-recovery scan as the terminal fallback.
// Every tier produces the same Report shape; which one ran is recorded in
// Report.Tier.
package jsonscope

import (
	"fmt"
	"io"
	"os"

	"github.com/jsonscope/jsonscope/pkg/internal/fragment"
	"github.com/jsonscope/jsonscope/pkg/internal/structure"
	"github.com/jsonscope/jsonscope/pkg/internal/textdec"
	"github.com/jsonscope/jsonscope/pkg/internal/tokenizer"
)

// Analyzer is the tier controller. One Analyzer may be reused across
// documents and goroutines; each analysis owns its own state.
type Analyzer struct {
	cfg config
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	return &Analyzer{cfg: newConfig(opts)}
}

// AnalyzeBytes analyzes an in-memory document. It always returns a report:
// internal tier failures trigger the next tier, never the caller.
func AnalyzeBytes(data []byte, opts ...Option) *Report {
	return New(opts...).AnalyzeBytes(data)
}

// AnalyzeBytes analyzes an in-memory document. It always returns a report.
func (a *Analyzer) AnalyzeBytes(data []byte) *Report {
	data = textdec.Decode(data)

	if int64(len(data)) <= a.cfg.maxStandardSize {
		if rep, err := a.tryStandard(data); err == nil {
			return rep
		} else {
			a.cfg.logger.Debug().Err(err).Msg("standard parse failed, falling back to streaming tokenizer")
		}
	}

	rep := a.stream(data)
	if streamUsable(rep) {
		return rep
	}
	a.cfg.logger.Debug().
		Int("errors", len(rep.Errors)).
		Msg("streaming tokenizer gave up, falling back to fragment recovery")
	return a.recoverFragments(data)
}

// streamUsable decides whether a streaming-tier report stands on its own. A
// collapsed stack is the explicit give-up signal; a report that recorded
// errors but not a single node describes nothing and is treated the same way.
func streamUsable(rep *Report) bool {
	if rep.Collapsed {
		return false
	}
	return len(rep.Errors) == 0 || len(rep.Nodes) > 0
}

// Analyze reads a document from r and analyzes it. sizeHint (bytes, -1 when
// unknown) only chooses whether the whole-document tier is attempted; it
// never changes a tier's result. The returned error is non-nil only for I/O
// failures — unreadable input is the single hard failure of the controller.
func (a *Analyzer) Analyze(r io.Reader, sizeHint int64) (*Report, error) {
	if sizeHint >= 0 && sizeHint <= a.cfg.maxStandardSize {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("jsonscope: reading source: %w", err)
		}
		return a.AnalyzeBytes(data), nil
	}

	tok := tokenizer.New(a.cfg.tokenizerConfig())
	buf := make([]byte, a.cfg.chunkSize)

	// A bounded prefix is retained so fragment recovery has something to work
	// on if the tokenizer collapses mid-stream.
	var retained []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			tok.Feed(chunk)
			if room := a.cfg.retainLimit - len(retained); room > 0 {
				if len(chunk) > room {
					chunk = chunk[:room]
				}
				retained = append(retained, chunk...)
			}
			if tok.Collapsed() {
				break
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("jsonscope: reading source: %w", err)
		}
	}

	rep := tok.Finalize()
	if !streamUsable(rep) {
		a.cfg.logger.Debug().Msg("streaming tokenizer gave up, falling back to fragment recovery")
		return a.recoverFragments(retained), nil
	}
	return rep, nil
}

// AnalyzeFile opens, decodes and analyzes the file at path. Only failure to
// open or read the file is returned as an error.
func (a *Analyzer) AnalyzeFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("jsonscope: opening source: %w", err)
	}
	defer f.Close()

	hint := int64(-1)
	if fi, serr := f.Stat(); serr == nil {
		hint = fi.Size()
	}
	return a.Analyze(textdec.NewReader(f), hint)
}

// tryStandard runs the whole-document tier. Panics inside the walk are
// converted to errors so nothing escapes the controller boundary.
func (a *Analyzer) tryStandard(data []byte) (rep *Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			rep = nil
			err = fmt.Errorf("standard walk panicked: %v", r)
		}
	}()
	return standardWalk(data, a.cfg)
}

// stream feeds data to a fresh tokenizer in configured chunk sizes.
func (a *Analyzer) stream(data []byte) *Report {
	tok := tokenizer.New(a.cfg.tokenizerConfig())
	for off := 0; off < len(data); off += a.cfg.chunkSize {
		end := off + a.cfg.chunkSize
		if end > len(data) {
			end = len(data)
		}
		tok.Feed(data[off:end])
		if tok.Collapsed() {
			break
		}
	}
	return tok.Finalize()
}

// recoverFragments is the terminal tier; it always produces a report.
func (a *Analyzer) recoverFragments(data []byte) *Report {
	res := fragment.Recover(data)

	if res.Fixed {
		if rep, err := a.tryStandard(res.Cleaned); err == nil {
			rep.Tier = TierPartial
			rep.Fixed = true
			rep.Partial = true
			return rep
		}
	}

	b := structure.NewBuilder(a.cfg.sampleLimit, a.cfg.structureOnly)
	for _, f := range res.Fragments {
		b.CountContainer(f.Type, 0)
	}
	rep := b.Finalize(TierPartial)
	rep.Fragments = res.Fragments
	rep.Corrupted = true
	rep.Partial = true
	return rep
}
