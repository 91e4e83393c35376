// Package tokenizer implements the streaming structural tokenizer: a
// resumable character-level state machine that builds a structure report from
// text delivered in arbitrarily sized chunks, recovering in place from
// malformed tokens.
package tokenizer

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/jsonscope/jsonscope/pkg/internal/structure"
)

// Config tunes one tokenizer instance. The zero value gets defaults.
type Config struct {
	// MaxDepth caps the nesting level tracked individually; deeper containers
	// are counted but reported as a single truncated node.
	MaxDepth int

	// SampleLimit is the number of array elements given individual paths.
	SampleLimit int

	// StructureOnly skips retaining per-object key lists.
	StructureOnly bool

	// ErrorDensityThreshold is the fraction of recent tokens that may be
	// errors before the tokenizer declares structural collapse.
	ErrorDensityThreshold float64

	// ErrorWindow is the trailing token window over which density is
	// measured.
	ErrorWindow int
}

// Defaults for zero Config fields.
const (
	DefaultMaxDepth              = 64
	DefaultSampleLimit           = 8
	DefaultErrorDensityThreshold = 0.3
	DefaultErrorWindow           = 64
)

// minDensityTokens is the smallest sample the density check applies to, so
// short error bursts can collapse the stream before a full window accrues.
const minDensityTokens = 8

func (c Config) withDefaults() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.SampleLimit <= 0 {
		c.SampleLimit = DefaultSampleLimit
	}
	if c.ErrorDensityThreshold <= 0 {
		c.ErrorDensityThreshold = DefaultErrorDensityThreshold
	}
	if c.ErrorWindow <= 0 {
		c.ErrorWindow = DefaultErrorWindow
	}
	return c
}

type containerKind uint8

const (
	kindObject containerKind = iota
	kindArray
)

// frame is one entry of the context stack. path is where the container's own
// node was recorded ("$" for the root, "" when recording is suppressed by
// sampling); children derive their paths from it.
type frame struct {
	kind      containerKind
	path      string
	index     int
	sawValue  bool
	sawAny    bool
	expectKey bool
	haveKey   bool
	curKey    string
	suppress  bool
}

// prefix is the path prefix for members of this container.
func (f *frame) prefix() string {
	if f.path == structure.RootPath {
		return ""
	}
	return f.path
}

// Tokenizer consumes text byte by byte and assembles a structure report. All
// state lives on the instance, so input may be split across Feed calls at any
// byte boundary — including inside string literals and escape sequences —
// without changing the result.
type Tokenizer struct {
	cfg Config
	b   *structure.Builder

	stack     []frame
	deepCount int // containers open beyond MaxDepth, counted but not stacked

	inString bool
	escaped  bool

	// key capture: string content is retained only when the string can turn
	// out to be an object key.
	capturing   bool
	strBuf      []byte
	pendingKey  string
	havePending bool

	// \uXXXX decoding state, held on the instance so escapes split across
	// chunks decode the same as contiguous ones.
	uni     int  // hex digits still expected
	uniVal  rune // value accumulated so far
	uniHigh rune // high surrogate waiting for its pair, 0 when none

	inLiteral bool

	pos        int
	underflows int
	rootValues int
	collapsed  bool

	// trailing error-density window
	window []bool
	wpos   int
	werrs  int
	seen   int

	finalized bool
}

// New creates a tokenizer. Each analysis owns its own instance; there is no
// shared state between instances.
func New(cfg Config) *Tokenizer {
	cfg = cfg.withDefaults()
	return &Tokenizer{
		cfg:    cfg,
		b:      structure.NewBuilder(cfg.SampleLimit, cfg.StructureOnly),
		window: make([]bool, cfg.ErrorWindow),
	}
}

// Feed processes one chunk. It never blocks and never fails; problems are
// recorded in the report. After a structural collapse further input is
// ignored.
func (t *Tokenizer) Feed(chunk []byte) {
	for i := 0; i < len(chunk); i++ {
		if t.collapsed {
			return
		}
		t.process(chunk[i])
		t.pos++
	}
}

// Depth returns the current container nesting level.
func (t *Tokenizer) Depth() int { return len(t.stack) + t.deepCount }

// Collapsed reports whether the container stack became unreliable. The tier
// controller uses this to abandon the streaming tier.
func (t *Tokenizer) Collapsed() bool { return t.collapsed }

// Finalize closes out any still-open containers and returns the report.
// The report is marked partial when recovery was needed or input ended early.
func (t *Tokenizer) Finalize() *structure.Report {
	if t.finalized {
		panic("tokenizer: Finalize called twice")
	}
	t.finalized = true

	for i := len(t.stack) - 1; i >= 0; i-- {
		t.closeFrame(&t.stack[i], i+1)
	}

	rep := t.b.Finalize(structure.TierStreaming)
	rep.Collapsed = t.collapsed
	rep.Partial = t.collapsed || t.inString || len(t.stack) > 0 || t.deepCount > 0 || len(rep.Errors) > 0
	return rep
}

func (t *Tokenizer) process(c byte) {
	if t.inString {
		t.processString(c)
		return
	}
	if t.deepCount > 0 {
		t.processDeep(c)
		return
	}
	t.processDefault(c)
}

func (t *Tokenizer) processString(c byte) {
	switch {
	case t.uni > 0:
		t.feedHex(c)
	case t.escaped:
		t.escaped = false
		if t.capturing {
			t.appendEscape(c)
		}
	case c == '\\':
		t.escaped = true
	case c == '"':
		t.inString = false
		t.closeString()
	case t.capturing:
		t.flushSurrogate()
		t.strBuf = append(t.strBuf, c)
	}
}

// closeString handles an unescaped closing quote: a captured string becomes
// the pending key candidate, anything else is a string value.
func (t *Tokenizer) closeString() {
	if t.deepCount > 0 {
		return
	}
	t.flushSurrogate()
	if t.capturing {
		t.pendingKey = string(t.strBuf)
		t.havePending = true
		t.capturing = false
		t.strBuf = t.strBuf[:0]
		return
	}
	if !t.enterValue('"') {
		return
	}
	if path := t.valuePath(); path != "" {
		t.b.Record(path, structure.TypeString, t.scalarDepth())
	}
	t.markValueSeen()
}

// processDeep keeps depth balance and counters for containers nested beyond
// MaxDepth without growing the stack or recording paths.
func (t *Tokenizer) processDeep(c byte) {
	switch c {
	case '"':
		t.inString = true
		t.capturing = false
		t.noteToken(false)
	case '{':
		t.b.CountContainer(structure.TypeObject, t.Depth()+1)
		t.deepCount++
		t.noteToken(false)
	case '[':
		t.b.CountContainer(structure.TypeArray, t.Depth()+1)
		t.deepCount++
		t.noteToken(false)
	case '}', ']':
		t.deepCount--
		t.noteToken(false)
	case ':', ',':
		t.noteToken(false)
	}
}

func (t *Tokenizer) processDefault(c byte) {
	switch c {
	case '"':
		t.endLiteral()
		t.havePending = false
		t.inString = true
		t.capturing = t.keyPosition()
		t.noteToken(false)
	case '{':
		t.openContainer(c, kindObject, structure.TypeObject)
	case '[':
		t.openContainer(c, kindArray, structure.TypeArray)
	case '}':
		t.closeContainer(c, kindObject)
	case ']':
		t.closeContainer(c, kindArray)
	case ':':
		t.handleColon(c)
	case ',':
		t.handleComma(c)
	case ' ', '\t', '\n', '\r':
		t.endLiteral()
	default:
		t.handleLiteral(c)
	}
}

// keyPosition reports whether a string opening now would be an object key.
func (t *Tokenizer) keyPosition() bool {
	if len(t.stack) == 0 {
		return false
	}
	top := &t.stack[len(t.stack)-1]
	return top.kind == kindObject && top.expectKey && !top.suppress
}

func (t *Tokenizer) openContainer(c byte, kind containerKind, nt structure.NodeType) {
	t.endLiteral()
	t.havePending = false
	if !t.enterValue(c) {
		return
	}

	newDepth := t.Depth() + 1
	t.b.CountContainer(nt, newDepth)
	t.noteToken(false)

	if t.Depth() >= t.cfg.MaxDepth {
		// Beyond the cap: one truncated node marks the cutoff, then only
		// balance is tracked.
		if path := t.valuePath(); path != "" {
			t.b.Record(path, structure.TypeTruncated, newDepth)
		}
		t.markValueSeen()
		t.deepCount++
		return
	}

	path := t.valuePath()
	t.markValueSeen()
	if path != "" {
		t.b.Record(path, nt, newDepth)
	}
	t.stack = append(t.stack, frame{
		kind:      kind,
		path:      path,
		expectKey: kind == kindObject,
		suppress:  path == "",
	})
}

func (t *Tokenizer) closeContainer(c byte, want containerKind) {
	t.endLiteral()
	t.havePending = false

	if len(t.stack) == 0 {
		t.recordError(c, "unexpected closing bracket with no open container")
		t.underflows++
		if t.underflows > 1 {
			t.collapsed = true
		}
		return
	}

	top := &t.stack[len(t.stack)-1]
	switch {
	case top.kind != want:
		t.recordError(c, "mismatched closing bracket")
	case top.sawAny && !top.sawValue:
		t.recordError(c, "trailing separator before closing bracket")
	default:
		t.noteToken(false)
	}
	t.closeFrame(top, len(t.stack))
	t.stack = t.stack[:len(t.stack)-1]
	t.markValueSeen()
}

// closeFrame finishes an array frame's bookkeeping: final length and, when
// the sampling limit was exceeded, the synthetic truncation node. depth is
// the frame's own nesting level.
func (t *Tokenizer) closeFrame(f *frame, depth int) {
	if f.kind != kindArray || f.suppress {
		return
	}
	n := f.index
	if f.sawValue {
		n++
	}
	t.b.SetArrayLength(f.path, n)
	if n > t.b.SampleLimit() {
		t.b.Truncation(f.path, depth, n)
	}
}

func (t *Tokenizer) handleColon(c byte) {
	t.endLiteral()

	if len(t.stack) == 0 {
		t.recordError(c, "unexpected ':' outside any container")
		return
	}
	top := &t.stack[len(t.stack)-1]
	if top.kind != kindObject {
		t.recordError(c, "unexpected ':' inside array")
		return
	}
	if top.suppress {
		top.expectKey = false
		t.noteToken(false)
		return
	}
	if !t.havePending {
		t.recordError(c, "':' without preceding key")
		return
	}
	top.curKey = t.pendingKey
	top.haveKey = true
	top.expectKey = false
	t.havePending = false
	t.b.AddKey(top.path, top.curKey)
	t.noteToken(false)
}

func (t *Tokenizer) handleComma(c byte) {
	t.endLiteral()
	t.havePending = false

	if len(t.stack) == 0 {
		t.recordError(c, "unexpected ',' outside any container")
		return
	}
	top := &t.stack[len(t.stack)-1]
	if !top.sawValue {
		t.recordError(c, "unexpected ',' with no preceding value")
	} else {
		t.noteToken(false)
	}
	top.sawValue = false
	if top.kind == kindObject {
		top.expectKey = true
		top.haveKey = false
		top.curKey = ""
	} else {
		top.index++
	}
}

// handleLiteral starts or continues a bare literal run (number, boolean,
// null, or garbage). Only the first byte classifies and records it, so runs
// split across chunks are recorded once.
func (t *Tokenizer) handleLiteral(c byte) {
	if t.inLiteral {
		return
	}
	t.inLiteral = true
	t.havePending = false
	if !t.enterValue(c) {
		return
	}

	nt := classifyLiteral(c)
	if nt == "" {
		t.recordError(c, "unexpected character")
		return
	}
	t.noteToken(false)
	if path := t.valuePath(); path != "" {
		t.b.Record(path, nt, t.scalarDepth())
	}
	t.markValueSeen()
}

func classifyLiteral(c byte) structure.NodeType {
	switch {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return structure.TypeNumber
	case c == 't' || c == 'f':
		return structure.TypeBoolean
	case c == 'n':
		return structure.TypeNull
	default:
		return ""
	}
}

func (t *Tokenizer) endLiteral() { t.inLiteral = false }

// enterValue accounts for a value starting now. A JSON document has exactly
// one top-level value; a second one means the input is not a single document
// and the container stack cannot be trusted, so the tier falls over to
// fragment recovery.
func (t *Tokenizer) enterValue(c byte) bool {
	if len(t.stack) > 0 || t.deepCount > 0 {
		return true
	}
	t.rootValues++
	if t.rootValues > 1 {
		t.recordError(c, "unexpected content after top-level value")
		t.collapsed = true
		return false
	}
	return true
}

// valuePath returns the path a value occurring now would be recorded at, or
// "" when recording is suppressed (sampled-out array tail, missing key after
// an error, suppressed parent).
func (t *Tokenizer) valuePath() string {
	if len(t.stack) == 0 {
		return structure.RootPath
	}
	top := &t.stack[len(t.stack)-1]
	if top.suppress {
		return ""
	}
	switch top.kind {
	case kindObject:
		if !top.haveKey {
			return ""
		}
		return structure.ChildKey(top.prefix(), top.curKey)
	default:
		if !t.b.TrackIndex(top.index) {
			return ""
		}
		return structure.ChildIndex(top.prefix(), top.index)
	}
}

// scalarDepth is the nesting level scalars are reported at: that of their
// enclosing container.
func (t *Tokenizer) scalarDepth() int { return t.Depth() }

func (t *Tokenizer) markValueSeen() {
	if len(t.stack) == 0 {
		return
	}
	top := &t.stack[len(t.stack)-1]
	top.sawValue = true
	top.sawAny = true
}

func (t *Tokenizer) recordError(c byte, msg string) {
	t.b.RecordError(t.pos, c, msg)
	t.noteToken(true)
}

// noteToken advances the trailing error-density window and flags collapse
// when too many of the recent tokens were errors.
func (t *Tokenizer) noteToken(isErr bool) {
	t.b.CountTokens(1)

	if t.window[t.wpos] {
		t.werrs--
	}
	t.window[t.wpos] = isErr
	if isErr {
		t.werrs++
	}
	t.wpos = (t.wpos + 1) % len(t.window)
	if t.seen < len(t.window) {
		t.seen++
	}
	if t.seen < minDensityTokens && t.seen < len(t.window) {
		return
	}
	if float64(t.werrs)/float64(t.seen) > t.cfg.ErrorDensityThreshold {
		t.collapsed = true
	}
}

// appendEscape appends the decoded form of an escape sequence's second byte.
// A 'u' starts a four-digit unicode escape; unknown escapes are kept raw.
func (t *Tokenizer) appendEscape(c byte) {
	if c == 'u' {
		t.uni = 4
		t.uniVal = 0
		return
	}
	t.flushSurrogate()
	switch c {
	case 'n':
		t.strBuf = append(t.strBuf, '\n')
	case 't':
		t.strBuf = append(t.strBuf, '\t')
	case 'r':
		t.strBuf = append(t.strBuf, '\r')
	case 'b':
		t.strBuf = append(t.strBuf, '\b')
	case 'f':
		t.strBuf = append(t.strBuf, '\f')
	case '"', '\\', '/':
		t.strBuf = append(t.strBuf, c)
	default:
		t.strBuf = append(t.strBuf, '\\', c)
	}
}

// feedHex consumes one hex digit of a \uXXXX escape. Surrogate halves wait for
// their partner; anything unpairable decodes to the replacement character,
// matching encoding/json and jsonparser so paths agree across tiers.
func (t *Tokenizer) feedHex(c byte) {
	d := hexVal(c)
	if d < 0 {
		t.uni = 0
		t.flushSurrogate()
		t.strBuf = utf8.AppendRune(t.strBuf, utf8.RuneError)
		t.processString(c)
		return
	}
	t.uniVal = t.uniVal<<4 | rune(d)
	t.uni--
	if t.uni > 0 {
		return
	}
	r := t.uniVal
	switch {
	case r >= 0xD800 && r <= 0xDBFF:
		t.flushSurrogate()
		t.uniHigh = r
	case r >= 0xDC00 && r <= 0xDFFF:
		if t.uniHigh != 0 {
			t.strBuf = utf8.AppendRune(t.strBuf, utf16.DecodeRune(t.uniHigh, r))
			t.uniHigh = 0
		} else {
			t.strBuf = utf8.AppendRune(t.strBuf, utf8.RuneError)
		}
	default:
		t.flushSurrogate()
		t.strBuf = utf8.AppendRune(t.strBuf, r)
	}
}

// flushSurrogate resolves a dangling high surrogate as the replacement
// character once it is clear no low surrogate follows.
func (t *Tokenizer) flushSurrogate() {
	if t.uniHigh != 0 {
		t.strBuf = utf8.AppendRune(t.strBuf, utf8.RuneError)
		t.uniHigh = 0
	}
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}
