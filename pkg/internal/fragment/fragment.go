// Package fragment implements the terminal recovery tier: best-effort
// extraction of independently valid JSON values from content too damaged for
// the streaming tokenizer to track consistently.
package fragment

import (
	"bytes"
	"encoding/json"

	"github.com/jsonscope/jsonscope/pkg/internal/structure"
)

// Result is the outcome of a recovery attempt. When Fixed is set, a small
// corruption fix made the whole document parse and Cleaned holds the fixed
// text; Fragments is empty in that case. Otherwise Fragments holds whatever
// independently parseable values were found (possibly none).
type Result struct {
	Fixed     bool
	Cleaned   []byte
	Fragments []structure.Fragment
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Recover never fails: binary garbage yields a Result with zero fragments.
func Recover(data []byte) *Result {
	cleaned := applyFixes(data)
	if json.Valid(bytes.TrimSpace(cleaned)) && len(bytes.TrimSpace(cleaned)) > 0 {
		return &Result{Fixed: true, Cleaned: cleaned}
	}
	return &Result{Fragments: scan(data)}
}

// applyFixes handles the common corruptions worth one whole-document retry:
// a leading byte-order mark and trailing commas immediately before a closing
// bracket.
func applyFixes(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)

	out := make([]byte, 0, len(data))
	inString := false
	escaped := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			out = append(out, c)
		case ',':
			if closerFollows(data, i+1) {
				continue // trailing comma, drop it
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

// closerFollows reports whether the next non-whitespace byte at or after i
// closes a container.
func closerFollows(data []byte, i int) bool {
	for ; i < len(data); i++ {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

// scan walks the content looking for balanced bracket-delimited spans and
// keeps the ones that parse on their own. When an outer span fails to parse,
// scanning resumes one byte further in so inner containers get their chance.
func scan(data []byte) []structure.Fragment {
	fragments := []structure.Fragment{}
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c != '{' && c != '[' {
			continue
		}
		end, ok := matchSpan(data, i)
		if !ok {
			continue
		}
		candidate := data[i : end+1]
		var value any
		if err := json.Unmarshal(candidate, &value); err != nil {
			continue
		}
		ftype := structure.TypeObject
		if c == '[' {
			ftype = structure.TypeArray
		}
		fragments = append(fragments, structure.Fragment{
			Type:     ftype,
			Position: i,
			Content:  string(candidate),
			Value:    value,
		})
		i = end
	}
	return fragments
}

// matchSpan finds the closer matching the opener at start, honoring string
// literals and escapes. Returns ok=false when the span never balances or a
// mismatched closer cuts it short.
func matchSpan(data []byte, start int) (int, bool) {
	var stack []byte
	inString := false
	escaped := false
	for i := start; i < len(data); i++ {
		c := data[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 {
				return 0, false
			}
			open := stack[len(stack)-1]
			if (open == '{') != (c == '}') {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
