package jsonscope

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/buger/jsonparser"

	"github.com/jsonscope/jsonscope/pkg/internal/structure"
)

var (
	errEmptyDocument   = errors.New("empty document")
	errInvalidDocument = errors.New("document is not valid JSON")
)

// workItem is one pending value in the iterative walk. depth is the nesting
// level the value would occupy as a container; scalars are reported one level
// up, at their enclosing container's depth.
type workItem struct {
	data  []byte
	vt    jsonparser.ValueType
	path  string
	depth int
}

// standardWalk is the whole-document tier: validate once, then map structure
// with an explicit work list so deeply nested documents cannot exhaust the
// call stack. Sampling and depth-cap policies are shared with the streaming
// tier through the Builder.
func standardWalk(data []byte, cfg config) (*structure.Report, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errEmptyDocument
	}
	if !json.Valid(trimmed) {
		return nil, errInvalidDocument
	}

	w := &walker{
		b:   structure.NewBuilder(cfg.sampleLimit, cfg.structureOnly),
		cfg: cfg,
	}
	w.work = append(w.work, workItem{trimmed, rootValueType(trimmed), structure.RootPath, 1})
	for len(w.work) > 0 {
		it := w.work[len(w.work)-1]
		w.work = w.work[:len(w.work)-1]
		w.visit(it)
	}

	rep := w.b.Finalize(structure.TierStandard)
	return rep, nil
}

type walker struct {
	b    *structure.Builder
	cfg  config
	work []workItem
}

func (w *walker) visit(it workItem) {
	switch it.vt {
	case jsonparser.Object:
		w.b.CountContainer(structure.TypeObject, it.depth)
		w.b.Record(it.path, structure.TypeObject, it.depth)
		w.b.CountTokens(1)
		prefix := it.path
		if prefix == structure.RootPath {
			prefix = ""
		}
		_ = jsonparser.ObjectEach(it.data, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
			k := string(key)
			w.b.AddKey(it.path, k)
			w.b.CountTokens(1)
			w.queueChild(value, vt, structure.ChildKey(prefix, k), it.depth+1, true)
			return nil
		})
	case jsonparser.Array:
		w.b.CountContainer(structure.TypeArray, it.depth)
		w.b.Record(it.path, structure.TypeArray, it.depth)
		w.b.CountTokens(1)
		prefix := it.path
		if prefix == structure.RootPath {
			prefix = ""
		}
		n := 0
		_, _ = jsonparser.ArrayEach(it.data, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
			tracked := w.b.TrackIndex(n)
			w.queueChild(value, vt, structure.ChildIndex(prefix, n), it.depth+1, tracked)
			n++
		})
		w.b.SetArrayLength(it.path, n)
		if n > w.b.SampleLimit() {
			w.b.Truncation(it.path, it.depth, n)
		}
	default:
		w.b.Record(it.path, nodeType(it.vt), it.depth-1)
		w.b.CountTokens(1)
	}
}

// queueChild schedules a child value, applying the depth cap and the array
// sampling policy. Untracked containers are still scanned so the container
// counters and maxDepth match what the streaming tier would report.
func (w *walker) queueChild(value []byte, vt jsonparser.ValueType, path string, depth int, tracked bool) {
	isContainer := vt == jsonparser.Object || vt == jsonparser.Array
	if !isContainer {
		if tracked {
			w.b.Record(path, nodeType(vt), depth-1)
		}
		w.b.CountTokens(1)
		return
	}
	if depth > w.cfg.maxDepth {
		if tracked {
			w.b.Record(path, structure.TypeTruncated, depth)
		}
		w.countUntracked(value, depth)
		return
	}
	if !tracked {
		w.countUntracked(value, depth)
		return
	}
	w.work = append(w.work, workItem{value, vt, path, depth})
}

// countUntracked scans a container's raw bytes, outside string literals, so
// every nested object and array still contributes to objectCount, arrayCount
// and maxDepth even when no paths are recorded beneath it.
func (w *walker) countUntracked(data []byte, selfDepth int) {
	depth := selfDepth - 1
	inString := false
	escaped := false
	for i := 0; i < len(data); i++ {
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
		case '{':
			depth++
			w.b.CountContainer(structure.TypeObject, depth)
			w.b.CountTokens(1)
		case '[':
			depth++
			w.b.CountContainer(structure.TypeArray, depth)
			w.b.CountTokens(1)
		case '}', ']':
			depth--
			w.b.CountTokens(1)
		}
	}
}

func rootValueType(data []byte) jsonparser.ValueType {
	switch data[0] {
	case '{':
		return jsonparser.Object
	case '[':
		return jsonparser.Array
	case '"':
		return jsonparser.String
	case 't', 'f':
		return jsonparser.Boolean
	case 'n':
		return jsonparser.Null
	default:
		return jsonparser.Number
	}
}

func nodeType(vt jsonparser.ValueType) structure.NodeType {
	switch vt {
	case jsonparser.Object:
		return structure.TypeObject
	case jsonparser.Array:
		return structure.TypeArray
	case jsonparser.String:
		return structure.TypeString
	case jsonparser.Number:
		return structure.TypeNumber
	case jsonparser.Boolean:
		return structure.TypeBoolean
	default:
		return structure.TypeNull
	}
}
