package structure

import "sort"

// Builder assembles a Report incrementally. All tiers funnel their
// observations through one Builder so the sampling policy and merge rules are
// identical no matter which tier produced the report.
//
// Merge rule: the first record at a path wins its type and depth; later
// records at the same path (duplicate object keys, re-entered siblings) only
// widen the key set or the observed array length.
type Builder struct {
	report        *Report
	sampleLimit   int
	structureOnly bool
}

// NewBuilder creates a builder with the given array sampling limit. When
// structureOnly is set, per-object key lists are not retained.
func NewBuilder(sampleLimit int, structureOnly bool) *Builder {
	return &Builder{
		report: &Report{
			Nodes:  make(map[string]*Node),
			Errors: []ParseError{},
		},
		sampleLimit:   sampleLimit,
		structureOnly: structureOnly,
	}
}

// SampleLimit returns the number of array elements tracked individually.
func (b *Builder) SampleLimit() int { return b.sampleLimit }

// TrackIndex reports whether element i of an array should get its own path.
func (b *Builder) TrackIndex(i int) bool { return i < b.sampleLimit }

// CountContainer updates the aggregate counters for one container entry.
// It is separate from Record so containers beyond the depth cap still count
// toward objectCount/arrayCount and maxDepth.
func (b *Builder) CountContainer(t NodeType, depth int) {
	switch t {
	case TypeObject:
		b.report.Stats.ObjectCount++
	case TypeArray:
		b.report.Stats.ArrayCount++
	}
	if depth > b.report.Stats.MaxDepth {
		b.report.Stats.MaxDepth = depth
	}
}

// Record merges a node observation at path. Empty paths (suppressed by
// sampling or the depth cap) are ignored.
func (b *Builder) Record(path string, t NodeType, depth int) {
	if path == "" {
		return
	}
	if _, ok := b.report.Nodes[path]; ok {
		return
	}
	b.report.Nodes[path] = &Node{Type: t, Depth: depth}
}

// AddKey adds an observed key to the object node at path.
func (b *Builder) AddKey(path, key string) {
	if b.structureOnly || path == "" {
		return
	}
	node, ok := b.report.Nodes[path]
	if !ok {
		return
	}
	if node.keySet == nil {
		node.keySet = make(map[string]struct{})
	}
	node.keySet[key] = struct{}{}
}

// SetArrayLength records the number of elements visited in the array at path.
func (b *Builder) SetArrayLength(path string, n int) {
	node, ok := b.report.Nodes[path]
	if !ok {
		return
	}
	if n > node.Length {
		node.Length = n
	}
}

// Truncation records the synthetic node marking that only the first
// SampleLimit elements of the array at path were tracked individually.
func (b *Builder) Truncation(path string, depth, total int) {
	if path == "" {
		return
	}
	tpath := TruncationPath(path)
	b.report.Nodes[tpath] = &Node{
		Type:      TypeTruncated,
		Depth:     depth,
		Length:    total,
		Truncated: true,
	}
	if node, ok := b.report.Nodes[path]; ok {
		node.Truncated = true
	}
}

// RecordError appends a parse error. Append-only: structure collected so far
// is never discarded.
func (b *Builder) RecordError(pos int, ch byte, msg string) {
	b.report.Errors = append(b.report.Errors, ParseError{
		Position:  pos,
		Character: string(ch),
		Message:   msg,
	})
}

// CountTokens adds n to the structural token counter.
func (b *Builder) CountTokens(n int) { b.report.Stats.Tokens += n }

// Finalize freezes the report: key sets become sorted slices and the
// producing tier is stamped. The builder must not be used afterwards.
func (b *Builder) Finalize(tier Tier) *Report {
	for _, node := range b.report.Nodes {
		if len(node.keySet) == 0 {
			continue
		}
		node.Keys = make([]string, 0, len(node.keySet))
		for k := range node.keySet {
			node.Keys = append(node.Keys, k)
		}
		sort.Strings(node.Keys)
		node.keySet = nil
	}
	b.report.Tier = tier
	return b.report
}
