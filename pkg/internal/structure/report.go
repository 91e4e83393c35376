package structure

import "sort"

// RootPath addresses the document's top-level value.
const RootPath = "$"

// Report is the sole artifact crossing the boundary to downstream analyzers.
// Exactly one tier produces any given report; all tiers share this shape so
// reports stay comparable regardless of which tier survived.
type Report struct {
	Nodes  map[string]*Node `json:"nodes"`
	Stats  Stats            `json:"stats"`
	Errors []ParseError     `json:"errors"`

	// Fragments is populated only by the fragment-recovery tier, in which
	// case Nodes is empty and Corrupted is set.
	Fragments []Fragment `json:"fragments,omitempty"`

	Tier    Tier `json:"tier"`
	Partial bool `json:"partial"`

	// Corrupted marks a fragment-tier report; Fixed marks one where a small
	// corruption fix made the whole document parse after all.
	Corrupted bool `json:"corrupted,omitempty"`
	Fixed     bool `json:"fixed,omitempty"`

	// Collapsed is set when the streaming tokenizer lost confidence in its
	// container stack; the tier controller treats it as a fallback signal.
	Collapsed bool `json:"collapsed,omitempty"`
}

// Node returns the node recorded at path, or nil.
func (r *Report) Node(path string) *Node {
	return r.Nodes[path]
}

// Paths returns all recorded paths in sorted order.
func (r *Report) Paths() []string {
	paths := make([]string, 0, len(r.Nodes))
	for p := range r.Nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
