// Package structure defines the report model shared by every analysis tier:
// per-path nodes, aggregate statistics, recorded parse errors and recovered
// fragments, plus the Builder that assembles them.
package structure

import "fmt"

// NodeType classifies a value observed at a path.
type NodeType string

// Node type constants.
const (
	TypeObject    NodeType = "object"
	TypeArray     NodeType = "array"
	TypeString    NodeType = "string"
	TypeNumber    NodeType = "number"
	TypeBoolean   NodeType = "boolean"
	TypeNull      NodeType = "null"
	TypeTruncated NodeType = "truncated" // beyond the depth cap or array sample limit
)

// Tier identifies which strategy produced a report.
type Tier string

// Tier constants, in fallback order.
const (
	TierStandard  Tier = "standard"
	TierStreaming Tier = "streaming"
	TierPartial   Tier = "partial"
)

// Node is one entry in the report's path map.
type Node struct {
	Type  NodeType `json:"type"`
	Depth int      `json:"depth"`

	// Keys holds the observed key set for objects, sorted at finalize time.
	Keys []string `json:"keys,omitempty"`

	// Length is the number of elements visited for arrays. When Truncated is
	// set only the first few elements were path-tracked individually, but
	// Length still reflects the true total.
	Length    int  `json:"length,omitempty"`
	Truncated bool `json:"truncated,omitempty"`

	keySet map[string]struct{}
}

// ParseError records a single recoverable syntax problem. Recording one never
// discards already-collected structure.
type ParseError struct {
	Position  int    `json:"position"`
	Character string `json:"character"`
	Message   string `json:"message"`
}

// Error implements the error interface.
func (e ParseError) Error() string {
	return fmt.Sprintf("position %d: %s", e.Position, e.Message)
}

// Fragment is an independently parseable substring recovered from content too
// damaged for the streaming tokenizer.
type Fragment struct {
	Type     NodeType `json:"type"`
	Position int      `json:"position"`
	Content  string   `json:"content"`
	Value    any      `json:"parsedValue"`
}

// Stats aggregates shape counters across the whole document.
type Stats struct {
	Tokens      int `json:"tokens"`
	ObjectCount int `json:"objectCount"`
	ArrayCount  int `json:"arrayCount"`
	MaxDepth    int `json:"maxDepth"`
}
