package jsonscope

import "github.com/jsonscope/jsonscope/pkg/internal/structure"

// Re-exports of the report model so callers only import this package.
type (
	Report     = structure.Report
	Node       = structure.Node
	NodeType   = structure.NodeType
	ParseError = structure.ParseError
	Fragment   = structure.Fragment
	Stats      = structure.Stats
	Tier       = structure.Tier
)

// Tiers in fallback order.
const (
	TierStandard  = structure.TierStandard
	TierStreaming = structure.TierStreaming
	TierPartial   = structure.TierPartial
)

// Node types.
const (
	TypeObject    = structure.TypeObject
	TypeArray     = structure.TypeArray
	TypeString    = structure.TypeString
	TypeNumber    = structure.TypeNumber
	TypeBoolean   = structure.TypeBoolean
	TypeNull      = structure.TypeNull
	TypeTruncated = structure.TypeTruncated
)

// RootPath addresses the document's top-level value in the path map.
const RootPath = structure.RootPath

// ChildKey returns the path of an object member, e.g. ChildKey("a", "b") ->
// "a.b". Members of the root container use an empty parent.
func ChildKey(parent, key string) string { return structure.ChildKey(parent, key) }

// ChildIndex returns the path of an array element, e.g. ChildIndex("c", 2) ->
// "c[2]".
func ChildIndex(parent string, i int) string { return structure.ChildIndex(parent, i) }
