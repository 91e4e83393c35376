// Package schema infers a JSON Schema skeleton from an observed structure
// report. This is shape description, not validation: the schema reflects what
// one document looked like, typed but unconstrained.
package schema

import (
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/jsonscope/jsonscope/pkg/jsonscope"
)

// Infer converts a structure report into a JSON Schema. Reports from the
// fragment-recovery tier, which carry fragments instead of a path map, come
// out as an anyOf over the recovered values.
func Infer(rep *jsonscope.Report) *jsonschema.Schema {
	root := &jsonschema.Schema{Version: jsonschema.Version}

	if len(rep.Fragments) > 0 {
		for _, f := range rep.Fragments {
			root.AnyOf = append(root.AnyOf, inferValue(f.Value))
		}
		return root
	}

	node := rep.Node(jsonscope.RootPath)
	if node == nil {
		return root
	}
	fill(root, rep, node, jsonscope.RootPath)
	return root
}

// fill populates s from the node at nodePath, descending through the path
// map. Depth is bounded by the analyzer's depth cap, so recursion is safe.
func fill(s *jsonschema.Schema, rep *jsonscope.Report, node *jsonscope.Node, nodePath string) {
	prefix := nodePath
	if prefix == jsonscope.RootPath {
		prefix = ""
	}

	switch node.Type {
	case jsonscope.TypeObject:
		s.Type = "object"
		if len(node.Keys) == 0 {
			return
		}
		props := jsonschema.NewProperties()
		for _, key := range node.Keys {
			childPath := jsonscope.ChildKey(prefix, key)
			child := &jsonschema.Schema{}
			if childNode := rep.Node(childPath); childNode != nil {
				fill(child, rep, childNode, childPath)
			}
			props.Set(key, child)
		}
		s.Properties = props
	case jsonscope.TypeArray:
		s.Type = "array"
		firstPath := jsonscope.ChildIndex(prefix, 0)
		if firstNode := rep.Node(firstPath); firstNode != nil {
			items := &jsonschema.Schema{}
			fill(items, rep, firstNode, firstPath)
			s.Items = items
		}
	case jsonscope.TypeString:
		s.Type = "string"
	case jsonscope.TypeNumber:
		s.Type = "number"
	case jsonscope.TypeBoolean:
		s.Type = "boolean"
	case jsonscope.TypeNull:
		s.Type = "null"
	case jsonscope.TypeTruncated:
		// Shape unknown past this point; leave the schema open.
	}
}

// inferValue builds a schema directly from a parsed fragment value.
func inferValue(v any) *jsonschema.Schema {
	s := &jsonschema.Schema{}
	switch val := v.(type) {
	case map[string]any:
		s.Type = "object"
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		props := jsonschema.NewProperties()
		for _, k := range keys {
			props.Set(k, inferValue(val[k]))
		}
		s.Properties = props
	case []any:
		s.Type = "array"
		if len(val) > 0 {
			s.Items = inferValue(val[0])
		}
	case string:
		s.Type = "string"
	case float64:
		s.Type = "number"
	case bool:
		s.Type = "boolean"
	case nil:
		s.Type = "null"
	}
	return s
}
