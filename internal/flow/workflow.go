// Package flow loads declarative node/edge workflow definitions and resolves
// the prompt template they carry.
package flow

import "encoding/json"

// SchemaVariant identifies which on-disk shape a workflow definition used.
type SchemaVariant string

const (
	// VariantNested is the shape with nodes/edges under a "data" mapping.
	VariantNested SchemaVariant = "nested"
	// VariantFlat is the shape with nodes/edges at the document root.
	VariantFlat SchemaVariant = "flat"
)

// Node is one graph node. Definitions in the wild disagree on where the
// identifier, type and template live, so the node keeps its raw mapping and
// exposes typed accessors over the known locations.
type Node map[string]any

// Edge is graph topology. The current resolution strategies never traverse
// edges; they are retained verbatim for round-tripping and diagnostics.
type Edge = json.RawMessage

// Workflow is the canonical in-memory model: ordered nodes and edges,
// regardless of which on-disk variant they came from.
type Workflow struct {
	Nodes   []Node        `json:"nodes"`
	Edges   []Edge        `json:"edges"`
	Variant SchemaVariant `json:"-"`
}

// ID returns the node identifier, checking the top-level "id" first and the
// nested "data.id" second.
func (n Node) ID() string {
	if s, ok := n["id"].(string); ok && s != "" {
		return s
	}
	if s, ok := stringAt(n, "data", "id"); ok {
		return s
	}
	return ""
}

// Type returns the node type discriminator, top-level "type" first, nested
// "data.type" second.
func (n Node) Type() string {
	if s, ok := n["type"].(string); ok && s != "" {
		return s
	}
	if s, ok := stringAt(n, "data", "type"); ok {
		return s
	}
	return ""
}

// TopLevelType returns only the top-level "type" field.
func (n Node) TopLevelType() string {
	s, _ := n["type"].(string)
	return s
}

// InputTemplate returns the template of a direct input node, read from
// "data.input".
func (n Node) InputTemplate() (string, bool) {
	return stringAt(n, "data", "input")
}

// templatePaths is the ordered accessor chain for prompt-node templates.
// The first path is the LangFlow 1.4+ location, the second the legacy one.
var templatePaths = [][]string{
	{"data", "node", "template", "value"},
	{"data", "template", "value"},
}

// PromptTemplate returns the template of a prompt node, trying each known
// location in order.
func (n Node) PromptTemplate() (string, bool) {
	for _, path := range templatePaths {
		if s, ok := stringAt(n, path...); ok {
			return s, true
		}
	}
	return "", false
}

// stringAt walks nested mappings along path and returns the string value at
// the end, if every intermediate step is a mapping and the leaf is a string.
func stringAt(m map[string]any, path ...string) (string, bool) {
	cur := m
	for i, key := range path {
		v, ok := cur[key]
		if !ok {
			return "", false
		}
		if i == len(path)-1 {
			s, ok := v.(string)
			return s, ok
		}
		next, ok := v.(map[string]any)
		if !ok {
			return "", false
		}
		cur = next
	}
	return "", false
}
