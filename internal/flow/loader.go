package flow

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
)

// Load reads a workflow definition file and normalizes it to the canonical
// model. Both supported on-disk variants are accepted:
//
//   - nested: {"data": {"nodes": [...], "edges": [...]}}
//   - flat:   {"nodes": [...], "edges": [...]}
//
// Node and edge order is preserved; resolution uses first-match-wins
// scanning over the original order.
func Load(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrNotFound("workflow file", path)
		}
		return nil, fmt.Errorf("reading workflow file: %w", err)
	}
	return Parse(data)
}

// Parse normalizes raw workflow JSON to the canonical model.
func Parse(data []byte) (*Workflow, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		if !json.Valid(data) {
			return nil, core.ErrInvalidJSON("parsing workflow definition").WithCause(err)
		}
		return nil, core.ErrInvalidSchema(
			fmt.Sprintf("workflow root must be an object, got %s", jsonTypeName(data)))
	}

	if inner, ok := root["data"]; ok {
		return parseNested(inner)
	}
	return parseFlat(root)
}

func parseNested(inner json.RawMessage) (*Workflow, error) {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(inner, &data); err != nil {
		return nil, core.ErrInvalidSchema(
			fmt.Sprintf("'data' must be an object, got %s", jsonTypeName(inner)))
	}

	var missing []string
	for _, key := range []string{"nodes", "edges"} {
		if _, ok := data[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, core.ErrInvalidSchema(fmt.Sprintf(
			"workflow missing required keys under 'data': %s (found: %s)",
			strings.Join(missing, ", "), strings.Join(keysOf(data), ", ")))
	}

	wf, err := parseLists(data["nodes"], data["edges"], "data.nodes", "data.edges")
	if err != nil {
		return nil, err
	}
	wf.Variant = VariantNested
	return wf, nil
}

func parseFlat(root map[string]json.RawMessage) (*Workflow, error) {
	nodesRaw, hasNodes := root["nodes"]
	edgesRaw, hasEdges := root["edges"]
	if !hasNodes || !hasEdges {
		return nil, core.ErrInvalidSchema(
			"workflow must contain 'data.nodes'/'data.edges' or root level 'nodes'/'edges'")
	}

	wf, err := parseLists(nodesRaw, edgesRaw, "nodes", "edges")
	if err != nil {
		return nil, err
	}
	wf.Variant = VariantFlat
	return wf, nil
}

func parseLists(nodesRaw, edgesRaw json.RawMessage, nodesKey, edgesKey string) (*Workflow, error) {
	// Unmarshal alone cannot carry the type check: a JSON null decodes into
	// a slice without error, so the type of each value is verified first.
	if jsonTypeName(nodesRaw) != "array" || jsonTypeName(edgesRaw) != "array" {
		return nil, core.ErrInvalidSchema(fmt.Sprintf(
			"'%s' and '%s' must be arrays; %s is %s, %s is %s",
			nodesKey, edgesKey,
			nodesKey, jsonTypeName(nodesRaw), edgesKey, jsonTypeName(edgesRaw)))
	}

	// Elements are kept even when they are not objects; resolution skips
	// them, but counts and order must survive normalization.
	var rawNodes []any
	if err := json.Unmarshal(nodesRaw, &rawNodes); err != nil {
		return nil, core.ErrInvalidSchema(
			fmt.Sprintf("parsing '%s'", nodesKey)).WithCause(err)
	}

	var edges []Edge
	if err := json.Unmarshal(edgesRaw, &edges); err != nil {
		return nil, core.ErrInvalidSchema(
			fmt.Sprintf("parsing '%s'", edgesKey)).WithCause(err)
	}

	nodes := make([]Node, len(rawNodes))
	for i, v := range rawNodes {
		if m, ok := v.(map[string]any); ok {
			nodes[i] = Node(m)
		}
	}
	if edges == nil {
		edges = []Edge{}
	}
	return &Workflow{Nodes: nodes, Edges: edges}, nil
}

func keysOf(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// jsonTypeName names the JSON type of a raw value for schema diagnostics.
func jsonTypeName(raw []byte) string {
	trimmed := strings.TrimLeft(string(raw), " \t\r\n")
	if trimmed == "" {
		return "empty"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
