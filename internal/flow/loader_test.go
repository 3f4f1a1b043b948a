package flow

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
)

func writeWorkflow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_NestedVariant(t *testing.T) {
	path := writeWorkflow(t, `{
		"data": {
			"nodes": [{"id": "n1", "type": "InputNode"}, {"id": "n2"}],
			"edges": [{"source": "n1", "target": "n2"}]
		}
	}`)

	wf, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if wf.Variant != VariantNested {
		t.Errorf("Variant = %s, want %s", wf.Variant, VariantNested)
	}
	if len(wf.Nodes) != 2 {
		t.Errorf("Nodes = %d, want 2", len(wf.Nodes))
	}
	if len(wf.Edges) != 1 {
		t.Errorf("Edges = %d, want 1", len(wf.Edges))
	}
}

func TestLoad_FlatVariant(t *testing.T) {
	path := writeWorkflow(t, `{"nodes": [{"id": "n1"}], "edges": []}`)

	wf, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if wf.Variant != VariantFlat {
		t.Errorf("Variant = %s, want %s", wf.Variant, VariantFlat)
	}
	if len(wf.Nodes) != 1 || len(wf.Edges) != 0 {
		t.Errorf("counts = (%d, %d), want (1, 0)", len(wf.Nodes), len(wf.Edges))
	}
}

func TestLoad_NestedAndFlatEquivalence(t *testing.T) {
	nodes := `[{"id": "ChatInput-1", "type": "ChatInput"}, {"id": "Prompt-1", "data": {"template": {"value": "hi"}}}]`
	edges := `[{"source": "ChatInput-1", "target": "Prompt-1"}]`

	nested := writeWorkflow(t, `{"data": {"nodes": `+nodes+`, "edges": `+edges+`}}`)
	flat := writeWorkflow(t, `{"nodes": `+nodes+`, "edges": `+edges+`}`)

	nestedWf, err := Load(nested)
	if err != nil {
		t.Fatalf("Load(nested) error = %v", err)
	}
	flatWf, err := Load(flat)
	if err != nil {
		t.Fatalf("Load(flat) error = %v", err)
	}

	nestedJSON, _ := json.Marshal(Workflow{Nodes: nestedWf.Nodes, Edges: nestedWf.Edges})
	flatJSON, _ := json.Marshal(Workflow{Nodes: flatWf.Nodes, Edges: flatWf.Edges})
	if string(nestedJSON) != string(flatJSON) {
		t.Errorf("canonical models differ:\n  nested: %s\n  flat:   %s", nestedJSON, flatJSON)
	}
}

func TestLoad_RoundTripPreservesCounts(t *testing.T) {
	path := writeWorkflow(t, `{
		"data": {
			"nodes": [{"id": "a"}, {"id": "b"}, {"id": "c"}],
			"edges": [{"s": "a"}, {"s": "b"}]
		}
	}`)

	wf, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	data, err := json.Marshal(wf)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	reparsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(round-trip) error = %v", err)
	}
	if len(reparsed.Nodes) != len(wf.Nodes) {
		t.Errorf("node count = %d, want %d", len(reparsed.Nodes), len(wf.Nodes))
	}
	if len(reparsed.Edges) != len(wf.Edges) {
		t.Errorf("edge count = %d, want %d", len(reparsed.Edges), len(wf.Edges))
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !core.IsCode(err, core.CodeNotFound) {
		t.Errorf("error = %v, want code %s", err, core.CodeNotFound)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeWorkflow(t, `{not json`)
	_, err := Load(path)
	if !core.IsCode(err, core.CodeInvalidJSON) {
		t.Errorf("error = %v, want code %s", err, core.CodeInvalidJSON)
	}
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{
			name:    "root not object",
			content: `[1, 2, 3]`,
			wantSub: "array",
		},
		{
			name:    "data not object",
			content: `{"data": "nope"}`,
			wantSub: "string",
		},
		{
			name:    "missing keys under data",
			content: `{"data": {"nodes": []}}`,
			wantSub: "edges",
		},
		{
			name:    "nested lists wrong type",
			content: `{"data": {"nodes": {"a": 1}, "edges": []}}`,
			wantSub: "data.nodes is object",
		},
		{
			name:    "flat lists wrong type",
			content: `{"nodes": [], "edges": 5}`,
			wantSub: "edges is number",
		},
		{
			name:    "nested nodes null",
			content: `{"data": {"nodes": null, "edges": []}}`,
			wantSub: "data.nodes is null",
		},
		{
			name:    "flat nodes null",
			content: `{"nodes": null, "edges": []}`,
			wantSub: "nodes is null",
		},
		{
			name:    "flat edges null",
			content: `{"nodes": [], "edges": null}`,
			wantSub: "edges is null",
		},
		{
			name:    "neither variant",
			content: `{"something": "else"}`,
			wantSub: "must contain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorkflow(t, tt.content)
			_, err := Load(path)
			if !core.IsCode(err, core.CodeInvalidSchema) {
				t.Fatalf("error = %v, want code %s", err, core.CodeInvalidSchema)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestLoad_NonObjectNodesAreKept(t *testing.T) {
	path := writeWorkflow(t, `{"nodes": [{"id": "n1"}, "stray", 42], "edges": []}`)

	wf, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(wf.Nodes) != 3 {
		t.Errorf("node count = %d, want 3", len(wf.Nodes))
	}
	if wf.Nodes[1] != nil || wf.Nodes[2] != nil {
		t.Error("non-object nodes should normalize to nil placeholders")
	}
}
