package flow

import (
	"testing"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
)

func mustInput(t *testing.T, raw string) *InputPayload {
	t.Helper()
	p, err := ParseInput([]byte(raw))
	if err != nil {
		t.Fatalf("ParseInput(%q) error = %v", raw, err)
	}
	return p
}

func workflowOf(nodes ...Node) *Workflow {
	return &Workflow{Nodes: nodes, Edges: []Edge{}}
}

func TestResolve_InputNode(t *testing.T) {
	wf := workflowOf(Node{
		"type": "InputNode",
		"data": map[string]any{"input": "Say {word}"},
	})

	prompt, err := Resolve(wf, mustInput(t, `{"word": "hi"}`))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if prompt != "Say hi" {
		t.Errorf("prompt = %q, want %q", prompt, "Say hi")
	}
}

func TestResolve_InputNodeTakesPriority(t *testing.T) {
	wf := workflowOf(
		Node{"id": "ChatInput-1", "type": "ChatInput"},
		Node{
			"id":   "Prompt-1",
			"data": map[string]any{"template": map[string]any{"value": "from prompt node"}},
		},
		Node{
			"type": "InputNode",
			"data": map[string]any{"input": "from input node"},
		},
	)

	prompt, err := Resolve(wf, mustInput(t, `{}`))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if prompt != "from input node" {
		t.Errorf("prompt = %q, want the InputNode template", prompt)
	}
}

func TestResolve_ChatInputPromptPair(t *testing.T) {
	tests := []struct {
		name   string
		prompt Node
		want   string
	}{
		{
			name: "langflow template path",
			prompt: Node{
				"id": "Prompt-1",
				"data": map[string]any{
					"node": map[string]any{
						"template": map[string]any{"value": "Hello {name}"},
					},
				},
			},
			want: "Hello Ada",
		},
		{
			name: "legacy template path",
			prompt: Node{
				"id": "Prompt-1",
				"data": map[string]any{
					"template": map[string]any{"value": "Hi {name}"},
				},
			},
			want: "Hi Ada",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := workflowOf(
				Node{"id": "ChatInput-1"},
				tt.prompt,
			)
			prompt, err := Resolve(wf, mustInput(t, `{"name": "Ada"}`))
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if prompt != tt.want {
				t.Errorf("prompt = %q, want %q", prompt, tt.want)
			}
		})
	}
}

func TestResolve_ChatInputMatchesOnDataLevelType(t *testing.T) {
	wf := workflowOf(
		Node{"data": map[string]any{"id": "x", "type": "ChatInputComponent"}},
		Node{
			"data": map[string]any{
				"id":       "Prompt-7",
				"template": map[string]any{"value": "tpl"},
			},
		},
	)

	prompt, err := Resolve(wf, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if prompt != "tpl" {
		t.Errorf("prompt = %q, want %q", prompt, "tpl")
	}
}

func TestResolve_NoEdgeVerification(t *testing.T) {
	// The ChatInput and Prompt nodes are not connected by any edge; the
	// pair still resolves because only presence in the node list matters.
	wf := &Workflow{
		Nodes: []Node{
			{"id": "ChatInput-1"},
			{"id": "Prompt-1", "data": map[string]any{"template": map[string]any{"value": "t"}}},
		},
		Edges: []Edge{},
	}

	if _, err := Resolve(wf, nil); err != nil {
		t.Errorf("Resolve() error = %v, want success without edges", err)
	}
}

func TestResolve_NoMatchingNode(t *testing.T) {
	tests := []struct {
		name string
		wf   *Workflow
	}{
		{"empty workflow", workflowOf()},
		{"input node without input field", workflowOf(Node{"type": "InputNode", "data": map[string]any{}})},
		{"chat input without prompt node", workflowOf(Node{"id": "ChatInput-1"})},
		{"prompt node without chat input", workflowOf(
			Node{"id": "Prompt-1", "data": map[string]any{"template": map[string]any{"value": "t"}}},
		)},
		{"prompt node with empty template", workflowOf(
			Node{"id": "ChatInput-1"},
			Node{"id": "Prompt-1", "data": map[string]any{"template": map[string]any{"value": ""}}},
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.wf, nil)
			if !core.IsCode(err, core.CodeNoMatchingNode) {
				t.Errorf("error = %v, want code %s", err, core.CodeNoMatchingNode)
			}
		})
	}
}

func TestResolve_SkipsNilNodes(t *testing.T) {
	wf := workflowOf(
		nil,
		Node{"type": "InputNode", "data": map[string]any{"input": "ok"}},
	)
	prompt, err := Resolve(wf, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if prompt != "ok" {
		t.Errorf("prompt = %q, want %q", prompt, "ok")
	}
}

func TestSubstitute_Basic(t *testing.T) {
	got := Substitute("Hello {name}, you are {age}", mustInput(t, `{"name": "Ada", "age": 30}`))
	want := "Hello Ada, you are 30"
	if got != want {
		t.Errorf("Substitute() = %q, want %q", got, want)
	}
}

func TestSubstitute_AccumulatesAcrossKeys(t *testing.T) {
	// The first replacement introduces a {second} placeholder; the later
	// key still matches it because substitution works over one buffer.
	got := Substitute("{first}", mustInput(t, `{"first": "say {second}", "second": "done"}`))
	if got != "say done" {
		t.Errorf("Substitute() = %q, want %q", got, "say done")
	}
}

func TestSubstitute_NoRecursionWithinSinglePass(t *testing.T) {
	// A key appearing after the one that produced its placeholder text is
	// replaced; but earlier keys are never revisited.
	got := Substitute("{b} {a}", mustInput(t, `{"a": "x{b}x", "b": "B"}`))
	// Pass 1 (a): "{b} x{b}x"; pass 2 (b): "B xBx".
	if got != "B xBx" {
		t.Errorf("Substitute() = %q, want %q", got, "B xBx")
	}
}

func TestSubstitute_NonMappingInputLeavesTemplate(t *testing.T) {
	got := Substitute("Hello {name}", mustInput(t, `["not", "a", "map"]`))
	if got != "Hello {name}" {
		t.Errorf("Substitute() = %q, want template unchanged", got)
	}
}

func TestSubstitute_ValueRendering(t *testing.T) {
	got := Substitute("{s}|{n}|{f}|{b}|{z}|{o}",
		mustInput(t, `{"s": "str", "n": 42, "f": 1.5, "b": true, "z": null, "o": {"k": 1}}`))
	want := `str|42|1.5|true|null|{"k":1}`
	if got != want {
		t.Errorf("Substitute() = %q, want %q", got, want)
	}
}
