package flow

import (
	"strings"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
)

// Node markers recognized by the resolution strategies.
const (
	inputNodeType      = "InputNode"
	chatInputSubstring = "ChatInput"
	promptSubstring    = "Prompt"
)

// Resolve locates the instruction template in the workflow and substitutes
// the input payload into its placeholders.
//
// Two strategies are tried in fixed priority order:
//
//  1. Direct input node: the first node with top-level type "InputNode" and
//     a string "data.input" field.
//  2. ChatInput/Prompt pair: a node whose id or type contains "ChatInput"
//     followed by an independent scan for the first node whose id or type
//     contains "Prompt", reading its template from data.node.template.value
//     or data.template.value. The pair is not required to be connected by
//     an edge; only presence in the node list matters.
func Resolve(wf *Workflow, input *InputPayload) (string, error) {
	if template, ok := resolveInputNode(wf); ok {
		return Substitute(template, input), nil
	}
	if template, ok := resolveChatPromptPair(wf); ok {
		return Substitute(template, input), nil
	}
	return "", core.ErrNoMatchingNode(
		"no input node with a template or resolvable ChatInput/Prompt pair in workflow nodes")
}

func resolveInputNode(wf *Workflow) (string, bool) {
	for _, node := range wf.Nodes {
		if node == nil {
			continue
		}
		if node.TopLevelType() != inputNodeType {
			continue
		}
		if template, ok := node.InputTemplate(); ok {
			return template, true
		}
	}
	return "", false
}

func resolveChatPromptPair(wf *Workflow) (string, bool) {
	if !hasNodeMatching(wf, chatInputSubstring) {
		return "", false
	}
	for _, node := range wf.Nodes {
		if node == nil || !nodeMatches(node, promptSubstring) {
			continue
		}
		if template, ok := node.PromptTemplate(); ok && template != "" {
			return template, true
		}
		// First Prompt match wins; a Prompt node without a template value
		// ends the strategy.
		return "", false
	}
	return "", false
}

func hasNodeMatching(wf *Workflow, substr string) bool {
	for _, node := range wf.Nodes {
		if node != nil && nodeMatches(node, substr) {
			return true
		}
	}
	return false
}

// nodeMatches does a case-sensitive substring check on the node's id and
// type, both top-level and data-level.
func nodeMatches(node Node, substr string) bool {
	return strings.Contains(node.ID(), substr) || strings.Contains(node.Type(), substr)
}

// Substitute replaces every {key} placeholder in the template with the
// payload value's text. Replacement accumulates into one working string in
// payload key order; there is no escaping and no recursion into values, but
// a later key may match text introduced by an earlier replacement.
func Substitute(template string, input *InputPayload) string {
	if !input.IsMapping() {
		return template
	}
	resolved := template
	for _, pair := range input.Pairs() {
		placeholder := "{" + pair.Key + "}"
		resolved = strings.ReplaceAll(resolved, placeholder, substitutionText(pair.Value))
	}
	return resolved
}
