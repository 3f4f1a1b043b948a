package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/core"
)

// InputPair is one placeholder binding from the input payload.
type InputPair struct {
	Key   string
	Value any
}

// InputPayload is the caller-supplied substitution input. When the payload
// is a JSON object, the document's key order is preserved: substitution is
// applied key by key over a single working string, so later keys can match
// inside text produced by earlier replacements.
type InputPayload struct {
	raw   json.RawMessage
	pairs []InputPair
	isMap bool
}

// ParseInputArgument interprets the runner's input argument. Surrounding
// single or double quotes are stripped first. If the stripped value names an
// existing file with a .json suffix its contents are parsed; otherwise the
// argument itself is parsed as inline JSON.
func ParseInputArgument(arg string) (*InputPayload, error) {
	stripped := strings.Trim(arg, `'"`)

	if strings.HasSuffix(stripped, ".json") {
		if _, err := os.Stat(stripped); err == nil {
			data, err := os.ReadFile(stripped)
			if err != nil {
				return nil, core.ErrNotFound("input file", stripped).WithCause(err)
			}
			payload, err := ParseInput(data)
			if err != nil {
				return nil, core.ErrInvalidJSON(
					fmt.Sprintf("parsing input file %s", stripped)).WithCause(err)
			}
			return payload, nil
		}
	}

	payload, err := ParseInput([]byte(stripped))
	if err != nil {
		return nil, core.ErrInvalidJSON("parsing inline input").WithCause(err)
	}
	return payload, nil
}

// ParseInput parses raw JSON into an input payload.
func ParseInput(data []byte) (*InputPayload, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON input")
	}

	p := &InputPayload{raw: append(json.RawMessage(nil), bytes.TrimSpace(data)...)}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return p, nil
	}

	// Decode object fields in document order. Numbers stay json.Number so
	// their substitution text matches the source document.
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil { // consume '{'
		return nil, err
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in input object", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		p.pairs = append(p.pairs, InputPair{Key: key, Value: value})
	}
	p.isMap = true
	return p, nil
}

// Raw returns the payload as it was supplied, for ledger round-tripping.
func (p *InputPayload) Raw() json.RawMessage {
	if p == nil {
		return nil
	}
	return p.raw
}

// IsMapping reports whether the payload root is a JSON object.
func (p *InputPayload) IsMapping() bool {
	return p != nil && p.isMap
}

// Pairs returns the object fields in document order.
func (p *InputPayload) Pairs() []InputPair {
	if p == nil {
		return nil
	}
	return p.pairs
}

// substitutionText renders a payload value the way it appears in the
// resolved prompt.
func substitutionText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
