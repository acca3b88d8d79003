// ABOUTME: JSON Schema serialization of adapter parameter schemas,
// ABOUTME: consumed by the MCP tools/list surface.

package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/2389/toolbelt/internal/tool"
)

// JSONSchema renders a parameter schema as a JSON Schema object document,
// {"type":"object","properties":{...},"required":[...]}, with declared
// defaults and descriptions carried through.
func JSONSchema(s tool.Schema) (json.RawMessage, error) {
	props := make(map[string]any, len(s))
	for _, p := range s {
		prop := map[string]any{"type": string(p.Type)}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		props[p.Name] = prop
	}

	doc := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if req := s.Required(); len(req) > 0 {
		doc["required"] = req
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	return data, nil
}
