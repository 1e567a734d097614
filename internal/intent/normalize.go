package intent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Decode normalizes an AI backend response into an envelope. The response may
// be a bare array of items, an {"items": [...]} envelope or one flat item.
func Decode(raw []byte, rawText string, loc *time.Location) (*Envelope, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty AI response")
	}

	var wires []Wire
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &wires); err != nil {
			return nil, fmt.Errorf("failed to decode item list: %w", err)
		}
	case '{':
		var probe struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("failed to decode AI response: %w", err)
		}
		if items := bytes.TrimSpace(probe.Items); len(items) > 0 && items[0] == '[' {
			if err := json.Unmarshal(items, &wires); err != nil {
				return nil, fmt.Errorf("failed to decode items: %w", err)
			}
			break
		}
		var w Wire
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}
		wires = []Wire{w}
	default:
		return nil, fmt.Errorf("unexpected AI response shape")
	}

	env := &Envelope{RawText: rawText, Source: SourceAI, Items: make([]Intent, 0, len(wires))}
	for _, w := range wires {
		if w.Raw == "" {
			w.Raw = rawText
		}
		env.Items = append(env.Items, FromWire(w, loc))
	}
	return env, nil
}
