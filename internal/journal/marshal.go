package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalDetail converts entry detail to JSON TEXT for storage.
// Map keys are sorted by encoding/json, so output is deterministic.
func marshalDetail(detail map[string]string) (string, error) {
	if len(detail) == 0 {
		return "{}", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(detail); err != nil {
		return "", fmt.Errorf("marshal detail: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalDetail parses stored detail TEXT. Returns nil for an empty object.
func unmarshalDetail(data string) (map[string]string, error) {
	if data == "" || data == "{}" {
		return nil, nil
	}
	var detail map[string]string
	if err := json.Unmarshal([]byte(data), &detail); err != nil {
		return nil, fmt.Errorf("unmarshal detail: %w", err)
	}
	return detail, nil
}
