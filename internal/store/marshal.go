package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalMetadata converts scenario metadata to JSON TEXT for storage.
// Values that cannot be encoded (step bodies, calculated values) are
// stored as their type name.
func marshalMetadata(md map[string]any) (string, error) {
	if len(md) == 0 {
		return "{}", nil
	}
	clean := make(map[string]any, len(md))
	for k, v := range md {
		clean[k] = encodable(v)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(clean); err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

func encodable(v any) any {
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprintf("%T", v)
	}
	return v
}

// unmarshalMetadata parses metadata JSON TEXT. Numbers are kept as
// json.Number to avoid precision loss.
func unmarshalMetadata(data string) (map[string]any, error) {
	md := map[string]any{}
	if data == "" || data == "{}" {
		return md, nil
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&md); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return md, nil
}
