package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeJSON renders v as two-space indented JSON without HTML escaping,
// followed by a newline.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("storage: encode json: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteJSON encodes v with EncodeJSON and writes it atomically to path.
func WriteJSON(p Provider, path string, v any) error {
	data, err := EncodeJSON(v)
	if err != nil {
		return err
	}
	return p.Write(path, data)
}
