package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/sqlmongo/internal/literal"
)

// marshalBody serializes a document for the body column, keeping key order.
func marshalBody(doc *literal.Mapping) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}
	return string(data), nil
}

// unmarshalBody decodes a body column back into an ordered document.
func unmarshalBody(body string) (*literal.Mapping, error) {
	v, err := literal.DecodeJSON([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("unmarshal body: %w", err)
	}
	doc, ok := v.(*literal.Mapping)
	if !ok {
		return nil, fmt.Errorf("unmarshal body: expected object, got %s", literal.TypeName(v))
	}
	return doc, nil
}
