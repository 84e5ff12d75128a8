package core

import (
	"encoding/json"
	"fmt"
)

// MarshalDocument serializes an EnrichedDocument to the persisted artifact
// format. The document is validated first; no invalid document is ever
// written to storage.
func MarshalDocument(doc *EnrichedDocument) ([]byte, error) {
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// UnmarshalDocument deserializes and validates an EnrichedDocument from the
// persisted artifact format.
func UnmarshalDocument(data []byte) (*EnrichedDocument, error) {
	var doc EnrichedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := ValidateDocument(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
