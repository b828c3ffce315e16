package postgres

import (
	"encoding/json"
	"fmt"
)

// encodeJSONB marshals a slice for storage in a jsonb column. A nil slice
// is stored as an empty array rather than SQL NULL, so scans always
// produce a usable slice.
func encodeJSONB[T any](values []T) ([]byte, error) {
	if values == nil {
		values = []T{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jsonb value: %w", err)
	}
	return data, nil
}

// decodeJSONB unmarshals a jsonb column value back into a slice.
func decodeJSONB[T any](data []byte) ([]T, error) {
	if len(data) == 0 {
		return []T{}, nil
	}
	var values []T
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode jsonb value: %w", err)
	}
	if values == nil {
		values = []T{}
	}
	return values, nil
}
