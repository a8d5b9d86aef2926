package store

import (
	"encoding/json"
	"fmt"
)

// marshalRoutes converts per-route completion counts to JSON TEXT for
// storage. A nil slice stores as the empty array so the column never
// holds NULL-ish values.
func marshalRoutes(routes []int) (string, error) {
	if routes == nil {
		routes = []int{}
	}
	data, err := json.Marshal(routes)
	if err != nil {
		return "", fmt.Errorf("marshal routes: %w", err)
	}
	return string(data), nil
}

// unmarshalRoutes parses the routes column back into counts. Empty TEXT
// reads as an empty slice.
func unmarshalRoutes(data string) ([]int, error) {
	if data == "" || data == "[]" {
		return []int{}, nil
	}
	var routes []int
	if err := json.Unmarshal([]byte(data), &routes); err != nil {
		return nil, fmt.Errorf("unmarshal routes: %w", err)
	}
	return routes, nil
}
