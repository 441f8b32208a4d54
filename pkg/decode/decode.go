// Package decode converts loosely typed documents into tagged Go structs.
// Values pass through encoding/json, so targets only need json tags.
package decode

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromMap decodes a generic map into T.
func FromMap[T any](data map[string]any) (T, error) {
	var result T
	b, err := json.Marshal(data)
	if err != nil {
		return result, err
	}
	err = json.Unmarshal(b, &result)
	return result, err
}

// YAML decodes a YAML mapping document into T using T's json tags.
func YAML[T any](content []byte) (T, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		var zero T
		return zero, fmt.Errorf("parse yaml: %w", err)
	}
	return FromMap[T](doc)
}
