package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

// ToJSONIndent serializes the schema to indented JSON bytes.
func (s *Schema) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// ParseJSON parses a schema from JSON bytes.
func ParseJSON(data []byte) (*Schema, error) {
	s := NewSchema()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return s, nil
}

// LoadFromJSON loads a schema snapshot from a JSON file.
func LoadFromJSON(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return ParseJSON(data)
}

// SaveToJSON saves the schema to a JSON file with indentation.
func (s *Schema) SaveToJSON(path string) error {
	data, err := s.ToJSONIndent()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
