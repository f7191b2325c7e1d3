package status

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/steamstat/steamstat/internal/errors"
)

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Schema returns the JSON schema status payloads are validated against.
func Schema() []byte {
	return schemaJSON
}

// Validate checks a raw status payload against the snapshot schema.
// Violations are reported wrapping errors.ErrInvalidSnapshot.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile snapshot schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidSnapshot, err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return fmt.Errorf("%w: %s", errors.ErrInvalidSnapshot, strings.Join(problems, "; "))
	}

	return nil
}

// Decode validates and decodes a raw status payload.
func Decode(data []byte) (*Snapshot, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidSnapshot, err)
	}

	return &snap, nil
}
