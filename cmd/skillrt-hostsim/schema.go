package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// configSchemaJSON renders Config's JSON Schema, the way
// internal/config/schema.go does for the gateway's own config struct.
func configSchemaJSON() (string, error) {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	schema := reflector.Reflect(&Config{})
	payload, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render config schema: %w", err)
	}
	return string(payload), nil
}
