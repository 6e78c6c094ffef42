package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// bundleSchema constrains a secret bundle document: a flat mapping of
// scalar values, plus the shared_with key which may be a single layer
// name or a list of them.
const bundleSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "secret bundle",
  "type": "object",
  "properties": {
    "shared_with": {
      "oneOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}}
      ]
    }
  },
  "additionalProperties": {
    "type": ["string", "number", "integer", "boolean"]
  }
}`

// credentialsSchema constrains a cloud credentials document: service names
// mapping to credential objects. No field is required; emptiness is the
// session factory's concern.
const credentialsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "cloud credentials",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "properties": {
      "aws_access_key_id": {"type": "string"},
      "aws_secret_access_key": {"type": "string"},
      "aws_session_token": {"type": "string"},
      "aws_region": {"type": "string"},
      "endpoint_url": {"type": "string"}
    },
    "additionalProperties": {
      "type": ["string", "number", "integer", "boolean"]
    }
  }
}`

// LoadDocument reads one YAML file into a generic mapping. An empty file
// is an empty mapping; a non-mapping document is an error.
func LoadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// ValidateBundle checks a loaded bundle document against the bundle schema.
func ValidateBundle(doc map[string]any) error {
	return validateWithSchema(doc, bundleSchema)
}

// ValidateCredentials checks a loaded credentials document against the
// credentials schema.
func ValidateCredentials(doc map[string]any) error {
	return validateWithSchema(doc, credentialsSchema)
}

func validateWithSchema(doc any, schema string) error {
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document for validation: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var violations []string
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return fmt.Errorf("schema validation failed:\n  - %s", strings.Join(violations, "\n  - "))
	}
	return nil
}
