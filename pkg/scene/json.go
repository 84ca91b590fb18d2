package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "https://hsm-toolkit.dev/schemas/scene.json"

// sceneSchemaJSON is the JSON Schema every scene document must satisfy.
const sceneSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://hsm-toolkit.dev/schemas/scene.json",
  "type": "object",
  "required": ["version", "roots"],
  "properties": {
    "version": { "type": "integer", "minimum": 1 },
    "id": { "type": "string", "format": "uuid" },
    "name": { "type": "string" },
    "roots": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "transitions": {
      "type": "array",
      "items": { "$ref": "#/$defs/transition" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "id": { "type": "integer", "minimum": 1 },
    "node": {
      "type": "object",
      "required": ["id", "name", "kind", "x", "y"],
      "properties": {
        "id": { "$ref": "#/$defs/id" },
        "name": { "type": "string" },
        "kind": { "type": "string", "enum": ["leaf", "parent", "parallel"] },
        "x": { "type": "number" },
        "y": { "type": "number" },
        "width": { "type": "number", "minimum": 0 },
        "height": { "type": "number", "minimum": 0 },
        "explicit": { "type": "boolean" },
        "bounds": {
          "type": "object",
          "required": ["width", "height"],
          "properties": {
            "width": { "type": "number", "minimum": 0 },
            "height": { "type": "number", "minimum": 0 }
          },
          "additionalProperties": false
        },
        "initial": { "$ref": "#/$defs/id" },
        "children": {
          "type": "array",
          "items": { "$ref": "#/$defs/node" }
        }
      },
      "additionalProperties": false
    },
    "transition": {
      "type": "object",
      "required": ["id", "source", "target", "label"],
      "properties": {
        "id": { "$ref": "#/$defs/id" },
        "source": { "$ref": "#/$defs/id" },
        "target": { "$ref": "#/$defs/id" },
        "label": { "type": "string" },
        "label_offset": {
          "type": "object",
          "required": ["dx", "dy"],
          "properties": {
            "dx": { "type": "number" },
            "dy": { "type": "number" }
          },
          "additionalProperties": false
        }
      },
      "additionalProperties": false
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.AssertFormat()

		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(sceneSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal scene schema: %w", err)
			return
		}
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add scene schema resource: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile scene schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// Validate checks a scene document against the scene schema without
// decoding it.
func Validate(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse scene: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("invalid scene: %w", err)
	}
	return nil
}

// Marshal encodes s as indented JSON.
func Marshal(s *Scene) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal validates and decodes a scene document.
func Unmarshal(data []byte) (*Scene, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &s, nil
}
