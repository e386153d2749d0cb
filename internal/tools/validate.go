// In file: internal/tools/validate.go
package tools

import (
	"encoding/json"
	"fmt"
	"math"
)

// validateArguments checks a raw argument payload from the LLM against a
// tool's declared parameter schema: the payload must be a JSON object, every
// required field must be present, and every known field must carry a value of
// the declared type. Unknown fields are tolerated; models occasionally invent
// extras and rejecting the whole call for them helps nobody. The payload is
// only inspected, never rewritten: handlers receive exactly what the model
// produced.
func validateArguments(schema JSONSchema, arguments string) error {
	if arguments == "" {
		arguments = "{}"
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return &ValidationError{Field: "(arguments)", Reason: fmt.Sprintf("not a JSON object: %v", err)}
	}

	for _, required := range schema.Required {
		if _, present := args[required]; !present {
			return &ValidationError{Field: required, Reason: "required field is missing"}
		}
	}

	for name, value := range args {
		propSchema, known := schema.Properties[name]
		if !known {
			continue
		}
		if err := checkType(name, propSchema.Type, value); err != nil {
			return err
		}
	}
	return nil
}

// checkType verifies that a decoded JSON value matches a schema type name.
func checkType(field, schemaType string, value any) error {
	if value == nil {
		// JSON null is never a valid value for a typed parameter.
		return &ValidationError{Field: field, Reason: fmt.Sprintf("expected %s, got null", schemaType)}
	}

	switch schemaType {
	case "string":
		if _, ok := value.(string); !ok {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("expected string, got %T", value)}
		}
	case "number":
		if _, ok := value.(float64); !ok {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("expected number, got %T", value)}
		}
	case "integer":
		f, ok := value.(float64)
		if !ok || f != math.Trunc(f) {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("expected integer, got %v", value)}
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("expected boolean, got %T", value)}
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("expected object, got %T", value)}
		}
	case "array":
		if _, ok := value.([]any); !ok {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("expected array, got %T", value)}
		}
	}
	return nil
}
