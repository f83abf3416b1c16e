package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/pantry-tracker/constants"
)

// BuildItemJSONSchema returns the JSON-Schema of one extracted item as a generic map.
// It is embedded in the instruction prompt; it is NOT used to reject rows, which is the
// sanitizer's job.
func BuildItemJSONSchema(categories, locations []string) map[string]any {
	props := map[string]any{
		"name":     map[string]any{"type": "string", "minLength": 1, "maxLength": constants.MaxNameLen},
		"brand":    map[string]any{"type": []string{"string", "null"}, "maxLength": constants.MaxBrandLen},
		"quantity": map[string]any{"type": "integer", "minimum": 1},
		"unit":     map[string]any{"type": "string", "maxLength": constants.MaxUnitLen},
		"location": map[string]any{"type": "string"},
		"category": map[string]any{"type": []string{"string", "null"}},
		"notes":    map[string]any{"type": []string{"string", "null"}},
		"price":    map[string]any{"type": []string{"number", "null"}, "minimum": 0},
	}
	if len(locations) > 0 {
		props["location"] = map[string]any{"type": "string", "enum": locations}
	}
	if len(categories) > 0 {
		enum := make([]any, 0, len(categories)+1)
		for _, c := range categories {
			enum = append(enum, c)
		}
		props["category"] = map[string]any{"enum": append(enum, nil)}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"name", "quantity", "unit", "location"},
	}
}

// ItemListEnvelopeSchema only asserts that the document is a JSON array.
func ItemListEnvelopeSchema() map[string]any {
	return map[string]any{"type": "array"}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
