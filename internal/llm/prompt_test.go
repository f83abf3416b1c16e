package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInstructionPromptVocabularies(t *testing.T) {
	p := BuildInstructionPrompt(ExtractRequest{
		Categories: []string{"Dairy", "Vegetables"},
		Locations:  []string{"Fridge", "Pantry"},
	})

	assert.Contains(t, p, "Allowed categories: Dairy, Vegetables.")
	assert.Contains(t, p, "Allowed storage locations: Fridge, Pantry.")
	assert.Contains(t, p, `"quantity"`)
	assert.Contains(t, p, "return [].")
}

func TestBuildInstructionPromptDefaults(t *testing.T) {
	p := BuildInstructionPrompt(ExtractRequest{})
	assert.Contains(t, p, "Meat & Seafood")
	assert.Contains(t, p, "Freezer")
}

func TestBuildInstructionPromptUnitRules(t *testing.T) {
	p := BuildInstructionPrompt(ExtractRequest{})
	for _, rule := range []string{"-> g", "-> kg", "ltr, litre, liter -> l", "-> ml", "-> pcs", "dozen, dz, doz -> dozen"} {
		assert.Contains(t, p, rule)
	}
}

func TestBuildUserPrompt(t *testing.T) {
	assert.Equal(t, "Invoice text:\nMilk | 1l", BuildUserPrompt(Payload{Kind: PayloadText, Text: "Milk | 1l"}))
	assert.Contains(t, BuildUserPrompt(Payload{Kind: PayloadDocument, MediaType: "application/pdf", Filename: "a.pdf"}), "application/pdf document (a.pdf)")
}

func TestBuildItemJSONSchemaIsValidSchema(t *testing.T) {
	s := BuildItemJSONSchema([]string{"Dairy"}, []string{"Fridge"})
	assert.NoError(t, ValidateJSONAgainstSchema(s, []byte(`{"name":"Milk","quantity":1,"unit":"l","location":"Fridge","category":"Dairy"}`)))
	assert.Error(t, ValidateJSONAgainstSchema(s, []byte(`{"name":"Milk","quantity":1,"unit":"l","location":"Garage"}`)))
}
