package llm

import (
	"strings"

	"github.com/joseph-ayodele/pantry-tracker/constants"
)

// BuildInstructionPrompt composes the fixed extraction instructions: the item schema,
// the allowed category and location vocabularies, and the formatting rules.
func BuildInstructionPrompt(req ExtractRequest) string {
	categories := req.Categories
	if len(categories) == 0 {
		categories = constants.DefaultCategoryNames()
	}
	locations := req.Locations
	if len(locations) == 0 {
		locations = constants.Locations()
	}

	parts := []string{
		"You are reading a grocery invoice.",
		"Extract every purchased food or household item and return them as a JSON array.",
		"Each element of the array must match this JSON Schema:\n" + mustJSON(BuildItemJSONSchema(categories, locations)),
		"Allowed categories: " + strings.Join(categories, ", ") + ". Pick the closest one; use null when none fits.",
		"Allowed storage locations: " + strings.Join(locations, ", ") + ". Choose where the item is normally kept: " +
			constants.LocationFridge + " for dairy, fresh meat and most fresh produce; " +
			constants.LocationFreezer + " for frozen goods; " +
			constants.LocationPantry + " for dry, canned and packaged goods.",
		"Standardise units: gm, gram, grams -> g; kgs, kilogram -> kg; ltr, litre, liter -> l; millilitre -> ml; nos, no, pc, piece, pieces -> pcs; dozen, dz, doz -> dozen.",
		"quantity is the whole number of units bought. When the invoice shows a weight or volume such as 1kg, use quantity 1 and that unit.",
		"Put the amount paid for the line in 'price' as a plain number without currency symbols. Omit price if it is not shown.",
		"Put the brand in 'brand' when it is printed; otherwise null.",
		"Ignore taxes, discounts, delivery charges, subtotals and totals.",
		"If no items are found, return [].",
		"Return ONLY the JSON array. No markdown, no commentary.",
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt returns the user turn: invoice text substituted inline, or a short
// note that the document is attached.
func BuildUserPrompt(p Payload) string {
	if p.Kind == PayloadDocument {
		var b strings.Builder
		b.WriteString("The invoice is attached as a ")
		b.WriteString(p.MediaType)
		b.WriteString(" document")
		if p.Filename != "" {
			b.WriteString(" (")
			b.WriteString(p.Filename)
			b.WriteString(")")
		}
		b.WriteString(". Extract the items from it.")
		return b.String()
	}
	return "Invoice text:\n" + p.Text
}
