package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

var priceNoise = strings.NewReplacer("₹", "", "$", "", "€", "", "£", "", "Rs.", "", "Rs", "", "INR", "", ",", "", " ", "")

// SanitizeCandidates coerces each element of an extracted array into a CandidateItem.
// Rows are handled independently: a row without a usable name is dropped and reported
// in dropped; nothing here returns an error. An empty result is valid.
func SanitizeCandidates(raw []any) (items []entity.CandidateItem, dropped []string) {
	items = make([]entity.CandidateItem, 0, len(raw))
	for i, el := range raw {
		m, ok := el.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("row %d: not an object", i))
			continue
		}
		item, ok := sanitizeRow(m)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("row %d: missing name", i))
			continue
		}
		items = append(items, item)
	}
	return items, dropped
}

func sanitizeRow(m map[string]any) (entity.CandidateItem, bool) {
	name, _ := scalarString(m["name"])
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.CandidateItem{}, false
	}

	return entity.CandidateItem{
		Name:     truncate(name, constants.MaxNameLen),
		Brand:    optionalString(m["brand"], constants.MaxBrandLen),
		Quantity: coerceQuantity(m["quantity"]),
		Unit:     stringOrDefault(m["unit"], constants.MaxUnitLen, constants.DefaultUnit),
		Location: stringOrDefault(m["location"], constants.MaxLocationLen, constants.DefaultLocation),
		Category: optionalString(m["category"], 0),
		Notes:    optionalString(m["notes"], 0),
		Status:   string(constants.StatusFresh),
		Price:    coercePrice(m["price"]),
	}, true
}

// scalarString renders strings, numbers and booleans; objects, arrays and null are absent.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func optionalString(v any, max int) *string {
	s, ok := scalarString(v)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if max > 0 {
		s = truncate(s, max)
	}
	return &s
}

func stringOrDefault(v any, max int, def string) string {
	if s := optionalString(v, max); s != nil {
		return *s
	}
	return def
}

// coerceQuantity floors numeric values; anything below 1 or non-numeric becomes 1.
func coerceQuantity(v any) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return constants.DefaultQuantity
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return constants.DefaultQuantity
		}
		f = parsed
	default:
		return constants.DefaultQuantity
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return constants.DefaultQuantity
	}
	f = math.Floor(f)
	if f < 1 {
		return constants.DefaultQuantity
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// coercePrice accepts numbers or numeric strings with currency noise; non-positive is absent.
func coercePrice(v any) *decimal.Decimal {
	var d decimal.Decimal
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		d = decimal.NewFromFloat(t)
	case json.Number:
		parsed, err := decimal.NewFromString(t.String())
		if err != nil {
			return nil
		}
		d = parsed
	case string:
		parsed, err := decimal.NewFromString(priceNoise.Replace(strings.TrimSpace(t)))
		if err != nil {
			return nil
		}
		d = parsed
	default:
		return nil
	}
	if !d.IsPositive() {
		return nil
	}
	d = d.Round(2)
	return &d
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
