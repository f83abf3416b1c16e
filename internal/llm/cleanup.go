package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
)

var (
	reLeadingFence  = regexp.MustCompile("^```[A-Za-z0-9_-]*[ \t]*\r?\n?")
	reTrailingFence = regexp.MustCompile("\r?\n?[ \t]*```$")
)

// StripCodeFences removes a leading ``` / ```json marker and a trailing ``` marker.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = reLeadingFence.ReplaceAllString(s, "")
	s = reTrailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseItemArray turns free-form model text into a JSON array. Element shapes are
// not checked. When the fence-stripped text is not an array, the outermost [...]
// span is tried once so leading or trailing prose does not sink the batch.
func ParseItemArray(text string) ([]any, error) {
	cleaned := StripCodeFences(text)
	if cleaned == "" {
		return nil, common.MalformedOutputError(errors.New("empty response"))
	}

	arr, err := decodeArray(cleaned)
	if err == nil {
		return arr, nil
	}
	if span := outermostArray(cleaned); span != "" && span != cleaned {
		if arr, spanErr := decodeArray(span); spanErr == nil {
			return arr, nil
		}
	}
	return nil, common.MalformedOutputError(err)
}

func decodeArray(s string) ([]any, error) {
	if err := ValidateJSONAgainstSchema(ItemListEnvelopeSchema(), []byte(s)); err != nil {
		return nil, err
	}
	var arr []any
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return nil, err
	}
	return arr, nil
}

func outermostArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
