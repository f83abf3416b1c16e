package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n[{\"name\":\"Rice\"}]\n```", `[{"name":"Rice"}]`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"upper tag", "```JSON\n[]\n```", `[]`},
		{"no fence", `  [{"name":"Milk"}]  `, `[{"name":"Milk"}]`},
		{"fence same line", "```json[{\"a\":1}]```", `[{"a":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestParseItemArray(t *testing.T) {
	arr, err := ParseItemArray("```json\n[{\"name\":\"Rice\"}]\n```")
	require.NoError(t, err)
	require.Len(t, arr, 1)
	assert.Equal(t, map[string]any{"name": "Rice"}, arr[0])
}

func TestParseItemArraySurroundingProse(t *testing.T) {
	arr, err := ParseItemArray("Here are the items:\n```json\n[{\"name\":\"Tomatoes\"},{\"name\":\"Milk\"}]\n```\nLet me know!")
	require.NoError(t, err)
	assert.Len(t, arr, 2)
}

func TestParseItemArrayEmpty(t *testing.T) {
	arr, err := ParseItemArray("[]")
	require.NoError(t, err)
	assert.Empty(t, arr)
}

func TestParseItemArrayMalformed(t *testing.T) {
	for _, in := range []string{"", "not json", `{"name":"Rice"}`, "```json\n[{\"name\":\n```"} {
		_, err := ParseItemArray(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, common.ErrMalformedOutput), in)
		assert.Equal(t, common.CodeMalformedOutput, common.CodeOf(err))
	}
}
