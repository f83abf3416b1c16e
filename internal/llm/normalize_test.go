package llm

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
)

func TestNormalizeDocument(t *testing.T) {
	doc := []byte("%PDF-1.4 fake")
	p, err := Normalize(Input{Document: doc, MediaType: "application/pdf", Filename: "bill.pdf"}, 0)
	require.NoError(t, err)

	assert.Equal(t, PayloadDocument, p.Kind)
	assert.Equal(t, "application/pdf", p.MediaType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(doc), p.Data)
	assert.Equal(t, "bill.pdf", p.Filename)
	assert.Equal(t, "data:application/pdf;base64,"+p.Data, p.DataURL())
}

func TestNormalizeDocumentMediaTypeParams(t *testing.T) {
	p, err := Normalize(Input{Document: []byte("x"), MediaType: "application/PDF; name=a.pdf"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", p.MediaType)
}

func TestNormalizeText(t *testing.T) {
	p, err := Normalize(Input{Text: "  Tomatoes | 1kg | ₹30 \n"}, 0)
	require.NoError(t, err)
	assert.Equal(t, PayloadText, p.Kind)
	assert.Equal(t, "Tomatoes | 1kg | ₹30", p.Text)
	assert.Empty(t, p.Data)
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		max  int64
	}{
		{"nothing supplied", Input{}, 0},
		{"blank text", Input{Text: "   "}, 0},
		{"wrong media type", Input{Document: []byte("img"), MediaType: "image/png"}, 0},
		{"missing media type", Input{Document: []byte("img")}, 0},
		{"oversized", Input{Document: bytes.Repeat([]byte("a"), 11), MediaType: "application/pdf"}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.in, tt.max)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrValidation))
			assert.Equal(t, common.CodeValidation, common.CodeOf(err))
		})
	}
}

func TestNormalizeSizeBoundInclusive(t *testing.T) {
	_, err := Normalize(Input{Document: bytes.Repeat([]byte("a"), 10), MediaType: "application/pdf"}, 10)
	assert.NoError(t, err)
}
