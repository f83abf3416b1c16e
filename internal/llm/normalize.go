package llm

import (
	"encoding/base64"
	"mime"
	"strings"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
)

// Input is a raw upload: either a binary document or pasted text.
type Input struct {
	Document  []byte
	MediaType string
	Filename  string
	Text      string
}

// Normalize turns an upload into a Payload. Documents win over text when both are set.
// maxBytes <= 0 uses constants.MaxUploadBytes.
func Normalize(in Input, maxBytes int64) (Payload, error) {
	if maxBytes <= 0 {
		maxBytes = constants.MaxUploadBytes
	}

	if len(in.Document) > 0 {
		if int64(len(in.Document)) > maxBytes {
			return Payload{}, common.ValidationErrorf("file size must be at most %d MB", maxBytes>>20)
		}
		mt := baseMediaType(in.MediaType)
		if mt != constants.InvoiceMediaType {
			return Payload{}, common.ValidationErrorf("only PDF files are supported (got %q)", in.MediaType)
		}
		return Payload{
			Kind:      PayloadDocument,
			MediaType: mt,
			Data:      base64.StdEncoding.EncodeToString(in.Document),
			Filename:  strings.TrimSpace(in.Filename),
		}, nil
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Payload{}, common.ValidationErrorf("either a PDF file or invoice text is required")
	}
	if len(text) > constants.MaxInvoiceTextBytes {
		return Payload{}, common.ValidationErrorf("invoice text must be at most %d KB", constants.MaxInvoiceTextBytes>>10)
	}
	return Payload{Kind: PayloadText, MediaType: "text/plain", Text: text}, nil
}

func baseMediaType(v string) string {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return mt
}

// DataURL renders a document payload as a data: URL.
func (p Payload) DataURL() string {
	return "data:" + p.MediaType + ";base64," + p.Data
}
