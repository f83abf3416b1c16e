package llm

import "context"

// PayloadKind tells the extraction client how to submit a Payload.
type PayloadKind int

const (
	PayloadDocument PayloadKind = iota + 1
	PayloadText
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadDocument:
		return "document"
	case PayloadText:
		return "text"
	default:
		return "unknown"
	}
}

// Payload is a normalized invoice ready for submission.
// Documents carry base64 Data tagged with MediaType; text carries Text.
type Payload struct {
	Kind      PayloadKind
	MediaType string
	Data      string
	Text      string
	Filename  string
}

// ExtractRequest is one extraction call: the payload plus the vocabularies
// the model must choose from.
type ExtractRequest struct {
	Payload    Payload
	Categories []string
	Locations  []string
}

// ItemExtractor is the interface the invoice pipeline depends on.
// Implementations return the parsed JSON array (untrusted element shape) and the
// raw model text. Failures are ExtractionServiceError or MalformedExtractionOutput.
type ItemExtractor interface {
	ExtractItems(ctx context.Context, req ExtractRequest) ([]any, []byte /*rawText*/, error)
}
