package constants

import "strings"

// Accepted invoice document media type.
const InvoiceMediaType = "application/pdf"

// MaxUploadBytes bounds an uploaded invoice document (10 MiB).
const MaxUploadBytes int64 = 10 << 20

// MaxInvoiceTextBytes bounds pasted invoice text.
const MaxInvoiceTextBytes = 200 << 10

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MediaTypeForExt maps a local file extension to the media type sent to the extraction service.
// Only PDF is a document; everything else is read as text.
func MediaTypeForExt(ext string) (mediaType string, isDocument bool) {
	switch NormalizeExt(ext) {
	case "pdf":
		return InvoiceMediaType, true
	default:
		return "text/plain", false
	}
}
