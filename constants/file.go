package constants

import "strings"

// Format is the declared document format for an acquisition job.
type Format string

// Stable values (store these exact strings in reports).
const (
	FormatPDF  Format = "PDF"
	FormatDOCX Format = "DOCX"
	FormatDOC  Format = "DOC"
)

// AllowedExtensions holds the accepted file extensions for notice ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"doc":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to its Format, or "" if unsupported.
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "pdf":
		return FormatPDF
	case "docx":
		return FormatDOCX
	case "doc":
		return FormatDOC
	default:
		return ""
	}
}
