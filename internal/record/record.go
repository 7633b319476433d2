package record

import (
	"strings"
	"time"
)

// Field names the extractor resolves, in output-column order.
const (
	FieldDate         = "date"
	FieldPIN          = "pin"
	FieldTaxpayerName = "taxpayer_name"
	FieldNoticeTitle  = "notice_title"
	FieldTotalTax     = "total_tax"
	FieldYear         = "year"
	FieldKRAStation   = "kra_station"
	FieldOfficerName  = "officer_name"
)

// FieldOrder is the canonical column order for serialized records.
var FieldOrder = []string{
	FieldDate,
	FieldPIN,
	FieldTaxpayerName,
	FieldNoticeTitle,
	FieldTotalTax,
	FieldYear,
	FieldKRAStation,
	FieldOfficerName,
}

// FieldValue holds one extracted field. Absence is a valid terminal state,
// not an error: Present=false serializes as the empty string.
type FieldValue struct {
	Raw        string // matched text as found in the document
	Normalized string // canonical representation, or Raw when Parsed=false
	Present    bool
	Parsed     bool // false means the value was kept raw (normalization warning)
}

// Value returns the serialized form: normalized when parsed, raw otherwise,
// empty when absent.
func (v FieldValue) Value() string {
	if !v.Present {
		return ""
	}
	if v.Parsed && v.Normalized != "" {
		return v.Normalized
	}
	return v.Raw
}

// ExtractionRecord aggregates the eight extracted fields for one document.
type ExtractionRecord struct {
	Fields         map[string]FieldValue
	SourceFilename string
	Method         string // dominant acquisition method, e.g. "pdf-text"
	ExtractedAt    time.Time

	rawText string // retained for fallback key computation
}

// New returns a record with all eight fields initialized to absent.
func New(sourceFilename string) *ExtractionRecord {
	fields := make(map[string]FieldValue, len(FieldOrder))
	for _, name := range FieldOrder {
		fields[name] = FieldValue{}
	}
	return &ExtractionRecord{
		Fields:         fields,
		SourceFilename: sourceFilename,
	}
}

// Set records a field value.
func (r *ExtractionRecord) Set(name string, v FieldValue) {
	r.Fields[name] = v
}

// Get returns the field value, or an absent value for unknown names.
func (r *ExtractionRecord) Get(name string) FieldValue {
	return r.Fields[name]
}

// SetRawText retains the acquired text for fallback key computation.
func (r *ExtractionRecord) SetRawText(text string) {
	r.rawText = text
}

// PresentCount returns the number of non-absent fields.
func (r *ExtractionRecord) PresentCount() int {
	n := 0
	for _, name := range FieldOrder {
		if r.Fields[name].Present {
			n++
		}
	}
	return n
}

// Values returns the serialized field values in canonical column order.
func (r *ExtractionRecord) Values() []string {
	out := make([]string, 0, len(FieldOrder))
	for _, name := range FieldOrder {
		out = append(out, r.Fields[name].Value())
	}
	return out
}

// Complete reports whether all eight fields are present.
func (r *ExtractionRecord) Complete() bool {
	return r.PresentCount() == len(FieldOrder)
}

// Equal reports whether two records carry identical serialized field values.
func (r *ExtractionRecord) Equal(other *ExtractionRecord) bool {
	for _, name := range FieldOrder {
		if r.Fields[name].Value() != other.Fields[name].Value() {
			return false
		}
	}
	return true
}

func trimUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
