package fields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kra-data-tools/notice-tracker/constants"
	"github.com/kra-data-tools/notice-tracker/internal/record"
)

// Scope selects the text a rule is evaluated against.
type Scope string

const (
	// ScopeDocument matches against the whole document text.
	ScopeDocument Scope = "document"
	// ScopeLastSegment matches only the final page/section — the notices
	// place the signature block there.
	ScopeLastSegment Scope = "last_segment"
)

// Rule is one candidate pattern for a field. Rules are evaluated in priority
// order (lowest number first) and the first match wins: once a well-formed
// PIN/date/amount pattern matches, looser patterns that risk false positives
// are never tried.
type Rule struct {
	Field    string
	Priority int
	Scope    Scope
	Pattern  *regexp.Regexp
	Validate func(match string) bool // optional post-match check; nil accepts all
}

var (
	rePINShape  = regexp.MustCompile(`^[A-Za-z]\d{9}[A-Za-z]$`)
	reFourDigit = regexp.MustCompile(`\d{4}`)
)

// defaultRules is the built-in rule table, ported from the notice corpus.
// Matching is case-insensitive and tolerant of whitespace/line breaks: OCR
// commonly splits tokens across lines.
func defaultRules() []Rule {
	stations := constants.StationAlternation()
	return []Rule{
		// date: textual forms with ordinal suffixes first, numeric last
		{record.FieldDate, 1, ScopeDocument, regexp.MustCompile(`(?i)(\d{1,2}(?:ST|ND|RD|TH)\s+[A-Z]+,?\s+\d{4})`), nil},
		{record.FieldDate, 2, ScopeDocument, regexp.MustCompile(`(?i)(\d{1,2}\s+[A-Z]{3,9}\.?,?\s*\d{4})`), nil},
		{record.FieldDate, 3, ScopeDocument, regexp.MustCompile(`(\d{1,2}[-/]\d{1,2}[-/]\d{4})`), nil},

		// pin: labelled forms before the bare shape
		{record.FieldPIN, 1, ScopeDocument, regexp.MustCompile(`(?i)PIN[:\s]*([A-Z]\d{9}[A-Z])`), validPIN},
		{record.FieldPIN, 2, ScopeDocument, regexp.MustCompile(`(?i)P\.?I\.?N\.?[:\s]*([A-Z]\d{9}[A-Z])`), validPIN},
		{record.FieldPIN, 3, ScopeDocument, regexp.MustCompile(`(?i)\b([A-Z]\d{9}[A-Z])\b`), validPIN},

		// taxpayer_name: individual after PIN line, company suffixes, then
		// address-anchored fallbacks
		{record.FieldTaxpayerName, 1, ScopeDocument, regexp.MustCompile(`(?is)PIN[:\s]*[A-Z]\d{9}[A-Z][^\n]*\n\s*([A-Za-z][A-Za-z\s]+?),`), validTaxpayerName},
		{record.FieldTaxpayerName, 2, ScopeDocument, regexp.MustCompile(`(?i)([A-Z][A-Z\s&.,()-]+?(?:LIMITED|LTD|COMPANY|GROUP|CORPORATION|CORP|INC|ENTERPRISES|SERVICES))\s*(?:\n|$|P\.O\.)`), validTaxpayerName},
		{record.FieldTaxpayerName, 3, ScopeDocument, regexp.MustCompile(`(?is)PIN[:\s]*[A-Z]\d{9}[A-Z]\s*\n\s*([A-Z][A-Z\s&.,()-]{5,}?)\s*\n\s*P\.\s*O\.`), validTaxpayerName},
		{record.FieldTaxpayerName, 4, ScopeDocument, regexp.MustCompile(`(?is)([A-Z][A-Z\s&.,()LTD-]{10,}?)\s*\n\s*P\.\s*O\.\s*BOX`), validTaxpayerName},

		// notice_title: the RE: subject line
		{record.FieldNoticeTitle, 1, ScopeDocument, regexp.MustCompile(`(?i)RE:\s*([A-Z\s,\d]+TAX\s+PROCEDURES\s+ACT[^A-Z]*\d{4})`), nil},
		{record.FieldNoticeTitle, 2, ScopeDocument, regexp.MustCompile(`(?i)RE:\s*([A-Z\s,\d]+SECTION\s+\d+[^A-Z]*TAX[^A-Z]*ACT)`), nil},
		{record.FieldNoticeTitle, 3, ScopeDocument, regexp.MustCompile(`(?i)RE:\s*([A-Z][^\n]{10,150})`), nil},

		// total_tax: table label first, then demand phrasing, then amounts
		// with an explicit currency marker
		{record.FieldTotalTax, 1, ScopeDocument, regexp.MustCompile(`(?i)Total\s+Tax[:\s]+(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`), validAmount},
		{record.FieldTotalTax, 2, ScopeDocument, regexp.MustCompile(`(?i)Tax\s+Due[:\s]*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`), validAmount},
		{record.FieldTotalTax, 3, ScopeDocument, regexp.MustCompile(`(?i)Amount\s+Due[:\s]*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`), validAmount},
		{record.FieldTotalTax, 4, ScopeDocument, regexp.MustCompile(`(?i)(?:Total|Sum)[:\s]*(?:KES|Kshs?)?[:\s]*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`), validAmount},
		{record.FieldTotalTax, 5, ScopeDocument, regexp.MustCompile(`(?i)(?:pay|remit)[:\s]*(?:KES|Kshs?)?[:\s]*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`), validAmount},
		{record.FieldTotalTax, 6, ScopeDocument, regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+(?:\.\d{2})?)\s*(?:KES|Kshs?|shillings)\b`), validAmount},

		// year: explicit tax-year mentions only; the document-year-minus-one
		// fallback lives in the extractor
		{record.FieldYear, 1, ScopeDocument, regexp.MustCompile(`(?i)(?:tax\s+year|year\s+of\s+income|for\s+the\s+year)[:\s]*(\d{4})`), validYear},
		{record.FieldYear, 2, ScopeDocument, regexp.MustCompile(`(?is)(?:tax\s+year|income\s+year|assessment).{0,40}?(\d{4}[-–]\d{4})`), validYearRange},

		// kra_station
		{record.FieldKRAStation, 1, ScopeDocument, regexp.MustCompile(`(?i)([A-Z]{4,})\s+(?:STATION|OFFICE)`), nil},
		{record.FieldKRAStation, 2, ScopeDocument, regexp.MustCompile(`(?i)\b(` + stations + `)\b`), nil},
		{record.FieldKRAStation, 3, ScopeDocument, regexp.MustCompile(`(?i)(NORTH\s+RIFT|CENTRAL|COAST|WESTERN|EASTERN|NYANZA)\s+REGION`), nil},
		{record.FieldKRAStation, 4, ScopeDocument, regexp.MustCompile(`(?i)P\.?\s*O\.?\s*BOX\s+\d+[-–\s]*\d*[,\s]*([A-Z]{3,})`), nil},

		// officer_name: signature block sits on the final page, so every rule
		// scans only the last segment. These patterns stay case-sensitive:
		// the [A-Z][a-z]+ shape is what keeps all-caps boilerplate like
		// "COMMISSIONER OF DOMESTIC TAXES" from being mistaken for a name.
		{record.FieldOfficerName, 1, ScopeLastSegment, regexp.MustCompile(`Officer[:\s]*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\s*(?:\n|Contact|Tel|Phone|Email)`), validOfficerName},
		{record.FieldOfficerName, 2, ScopeLastSegment, regexp.MustCompile(`contact\s+(?:Mr\.?\s+)?([A-Z][a-z]+\s+[A-Z][a-z]+)\s+or`), validOfficerName},
		{record.FieldOfficerName, 3, ScopeLastSegment, regexp.MustCompile(`hesitate\s+to\s+contact\s+(?:Mr\.?\s+)?([A-Z][a-z]+\s+[A-Z][a-z]+)`), validOfficerName},
		{record.FieldOfficerName, 4, ScopeLastSegment, regexp.MustCompile(`(?s)Yours\s+faithfully,.*?\n\s*([A-Z][a-z]+\s+[A-Z][a-z]+)`), validOfficerName},
		{record.FieldOfficerName, 5, ScopeLastSegment, regexp.MustCompile(`Mr\.?\s+([A-Z][a-z]+\s+[A-Z][a-z]+)[:\s]*(?:on\s+)?(?:Tel|Email)`), validOfficerName},
		{record.FieldOfficerName, 6, ScopeLastSegment, regexp.MustCompile(`[Cc]ontact\s+(?:Mr\.?\s+)?([A-Z][a-z]+\s+[A-Z][a-z]+)`), validOfficerName},
	}
}

func validPIN(match string) bool {
	return rePINShape.MatchString(strings.ReplaceAll(strings.TrimSpace(match), " ", ""))
}

// validTaxpayerName accepts company names carrying a business suffix or
// plausible individual names (2-4 alphabetic words), mostly letters either way.
func validTaxpayerName(match string) bool {
	name := collapseSpaces(match)
	if len(name) < 5 || len(name) > 100 {
		return false
	}
	upper := strings.ToUpper(name)
	for _, kw := range []string{"LIMITED", "LTD", "COMPANY", "GROUP", "CORPORATION", "CORP", "INC", "ENTERPRISES", "SERVICES"} {
		if strings.Contains(upper, kw) {
			return letterRatio(name) > 0.7
		}
	}
	words := strings.Fields(name)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		if !isAlpha(w) {
			return false
		}
	}
	return letterRatio(name) > 0.7
}

// validOfficerName requires 2-4 alphabetic words of sane total length.
func validOfficerName(match string) bool {
	name := collapseSpaces(match)
	if len(name) < 5 || len(name) > 50 {
		return false
	}
	words := strings.Fields(name)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		if !isAlpha(w) {
			return false
		}
	}
	return true
}

func validYear(match string) bool {
	year, err := strconv.Atoi(strings.TrimSpace(match))
	return err == nil && year >= 2015 && year <= 2030
}

func validYearRange(match string) bool {
	first := reFourDigit.FindString(match)
	return first != "" && validYear(first)
}

// validAmount keeps candidates inside a sane tax range so stray reference
// numbers do not win.
func validAmount(match string) bool {
	s := strings.ReplaceAll(strings.TrimSpace(match), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v >= 1_000 && v <= 50_000_000
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return len(s) > 0
}

func letterRatio(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	n := 0
	for _, r := range s {
		if r == ' ' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			n++
		}
	}
	return float64(n) / float64(len(s))
}
