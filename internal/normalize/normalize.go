// Package normalize canonicalizes extracted field values: textual dates to
// calendar dates, amounts to fixed two-decimal values, PINs to their known
// shape. Unparseable input is never coerced — callers keep the raw match and
// flag it unparsed.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	rePIN        = regexp.MustCompile(`^[A-Z]\d{9}[A-Z]$`)
	reCurrency   = regexp.MustCompile(`(?i)\b(?:KES|KSHS?\.?|SHILLINGS)\b`)
	reAmount     = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// CollapseWhitespace trims the value and collapses internal whitespace runs
// (OCR commonly splits tokens across lines) into single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// PIN validates a raw match against the KRA PIN shape: one letter, nine
// digits, one letter. Non-conforming values are returned upper-cased with
// ok=false so callers can retain them flagged low-confidence.
func PIN(raw string) (string, bool) {
	pin := strings.ToUpper(CollapseWhitespace(raw))
	pin = strings.ReplaceAll(pin, " ", "")
	return pin, rePIN.MatchString(pin)
}

// Amount strips thousands separators and currency markers and parses the
// value to two-decimal precision. Malformed input returns ok=false.
func Amount(raw string) (string, bool) {
	s := CollapseWhitespace(raw)
	s = reCurrency.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if !reAmount.MatchString(s) {
		return "", false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", false
	}
	return d.StringFixed(2), true
}

// Name collapses whitespace and, when titleCase is set, title-cases each
// word while leaving short all-caps runs (acronyms like "LTD" or initials)
// untouched. Names that are already mixed-case pass through unchanged apart
// from whitespace cleanup.
func Name(raw string, titleCase bool) string {
	name := CollapseWhitespace(raw)
	if !titleCase || name == "" {
		return name
	}
	words := strings.Fields(name)
	for i, w := range words {
		if isAcronym(w) {
			continue
		}
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// isAcronym treats short all-caps runs like "LTD", "KRA" or "P.O" as
// acronyms that must not be re-cased.
func isAcronym(w string) bool {
	trimmed := strings.Trim(w, ".,&()")
	if len(trimmed) < 2 || len(trimmed) > 3 {
		return false
	}
	for _, r := range trimmed {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	lower := strings.ToLower(w)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
