package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date formats seen on KRA notices, most specific first:
//
//	26TH AUGUST, 2025
//	26 AUG 2025 / 26 AUGUST 2025
//	26/08/2025 / 26-08-2025
var (
	reDateOrdinal = regexp.MustCompile(`(?i)^(\d{1,2})(?:ST|ND|RD|TH)?\s+([A-Z]{3,9})\.?,?\s*(\d{4})$`)
	reDateNumeric = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})$`)
)

var months = map[string]time.Month{
	"JAN": time.January, "JANUARY": time.January,
	"FEB": time.February, "FEBRUARY": time.February,
	"MAR": time.March, "MARCH": time.March,
	"APR": time.April, "APRIL": time.April,
	"MAY": time.May,
	"JUN": time.June, "JUNE": time.June,
	"JUL": time.July, "JULY": time.July,
	"AUG": time.August, "AUGUST": time.August,
	"SEP": time.September, "SEPT": time.September, "SEPTEMBER": time.September,
	"OCT": time.October, "OCTOBER": time.October,
	"NOV": time.November, "NOVEMBER": time.November,
	"DEC": time.December, "DECEMBER": time.December,
}

// Date parses any of the known notice date formats into the canonical
// YYYY-MM-DD representation. Numeric dates are read day-first.
func Date(raw string) (string, bool) {
	s := CollapseWhitespace(raw)

	if m := reDateOrdinal.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := months[strings.ToUpper(m[2])]
		if !ok {
			return "", false
		}
		year, _ := strconv.Atoi(m[3])
		return formatDate(year, month, day)
	}

	if m := reDateNumeric.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 {
			return "", false
		}
		return formatDate(year, time.Month(month), day)
	}

	return "", false
}

func formatDate(year int, month time.Month, day int) (string, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// reject overflowed dates like 31 FEBRUARY
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day), true
}
