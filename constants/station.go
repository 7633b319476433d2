package constants

import "strings"

// KnownStations lists KRA station towns recognized by the extractor, in the
// priority order patterns should try them. NAIROBI is deliberately excluded:
// it appears in the KRA headquarters letterhead of every notice.
var KnownStations = []string{
	"LODWAR", "MOMBASA", "KISUMU", "NAKURU", "ELDORET", "NYERI", "MERU",
	"MACHAKOS", "KITALE", "GARISSA", "ISIOLO", "MALINDI", "KILIFI", "EMBU",
	"THIKA", "KIAMBU", "KAKAMEGA", "KERICHO", "BOMET", "BUNGOMA", "WEBUYE",
	"MIGORI", "HOMABAY", "SIAYA", "BUSIA", "MARSABIT", "MANDERA", "WAJIR",
	"MOYALE", "KAPENGURIA", "MARALAL",
}

// StationAlternation returns the known stations joined for use inside a regexp.
func StationAlternation() string {
	return strings.Join(KnownStations, "|")
}

// CanonicalizeStation maps a raw station match to its canonical upper-case
// form, resolving region names to their station town.
func CanonicalizeStation(input string) (string, bool) {
	if input == "" {
		return "", false
	}
	normalized := strings.ToUpper(strings.TrimSpace(input))
	normalized = strings.TrimSuffix(normalized, " REGION")

	// region synonyms
	synonyms := map[string]string{
		"NORTH RIFT": "LODWAR",
		"NORTHRIFT":  "LODWAR",
		"COAST":      "MOMBASA",
		"NYANZA":     "KISUMU",
		"WESTERN":    "KAKAMEGA",
	}
	if station, ok := synonyms[normalized]; ok {
		return station, true
	}

	for _, station := range KnownStations {
		if normalized == station {
			return station, true
		}
	}

	// unknown but plausible station name: keep it, upper-cased
	if len(normalized) >= 3 {
		return normalized, false
	}
	return "", false
}
