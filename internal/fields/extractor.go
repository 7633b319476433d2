// Package fields resolves the eight notice fields from acquired text using
// an ordered, data-driven pattern-rule table. Extraction never fails: every
// field independently resolves to a value or to absent.
package fields

import (
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/kra-data-tools/notice-tracker/constants"
	"github.com/kra-data-tools/notice-tracker/internal/acquire"
	"github.com/kra-data-tools/notice-tracker/internal/normalize"
	"github.com/kra-data-tools/notice-tracker/internal/record"
)

type Extractor struct {
	rules  map[string][]Rule // field -> rules sorted by priority
	logger *slog.Logger
}

func NewExtractor(rules []Rule, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if rules == nil {
		rules = defaultRules()
	}
	byField := make(map[string][]Rule)
	for _, r := range rules {
		byField[r.Field] = append(byField[r.Field], r)
	}
	for field := range byField {
		sort.SliceStable(byField[field], func(i, j int) bool {
			return byField[field][i].Priority < byField[field][j].Priority
		})
	}
	return &Extractor{rules: byField, logger: logger}
}

// Extract applies the rule chains to the document text and returns the
// aggregated record. A field with no matching rule is recorded as absent,
// never as an error; absent fields do not block the remaining seven.
func (e *Extractor) Extract(text acquire.ExtractedText) *record.ExtractionRecord {
	rec := record.New(text.SourcePath)
	rec.SetRawText(text.Text())
	rec.Method = text.Method()
	rec.ExtractedAt = time.Now().UTC()

	document := text.Text()
	lastSegment := text.LastSegment()

	for _, field := range record.FieldOrder {
		raw, matched := e.firstMatch(field, document, lastSegment)
		if !matched {
			continue
		}
		rec.Set(field, normalizeField(field, raw))
	}

	// Tax assessments are typically for the year before the notice date.
	e.fallbackYear(rec)

	e.logger.Debug("fields.extracted",
		"source", text.SourcePath,
		"present", rec.PresentCount(),
	)
	return rec
}

// firstMatch walks the field's rule chain in priority order and stops at the
// first pattern whose capture passes validation.
func (e *Extractor) firstMatch(field, document, lastSegment string) (string, bool) {
	for _, rule := range e.rules[field] {
		scope := document
		if rule.Scope == ScopeLastSegment {
			scope = lastSegment
		}
		m := rule.Pattern.FindStringSubmatch(scope)
		if m == nil {
			continue
		}
		captured := m[0]
		if len(m) > 1 {
			captured = m[1]
		}
		if rule.Validate != nil && !rule.Validate(captured) {
			continue
		}
		return captured, true
	}
	return "", false
}

// normalizeField canonicalizes the raw match for its field. Unparseable
// values are retained raw with Parsed=false (a normalization warning, not a
// failure).
func normalizeField(field, raw string) record.FieldValue {
	v := record.FieldValue{Raw: normalize.CollapseWhitespace(raw), Present: true}
	switch field {
	case record.FieldDate:
		v.Normalized, v.Parsed = normalize.Date(raw)
	case record.FieldPIN:
		v.Normalized, v.Parsed = normalize.PIN(raw)
	case record.FieldTotalTax:
		v.Normalized, v.Parsed = normalize.Amount(raw)
	case record.FieldOfficerName:
		v.Normalized = normalize.Name(raw, true)
		v.Parsed = true
	case record.FieldKRAStation:
		station, known := constants.CanonicalizeStation(v.Raw)
		v.Normalized = station
		v.Parsed = known || station != ""
	default:
		v.Normalized = normalize.CollapseWhitespace(raw)
		v.Parsed = true
	}
	return v
}

// fallbackYear derives year = notice year - 1 when no explicit tax-year
// mention matched but the date did.
func (e *Extractor) fallbackYear(rec *record.ExtractionRecord) {
	if rec.Get(record.FieldYear).Present {
		return
	}
	date := rec.Get(record.FieldDate)
	if !date.Present || !date.Parsed || len(date.Normalized) < 4 {
		return
	}
	year, err := strconv.Atoi(date.Normalized[:4])
	if err != nil {
		return
	}
	taxYear := strconv.Itoa(year - 1)
	rec.Set(record.FieldYear, record.FieldValue{
		Raw:        taxYear,
		Normalized: taxYear,
		Present:    true,
		Parsed:     true,
	})
}
