package fields

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ruleFileSchema constrains user-supplied rule files before any pattern is
// compiled. Draft 2020-12 subset.
const ruleFileSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["rules"],
  "properties": {
    "rules": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["field", "priority", "pattern"],
        "properties": {
          "field": {
            "type": "string",
            "enum": ["date", "pin", "taxpayer_name", "notice_title", "total_tax", "year", "kra_station", "officer_name"]
          },
          "priority": {"type": "integer", "minimum": 1},
          "pattern": {"type": "string", "minLength": 1},
          "scope": {"type": "string", "enum": ["document", "last_segment"]},
          "validator": {"type": "string", "enum": ["pin", "taxpayer_name", "officer_name", "year", "year_range", "amount"]}
        }
      }
    }
  }
}`

var validators = map[string]func(string) bool{
	"pin":           validPIN,
	"taxpayer_name": validTaxpayerName,
	"officer_name":  validOfficerName,
	"year":          validYear,
	"year_range":    validYearRange,
	"amount":        validAmount,
}

type ruleFile struct {
	Rules []struct {
		Field     string `json:"field"`
		Priority  int    `json:"priority"`
		Pattern   string `json:"pattern"`
		Scope     string `json:"scope"`
		Validator string `json:"validator"`
	} `json:"rules"`
}

// LoadRules reads a JSON rule file, validates it against the schema, and
// compiles the patterns. Rules for a field replace that field's built-in
// chain; fields the file does not mention keep their defaults.
func LoadRules(path string) ([]Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules.schema.json", strings.NewReader(ruleFileSchema)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile("rules.schema.json")
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("rule file invalid: %w", err)
	}

	var rf ruleFile
	if err := json.Unmarshal(raw, &rf); err != nil {
		return nil, fmt.Errorf("decode rule file: %w", err)
	}

	overridden := map[string]bool{}
	var custom []Rule
	for _, r := range rf.Rules {
		pattern, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s/%d: %w", r.Field, r.Priority, err)
		}
		scope := ScopeDocument
		if r.Scope == string(ScopeLastSegment) {
			scope = ScopeLastSegment
		}
		custom = append(custom, Rule{
			Field:    r.Field,
			Priority: r.Priority,
			Scope:    scope,
			Pattern:  pattern,
			Validate: validators[r.Validator],
		})
		overridden[r.Field] = true
	}

	for _, r := range defaultRules() {
		if !overridden[r.Field] {
			custom = append(custom, r)
		}
	}
	return custom, nil
}

// DefaultRules exposes the built-in table, mostly for tests and docs.
func DefaultRules() []Rule {
	return defaultRules()
}
