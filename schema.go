package auth

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Primitive types a Rule can require of a payload value. JSON numbers decode
// as float64 but integral Go values are accepted too.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

const unknownFieldMessage = "This field is not accepted for this route!"

// FieldErrors maps field names to their single validation message.
type FieldErrors map[string]string

// Rule declares the policy for one payload field. When a field fails, only
// Message is reported, regardless of which check rejected it.
type Rule struct {
	Type      string
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Email     bool
	URL       bool
	In        []any
	Message   string
}

// Schema is a declarative description of an inbound payload, one Rule per
// accepted field. Anything not listed here is rejected outright.
type Schema map[string]Rule

// Validate gates a payload against the schema. The returned map is empty for
// a valid payload; otherwise it holds exactly one message per failing field.
// Checks run deterministically: unknown fields first, then per field type,
// required, and the value rules in declaration order with first-fail wins.
// Values are never coerced; a type mismatch is an error, not a conversion.
func (s Schema) Validate(payload map[string]any) FieldErrors {
	errs := FieldErrors{}

	for key := range payload {
		if _, ok := s[key]; !ok {
			errs[key] = unknownFieldMessage
		}
	}

	for field, rule := range s {
		value, present := payload[field]

		if present && value != nil && !rule.typeMatches(value) {
			errs[field] = rule.Message
			continue
		}

		if rule.Required && isFalsy(value) {
			errs[field] = rule.Message
			continue
		}

		if !present || isFalsy(value) {
			continue
		}

		if err := validation.Validate(value, rule.valueRules()...); err != nil {
			errs[field] = rule.Message
		}
	}

	return errs
}

// valueRules assembles the ozzo rule chain for a present, type-correct value.
// ozzo stops at the first failing rule, which gives us first-fail semantics
// in declaration order: length, pattern, email, url, allowed set.
func (r Rule) valueRules() []validation.Rule {
	rules := []validation.Rule{}

	if r.MinLength > 0 || r.MaxLength > 0 {
		rules = append(rules, validation.Length(r.MinLength, r.MaxLength))
	}

	if r.Pattern != nil {
		rules = append(rules, validation.Match(r.Pattern))
	}

	if r.Email {
		rules = append(rules, is.Email)
	}

	if r.URL {
		rules = append(rules, is.URL)
	}

	if len(r.In) > 0 {
		rules = append(rules, validation.In(r.In...))
	}

	return rules
}

func (r Rule) typeMatches(value any) bool {
	switch r.Type {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		switch value.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case "":
		return true
	}
	return false
}

// isFalsy mirrors the truthiness test the validator applies to required
// fields: absent, nil, empty string, zero, and false all count as missing.
func isFalsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case float64:
		return v == 0
	case float32:
		return v == 0
	case int:
		return v == 0
	case int32:
		return v == 0
	case int64:
		return v == 0
	}
	return false
}
