package queryir

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationResult reports where the embedded store's evaluation of a
// predicate may differ from MongoDB's.
type ValidationResult struct {
	// IsPortable is true when the predicate evaluates identically on both stores.
	IsPortable bool

	// Warnings lists the divergent constructs. Empty when IsPortable is true.
	Warnings []string
}

// Validate checks p for constructs the embedded store evaluates differently.
//
// Divergences:
//  1. Dotted paths do not traverse arrays (MongoDB matches any element)
//  2. Regex options other than i, m and s are ignored
//  3. Regex patterns must be valid RE2 syntax
//
// Validate is a pure function with no side effects.
func Validate(p Predicate) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validatePredicate(p)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
	seen     map[string]bool
}

func (v *validator) addWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if v.seen == nil {
		v.seen = make(map[string]bool)
	}
	if v.seen[msg] {
		return
	}
	v.seen[msg] = true
	v.warnings = append(v.warnings, msg)
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		return
	case Compare:
		v.validateField(pred.Field)
	case In:
		v.validateField(pred.Field)
	case Exists:
		v.validateField(pred.Field)
	case Regex:
		v.validateField(pred.Field)
		v.validateRegex(pred)
	case And:
		v.validateAll(pred.Predicates)
	case Or:
		v.validateAll(pred.Predicates)
	case Nor:
		v.validateAll(pred.Predicates)
	default:
		v.addWarning("Unknown predicate type: %T - evaluation cannot be verified", p)
	}
}

func (v *validator) validateAll(preds []Predicate) {
	for _, p := range preds {
		v.validatePredicate(p)
	}
}

func (v *validator) validateField(field string) {
	if strings.Contains(field, ".") {
		v.addWarning("Field '%s' uses a dotted path - array elements along the path are not traversed", field)
	}
}

func (v *validator) validateRegex(r Regex) {
	for _, opt := range r.Options {
		if !strings.ContainsRune("ims", opt) {
			v.addWarning("Field '%s' regex option '%c' is ignored", r.Field, opt)
		}
	}
	if _, err := regexp.Compile(r.Pattern); err != nil {
		v.addWarning("Field '%s' regex does not compile: %v", r.Field, err)
	}
}

// RegexFlags returns the RE2 inline flag prefix for MongoDB options,
// keeping only i, m and s.
func RegexFlags(options string) string {
	var flags strings.Builder
	for _, opt := range "ims" {
		if strings.ContainsRune(options, opt) {
			flags.WriteRune(opt)
		}
	}
	if flags.Len() == 0 {
		return ""
	}
	return "(?" + flags.String() + ")"
}
