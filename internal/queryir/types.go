package queryir

import (
	"fmt"

	"github.com/roach88/sqlmongo/internal/literal"
)

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "$eq"
	OpNe  Op = "$ne"
	OpGt  Op = "$gt"
	OpGte Op = "$gte"
	OpLt  Op = "$lt"
	OpLte Op = "$lte"
)

// Compare matches documents whose Field compares to Value under Op.
//
// Values only compare within a type class: numbers with numbers, strings
// with strings, booleans with booleans. A missing field equals null.
type Compare struct {
	Field string        // Dotted field path (e.g., "address.city")
	Op    Op            // Comparison operator
	Value literal.Value // Scalar literal (never Array or *Mapping)
}

func (Compare) predicateNode() {}

// In matches documents whose Field equals any of Values ($in).
// With Negate it matches documents whose Field equals none of them ($nin).
type In struct {
	Field  string
	Values []literal.Value
	Negate bool
}

func (In) predicateNode() {}

// Exists matches documents where Field is present (Want) or absent (!Want).
// A field holding null is present.
type Exists struct {
	Field string
	Want  bool
}

func (Exists) predicateNode() {}

// Regex matches string fields against Pattern.
// Options uses MongoDB letters; i, m and s are honoured.
type Regex struct {
	Field   string
	Pattern string
	Options string
}

func (Regex) predicateNode() {}

// And is true when all Predicates are true; empty And is true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or is true when any of Predicates is true.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Nor is true when none of Predicates is true.
type Nor struct {
	Predicates []Predicate
}

func (Nor) predicateNode() {}

// UnsupportedError reports a filter or projection construct outside the
// supported fragment.
type UnsupportedError struct {
	Field    string // Field path, empty for top-level operators
	Operator string // Offending operator or construct
	Reason   string
}

func (e *UnsupportedError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("field %q: unsupported %s: %s", e.Field, e.Operator, e.Reason)
	}
	return fmt.Sprintf("unsupported %s: %s", e.Operator, e.Reason)
}
