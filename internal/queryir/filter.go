package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlmongo/internal/literal"
)

// FromFilter converts a filter mapping into a Predicate.
//
// Top-level entries are conjoined. An empty or nil filter yields And{},
// which matches every document. Unsupported constructs fail with
// *UnsupportedError; structurally invalid operator arguments fail with a
// plain error.
func FromFilter(filter *literal.Mapping) (Predicate, error) {
	var preds []Predicate
	for _, p := range filter.Pairs() {
		pred, err := fromEntry(p.Key, p.Value)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return conjoin(preds), nil
}

func fromEntry(key string, value literal.Value) (Predicate, error) {
	switch key {
	case "$and", "$or", "$nor":
		clauses, err := logicalClauses(key, value)
		if err != nil {
			return nil, err
		}
		switch key {
		case "$and":
			return And{Predicates: clauses}, nil
		case "$or":
			return Or{Predicates: clauses}, nil
		default:
			return Nor{Predicates: clauses}, nil
		}
	}
	if strings.HasPrefix(key, "$") {
		return nil, &UnsupportedError{Operator: key, Reason: "top-level operator not supported"}
	}
	if key == "" {
		return nil, fmt.Errorf("empty field name in filter")
	}

	switch v := value.(type) {
	case *literal.Mapping:
		if !isOperatorMapping(v) {
			return nil, &UnsupportedError{Field: key, Operator: "embedded document equality", Reason: "match nested fields with dotted paths instead"}
		}
		return fromOperators(key, v)
	case literal.Array:
		return nil, &UnsupportedError{Field: key, Operator: "array equality", Reason: "use $in to match one of several values"}
	default:
		return Compare{Field: key, Op: OpEq, Value: value}, nil
	}
}

func logicalClauses(op string, value literal.Value) ([]Predicate, error) {
	arr, ok := value.(literal.Array)
	if !ok || len(arr) == 0 {
		return nil, fmt.Errorf("%s must be a non-empty array", op)
	}

	clauses := make([]Predicate, 0, len(arr))
	for i, elem := range arr {
		m, ok := elem.(*literal.Mapping)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected mapping, got %s", op, i, literal.TypeName(elem))
		}
		pred, err := FromFilter(m)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", op, i, err)
		}
		clauses = append(clauses, pred)
	}
	return clauses, nil
}

// isOperatorMapping reports whether every key of m is an operator.
// A mapping mixing operators and plain keys is treated as a document.
func isOperatorMapping(m *literal.Mapping) bool {
	if m.Len() == 0 {
		return false
	}
	for _, k := range m.Keys() {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

func fromOperators(field string, ops *literal.Mapping) (Predicate, error) {
	var preds []Predicate
	for _, p := range ops.Pairs() {
		switch op := Op(p.Key); op {
		case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte:
			if err := requireScalar(field, p.Key, p.Value); err != nil {
				return nil, err
			}
			preds = append(preds, Compare{Field: field, Op: op, Value: p.Value})

		case "$in", "$nin":
			arr, ok := p.Value.(literal.Array)
			if !ok {
				return nil, fmt.Errorf("field %q: %s needs an array", field, p.Key)
			}
			for _, elem := range arr {
				if err := requireScalar(field, p.Key, elem); err != nil {
					return nil, err
				}
			}
			preds = append(preds, In{Field: field, Values: []literal.Value(arr), Negate: p.Key == "$nin"})

		case "$exists":
			preds = append(preds, Exists{Field: field, Want: truthy(p.Value)})

		case "$regex":
			pattern, ok := p.Value.(literal.String)
			if !ok {
				return nil, fmt.Errorf("field %q: $regex needs a string", field)
			}
			options := ""
			if o, found := ops.Get("$options"); found {
				s, ok := o.(literal.String)
				if !ok {
					return nil, fmt.Errorf("field %q: $options needs a string", field)
				}
				options = string(s)
			}
			preds = append(preds, Regex{Field: field, Pattern: string(pattern), Options: options})

		case "$options":
			if !ops.Has("$regex") {
				return nil, fmt.Errorf("field %q: $options without $regex", field)
			}

		default:
			return nil, &UnsupportedError{Field: field, Operator: p.Key, Reason: "operator not supported"}
		}
	}
	return conjoin(preds), nil
}

func requireScalar(field, op string, v literal.Value) error {
	switch v.(type) {
	case *literal.Mapping:
		return &UnsupportedError{Field: field, Operator: op, Reason: "embedded document operand"}
	case literal.Array:
		return &UnsupportedError{Field: field, Operator: op, Reason: "array operand"}
	}
	return nil
}

// truthy follows MongoDB's reading of flag values: false, 0 and null are false.
func truthy(v literal.Value) bool {
	switch val := v.(type) {
	case literal.Bool:
		return bool(val)
	case literal.Int:
		return val != 0
	case literal.Float:
		return val != 0
	case literal.Null, nil:
		return false
	default:
		return true
	}
}

func conjoin(preds []Predicate) Predicate {
	if len(preds) == 1 {
		return preds[0]
	}
	return And{Predicates: preds}
}
