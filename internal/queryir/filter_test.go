package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlmongo/internal/literal"
)

func decode(t *testing.T, text string) *literal.Mapping {
	t.Helper()
	m, err := literal.DecodeMapping(text)
	require.NoError(t, err)
	return m
}

func TestFromFilterEmpty(t *testing.T) {
	pred, err := FromFilter(literal.NewMapping())
	require.NoError(t, err)
	assert.Equal(t, And{}, pred)

	pred, err = FromFilter(nil)
	require.NoError(t, err)
	assert.Equal(t, And{}, pred)
}

func TestFromFilterImplicitEquality(t *testing.T) {
	pred, err := FromFilter(decode(t, `{"name": "Alice"}`))
	require.NoError(t, err)
	assert.Equal(t, Compare{Field: "name", Op: OpEq, Value: literal.String("Alice")}, pred)
}

func TestFromFilterOperators(t *testing.T) {
	pred, err := FromFilter(decode(t, `{"age": {"$gt": 20, "$lte": 30}, "city": {"$in": ["Paris", "Lyon"]}}`))
	require.NoError(t, err)

	assert.Equal(t, And{Predicates: []Predicate{
		And{Predicates: []Predicate{
			Compare{Field: "age", Op: OpGt, Value: literal.Int(20)},
			Compare{Field: "age", Op: OpLte, Value: literal.Int(30)},
		}},
		In{Field: "city", Values: []literal.Value{literal.String("Paris"), literal.String("Lyon")}},
	}}, pred)
}

func TestFromFilterLogical(t *testing.T) {
	pred, err := FromFilter(decode(t, `{"$or": [{"a": 1}, {"b": {"$exists": false}}], "$nor": [{"c": null}]}`))
	require.NoError(t, err)

	assert.Equal(t, And{Predicates: []Predicate{
		Or{Predicates: []Predicate{
			Compare{Field: "a", Op: OpEq, Value: literal.Int(1)},
			Exists{Field: "b", Want: false},
		}},
		Nor{Predicates: []Predicate{
			Compare{Field: "c", Op: OpEq, Value: literal.Null{}},
		}},
	}}, pred)
}

func TestFromFilterRegex(t *testing.T) {
	pred, err := FromFilter(decode(t, `{"name": {"$regex": "^al", "$options": "i"}}`))
	require.NoError(t, err)
	assert.Equal(t, Regex{Field: "name", Pattern: "^al", Options: "i"}, pred)
}

func TestFromFilterNin(t *testing.T) {
	pred, err := FromFilter(decode(t, `{"grade": {"$nin": ["A", "B"]}}`))
	require.NoError(t, err)
	assert.Equal(t, In{Field: "grade", Values: []literal.Value{literal.String("A"), literal.String("B")}, Negate: true}, pred)
}

func TestFromFilterUnsupported(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"embedded document", `{"address": {"city": "Paris"}}`},
		{"mixed operator document", `{"address": {"$gt": 1, "city": "Paris"}}`},
		{"array equality", `{"tags": ["a", "b"]}`},
		{"unknown operator", `{"tags": {"$elemMatch": {"a": 1}}}`},
		{"top-level operator", `{"$where": "this.a > 1"}`},
		{"document operand", `{"a": {"$eq": {"b": 1}}}`},
		{"nested in logical", `{"$and": [{"a": {"$not": {"$gt": 1}}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromFilter(decode(t, tt.input))
			require.Error(t, err)

			var unsupported *UnsupportedError
			assert.ErrorAs(t, err, &unsupported)
		})
	}
}

func TestFromFilterInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty or", `{"$or": []}`, "$or must be a non-empty array"},
		{"or not array", `{"$or": {"a": 1}}`, "$or must be a non-empty array"},
		{"or element not mapping", `{"$and": [1]}`, "$and[0]: expected mapping, got int"},
		{"in not array", `{"a": {"$in": 1}}`, `field "a": $in needs an array`},
		{"regex not string", `{"a": {"$regex": 1}}`, "$regex needs a string"},
		{"options alone", `{"a": {"$options": "i"}}`, "$options without $regex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromFilter(decode(t, tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidate(t *testing.T) {
	result := Validate(Compare{Field: "name", Op: OpEq, Value: literal.String("x")})
	assert.True(t, result.IsPortable)
	assert.Empty(t, result.Warnings)

	result = Validate(And{Predicates: []Predicate{
		Compare{Field: "address.city", Op: OpEq, Value: literal.String("Paris")},
		In{Field: "address.city", Values: []literal.Value{literal.String("Lyon")}},
		Regex{Field: "name", Pattern: "a(", Options: "ix"},
	}})
	assert.False(t, result.IsPortable)
	require.Len(t, result.Warnings, 3)
	assert.Contains(t, result.Warnings[0], "dotted path")
	assert.Contains(t, result.Warnings[1], "option 'x' is ignored")
	assert.Contains(t, result.Warnings[2], "does not compile")
}

func TestRegexFlags(t *testing.T) {
	assert.Equal(t, "", RegexFlags(""))
	assert.Equal(t, "(?i)", RegexFlags("i"))
	assert.Equal(t, "(?ims)", RegexFlags("xsmi"))
}
