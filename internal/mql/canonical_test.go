package mql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlmongo/internal/literal"
)

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, `MongoDB Query: db.students.find({})`, Canonicalize(" db.students.find({});\n"))
	assert.Equal(t, `MongoDB Query: db.students.find()`, Canonicalize("db.students.find()"))
}

func TestParseCanonical(t *testing.T) {
	q, err := ParseCanonical(`MongoDB Query: db.students.find({"age": {"$gt": 20}}, {"name": 1});`)
	require.NoError(t, err)

	assert.Equal(t, "students", q.Collection)
	assert.Equal(t, `{"age": {"$gt": 20}}`, literal.Format(q.Filter))
	assert.Equal(t, `{"name": 1, "_id": 0}`, literal.Format(q.Projection))
}

func TestParseCanonicalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
	}{
		{"missing prefix", `db.students.find({})`, KindInvalidQueryFormat},
		{"prefix without db", `MongoDB Query: students.find({})`, KindInvalidQueryFormat},
		{"empty", ``, KindInvalidQueryFormat},
		{"too few segments", `MongoDB Query: db.find({})`, KindMalformedQueryStructure},
		{"missing paren", `MongoDB Query: db.students.find`, KindMalformedQueryStructure},
		{"unbalanced paren", `MongoDB Query: db.students.find({"a": 1}`, KindMalformedQueryStructure},
		{"other method", `MongoDB Query: db.students.aggregate([])`, KindMalformedQueryStructure},
		{"chained call", `MongoDB Query: db.students.find({}).limit(5)`, KindMalformedQueryStructure},
		{"bad arguments", `MongoDB Query: db.students.find(42)`, KindMalformedArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCanonical(tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestCanonicalRoundTripThroughExtract(t *testing.T) {
	raw := "translator v2\nMongoDB: db.students.find({name: 'Bob'}, {'gpa': 1});\n"

	expr, ok := Extract(raw)
	require.True(t, ok)

	q, err := ParseCanonical(Canonicalize(expr))
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Bob"}`, literal.Format(q.Filter))
	assert.Equal(t, `{"gpa": 1, "_id": 0}`, literal.Format(q.Projection))
}

func TestCanonicalRoundTripDottedCollection(t *testing.T) {
	expr, ok := Extract("note: db.a.b.find({})")
	require.True(t, ok)

	text := Canonicalize(expr)
	assert.Equal(t, "MongoDB Query: db.a.b.find({})", text)

	q, err := ParseCanonical(text)
	require.NoError(t, err)
	assert.Equal(t, "a.b", q.Collection)
	assert.Equal(t, 0, q.Filter.Len())
}
