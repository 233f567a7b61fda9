package mql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{
			name:     "bare call",
			input:    `db.students.find({"age": {"$gt": 20}})`,
			expected: `db.students.find({"age": {"$gt": 20}})`,
			ok:       true,
		},
		{
			name:     "surrounded by prose",
			input:    "Parsing...\nResult: db.students.find({name: Alice}, {name: 1});\nDone (ok)",
			expected: `db.students.find({name: Alice}, {name: 1})`,
			ok:       true,
		},
		{
			name:     "parens inside strings",
			input:    `db.notes.find({"text": "a (b))"}) trailing (x)`,
			expected: `db.notes.find({"text": "a (b))"})`,
			ok:       true,
		},
		{
			name:     "nested parens",
			input:    `out: db.t.find({"a": "(1)"}, {}) and db.u.find()`,
			expected: `db.t.find({"a": "(1)"}, {})`,
			ok:       true,
		},
		{
			name:     "space before paren",
			input:    `db.t.find ({})`,
			expected: `db.t.find ({})`,
			ok:       true,
		},
		{
			name:     "unbalanced candidate skipped",
			input:    `db.broken.find({"a": 1} then db.good.find({})`,
			expected: `db.good.find({})`,
			ok:       true,
		},
		{
			name:     "other receiver",
			input:    `campus.students.find()`,
			expected: `campus.students.find()`,
			ok:       true,
		},
		{
			name:     "dotted collection",
			input:    "note: db.a.b.find({})",
			expected: "db.a.b.find({})",
			ok:       true,
		},
		{
			name:     "dotted collection with projection",
			input:    `use db.campus.students.find({"age": 22}, {"name": 1}) here`,
			expected: `db.campus.students.find({"age": 22}, {"name": 1})`,
			ok:       true,
		},
		{
			name:     "no call falls back to trimmed text",
			input:    "  SELECT * FROM students  \n",
			expected: "SELECT * FROM students",
			ok:       false,
		},
		{
			name:     "unbalanced only",
			input:    `db.students.find({"a": 1}`,
			expected: `db.students.find({"a": 1}`,
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, ok := Extract(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, expr)
		})
	}
}

func TestMatchParen(t *testing.T) {
	assert.Equal(t, 5, matchParen("(a(b))", 0))
	assert.Equal(t, 8, matchParen(`(")" ')')`, 0))
	assert.Equal(t, 6, matchParen(`("\")")`, 0))
	assert.Equal(t, -1, matchParen("((a)", 0))
	assert.Equal(t, -1, matchParen(`(")`, 0))
}
