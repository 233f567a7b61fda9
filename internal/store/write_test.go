package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlmongo/internal/literal"
)

func TestInsertAssignsID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	doc := literal.NewMapping(literal.P("name", literal.String("Alice")))
	stored, err := s.Insert(ctx, "students", doc)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	assert.Equal(t, []string{"_id", "name"}, stored[0].Keys())
	id, _ := stored[0].Get("_id")
	assert.Equal(t, literal.String("doc-1"), id)

	// caller's mapping untouched
	assert.False(t, doc.Has("_id"))
}

func TestInsertKeepsExplicitID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	doc := literal.NewMapping(
		literal.P("name", literal.String("Alice")),
		literal.P("_id", literal.Int(7)),
	)
	stored, err := s.Insert(ctx, "students", doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "_id"}, stored[0].Keys())

	docs, err := s.Find(ctx, "students", literal.NewMapping(literal.P("_id", literal.Int(7))), nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.True(t, literal.Equal(doc, docs[0]))
}

func TestInsertDuplicateID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := literal.NewMapping(literal.P("_id", literal.String("x")))
	_, err := s.Insert(ctx, "students", a)
	require.NoError(t, err)

	_, err = s.Insert(ctx, "students", a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateID), "got %v", err)

	// same _id in another collection is fine
	_, err = s.Insert(ctx, "courses", a)
	assert.NoError(t, err)
}

func TestInsertIsAtomic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	docs := []*literal.Mapping{
		literal.NewMapping(literal.P("_id", literal.Int(1))),
		literal.NewMapping(literal.P("_id", literal.Int(2))),
		literal.NewMapping(literal.P("_id", literal.Int(1))),
	}
	_, err := s.Insert(ctx, "students", docs...)
	require.ErrorIs(t, err, ErrDuplicateID)

	n, err := s.Count(ctx, "students")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestInsertEmptyCollection(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Insert(context.Background(), "", literal.NewMapping())
	assert.Error(t, err)
}

func TestInsertPreservesOrderAndTypes(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	doc, err := literal.DecodeMapping(`{"_id": 1, "z": 1.0, "a": [1, "two", null, true], "m": {"y": 2, "x": 1}}`)
	require.NoError(t, err)

	_, err = s.Insert(ctx, "things", doc)
	require.NoError(t, err)

	docs, err := s.Find(ctx, "things", nil, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, literal.Format(doc), literal.Format(docs[0]))
}

func TestLoadFixtures(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seeded, err := LoadFixtures(ctx, s, strings.NewReader(campusFixture))
	require.NoError(t, err)
	assert.Equal(t, []Seeded{
		{Collection: "students", Count: 4},
		{Collection: "courses", Count: 1},
	}, seeded)
}

func TestLoadFixturesJSON(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seeded, err := LoadFixtures(ctx, s, strings.NewReader(`{"students": [{"name": "Alice", "age": 22}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Seeded{{Collection: "students", Count: 1}}, seeded)

	docs, err := s.Find(ctx, "students", nil, literal.NewMapping(literal.P("_id", literal.Int(0))))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, `{"name": "Alice", "age": 22}`, literal.Format(docs[0]))
}

func TestLoadFixturesEmpty(t *testing.T) {
	s := createTestStore(t)

	seeded, err := LoadFixtures(context.Background(), s, strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, seeded)
}

func TestLoadFixturesErrors(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
	}{
		{"not a mapping", "- a\n- b\n"},
		{"collection not a list", "students: {name: Alice}\n"},
		{"document not a mapping", "students: [1, 2]\n"},
		{"invalid yaml", "students: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestStore(t)
			_, err := LoadFixtures(context.Background(), s, strings.NewReader(tt.fixture))
			assert.Error(t, err)
		})
	}
}
