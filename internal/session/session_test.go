package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlmongo/internal/ids"
	"github.com/roach88/sqlmongo/internal/lastquery"
	"github.com/roach88/sqlmongo/internal/literal"
	"github.com/roach88/sqlmongo/internal/mql"
	"github.com/roach88/sqlmongo/internal/render"
	"github.com/roach88/sqlmongo/internal/store"
	"github.com/roach88/sqlmongo/internal/testutil"
)

var epoch = time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func renderText(t *testing.T, docs []*literal.Mapping) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, render.Text(&b, docs))
	return b.String()
}

func newTestSession(tr *testutil.StubTranslator, st Store, opts ...Option) *Session {
	base := []Option{
		WithIDGenerator(ids.NewSequenceGenerator("q")),
		WithNow(testutil.NewDeterministicClock(epoch, time.Second).Now),
		WithLogger(quietLogger()),
	}
	return New(tr, st, append(base, opts...)...)
}

func TestTranslateCachesCanonicalText(t *testing.T) {
	tr := testutil.NewStubTranslator("Parsing...\nOK\ndb.students.find({\"age\": {\"$gt\": 20}});\nDone.\n")
	s := newTestSession(tr, testutil.NewFakeStore())

	got, err := s.Translate(context.Background(), "  SELECT * FROM students WHERE age > 20 ")
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.Seq)
	assert.Equal(t, "q-1", got.ID)
	assert.Equal(t, "SELECT * FROM students WHERE age > 20", got.SQL)
	assert.Equal(t, `db.students.find({"age": {"$gt": 20}})`, got.Expression)
	assert.Equal(t, `MongoDB Query: db.students.find({"age": {"$gt": 20}})`, got.Text)
	assert.Nil(t, got.Warning)
	assert.Equal(t, []string{"SELECT * FROM students WHERE age > 20"}, tr.Calls())

	last, err := s.Last()
	require.NoError(t, err)
	assert.Equal(t, got.Text, last.Text)
	assert.Equal(t, "q-1", last.ID)
	assert.Equal(t, epoch, last.TranslatedAt)
}

func TestTranslateEmptyInput(t *testing.T) {
	tr := testutil.NewStubTranslator("db.a.find({})")
	s := newTestSession(tr, testutil.NewFakeStore())

	_, err := s.Translate(context.Background(), " \n\t ")
	require.Error(t, err)
	assert.True(t, mql.IsKind(err, mql.KindEmptyInput))
	assert.Equal(t, MsgEmptyInput, err.Error())
	assert.Empty(t, tr.Calls())
}

func TestTranslateExtractionWarning(t *testing.T) {
	tr := testutil.NewStubTranslator("  something unexpected  \n")
	s := newTestSession(tr, testutil.NewFakeStore())

	got, err := s.Translate(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.NotNil(t, got.Warning)
	assert.Equal(t, mql.KindExtractionWarning, got.Warning.Kind)
	assert.Equal(t, MsgExtractionWarning, got.Warning.Message)
	assert.Equal(t, "MongoDB Query: something unexpected", got.Text)

	// cached anyway; execution then fails on the prefix
	_, err = s.Execute(context.Background())
	assert.True(t, mql.IsKind(err, mql.KindInvalidQueryFormat))
}

func TestTranslateDottedCollection(t *testing.T) {
	tr := testutil.NewStubTranslator("note: db.campus.students.find({\"age\": 22})\n")
	st := testutil.NewFakeStore()
	s := newTestSession(tr, st)
	ctx := context.Background()

	got, err := s.Translate(ctx, "SELECT * FROM campus.students WHERE age = 22")
	require.NoError(t, err)
	assert.Nil(t, got.Warning)
	assert.Equal(t, `MongoDB Query: db.campus.students.find({"age": 22})`, got.Text)

	_, err = s.Execute(ctx)
	require.NoError(t, err)
	finds := st.Finds()
	require.Len(t, finds, 1)
	assert.Equal(t, "campus.students", finds[0].Collection)
}

func TestTranslatorFailureClearsSlot(t *testing.T) {
	tr := testutil.NewStubTranslator("db.students.find({})").
		On("BAD SQL", testutil.Response{Stderr: "line 1: syntax error\n"})
	s := newTestSession(tr, testutil.NewFakeStore())
	ctx := context.Background()

	_, err := s.Translate(ctx, "SELECT * FROM students")
	require.NoError(t, err)

	_, err = s.Translate(ctx, "BAD SQL")
	require.Error(t, err)
	assert.True(t, mql.IsKind(err, mql.KindTranslatorFailure))
	assert.Equal(t, "Parser Error:\nline 1: syntax error\n", err.Error())

	_, err = s.Last()
	assert.True(t, mql.IsKind(err, mql.KindNoTranslatedQuery))
}

func TestTranslatorTimeoutClearsSlot(t *testing.T) {
	tr := testutil.NewStubTranslator("db.students.find({})").
		On("SLOW", testutil.Response{Err: &mql.Error{Kind: mql.KindTranslatorTimeout, Message: "translator timed out"}})
	s := newTestSession(tr, testutil.NewFakeStore())
	ctx := context.Background()

	_, err := s.Translate(ctx, "SELECT 1")
	require.NoError(t, err)
	_, err = s.Translate(ctx, "SLOW")
	assert.True(t, mql.IsKind(err, mql.KindTranslatorTimeout))

	_, err = s.Last()
	assert.Error(t, err)
}

func TestOtherTranslateErrorKeepsSlot(t *testing.T) {
	tr := testutil.NewStubTranslator("db.students.find({})").
		On("WEIRD", testutil.Response{Err: errors.New("unexpected")})
	s := newTestSession(tr, testutil.NewFakeStore())
	ctx := context.Background()

	_, err := s.Translate(ctx, "SELECT 1")
	require.NoError(t, err)
	_, err = s.Translate(ctx, "WEIRD")
	require.Error(t, err)

	_, err = s.Last()
	assert.NoError(t, err)
}

func TestExecuteStoreUnavailable(t *testing.T) {
	fake := testutil.NewFakeStore()
	fake.PingErr = store.ErrUnavailable
	s := newTestSession(testutil.NewStubTranslator("db.students.find({})"), fake)
	ctx := context.Background()

	_, err := s.Translate(ctx, "SELECT * FROM students")
	require.NoError(t, err)

	_, err = s.Execute(ctx)
	require.Error(t, err)
	assert.True(t, mql.IsKind(err, mql.KindStoreUnavailable))
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.Equal(t, 1, fake.Pings())
	assert.Empty(t, fake.Finds(), "find must not be called when ping fails")
}

func TestExecuteNoTranslatedQuery(t *testing.T) {
	fake := testutil.NewFakeStore()
	s := newTestSession(testutil.NewStubTranslator(""), fake)

	_, err := s.Execute(context.Background())
	require.Error(t, err)
	assert.True(t, mql.IsKind(err, mql.KindNoTranslatedQuery))
	assert.Equal(t, MsgNoTranslatedQuery, err.Error())
	assert.Equal(t, 1, fake.Pings(), "ping happens before the slot is checked")
	assert.Empty(t, fake.Finds())
}

func TestExecutePassesNormalizedQuery(t *testing.T) {
	tr := testutil.NewStubTranslator(`db.students.find({'name': 'Alice'}, {'name': 1, '_id': 1});`)
	fake := testutil.NewFakeStore()
	alice := literal.NewMapping(literal.P("name", literal.String("Alice")))
	fake.Collections["students"] = []*literal.Mapping{alice}
	s := newTestSession(tr, fake)
	ctx := context.Background()

	_, err := s.Translate(ctx, "SELECT _id, name FROM students WHERE name = 'Alice'")
	require.NoError(t, err)

	exec, err := s.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, "q-1", exec.QueryID)
	assert.Equal(t, []*literal.Mapping{alice}, exec.Documents)
	assert.NotEmpty(t, exec.Fingerprint)

	finds := fake.Finds()
	require.Len(t, finds, 1)
	assert.Equal(t, "students", finds[0].Collection)
	assert.Equal(t, `{"name": "Alice"}`, literal.Format(finds[0].Filter))
	assert.Equal(t, `{"name": 1, "_id": 1}`, literal.Format(finds[0].Projection))
}

func TestExecuteIsRepeatable(t *testing.T) {
	fake := testutil.NewFakeStore()
	s := newTestSession(testutil.NewStubTranslator("db.students.find()"), fake)
	ctx := context.Background()

	_, err := s.Translate(ctx, "SELECT * FROM students")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := s.Execute(ctx)
		require.NoError(t, err)
	}
	finds := fake.Finds()
	require.Len(t, finds, 3)
	assert.Equal(t, `{}`, literal.Format(finds[2].Filter))
	assert.Equal(t, `{"_id": 0}`, literal.Format(finds[2].Projection))
}

func TestExecuteMalformedArguments(t *testing.T) {
	fake := testutil.NewFakeStore()
	s := newTestSession(testutil.NewStubTranslator("db.students.find({}, {}, {})"), fake)
	ctx := context.Background()

	_, err := s.Translate(ctx, "SELECT 1")
	require.NoError(t, err)

	_, err = s.Execute(ctx)
	require.Error(t, err)
	assert.True(t, mql.IsKind(err, mql.KindMalformedArguments))
	assert.Empty(t, fake.Finds())
}

func TestExecuteQueryFailed(t *testing.T) {
	fake := testutil.NewFakeStore()
	fake.FindErr = errors.New("unknown operator: $foo")
	s := newTestSession(testutil.NewStubTranslator(`db.students.find({"a": {"$foo": 1}})`), fake)
	ctx := context.Background()

	_, err := s.Translate(ctx, "SELECT 1")
	require.NoError(t, err)

	_, err = s.Execute(ctx)
	require.Error(t, err)
	assert.True(t, mql.IsKind(err, mql.KindQueryFailed))
	assert.Contains(t, err.Error(), "unknown operator")
}

func TestClear(t *testing.T) {
	s := newTestSession(testutil.NewStubTranslator("db.students.find({})"), testutil.NewFakeStore())
	ctx := context.Background()

	_, err := s.Translate(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, s.Clear())

	_, err = s.Execute(ctx)
	assert.True(t, mql.IsKind(err, mql.KindNoTranslatedQuery))
}

func TestCheckConnection(t *testing.T) {
	fake := testutil.NewFakeStore()
	s := newTestSession(testutil.NewStubTranslator(""), fake)

	assert.NoError(t, s.CheckConnection(context.Background()))

	fake.PingErr = errors.New("connection refused")
	err := s.CheckConnection(context.Background())
	assert.True(t, mql.IsKind(err, mql.KindStoreUnavailable))
}

func TestFindTextLeavesSlotAlone(t *testing.T) {
	fake := testutil.NewFakeStore()
	s := newTestSession(testutil.NewStubTranslator(""), fake)
	ctx := context.Background()

	exec, err := s.FindText(ctx, `db.courses.find({code: CS101})`)
	require.NoError(t, err)
	assert.Equal(t, "courses", exec.Query.Collection)
	assert.Empty(t, exec.QueryID)

	_, err = s.Last()
	assert.True(t, mql.IsKind(err, mql.KindNoTranslatedQuery))

	_, err = s.FindText(ctx, `db.courses.aggregate([])`)
	assert.True(t, mql.IsKind(err, mql.KindMalformedQueryStructure))
}

func TestSeqIncrementsPerAction(t *testing.T) {
	s := newTestSession(testutil.NewStubTranslator("db.a.find({})"), testutil.NewFakeStore())
	ctx := context.Background()

	tr, err := s.Translate(ctx, "SELECT 1")
	require.NoError(t, err)
	exec, err := s.Execute(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), tr.Seq)
	assert.Equal(t, int64(2), exec.Seq)
	assert.Equal(t, int64(2), s.Seq())
}

func TestFileSlotSharedBetweenSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last.json")
	fake := testutil.NewFakeStore()
	ctx := context.Background()

	first := newTestSession(testutil.NewStubTranslator("db.students.find({})"), fake, WithSlot(lastquery.NewFile(path)))
	_, err := first.Translate(ctx, "SELECT * FROM students")
	require.NoError(t, err)

	second := newTestSession(testutil.NewStubTranslator(""), fake, WithSlot(lastquery.NewFile(path)))
	exec, err := second.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, "students", exec.Query.Collection)
}

// End to end against the embedded store.

func TestRunAgainstEmbeddedStore(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "campus.db"), store.WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = store.LoadFixtures(ctx, st, strings.NewReader(`
students:
  - {name: Alice, age: 22}
  - {name: Bob, age: 19}
  - {name: Carol, age: 25}
`))
	require.NoError(t, err)

	tr := testutil.NewStubTranslator("").
		On("SELECT * FROM students WHERE age > 20", testutil.Response{Stdout: `db.students.find({"age": {"$gt": 20}})`}).
		On("SELECT * FROM students WHERE age > 99", testutil.Response{Stdout: `db.students.find({"age": {"$gt": 99}})`})
	s := newTestSession(tr, st)

	_, exec, err := s.Run(ctx, "SELECT * FROM students WHERE age > 20")
	require.NoError(t, err)
	assert.Equal(t,
		"{\n    \"name\": \"Alice\",\n    \"age\": 22\n}\n{\n    \"name\": \"Carol\",\n    \"age\": 25\n}\n",
		renderText(t, exec.Documents))

	_, exec, err = s.Run(ctx, "SELECT * FROM students WHERE age > 99")
	require.NoError(t, err)
	assert.Equal(t, render.NoDocuments, renderText(t, exec.Documents))
}
