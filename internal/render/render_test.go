package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlmongo/internal/literal"
)

func sampleDocs(t *testing.T) []*literal.Mapping {
	t.Helper()
	texts := []string{
		`{"name": "Alice", "age": 22, "gpa": 3.5, "address": {"city": "Austin", "zip": null}, "tags": ["a", 1, true], "empty": {}, "none": []}`,
		`{"name": "Bob <b> & \"c\"", "age": 19}`,
	}
	docs := make([]*literal.Mapping, len(texts))
	for i, text := range texts {
		m, err := literal.DecodeMapping(text)
		require.NoError(t, err)
		docs[i] = m
	}
	return docs
}

func textOf(t *testing.T, docs []*literal.Mapping) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, docs))
	return buf.String()
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestTextGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleDocs(t)))
	newGoldie(t).Assert(t, "text_documents", buf.Bytes())
}

func TestJSONGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleDocs(t)))
	newGoldie(t).Assert(t, "json_documents", buf.Bytes())
}

func TestTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, nil))
	assert.Equal(t, "No documents found.", buf.String())
	assert.Equal(t, NoDocuments, textOf(t, []*literal.Mapping{}))
}

func TestTextEmptyDocument(t *testing.T) {
	got := textOf(t, []*literal.Mapping{literal.NewMapping()})
	assert.Equal(t, "{}\n", got)
}

func TestTextBlocksFollowResultOrder(t *testing.T) {
	docs := sampleDocs(t)
	got := textOf(t, []*literal.Mapping{docs[1], docs[0]})
	assert.True(t, strings.HasPrefix(got, "{\n    \"name\": \"Bob"))
	assert.Equal(t, 2, strings.Count(got, "\n}\n"))
}

func TestTextKeepsDecomposedText(t *testing.T) {
	doc := literal.NewMapping(
		literal.P("name", literal.String("Jose\u0301")),
		literal.P("cafe\u0301", literal.String("caf\u00e9")),
	)

	got := textOf(t, []*literal.Mapping{doc})
	assert.Equal(t, "{\n    \"name\": \"Jose\u0301\",\n    \"cafe\u0301\": \"caf\u00e9\"\n}\n", got)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, []*literal.Mapping{doc}))
	assert.Contains(t, buf.String(), "\"Jose\u0301\"")
}

func TestJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONIsValid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleDocs(t)))

	v, err := literal.DecodeJSON(buf.Bytes())
	require.NoError(t, err)
	arr, ok := v.(literal.Array)
	require.True(t, ok)
	require.Len(t, arr, 2)
	assert.True(t, literal.Equal(sampleDocs(t)[0], arr[0]))
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, sampleDocs(t)))

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &node))
	v, err := literal.FromYAML(&node)
	require.NoError(t, err)

	arr, ok := v.(literal.Array)
	require.True(t, ok)
	require.Len(t, arr, 2)
	for i, doc := range sampleDocs(t) {
		assert.Equal(t, literal.Format(doc), literal.Format(arr[i]))
	}
	assert.True(t, strings.HasPrefix(buf.String(), "- name: Alice\n"))
}

func TestYAMLEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
