// Package render turns result documents into output text.
package render

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlmongo/internal/literal"
)

// NoDocuments is rendered in place of an empty result set.
const NoDocuments = "No documents found."

// Indent is the per-level indentation of Text output.
const Indent = "    "

// Text writes each document as an indented JSON block followed by a
// newline, in result order. An empty result writes exactly NoDocuments.
func Text(w io.Writer, docs []*literal.Mapping) error {
	if len(docs) == 0 {
		_, err := io.WriteString(w, NoDocuments)
		return err
	}

	var b strings.Builder
	for _, doc := range docs {
		writeJSON(&b, doc, Indent, 0)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// JSON writes the documents as one JSON array with two-space indentation.
// An empty result is [].
func JSON(w io.Writer, docs []*literal.Mapping) error {
	arr := make(literal.Array, len(docs))
	for i, doc := range docs {
		arr[i] = doc
	}

	var b strings.Builder
	writeJSON(&b, arr, "  ", 0)
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// YAML writes the documents as a YAML sequence, keeping key order.
func YAML(w io.Writer, docs []*literal.Mapping) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, doc := range docs {
		seq.Content = append(seq.Content, literal.ToYAML(doc))
	}
	if len(docs) == 0 {
		seq.Style = yaml.FlowStyle
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return fmt.Errorf("render yaml: %w", err)
	}
	return enc.Close()
}

// writeJSON writes v as JSON with one entry per line. Empty containers
// stay on one line as {} and [].
func writeJSON(b *strings.Builder, v literal.Value, indent string, depth int) {
	switch val := v.(type) {
	case *literal.Mapping:
		pairs := val.Pairs()
		if len(pairs) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, p := range pairs {
			b.WriteString(strings.Repeat(indent, depth+1))
			b.WriteString(literal.Format(literal.String(p.Key)))
			b.WriteString(": ")
			writeJSON(b, p.Value, indent, depth+1)
			if i < len(pairs)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat(indent, depth))
		b.WriteByte('}')
	case literal.Array:
		if len(val) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, elem := range val {
			b.WriteString(strings.Repeat(indent, depth+1))
			writeJSON(b, elem, indent, depth+1)
			if i < len(val)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat(indent, depth))
		b.WriteByte(']')
	default:
		b.WriteString(literal.Format(v))
	}
}
