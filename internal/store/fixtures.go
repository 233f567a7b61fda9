package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlmongo/internal/literal"
)

// Inserter stores documents. Implemented by *Store.
type Inserter interface {
	Insert(ctx context.Context, collection string, docs ...*literal.Mapping) ([]*literal.Mapping, error)
}

// Seeded reports how many documents a fixture put into one collection.
type Seeded struct {
	Collection string `json:"collection"`
	Count      int    `json:"count"`
}

// LoadFixtures reads a YAML (or JSON) fixture mapping collection names to
// lists of documents and inserts them, collections in file order:
//
//	students:
//	  - {name: Alice, age: 22}
//	  - {name: Bob, age: 19}
func LoadFixtures(ctx context.Context, ins Inserter, r io.Reader) ([]Seeded, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	v, err := literal.FromYAML(&node)
	if err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	root, ok := v.(*literal.Mapping)
	if !ok {
		return nil, fmt.Errorf("parse fixture: expected mapping of collections, got %s", literal.TypeName(v))
	}

	var seeded []Seeded
	for _, p := range root.Pairs() {
		docs, err := fixtureDocs(p.Key, p.Value)
		if err != nil {
			return nil, err
		}
		if _, err := ins.Insert(ctx, p.Key, docs...); err != nil {
			return nil, fmt.Errorf("seed %s: %w", p.Key, err)
		}
		seeded = append(seeded, Seeded{Collection: p.Key, Count: len(docs)})
	}
	return seeded, nil
}

func fixtureDocs(collection string, v literal.Value) ([]*literal.Mapping, error) {
	arr, ok := v.(literal.Array)
	if !ok {
		return nil, fmt.Errorf("fixture %s: expected list of documents, got %s", collection, literal.TypeName(v))
	}
	docs := make([]*literal.Mapping, 0, len(arr))
	for i, elem := range arr {
		doc, ok := elem.(*literal.Mapping)
		if !ok {
			return nil, fmt.Errorf("fixture %s[%d]: expected document, got %s", collection, i, literal.TypeName(elem))
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
