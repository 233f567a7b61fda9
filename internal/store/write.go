package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/sqlmongo/internal/literal"
)

// IDField is the per-document identifier.
const IDField = "_id"

// ErrDuplicateID is returned when a document reuses an _id within its collection.
var ErrDuplicateID = errors.New("duplicate _id")

// Insert stores docs in collection, in order, within one transaction.
//
// A document without _id gets one from the store's ID generator, placed
// first as MongoDB does. The caller's mappings are not modified.
// Returns the stored documents.
func (s *Store) Insert(ctx context.Context, collection string, docs ...*literal.Mapping) ([]*literal.Mapping, error) {
	if collection == "" {
		return nil, fmt.Errorf("insert: empty collection name")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert: begin: %w", err)
	}
	defer tx.Rollback()

	stored := make([]*literal.Mapping, 0, len(docs))
	for i, doc := range docs {
		doc = s.withID(doc)
		id, _ := doc.Get(IDField)

		body, err := marshalBody(doc)
		if err != nil {
			return nil, fmt.Errorf("insert: document %d: %w", i, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO documents (collection, doc_id, body) VALUES (?, ?, ?)`,
			collection, literal.Format(id), body,
		)
		if err != nil {
			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
				return nil, fmt.Errorf("insert: document %d: %w %s in %s", i, ErrDuplicateID, literal.Format(id), collection)
			}
			return nil, fmt.Errorf("insert: document %d: %w", i, err)
		}
		stored = append(stored, doc)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert: commit: %w", err)
	}

	s.logger.Debug("documents inserted", "collection", collection, "count", len(stored))
	return stored, nil
}

func (s *Store) withID(doc *literal.Mapping) *literal.Mapping {
	if doc.Has(IDField) {
		return doc.Clone()
	}
	out := literal.NewMapping(literal.P(IDField, literal.String(s.ids.Generate())))
	for _, p := range doc.Clone().Pairs() {
		out.Set(p.Key, p.Value)
	}
	return out
}
