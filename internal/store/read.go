package store

import (
	"context"
	"fmt"

	"github.com/roach88/sqlmongo/internal/literal"
	"github.com/roach88/sqlmongo/internal/queryir"
)

// Find returns the documents of collection matching filter, shaped by
// projection, in insertion order. An unknown collection yields no documents.
func (s *Store) Find(ctx context.Context, collection string, filter, projection *literal.Mapping) ([]*literal.Mapping, error) {
	pred, err := queryir.FromFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("find: filter: %w", err)
	}
	proj, err := queryir.FromProjection(projection)
	if err != nil {
		return nil, fmt.Errorf("find: projection: %w", err)
	}

	if result := queryir.Validate(pred); !result.IsPortable {
		for _, w := range result.Warnings {
			s.logger.Warn("filter evaluated differently from MongoDB", "collection", collection, "warning", w)
		}
	}

	query, params, err := s.compiler.Compile(collection, pred)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	s.logger.Debug("find", "collection", collection, "sql", query, "params", len(params))

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer rows.Close()

	var docs []*literal.Mapping
	for rows.Next() {
		var seq int64
		var body string
		if err := rows.Scan(&seq, &body); err != nil {
			return nil, fmt.Errorf("find: scan: %w", err)
		}
		doc, err := unmarshalBody(body)
		if err != nil {
			return nil, fmt.Errorf("find: row %d: %w", seq, err)
		}
		docs = append(docs, proj.Apply(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	return docs, nil
}

// Collections returns the names of non-empty collections, sorted.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT collection FROM documents
		ORDER BY collection ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("collections: scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Count returns the number of documents in collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, collection,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
