package mql

import (
	"github.com/roach88/sqlmongo/internal/literal"
)

// IdentifierField is the store's per-document key, hidden by default.
const IdentifierField = "_id"

// DefaultProjection returns a fresh {"_id": 0}.
func DefaultProjection() *literal.Mapping {
	return literal.NewMapping(literal.P(IdentifierField, literal.Int(0)))
}

// Normalize builds the Query for collection from parsed arguments.
//
// One mapping is the filter. With two, the second is the projection and
// gains "_id": 0 unless it already names _id. Any other count falls back to
// an empty filter. The projection always hides or explicitly mentions _id.
// args is never mutated.
func Normalize(collection string, args Arguments) Query {
	q := Query{
		Collection: collection,
		Filter:     literal.NewMapping(),
		Projection: DefaultProjection(),
	}

	switch len(args.Mappings) {
	case 1:
		q.Filter = args.Mappings[0].Clone()
	case 2:
		q.Filter = args.Mappings[0].Clone()
		q.Projection = args.Mappings[1].Clone()
		if !q.Projection.Has(IdentifierField) {
			q.Projection.Set(IdentifierField, literal.Int(0))
		}
	}
	return q
}
