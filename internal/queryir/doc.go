// Package queryir provides an intermediate representation for find filters
// and projections.
//
// A filter mapping such as
//
//	{"age": {"$gt": 20}, "$or": [{"city": "Paris"}, {"city": "Lyon"}]}
//
// is converted by FromFilter into a tree of sealed Predicate nodes that
// backends can compile without re-reading the mapping:
//
//	[filter mapping] → [Predicate] → [SQLite backend] (querysql)
//
// SEALED INTERFACES:
//
// Predicate is sealed with a marker method, so backends can switch
// exhaustively over Compare, In, Exists, Regex, And, Or and Nor.
//
// SUPPORTED FRAGMENT:
//
//   - Implicit equality against scalars: {"name": "Alice"}
//   - Comparison operators: $eq $ne $gt $gte $lt $lte
//   - Set membership: $in $nin
//   - Field presence: $exists
//   - Pattern matching: $regex with $options
//   - Logical operators: $and $or $nor
//
// Embedded-document and array equality, $not, $elemMatch, $expr and other
// operators fail with *UnsupportedError. The MongoDB store receives the raw
// mapping and never goes through this package.
//
// Projections are converted by FromProjection and applied to documents with
// Projection.Apply.
package queryir
