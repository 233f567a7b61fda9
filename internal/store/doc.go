// Package store provides the document stores queries run against.
//
// Two implementations satisfy the same Ping/Find capability:
//
//   - Mongo: a MongoDB deployment reached through the official driver.
//     Filters and projections are sent as-is; MongoDB evaluates them.
//   - Store: an embedded SQLite document store. Filters are compiled through
//     queryir and querysql, projections are applied in Go.
//
// # Embedded Store Layout
//
// Documents are JSON text in a single documents table keyed by
// (collection, seq). seq is assigned on insert, so results come back in
// insertion order, like an unsorted MongoDB find on a fresh collection.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// A REGEXP function is registered on every connection for $regex filters.
package store
