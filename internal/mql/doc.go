// Package mql interprets document-store call expressions of the form
// db.<collection>.find(<filter>[, <projection>]).
//
// The pipeline is pure and split into stages that fail independently:
//
//	Extract         locate the call expression inside noisy translator output
//	ParseCall       split it into receiver, collection, method and argument text
//	ParseArguments  decode the argument text into zero, one or two mappings
//	Normalize       build a Query, hiding the identifier field by default
//
// Canonical query text ("MongoDB Query: db.c.find(...)") is the form cached
// between a translate action and the execute action that consumes it; see
// Canonicalize and ParseCanonical.
package mql
