package mql

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/sqlmongo/internal/literal"
)

// DomainQuery separates query fingerprints from other hashes.
const DomainQuery = "sqlmongo/query/v1"

// Query is a normalized find: collection, filter and projection.
type Query struct {
	Collection string           `json:"collection"`
	Filter     *literal.Mapping `json:"filter"`
	Projection *literal.Mapping `json:"projection"`
}

// ParseQuery turns a call expression into a Query. The method must be find.
func ParseQuery(expr string) (Query, error) {
	call, err := ParseCall(expr)
	if err != nil {
		return Query{}, err
	}
	if call.Method != "find" {
		return Query{}, newError(KindMalformedQueryStructure, expr, nil, "unsupported method %q: only find is supported", call.Method)
	}

	args, err := ParseArguments(call.ArgumentText)
	if err != nil {
		return Query{}, err
	}
	return Normalize(call.Collection, args), nil
}

// Format renders q as db.<collection>.find(<filter>, <projection>).
// The output parses back to an equivalent Query with ParseQuery.
func Format(q Query) string {
	var b strings.Builder
	b.WriteString("db.")
	b.WriteString(q.Collection)
	b.WriteString(".find(")
	b.WriteString(literal.Format(orEmpty(q.Filter)))
	if q.Projection.Len() > 0 {
		b.WriteString(", ")
		b.WriteString(literal.Format(q.Projection))
	}
	b.WriteByte(')')
	return b.String()
}

func (q Query) String() string {
	return Format(q)
}

// Fingerprint returns a stable hash of q for log correlation.
// Key order inside filter and projection does not affect the result.
func (q Query) Fingerprint() (string, error) {
	canonical, err := literal.MarshalCanonical(literal.NewMapping(
		literal.P("collection", literal.String(q.Collection)),
		literal.P("filter", orEmpty(q.Filter)),
		literal.P("projection", orEmpty(q.Projection)),
	))
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}

// MarshalJSON implements json.Marshaler. Nil mappings marshal as {}.
func (q Query) MarshalJSON() ([]byte, error) {
	type wire Query
	return json.Marshal(wire{
		Collection: q.Collection,
		Filter:     orEmpty(q.Filter),
		Projection: orEmpty(q.Projection),
	})
}

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func orEmpty(m *literal.Mapping) *literal.Mapping {
	if m == nil {
		return literal.NewMapping()
	}
	return m
}
