package testutil

// FixedIDGenerator returns the same identifier every time.
//
// Useful for golden output, where every translation in a scenario should
// render the same query id.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a fixed generator.
// If id is empty, Generate() returns "test-query-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-query-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id. Implements ids.Generator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
