package ids

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}

	a := gen.Generate()
	b := gen.Generate()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Less(t, a, b, "UUIDv7 strings sort by creation time")
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator("doc")
	assert.Equal(t, "doc-1", gen.Generate())
	assert.Equal(t, "doc-2", gen.Generate())
}

func TestSequenceGeneratorConcurrent(t *testing.T) {
	gen := NewSequenceGenerator("q")
	seen := sync.Map{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup := seen.LoadOrStore(gen.Generate(), true)
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}
