package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlmongo/internal/literal"
)

// IDField is the document identifier, projected independently of other fields.
const IDField = "_id"

// ProjectionMode selects how Projection.Fields are interpreted.
type ProjectionMode int

const (
	// ModeExclude returns every field except Fields.
	ModeExclude ProjectionMode = iota
	// ModeInclude returns only Fields.
	ModeInclude
)

// Projection shapes matched documents.
type Projection struct {
	Mode   ProjectionMode
	Fields []string // Dotted paths, in projection order, never IDField
	ID     bool     // Whether IDField is returned
}

// FromProjection converts a projection mapping. Values 1/true include a
// field, 0/false exclude it. Inclusion and exclusion cannot be mixed except
// for IDField. A projection naming only {"_id": 1} returns just the identifier.
func FromProjection(m *literal.Mapping) (Projection, error) {
	proj := Projection{Mode: ModeExclude, ID: true}
	var include, exclude []string
	idSet := false

	for _, p := range m.Pairs() {
		flag, err := projectionFlag(p.Key, p.Value)
		if err != nil {
			return Projection{}, err
		}
		switch {
		case p.Key == IDField:
			proj.ID = flag
			idSet = true
		case flag:
			include = append(include, p.Key)
		default:
			exclude = append(exclude, p.Key)
		}
	}

	switch {
	case len(include) > 0 && len(exclude) > 0:
		return Projection{}, fmt.Errorf("cannot mix inclusion and exclusion in projection (%q and %q)", include[0], exclude[0])
	case len(include) > 0:
		proj.Mode = ModeInclude
		proj.Fields = include
	case len(exclude) > 0:
		proj.Fields = exclude
	case idSet && proj.ID:
		proj.Mode = ModeInclude
	}
	return proj, nil
}

func projectionFlag(key string, v literal.Value) (bool, error) {
	if key == "" || strings.HasPrefix(key, "$") {
		return false, &UnsupportedError{Field: key, Operator: "projection key", Reason: "must be a field path"}
	}
	switch val := v.(type) {
	case literal.Bool:
		return bool(val), nil
	case literal.Int:
		return val != 0, nil
	case literal.Float:
		return val != 0, nil
	default:
		return false, &UnsupportedError{Field: key, Operator: "projection value " + literal.TypeName(v), Reason: "use 1 or 0"}
	}
}

// Apply returns a shaped copy of doc. Field order follows doc.
func (p Projection) Apply(doc *literal.Mapping) *literal.Mapping {
	paths := splitPaths(p.Fields)

	var out *literal.Mapping
	if p.Mode == ModeInclude {
		out = includePaths(doc, paths, p.ID)
	} else {
		out = excludePaths(doc, paths)
		if !p.ID {
			out = without(out, IDField)
		}
	}
	return out
}

func splitPaths(fields []string) [][]string {
	out := make([][]string, len(fields))
	for i, f := range fields {
		out[i] = strings.Split(f, ".")
	}
	return out
}

// pathsUnder returns the tails of paths starting with key, and whether one
// of them is key itself.
func pathsUnder(key string, paths [][]string) (tails [][]string, exact bool) {
	for _, path := range paths {
		if path[0] != key {
			continue
		}
		if len(path) == 1 {
			exact = true
			continue
		}
		tails = append(tails, path[1:])
	}
	return tails, exact
}

func includePaths(doc *literal.Mapping, paths [][]string, keepID bool) *literal.Mapping {
	out := literal.NewMapping()
	for _, kv := range doc.Pairs() {
		if kv.Key == IDField && keepID {
			out.Set(kv.Key, kv.Value)
			continue
		}
		tails, exact := pathsUnder(kv.Key, paths)
		switch {
		case exact:
			out.Set(kv.Key, kv.Value)
		case len(tails) > 0:
			if v, ok := descend(kv.Value, false, func(m *literal.Mapping) *literal.Mapping {
				return includePaths(m, tails, false)
			}); ok {
				out.Set(kv.Key, v)
			}
		}
	}
	return out
}

func excludePaths(doc *literal.Mapping, paths [][]string) *literal.Mapping {
	out := literal.NewMapping()
	for _, kv := range doc.Pairs() {
		tails, exact := pathsUnder(kv.Key, paths)
		switch {
		case exact:
			continue
		case len(tails) > 0:
			if v, ok := descend(kv.Value, true, func(m *literal.Mapping) *literal.Mapping {
				return excludePaths(m, tails)
			}); ok {
				out.Set(kv.Key, v)
			} else {
				out.Set(kv.Key, kv.Value)
			}
		default:
			out.Set(kv.Key, kv.Value)
		}
	}
	return out
}

// descend applies fn to a sub-document, or to each sub-document of an array.
// Scalar array elements are kept only with keepScalars. ok is false when v
// is a scalar.
func descend(v literal.Value, keepScalars bool, fn func(*literal.Mapping) *literal.Mapping) (literal.Value, bool) {
	switch val := v.(type) {
	case *literal.Mapping:
		return fn(val), true
	case literal.Array:
		out := literal.Array{}
		for _, elem := range val {
			if m, ok := elem.(*literal.Mapping); ok {
				out = append(out, fn(m))
			} else if keepScalars {
				out = append(out, elem)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func without(m *literal.Mapping, key string) *literal.Mapping {
	if !m.Has(key) {
		return m
	}
	out := literal.NewMapping()
	for _, kv := range m.Pairs() {
		if kv.Key != key {
			out.Set(kv.Key, kv.Value)
		}
	}
	return out
}
