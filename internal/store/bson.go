package store

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/roach88/sqlmongo/internal/literal"
)

// toBSONDoc converts m to an ordered BSON document. A nil mapping is an
// empty document.
func toBSONDoc(m *literal.Mapping) bson.D {
	d := bson.D{}
	if m == nil {
		return d
	}
	for _, p := range m.Pairs() {
		d = append(d, bson.E{Key: p.Key, Value: toBSON(p.Value)})
	}
	return d
}

func toBSON(v literal.Value) any {
	switch val := v.(type) {
	case literal.String:
		return string(val)
	case literal.Int:
		return int64(val)
	case literal.Float:
		return float64(val)
	case literal.Bool:
		return bool(val)
	case literal.Array:
		a := make(bson.A, len(val))
		for i, elem := range val {
			a[i] = toBSON(elem)
		}
		return a
	case *literal.Mapping:
		return toBSONDoc(val)
	default:
		return nil
	}
}

func fromBSONDoc(d bson.D) (*literal.Mapping, error) {
	m := literal.NewMapping()
	for _, e := range d {
		v, err := fromBSON(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Key, err)
		}
		m.Set(e.Key, v)
	}
	return m, nil
}

// fromBSON converts a decoded BSON value. Types without a JSON
// counterpart become strings: ObjectIDs as hex, dates as RFC 3339.
func fromBSON(v any) (literal.Value, error) {
	switch val := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return literal.Null{}, nil
	case bson.D:
		return fromBSONDoc(val)
	case bson.M:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := make(bson.D, 0, len(keys))
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: val[k]})
		}
		return fromBSONDoc(d)
	case bson.A:
		return fromBSONArray(val)
	case []any:
		return fromBSONArray(val)
	case primitive.ObjectID:
		return literal.String(val.Hex()), nil
	case primitive.DateTime:
		return literal.String(val.Time().UTC().Format(time.RFC3339Nano)), nil
	case primitive.Timestamp:
		return literal.NewMapping(
			literal.P("t", literal.Int(val.T)),
			literal.P("i", literal.Int(val.I)),
		), nil
	case primitive.Decimal128:
		return literal.String(val.String()), nil
	case primitive.Binary:
		return literal.String(hex.EncodeToString(val.Data)), nil
	case primitive.Regex:
		return literal.String("/" + val.Pattern + "/" + val.Options), nil
	case primitive.Symbol:
		return literal.String(string(val)), nil
	case primitive.JavaScript:
		return literal.String(string(val)), nil
	case primitive.MinKey:
		return literal.String("$minKey"), nil
	case primitive.MaxKey:
		return literal.String("$maxKey"), nil
	default:
		lv, err := literal.FromAny(val)
		if err != nil {
			return nil, fmt.Errorf("unsupported BSON value: %w", err)
		}
		return lv, nil
	}
}

func fromBSONArray(a []any) (literal.Array, error) {
	out := make(literal.Array, len(a))
	for i, elem := range a {
		v, err := fromBSON(elem)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
