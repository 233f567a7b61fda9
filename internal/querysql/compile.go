// Package querysql compiles queryir predicates to SQLite over JSON documents.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlmongo/internal/literal"
	"github.com/roach88/sqlmongo/internal/queryir"
)

// SQLCompiler compiles queryir predicates to parameterized SQL for SQLite.
//
// Documents live in the documents table as JSON text in the body column.
// Every query orders by seq so results come back in insertion order.
// All values and JSON paths are bound parameters, never interpolated.
type SQLCompiler struct {
	// Table holds the documents. Defaults to "documents".
	Table string
}

// NewSQLCompiler creates a new SQLCompiler for the documents table.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{Table: "documents"}
}

// Compile converts a predicate over collection to parameterized SQL.
// Returns (sql, params, error) tuple. The statement selects (seq, body).
func (c *SQLCompiler) Compile(collection string, p queryir.Predicate) (string, []any, error) {
	where, params, err := c.compilePredicate(p)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}

	table := c.Table
	if table == "" {
		table = "documents"
	}

	sql := fmt.Sprintf("SELECT seq, body FROM %s WHERE collection = ? AND %s ORDER BY seq ASC", table, where)
	return sql, append([]any{collection}, params...), nil
}

// compilePredicate compiles a predicate to a WHERE fragment that evaluates
// to 0 or 1, never NULL, so NOT behaves like MongoDB negation.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1", nil, nil
	case queryir.Compare:
		return c.compileCompare(pred)
	case queryir.In:
		return c.compileIn(pred)
	case queryir.Exists:
		return c.compileExists(pred)
	case queryir.Regex:
		return c.compileRegex(pred)
	case queryir.And:
		return c.compileJunction(pred.Predicates, " AND ", "1")
	case queryir.Or:
		return c.compileJunction(pred.Predicates, " OR ", "0")
	case queryir.Nor:
		sql, params, err := c.compileJunction(pred.Predicates, " OR ", "0")
		if err != nil {
			return "", nil, err
		}
		return "NOT " + sql, params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileJunction(preds []queryir.Predicate, sep, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	var parts []string
	var allParams []any
	for _, pred := range preds {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		allParams = append(allParams, params...)
	}
	return "(" + strings.Join(parts, sep) + ")", allParams, nil
}

func (c *SQLCompiler) compileCompare(cmp queryir.Compare) (string, []any, error) {
	path, err := JSONPath(cmp.Field)
	if err != nil {
		return "", nil, err
	}

	switch cmp.Op {
	case queryir.OpEq:
		return equals(path, cmp.Value)
	case queryir.OpNe:
		sql, params, err := equals(path, cmp.Value)
		if err != nil {
			return "", nil, err
		}
		return "NOT " + sql, params, nil
	case queryir.OpGt, queryir.OpGte, queryir.OpLt, queryir.OpLte:
		return ordered(path, cmp.Op, cmp.Value)
	default:
		return "", nil, fmt.Errorf("field %q: unsupported comparison %s", cmp.Field, cmp.Op)
	}
}

func (c *SQLCompiler) compileIn(in queryir.In) (string, []any, error) {
	path, err := JSONPath(in.Field)
	if err != nil {
		return "", nil, err
	}

	var parts []string
	var allParams []any
	for _, v := range in.Values {
		sql, params, err := equals(path, v)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		allParams = append(allParams, params...)
	}

	sql := "0"
	if len(parts) > 0 {
		sql = "(" + strings.Join(parts, " OR ") + ")"
	}
	if in.Negate {
		sql = "NOT " + sql
	}
	return sql, allParams, nil
}

func (c *SQLCompiler) compileExists(ex queryir.Exists) (string, []any, error) {
	path, err := JSONPath(ex.Field)
	if err != nil {
		return "", nil, err
	}
	if ex.Want {
		return "json_type(body, ?) IS NOT NULL", []any{path}, nil
	}
	return "json_type(body, ?) IS NULL", []any{path}, nil
}

func (c *SQLCompiler) compileRegex(re queryir.Regex) (string, []any, error) {
	path, err := JSONPath(re.Field)
	if err != nil {
		return "", nil, err
	}
	pattern := queryir.RegexFlags(re.Options) + re.Pattern
	return "CASE WHEN json_type(body, ?) = 'text' THEN regexp(?, json_extract(body, ?)) ELSE 0 END",
		[]any{path, pattern, path}, nil
}

// equals matches path against a scalar the way MongoDB equality does:
// numbers match numbers of either kind, null matches null or a missing field.
func equals(path string, v literal.Value) (string, []any, error) {
	switch val := v.(type) {
	case literal.Null:
		return "COALESCE(json_type(body, ?), 'null') = 'null'", []any{path}, nil
	case literal.Bool:
		want := "false"
		if val {
			want = "true"
		}
		return "COALESCE(json_type(body, ?) = '" + want + "', 0)", []any{path}, nil
	case literal.Int, literal.Float, literal.String:
		guard, param := typeGuard(val)
		return "COALESCE(json_type(body, ?) " + guard + " AND json_extract(body, ?) = ?, 0)",
			[]any{path, path, param}, nil
	default:
		return "", nil, fmt.Errorf("cannot compare against %s", literal.TypeName(v))
	}
}

// ordered compiles $gt/$gte/$lt/$lte. Only values of the same type class
// are ordered; a null operand matches null or missing under $gte/$lte.
func ordered(path string, op queryir.Op, v literal.Value) (string, []any, error) {
	sqlOp := map[queryir.Op]string{
		queryir.OpGt:  ">",
		queryir.OpGte: ">=",
		queryir.OpLt:  "<",
		queryir.OpLte: "<=",
	}[op]

	switch val := v.(type) {
	case literal.Null:
		if op == queryir.OpGte || op == queryir.OpLte {
			return equals(path, val)
		}
		return "0", nil, nil
	case literal.Bool:
		param := int64(0)
		if val {
			param = 1
		}
		return "COALESCE(json_type(body, ?) IN ('true', 'false') AND json_extract(body, ?) " + sqlOp + " ?, 0)",
			[]any{path, path, param}, nil
	case literal.Int, literal.Float, literal.String:
		guard, param := typeGuard(val)
		return "COALESCE(json_type(body, ?) " + guard + " AND json_extract(body, ?) " + sqlOp + " ?, 0)",
			[]any{path, path, param}, nil
	default:
		return "", nil, fmt.Errorf("cannot order against %s", literal.TypeName(v))
	}
}

func typeGuard(v literal.Value) (string, any) {
	switch val := v.(type) {
	case literal.Int:
		return "IN ('integer', 'real')", int64(val)
	case literal.Float:
		return "IN ('integer', 'real')", float64(val)
	default:
		return "= 'text'", string(v.(literal.String))
	}
}

// JSONPath converts a dotted field path to a SQLite JSON path with quoted
// labels: "address.city" becomes $."address"."city".
func JSONPath(field string) (string, error) {
	if field == "" {
		return "", fmt.Errorf("empty field path")
	}

	var b strings.Builder
	b.WriteByte('$')
	for _, seg := range strings.Split(field, ".") {
		if seg == "" {
			return "", fmt.Errorf("field %q: empty path segment", field)
		}
		if strings.ContainsAny(seg, `"\`) {
			return "", fmt.Errorf("field %q: quote or backslash in path segment", field)
		}
		b.WriteString(`."`)
		b.WriteString(seg)
		b.WriteByte('"')
	}
	return b.String(), nil
}
