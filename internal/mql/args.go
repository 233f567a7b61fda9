package mql

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlmongo/internal/literal"
)

// Arguments holds the decoded argument list of a find call: zero, one
// (filter) or two (filter, projection) mappings.
type Arguments struct {
	Mappings []*literal.Mapping
}

// ParseArguments decodes argumentText as one mapping or two mappings
// separated by a top-level comma. Blank text yields zero mappings.
// Any other shape fails with KindMalformedArguments and no partial result.
func ParseArguments(argumentText string) (Arguments, error) {
	if strings.TrimSpace(argumentText) == "" {
		return Arguments{}, nil
	}

	values, err := literal.ParseList(argumentText)
	if err != nil {
		return Arguments{}, newError(KindMalformedArguments, argumentText, err, "failed to parse query arguments")
	}
	if len(values) > 2 {
		return Arguments{}, newError(KindMalformedArguments, argumentText,
			fmt.Errorf("expected 1 or 2 mappings, got %d values", len(values)),
			"failed to parse query arguments")
	}

	args := Arguments{Mappings: make([]*literal.Mapping, 0, len(values))}
	for i, v := range values {
		m, ok := v.(*literal.Mapping)
		if !ok {
			return Arguments{}, newError(KindMalformedArguments, argumentText,
				fmt.Errorf("argument %d: expected mapping, got %s", i+1, literal.TypeName(v)),
				"failed to parse query arguments")
		}
		args.Mappings = append(args.Mappings, m)
	}
	return args, nil
}
