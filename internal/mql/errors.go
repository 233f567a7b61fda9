package mql

import (
	"errors"
	"fmt"
)

// Kind categorizes a pipeline failure by the stage that raised it.
type Kind string

const (
	// KindTranslatorFailure indicates the translator wrote to its error stream
	// or could not be run.
	KindTranslatorFailure Kind = "TRANSLATOR_FAILURE"

	// KindTranslatorTimeout indicates the translator did not finish in time.
	KindTranslatorTimeout Kind = "TRANSLATOR_TIMEOUT"

	// KindExtractionWarning indicates no call expression was found and the
	// whole output is used instead. Not fatal.
	KindExtractionWarning Kind = "EXTRACTION_WARNING"

	// KindMalformedArguments indicates the argument text is not one or two mappings.
	KindMalformedArguments Kind = "MALFORMED_ARGUMENTS"

	// KindInvalidQueryFormat indicates canonical text without the expected prefix.
	KindInvalidQueryFormat Kind = "INVALID_QUERY_FORMAT"

	// KindMalformedQueryStructure indicates a call expression that cannot be split.
	KindMalformedQueryStructure Kind = "MALFORMED_QUERY_STRUCTURE"

	// KindStoreUnavailable indicates the store liveness probe failed.
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"

	// KindNoTranslatedQuery indicates execute was requested before any translate.
	KindNoTranslatedQuery Kind = "NO_TRANSLATED_QUERY"

	// KindEmptyInput indicates blank SQL input.
	KindEmptyInput Kind = "EMPTY_INPUT"

	// KindQueryFailed indicates the store rejected the query.
	KindQueryFailed Kind = "QUERY_FAILED"
)

var kindCodes = map[Kind]string{
	KindTranslatorFailure:       "E001",
	KindTranslatorTimeout:       "E002",
	KindExtractionWarning:       "E003",
	KindMalformedArguments:      "E004",
	KindInvalidQueryFormat:      "E005",
	KindMalformedQueryStructure: "E006",
	KindStoreUnavailable:        "E007",
	KindNoTranslatedQuery:       "E008",
	KindEmptyInput:              "E009",
	KindQueryFailed:             "E010",
}

// Code returns the stable machine code for k, or "E000" for unknown kinds.
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return "E000"
}

// Error is a pipeline failure tagged with its Kind.
type Error struct {
	// Kind identifies the failing stage.
	Kind Kind

	// Message is a human-readable description.
	Message string

	// Text is the input that caused the failure (argument text, canonical
	// text, translator error stream), verbatim.
	Text string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind, so sentinel-style checks like
// errors.Is(err, &Error{Kind: KindNoTranslatedQuery}) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries an *Error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

func newError(kind Kind, text string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Text: text, Err: err}
}
