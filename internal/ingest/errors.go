package ingest

import "fmt"

// ErrorKind classifies a ParseError.
type ErrorKind string

const (
	KindInvalidToken      ErrorKind = "invalid_token"
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindMalformedTable    ErrorKind = "malformed_table"
)

// ParseError reports input that could not be turned into a numeric sample.
// No sample accompanies a ParseError.
type ParseError struct {
	Kind     ErrorKind
	Filename string
	Token    string
	Line     int
	Err      error
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindInvalidToken:
		return fmt.Sprintf("line %d: %q is not a finite number", e.Line, e.Token)
	case KindUnsupportedFormat:
		return fmt.Sprintf("unsupported file type %q: expected .csv, .tsv, .txt or .xlsx", e.Filename)
	default:
		if e.Err != nil {
			return fmt.Sprintf("cannot read %s: %v", e.source(), e.Err)
		}
		return fmt.Sprintf("cannot read %s", e.source())
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) source() string {
	if e.Filename == "" {
		return "input"
	}
	return e.Filename
}
