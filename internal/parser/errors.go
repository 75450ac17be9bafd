package parser

import "fmt"

// ParseError indicates malformed binary or XML input. The whole file is
// rejected; there is no partial recovery.
type ParseError struct {
	Format string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s parse error: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StructureError indicates a well-formed file that is missing required
// structural elements (no tracks, no positioned points, ...).
type StructureError struct {
	Format string
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s structure error: %s", e.Format, e.Reason)
}
