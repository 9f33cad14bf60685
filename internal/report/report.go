// Package report turns the line-oriented text report printed by the
// interpreter into a structured Result.
package report

import "fmt"

// NoSQL is reported when the interpreter did not emit a usable SQL line.
const NoSQL = "No SQL generated"

// Line prefixes and markers emitted by the interpreter.
const (
	sqlPrefix        = "SQL:"
	confidencePrefix = "Confidence:"
	fieldsMarker     = "Matched Fields:"
	scoreOpen        = "(score:"
)

// MatchedField is one ranked schema column candidate.
type MatchedField struct {
	Table  string  `json:"table"`
	Column string  `json:"column"`
	Score  float64 `json:"score"`
}

// Result is the normalized form of a report. MatchedFields keeps the
// interpreter's rank order and is never nil.
type Result struct {
	SQL           string         `json:"sql"`
	Confidence    float64        `json:"confidence"`
	MatchedFields []MatchedField `json:"matched_fields"`
}

// ParseError is returned when a report is structurally broken, e.g. a
// Confidence line whose value is not a number.
type ParseError struct {
	Line  int // 1-based
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
