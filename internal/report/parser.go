package report

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errNotFinite = errors.New("value is not a finite number")

// Parser extracts a Result from raw interpreter output. The zero value is
// strict: a malformed Confidence value fails the whole parse.
type Parser struct {
	// LenientConfidence makes a malformed Confidence value degrade to 0.0
	// instead of returning a ParseError.
	LenientConfidence bool
}

// Parse parses raw with a strict Parser.
func Parse(raw string) (*Result, error) {
	return Parser{}.Parse(raw)
}

// Parse runs the three extraction passes over raw. Each pass is
// independent, so a missing section only defaults its own field.
func (p Parser) Parse(raw string) (*Result, error) {
	lines := splitLines(raw)

	confidence, err := p.confidence(lines)
	if err != nil {
		return nil, err
	}

	return &Result{
		SQL:           extractSQL(lines),
		Confidence:    confidence,
		MatchedFields: extractFields(lines),
	}, nil
}

func splitLines(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// extractSQL returns the value of the first SQL: line. An empty value is
// treated the same as a missing line.
func extractSQL(lines []string) string {
	for _, l := range lines {
		if rest, ok := strings.CutPrefix(l, sqlPrefix); ok {
			if sql := strings.TrimSpace(rest); sql != "" {
				return sql
			}
			return NoSQL
		}
	}
	return NoSQL
}

func (p Parser) confidence(lines []string) (float64, error) {
	for i, l := range lines {
		rest, ok := strings.CutPrefix(l, confidencePrefix)
		if !ok {
			continue
		}
		value := strings.TrimSpace(rest)
		f, err := strconv.ParseFloat(value, 64)
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		if err == nil && (math.IsInf(f, 0) || math.IsNaN(f)) {
			err = errNotFinite
		}
		if err != nil {
			if p.LenientConfidence {
				return 0, nil
			}
			return 0, &ParseError{Line: i + 1, Field: "confidence", Value: value, Err: err}
		}
		return f, nil
	}
	return 0, nil
}
