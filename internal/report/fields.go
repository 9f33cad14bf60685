package report

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type sectionState int

const (
	beforeSection sectionState = iota
	inSection
)

// extractFields scans for the Matched Fields: marker and collects every
// well-formed entry after it. The section runs to end of input; lines that
// do not tokenize are dropped without ending the section.
func extractFields(lines []string) []MatchedField {
	fields := []MatchedField{}
	state := beforeSection

	for _, l := range lines {
		switch state {
		case beforeSection:
			if strings.TrimRightFunc(l, unicode.IsSpace) == fieldsMarker {
				state = inSection
			}
		case inSection:
			if isBlank(l) || isSeparator(l) {
				continue
			}
			if f, ok := parseFieldLine(l); ok {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

func isBlank(l string) bool {
	return strings.TrimSpace(l) == ""
}

func isSeparator(l string) bool {
	l = strings.TrimSpace(l)
	return l != "" && strings.Trim(l, "-") == ""
}

// parseFieldLine tokenizes an entry such as "  1. users.email (score: 100.0)".
// Anything after the score is ignored; the leading index is validated and
// discarded.
func parseFieldLine(l string) (MatchedField, bool) {
	s := fieldScanner{src: l}

	s.skipSpace()
	if !s.digits() || !s.literal(".") || !s.space() {
		return MatchedField{}, false
	}
	table, ok := s.word()
	if !ok || !s.literal(".") {
		return MatchedField{}, false
	}
	column, ok := s.word()
	if !ok || !s.space() || !s.literal(scoreOpen) || !s.space() {
		return MatchedField{}, false
	}
	num, ok := s.number()
	if !ok {
		return MatchedField{}, false
	}
	score, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return MatchedField{}, false
	}
	return MatchedField{Table: table, Column: column, Score: score}, true
}

// fieldScanner is a cursor over a single line. Each method consumes input
// only on success.
type fieldScanner struct {
	src string
	pos int
}

func (s *fieldScanner) take(pred func(rune) bool) string {
	start := s.pos
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !pred(r) {
			break
		}
		s.pos += size
	}
	return s.src[start:s.pos]
}

func (s *fieldScanner) skipSpace() {
	s.take(unicode.IsSpace)
}

// space consumes at least one whitespace rune.
func (s *fieldScanner) space() bool {
	return s.take(unicode.IsSpace) != ""
}

func (s *fieldScanner) digits() bool {
	return s.take(unicode.IsDigit) != ""
}

func (s *fieldScanner) literal(lit string) bool {
	if !strings.HasPrefix(s.src[s.pos:], lit) {
		return false
	}
	s.pos += len(lit)
	return true
}

func (s *fieldScanner) word() (string, bool) {
	w := s.take(isWordRune)
	return w, w != ""
}

func (s *fieldScanner) number() (string, bool) {
	n := s.take(func(r rune) bool { return r == '.' || ('0' <= r && r <= '9') })
	return n, n != ""
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
