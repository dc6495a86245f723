package card

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Error definitions for bibliographic parsing.
var (
	ErrNoBibEntry = errors.New("no bibliographic entry found")
)

// ParseBib parses a single BibTeX entry. Cross-references and @string
// macros are out of scope; the grammar covered is
// @type{key, name = {value}, name = "value", name = value, ...}.
func ParseBib(src string) (*BibEntry, error) {
	s := &bibScanner{src: src}

	s.skipSpace()
	if !s.consume('@') {
		return nil, ErrNoBibEntry
	}

	entryType := s.ident()
	if entryType == "" {
		return nil, s.errf("missing entry type after @")
	}

	s.skipSpace()
	if !s.consume('{') {
		return nil, s.errf("expected { after entry type %q", entryType)
	}

	key := s.until(",}")
	key = strings.TrimSpace(key)

	entry := &BibEntry{
		EntryType: strings.ToLower(entryType),
		Key:       key,
		Raw:       strings.TrimSpace(src),
	}

	for {
		s.skipSpace()
		if s.consume('}') {
			return entry, nil
		}
		if !s.consume(',') {
			if s.eof() {
				return nil, s.errf("unterminated entry %q", entry.Key)
			}
			return nil, s.errf("expected , or } in entry %q", entry.Key)
		}

		s.skipSpace()
		if s.consume('}') {
			// trailing comma before the closing brace
			return entry, nil
		}

		name := s.ident()
		if name == "" {
			return nil, s.errf("missing field name in entry %q", entry.Key)
		}

		s.skipSpace()
		if !s.consume('=') {
			return nil, s.errf("expected = after field %q", name)
		}

		value, err := s.value()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}

		entry.Fields = append(entry.Fields, BibField{
			Name:  strings.ToLower(name),
			Value: value,
		})
	}
}

type bibScanner struct {
	src string
	pos int
}

func (s *bibScanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *bibScanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *bibScanner) consume(c byte) bool {
	if !s.eof() && s.src[s.pos] == c {
		s.pos++
		return true
	}
	return false
}

func (s *bibScanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(rune(s.src[s.pos])) {
		s.pos++
	}
}

// ident reads a BibTeX identifier (entry type or field name).
func (s *bibScanner) ident() string {
	s.skipSpace()
	start := s.pos
	for !s.eof() {
		c := s.src[s.pos]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' {
			s.pos++
			continue
		}
		break
	}
	return s.src[start:s.pos]
}

// until reads up to (not including) any byte in stop.
func (s *bibScanner) until(stop string) string {
	start := s.pos
	for !s.eof() && !strings.ContainsRune(stop, rune(s.src[s.pos])) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// value reads a field value: balanced braces, a quoted string, or a bare
// token.
func (s *bibScanner) value() (string, error) {
	s.skipSpace()

	switch s.peek() {
	case '{':
		s.pos++
		start := s.pos
		depth := 1
		for !s.eof() {
			switch s.src[s.pos] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					v := s.src[start:s.pos]
					s.pos++
					return strings.TrimSpace(v), nil
				}
			}
			s.pos++
		}
		return "", s.errf("unbalanced braces in value")

	case '"':
		s.pos++
		start := s.pos
		for !s.eof() && s.src[s.pos] != '"' {
			s.pos++
		}
		if s.eof() {
			return "", s.errf("unterminated quoted value")
		}
		v := s.src[start:s.pos]
		s.pos++
		return strings.TrimSpace(v), nil

	default:
		v := strings.TrimSpace(s.until(",}"))
		if v == "" {
			return "", s.errf("empty field value")
		}
		return v, nil
	}
}

func (s *bibScanner) errf(format string, args ...any) error {
	return fmt.Errorf("bibtex: offset %d: %s", s.pos, fmt.Sprintf(format, args...))
}
