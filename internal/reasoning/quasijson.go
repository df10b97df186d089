package reasoning

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// Assignment is one `name = [...]` statement of a reply payload.
type Assignment struct {
	Name   string
	Values []string
}

// SyntaxError describes where a payload stopped matching the assignment
// grammar. Offset is a byte offset into the payload after any surrounding
// code fence has been removed.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

// ParseAssignments parses the reply content grammar:
//
//	document   = [ "{" ] assignment { [ "," | ";" ] assignment } [ "," | ";" ] [ "}" ]
//	assignment = name ( "=" | ":" ) array
//	name       = identifier | quoted string
//	array      = "[" [ element { "," element } [ "," ] ] "]"
//	element    = quoted string | number | "null"
//
// Whitespace, including newlines, may appear between any two tokens.
// Strings use either double or single quotes with JSON-style backslash
// escapes, so brackets, quotes and commas inside an element are preserved.
// Numbers are kept as their literal text; null elements are dropped.
func ParseAssignments(src string) ([]Assignment, error) {
	s := &scanner{src: stripFence(src)}

	s.skipSpace()
	braced := s.consume('{')

	var out []Assignment
	for {
		s.skipSpace()
		if s.eof() || (braced && s.peek() == '}') {
			break
		}
		a, err := s.assignment()
		if err != nil {
			return nil, err
		}
		out = append(out, a)

		s.skipSpace()
		if !s.consume(',') {
			s.consume(';')
		}
	}

	if braced {
		if !s.consume('}') {
			return nil, s.errorf("expected '}'")
		}
		s.skipSpace()
		if !s.eof() {
			return nil, s.errorf("unexpected %q after '}'", s.peek())
		}
	}
	if len(out) == 0 {
		return nil, s.errorf("no assignments")
	}
	return out, nil
}

// stripFence removes a markdown code fence wrapped around the payload.
func stripFence(src string) string {
	src = strings.TrimSpace(src)
	if !strings.HasPrefix(src, "```") {
		return src
	}
	if nl := strings.IndexByte(src, '\n'); nl >= 0 {
		src = src[nl+1:]
	} else {
		src = strings.TrimPrefix(src, "```")
	}
	src = strings.TrimSpace(src)
	return strings.TrimSpace(strings.TrimSuffix(src, "```"))
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) consume(c byte) bool {
	if !s.eof() && s.src[s.pos] == c {
		s.pos++
		return true
	}
	return false
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		s.pos += size
	}
}

func (s *scanner) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Offset: s.pos, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) assignment() (Assignment, error) {
	name, err := s.name()
	if err != nil {
		return Assignment{}, err
	}

	s.skipSpace()
	if !s.consume('=') && !s.consume(':') {
		return Assignment{}, s.errorf("expected '=' after %q", name)
	}

	s.skipSpace()
	values, err := s.array()
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{Name: name, Values: values}, nil
}

func (s *scanner) name() (string, error) {
	if c := s.peek(); c == '"' || c == '\'' {
		return s.str()
	}

	start := s.pos
	for !s.eof() {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		isStart := unicode.IsLetter(r) || r == '_' || r == '$'
		if !isStart && (s.pos == start || !unicode.IsDigit(r)) {
			break
		}
		s.pos += size
	}
	if s.pos == start {
		if s.eof() {
			return "", s.errorf("expected identifier, got end of input")
		}
		return "", s.errorf("expected identifier, got %q", s.peek())
	}
	return s.src[start:s.pos], nil
}

func (s *scanner) array() ([]string, error) {
	if !s.consume('[') {
		return nil, s.errorf("expected '['")
	}

	values := []string{}
	for {
		s.skipSpace()
		if s.consume(']') {
			return values, nil
		}

		v, keep, err := s.element()
		if err != nil {
			return nil, err
		}
		if keep {
			values = append(values, v)
		}

		s.skipSpace()
		switch {
		case s.consume(','):
		case s.consume(']'):
			return values, nil
		case s.eof():
			return nil, s.errorf("unterminated array")
		default:
			return nil, s.errorf("expected ',' or ']', got %q", s.peek())
		}
	}
}

// element returns the element text and whether it should be kept.
func (s *scanner) element() (string, bool, error) {
	switch c := s.peek(); {
	case c == '"' || c == '\'':
		v, err := s.str()
		return v, true, err
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return s.number(), true, nil
	case strings.HasPrefix(s.src[s.pos:], "null"):
		s.pos += len("null")
		return "", false, nil
	case s.eof():
		return "", false, s.errorf("unterminated array")
	default:
		return "", false, s.errorf("unexpected %q in array", c)
	}
}

func (s *scanner) number() string {
	start := s.pos
	for !s.eof() {
		c := s.src[s.pos]
		if (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' && c != 'e' && c != 'E' {
			break
		}
		s.pos++
	}
	return s.src[start:s.pos]
}

func (s *scanner) str() (string, error) {
	start := s.pos
	quote := s.src[s.pos]
	s.pos++

	var b strings.Builder
	for {
		if s.eof() {
			return "", &SyntaxError{Offset: start, Msg: "unterminated string"}
		}
		c := s.src[s.pos]
		switch c {
		case quote:
			s.pos++
			return b.String(), nil
		case '\\':
			if err := s.escape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
}

// escape decodes one backslash escape starting at s.pos.
func (s *scanner) escape(b *strings.Builder) error {
	start := s.pos
	s.pos++
	if s.eof() {
		return &SyntaxError{Offset: start, Msg: "unterminated escape"}
	}

	c := s.src[s.pos]
	s.pos++
	switch c {
	case '"', '\'', '\\', '/':
		b.WriteByte(c)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		r, err := s.hex4(start)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			high := r
			r = utf8.RuneError
			if strings.HasPrefix(s.src[s.pos:], `\u`) {
				s.pos += 2
				low, err := s.hex4(start)
				if err != nil {
					return err
				}
				r = utf16.DecodeRune(high, low)
			}
		}
		b.WriteRune(r)
	default:
		return &SyntaxError{Offset: start, Msg: fmt.Sprintf("invalid escape \\%c", c)}
	}
	return nil
}

func (s *scanner) hex4(escapeStart int) (rune, error) {
	if s.pos+4 > len(s.src) {
		return 0, &SyntaxError{Offset: escapeStart, Msg: "short unicode escape"}
	}
	v, err := strconv.ParseUint(s.src[s.pos:s.pos+4], 16, 32)
	if err != nil {
		return 0, &SyntaxError{Offset: escapeStart, Msg: "invalid unicode escape"}
	}
	s.pos += 4
	return rune(v), nil
}
