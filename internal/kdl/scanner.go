package kdl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const bom = '\uFEFF'

// ScanError describes a literal that starts like a KDL production but is malformed,
// such as an unterminated string or an integer that overflows int64.
type ScanError struct {
	Offset int
	Msg    string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

// Scanner matches KDL literal productions (identifiers, strings, numbers, keywords and
// whitespace) against a source string. Selector text embeds these literals at arbitrary
// offsets. A production that does not match leaves the position unchanged.
type Scanner struct {
	src string
	pos int
	err *ScanError
}

// NewScanner returns a scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

// Pos returns the current byte offset.
func (s *Scanner) Pos() int {
	return s.pos
}

// Reset moves the cursor back to a position previously returned by Pos.
func (s *Scanner) Reset(pos int) {
	s.pos = pos
}

// EOF reports whether all input has been consumed.
func (s *Scanner) EOF() bool {
	return s.pos >= len(s.src)
}

// Rest returns the unconsumed input.
func (s *Scanner) Rest() string {
	return s.src[s.pos:]
}

// Err returns the reason the last Identifier or Value call failed, if the input was malformed
// rather than simply not matching.
func (s *Scanner) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

// Peek returns the next rune without consuming it, or utf8.RuneError at end of input.
func (s *Scanner) Peek() rune {
	if s.EOF() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r
}

// HasPrefix reports whether the unconsumed input starts with literal.
func (s *Scanner) HasPrefix(literal string) bool {
	return strings.HasPrefix(s.src[s.pos:], literal)
}

// Consume advances past literal if the input starts with it.
func (s *Scanner) Consume(literal string) bool {
	if !s.HasPrefix(literal) {
		return false
	}
	s.pos += len(literal)
	return true
}

// Whitespace consumes a single ws production: a BOM, a unicode space or a multi-line comment.
func (s *Scanner) Whitespace() bool {
	if s.EOF() {
		return false
	}
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	if r == bom || isUnicodeSpace(r) {
		s.pos += size
		return true
	}
	return s.multiLineComment()
}

// SkipWhitespace consumes ws* and returns the number of productions consumed.
func (s *Scanner) SkipWhitespace() int {
	n := 0
	for s.Whitespace() {
		n++
	}
	return n
}

func (s *Scanner) multiLineComment() bool {
	if !s.HasPrefix("/*") {
		return false
	}

	depth := 0
	for i := s.pos; i < len(s.src); {
		switch {
		case strings.HasPrefix(s.src[i:], "/*"):
			depth++
			i += 2
		case strings.HasPrefix(s.src[i:], "*/"):
			depth--
			i += 2
			if depth == 0 {
				s.pos = i
				return true
			}
		default:
			i++
		}
	}
	return false
}

// Identifier matches `identifier := string | bare-identifier`.
func (s *Scanner) Identifier() (string, bool) {
	s.err = nil
	if str, ok := s.str(); ok {
		return str, true
	}
	if s.err != nil {
		return "", false
	}
	return s.bareIdentifier()
}

// Value matches a KDL literal: a string, raw string, number, boolean or null.
// Type annotations are handled by callers.
func (s *Scanner) Value() (Value, bool) {
	s.err = nil
	if str, ok := s.str(); ok {
		return NewString(str), true
	}
	if s.err != nil {
		return Value{}, false
	}
	if v, ok := s.number(); ok {
		return v, true
	}
	if s.err != nil {
		return Value{}, false
	}
	switch {
	case s.Consume("true"):
		return NewBool(true), true
	case s.Consume("false"):
		return NewBool(false), true
	case s.Consume("null"):
		return Null(), true
	}
	return Value{}, false
}

func (s *Scanner) fail(offset int, format string, args ...any) {
	s.err = &ScanError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func (s *Scanner) str() (string, bool) {
	if s.HasPrefix(`"`) {
		return s.escapedString()
	}
	return s.rawString()
}

func (s *Scanner) escapedString() (string, bool) {
	start := s.pos
	var b strings.Builder

	for i := start + 1; i < len(s.src); {
		c := s.src[i]
		switch c {
		case '"':
			s.pos = i + 1
			return b.String(), true
		case '\\':
			r, next, ok := s.escape(i)
			if !ok {
				return "", false
			}
			b.WriteRune(r)
			i = next
		default:
			b.WriteByte(c)
			i++
		}
	}

	s.fail(start, "unterminated string")
	return "", false
}

// escape decodes the escape sequence whose backslash sits at offset i.
func (s *Scanner) escape(i int) (rune, int, bool) {
	if i+1 >= len(s.src) {
		s.fail(i, "unterminated escape sequence")
		return 0, 0, false
	}

	switch s.src[i+1] {
	case '"':
		return '"', i + 2, true
	case '\\':
		return '\\', i + 2, true
	case '/':
		return '/', i + 2, true
	case 'b':
		return '\b', i + 2, true
	case 'f':
		return '\f', i + 2, true
	case 'n':
		return '\n', i + 2, true
	case 'r':
		return '\r', i + 2, true
	case 't':
		return '\t', i + 2, true
	case 'u':
		return s.unicodeEscape(i)
	default:
		s.fail(i, "invalid escape sequence %q", s.src[i:i+2])
		return 0, 0, false
	}
}

// unicodeEscape decodes `\u{` hex-digit{1,6} `}`.
func (s *Scanner) unicodeEscape(i int) (rune, int, bool) {
	rest := s.src[i+2:]
	if !strings.HasPrefix(rest, "{") {
		s.fail(i, `unicode escape must use \u{...}`)
		return 0, 0, false
	}

	end := strings.IndexByte(rest, '}')
	if end < 2 || end > 7 {
		s.fail(i, "unicode escape must hold 1 to 6 hex digits")
		return 0, 0, false
	}

	code, err := strconv.ParseUint(rest[1:end], 16, 32)
	if err != nil || !utf8.ValidRune(rune(code)) {
		s.fail(i, "invalid unicode escape %q", rest[:end+1])
		return 0, 0, false
	}

	return rune(code), i + 2 + end + 1, true
}

// rawString matches `r` `#`* `"` .* `"` `#`* with balanced hashes.
func (s *Scanner) rawString() (string, bool) {
	start := s.pos
	if !strings.HasPrefix(s.src[start:], "r") {
		return "", false
	}

	i := start + 1
	for i < len(s.src) && s.src[i] == '#' {
		i++
	}
	if i >= len(s.src) || s.src[i] != '"' {
		return "", false
	}

	hashes := s.src[start+1 : i]
	body := i + 1
	end := strings.Index(s.src[body:], `"`+hashes)
	if end < 0 {
		s.fail(start, "unterminated raw string")
		return "", false
	}

	s.pos = body + end + 1 + len(hashes)
	return s.src[body : body+end], true
}

// bareIdentifier matches
// `((identifier-char - digit - sign) identifier-char* | sign ((identifier-char - digit) identifier-char*)?) - keyword`.
func (s *Scanner) bareIdentifier() (string, bool) {
	start := s.pos
	i := start

	r, size := utf8.DecodeRuneInString(s.src[i:])
	if i >= len(s.src) || !isIdentifierChar(r) {
		return "", false
	}

	if r == '+' || r == '-' {
		i += size
		if i < len(s.src) {
			next, _ := utf8.DecodeRuneInString(s.src[i:])
			if isDigit(next) {
				return "", false
			}
		}
	} else if isDigit(r) {
		return "", false
	}

	for i < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[i:])
		if !isIdentifierChar(r) {
			break
		}
		i += size
	}

	ident := s.src[start:i]
	if isKeyword(ident) {
		return "", false
	}

	s.pos = i
	return ident, true
}

// number matches decimal, hexadecimal, octal and binary literals with optional sign and
// `_` separators. Decimals with a fraction or exponent become floats.
func (s *Scanner) number() (Value, bool) {
	start := s.pos
	i := start

	sign := ""
	if i < len(s.src) && (s.src[i] == '+' || s.src[i] == '-') {
		sign = s.src[i : i+1]
		i++
	}

	if i+1 < len(s.src) && s.src[i] == '0' {
		var base int
		switch s.src[i+1] {
		case 'x':
			base = 16
		case 'o':
			base = 8
		case 'b':
			base = 2
		}
		if base != 0 {
			if digits, end := scanDigits(s.src, i+2, base); end > i+2 {
				n, err := strconv.ParseInt(sign+digits, base, 64)
				if err != nil {
					s.fail(start, "integer %q out of range", s.src[start:end])
					return Value{}, false
				}
				s.pos = end
				return NewInteger(n), true
			}
		}
	}

	_, end := scanDigits(s.src, i, 10)
	if end == i {
		return Value{}, false
	}
	i = end

	isFloat := false
	if i < len(s.src) && s.src[i] == '.' {
		if _, end := scanDigits(s.src, i+1, 10); end > i+1 {
			i = end
			isFloat = true
		}
	}
	if i < len(s.src) && (s.src[i] == 'e' || s.src[i] == 'E') {
		j := i + 1
		if j < len(s.src) && (s.src[j] == '+' || s.src[j] == '-') {
			j++
		}
		if _, end := scanDigits(s.src, j, 10); end > j {
			i = end
			isFloat = true
		}
	}

	literal := strings.ReplaceAll(s.src[start:i], "_", "")
	if isFloat {
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			s.fail(start, "float %q out of range", s.src[start:i])
			return Value{}, false
		}
		s.pos = i
		return NewFloat(f), true
	}

	n, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		s.fail(start, "integer %q out of range", s.src[start:i])
		return Value{}, false
	}
	s.pos = i
	return NewInteger(n), true
}

// scanDigits reads a digit in base followed by digits or underscores, starting at i.
// It returns the digits without underscores and the end offset; end == i when nothing matched.
func scanDigits(src string, i int, base int) (string, int) {
	if i >= len(src) || !isBaseDigit(src[i], base) {
		return "", i
	}

	var b strings.Builder
	j := i
	for j < len(src) && (isBaseDigit(src[j], base) || src[j] == '_') {
		if src[j] != '_' {
			b.WriteByte(src[j])
		}
		j++
	}
	return b.String(), j
}

func isBaseDigit(c byte, base int) bool {
	switch base {
	case 2:
		return c == '0' || c == '1'
	case 8:
		return c >= '0' && c <= '7'
	case 16:
		return isDigit(rune(c)) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	default:
		return isDigit(rune(c))
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isKeyword(s string) bool {
	return s == "true" || s == "false" || s == "null"
}

func isIdentifierChar(r rune) bool {
	if r <= 0x20 || r == utf8.RuneError || r == bom || isUnicodeSpace(r) || isNewline(r) {
		return false
	}
	return !strings.ContainsRune(`\/(){}<>;[]=,"`, r)
}

func isNewline(r rune) bool {
	switch r {
	case '\r', '\n', '\u0085', '\u000C', '\u2028', '\u2029':
		return true
	}
	return false
}

func isUnicodeSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\u00A0', '\u1680', '\u202F', '\u205F', '\u3000':
		return true
	}
	return r >= '\u2000' && r <= '\u200A'
}

// IsBareIdentifier reports whether s can be written without quotes.
func IsBareIdentifier(s string) bool {
	sc := NewScanner(s)
	_, ok := sc.bareIdentifier()
	return ok && sc.EOF()
}
