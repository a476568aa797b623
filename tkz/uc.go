// Package tkz provides the shared tokenizer substrate: a character reader
// with line/column tracking and one-character push-back, a growable byte
// buffer, a bounded line cache for diagnostics, and static binary search
// trees for entity and keyword matching.
package tkz

import "unicode/utf8"

const (
	// EndOfFile is the character reported once the input is exhausted.
	EndOfFile rune = 0
	// InvalidCharacter is reported for bytes that do not form valid UTF-8.
	InvalidCharacter rune = -1
	// BOM is treated as whitespace when it leads the stream.
	BOM rune = 0xFEFF
)

// UC is one decoded character together with its source position.
type UC struct {
	Character rune
	UTF8      []byte
	Line      int
	Column    int
	Position  int
}

// IsEOF reports whether c marks the end of the stream.
func IsEOF(c rune) bool {
	return c == EndOfFile
}

// IsWhitespace matches space, LF, HT and FF.
func IsWhitespace(c rune) bool {
	switch c {
	case ' ', 0x0A, 0x09, 0x0C:
		return true
	}
	return false
}

// IsSeparator matches the closed set of EJSON structural separators.
func IsSeparator(c rune) bool {
	switch c {
	case '{', '}', '[', ']', '<', '>', '(', ')', ',', ':':
		return true
	}
	return false
}

// IsDelimiter matches characters that terminate an unquoted token.
func IsDelimiter(c rune) bool {
	switch c {
	case EndOfFile, ' ', 0x0A, 0x09, 0x0C,
		'{', '}', '[', ']', '(', ')', '<', '>', '$', ':', ';', '&', '|', ',':
		return true
	}
	return false
}

func IsC0(c rune) bool {
	return c >= 0 && c < 0x20
}

func IsASCII(c rune) bool {
	return c >= 0 && c <= 0x7F
}

func IsASCIIDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func IsASCIIBinaryDigit(c rune) bool {
	return c == '0' || c == '1'
}

func IsASCIIHexDigit(c rune) bool {
	return IsASCIIDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func IsASCIIOctalDigit(c rune) bool {
	return c >= '0' && c <= '7'
}

func IsASCIIAlpha(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func IsASCIIAlphaNumeric(c rune) bool {
	return IsASCIIDigit(c) || IsASCIIAlpha(c)
}

func ToASCIILower(c rune) rune {
	if c >= 'A' && c <= 'Z' {
		return c | 0x20
	}
	return c
}

// EncodeUTF8 returns the UTF-8 bytes of c. EOF encodes to nothing.
func EncodeUTF8(c rune) []byte {
	if c == EndOfFile || c == InvalidCharacter {
		return nil
	}
	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, c)
	return buf[:n]
}
