package tkz

import (
	"bytes"
	"unicode/utf8"
)

// Buffer is a growable byte buffer that also tracks its size in characters.
// Character-level deletes count UTF-8 codepoints from the respective end.
type Buffer struct {
	data    []byte
	nrChars int
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) IsEmpty() bool {
	return len(b.data) == 0
}

func (b *Buffer) SizeBytes() int {
	return len(b.data)
}

func (b *Buffer) SizeChars() int {
	return b.nrChars
}

func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) String() string {
	return string(b.data)
}

// AppendRune appends the UTF-8 encoding of c.
func (b *Buffer) AppendRune(c rune) {
	b.data = utf8.AppendRune(b.data, c)
	b.nrChars++
}

// AppendBytes appends raw bytes, counting the characters they encode.
func (b *Buffer) AppendBytes(p []byte) {
	b.data = append(b.data, p...)
	b.nrChars += utf8.RuneCount(p)
}

// AppendString appends the bytes of s.
func (b *Buffer) AppendString(s string) {
	b.data = append(b.data, s...)
	b.nrChars += utf8.RuneCountInString(s)
}

// AppendBuffer appends the contents of another buffer.
func (b *Buffer) AppendBuffer(other *Buffer) {
	b.data = append(b.data, other.data...)
	b.nrChars += other.nrChars
}

// DeleteHeadChars removes up to n characters from the head.
func (b *Buffer) DeleteHeadChars(n int) {
	off := 0
	for n > 0 && off < len(b.data) {
		_, sz := utf8.DecodeRune(b.data[off:])
		off += sz
		n--
		b.nrChars--
	}
	b.data = b.data[off:]
}

// DeleteTailChars removes up to n characters from the tail.
func (b *Buffer) DeleteTailChars(n int) {
	for n > 0 && len(b.data) > 0 {
		_, sz := utf8.DecodeLastRune(b.data)
		b.data = b.data[:len(b.data)-sz]
		n--
		b.nrChars--
	}
}

func (b *Buffer) StartsWith(s string) bool {
	return bytes.HasPrefix(b.data, []byte(s))
}

func (b *Buffer) EndsWith(s string) bool {
	return bytes.HasSuffix(b.data, []byte(s))
}

func (b *Buffer) EqualsTo(s string) bool {
	return string(b.data) == s
}

// LastChar returns the final character, or EndOfFile when empty.
func (b *Buffer) LastChar() rune {
	if len(b.data) == 0 {
		return EndOfFile
	}
	c, _ := utf8.DecodeLastRune(b.data)
	return c
}

// IsInt reports whether the contents form a decimal integer with an
// optional leading sign.
func (b *Buffer) IsInt() bool {
	if len(b.data) == 0 {
		return false
	}
	i := 0
	if b.data[0] == '-' || b.data[0] == '+' {
		i++
	}
	if i == len(b.data) {
		return false
	}
	for ; i < len(b.data); i++ {
		if b.data[i] < '0' || b.data[i] > '9' {
			return false
		}
	}
	return true
}

// IsNumber reports whether the contents form a JSON-style number with an
// optional exponent.
func (b *Buffer) IsNumber() bool {
	s := b.data
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '-' || s[i] == '+') {
			i++
		}
		digits = 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
		if digits == 0 {
			return false
		}
	}
	return i == len(s)
}

// IsWhitespace reports whether every character is tokenizer whitespace.
func (b *Buffer) IsWhitespace() bool {
	for _, c := range string(b.data) {
		if !IsWhitespace(c) {
			return false
		}
	}
	return len(b.data) > 0
}

func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.nrChars = 0
}
