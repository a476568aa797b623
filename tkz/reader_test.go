package tkz

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(r *Reader) []UC {
	var out []UC
	for {
		uc := r.NextChar()
		if IsEOF(uc.Character) {
			return out
		}
		out = append(out, uc)
	}
}

func TestReaderLineColumnTracking(t *testing.T) {
	r := NewReader(strings.NewReader("ab\ncd"))
	ucs := readAll(r)
	require.Len(t, ucs, 5)

	assert.Equal(t, rune('a'), ucs[0].Character)
	assert.Equal(t, 1, ucs[0].Line)
	assert.Equal(t, 1, ucs[0].Column)

	assert.Equal(t, rune('b'), ucs[1].Character)
	assert.Equal(t, 2, ucs[1].Column)

	assert.Equal(t, rune('\n'), ucs[2].Character)
	assert.Equal(t, 1, ucs[2].Line)

	assert.Equal(t, rune('c'), ucs[3].Character)
	assert.Equal(t, 2, ucs[3].Line)
	assert.Equal(t, 1, ucs[3].Column)

	assert.Equal(t, rune('d'), ucs[4].Character)
	assert.Equal(t, 2, ucs[4].Column)
}

func TestReaderReconsume(t *testing.T) {
	r := NewReader(strings.NewReader("xy"))

	uc := r.NextChar()
	assert.Equal(t, rune('x'), uc.Character)

	require.True(t, r.Reconsume())
	again := r.NextChar()
	assert.Equal(t, rune('x'), again.Character)
	assert.Equal(t, uc.Position, again.Position)

	uc = r.NextChar()
	assert.Equal(t, rune('y'), uc.Character)
}

func TestReaderInvalidUTF8(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{'a', 0xFF, 'b'}))

	uc := r.NextChar()
	assert.Equal(t, rune('a'), uc.Character)

	uc = r.NextChar()
	assert.Equal(t, InvalidCharacter, uc.Character)
}

func TestReaderMultibyte(t *testing.T) {
	r := NewReader(strings.NewReader("汉字"))

	uc := r.NextChar()
	assert.Equal(t, rune('汉'), uc.Character)
	assert.Equal(t, []byte("汉"), uc.UTF8)
	assert.Equal(t, 1, uc.Column)

	uc = r.NextChar()
	assert.Equal(t, rune('字'), uc.Character)
	assert.Equal(t, 2, uc.Column)

	uc = r.NextChar()
	assert.True(t, IsEOF(uc.Character))
}

func TestReaderLineCache(t *testing.T) {
	r := NewReader(strings.NewReader("first\nsecond\nthird"))
	r.SetLineCache(NewLineCache(3))
	readAll(r)

	line, ok := r.GetLineFromCache(1)
	assert.True(t, ok)
	assert.Equal(t, "first", line)

	line, ok = r.GetLineFromCache(2)
	assert.True(t, ok)
	assert.Equal(t, "second", line)

	// the last line is still under construction
	assert.Equal(t, "third", r.CurrLine())
}

func TestReaderFromUCS(t *testing.T) {
	src := NewReader(strings.NewReader("ok"))
	buffered := readAll(src)

	r := NewReaderFromUCS(buffered)
	replay := readAll(r)
	require.Len(t, replay, 2)
	assert.Equal(t, buffered, replay)
}

func TestCharClasses(t *testing.T) {
	for _, c := range "{}[]<>(),:" {
		assert.True(t, IsSeparator(c), "separator %q", c)
	}
	assert.False(t, IsSeparator('$'))

	for _, c := range " \n\t\f" {
		assert.True(t, IsWhitespace(c), "whitespace %q", c)
	}
	assert.False(t, IsWhitespace('\v'))

	assert.True(t, IsDelimiter(EndOfFile))
	assert.True(t, IsDelimiter(';'))
	assert.True(t, IsASCIIHexDigit('f'))
	assert.True(t, IsASCIIHexDigit('F'))
	assert.False(t, IsASCIIHexDigit('g'))
	assert.Equal(t, rune('a'), ToASCIILower('A'))
}
