package variant

import (
	"encoding/hex"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/hvml/purc"
)

// SerializeFlags is the bit-set steering Serialize.
type SerializeFlags uint32

const (
	// SerializePretty indents containers over multiple lines.
	SerializePretty SerializeFlags = 1 << iota
	// SerializeSpaced puts spaces after `:` and `,`.
	SerializeSpaced
	// SerializeNoZero trims redundant fractional zeros; the shortest
	// round-trip formatting never produces them, so the flag is accepted
	// for compatibility.
	SerializeNoZero
	// SerializeNoSlashEscape leaves `/` unescaped inside strings.
	SerializeNoSlashEscape
	// SerializePlain stringifies: strings stay unquoted and numeric
	// suffixes are dropped.
	SerializePlain
	// SerializeRuntimeString forces the L/UL/FL suffixes even in plain
	// output.
	SerializeRuntimeString
)

type serializer struct {
	w     io.Writer
	flags SerializeFlags
	err   error
}

func (s *serializer) writeString(str string) {
	if s.err == nil {
		_, s.err = io.WriteString(s.w, str)
	}
}

// Serialize renders v as canonical UTF-8 text. With SerializePlain
// cleared the output is EJSON the tokenizer accepts. Sets are written as
// arrays, exceptions as strings, and dynamic and native values as
// undefined, so those kinds do not parse back as themselves.
func Serialize(w io.Writer, v *Variant, flags SerializeFlags) error {
	s := &serializer{w: w, flags: flags}
	s.serialize(v, 0)
	return s.err
}

// SerializeToString is Serialize into a string.
func SerializeToString(v *Variant, flags SerializeFlags) (string, error) {
	var sb strings.Builder
	if err := Serialize(&sb, v, flags); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Stringify derives the plain textual form: strings unquoted, containers
// in their serialized shape.
func Stringify(v *Variant) string {
	s, err := SerializeToString(v, SerializePlain)
	if err != nil {
		return ""
	}
	return s
}

func (s *serializer) plain() bool {
	return s.flags&SerializePlain != 0
}

func (s *serializer) suffixed() bool {
	if s.flags&SerializeRuntimeString != 0 {
		return true
	}
	return !s.plain()
}

func (s *serializer) serialize(v *Variant, level int) {
	if v == nil {
		s.writeString("undefined")
		return
	}
	switch v.kind {
	case KindUndefined:
		s.writeString("undefined")
	case KindNull:
		s.writeString("null")
	case KindBoolean:
		if v.b {
			s.writeString("true")
		} else {
			s.writeString("false")
		}
	case KindNumber:
		s.writeString(formatFloat(v.f64))
	case KindLongInt:
		s.writeString(strconv.FormatInt(v.i64, 10))
		if s.suffixed() {
			s.writeString("L")
		}
	case KindULongInt:
		s.writeString(strconv.FormatUint(v.u64, 10))
		if s.suffixed() {
			s.writeString("UL")
		}
	case KindLongDouble:
		s.writeString(formatFloat(v.f64))
		if s.suffixed() {
			s.writeString("FL")
		}
	case KindString, KindAtomString, KindException:
		if s.plain() {
			s.writeString(v.StringBytes())
		} else {
			s.writeQuoted(v.StringBytes())
		}
	case KindBSequence:
		s.writeString("bx")
		s.writeString(hex.EncodeToString(v.bseq))
	case KindDynamic, KindNative:
		s.writeString("undefined")
	case KindObject:
		s.serializeObject(v, level)
	case KindArray:
		s.serializeSequence(v.arr.elems, "[", "]", level)
	case KindTuple:
		s.serializeSequence(v.tup.elems, "[!", "!]", level)
	case KindSet:
		s.serializeSequence(setValues(v.set), "[", "]", level)
	default:
		if s.err == nil {
			s.err = purc.Errorf(purc.ErrNotSupported, "cannot serialize %s", v.kind)
		}
	}
}

func (s *serializer) serializeObject(v *Variant, level int) {
	s.writeString("{")
	first := true
	for node := v.obj.head; node != nil; node = node.next {
		if !first {
			s.writeString(",")
			if s.flags&SerializeSpaced != 0 && s.flags&SerializePretty == 0 {
				s.writeString(" ")
			}
		}
		first = false
		s.newlineIndent(level + 1)
		s.writeQuoted(node.key)
		s.writeString(":")
		if s.flags&(SerializeSpaced|SerializePretty) != 0 {
			s.writeString(" ")
		}
		s.serialize(node.val, level+1)
	}
	if !first {
		s.newlineIndent(level)
	}
	s.writeString("}")
}

func (s *serializer) serializeSequence(elems []*Variant, open, closing string, level int) {
	s.writeString(open)
	for i, e := range elems {
		if i > 0 {
			s.writeString(",")
			if s.flags&SerializeSpaced != 0 && s.flags&SerializePretty == 0 {
				s.writeString(" ")
			}
		}
		s.newlineIndent(level + 1)
		s.serialize(e, level+1)
	}
	if len(elems) > 0 {
		s.newlineIndent(level)
	}
	s.writeString(closing)
}

func (s *serializer) newlineIndent(level int) {
	if s.flags&SerializePretty == 0 {
		return
	}
	s.writeString("\n")
	s.writeString(strings.Repeat("  ", level))
}

func (s *serializer) writeQuoted(str string) {
	s.writeString(`"`)
	for _, c := range str {
		switch c {
		case '"':
			s.writeString(`\"`)
		case '\\':
			s.writeString(`\\`)
		case '\n':
			s.writeString(`\n`)
		case '\r':
			s.writeString(`\r`)
		case '\t':
			s.writeString(`\t`)
		case '\b':
			s.writeString(`\b`)
		case '\f':
			s.writeString(`\f`)
		case '/':
			if s.flags&SerializeNoSlashEscape != 0 {
				s.writeString("/")
			} else {
				s.writeString(`\/`)
			}
		default:
			if c < 0x20 {
				const hexdigits = "0123456789abcdef"
				s.writeString(`\u00`)
				s.writeString(string(hexdigits[(c>>4)&0xF]))
				s.writeString(string(hexdigits[c&0xF]))
			} else {
				s.writeString(string(c))
			}
		}
	}
	s.writeString(`"`)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
