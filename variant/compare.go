package variant

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// CompareMethod selects how Compare coerces its operands.
type CompareMethod int

const (
	// CompareAuto picks CompareNumber when either side is numeric,
	// CompareCase otherwise.
	CompareAuto CompareMethod = iota
	CompareCase
	CompareCaseless
	CompareNumber
)

var foldCaser = cases.Fold()

// FoldCase returns the case-folded form of s used for caseless
// comparison.
func FoldCase(s string) string {
	return foldCaser.String(s)
}

// Booleanize derives a truth value: false for null, undefined, false,
// zero, the empty string and empty containers; true otherwise.
func Booleanize(v *Variant) bool {
	if v == nil {
		return false
	}
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.b
	case KindNumber, KindLongDouble:
		return v.f64 != 0 && !math.IsNaN(v.f64)
	case KindLongInt:
		return v.i64 != 0
	case KindULongInt:
		return v.u64 != 0
	case KindString, KindAtomString:
		return v.StringBytes() != ""
	case KindBSequence:
		return len(v.bseq) != 0
	case KindObject:
		return len(v.obj.index) != 0
	case KindArray:
		return len(v.arr.elems) != 0
	case KindSet:
		return len(v.set.elems) != 0
	case KindTuple:
		return len(v.tup.elems) != 0
	}
	return true
}

// Numberify derives a float64: identity on numbers, parsing on strings,
// the size on containers; undefined and null are NaN.
func Numberify(v *Variant) float64 {
	if v == nil {
		return math.NaN()
	}
	switch v.kind {
	case KindUndefined, KindNull:
		return math.NaN()
	case KindBoolean:
		if v.b {
			return 1
		}
		return 0
	case KindNumber, KindLongDouble:
		return v.f64
	case KindLongInt:
		return float64(v.i64)
	case KindULongInt:
		return float64(v.u64)
	case KindString, KindAtomString:
		return numberifyString(v.StringBytes())
	case KindBSequence:
		return float64(len(v.bseq))
	case KindObject:
		return float64(len(v.obj.index))
	case KindArray:
		return float64(len(v.arr.elems))
	case KindSet:
		return float64(len(v.set.elems))
	case KindTuple:
		return float64(len(v.tup.elems))
	}
	return math.NaN()
}

// numberifyString parses the longest numeric prefix, the way strtod does.
func numberifyString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// longest parseable prefix
	best := 0.0
	for i := len(s); i > 0; i-- {
		if f, err := strconv.ParseFloat(s[:i], 64); err == nil {
			best = f
			break
		}
	}
	return best
}

// Compare orders two variants under the given method and returns a
// negative, zero or positive integer.
func Compare(l, r *Variant, method CompareMethod) int {
	switch method {
	case CompareNumber:
		return compareFloat(Numberify(l), Numberify(r))
	case CompareCase:
		return strings.Compare(Stringify(l), Stringify(r))
	case CompareCaseless:
		return strings.Compare(FoldCase(Stringify(l)), FoldCase(Stringify(r)))
	default: // CompareAuto
		if (l != nil && l.IsAnyNumber()) || (r != nil && r.IsAnyNumber()) {
			return compareFloat(Numberify(l), Numberify(r))
		}
		return strings.Compare(Stringify(l), Stringify(r))
	}
}

func compareFloat(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Diff is a deep structural compare: kinds order first, then payloads,
// then children. Zero means structurally equal. Set uniqueness and the
// test helpers build on it.
func Diff(l, r *Variant) int {
	switch {
	case l == r:
		return 0
	case l == nil:
		return -1
	case r == nil:
		return 1
	}
	if l.kind != r.kind {
		// the numeric kinds compare among themselves by value
		if l.IsAnyNumber() && r.IsAnyNumber() {
			return compareFloat(Numberify(l), Numberify(r))
		}
		if l.kind < r.kind {
			return -1
		}
		return 1
	}

	switch l.kind {
	case KindUndefined, KindNull:
		return 0
	case KindBoolean:
		switch {
		case l.b == r.b:
			return 0
		case !l.b:
			return -1
		}
		return 1
	case KindException, KindAtomString:
		return strings.Compare(l.StringBytes(), r.StringBytes())
	case KindNumber, KindLongDouble:
		return compareFloat(l.f64, r.f64)
	case KindLongInt:
		switch {
		case l.i64 < r.i64:
			return -1
		case l.i64 > r.i64:
			return 1
		}
		return 0
	case KindULongInt:
		switch {
		case l.u64 < r.u64:
			return -1
		case l.u64 > r.u64:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(l.str, r.str)
	case KindBSequence:
		return strings.Compare(string(l.bseq), string(r.bseq))
	case KindDynamic, KindNative:
		// identity only; distinct entities are unordered but unequal
		return 1
	case KindArray:
		return diffSequence(l.arr.elems, r.arr.elems)
	case KindTuple:
		return diffSequence(l.tup.elems, r.tup.elems)
	case KindSet:
		return diffSequence(setValues(l.set), setValues(r.set))
	case KindObject:
		return diffObject(l.obj, r.obj)
	}
	return 0
}

func diffSequence(l, r []*Variant) int {
	if d := len(l) - len(r); d != 0 {
		if d < 0 {
			return -1
		}
		return 1
	}
	for i := range l {
		if d := Diff(l[i], r[i]); d != 0 {
			return d
		}
	}
	return 0
}

func diffObject(l, r *objectData) int {
	if d := len(l.index) - len(r.index); d != 0 {
		if d < 0 {
			return -1
		}
		return 1
	}
	for node := l.head; node != nil; node = node.next {
		other, ok := r.index[node.key]
		if !ok {
			return 1
		}
		if d := Diff(node.val, other.val); d != 0 {
			return d
		}
	}
	return 0
}

// IsEqualTo reports deep structural equality.
func IsEqualTo(l, r *Variant) bool {
	return Diff(l, r) == 0
}
