package variant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooleanize(t *testing.T) {
	falsy := []*Variant{
		MakeNull(),
		MakeUndefined(),
		MakeBoolean(false),
		MakeNumber(0),
		MustMakeString(""),
		MakeObject(),
		MakeArray(),
		MakeTuple(),
		MakeByteSequence(nil),
	}
	for _, v := range falsy {
		assert.False(t, Booleanize(v), "kind %s", v.Kind())
	}

	truthy := []*Variant{
		MakeBoolean(true),
		MakeNumber(0.5),
		MakeLongInt(-1),
		MustMakeString("x"),
		MakeArray(MakeNull()),
	}
	for _, v := range truthy {
		assert.True(t, Booleanize(v), "kind %s", v.Kind())
	}
}

func TestNumberify(t *testing.T) {
	assert.Equal(t, 2.5, Numberify(MakeNumber(2.5)))
	assert.Equal(t, float64(1), Numberify(MakeBoolean(true)))
	assert.Equal(t, float64(0), Numberify(MakeBoolean(false)))
	assert.Equal(t, float64(42), Numberify(MustMakeString("42")))
	assert.Equal(t, float64(-3), Numberify(MakeLongInt(-3)))
	assert.True(t, math.IsNaN(Numberify(MakeNull())))
	assert.True(t, math.IsNaN(Numberify(MakeUndefined())))

	// containers numberify to their size
	assert.Equal(t, float64(2), Numberify(MakeArray(MakeNull(), MakeNull())))
}

func TestCompareMethods(t *testing.T) {
	assert.Negative(t, Compare(MakeNumber(1), MakeNumber(2), CompareNumber))
	assert.Zero(t, Compare(MakeNumber(2), MustMakeString("2"), CompareNumber))
	assert.Positive(t, Compare(MustMakeString("b"), MustMakeString("a"), CompareCase))

	assert.Zero(t, Compare(MustMakeString("ABC"), MustMakeString("abc"), CompareCaseless))
	assert.NotZero(t, Compare(MustMakeString("ABC"), MustMakeString("abc"), CompareCase))

	// auto picks numeric when either side is a number
	assert.Zero(t, Compare(MakeNumber(10), MustMakeString("10"), CompareAuto))
	assert.Negative(t, Compare(MustMakeString("a"), MustMakeString("b"), CompareAuto))
}

func TestDiffStructural(t *testing.T) {
	l := MakeObject(
		KV{"a", MakeNumber(1)},
		KV{"b", MakeArray(MakeBoolean(true), MakeNull())},
	)
	r := MakeObject(
		KV{"a", MakeNumber(1)},
		KV{"b", MakeArray(MakeBoolean(true), MakeNull())},
	)
	assert.Zero(t, Diff(l, r))
	assert.True(t, IsEqualTo(l, r))

	require.NoError(t, r.ObjectSet("a", MakeNumber(2)))
	assert.NotZero(t, Diff(l, r))
}

func TestDiffNumericKindsCompareByValue(t *testing.T) {
	assert.Zero(t, Diff(MakeNumber(5), MakeLongInt(5)))
	assert.NotZero(t, Diff(MakeNumber(5), MustMakeString("5")))
}

func TestDiffSequences(t *testing.T) {
	assert.Zero(t, Diff(MakeTuple(MakeNumber(1)), MakeTuple(MakeNumber(1))))
	assert.NotZero(t, Diff(MakeArray(MakeNumber(1)), MakeArray(MakeNumber(1), MakeNumber(2))))
}

func TestFoldCase(t *testing.T) {
	assert.Equal(t, FoldCase("Straße"), FoldCase("STRASSE"))
	assert.Equal(t, FoldCase("HeLLo"), FoldCase("hello"))
}
