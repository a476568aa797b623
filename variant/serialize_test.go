package variant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serialized(t *testing.T, v *Variant, flags SerializeFlags) string {
	t.Helper()
	s, err := SerializeToString(v, flags)
	require.NoError(t, err)
	return s
}

func TestSerializeScalars(t *testing.T) {
	assert.Equal(t, "null", serialized(t, MakeNull(), 0))
	assert.Equal(t, "undefined", serialized(t, MakeUndefined(), 0))
	assert.Equal(t, "true", serialized(t, MakeBoolean(true), 0))
	assert.Equal(t, "false", serialized(t, MakeBoolean(false), 0))
	assert.Equal(t, "42", serialized(t, MakeNumber(42), 0))
	assert.Equal(t, "2.5", serialized(t, MakeNumber(2.5), 0))
	assert.Equal(t, "NaN", serialized(t, MakeNumber(math.NaN()), 0))
	assert.Equal(t, "Infinity", serialized(t, MakeNumber(math.Inf(1)), 0))
	assert.Equal(t, "-Infinity", serialized(t, MakeNumber(math.Inf(-1)), 0))
}

func TestSerializeSuffixedNumbers(t *testing.T) {
	assert.Equal(t, "9L", serialized(t, MakeLongInt(9), 0))
	assert.Equal(t, "9UL", serialized(t, MakeULongInt(9), 0))
	assert.Equal(t, "1.5FL", serialized(t, MakeLongDouble(1.5), 0))

	// plain stringification drops the suffixes
	assert.Equal(t, "9", serialized(t, MakeLongInt(9), SerializePlain))
	// unless the runtime-string flag asks for them
	assert.Equal(t, "9L", serialized(t, MakeLongInt(9), SerializePlain|SerializeRuntimeString))
}

func TestSerializeStrings(t *testing.T) {
	s := MustMakeString("say \"hi\"\n")
	assert.Equal(t, `"say \"hi\"\n"`, serialized(t, s, 0))
	assert.Equal(t, "say \"hi\"\n", serialized(t, s, SerializePlain))

	slash := MustMakeString("a/b")
	assert.Equal(t, `"a\/b"`, serialized(t, slash, 0))
	assert.Equal(t, `"a/b"`, serialized(t, slash, SerializeNoSlashEscape))
}

func TestSerializeByteSequence(t *testing.T) {
	bs := MakeByteSequence([]byte{0x0f, 0x1e})
	assert.Equal(t, "bx0f1e", serialized(t, bs, 0))
}

func TestSerializeContainers(t *testing.T) {
	obj := MakeObject(
		KV{"a", MakeNumber(1)},
		KV{"b", MakeArray(MakeBoolean(true), MakeNull())},
	)
	assert.Equal(t, `{"a":1,"b":[true,null]}`, serialized(t, obj, 0))
	assert.Equal(t, `{"a": 1, "b": [true, null]}`, serialized(t, obj, SerializeSpaced))

	tup := MakeTuple(MakeNumber(1), MakeNumber(2))
	assert.Equal(t, "[!1,2!]", serialized(t, tup, 0))
}

func TestSerializeSetAsArrayInIndexOrder(t *testing.T) {
	set, err := MakeSet("id", false)
	require.NoError(t, err)
	for _, id := range []float64{3, 1, 2} {
		member := MakeObject(KV{"id", MakeNumber(id)})
		require.NoError(t, set.SetAdd(member, CRComplain))
	}
	assert.Equal(t, `[{"id":3},{"id":1},{"id":2}]`, serialized(t, set, 0))
}

func TestSerializePretty(t *testing.T) {
	obj := MakeObject(KV{"a", MakeNumber(1)})
	expected := "{\n  \"a\": 1\n}"
	assert.Equal(t, expected, serialized(t, obj, SerializePretty))

	// an empty object stays on one line
	assert.Equal(t, "{}", serialized(t, MakeObject(), SerializePretty))
}

func TestStringifyContainers(t *testing.T) {
	arr := MakeArray(MakeNumber(1), MakeNumber(2), MakeNumber(3))
	assert.Equal(t, "[1,2,3]", Stringify(arr))
	assert.Equal(t, "plain", Stringify(MustMakeString("plain")))
	assert.Equal(t, "null", Stringify(MakeNull()))
}
