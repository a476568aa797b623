package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvml/purc"
)

func record(t *testing.T, pairs ...any) *Variant {
	t.Helper()
	obj := MakeObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		key := pairs[i].(string)
		var val *Variant
		switch v := pairs[i+1].(type) {
		case int:
			val = MakeNumber(float64(v))
		case float64:
			val = MakeNumber(v)
		case string:
			val = MustMakeString(v)
		case *Variant:
			val = v
		default:
			t.Fatalf("unsupported pair value %T", v)
		}
		require.NoError(t, obj.ObjectSet(key, val))
	}
	return obj
}

func TestSetDuplicateComplain(t *testing.T) {
	set, err := MakeSet("id", false)
	require.NoError(t, err)

	require.NoError(t, set.SetAdd(record(t, "id", 1, "v", "a"), CRComplain))

	err = set.SetAdd(record(t, "id", 1, "v", "b"), CRComplain)
	require.Error(t, err)
	assert.Equal(t, purc.ErrDuplicated, purc.CodeOf(err))

	n, _ := set.SetSize()
	assert.Equal(t, 1, n)
}

func TestSetDuplicateOverwriteFiresChange(t *testing.T) {
	set, err := MakeSet("id", false)
	require.NoError(t, err)
	require.NoError(t, set.SetAdd(record(t, "id", 1, "v", "a"), CRComplain))

	var events []string
	set.RegisterPreListener(OpChange, func(*Variant, Op, []*Variant) bool {
		events = append(events, "pre")
		return true
	})
	set.RegisterPostListener(OpChange, func(*Variant, Op, []*Variant) bool {
		events = append(events, "post")
		return true
	})

	second := record(t, "id", 1, "v", "b")
	require.NoError(t, set.SetAdd(second, CROverwrite))

	n, _ := set.SetSize()
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"pre", "post"}, events)

	member, err := set.SetGetByIndex(0)
	require.NoError(t, err)
	v, err := member.ObjectGet("v")
	require.NoError(t, err)
	assert.Equal(t, "b", v.StringBytes())
}

func TestSetDuplicateIgnoreIsIdempotent(t *testing.T) {
	set, err := MakeSet("id", false)
	require.NoError(t, err)

	first := record(t, "id", 1, "v", "a")
	require.NoError(t, set.SetAdd(first, CRIgnore))
	require.NoError(t, set.SetAdd(record(t, "id", 1, "v", "b"), CRIgnore))

	n, _ := set.SetSize()
	assert.Equal(t, 1, n)

	member, _ := set.SetGetByIndex(0)
	v, _ := member.ObjectGet("v")
	assert.Equal(t, "a", v.StringBytes(), "ignore keeps the first member")
}

func TestSetRemoveMethods(t *testing.T) {
	set, err := MakeSet("id", false,
		record(t, "id", 1), record(t, "id", 2))
	require.NoError(t, err)

	err = set.SetRemove(record(t, "id", 3), NRComplain)
	assert.Equal(t, purc.ErrNotFound, purc.CodeOf(err))

	require.NoError(t, set.SetRemove(record(t, "id", 3), NRIgnore))
	n, _ := set.SetSize()
	assert.Equal(t, 2, n)

	require.NoError(t, set.SetRemove(record(t, "id", 1), NRComplain))
	n, _ = set.SetSize()
	assert.Equal(t, 1, n)
}

func TestSetGetByKeyValues(t *testing.T) {
	set, err := MakeSet("id name", false,
		record(t, "id", 1, "name", "a", "v", 10),
		record(t, "id", 2, "name", "b", "v", 20))
	require.NoError(t, err)

	member, err := set.SetGetByKeyValues(MakeNumber(2), MustMakeString("b"))
	require.NoError(t, err)
	v, _ := member.ObjectGet("v")
	assert.Equal(t, float64(20), v.Number())

	_, err = set.SetGetByKeyValues(MakeNumber(9), MustMakeString("x"))
	assert.Equal(t, purc.ErrNotFound, purc.CodeOf(err))

	_, err = set.SetGetByKeyValues(MakeNumber(1))
	assert.Equal(t, purc.ErrArgumentMissed, purc.CodeOf(err))
}

func TestSetMissingKeyFieldIsUndefined(t *testing.T) {
	set, err := MakeSet("id", false)
	require.NoError(t, err)

	require.NoError(t, set.SetAdd(record(t, "v", "no id"), CRComplain))

	err = set.SetAdd(record(t, "w", "also no id"), CRComplain)
	assert.Equal(t, purc.ErrDuplicated, purc.CodeOf(err),
		"two members both missing the key field collide")
}

func TestSetCaseless(t *testing.T) {
	set, err := MakeSet("name", true)
	require.NoError(t, err)

	require.NoError(t, set.SetAdd(record(t, "name", "Alice"), CRComplain))
	err = set.SetAdd(record(t, "name", "ALICE"), CRComplain)
	assert.Equal(t, purc.ErrDuplicated, purc.CodeOf(err))

	caseSensitive, err := MakeSet("name", false)
	require.NoError(t, err)
	require.NoError(t, caseSensitive.SetAdd(record(t, "name", "Alice"), CRComplain))
	require.NoError(t, caseSensitive.SetAdd(record(t, "name", "ALICE"), CRComplain))
}

func TestSetMemberMustBeObject(t *testing.T) {
	set, err := MakeSet("id", false)
	require.NoError(t, err)

	err = set.SetAdd(MakeNumber(1), CRComplain)
	assert.Equal(t, purc.ErrWrongDataType, purc.CodeOf(err))
}

func TestGenericSetDeduplicatesByValue(t *testing.T) {
	set, err := MakeSet("", false)
	require.NoError(t, err)

	require.NoError(t, set.SetAdd(MakeNumber(1), CRIgnore))
	require.NoError(t, set.SetAdd(MakeNumber(1), CRIgnore))
	require.NoError(t, set.SetAdd(MustMakeString("1"), CRIgnore))

	n, _ := set.SetSize()
	assert.Equal(t, 2, n, "the number 1 and the string \"1\" are distinct")
}

func TestSetReverseUpdateRekeysMember(t *testing.T) {
	set, err := MakeSet("id", false)
	require.NoError(t, err)

	member := record(t, "id", 1, "v", "a")
	require.NoError(t, set.SetAdd(member, CRComplain))

	require.NoError(t, member.ObjectSet("id", MakeNumber(2)))

	found, err := set.SetGetByKeyValues(MakeNumber(2))
	require.NoError(t, err)
	assert.Same(t, member, found)

	_, err = set.SetGetByKeyValues(MakeNumber(1))
	assert.Equal(t, purc.ErrNotFound, purc.CodeOf(err))
}

func TestSetReverseUpdateRejectsCollision(t *testing.T) {
	set, err := MakeSet("id", false)
	require.NoError(t, err)

	a := record(t, "id", 1)
	b := record(t, "id", 2)
	require.NoError(t, set.SetAdd(a, CRComplain))
	require.NoError(t, set.SetAdd(b, CRComplain))

	err = a.ObjectSet("id", MakeNumber(2))
	require.Error(t, err)
	assert.Equal(t, purc.ErrDuplicated, purc.CodeOf(err))

	// the member is exactly as before the operation began
	v, getErr := a.ObjectGet("id")
	require.NoError(t, getErr)
	assert.Equal(t, float64(1), v.Number())

	found, err := set.SetGetByKeyValues(MakeNumber(1))
	require.NoError(t, err)
	assert.Same(t, a, found)
}

func TestSetRemoveBreaksReverseUpdate(t *testing.T) {
	set, err := MakeSet("id", false)
	require.NoError(t, err)

	a := record(t, "id", 1)
	require.NoError(t, set.SetAdd(a, CRComplain))
	require.NoError(t, set.SetRemove(a, NRComplain))

	b := record(t, "id", 5)
	require.NoError(t, set.SetAdd(b, CRComplain))

	// the removed member mutates freely now
	require.NoError(t, a.ObjectSet("id", MakeNumber(5)))
	n, _ := set.SetSize()
	assert.Equal(t, 1, n)
}

func TestSetByIndexOperations(t *testing.T) {
	set, err := MakeSet("id", false,
		record(t, "id", 1), record(t, "id", 2), record(t, "id", 3))
	require.NoError(t, err)

	m, err := set.SetGetByIndex(1)
	require.NoError(t, err)
	id, _ := m.ObjectGet("id")
	assert.Equal(t, float64(2), id.Number())

	_, err = set.SetGetByIndex(3)
	assert.Equal(t, purc.ErrOutOfBounds, purc.CodeOf(err))

	require.NoError(t, set.SetSetByIndex(1, record(t, "id", 9)))
	m, _ = set.SetGetByIndex(1)
	id, _ = m.ObjectGet("id")
	assert.Equal(t, float64(9), id.Number())

	err = set.SetSetByIndex(0, record(t, "id", 9))
	assert.Equal(t, purc.ErrDuplicated, purc.CodeOf(err))

	require.NoError(t, set.SetRemoveByIndex(0))
	n, _ := set.SetSize()
	assert.Equal(t, 2, n)
}

func TestSetBulkOperations(t *testing.T) {
	makeIDSet := func(ids ...int) *Variant {
		set, err := MakeSet("id", false)
		require.NoError(t, err)
		for _, id := range ids {
			require.NoError(t, set.SetAdd(record(t, "id", id), CRComplain))
		}
		return set
	}
	ids := func(set *Variant) []float64 {
		var out []float64
		require.NoError(t, set.SetForeach(func(i int, v *Variant) bool {
			id, _ := v.ObjectGet("id")
			out = append(out, id.Number())
			return true
		}))
		return out
	}

	set := makeIDSet(1, 2)
	require.NoError(t, set.SetUnite(makeIDSet(2, 3), CRIgnore))
	assert.Equal(t, []float64{1, 2, 3}, ids(set))

	set = makeIDSet(1, 2, 3)
	require.NoError(t, set.SetIntersect(makeIDSet(2, 3, 4)))
	assert.Equal(t, []float64{2, 3}, ids(set))

	set = makeIDSet(1, 2, 3)
	require.NoError(t, set.SetSubtract(makeIDSet(2)))
	assert.Equal(t, []float64{1, 3}, ids(set))

	set = makeIDSet(1, 2)
	require.NoError(t, set.SetXor(makeIDSet(2, 3)))
	assert.Equal(t, []float64{1, 3}, ids(set))

	set = makeIDSet(1, 2)
	err := set.SetOverwrite(makeIDSet(3), NRComplain)
	assert.Equal(t, purc.ErrNotFound, purc.CodeOf(err))
	require.NoError(t, set.SetOverwrite(makeIDSet(3), NRIgnore))
}

func TestSetIterationOrders(t *testing.T) {
	set, err := MakeSet("name", false,
		record(t, "name", "charlie"),
		record(t, "name", "alice"),
		record(t, "name", "bob"))
	require.NoError(t, err)

	var insertion []string
	require.NoError(t, set.SetForeach(func(i int, v *Variant) bool {
		name, _ := v.ObjectGet("name")
		insertion = append(insertion, name.StringBytes())
		return true
	}))
	assert.Equal(t, []string{"charlie", "alice", "bob"}, insertion)

	var ordered []string
	require.NoError(t, set.SetForeachOrdered(func(v *Variant) bool {
		name, _ := v.ObjectGet("name")
		ordered = append(ordered, name.StringBytes())
		return true
	}))
	assert.Equal(t, []string{"alice", "bob", "charlie"}, ordered)
}

func TestSetUniqKeysExposed(t *testing.T) {
	set, err := MakeSet("id name", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, set.SetUniqKeys())
	assert.True(t, set.SetIsCaseless())
}

func TestSetSizeMatchesIteration(t *testing.T) {
	set, err := MakeSet("id", false)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		require.NoError(t, set.SetAdd(record(t, "id", i), CRComplain))
	}
	require.NoError(t, set.SetRemoveByIndex(0))
	require.NoError(t, set.SetRemoveByIndex(3))

	n, _ := set.SetSize()
	seen := 0
	require.NoError(t, set.SetForeach(func(int, *Variant) bool {
		seen++
		return true
	}))
	assert.Equal(t, n, seen)
	assert.Equal(t, 6, n)
}
