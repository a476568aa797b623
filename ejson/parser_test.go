package ejson

import (
	"math"
	"os"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvml/purc"
	"github.com/hvml/purc/variant"
	"github.com/hvml/purc/vcm"
)

func mustParse(t *testing.T, input string) *vcm.Node {
	t.Helper()
	tree, err := Parse(input)
	require.NoError(t, err, "parsing %q", input)
	require.NotNil(t, tree)
	return tree
}

func TestParseArrayOfNumbers(t *testing.T) {
	tree := mustParse(t, "[1, 2, 3]")

	assert.Equal(t, vcm.NodeArray, tree.Kind())
	assert.True(t, tree.IsClosed())
	require.Equal(t, 3, tree.ChildrenCount())
	for i, want := range []float64{1, 2, 3} {
		child := tree.ChildAt(i)
		assert.Equal(t, vcm.NodeNumber, child.Kind())
		assert.Equal(t, want, child.Number())
	}
}

func TestParseObjectWithNestedArray(t *testing.T) {
	tree := mustParse(t, `{"a": 1, "b": [true, null]}`)

	assert.Equal(t, vcm.NodeObject, tree.Kind())
	assert.True(t, tree.IsClosed())
	require.Equal(t, 4, tree.ChildrenCount())

	assert.Equal(t, "a", tree.ChildAt(0).Text())
	assert.Equal(t, float64(1), tree.ChildAt(1).Number())

	assert.Equal(t, "b", tree.ChildAt(2).Text())
	arr := tree.ChildAt(3)
	require.Equal(t, vcm.NodeArray, arr.Kind())
	require.Equal(t, 2, arr.ChildrenCount())
	assert.Equal(t, vcm.NodeBoolean, arr.ChildAt(0).Kind())
	assert.True(t, arr.ChildAt(0).Boolean())
	assert.Equal(t, vcm.NodeNull, arr.ChildAt(1).Kind())
}

func TestParseVariableWithElementAccess(t *testing.T) {
	tree := mustParse(t, "$FOO.bar")

	require.Equal(t, vcm.NodeGetElement, tree.Kind())
	assert.True(t, tree.IsClosed())
	require.Equal(t, 2, tree.ChildrenCount())

	getVar := tree.ChildAt(0)
	require.Equal(t, vcm.NodeGetVariable, getVar.Kind())
	require.Equal(t, 1, getVar.ChildrenCount())
	assert.Equal(t, "FOO", getVar.ChildAt(0).Text())

	assert.Equal(t, "bar", tree.ChildAt(1).Text())
}

func TestParseConcatString(t *testing.T) {
	tree := mustParse(t, `"hello ${name}!"`)

	require.Equal(t, vcm.NodeConcatString, tree.Kind())
	assert.True(t, tree.IsClosed())
	require.Equal(t, 3, tree.ChildrenCount())

	assert.Equal(t, vcm.NodeString, tree.ChildAt(0).Kind())
	assert.Equal(t, "hello ", tree.ChildAt(0).Text())

	getVar := tree.ChildAt(1)
	require.Equal(t, vcm.NodeGetVariable, getVar.Kind())
	assert.Equal(t, "name", getVar.ChildAt(0).Text())

	assert.Equal(t, "!", tree.ChildAt(2).Text())
}

func TestParseEmptyObjectAtEOF(t *testing.T) {
	tree := mustParse(t, "{}")

	assert.Equal(t, vcm.NodeObject, tree.Kind())
	assert.True(t, tree.IsClosed())
	assert.Equal(t, 0, tree.ChildrenCount())
}

func TestParseScalars(t *testing.T) {
	testCases := []struct {
		input string
		check func(t *testing.T, n *vcm.Node)
	}{
		{"true", func(t *testing.T, n *vcm.Node) {
			assert.Equal(t, vcm.NodeBoolean, n.Kind())
			assert.True(t, n.Boolean())
		}},
		{"false", func(t *testing.T, n *vcm.Node) {
			assert.False(t, n.Boolean())
		}},
		{"null", func(t *testing.T, n *vcm.Node) {
			assert.Equal(t, vcm.NodeNull, n.Kind())
		}},
		{"undefined", func(t *testing.T, n *vcm.Node) {
			assert.Equal(t, vcm.NodeUndefined, n.Kind())
		}},
		{"123", func(t *testing.T, n *vcm.Node) {
			assert.Equal(t, vcm.NodeNumber, n.Kind())
			assert.Equal(t, float64(123), n.Number())
		}},
		{"-2.5e2", func(t *testing.T, n *vcm.Node) {
			assert.Equal(t, float64(-250), n.Number())
		}},
		{"NaN", func(t *testing.T, n *vcm.Node) {
			assert.True(t, math.IsNaN(n.Number()))
		}},
		{"-Infinity", func(t *testing.T, n *vcm.Node) {
			assert.True(t, math.IsInf(n.Number(), -1))
		}},
		{"42L", func(t *testing.T, n *vcm.Node) {
			assert.Equal(t, vcm.NodeLongInt, n.Kind())
			assert.Equal(t, int64(42), n.LongInt())
		}},
		{"42UL", func(t *testing.T, n *vcm.Node) {
			assert.Equal(t, vcm.NodeULongInt, n.Kind())
			assert.Equal(t, uint64(42), n.ULongInt())
		}},
		{"1.5FL", func(t *testing.T, n *vcm.Node) {
			assert.Equal(t, vcm.NodeLongDouble, n.Kind())
			assert.Equal(t, 1.5, n.LongDouble())
		}},
		{`"plain"`, func(t *testing.T, n *vcm.Node) {
			assert.Equal(t, vcm.NodeString, n.Kind())
			assert.Equal(t, "plain", n.Text())
		}},
		{`'single'`, func(t *testing.T, n *vcm.Node) {
			assert.Equal(t, "single", n.Text())
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			tc.check(t, mustParse(t, tc.input))
		})
	}
}

func TestParseStringEscapes(t *testing.T) {
	tree := mustParse(t, `"a\nb\tc\"d\\e\x41B\u{43}"`)
	assert.Equal(t, "a\nb\tc\"d\\eABC", tree.Text())
}

func TestParseByteSequences(t *testing.T) {
	tree := mustParse(t, "bx68656c6c6f")
	require.Equal(t, vcm.NodeByteSequence, tree.Kind())
	assert.Equal(t, []byte("hello"), tree.Bytes())

	tree = mustParse(t, "bb01000001")
	assert.Equal(t, []byte{0x41}, tree.Bytes())

	tree = mustParse(t, "b64aGVsbG8=")
	assert.Equal(t, []byte("hello"), tree.Bytes())
}

func TestParseTuple(t *testing.T) {
	tree := mustParse(t, "[! 1, 2, 3 !]")

	require.Equal(t, vcm.NodeTuple, tree.Kind())
	assert.True(t, tree.IsClosed())
	require.Equal(t, 3, tree.ChildrenCount())
	assert.Equal(t, float64(2), tree.ChildAt(1).Number())
}

func TestParseCJSONEE(t *testing.T) {
	tree := mustParse(t, "{{ $a; $b && $c || $d }}")

	require.Equal(t, vcm.NodeCJSONEE, tree.Kind())
	assert.True(t, tree.IsClosed())
	require.Equal(t, 7, tree.ChildrenCount())

	kinds := make([]vcm.NodeKind, 0, 7)
	for _, c := range tree.Children() {
		kinds = append(kinds, c.Kind())
	}
	assert.Equal(t, []vcm.NodeKind{
		vcm.NodeGetVariable,
		vcm.NodeCJSONEEOpSemicolon,
		vcm.NodeGetVariable,
		vcm.NodeCJSONEEOpAnd,
		vcm.NodeGetVariable,
		vcm.NodeCJSONEEOpOr,
		vcm.NodeGetVariable,
	}, kinds)
}

func TestParseCallGetterAndSetter(t *testing.T) {
	tree := mustParse(t, "$f(1, 2)")
	require.Equal(t, vcm.NodeCallGetter, tree.Kind())
	require.Equal(t, 3, tree.ChildrenCount())
	assert.Equal(t, vcm.NodeGetVariable, tree.ChildAt(0).Kind())
	assert.Equal(t, float64(1), tree.ChildAt(1).Number())

	tree = mustParse(t, "$f(! 9)")
	require.Equal(t, vcm.NodeCallSetter, tree.Kind())
	require.Equal(t, 2, tree.ChildrenCount())
	assert.Equal(t, float64(9), tree.ChildAt(1).Number())
}

func TestParseIndexedElementAccess(t *testing.T) {
	tree := mustParse(t, "$a[0]")
	require.Equal(t, vcm.NodeGetElement, tree.Kind())
	require.Equal(t, 2, tree.ChildrenCount())
	assert.Equal(t, vcm.NodeGetVariable, tree.ChildAt(0).Kind())
	assert.Equal(t, float64(0), tree.ChildAt(1).Number())
}

func TestParseNestedVariable(t *testing.T) {
	tree := mustParse(t, "$$x")
	require.Equal(t, vcm.NodeGetVariable, tree.Kind())
	require.Equal(t, 1, tree.ChildrenCount())
	inner := tree.ChildAt(0)
	require.Equal(t, vcm.NodeGetVariable, inner.Kind())
	assert.Equal(t, "x", inner.ChildAt(0).Text())
}

func TestUnexpectedComma(t *testing.T) {
	_, err := Parse("[1,,2]")
	require.Error(t, err)
	assert.Equal(t, purc.ErrUnexpectedComma, purc.CodeOf(err))
}

func TestCommasInsideStringsAreData(t *testing.T) {
	tree := mustParse(t, `"a,,b"`)
	assert.Equal(t, "a,,b", tree.Text())
}

func TestDepthLimitBoundary(t *testing.T) {
	p := NewParser(4)
	tree, err := p.ParseString("[[[[1]]]]")
	require.NoError(t, err)
	assert.Equal(t, vcm.NodeArray, tree.Kind())

	p = NewParser(4)
	_, err = p.ParseString("[[[[[1]]]]]")
	require.Error(t, err)
	assert.Equal(t, purc.ErrMaxDepthExceeded, purc.CodeOf(err))
}

func TestDefaultDepthLimit(t *testing.T) {
	deep := strings.Repeat("[", 1025) + "1" + strings.Repeat("]", 1025)
	_, err := Parse(deep)
	require.Error(t, err)
	assert.Equal(t, purc.ErrMaxDepthExceeded, purc.CodeOf(err))

	ok := strings.Repeat("[", 1024) + "1" + strings.Repeat("]", 1024)
	tree, err := Parse(ok)
	require.NoError(t, err)
	assert.Equal(t, vcm.NodeArray, tree.Kind())
}

func TestParseErrorsCarryPosition(t *testing.T) {
	_, err := Parse("[1, }")
	require.Error(t, err)
	var pe *purc.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line)
	assert.Greater(t, pe.Column, 0)
}

func TestParserNeedsResetAfterFailure(t *testing.T) {
	p := NewParser(0)
	_, err := p.ParseString("[1,,2]")
	require.Error(t, err)

	_, err = p.ParseString("[1]")
	require.Error(t, err, "a corrupt parser must refuse to run")

	p.Reset(0)
	tree, err := p.ParseString("[1]")
	require.NoError(t, err)
	assert.Equal(t, vcm.NodeArray, tree.Kind())
}

func TestParserReusableAfterSuccess(t *testing.T) {
	p := NewParser(0)
	first, err := p.ParseString("[1]")
	require.NoError(t, err)
	assert.Equal(t, 1, first.ChildrenCount())

	second, err := p.ParseString(`{"k": "v"}`)
	require.NoError(t, err)
	assert.Equal(t, vcm.NodeObject, second.Kind())
}

func TestUnexpectedEOF(t *testing.T) {
	for _, input := range []string{"", "[1, 2", `{"a": `, `"unterminated`, "$"} {
		_, err := Parse(input)
		require.Error(t, err, "input %q", input)
		assert.Equal(t, purc.ErrUnexpectedEOF, purc.CodeOf(err), "input %q", input)
	}
}

func TestUnexpectedRightBracket(t *testing.T) {
	_, err := Parse("[1]]")
	require.Error(t, err)
}

func TestProtectedExpression(t *testing.T) {
	tree := mustParse(t, "{$x}")
	require.Equal(t, vcm.NodeGetVariable, tree.Kind())
	assert.NotZero(t, tree.Extra&vcm.ExtraProtectFlag)

	tree = mustParse(t, `"{$x}"`)
	require.Equal(t, vcm.NodeConcatString, tree.Kind())
}

func TestSerializeRoundTrip(t *testing.T) {
	inputs := []string{
		"[1,2,3]",
		`{"a":1,"b":[true,null]}`,
		`"text"`,
		"[! 1, 2 !]",
		"42L",
		"7UL",
		"bx0102",
		`{"nested":{"deep":[1,[2,[3]]]}}`,
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			tree := mustParse(t, input)
			first, err := vcm.ToVariant(tree)
			require.NoError(t, err)
			defer first.Unref()

			text, err := variant.SerializeToString(first, 0)
			require.NoError(t, err)

			tree2 := mustParse(t, text)
			second, err := vcm.ToVariant(tree2)
			require.NoError(t, err)
			defer second.Unref()

			assert.True(t, variant.IsEqualTo(first, second),
				"round-trip of %q via %q", input, text)
		})
	}
}

type fixtureCase struct {
	Input string `yaml:"input"`
	Kind  string `yaml:"kind"`
	Text  string `yaml:"text"`
	Error string `yaml:"error"`
}

func TestYAMLFixtures(t *testing.T) {
	buf, err := os.ReadFile("testdata/tests.yml")
	require.NoError(t, err)

	var fixtures map[string]fixtureCase
	require.NoError(t, yaml.Unmarshal(buf, &fixtures))
	require.NotEmpty(t, fixtures)

	for name, tc := range fixtures {
		t.Run(name, func(t *testing.T) {
			tree, err := Parse(tc.Input)
			if tc.Error != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.Error)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Kind, tree.Kind().String())
			if tc.Text != "" {
				assert.Equal(t, tc.Text, tree.ToString())
			}
		})
	}
}
