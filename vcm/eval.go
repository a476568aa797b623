package vcm

import (
	"strings"

	"github.com/hvml/purc"
	"github.com/hvml/purc/variant"
)

// ToVariant materializes a literal-only tree into a variant. Expression
// nodes (variable getters, calls, chains) need a runtime scope and are
// reported as NotImplemented; the interpreter's evaluator handles those.
func ToVariant(n *Node) (*variant.Variant, error) {
	if n == nil {
		return nil, purc.NewError(purc.ErrArgumentMissed)
	}
	switch n.kind {
	case NodeUndefined:
		return variant.MakeUndefined(), nil
	case NodeNull:
		return variant.MakeNull(), nil
	case NodeBoolean:
		return variant.MakeBoolean(n.b), nil
	case NodeNumber:
		return variant.MakeNumber(n.f64), nil
	case NodeLongInt:
		return variant.MakeLongInt(n.i64), nil
	case NodeULongInt:
		return variant.MakeULongInt(n.u64), nil
	case NodeLongDouble:
		return variant.MakeLongDouble(n.f64), nil
	case NodeString:
		return variant.MakeString(n.str)
	case NodeByteSequence:
		return variant.MakeByteSequence(n.bytes), nil
	case NodeObject:
		obj := variant.MakeObject()
		for i := 0; i+1 < len(n.children); i += 2 {
			key := n.children[i]
			if key.kind != NodeString {
				obj.Unref()
				return nil, purc.Errorf(purc.ErrInvalidValue, "object key must be a string literal")
			}
			val, err := ToVariant(n.children[i+1])
			if err != nil {
				obj.Unref()
				return nil, err
			}
			err = obj.ObjectSet(key.str, val)
			val.Unref()
			if err != nil {
				obj.Unref()
				return nil, err
			}
		}
		return obj, nil
	case NodeArray:
		arr := variant.MakeArray()
		for _, c := range n.children {
			val, err := ToVariant(c)
			if err != nil {
				arr.Unref()
				return nil, err
			}
			err = arr.ArrayAppend(val)
			val.Unref()
			if err != nil {
				arr.Unref()
				return nil, err
			}
		}
		return arr, nil
	case NodeTuple:
		elems := make([]*variant.Variant, 0, len(n.children))
		fail := func(err error) (*variant.Variant, error) {
			for _, e := range elems {
				e.Unref()
			}
			return nil, err
		}
		for _, c := range n.children {
			val, err := ToVariant(c)
			if err != nil {
				return fail(err)
			}
			elems = append(elems, val)
		}
		tup := variant.MakeTuple(elems...)
		for _, e := range elems {
			e.Unref()
		}
		return tup, nil
	case NodeConcatString:
		var sb strings.Builder
		for _, c := range n.children {
			if c.kind != NodeString {
				return nil, purc.Errorf(purc.ErrNotImplemented,
					"string substitution needs an evaluator scope")
			}
			sb.WriteString(c.str)
		}
		return variant.MakeString(sb.String())
	}
	return nil, purc.Errorf(purc.ErrNotImplemented, "cannot materialize %s without a scope", n.kind)
}

// IsLiteral reports whether the whole tree can be materialized by
// ToVariant without an evaluator scope.
func (n *Node) IsLiteral() bool {
	literal := true
	n.Walk(func(cur *Node) bool {
		switch cur.kind {
		case NodeGetVariable, NodeGetElement, NodeCallGetter, NodeCallSetter,
			NodeCJSONEE, NodeCJSONEEOpAnd, NodeCJSONEEOpOr, NodeCJSONEEOpSemicolon:
			literal = false
			return false
		}
		return true
	})
	return literal
}
