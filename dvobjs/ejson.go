package dvobjs

import (
	"github.com/hvml/purc"
	"github.com/hvml/purc/ejson"
	"github.com/hvml/purc/variant"
	"github.com/hvml/purc/vcm"
)

// NewEJSON publishes the EJSON helper object: type, count, numberify,
// booleanize, stringify, serialize and parse over arbitrary variants.
func NewEJSON() (*variant.Variant, error) {
	return MakeFromMethods(MethodTable{
		"type":       {Getter: ejsonType},
		"count":      {Getter: ejsonCount},
		"numberify":  {Getter: ejsonNumberify},
		"booleanize": {Getter: ejsonBooleanize},
		"stringify":  {Getter: ejsonStringify},
		"serialize":  {Getter: ejsonSerialize},
		"parse":      {Getter: ejsonParse},
	})
}

func wantArg(args []*variant.Variant, silently bool) (*variant.Variant, error) {
	if len(args) < 1 || args[0] == nil {
		if silently {
			return nil, nil
		}
		return nil, purc.NewError(purc.ErrArgumentMissed)
	}
	return args[0], nil
}

func ejsonType(root *variant.Variant, args []*variant.Variant, silently bool) (*variant.Variant, error) {
	arg, err := wantArg(args, silently)
	if err != nil {
		return nil, err
	}
	if arg == nil {
		return variant.MakeString("undefined")
	}
	return variant.MakeString(arg.Kind().String())
}

func ejsonCount(root *variant.Variant, args []*variant.Variant, silently bool) (*variant.Variant, error) {
	arg, err := wantArg(args, silently)
	if err != nil {
		return nil, err
	}
	if arg == nil {
		return variant.MakeNumber(0), nil
	}
	switch arg.Kind() {
	case variant.KindUndefined:
		return variant.MakeNumber(0), nil
	case variant.KindObject:
		n, _ := arg.ObjectSize()
		return variant.MakeNumber(float64(n)), nil
	case variant.KindArray:
		n, _ := arg.ArraySize()
		return variant.MakeNumber(float64(n)), nil
	case variant.KindSet:
		n, _ := arg.SetSize()
		return variant.MakeNumber(float64(n)), nil
	case variant.KindTuple:
		n, _ := arg.TupleSize()
		return variant.MakeNumber(float64(n)), nil
	}
	return variant.MakeNumber(1), nil
}

func ejsonNumberify(root *variant.Variant, args []*variant.Variant, silently bool) (*variant.Variant, error) {
	arg, err := wantArg(args, silently)
	if err != nil {
		return nil, err
	}
	return variant.MakeNumber(variant.Numberify(arg)), nil
}

func ejsonBooleanize(root *variant.Variant, args []*variant.Variant, silently bool) (*variant.Variant, error) {
	arg, err := wantArg(args, silently)
	if err != nil {
		return nil, err
	}
	return variant.MakeBoolean(variant.Booleanize(arg)), nil
}

func ejsonStringify(root *variant.Variant, args []*variant.Variant, silently bool) (*variant.Variant, error) {
	arg, err := wantArg(args, silently)
	if err != nil {
		return nil, err
	}
	return variant.MakeString(variant.Stringify(arg))
}

func ejsonSerialize(root *variant.Variant, args []*variant.Variant, silently bool) (*variant.Variant, error) {
	arg, err := wantArg(args, silently)
	if err != nil {
		return nil, err
	}
	s, err := variant.SerializeToString(arg, 0)
	if err != nil {
		if silently {
			return variant.MakeString("")
		}
		return nil, err
	}
	return variant.MakeString(s)
}

func ejsonParse(root *variant.Variant, args []*variant.Variant, silently bool) (*variant.Variant, error) {
	arg, err := wantArg(args, silently)
	if err != nil {
		return nil, err
	}
	if arg == nil || !arg.IsString() {
		if silently {
			return variant.MakeNull(), nil
		}
		return nil, purc.Errorf(purc.ErrWrongDataType, "parse wants a string")
	}
	tree, err := ejson.Parse(arg.StringBytes())
	if err != nil {
		if silently {
			return variant.MakeNull(), err
		}
		return nil, err
	}
	return vcm.ToVariant(tree)
}
