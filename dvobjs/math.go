package dvobjs

import (
	"math"

	"github.com/hvml/purc"
	"github.com/hvml/purc/variant"
)

// NewMath publishes the math helper object: the pi/e constants and the
// common unary and binary operations over numberified arguments.
func NewMath() (*variant.Variant, error) {
	return MakeFromMethods(MethodTable{
		"pi":    {Getter: mathConst(math.Pi)},
		"e":     {Getter: mathConst(math.E)},
		"abs":   {Getter: mathUnary(math.Abs)},
		"ceil":  {Getter: mathUnary(math.Ceil)},
		"floor": {Getter: mathUnary(math.Floor)},
		"round": {Getter: mathUnary(math.Round)},
		"sqrt":  {Getter: mathUnary(math.Sqrt)},
		"min":   {Getter: mathFold(math.Min)},
		"max":   {Getter: mathFold(math.Max)},
	})
}

func mathConst(value float64) Method {
	return func(root *variant.Variant, args []*variant.Variant, silently bool) (*variant.Variant, error) {
		return variant.MakeNumber(value), nil
	}
}

func mathUnary(fn func(float64) float64) Method {
	return func(root *variant.Variant, args []*variant.Variant, silently bool) (*variant.Variant, error) {
		arg, err := wantArg(args, silently)
		if err != nil {
			return nil, err
		}
		return variant.MakeNumber(fn(variant.Numberify(arg))), nil
	}
}

func mathFold(fn func(a, b float64) float64) Method {
	return func(root *variant.Variant, args []*variant.Variant, silently bool) (*variant.Variant, error) {
		if len(args) == 0 {
			if silently {
				return variant.MakeNumber(0), nil
			}
			return nil, purc.NewError(purc.ErrArgumentMissed)
		}
		acc := variant.Numberify(args[0])
		for _, arg := range args[1:] {
			acc = fn(acc, variant.Numberify(arg))
		}
		return variant.MakeNumber(acc), nil
	}
}
