package variant

import "github.com/hvml/purc"

type tupleData struct {
	elems []*Variant
}

// MakeTuple creates a tuple with fixed arity len(vals); nil slots are
// filled with undefined. The arity never changes afterwards.
func MakeTuple(vals ...*Variant) *Variant {
	v := newVariant(KindTuple)
	v.tup = &tupleData{elems: make([]*Variant, 0, len(vals))}
	for _, val := range vals {
		if val == nil {
			val = MakeUndefined()
			v.tup.elems = append(v.tup.elems, val)
		} else {
			v.tup.elems = append(v.tup.elems, val.Ref())
		}
		addRevEdge(val, v)
	}
	return v
}

func (v *Variant) tupleRelease() {
	d := v.tup
	if d == nil {
		return
	}
	for _, e := range d.elems {
		removeRevEdge(e, v)
	}
	for _, e := range d.elems {
		e.Unref()
	}
	v.tup = nil
}

func (v *Variant) tupleCheck() error {
	if v.kind != KindTuple || v.tup == nil {
		return purc.Errorf(purc.ErrWrongDataType, "not a tuple: %s", v.kind)
	}
	return nil
}

// TupleSize returns the fixed arity.
func (v *Variant) TupleSize() (int, error) {
	if err := v.tupleCheck(); err != nil {
		return 0, err
	}
	return len(v.tup.elems), nil
}

// TupleGet returns the slot at idx.
func (v *Variant) TupleGet(idx int) (*Variant, error) {
	if err := v.tupleCheck(); err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(v.tup.elems) {
		return nil, purc.Errorf(purc.ErrOutOfBounds, "index %d of %d", idx, len(v.tup.elems))
	}
	return v.tup.elems[idx], nil
}

// TupleSet replaces the slot at idx; the arity is untouched and the
// change still runs through the mutation gate.
func (v *Variant) TupleSet(idx int, val *Variant) error {
	if err := v.tupleCheck(); err != nil {
		return err
	}
	d := v.tup
	if idx < 0 || idx >= len(d.elems) {
		return purc.Errorf(purc.ErrOutOfBounds, "index %d of %d", idx, len(d.elems))
	}
	if val == nil {
		return purc.NewError(purc.ErrArgumentMissed)
	}
	old := d.elems[idx]
	if old == val {
		return nil
	}
	err := v.gate(OpChange, []*Variant{old, val},
		func() {
			removeRevEdge(old, v)
			d.elems[idx] = val.Ref()
			addRevEdge(val, v)
		},
		func() {
			removeRevEdge(val, v)
			val.Unref()
			d.elems[idx] = old
			addRevEdge(old, v)
		})
	if err != nil {
		return err
	}
	old.Unref()
	return nil
}

// TupleForeach visits slots in order until fn returns false.
func (v *Variant) TupleForeach(fn func(idx int, val *Variant) bool) error {
	if err := v.tupleCheck(); err != nil {
		return err
	}
	for i, e := range v.tup.elems {
		if !fn(i, e) {
			break
		}
	}
	return nil
}
