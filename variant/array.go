package variant

import (
	"sort"

	"github.com/hvml/purc"
)

type arrayData struct {
	elems []*Variant
}

// MakeArray creates an array holding the given values in order; the array
// takes its own reference on each.
func MakeArray(vals ...*Variant) *Variant {
	v := newVariant(KindArray)
	v.arr = &arrayData{elems: make([]*Variant, 0, len(vals))}
	for _, val := range vals {
		v.arr.elems = append(v.arr.elems, val.Ref())
		addRevEdge(val, v)
	}
	return v
}

func (v *Variant) arrayRelease() {
	d := v.arr
	if d == nil {
		return
	}
	for _, e := range d.elems {
		removeRevEdge(e, v)
	}
	for _, e := range d.elems {
		e.Unref()
	}
	v.arr = nil
}

func (v *Variant) arrayCheck() error {
	if v.kind != KindArray || v.arr == nil {
		return purc.Errorf(purc.ErrWrongDataType, "not an array: %s", v.kind)
	}
	return nil
}

// ArraySize returns the number of elements.
func (v *Variant) ArraySize() (int, error) {
	if err := v.arrayCheck(); err != nil {
		return 0, err
	}
	return len(v.arr.elems), nil
}

// ArrayGet returns the element at idx.
func (v *Variant) ArrayGet(idx int) (*Variant, error) {
	if err := v.arrayCheck(); err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(v.arr.elems) {
		return nil, purc.Errorf(purc.ErrOutOfBounds, "index %d of %d", idx, len(v.arr.elems))
	}
	return v.arr.elems[idx], nil
}

// ArrayAppend adds val at the tail.
func (v *Variant) ArrayAppend(val *Variant) error {
	if err := v.arrayCheck(); err != nil {
		return err
	}
	return v.arrayInsertAt(len(v.arr.elems), val)
}

// ArrayPrepend adds val at the head.
func (v *Variant) ArrayPrepend(val *Variant) error {
	if err := v.arrayCheck(); err != nil {
		return err
	}
	return v.arrayInsertAt(0, val)
}

// ArrayInsertBefore inserts val before idx.
func (v *Variant) ArrayInsertBefore(idx int, val *Variant) error {
	if err := v.arrayCheck(); err != nil {
		return err
	}
	if idx < 0 || idx > len(v.arr.elems) {
		return purc.Errorf(purc.ErrOutOfBounds, "index %d of %d", idx, len(v.arr.elems))
	}
	return v.arrayInsertAt(idx, val)
}

// ArrayInsertAfter inserts val after idx.
func (v *Variant) ArrayInsertAfter(idx int, val *Variant) error {
	if err := v.arrayCheck(); err != nil {
		return err
	}
	if idx < 0 || idx >= len(v.arr.elems) {
		return purc.Errorf(purc.ErrOutOfBounds, "index %d of %d", idx, len(v.arr.elems))
	}
	return v.arrayInsertAt(idx+1, val)
}

func (v *Variant) arrayInsertAt(idx int, val *Variant) error {
	if val == nil {
		return purc.NewError(purc.ErrArgumentMissed)
	}
	d := v.arr
	return v.gate(OpGrow, []*Variant{val},
		func() {
			d.elems = append(d.elems, nil)
			copy(d.elems[idx+1:], d.elems[idx:])
			d.elems[idx] = val.Ref()
			addRevEdge(val, v)
		},
		func() {
			removeRevEdge(val, v)
			copy(d.elems[idx:], d.elems[idx+1:])
			d.elems = d.elems[:len(d.elems)-1]
			val.Unref()
		})
}

// ArrayRemove erases the element at idx.
func (v *Variant) ArrayRemove(idx int) error {
	if err := v.arrayCheck(); err != nil {
		return err
	}
	d := v.arr
	if idx < 0 || idx >= len(d.elems) {
		return purc.Errorf(purc.ErrOutOfBounds, "index %d of %d", idx, len(d.elems))
	}
	old := d.elems[idx]
	err := v.gate(OpShrink, []*Variant{old},
		func() {
			removeRevEdge(old, v)
			copy(d.elems[idx:], d.elems[idx+1:])
			d.elems = d.elems[:len(d.elems)-1]
		},
		func() {
			d.elems = append(d.elems, nil)
			copy(d.elems[idx+1:], d.elems[idx:])
			d.elems[idx] = old
			addRevEdge(old, v)
		})
	if err != nil {
		return err
	}
	old.Unref()
	return nil
}

// ArraySet replaces the element at idx.
func (v *Variant) ArraySet(idx int, val *Variant) error {
	if err := v.arrayCheck(); err != nil {
		return err
	}
	d := v.arr
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

// ArraySort orders the elements by cmp; a nil cmp numberifies both
// operands. Sorting is a CHANGE on the whole array.
func (v *Variant) ArraySort(cmp func(a, b *Variant) int) error {
	if err := v.arrayCheck(); err != nil {
		return err
	}
	if cmp == nil {
		cmp = func(a, b *Variant) int {
			return Compare(a, b, CompareNumber)
		}
	}
	d := v.arr
	before := append([]*Variant(nil), d.elems...)
	return v.gate(OpChange, []*Variant{v},
		func() {
			sort.SliceStable(d.elems, func(i, j int) bool {
				return cmp(d.elems[i], d.elems[j]) < 0
			})
		},
		func() {
			copy(d.elems, before)
		})
}

// ArrayForeach visits elements in index order until fn returns false.
func (v *Variant) ArrayForeach(fn func(idx int, val *Variant) bool) error {
	if err := v.arrayCheck(); err != nil {
		return err
	}
	for i, e := range v.arr.elems {
		if !fn(i, e) {
			break
		}
	}
	return nil
}
