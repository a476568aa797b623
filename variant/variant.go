// Package variant implements the PurC data model: tagged, reference
// counted values with heterogeneous containers (object, array, set,
// tuple), observer listeners with pre-change veto, and the reverse-update
// chain that lets a descendant mutation re-validate ancestor sets.
package variant

import (
	"fmt"
	"strings"

	"github.com/hvml/purc"
)

// Kind tags a variant.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindException
	KindNumber
	KindLongInt
	KindULongInt
	KindLongDouble
	KindAtomString
	KindString
	KindBSequence
	KindDynamic
	KindNative
	KindObject
	KindArray
	KindSet
	KindTuple
)

var kindNames = map[Kind]string{
	KindUndefined:  "undefined",
	KindNull:       "null",
	KindBoolean:    "boolean",
	KindException:  "exception",
	KindNumber:     "number",
	KindLongInt:    "longint",
	KindULongInt:   "ulongint",
	KindLongDouble: "longdouble",
	KindAtomString: "atomstring",
	KindString:     "string",
	KindBSequence:  "bsequence",
	KindDynamic:    "dynamic",
	KindNative:     "native",
	KindObject:     "object",
	KindArray:      "array",
	KindSet:        "set",
	KindTuple:      "tuple",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DVMethod is the getter/setter of a dynamic variant.
type DVMethod func(root *Variant, args []*Variant, silently bool) (*Variant, error)

// NativeMethod is one operation of a native entity.
type NativeMethod func(entity any, args []*Variant, silently bool) (*Variant, error)

// NativeOps is the vtable carried by a native variant. It must stay
// stable for the variant's lifetime.
type NativeOps struct {
	PropertyGetter  func(entity any, name string) NativeMethod
	PropertySetter  func(entity any, name string) NativeMethod
	PropertyEraser  func(entity any, name string) NativeMethod
	PropertyCleaner func(entity any, name string) NativeMethod

	Updater NativeMethod
	Cleaner NativeMethod
	Eraser  NativeMethod

	OnObserve func(entity any, name string) bool
	OnForget  func(entity any, name string) bool
	OnRelease func(entity any)
}

type dynamicValue struct {
	getter DVMethod
	setter DVMethod
}

type nativeValue struct {
	entity any
	ops    *NativeOps
}

// Variant is a tagged, reference-counted value. Constructors return a
// value with refcount 1; Unref to zero destroys the value and unrefs each
// owned child exactly once.
type Variant struct {
	kind Kind
	refc int

	listeners []*Listener
	parents   map[*Variant]int

	b       bool
	f64     float64
	i64     int64
	u64     uint64
	atom    purc.Atom
	str     string
	bseq    []byte
	dynamic *dynamicValue
	native  *nativeValue
	obj     *objectData
	arr     *arrayData
	set     *setData
	tup     *tupleData
}

func newVariant(kind Kind) *Variant {
	return &Variant{kind: kind, refc: 1}
}

func MakeUndefined() *Variant {
	return newVariant(KindUndefined)
}

func MakeNull() *Variant {
	return newVariant(KindNull)
}

func MakeBoolean(b bool) *Variant {
	v := newVariant(KindBoolean)
	v.b = b
	return v
}

// MakeException wraps an interned exception symbol.
func MakeException(atom purc.Atom) *Variant {
	v := newVariant(KindException)
	v.atom = atom
	return v
}

func MakeNumber(f float64) *Variant {
	v := newVariant(KindNumber)
	v.f64 = f
	return v
}

func MakeLongInt(i int64) *Variant {
	v := newVariant(KindLongInt)
	v.i64 = i
	return v
}

func MakeULongInt(u uint64) *Variant {
	v := newVariant(KindULongInt)
	v.u64 = u
	return v
}

// MakeLongDouble keeps the extended-precision kind tag; the payload is a
// float64 on this platform.
func MakeLongDouble(f float64) *Variant {
	v := newVariant(KindLongDouble)
	v.f64 = f
	return v
}

// MakeString creates a string variant. Interior NULs are only allowed on
// the byte-sequence path.
func MakeString(s string) (*Variant, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, purc.Errorf(purc.ErrInvalidValue, "string with interior NUL")
	}
	v := newVariant(KindString)
	v.str = s
	return v, nil
}

// MustMakeString is MakeString for literals known to be NUL-free.
func MustMakeString(s string) *Variant {
	v, err := MakeString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func MakeAtomString(s string) *Variant {
	v := newVariant(KindAtomString)
	v.atom = purc.AtomFromString(s)
	return v
}

func MakeByteSequence(p []byte) *Variant {
	v := newVariant(KindBSequence)
	v.bseq = append([]byte(nil), p...)
	return v
}

func MakeDynamic(getter, setter DVMethod) *Variant {
	v := newVariant(KindDynamic)
	v.dynamic = &dynamicValue{getter: getter, setter: setter}
	return v
}

func MakeNative(entity any, ops *NativeOps) (*Variant, error) {
	if ops == nil {
		return nil, purc.Errorf(purc.ErrArgumentMissed, "native variant requires ops")
	}
	v := newVariant(KindNative)
	v.native = &nativeValue{entity: entity, ops: ops}
	return v, nil
}

func (v *Variant) Kind() Kind {
	return v.kind
}

func (v *Variant) IsUndefined() bool { return v.kind == KindUndefined }
func (v *Variant) IsNull() bool      { return v.kind == KindNull }
func (v *Variant) IsBoolean() bool   { return v.kind == KindBoolean }
func (v *Variant) IsNumber() bool    { return v.kind == KindNumber }
func (v *Variant) IsString() bool    { return v.kind == KindString || v.kind == KindAtomString }
func (v *Variant) IsObject() bool    { return v.kind == KindObject }
func (v *Variant) IsArray() bool     { return v.kind == KindArray }
func (v *Variant) IsSet() bool       { return v.kind == KindSet }
func (v *Variant) IsTuple() bool     { return v.kind == KindTuple }
func (v *Variant) IsDynamic() bool   { return v.kind == KindDynamic }
func (v *Variant) IsNative() bool    { return v.kind == KindNative }

// IsContainer reports whether v is one of the mutable container kinds.
// Tuples are fixed-arity but their slots can change, so they take part in
// the reverse-update chain as well.
func (v *Variant) IsContainer() bool {
	switch v.kind {
	case KindObject, KindArray, KindSet, KindTuple:
		return true
	}
	return false
}

// IsAnyNumber reports whether the kind is one of the numeric kinds.
func (v *Variant) IsAnyNumber() bool {
	switch v.kind {
	case KindNumber, KindLongInt, KindULongInt, KindLongDouble:
		return true
	}
	return false
}

func (v *Variant) Boolean() bool {
	return v.b
}

func (v *Variant) Number() float64 {
	return v.f64
}

func (v *Variant) LongInt() int64 {
	return v.i64
}

func (v *Variant) ULongInt() uint64 {
	return v.u64
}

func (v *Variant) LongDouble() float64 {
	return v.f64
}

// StringBytes returns the text of a string or atom-string variant.
func (v *Variant) StringBytes() string {
	if v.kind == KindAtomString {
		return purc.AtomToString(v.atom)
	}
	return v.str
}

func (v *Variant) Atom() purc.Atom {
	return v.atom
}

func (v *Variant) ByteSequence() []byte {
	return v.bseq
}

func (v *Variant) DynamicGetter() DVMethod {
	if v.dynamic == nil {
		return nil
	}
	return v.dynamic.getter
}

func (v *Variant) DynamicSetter() DVMethod {
	if v.dynamic == nil {
		return nil
	}
	return v.dynamic.setter
}

func (v *Variant) NativeEntity() any {
	if v.native == nil {
		return nil
	}
	return v.native.entity
}

func (v *Variant) NativeOps() *NativeOps {
	if v.native == nil {
		return nil
	}
	return v.native.ops
}

// RefCount returns the current reference count.
func (v *Variant) RefCount() int {
	return v.refc
}

// Ref increments the reference count and returns v for chaining.
func (v *Variant) Ref() *Variant {
	v.refc++
	return v
}

// Unref decrements the reference count; at zero the value is destroyed:
// reverse-update edges are torn down, each owned child is unref'd exactly
// once, then container storage is released. The new count is returned.
func (v *Variant) Unref() int {
	if v.refc <= 0 {
		return 0
	}
	v.refc--
	if v.refc > 0 {
		return v.refc
	}
	v.release()
	return 0
}

func (v *Variant) release() {
	switch v.kind {
	case KindObject:
		v.objectRelease()
	case KindArray:
		v.arrayRelease()
	case KindSet:
		v.setRelease()
	case KindTuple:
		v.tupleRelease()
	case KindNative:
		if v.native != nil && v.native.ops.OnRelease != nil {
			v.native.ops.OnRelease(v.native.entity)
		}
	}
	v.listeners = nil
	v.parents = nil
}
