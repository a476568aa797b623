// Package dvobjs implements the dynamic-object binding: native variants
// carrying a property vtable, plus the built-in objects published through
// it (ejson helpers, math, doc).
package dvobjs

import (
	"github.com/hvml/purc"
	"github.com/hvml/purc/variant"
)

// Method is one property operation of a dynamic object.
type Method func(root *variant.Variant, args []*variant.Variant, silently bool) (*variant.Variant, error)

// MethodTable maps property names to getter/setter pairs.
type MethodTable map[string]MethodPair

// MethodPair bundles the getter and setter published for one property.
type MethodPair struct {
	Getter Method
	Setter Method
}

// MakeFromMethods publishes a method table as an object of dynamic
// variants, the way the built-in dvobjs expose themselves.
func MakeFromMethods(table MethodTable) (*variant.Variant, error) {
	obj := variant.MakeObject()
	for name, pair := range table {
		dv := variant.MakeDynamic(
			variant.DVMethod(pair.Getter),
			variant.DVMethod(pair.Setter),
		)
		if err := obj.ObjectSet(name, dv); err != nil {
			dv.Unref()
			obj.Unref()
			return nil, err
		}
		dv.Unref()
	}
	return obj, nil
}

// PropertyTable resolves per-entity property methods by name for native
// variants.
type PropertyTable struct {
	getters  map[string]variant.NativeMethod
	setters  map[string]variant.NativeMethod
	erasers  map[string]variant.NativeMethod
	cleaners map[string]variant.NativeMethod
}

func NewPropertyTable() *PropertyTable {
	return &PropertyTable{
		getters:  map[string]variant.NativeMethod{},
		setters:  map[string]variant.NativeMethod{},
		erasers:  map[string]variant.NativeMethod{},
		cleaners: map[string]variant.NativeMethod{},
	}
}

func (t *PropertyTable) SetGetter(name string, m variant.NativeMethod) *PropertyTable {
	t.getters[name] = m
	return t
}

func (t *PropertyTable) SetSetter(name string, m variant.NativeMethod) *PropertyTable {
	t.setters[name] = m
	return t
}

func (t *PropertyTable) SetEraser(name string, m variant.NativeMethod) *PropertyTable {
	t.erasers[name] = m
	return t
}

func (t *PropertyTable) SetCleaner(name string, m variant.NativeMethod) *PropertyTable {
	t.cleaners[name] = m
	return t
}

func (t *PropertyTable) Getter(name string) variant.NativeMethod {
	return t.getters[name]
}

func (t *PropertyTable) Setter(name string) variant.NativeMethod {
	return t.setters[name]
}

func (t *PropertyTable) Eraser(name string) variant.NativeMethod {
	return t.erasers[name]
}

func (t *PropertyTable) Cleaner(name string) variant.NativeMethod {
	return t.cleaners[name]
}

// CallProperty resolves name through the native variant's vtable and
// invokes the getter. An unknown property yields null and NotSupported;
// with silently set, recoverable errors downgrade to null.
func CallProperty(v *variant.Variant, name string, args []*variant.Variant, silently bool) (*variant.Variant, error) {
	ops := v.NativeOps()
	if ops == nil || ops.PropertyGetter == nil {
		return nil, purc.Errorf(purc.ErrWrongDataType, "not a native variant")
	}
	m := ops.PropertyGetter(v.NativeEntity(), name)
	if m == nil {
		return variant.MakeNull(), purc.Errorf(purc.ErrNotSupported, "no property %q", name)
	}
	ret, err := m(v.NativeEntity(), args, silently)
	if err != nil && silently && purc.CodeOf(err) != purc.ErrOutOfMemory {
		// keep the error observable but return the neutral value
		return variant.MakeNull(), err
	}
	return ret, err
}
