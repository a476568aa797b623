package variant

import "github.com/hvml/purc"

// objectKV is one entry of an object: a doubly-linked list node keeping
// insertion order, indexed by a hash map for O(1) lookup.
type objectKV struct {
	key  string
	val  *Variant
	prev *objectKV
	next *objectKV
}

type objectData struct {
	head  *objectKV
	tail  *objectKV
	index map[string]*objectKV
}

// KV pairs a key with a value for object construction.
type KV struct {
	Key   string
	Value *Variant
}

// MakeObject creates an object from the given pairs in order. The object
// takes its own reference on each value; a repeated key keeps the first
// position and the last value.
func MakeObject(kvs ...KV) *Variant {
	v := newVariant(KindObject)
	v.obj = &objectData{index: map[string]*objectKV{}}
	for _, kv := range kvs {
		v.objectInsert(kv.Key, kv.Value)
	}
	return v
}

// objectInsert is the ungated insert used during construction.
func (v *Variant) objectInsert(key string, val *Variant) {
	d := v.obj
	if node, ok := d.index[key]; ok {
		removeRevEdge(node.val, v)
		node.val.Unref()
		node.val = val.Ref()
		addRevEdge(val, v)
		return
	}
	node := &objectKV{key: key, val: val.Ref()}
	d.linkTail(node)
	d.index[key] = node
	addRevEdge(val, v)
}

func (d *objectData) linkTail(node *objectKV) {
	if d.tail == nil {
		d.head = node
		d.tail = node
		return
	}
	node.prev = d.tail
	d.tail.next = node
	d.tail = node
}

func (d *objectData) unlink(node *objectKV) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		d.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		d.tail = node.prev
	}
	node.prev = nil
	node.next = nil
}

func (v *Variant) objectRelease() {
	d := v.obj
	if d == nil {
		return
	}
	for node := d.head; node != nil; node = node.next {
		removeRevEdge(node.val, v)
	}
	for node := d.head; node != nil; {
		next := node.next
		node.val.Unref()
		node = next
	}
	v.obj = nil
}

func (v *Variant) objectCheck() error {
	if v.kind != KindObject || v.obj == nil {
		return purc.Errorf(purc.ErrWrongDataType, "not an object: %s", v.kind)
	}
	return nil
}

// ObjectSize returns the number of key/value pairs.
func (v *Variant) ObjectSize() (int, error) {
	if err := v.objectCheck(); err != nil {
		return 0, err
	}
	return len(v.obj.index), nil
}

// ObjectGet looks a value up by key.
func (v *Variant) ObjectGet(key string) (*Variant, error) {
	if err := v.objectCheck(); err != nil {
		return nil, err
	}
	node, ok := v.obj.index[key]
	if !ok {
		return nil, purc.Errorf(purc.ErrNotFound, "no such key %q", key)
	}
	return node.val, nil
}

// ObjectHas reports whether key is present.
func (v *Variant) ObjectHas(key string) bool {
	if v.kind != KindObject || v.obj == nil {
		return false
	}
	_, ok := v.obj.index[key]
	return ok
}

// ObjectSet stores val under key, replacing any previous value while
// preserving the key's position. The change runs through the mutation
// gate: GROW for a fresh key, CHANGE for a replacement.
func (v *Variant) ObjectSet(key string, val *Variant) error {
	if err := v.objectCheck(); err != nil {
		return err
	}
	if val == nil {
		return purc.NewError(purc.ErrArgumentMissed)
	}
	d := v.obj
	keyv := MakeAtomString(key)
	defer keyv.Unref()

	if node, ok := d.index[key]; ok {
		old := node.val
		if old == val {
			return nil
		}
		err := v.gate(OpChange, []*Variant{keyv, old, val},
			func() {
				removeRevEdge(old, v)
				node.val = val.Ref()
				addRevEdge(val, v)
			},
			func() {
				removeRevEdge(val, v)
				val.Unref()
				node.val = old
				addRevEdge(old, v)
			})
		if err != nil {
			return err
		}
		// the replaced value is released only after a successful gate
		old.Unref()
		return nil
	}

	node := &objectKV{key: key}
	err := v.gate(OpGrow, []*Variant{keyv, val},
		func() {
			node.val = val.Ref()
			d.linkTail(node)
			d.index[key] = node
			addRevEdge(val, v)
		},
		func() {
			removeRevEdge(val, v)
			d.unlink(node)
			delete(d.index, key)
			val.Unref()
		})
	return err
}

// ObjectSetV is ObjectSet with a variant key; the key must be a string or
// atom-string variant.
func (v *Variant) ObjectSetV(key, val *Variant) error {
	if key == nil || !key.IsString() {
		return purc.Errorf(purc.ErrInvalidValue, "object key must be a string")
	}
	return v.ObjectSet(key.StringBytes(), val)
}

// ObjectRemove erases key. A missing key reports NotFound.
func (v *Variant) ObjectRemove(key string) error {
	if err := v.objectCheck(); err != nil {
		return err
	}
	d := v.obj
	node, ok := d.index[key]
	if !ok {
		return purc.Errorf(purc.ErrNotFound, "no such key %q", key)
	}
	keyv := MakeAtomString(key)
	defer keyv.Unref()

	old := node.val
	prev := node.prev
	err := v.gate(OpShrink, []*Variant{keyv, old},
		func() {
			removeRevEdge(old, v)
			d.unlink(node)
			delete(d.index, key)
		},
		func() {
			// relink at the original position
			if prev == nil {
				node.next = d.head
				if d.head != nil {
					d.head.prev = node
				}
				d.head = node
				if d.tail == nil {
					d.tail = node
				}
			} else {
				node.next = prev.next
				node.prev = prev
				if prev.next != nil {
					prev.next.prev = node
				}
				prev.next = node
				if d.tail == prev {
					d.tail = node
				}
			}
			d.index[key] = node
			addRevEdge(old, v)
		})
	if err != nil {
		return err
	}
	old.Unref()
	return nil
}

// ObjectForeach visits pairs in insertion order until fn returns false.
func (v *Variant) ObjectForeach(fn func(key string, val *Variant) bool) error {
	if err := v.objectCheck(); err != nil {
		return err
	}
	for node := v.obj.head; node != nil; node = node.next {
		if !fn(node.key, node.val) {
			break
		}
	}
	return nil
}

// ObjectKeys returns the keys in insertion order.
func (v *Variant) ObjectKeys() []string {
	if v.kind != KindObject || v.obj == nil {
		return nil
	}
	keys := make([]string, 0, len(v.obj.index))
	for node := v.obj.head; node != nil; node = node.next {
		keys = append(keys, node.key)
	}
	return keys
}
