package variant

import (
	"strings"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/hvml/purc"
)

// CRMethod controls the response of set insertion to a duplicate.
type CRMethod int

const (
	CRIgnore CRMethod = iota
	CROverwrite
	CRComplain
)

// NRMethod controls the response of set removal to a missing member.
type NRMethod int

const (
	NRIgnore NRMethod = iota
	NRComplain
)

// setNode is one member with its precomputed uniqueness digest. The node
// is reachable from the insertion-order list, the red-black tree and the
// by-pointer index; the three are updated in lockstep.
type setNode struct {
	val    *Variant
	digest string
}

type setData struct {
	uniqKeys []string
	caseless bool

	elems []*setNode
	tree  *redblacktree.Tree
	byVal map[*Variant]*setNode
}

// MakeSet creates a set. uniqueKey lists the object-field names forming
// the uniqueness tuple, separated by spaces; when empty the whole member
// value is the key. Construction inserts bypass the mutation gate and
// resolve duplicates by overwriting.
func MakeSet(uniqueKey string, caseless bool, members ...*Variant) (*Variant, error) {
	v := newVariant(KindSet)
	v.set = &setData{
		uniqKeys: strings.Fields(uniqueKey),
		caseless: caseless,
		tree:     redblacktree.NewWithStringComparator(),
		byVal:    map[*Variant]*setNode{},
	}
	for _, m := range members {
		if err := v.setAdd(m, CROverwrite, false); err != nil {
			v.Unref()
			return nil, err
		}
	}
	return v, nil
}

func (v *Variant) setCheck() error {
	if v.kind != KindSet || v.set == nil {
		return purc.Errorf(purc.ErrWrongDataType, "not a set: %s", v.kind)
	}
	return nil
}

func (v *Variant) setRelease() {
	d := v.set
	if d == nil {
		return
	}
	for _, node := range d.elems {
		removeRevEdge(node.val, v)
	}
	for _, node := range d.elems {
		node.val.Unref()
	}
	v.set = nil
}

func setValues(d *setData) []*Variant {
	vals := make([]*Variant, len(d.elems))
	for i, node := range d.elems {
		vals[i] = node.val
	}
	return vals
}

// digestOf folds strings when the set is caseless; the kind prefix
// keeps e.g. the string "1" apart from the number 1.
func (d *setData) digestOf(v *Variant) string {
	if v == nil {
		return "u"
	}
	switch v.kind {
	case KindUndefined:
		return "u"
	case KindNull:
		return "z"
	case KindBoolean:
		if v.b {
			return "b:1"
		}
		return "b:0"
	case KindNumber, KindLongInt, KindULongInt, KindLongDouble:
		return "n:" + Stringify(v)
	case KindString, KindAtomString, KindException:
		s := v.StringBytes()
		if d.caseless {
			s = FoldCase(s)
		}
		return "s:" + s
	case KindBSequence:
		return "x:" + string(v.bseq)
	default:
		s := Stringify(v)
		if d.caseless {
			s = FoldCase(s)
		}
		return "c:" + s
	}
}

// digest computes the member's composite key: the digests of the
// uniqueness fields joined in tuple order, or of the whole value for a
// generic set. A missing field digests as undefined.
func (d *setData) digest(member *Variant) string {
	if len(d.uniqKeys) == 0 {
		return d.digestOf(member)
	}
	parts := make([]string, len(d.uniqKeys))
	for i, key := range d.uniqKeys {
		var field *Variant
		if member != nil && member.kind == KindObject {
			if node, ok := member.obj.index[key]; ok {
				field = node.val
			}
		}
		parts[i] = d.digestOf(field)
	}
	return strings.Join(parts, "\x1f")
}

func (d *setData) digestOfKeyValues(kvs []*Variant) (string, error) {
	if len(d.uniqKeys) == 0 {
		if len(kvs) != 1 {
			return "", purc.Errorf(purc.ErrArgumentMissed, "generic set takes one key value")
		}
		return d.digestOf(kvs[0]), nil
	}
	if len(kvs) != len(d.uniqKeys) {
		return "", purc.Errorf(purc.ErrArgumentMissed,
			"want %d key values, got %d", len(d.uniqKeys), len(kvs))
	}
	parts := make([]string, len(kvs))
	for i, kv := range kvs {
		parts[i] = d.digestOf(kv)
	}
	return strings.Join(parts, "\x1f"), nil
}

func (d *setData) find(digest string) *setNode {
	if raw, ok := d.tree.Get(digest); ok {
		return raw.(*setNode)
	}
	return nil
}

func (d *setData) indexOf(node *setNode) int {
	for i, cur := range d.elems {
		if cur == node {
			return i
		}
	}
	return -1
}

// prepareRekey validates the prospective digest of a mutated member
// against the rest of the set without committing anything.
func (d *setData) prepareRekey(member *Variant, pending *[]rekeyOp) error {
	node := d.byVal[member]
	if node == nil {
		return nil
	}
	digest := d.digest(member)
	if digest == node.digest {
		return nil
	}
	if existing := d.find(digest); existing != nil && existing != node {
		return purc.Errorf(purc.ErrDuplicated, "member key collides after change")
	}
	*pending = append(*pending, rekeyOp{data: d, node: node, digest: digest})
	return nil
}

func (d *setData) commitRekey(node *setNode, digest string) {
	d.tree.Remove(node.digest)
	node.digest = digest
	d.tree.Put(digest, node)
}

// SetSize returns the number of members.
func (v *Variant) SetSize() (int, error) {
	if err := v.setCheck(); err != nil {
		return 0, err
	}
	return len(v.set.elems), nil
}

// SetUniqKeys returns the uniqueness tuple field names.
func (v *Variant) SetUniqKeys() []string {
	if v.kind != KindSet || v.set == nil {
		return nil
	}
	return append([]string(nil), v.set.uniqKeys...)
}

// SetIsCaseless reports whether string keys compare case-folded.
func (v *Variant) SetIsCaseless() bool {
	return v.kind == KindSet && v.set != nil && v.set.caseless
}

// SetAdd inserts val; cr decides what a duplicate does: keep the old
// member, overwrite it, or fail with Duplicated.
func (v *Variant) SetAdd(val *Variant, cr CRMethod) error {
	if err := v.setCheck(); err != nil {
		return err
	}
	return v.setAdd(val, cr, true)
}

func (v *Variant) setAdd(val *Variant, cr CRMethod, gated bool) error {
	d := v.set
	if val == nil {
		return purc.NewError(purc.ErrArgumentMissed)
	}
	if len(d.uniqKeys) > 0 && val.kind != KindObject {
		return purc.Errorf(purc.ErrWrongDataType, "set member must be an object")
	}

	digest := d.digest(val)
	if existing := d.find(digest); existing != nil {
		switch cr {
		case CRIgnore:
			return nil
		case CRComplain:
			return purc.Errorf(purc.ErrDuplicated, "duplicate member")
		}
		// overwrite keeps the member's position
		old := existing.val
		if old == val {
			return nil
		}
		apply := func() {
			removeRevEdge(old, v)
			delete(d.byVal, old)
			existing.val = val.Ref()
			d.byVal[val] = existing
			addRevEdge(val, v)
		}
		revert := func() {
			removeRevEdge(val, v)
			delete(d.byVal, val)
			val.Unref()
			existing.val = old
			d.byVal[old] = existing
			addRevEdge(old, v)
		}
		if gated {
			if err := v.gate(OpChange, []*Variant{old, val}, apply, revert); err != nil {
				return err
			}
		} else {
			apply()
		}
		old.Unref()
		return nil
	}

	node := &setNode{digest: digest}
	apply := func() {
		node.val = val.Ref()
		d.elems = append(d.elems, node)
		d.tree.Put(digest, node)
		d.byVal[val] = node
		addRevEdge(val, v)
	}
	revert := func() {
		removeRevEdge(val, v)
		delete(d.byVal, val)
		d.tree.Remove(digest)
		d.elems = d.elems[:len(d.elems)-1]
		val.Unref()
	}
	if gated {
		return v.gate(OpGrow, []*Variant{val}, apply, revert)
	}
	apply()
	return nil
}

// SetRemove erases the member matching val's uniqueness key; nr decides
// whether a miss is an error.
func (v *Variant) SetRemove(val *Variant, nr NRMethod) error {
	if err := v.setCheck(); err != nil {
		return err
	}
	d := v.set
	node := d.find(d.digest(val))
	if node == nil {
		if nr == NRIgnore {
			return nil
		}
		return purc.Errorf(purc.ErrNotFound, "no such member")
	}
	return v.setRemoveNode(node)
}

func (v *Variant) setRemoveNode(node *setNode) error {
	d := v.set
	idx := d.indexOf(node)
	old := node.val
	err := v.gate(OpShrink, []*Variant{old},
		func() {
			removeRevEdge(old, v)
			delete(d.byVal, old)
			d.tree.Remove(node.digest)
			d.elems = append(d.elems[:idx], d.elems[idx+1:]...)
		},
		func() {
			d.elems = append(d.elems, nil)
			copy(d.elems[idx+1:], d.elems[idx:])
			d.elems[idx] = node
			d.tree.Put(node.digest, node)
			d.byVal[old] = node
			addRevEdge(old, v)
		})
	if err != nil {
		return err
	}
	old.Unref()
	return nil
}

// SetGetByKeyValues looks a member up by its uniqueness key values.
func (v *Variant) SetGetByKeyValues(kvs ...*Variant) (*Variant, error) {
	if err := v.setCheck(); err != nil {
		return nil, err
	}
	digest, err := v.set.digestOfKeyValues(kvs)
	if err != nil {
		return nil, err
	}
	node := v.set.find(digest)
	if node == nil {
		return nil, purc.Errorf(purc.ErrNotFound, "no member under key")
	}
	return node.val, nil
}

// SetRemoveByKeyValues erases the member under the given key values.
func (v *Variant) SetRemoveByKeyValues(nr NRMethod, kvs ...*Variant) error {
	if err := v.setCheck(); err != nil {
		return err
	}
	digest, err := v.set.digestOfKeyValues(kvs)
	if err != nil {
		return err
	}
	node := v.set.find(digest)
	if node == nil {
		if nr == NRIgnore {
			return nil
		}
		return purc.Errorf(purc.ErrNotFound, "no member under key")
	}
	return v.setRemoveNode(node)
}

// SetGetByIndex returns the member at the insertion-order index.
func (v *Variant) SetGetByIndex(idx int) (*Variant, error) {
	if err := v.setCheck(); err != nil {
		return nil, err
	}
	d := v.set
	if idx < 0 || idx >= len(d.elems) {
		return nil, purc.Errorf(purc.ErrOutOfBounds, "index %d of %d", idx, len(d.elems))
	}
	return d.elems[idx].val, nil
}

// SetRemoveByIndex erases the member at the insertion-order index.
func (v *Variant) SetRemoveByIndex(idx int) error {
	if err := v.setCheck(); err != nil {
		return err
	}
	d := v.set
	if idx < 0 || idx >= len(d.elems) {
		return purc.Errorf(purc.ErrOutOfBounds, "index %d of %d", idx, len(d.elems))
	}
	return v.setRemoveNode(d.elems[idx])
}

// SetSetByIndex replaces the member at the insertion-order index; the new
// member's key must not collide with any other member.
func (v *Variant) SetSetByIndex(idx int, val *Variant) error {
	if err := v.setCheck(); err != nil {
		return err
	}
	d := v.set
	if idx < 0 || idx >= len(d.elems) {
		return purc.Errorf(purc.ErrOutOfBounds, "index %d of %d", idx, len(d.elems))
	}
	if val == nil {
		return purc.NewError(purc.ErrArgumentMissed)
	}
	if len(d.uniqKeys) > 0 && val.kind != KindObject {
		return purc.Errorf(purc.ErrWrongDataType, "set member must be an object")
	}
	node := d.elems[idx]
	old := node.val
	if old == val {
		return nil
	}
	digest := d.digest(val)
	if existing := d.find(digest); existing != nil && existing != node {
		return purc.Errorf(purc.ErrDuplicated, "member key collides")
	}
	oldDigest := node.digest
	err := v.gate(OpChange, []*Variant{old, val},
		func() {
			removeRevEdge(old, v)
			delete(d.byVal, old)
			d.tree.Remove(oldDigest)
			node.val = val.Ref()
			node.digest = digest
			d.tree.Put(digest, node)
			d.byVal[val] = node
			addRevEdge(val, v)
		},
		func() {
			removeRevEdge(val, v)
			delete(d.byVal, val)
			d.tree.Remove(digest)
			val.Unref()
			node.val = old
			node.digest = oldDigest
			d.tree.Put(oldDigest, node)
			d.byVal[old] = node
			addRevEdge(old, v)
		})
	if err != nil {
		return err
	}
	old.Unref()
	return nil
}

// memberSource lists the values a bulk set operation draws from.
func memberSource(other *Variant) ([]*Variant, error) {
	if other == nil {
		return nil, purc.NewError(purc.ErrArgumentMissed)
	}
	switch other.kind {
	case KindArray:
		return append([]*Variant(nil), other.arr.elems...), nil
	case KindSet:
		return setValues(other.set), nil
	case KindTuple:
		return append([]*Variant(nil), other.tup.elems...), nil
	case KindObject:
		return []*Variant{other}, nil
	}
	return nil, purc.Errorf(purc.ErrWrongDataType, "cannot enumerate %s", other.kind)
}

// SetUnite adds every value of other under cr.
func (v *Variant) SetUnite(other *Variant, cr CRMethod) error {
	if err := v.setCheck(); err != nil {
		return err
	}
	vals, err := memberSource(other)
	if err != nil {
		return err
	}
	for _, val := range vals {
		if err := v.SetAdd(val, cr); err != nil {
			return err
		}
	}
	return nil
}

// SetIntersect keeps only the members whose keys appear in other.
func (v *Variant) SetIntersect(other *Variant) error {
	if err := v.setCheck(); err != nil {
		return err
	}
	vals, err := memberSource(other)
	if err != nil {
		return err
	}
	keep := map[string]bool{}
	for _, val := range vals {
		keep[v.set.digest(val)] = true
	}
	for _, node := range append([]*setNode(nil), v.set.elems...) {
		if !keep[node.digest] {
			if err := v.setRemoveNode(node); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetSubtract removes the members whose keys appear in other.
func (v *Variant) SetSubtract(other *Variant) error {
	if err := v.setCheck(); err != nil {
		return err
	}
	vals, err := memberSource(other)
	if err != nil {
		return err
	}
	drop := map[string]bool{}
	for _, val := range vals {
		drop[v.set.digest(val)] = true
	}
	for _, node := range append([]*setNode(nil), v.set.elems...) {
		if drop[node.digest] {
			if err := v.setRemoveNode(node); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetXor toggles membership for every value of other.
func (v *Variant) SetXor(other *Variant) error {
	if err := v.setCheck(); err != nil {
		return err
	}
	vals, err := memberSource(other)
	if err != nil {
		return err
	}
	for _, val := range vals {
		if node := v.set.find(v.set.digest(val)); node != nil {
			if err := v.setRemoveNode(node); err != nil {
				return err
			}
		} else if err := v.SetAdd(val, CRComplain); err != nil {
			return err
		}
	}
	return nil
}

// SetOverwrite replaces the existing members matching other's values; nr
// decides whether a miss is an error.
func (v *Variant) SetOverwrite(other *Variant, nr NRMethod) error {
	if err := v.setCheck(); err != nil {
		return err
	}
	vals, err := memberSource(other)
	if err != nil {
		return err
	}
	for _, val := range vals {
		if v.set.find(v.set.digest(val)) == nil {
			if nr == NRComplain {
				return purc.Errorf(purc.ErrNotFound, "no member to overwrite")
			}
			continue
		}
		if err := v.SetAdd(val, CROverwrite); err != nil {
			return err
		}
	}
	return nil
}

// SetForeach visits members in insertion order until fn returns false.
func (v *Variant) SetForeach(fn func(idx int, val *Variant) bool) error {
	if err := v.setCheck(); err != nil {
		return err
	}
	for i, node := range v.set.elems {
		if !fn(i, node.val) {
			break
		}
	}
	return nil
}

// SetForeachOrdered visits members in the byte order of their uniqueness
// digests until fn returns false; numbers in the key compare as text.
func (v *Variant) SetForeachOrdered(fn func(val *Variant) bool) error {
	if err := v.setCheck(); err != nil {
		return err
	}
	it := v.set.tree.Iterator()
	for it.Next() {
		if !fn(it.Value().(*setNode).val) {
			break
		}
	}
	return nil
}
