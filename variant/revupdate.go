package variant

// The reverse-update chain. Every mutable child of a container carries an
// edge back to that container; a mutation deep inside a member can then
// reach every ancestor set to re-validate uniqueness and re-index the
// member under its new key tuple.

func addRevEdge(child, parent *Variant) {
	if child == nil || !child.IsContainer() {
		return
	}
	if child.parents == nil {
		child.parents = map[*Variant]int{}
	}
	child.parents[parent]++
}

func removeRevEdge(child, parent *Variant) {
	if child == nil || child.parents == nil {
		return
	}
	n, ok := child.parents[parent]
	if !ok {
		return
	}
	if n <= 1 {
		delete(child.parents, parent)
	} else {
		child.parents[parent] = n - 1
	}
}

type rekeyOp struct {
	data   *setData
	node   *setNode
	digest string
}

// revalidateAncestors walks the reverse-update chain after a mutation has
// been applied. It first verifies that every ancestor set would still be
// unique under the members' new key tuples, then commits the re-indexing.
// An error means nothing was committed; the caller reverts the mutation.
func (v *Variant) revalidateAncestors() error {
	var pending []rekeyOp
	if err := v.collectRekeys(map[*Variant]bool{}, &pending); err != nil {
		return err
	}
	for _, rk := range pending {
		rk.data.commitRekey(rk.node, rk.digest)
	}
	return nil
}

func (v *Variant) collectRekeys(seen map[*Variant]bool, pending *[]rekeyOp) error {
	if seen[v] {
		return nil
	}
	seen[v] = true
	for parent := range v.parents {
		if parent.kind == KindSet && parent.set != nil {
			if err := parent.set.prepareRekey(v, pending); err != nil {
				return err
			}
		}
		if err := parent.collectRekeys(seen, pending); err != nil {
			return err
		}
	}
	return nil
}

// gate runs the five-step mutation protocol: pre-fire (veto aborts),
// apply, reverse-check with revert on failure, re-key ancestors, then
// post-fire. Construction-time inserts bypass it.
func (v *Variant) gate(op Op, args []*Variant, apply func(), revert func()) error {
	if !v.firePre(op, args) {
		return vetoError()
	}
	apply()
	if err := v.revalidateAncestors(); err != nil {
		revert()
		return err
	}
	v.firePost(op, args)
	return nil
}
