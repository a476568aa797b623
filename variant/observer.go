package variant

import "github.com/hvml/purc"

// Op identifies the structural effect of a container mutation.
type Op uint32

const (
	OpGrow Op = 1 << iota
	OpShrink
	OpChange

	OpAll = OpGrow | OpShrink | OpChange
)

func (op Op) String() string {
	switch op {
	case OpGrow:
		return "grow"
	case OpShrink:
		return "shrink"
	case OpChange:
		return "change"
	}
	return "mixed"
}

// ListenerFunc observes a container mutation. For a pre-change listener
// the return value gates the mutation: false aborts it. Post-change
// listeners' return values are ignored.
type ListenerFunc func(source *Variant, op Op, args []*Variant) bool

// Listener is a registered observer; keep it to revoke later.
type Listener struct {
	op  Op
	fn  ListenerFunc
	pre bool
}

// RegisterPreListener attaches fn to fire before any mutation matching op.
func (v *Variant) RegisterPreListener(op Op, fn ListenerFunc) *Listener {
	l := &Listener{op: op, fn: fn, pre: true}
	v.listeners = append(v.listeners, l)
	return l
}

// RegisterPostListener attaches fn to fire after any mutation matching op.
func (v *Variant) RegisterPostListener(op Op, fn ListenerFunc) *Listener {
	l := &Listener{op: op, fn: fn, pre: false}
	v.listeners = append(v.listeners, l)
	return l
}

// RevokeListener detaches a listener; it reports whether it was attached.
func (v *Variant) RevokeListener(l *Listener) bool {
	for i, cur := range v.listeners {
		if cur == l {
			v.listeners = append(v.listeners[:i], v.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// firePre invokes pre-change listeners; the list is copied so a listener
// may detach itself during dispatch. Dispatch short-circuits on the first
// veto.
func (v *Variant) firePre(op Op, args []*Variant) bool {
	snapshot := append([]*Listener(nil), v.listeners...)
	for _, l := range snapshot {
		if !l.pre || l.op&op == 0 {
			continue
		}
		if !l.fn(v, op, args) {
			return false
		}
	}
	return true
}

func (v *Variant) firePost(op Op, args []*Variant) {
	snapshot := append([]*Listener(nil), v.listeners...)
	for _, l := range snapshot {
		if l.pre || l.op&op == 0 {
			continue
		}
		l.fn(v, op, args)
	}
}

// vetoError is the distinct failure surfaced when a pre-change observer
// rejects a mutation.
func vetoError() error {
	return purc.NewError(purc.ErrObserverVeto)
}
