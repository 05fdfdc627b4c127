package class

import "fmt"

// Binding selects when an override resolves the implementation it shadows.
type Binding int

const (
	// BindDynamic looks the ancestor up on every call, so patching the
	// ancestor table later is observed.
	BindDynamic Binding = iota
	// BindStatic captures the ancestor once, when the override is applied.
	BindStatic
)

func (b Binding) String() string {
	if b == BindStatic {
		return "static"
	}
	return "dynamic"
}

type binding struct {
	name   string
	target *Function
	ref    *Object
	mode   Binding

	captured Value
	found    bool
}

// bind wraps fn so that, while it runs, the ancestor implementation of name
// found through ref is available to it.
func bind(name string, fn *Function, ref *Object, mode Binding) *Function {
	b := &binding{name: name, target: fn, ref: ref, mode: mode}
	if mode == BindStatic {
		b.captured, b.found = ref.Lookup(name)
	}
	return &Function{Name: name, uses: fn.uses, bound: b}
}

func (b *binding) ancestor() (Value, bool) {
	if b.mode == BindStatic {
		return b.captured, b.found
	}
	return b.ref.Lookup(b.name)
}

func (b *binding) invoke(self *Object, args []Value) (Value, error) {
	anc, ok := b.ancestor()
	return b.target.invoke(self, superFor(b.name, anc, ok, self), args)
}

func superFor(name string, anc Value, ok bool, self *Object) Super {
	fn := anc.Function()
	if !ok || fn == nil {
		return missingSuper(name)
	}
	return func(args ...Value) (Value, error) {
		return fn.invoke(self, nil, args)
	}
}

func missingSuper(name string) Super {
	return func(...Value) (Value, error) {
		if name == "" {
			return NewNil(), ErrUndefinedSuper
		}
		return NewNil(), fmt.Errorf("%w: no ancestor implements %s", ErrUndefinedSuper, name)
	}
}
