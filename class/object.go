package class

import (
	"fmt"
	"sort"
)

// State tracks where an instance is in its lifecycle. Prototypes and static
// tables stay in StateTable.
type State int

const (
	StateTable State = iota
	StateConstructing
	StateConstructed
	StateDestructed
)

func (s State) String() string {
	switch s {
	case StateConstructing:
		return "constructing"
	case StateConstructed:
		return "constructed"
	case StateDestructed:
		return "destructed"
	default:
		return "table"
	}
}

// Object is a node in a delegation chain. Lookups that miss the object's own
// fields continue on proto. Class prototypes, static tables and instances
// are all Objects.
type Object struct {
	fields map[string]Value
	proto  *Object
	class  *Class
	props  map[string]*property
	state  State

	// super holds the ancestor of the delegating method currently running
	// on this object.
	super Super
}

func newTable(proto *Object, owner *Class) *Object {
	return &Object{fields: make(map[string]Value), proto: proto, class: owner}
}

func newDetachedObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Class returns the class that owns the object: the class an instance was
// created from, or the class whose prototype or static table this is.
func (o *Object) Class() *Class { return o.class }

// Proto returns the table lookups delegate to after missing on o.
func (o *Object) Proto() *Object { return o.proto }

func (o *Object) State() State { return o.state }

// Owns reports whether name is an own field or installed property of o.
func (o *Object) Owns(name string) bool {
	if _, ok := o.props[name]; ok {
		return true
	}
	_, ok := o.fields[name]
	return ok
}

// Lookup resolves name through own fields and the delegation chain. Property
// accessors are not consulted.
func (o *Object) Lookup(name string) (Value, bool) {
	for cur := o; cur != nil; cur = cur.proto {
		if v, ok := cur.fields[name]; ok {
			return v, true
		}
	}
	return NewNil(), false
}

// Get resolves name the way a member access does: installed properties
// first, then fields along the chain. A missing member yields nil.
func (o *Object) Get(name string) (Value, error) {
	if p, ok := o.props[name]; ok {
		return p.get(o, name)
	}
	v, _ := o.Lookup(name)
	return v, nil
}

// Set assigns an own field, or writes through an installed property.
func (o *Object) Set(name string, v Value) error {
	if p, ok := o.props[name]; ok {
		return p.set(o, name, v)
	}
	if fn := v.Function(); fn != nil && fn.Name == "" {
		v = newFunctionValue(fn.named(name))
	}
	o.fields[name] = v
	return nil
}

// Delete removes an own field, uncovering whatever the chain provides.
func (o *Object) Delete(name string) bool {
	if _, ok := o.fields[name]; !ok {
		return false
	}
	delete(o.fields, name)
	return true
}

// Keys lists the own fields of o in sorted order. Property schema entries
// are never listed.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Call looks name up and invokes it with o as receiver.
func (o *Object) Call(name string, args ...Value) (Value, error) {
	v, err := o.Get(name)
	if err != nil {
		return NewNil(), err
	}
	fn := v.Function()
	if fn == nil {
		return NewNil(), fmt.Errorf("%w: %s", ErrNotCallable, name)
	}
	return fn.invoke(o, nil, args)
}

// Super calls the ancestor of the delegating method currently running on o.
func (o *Object) Super(args ...Value) (Value, error) {
	return o.CurrentSuper()(args...)
}

// CurrentSuper returns the ancestor binding of the delegating method
// currently running on o. The returned Super may be kept and called later;
// reading CurrentSuper after the method has returned is not meaningful.
func (o *Object) CurrentSuper() Super {
	if o.super == nil {
		return missingSuper("")
	}
	return o.super
}

// Mixin merges source into o. Members that override a callable reachable
// from the super reference, and that delegate, are wrapped so they can
// reach it. The super reference defaults to o itself as it stands now.
func (o *Object) Mixin(source Table, superRef ...*Object) {
	ref := o
	if len(superRef) > 0 && superRef[0] != nil {
		ref = superRef[0]
	}
	mix(o, source, ref)
}

// InstanceOf reports whether o was created by c or one of its descendants.
func (o *Object) InstanceOf(c *Class) bool {
	for cur := o.class; cur != nil; cur = cur.parent {
		if cur == c {
			return true
		}
	}
	return false
}

// Destruct runs the chained destruct hook, descendant first.
func (o *Object) Destruct(args ...Value) error {
	if o.state == StateDestructed {
		return ErrDestructed
	}
	if v, ok := o.Lookup(hookDestruct); ok {
		if fn := v.Function(); fn != nil {
			if _, err := fn.invoke(o, nil, args); err != nil {
				return err
			}
		}
	}
	if o.state != StateTable {
		o.state = StateDestructed
	}
	return nil
}

func (o *Object) String() string {
	if v, ok := o.Lookup(memberToString); ok {
		if fn := v.Function(); fn != nil {
			if out, err := fn.invoke(o, nil, nil); err == nil {
				return out.String()
			}
		}
	}
	if o.class == nil || o.class.name == "" {
		return "<Object>"
	}
	if o.state == StateTable {
		return fmt.Sprintf("<%s prototype>", o.class.name)
	}
	return fmt.Sprintf("<%s instance>", o.class.name)
}
