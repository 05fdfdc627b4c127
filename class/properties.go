package class

import (
	"fmt"
	"sort"
)

// Accessor is a property getter or setter: either a function, or the name
// of a member looked up on the instance at access time so that patching the
// member later is observed.
type Accessor struct {
	fn     *Function
	method string
}

// AccessorFunc uses fn directly. A non-function value yields a zero
// Accessor.
func AccessorFunc(fn Value) Accessor {
	return Accessor{fn: fn.Function()}
}

// AccessorMethod resolves the named member on the instance at access time.
func AccessorMethod(name string) Accessor {
	return Accessor{method: name}
}

func (a Accessor) IsZero() bool { return a.fn == nil && a.method == "" }

// Method returns the member name for an indirect accessor, or "".
func (a Accessor) Method() string { return a.method }

// Func returns the accessor function, or nil for an indirect accessor.
func (a Accessor) Func() Value {
	if a.fn == nil {
		return NewNil()
	}
	return newFunctionValue(a.fn)
}

func (a Accessor) invoke(self *Object, args ...Value) (Value, error) {
	if a.method != "" {
		return self.Call(a.method, args...)
	}
	return a.fn.invoke(self, nil, args)
}

// Descriptor is a fragment of a property definition. Nil and zero fields are
// absent and fall through to the fragment inherited from the parent class.
type Descriptor struct {
	Value    *Value
	Writable *bool
	Get      Accessor
	Set      Accessor
}

// DataProperty describes a plain value property.
func DataProperty(v Value, writable bool) Descriptor {
	return Descriptor{}.WithValue(v).WithWritable(writable)
}

// AccessorProperty describes a property backed by a getter and a setter.
// Either may be the zero Accessor.
func AccessorProperty(get, set Accessor) Descriptor {
	return Descriptor{Get: get, Set: set}
}

func (d Descriptor) WithValue(v Value) Descriptor {
	d.Value = &v
	return d
}

func (d Descriptor) WithWritable(w bool) Descriptor {
	d.Writable = &w
	return d
}

func (d Descriptor) WithGetter(a Accessor) Descriptor {
	d.Get = a
	return d
}

func (d Descriptor) WithSetter(a Accessor) Descriptor {
	d.Set = a
	return d
}

// IsAccessor reports whether the descriptor has a getter or a setter.
func (d Descriptor) IsAccessor() bool { return !d.Get.IsZero() || !d.Set.IsZero() }

// IsWritable reports the effective writability of a data descriptor.
// Writability that was never declared is false.
func (d Descriptor) IsWritable() bool { return d.Writable != nil && *d.Writable }

func (d Descriptor) clone() Descriptor {
	out := d
	if d.Value != nil {
		v := *d.Value
		out.Value = &v
	}
	if d.Writable != nil {
		w := *d.Writable
		out.Writable = &w
	}
	return out
}

// overlay returns d with every field present in over replacing its own.
func (d Descriptor) overlay(over Descriptor) Descriptor {
	out := d.clone()
	over = over.clone()
	if over.Value != nil {
		out.Value = over.Value
	}
	if over.Writable != nil {
		out.Writable = over.Writable
	}
	if !over.Get.IsZero() {
		out.Get = over.Get
	}
	if !over.Set.IsZero() {
		out.Set = over.Set
	}
	return out
}

func (d Descriptor) validate(name string) error {
	if d.IsAccessor() && (d.Value != nil || d.Writable != nil) {
		return fmt.Errorf("%w: %s mixes value fields with accessors", ErrMalformedDescriptor, name)
	}
	return nil
}

// Schema maps property names to descriptors.
type Schema map[string]Descriptor

func (s Schema) clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for name, d := range s {
		out[name] = d.clone()
	}
	return out
}

// Names returns the property names in sorted order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// compileSchema merges the own fragments of every class from the root down
// to c, field by field.
func compileSchema(c *Class) (Schema, error) {
	merged := make(Schema)
	for _, cls := range c.Chain() {
		for name, frag := range cls.ownSchema {
			if base, ok := merged[name]; ok {
				merged[name] = base.overlay(frag)
				continue
			}
			merged[name] = frag.clone()
		}
	}
	for _, name := range merged.Names() {
		if err := merged[name].validate(name); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

type property struct {
	desc  Descriptor
	value Value
}

func installSchema(o *Object, s Schema) {
	if len(s) == 0 {
		return
	}
	o.props = make(map[string]*property, len(s))
	for name, d := range s {
		p := &property{desc: d}
		if d.Value != nil {
			p.value = *d.Value
		}
		o.props[name] = p
	}
}

func (p *property) get(o *Object, name string) (Value, error) {
	if !p.desc.IsAccessor() {
		return p.value, nil
	}
	if p.desc.Get.IsZero() {
		return NewNil(), nil
	}
	return p.desc.Get.invoke(o)
}

func (p *property) set(o *Object, name string, v Value) error {
	if p.desc.IsAccessor() {
		if p.desc.Set.IsZero() {
			return fmt.Errorf("%w: %s has no setter", ErrReadOnly, name)
		}
		_, err := p.desc.Set.invoke(o, v)
		return err
	}
	if !p.desc.IsWritable() {
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	}
	p.value = v
	return nil
}
