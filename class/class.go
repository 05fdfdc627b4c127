package class

import (
	"fmt"
	"maps"
)

// Members is the definition of a class. Construct and Destruct chain across
// ancestors; Init does not. Everything in Methods is an ordinary member; a
// "construct", "destruct", "init" or "toString" entry there is treated the
// same as the dedicated field when that field is unset, and a string
// "toString" entry names the class.
type Members struct {
	// Name identifies the class. It also makes toString return that name
	// unless a callable toString is supplied directly or by a mixin.
	Name     string
	ToString Value

	// Extend names the parent class for Define. Class.Extend ignores it.
	Extend *Class

	Construct Value
	Destruct  Value
	Init      Value

	Methods Table
	// Mixins are applied in order after Methods; later entries win.
	Mixins     []Table
	Properties Schema
}

// Class is a compiled class definition. Its parent link never changes; its
// prototype and static tables may be patched at any time.
type Class struct {
	name    string
	parent  *Class
	proto   *Object
	statics *Object

	ownSchema Schema
	schema    Schema
}

// Base is the root of every class hierarchy.
var Base = newBase()

func newBase() *Class {
	c := &Class{name: "Class", schema: Schema{}}
	c.proto = newTable(nil, c)
	c.statics = newTable(nil, c)
	return c
}

// Define creates a class from Base, or from m.Extend when it is set.
func Define(m Members) (*Class, error) {
	if m.Extend != nil {
		return m.Extend.Extend(m)
	}
	return Base.Extend(m)
}

// Must panics when err is non-nil. It is meant for package-level class
// definitions.
func Must(c *Class, err error) *Class {
	if err != nil {
		panic(err)
	}
	return c
}

// Extend creates a subclass of c.
func (c *Class) Extend(m Members) (*Class, error) {
	child := &Class{name: m.Name, parent: c}
	child.proto = newTable(c.proto, child)
	child.statics = newTable(nil, child)

	methods := make(Table, len(m.Methods)+2)
	maps.Copy(methods, m.Methods)
	if ts, ok := methods[memberToString]; ok && ts.Kind() == KindString {
		delete(methods, memberToString)
		if child.name == "" {
			child.name = ts.String()
		}
	}
	if m.Init.IsCallable() {
		methods[hookInit] = m.Init
	}
	if m.ToString.IsCallable() {
		methods[memberToString] = m.ToString
	}

	mix(child.proto, methods, c.proto)
	for _, mixin := range m.Mixins {
		mix(child.proto, mixin, child.proto)
	}

	if fn := hookFunction(m.Construct, m.Methods, hookConstruct); fn != nil {
		child.proto.fields[hookConstruct] = newFunctionValue(chainHook(c.proto, fn, true))
	}
	if fn := hookFunction(m.Destruct, m.Methods, hookDestruct); fn != nil {
		child.proto.fields[hookDestruct] = newFunctionValue(chainHook(c.proto, fn, false))
	}

	if _, ok := child.proto.fields[memberToString]; !ok && child.name != "" {
		name := child.name
		child.proto.fields[memberToString] = NewFunc(func(*Object, ...Value) (Value, error) {
			return NewString(name), nil
		})
	}

	child.ownSchema = m.Properties.clone()
	schema, err := compileSchema(child)
	if err != nil {
		return nil, fmt.Errorf("define %s: %w", child, err)
	}
	child.schema = schema
	return child, nil
}

func hookFunction(field Value, methods Table, name string) *Function {
	if fn := field.Function(); fn != nil {
		return fn.named(name)
	}
	if fn := methods[name].Function(); fn != nil {
		return fn.named(name)
	}
	return nil
}

// chainHook joins own with the hook of the same name on the parent table.
// The parent hook is looked up when the chained hook runs, so patching it
// is observed. Construction runs the parent first, destruction last.
func chainHook(parent *Object, own *Function, parentFirst bool) *Function {
	if _, ok := parent.Lookup(own.Name); !ok {
		return own
	}
	name := own.Name
	callParent := func(self *Object, args []Value) error {
		v, _ := parent.Lookup(name)
		if fn := v.Function(); fn != nil {
			_, err := fn.invoke(self, nil, args)
			return err
		}
		return nil
	}
	return &Function{Name: name, uses: delegatesNone, method: func(self *Object, args ...Value) (Value, error) {
		if parentFirst {
			if err := callParent(self, args); err != nil {
				return NewNil(), err
			}
			_, err := own.invoke(self, nil, args)
			return NewNil(), err
		}
		if _, err := own.invoke(self, nil, args); err != nil {
			return NewNil(), err
		}
		return NewNil(), callParent(self, args)
	}}
}

// New creates an instance: properties are installed, then the chained
// construct hook and the init hook run with args. A missing or nil first
// argument is replaced with an empty hash.
func (c *Class) New(args ...Value) (*Object, error) {
	if len(args) == 0 {
		args = []Value{NewHash(map[string]Value{})}
	} else if args[0].IsNil() {
		args = append([]Value(nil), args...)
		args[0] = NewHash(map[string]Value{})
	}

	inst := &Object{
		fields: make(map[string]Value),
		proto:  c.proto,
		class:  c,
		state:  StateConstructing,
	}
	installSchema(inst, c.schema)

	for _, hook := range []string{hookConstruct, hookInit} {
		v, _ := inst.Lookup(hook)
		fn := v.Function()
		if fn == nil {
			continue
		}
		if _, err := fn.invoke(inst, nil, args); err != nil {
			return nil, fmt.Errorf("%s %s: %w", c, hook, err)
		}
	}
	inst.state = StateConstructed
	return inst, nil
}

func (c *Class) Name() string { return c.name }

// Parent returns the class c extends, or nil for Base.
func (c *Class) Parent() *Class { return c.parent }

// Prototype returns the member table shared by every instance of c.
func (c *Class) Prototype() *Object { return c.proto }

// Statics returns the static member table of c. Statics are not inherited;
// reach a parent's through Parent.
func (c *Class) Statics() *Object { return c.statics }

func (c *Class) SetStatic(name string, v Value) {
	_ = c.statics.Set(name, v)
}

func (c *Class) Static(name string) (Value, bool) {
	return c.statics.Lookup(name)
}

func (c *Class) CallStatic(name string, args ...Value) (Value, error) {
	return c.statics.Call(name, args...)
}

// Properties returns a copy of the compiled property schema.
func (c *Class) Properties() Schema {
	return c.schema.clone()
}

// Chain returns the ancestry of c from Base down to c.
func (c *Class) Chain() []*Class {
	var chain []*Class
	for cur := c; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Resolve reports which class in the chain provides the member name.
func (c *Class) Resolve(name string) (*Class, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if _, ok := cur.proto.fields[name]; ok {
			return cur, true
		}
	}
	return nil, false
}

// IsSubclassOf reports whether c descends from other. A class is not its
// own subclass.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c.parent; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

func (c *Class) String() string {
	if c.name == "" {
		return "<Class>"
	}
	return fmt.Sprintf("<Class %s>", c.name)
}
