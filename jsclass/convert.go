package jsclass

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/dop251/goja"

	"github.com/mgomes/pseudoclass/class"
)

func (e *Engine) toJS(v class.Value) goja.Value {
	switch v.Kind() {
	case class.KindNil:
		return goja.Undefined()
	case class.KindBool:
		return e.vm.ToValue(v.Bool())
	case class.KindInt:
		return e.vm.ToValue(v.Int())
	case class.KindFloat:
		return e.vm.ToValue(v.Float())
	case class.KindString:
		return e.vm.ToValue(v.String())
	case class.KindArray:
		// Go slices cannot grow in place, so scripts get a copy.
		items := v.Array()
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = e.toJS(item)
		}
		return e.vm.NewArray(out...)
	case class.KindHash:
		return e.hashView(v.Hash())
	case class.KindHost:
		if obj, ok := v.Host().(goja.Value); ok {
			return obj
		}
		return e.vm.ToValue(v.Host())
	case class.KindObject:
		return e.wrap(v.Object())
	case class.KindClass:
		ctor, err := e.constructorFor(v.Class())
		if err != nil {
			panic(e.throw(err))
		}
		return ctor
	case class.KindFunction:
		return e.nativeFunc(v)
	default:
		return goja.Undefined()
	}
}

// nativeFunc exposes a class function to scripts. this is passed through as
// the receiver when it is a wrapped class object.
func (e *Engine) nativeFunc(v class.Value) *goja.Object {
	fn := v.Function()
	if w, ok := e.jsFuncs[fn]; ok {
		return w
	}
	w := e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		self, ok := e.Unwrap(call.This)
		if !ok {
			self = e.staticsOf(call.This)
		}
		out, err := fn.Call(self, e.importArgs(call.Arguments)...)
		if err != nil {
			panic(e.throw(err))
		}
		return e.toJS(out)
	}).ToObject(e.vm)
	e.jsFuncs[fn] = w
	e.goFuncs[w] = v
	return w
}

func (e *Engine) fromJS(v goja.Value) class.Value {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return class.NewNil()
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		switch x := v.Export().(type) {
		case bool:
			return class.NewBool(x)
		case int64:
			return class.NewInt(x)
		case float64:
			return class.NewFloat(x)
		case string:
			return class.NewString(x)
		default:
			return class.NewString(v.String())
		}
	}

	if o, ok := e.Unwrap(obj); ok {
		return class.NewObject(o)
	}
	if c, ok := e.classes[obj]; ok {
		return class.NewClass(c)
	}
	if fn, ok := e.goFuncs[obj]; ok {
		return fn
	}
	if call, ok := goja.AssertFunction(obj); ok {
		return e.scriptFunc(obj, call)
	}
	if obj.ExportType() == hashBridgeType {
		return class.NewHash(obj.Export().(*hashBridge).h)
	}
	return class.NewHost(obj)
}

// hashBridge is a live view of a Go hash. Script writes land in the map.
type hashBridge struct {
	e *Engine
	h map[string]class.Value
}

var hashBridgeType = reflect.TypeOf((*hashBridge)(nil))

func (e *Engine) hashView(h map[string]class.Value) *goja.Object {
	if h == nil {
		return e.vm.NewObject()
	}
	return e.vm.NewDynamicObject(&hashBridge{e: e, h: h})
}

func (b *hashBridge) Get(key string) goja.Value {
	v, ok := b.h[key]
	if !ok {
		return nil
	}
	return b.e.toJS(v)
}

func (b *hashBridge) Set(key string, val goja.Value) bool {
	b.h[key] = b.e.fromJS(val)
	return true
}

func (b *hashBridge) Has(key string) bool {
	_, ok := b.h[key]
	return ok
}

func (b *hashBridge) Delete(key string) bool {
	delete(b.h, key)
	return true
}

func (b *hashBridge) Keys() []string {
	keys := make([]string, 0, len(b.h))
	for k := range b.h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// scriptFunc wraps a script function as a class member. Script functions
// may reach their ancestor through this._super, so they always delegate.
func (e *Engine) scriptFunc(obj *goja.Object, call goja.Callable) class.Value {
	fn := class.NewDelegatingFunc(func(self *class.Object, args ...class.Value) (class.Value, error) {
		var this goja.Value = goja.Undefined()
		if self != nil {
			this = e.wrap(self)
		}
		in := make([]goja.Value, len(args))
		for i, arg := range args {
			in[i] = e.toJS(arg)
		}
		out, err := call(this, in...)
		if err != nil {
			return class.NewNil(), err
		}
		return e.fromJS(out), nil
	})
	e.goFuncs[obj] = fn
	return fn
}

func (e *Engine) importArgs(args []goja.Value) []class.Value {
	out := make([]class.Value, len(args))
	for i, arg := range args {
		out[i] = e.fromJS(arg)
	}
	return out
}

// members reads a class definition object.
func (e *Engine) members(props goja.Value) (class.Members, error) {
	m := class.Members{Methods: class.Table{}}
	if props == nil || goja.IsUndefined(props) || goja.IsNull(props) {
		return m, nil
	}
	obj := props.ToObject(e.vm)
	for _, key := range obj.Keys() {
		v := obj.Get(key)
		switch key {
		case "extend":
			c, ok := e.classes[v.ToObject(e.vm)]
			if !ok {
				return m, fmt.Errorf("extend: %s is not a class", v)
			}
			m.Extend = c
		case "mixins":
			list, ok := v.(*goja.Object)
			if !ok || list.ClassName() != "Array" {
				return m, fmt.Errorf("mixins: expected an array, got %s", v)
			}
			n := int(list.Get("length").ToInteger())
			for i := 0; i < n; i++ {
				table, err := e.table(list.Get(strconv.Itoa(i)))
				if err != nil {
					return m, fmt.Errorf("mixins[%d]: %w", i, err)
				}
				m.Mixins = append(m.Mixins, table)
			}
		case "properties":
			schema, err := e.schema(v)
			if err != nil {
				return m, err
			}
			m.Properties = schema
		default:
			m.Methods[key] = e.fromJS(v)
		}
	}
	return m, nil
}

// table reads the own members of a mixin source.
func (e *Engine) table(v goja.Value) (class.Table, error) {
	src := e.fromJS(v)
	switch src.Kind() {
	case class.KindHash:
		return class.Table(src.Hash()), nil
	case class.KindObject:
		o := src.Object()
		table := class.Table{}
		for _, k := range o.Keys() {
			item, _ := o.Lookup(k)
			table[k] = item
		}
		return table, nil
	case class.KindHost:
		if obj, ok := src.Host().(*goja.Object); ok {
			table := class.Table{}
			for _, k := range obj.Keys() {
				table[k] = e.fromJS(obj.Get(k))
			}
			return table, nil
		}
	}
	return nil, fmt.Errorf("expected an object, got %s", src.Kind())
}

func (e *Engine) schema(v goja.Value) (class.Schema, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	obj := v.ToObject(e.vm)
	schema := class.Schema{}
	for _, name := range obj.Keys() {
		def := obj.Get(name)
		desc, err := e.descriptor(def.ToObject(e.vm))
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		schema[name] = desc
	}
	return schema, nil
}

func (e *Engine) descriptor(obj *goja.Object) (class.Descriptor, error) {
	var d class.Descriptor
	for _, field := range obj.Keys() {
		v := obj.Get(field)
		switch field {
		case "value":
			d = d.WithValue(e.fromJS(v))
		case "writable":
			d = d.WithWritable(v.ToBoolean())
		case "get", "set":
			acc, err := e.accessor(v)
			if err != nil {
				return d, fmt.Errorf("%s: %w", field, err)
			}
			if field == "get" {
				d = d.WithGetter(acc)
			} else {
				d = d.WithSetter(acc)
			}
		default:
			return d, fmt.Errorf("%w: unknown field %q", class.ErrMalformedDescriptor, field)
		}
	}
	return d, nil
}

// accessor accepts a function or the name of a member to call.
func (e *Engine) accessor(v goja.Value) (class.Accessor, error) {
	if s, ok := v.Export().(string); ok {
		return class.AccessorMethod(s), nil
	}
	fn := e.fromJS(v)
	if !fn.IsCallable() {
		return class.Accessor{}, fmt.Errorf("%w: accessor must be a function or member name", class.ErrMalformedDescriptor)
	}
	return class.AccessorFunc(fn), nil
}

// staticsOf returns the static table of the class behind a constructor.
func (e *Engine) staticsOf(v goja.Value) *class.Object {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	if c, ok := e.classes[obj]; ok {
		return c.Statics()
	}
	return nil
}

// schemaObject renders a compiled schema for scripts. Indirect accessors
// appear as their member name.
func (e *Engine) schemaObject(schema class.Schema) *goja.Object {
	out := e.vm.NewObject()
	for _, name := range schema.Names() {
		d := schema[name]
		desc := e.vm.NewObject()
		if d.Value != nil {
			_ = desc.Set("value", e.toJS(*d.Value))
		}
		if d.Writable != nil {
			_ = desc.Set("writable", *d.Writable)
		}
		for field, acc := range map[string]class.Accessor{"get": d.Get, "set": d.Set} {
			switch {
			case acc.IsZero():
			case acc.Method() != "":
				_ = desc.Set(field, acc.Method())
			default:
				_ = desc.Set(field, e.toJS(acc.Func()))
			}
		}
		_ = out.Set(name, desc)
	}
	return out
}
