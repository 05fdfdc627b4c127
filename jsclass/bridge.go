package jsclass

import (
	"errors"
	"reflect"

	"github.com/dop251/goja"

	"github.com/mgomes/pseudoclass/class"
)

// objectBridge exposes a class.Object to scripts. It answers for the
// object's own fields and properties; inherited members are found through
// the wrapper's prototype, which is the wrapper of the next table in the
// delegation chain. Writes go through the property schema.
type objectBridge struct {
	e   *Engine
	obj *class.Object
}

var objectBridgeType = reflect.TypeOf((*objectBridge)(nil))

// wrap returns the script object for o. The same wrapper is returned until
// o is destructed, and its prototype mirrors o's delegation chain so
// instanceof works.
func (e *Engine) wrap(o *class.Object) *goja.Object {
	if w, ok := e.wrappers[o]; ok {
		return w
	}
	w := e.vm.NewDynamicObject(&objectBridge{e: e, obj: o})
	e.wrappers[o] = w
	if proto := o.Proto(); proto != nil {
		if err := w.SetPrototype(e.wrap(proto)); err != nil {
			panic(e.throw(err))
		}
	}
	return w
}

func (b *objectBridge) Get(key string) goja.Value {
	switch key {
	case "_super":
		return b.e.superFunc(b.obj.CurrentSuper())
	case "destruct":
		if b.obj.State() != class.StateTable {
			return b.e.vm.ToValue(b.destruct)
		}
	}

	if b.obj.Owns(key) {
		v, err := b.obj.Get(key)
		if err != nil {
			panic(b.e.throw(err))
		}
		return b.e.toJS(v)
	}
	if _, ok := b.obj.Lookup(key); ok {
		return nil
	}

	switch key {
	case "mixin":
		return b.e.vm.ToValue(b.mixin)
	case "constructor":
		if c := b.obj.Class(); c != nil {
			ctor, err := b.e.constructorFor(c)
			if err != nil {
				panic(b.e.throw(err))
			}
			return ctor
		}
	case "toString":
		return b.e.vm.ToValue(func(goja.FunctionCall) goja.Value {
			return b.e.vm.ToValue(b.obj.String())
		})
	}
	return nil
}

func (b *objectBridge) Set(key string, val goja.Value) bool {
	err := b.obj.Set(key, b.e.fromJS(val))
	if errors.Is(err, class.ErrReadOnly) {
		return false
	}
	if err != nil {
		panic(b.e.throw(err))
	}
	return true
}

func (b *objectBridge) Has(key string) bool {
	return key == "_super" || b.obj.Owns(key)
}

func (b *objectBridge) Delete(key string) bool {
	b.obj.Delete(key)
	return true
}

func (b *objectBridge) Keys() []string {
	return b.obj.Keys()
}

func (b *objectBridge) destruct(call goja.FunctionCall) goja.Value {
	if err := b.obj.Destruct(b.e.importArgs(call.Arguments)...); err != nil {
		panic(b.e.throw(err))
	}
	if b.obj.State() == class.StateDestructed {
		delete(b.e.wrappers, b.obj)
	}
	if c := b.obj.Class(); c != nil {
		b.e.log.WithField("class", c.Name()).Debug("instance destructed")
	}
	return goja.Undefined()
}

// mixin implements obj.mixin(source[, superRef]).
func (b *objectBridge) mixin(call goja.FunctionCall) goja.Value {
	table, err := b.e.table(call.Argument(0))
	if err != nil {
		panic(b.e.throw(err))
	}
	var ref *class.Object
	if o, ok := b.e.Unwrap(call.Argument(1)); ok {
		ref = o
	}
	b.obj.Mixin(table, ref)
	return goja.Undefined()
}

func (e *Engine) superFunc(super class.Super) goja.Value {
	return e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		out, err := super(e.importArgs(call.Arguments)...)
		if err != nil {
			panic(e.throw(err))
		}
		return e.toJS(out)
	})
}
