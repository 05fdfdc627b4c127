package jsclass

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dop251/goja"
	"github.com/sirupsen/logrus"

	"github.com/mgomes/pseudoclass/class"
)

// Config controls where scripts write and how engine events are logged.
type Config struct {
	// Logger receives debug events for class definitions and instance
	// lifecycle. Nil discards them.
	Logger *logrus.Logger
	// Stdout receives console.log output. Nil means os.Stdout.
	Stdout io.Writer
}

// Engine runs JavaScript with a global Class backed by the class package.
// An Engine is not safe for concurrent use. Wrappers for instances are held
// until the instance is destructed; classes live as long as the engine.
type Engine struct {
	config Config
	log    *logrus.Logger
	vm     *goja.Runtime

	newCtor goja.Callable

	wrappers map[*class.Object]*goja.Object
	ctors    map[*class.Class]*goja.Object
	classes  map[*goja.Object]*class.Class
	jsFuncs  map[*class.Function]*goja.Object
	goFuncs  map[*goja.Object]class.Value
	defined  []*class.Class
}

// ctorFactory builds a constructor that works with and without new. A
// constructor returning an object makes new yield that object.
const ctorFactory = `(function (create, extend) {
	function Class() {
		return create.apply(null, arguments);
	}
	Class.extend = function (props) {
		return extend(props);
	};
	return Class;
})`

// NewEngine constructs an Engine and installs the Class and console
// globals.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	e := &Engine{
		config:   cfg,
		log:      logger,
		vm:       goja.New(),
		wrappers: make(map[*class.Object]*goja.Object),
		ctors:    make(map[*class.Class]*goja.Object),
		classes:  make(map[*goja.Object]*class.Class),
		jsFuncs:  make(map[*class.Function]*goja.Object),
		goFuncs:  make(map[*goja.Object]class.Value),
	}

	factory, err := e.vm.RunString(ctorFactory)
	if err != nil {
		return nil, fmt.Errorf("compile constructor factory: %w", err)
	}
	newCtor, ok := goja.AssertFunction(factory)
	if !ok {
		return nil, errors.New("constructor factory is not a function")
	}
	e.newCtor = newCtor

	root, err := e.makeCtor(
		func(call goja.FunctionCall) goja.Value { return e.define(call.Argument(0), true) },
		func(call goja.FunctionCall) goja.Value { return e.define(call.Argument(0), false) },
	)
	if err != nil {
		return nil, err
	}
	if err := e.register(class.Base, root); err != nil {
		return nil, err
	}
	if err := e.vm.Set("Class", root); err != nil {
		return nil, fmt.Errorf("install Class: %w", err)
	}

	console := e.vm.NewObject()
	if err := console.Set("log", e.consoleLog); err != nil {
		return nil, fmt.Errorf("install console: %w", err)
	}
	if err := e.vm.Set("console", console); err != nil {
		return nil, fmt.Errorf("install console: %w", err)
	}
	return e, nil
}

// Runtime exposes the underlying goja runtime.
func (e *Engine) Runtime() *goja.Runtime { return e.vm }

// Run executes a script. name is used in stack traces.
func (e *Engine) Run(name, src string) (goja.Value, error) {
	return e.vm.RunScript(name, src)
}

// Compile checks src for syntax errors without running it.
func (e *Engine) Compile(name, src string) error {
	_, err := goja.Compile(name, src, false)
	return err
}

// Eval runs src and renders its completion value for display.
func (e *Engine) Eval(src string) (string, error) {
	v, err := e.vm.RunString(src)
	if err != nil {
		return "", err
	}
	return display(v), nil
}

// Classes lists the classes defined by scripts, in definition order.
func (e *Engine) Classes() []*class.Class {
	return append([]*class.Class(nil), e.defined...)
}

// Globals lists the names bound on the global object.
func (e *Engine) Globals() []string {
	return e.vm.GlobalObject().Keys()
}

// Constructor returns the script-visible constructor for c.
func (e *Engine) Constructor(c *class.Class) (*goja.Object, error) {
	return e.constructorFor(c)
}

// Unwrap returns the class object behind a script value, if it is one.
func (e *Engine) Unwrap(v goja.Value) (*class.Object, bool) {
	obj, ok := v.(*goja.Object)
	if !ok || obj.ExportType() != objectBridgeType {
		return nil, false
	}
	b := obj.Export().(*objectBridge)
	if b.e != e {
		return nil, false
	}
	return b.obj, true
}

func (e *Engine) makeCtor(create, extend func(goja.FunctionCall) goja.Value) (*goja.Object, error) {
	v, err := e.newCtor(goja.Undefined(), e.vm.ToValue(create), e.vm.ToValue(extend))
	if err != nil {
		return nil, fmt.Errorf("build constructor: %w", err)
	}
	return v.ToObject(e.vm), nil
}

// register binds a constructor to c: its prototype becomes the wrapped
// member table and superConstructor points at the parent constructor.
func (e *Engine) register(c *class.Class, ctor *goja.Object) error {
	e.ctors[c] = ctor
	e.classes[ctor] = c
	if err := ctor.Set("prototype", e.wrap(c.Prototype())); err != nil {
		return fmt.Errorf("set prototype: %w", err)
	}
	if err := ctor.Set("properties", e.schemaObject(c.Properties())); err != nil {
		return fmt.Errorf("set properties: %w", err)
	}
	statics := c.Statics()
	for _, name := range statics.Keys() {
		v, _ := statics.Lookup(name)
		if err := ctor.Set(name, e.toJS(v)); err != nil {
			return fmt.Errorf("set static %s: %w", name, err)
		}
	}
	if parent := c.Parent(); parent != nil {
		pctor, err := e.constructorFor(parent)
		if err != nil {
			return err
		}
		if err := ctor.Set("superConstructor", pctor); err != nil {
			return fmt.Errorf("set superConstructor: %w", err)
		}
	}
	return nil
}

// constructorFor returns the constructor for c, building one for classes
// that were defined from Go.
func (e *Engine) constructorFor(c *class.Class) (*goja.Object, error) {
	if ctor, ok := e.ctors[c]; ok {
		return ctor, nil
	}
	ctor, err := e.makeCtor(
		func(call goja.FunctionCall) goja.Value { return e.instantiate(c, call.Arguments) },
		func(call goja.FunctionCall) goja.Value {
			m, err := e.members(call.Argument(0))
			if err != nil {
				panic(e.throw(err))
			}
			return e.extend(c, m)
		},
	)
	if err != nil {
		return nil, err
	}
	if err := e.register(c, ctor); err != nil {
		return nil, err
	}
	return ctor, nil
}

// define handles Class(props) and Class.extend(props). Only the former
// honors props.extend.
func (e *Engine) define(props goja.Value, allowExtend bool) goja.Value {
	m, err := e.members(props)
	if err != nil {
		panic(e.throw(err))
	}
	parent := class.Base
	if allowExtend && m.Extend != nil {
		parent = m.Extend
	}
	return e.extend(parent, m)
}

func (e *Engine) extend(parent *class.Class, m class.Members) goja.Value {
	child, err := parent.Extend(m)
	if err != nil {
		panic(e.throw(err))
	}
	ctor, err := e.constructorFor(child)
	if err != nil {
		panic(e.throw(err))
	}
	e.defined = append(e.defined, child)

	e.log.WithFields(logrus.Fields{
		"class":      child.Name(),
		"parent":     parent.Name(),
		"members":    len(m.Methods),
		"mixins":     len(m.Mixins),
		"properties": len(m.Properties),
	}).Debug("class defined")
	return ctor
}

// instantiate defaults missing options to a fresh script object so construct
// and init share it.
func (e *Engine) instantiate(c *class.Class, args []goja.Value) goja.Value {
	if len(args) == 0 {
		args = []goja.Value{e.vm.NewObject()}
	} else if goja.IsUndefined(args[0]) || goja.IsNull(args[0]) {
		args = append([]goja.Value{e.vm.NewObject()}, args[1:]...)
	}
	inst, err := c.New(e.importArgs(args)...)
	if err != nil {
		panic(e.throw(err))
	}
	e.log.WithField("class", c.Name()).Debug("instance created")
	return e.wrap(inst)
}

func (e *Engine) consoleLog(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		parts[i] = display(arg)
	}
	fmt.Fprintln(e.config.Stdout, strings.Join(parts, " "))
	return goja.Undefined()
}

// throw converts err into a value suitable for panicking out of a native
// function. Script exceptions keep their original thrown value.
func (e *Engine) throw(err error) goja.Value {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return ex.Value()
	}
	return e.vm.NewGoError(err)
}

func display(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}
