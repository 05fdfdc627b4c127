package jsclass

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/sirupsen/logrus"

	"github.com/mgomes/pseudoclass/class"
)

func newTestEngine(t *testing.T) (*Engine, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	e, err := NewEngine(Config{Stdout: &out})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, &out
}

// evalString runs src and returns its completion value.
func evalString(t *testing.T, e *Engine, src string) string {
	t.Helper()
	got, err := e.Eval(src)
	if err != nil {
		t.Fatalf("eval failed: %v\n%s", err, src)
	}
	return got
}

func expectEval(t *testing.T, src, want string) {
	t.Helper()
	e, _ := newTestEngine(t)
	if got := evalString(t, e, src); got != want {
		t.Fatalf("expected %q, got %q\n%s", want, got, src)
	}
}

func TestClassCreationForms(t *testing.T) {
	forms := map[string]string{
		"extend":   "Class.extend(props)",
		"call":     "Class(props)",
		"new":      "new Class(props)",
		"property": "Class({ extend: Class(), method1: props.method1 })",
	}
	for name, expr := range forms {
		t.Run(name, func(t *testing.T) {
			expectEval(t, `
				var props = { method1: function() { return 1; } };
				var A = `+expr+`;
				new A().method1();
			`, "1")
		})
	}
}

func TestIdentity(t *testing.T) {
	expectEval(t, `
		var A = Class();
		var B = A.extend();
		var C = B.extend();
		var c = C();
		[new B().constructor === B, c instanceof A, c instanceof B, c instanceof C, new A() instanceof B].join(",");
	`, "true,true,true,true,false")
}

func TestToString(t *testing.T) {
	expectEval(t, `
		var A = Class({ toString: function() { return 'A'; } });
		var B = Class({ toString: 'B' });
		var C = B.extend();
		[new A() + '', new B() + '', String(new C())].join(",");
	`, "A,B,B")
}

func TestInheritance(t *testing.T) {
	expectEval(t, `
		var A = Class({ method1: function() { return 1; } });
		var B = A.extend({ method2: function() { return 2; } });
		var C = Class({ extend: B, method3: function() { return 3; } });
		var c = new C();
		[c.method1(), c.method2(), c.method3(), C.superConstructor === B].join(",");
	`, "1,2,3,true")
}

func TestSuper(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"direct", `
			var A = Class({ method1: function() { return 1; } });
			var B = A.extend({ method1: function() { return this._super(); } });
			new B().method1();
		`, "1"},
		{"bracket access", `
			var A = Class({ method1: function() { return 1; } });
			var B = A.extend({ method1: function() { return this['_super'](); } });
			new B().method1();
		`, "1"},
		{"intermediate class", `
			var A = Class({ method1: function() { return 1; } });
			var B = A.extend({});
			var C = B.extend({ method1: function() { return this._super(); } });
			new C().method1();
		`, "1"},
		{"without an instance", `
			var A = Class({ method1: function() { return 1; } });
			var B = A.extend({ method1: function() { return this._super() + 1; } });
			B.prototype.method1();
		`, "2"},
		{"arguments", `
			var A = Class({ add: function(a, b) { return a + b; } });
			var B = A.extend({ add: function(a, b) { return this._super(a, b); } });
			new B().add(2, 4);
		`, "6"},
		{"captured", `
			var later;
			var A = Class({
				method1: function() { return 1; },
				method2: function() { return 2; }
			});
			var B = A.extend({
				method1: function() { later = this._super; },
				method2: function() { return this._super(); }
			});
			var b = new B();
			b.method1();
			[b.method2(), later()].join(",");
		`, "2,1"},
		{"patched parent", `
			var A = Class({ method1: function() { return 'Original'; } });
			var B = A.extend({ method1: function() { return this._super() + 'Child'; } });
			A.prototype.method1 = function() { return 'Patched'; };
			new B().method1();
		`, "PatchedChild"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectEval(t, tt.src, tt.want)
		})
	}
}

func TestSuperWithoutAncestorThrows(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Eval(`
		var A = Class({ method1: function() { return 1; } });
		var B = A.extend({ methodX: function() { return this._super(); } });
		new B().methodX();
	`)
	if err == nil || !strings.Contains(err.Error(), class.ErrUndefinedSuper.Error()) {
		t.Fatalf("expected undefined super error, got %v", err)
	}

	// The failure leaves the instance usable.
	if got := evalString(t, e, `var b = new B(); try { b.methodX(); } catch (e) {} b.method1();`); got != "1" {
		t.Fatalf("expected 1 after failed super, got %q", got)
	}
}

func TestMixins(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"instance", `
			var A = Class();
			var a = new A();
			a.mixin({ method1: function() { return 1; } });
			a.method1();
		`, "1"},
		{"class order", `
			var A = Class({ mixins: [
				{ method1: function() { return 1; }, method2: function() { return 1; } },
				{ method2: function() { return 2; } }
			] });
			var a = new A();
			[a.method1(), a.method2()].join(",");
		`, "1,2"},
		{"super through class and instance mixins", `
			var A = Class({
				toString: 'MixedUp',
				mixins: [
					{ method1: function() { return this._super() + 'Mixed'; } },
					{ method1: function() { return this._super() + 'Again'; } }
				],
				method1: function() { return 'Original'; }
			});
			var a = new A();
			a.mixin({ method1: function() { return this._super() + 'Last'; } });
			a.method1();
		`, "OriginalMixedAgainLast"},
		{"stacked instance mixins", `
			var A = Class({ method1: function() { return 'Original'; } });
			var a = new A();
			a.mixin({ method1: function() { return this._super() + 'Mixed'; } });
			a.mixin({ method1: function() { return this._super() + 'Again'; } });
			a.mixin({ method1: function() { return this._super() + 'Twice'; } });
			[a.method1(), new A().method1()].join(",");
		`, "OriginalMixedAgainTwice,Original"},
		{"class mixin then instance mixin", `
			var A = Class({ mixins: [{ method1: function() { return 'MixedFirst'; } }] });
			var a = new A();
			a.mixin({ method1: function() { return this._super() + 'MixedLater'; } });
			a.method1();
		`, "MixedFirstMixedLater"},
		{"explicit super reference", `
			var A = Class({ method1: function() { return 'A'; } });
			var B = Class({ method1: function() { return 'B'; } });
			var a = new A();
			a.mixin({ method1: function() { return this._super() + 'X'; } }, B.prototype);
			a.method1();
		`, "BX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectEval(t, tt.src, tt.want)
		})
	}
}

func TestLifecycle(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"constructors chain parent first", `
			var order = [];
			var A = Class({ construct: function() { order.push('A'); this.A = true; } });
			var B = A.extend({ construct: function() { order.push('B'); this.B = true; } });
			var b = new B();
			[order.join(''), b.A, b.B].join(",");
		`, "AB,true,true"},
		{"destructors chain child first", `
			var order = [];
			var A = Class({ destruct: function() { order.push('A'); } });
			var B = A.extend({ destruct: function() { order.push('B'); } });
			new B().destruct();
			order.join('');
		`, "BA"},
		{"empty options", `
			var A = Class({ construct: function(options) { this.options = options; } });
			var a = new A();
			[typeof a.options, Object.keys(a.options).length].join(",");
		`, "object,0"},
		{"options passed through", `
			var A = Class({ construct: function(options) { this.type = options.type; } });
			new A({ type: 'warn' }).type;
		`, "warn"},
		{"init after constructors", `
			var A = Class({ construct: function() { this.A = true; } });
			var B = A.extend({
				construct: function() { this.B = true; },
				init: function() { this.ready = this.A && this.B; }
			});
			new B().ready;
		`, "true"},
		{"init not chained", `
			var A = Class({ init: function() { throw new Error('init was chained'); } });
			var B = A.extend({ init: function() { this.ok = true; } });
			new B().ok;
		`, "true"},
		{"init super", `
			var A = Class({ init: function() { return 1; } });
			var B = A.extend({ init: function() { this.fromSuper = this._super(); } });
			new B().fromSuper;
		`, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectEval(t, tt.src, tt.want)
		})
	}
}

func TestDestructTwiceThrows(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Eval(`
		var A = Class({ destruct: function() {} });
		var a = new A();
		a.destruct();
		a.destruct();
	`)
	if err == nil || !strings.Contains(err.Error(), class.ErrDestructed.Error()) {
		t.Fatalf("expected destructed error, got %v", err)
	}
}

func TestConstructorErrorKeepsThrownValue(t *testing.T) {
	e, _ := newTestEngine(t)
	got := evalString(t, e, `
		var A = Class({ construct: function() { throw new Error('boom'); } });
		var msg;
		try { new A(); } catch (e) { msg = e.message; }
		msg;
	`)
	if got != "boom" {
		t.Fatalf("expected boom, got %q", got)
	}
}

func TestStatics(t *testing.T) {
	expectEval(t, `
		var A = Class.extend();
		A.staticMethod = function() { return 'Static method'; };
		A.staticProperty = 'Static property';
		var B = A.extend();
		B.staticMethod = function() { return this.superConstructor.staticMethod(); };
		var C = B.extend();
		C.staticMethod = function() { return this.superConstructor.staticMethod(); };
		var c = new C();
		[
			C.staticMethod(),
			c.constructor.staticMethod(),
			c.constructor.superConstructor.superConstructor.staticProperty
		].join(",");
	`, "Static method,Static method,Static property")
}

func TestGoStaticsAreExposed(t *testing.T) {
	e, _ := newTestEngine(t)
	c := class.Must(class.Define(class.Members{Name: "Counter"}))
	c.SetStatic("label", class.NewString("counter"))
	c.SetStatic("describe", class.NewFunc(func(self *class.Object, args ...class.Value) (class.Value, error) {
		return class.NewString(self.Class().Name()), nil
	}))

	ctor, err := e.Constructor(c)
	if err != nil {
		t.Fatalf("constructor: %v", err)
	}
	if err := e.Runtime().Set("Counter", ctor); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := evalString(t, e, `[Counter.label, Counter.describe(), new Counter() + ''].join(",")`); got != "counter,Counter,Counter" {
		t.Fatalf("unexpected statics: %q", got)
	}
}

func TestProperties(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"read-only value", `
			var A = Class.extend({ properties: { name: { value: 'PseudoClass', writable: false } } });
			var a = new A();
			a.name = 'Other';
			a.name;
		`, "PseudoClass"},
		{"accessor functions", `
			var A = Class.extend({ properties: { name: {
				set: function(name) { this._name = name; },
				get: function() { return this._name; }
			} } });
			var a = new A();
			a.name = 'PseudoClass';
			[a.name, a._name].join(",");
		`, "PseudoClass,PseudoClass"},
		{"accessor member names", `
			var A = Class.extend({
				properties: { name: { set: 'setName', get: 'getName' } },
				setName: function(name) { this._name = name; },
				getName: function() { return this._name; }
			});
			var a = new A();
			a.name = 'PseudoClass';
			[a.name, a._name].join(",");
		`, "PseudoClass,PseudoClass"},
		{"monkey-patched accessors", `
			var A = Class.extend({ properties: { name: { set: 'setName', get: 'getName' } } });
			var a = new A();
			A.prototype.setName = function(name) { this._name = name; };
			A.prototype.getName = function() { return this._name; };
			a.name = 'PseudoClass';
			[a.name, a._name].join(",");
		`, "PseudoClass,PseudoClass"},
		{"schema not on prototype", `
			var A = Class.extend({ properties: { name: { value: 'PseudoClass', writable: false } } });
			[!!A.properties, !!A.prototype.properties, 'name' in A.prototype].join(",");
		`, "true,false,false"},
		{"value override keeps writability", `
			var A = Class.extend({ properties: { name: { value: 'PseudoClass', writable: false } } });
			var B = A.extend({ properties: { name: { value: 'PseudoChildClass' } } });
			var b = new B();
			b.name = 'NewName';
			b.name;
		`, "PseudoChildClass"},
		{"accessor override", `
			var A = Class.extend({ properties: { name: {
				set: function(name) { this._name = name; },
				get: function() { return this._name; }
			} } });
			var B = A.extend({ properties: { name: {
				set: function(name) { this._otherName = name; },
				get: function() { return this._otherName; }
			} } });
			var b = new B();
			b.name = 'PseudoClass';
			[b.name, b._otherName, typeof b._name].join(",");
		`, "PseudoClass,PseudoClass,undefined"},
		{"parent schema unchanged", `
			var A = Class.extend({ properties: { name: { writable: false, value: 'Original' } } });
			var B = A.extend({ properties: { name: { value: 'New' } } });
			[A.properties.name.writable, A.properties.name.value, B.properties.name.writable, B.properties.name.value].join(",");
		`, "false,Original,false,New"},
		{"empty child schema", `
			var Parent = Class.extend({ properties: { value: {
				set: function(value) { this._value = value; },
				get: function() { return this._value; }
			} } });
			var Child = Parent.extend({ properties: {} });
			var child = new Child();
			child.value = 1;
			[child._value, child.value].join(",");
		`, "1,1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectEval(t, tt.src, tt.want)
		})
	}
}

func TestReadOnlyWriteThrowsInStrictMode(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Eval(`
		'use strict';
		var A = Class.extend({ properties: { name: { value: 'PseudoClass' } } });
		new A().name = 'Other';
	`)
	var ex *goja.Exception
	if !errors.As(err, &ex) {
		t.Fatalf("expected a script exception, got %v", err)
	}
}

func TestMalformedDescriptorThrows(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Eval(`Class.extend({ properties: { name: { value: 1, enumerable: true } } });`)
	if err == nil || !strings.Contains(err.Error(), class.ErrMalformedDescriptor.Error()) {
		t.Fatalf("expected malformed descriptor error, got %v", err)
	}
}

func TestConsoleLog(t *testing.T) {
	e, out := newTestEngine(t)
	if _, err := e.Run("log.js", `
		var A = Class({ toString: 'A' });
		console.log('hello', 1, new A(), undefined);
	`); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := out.String(); got != "hello 1 A undefined\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestClassesAndUnwrap(t *testing.T) {
	e, _ := newTestEngine(t)
	v, err := e.Run("defs.js", `
		var Widget = Class({ toString: 'Widget' });
		var Button = Widget.extend({ toString: 'Button' });
		new Button();
	`)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	classes := e.Classes()
	if len(classes) != 2 || classes[0].Name() != "Widget" || classes[1].Name() != "Button" {
		t.Fatalf("unexpected classes: %v", classes)
	}
	obj, ok := e.Unwrap(v)
	if !ok || !obj.InstanceOf(classes[0]) {
		t.Fatalf("expected a Widget instance, got %v", v)
	}
	if _, ok := e.Unwrap(goja.Undefined()); ok {
		t.Fatalf("undefined should not unwrap")
	}
}

func TestDebugLogging(t *testing.T) {
	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

	e, err := NewEngine(Config{Logger: logger, Stdout: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := e.Eval(`var A = Class({ toString: 'A', destruct: function() {} }); new A().destruct();`); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	for _, want := range []string{`msg="class defined"`, "class=A", `msg="instance created"`, `msg="instance destructed"`} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("expected %q in logs:\n%s", want, logs.String())
		}
	}
}
