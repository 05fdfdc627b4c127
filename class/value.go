package class

import (
	"fmt"
	"sort"
	"strings"
)

type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindHash
	KindFunction
	KindObject
	KindClass
	// KindHost carries a value owned by an embedding runtime, such as a
	// script object, by reference.
	KindHost
)

// Value is a member value: a field, a method, or something in between.
type Value struct {
	kind ValueKind
	data any
}

func NewNil() Value                    { return Value{kind: KindNil} }
func NewBool(b bool) Value             { return Value{kind: KindBool, data: b} }
func NewInt(i int64) Value             { return Value{kind: KindInt, data: i} }
func NewFloat(f float64) Value         { return Value{kind: KindFloat, data: f} }
func NewString(s string) Value         { return Value{kind: KindString, data: s} }
func NewArray(a []Value) Value         { return Value{kind: KindArray, data: a} }
func NewHash(h map[string]Value) Value { return Value{kind: KindHash, data: h} }
func NewObject(o *Object) Value        { return Value{kind: KindObject, data: o} }
func NewClass(c *Class) Value          { return Value{kind: KindClass, data: c} }
func NewHost(h any) Value              { return Value{kind: KindHost, data: h} }

func newFunctionValue(fn *Function) Value { return Value{kind: KindFunction, data: fn} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNil() bool { return v.kind == KindNil }

func (v Value) IsCallable() bool { return v.kind == KindFunction }

func (v Value) Bool() bool {
	if v.kind == KindBool {
		return v.data.(bool)
	}
	return false
}

func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.data.(int64)
	case KindFloat:
		return int64(v.data.(float64))
	default:
		return 0
	}
}

func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.data.(float64)
	case KindInt:
		return float64(v.data.(int64))
	default:
		return 0
	}
}

func (v Value) Array() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.data.([]Value)
}

func (v Value) Hash() map[string]Value {
	if v.kind != KindHash {
		return nil
	}
	return v.data.(map[string]Value)
}

func (v Value) Function() *Function {
	if v.kind != KindFunction {
		return nil
	}
	return v.data.(*Function)
}

func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.data.(*Object)
}

func (v Value) Class() *Class {
	if v.kind != KindClass {
		return nil
	}
	return v.data.(*Class)
}

// Host returns the embedder value behind a KindHost value.
func (v Value) Host() any {
	if v.kind != KindHost {
		return nil
	}
	return v.data
}

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindHash:
		return "hash"
	case KindFunction:
		return "function"
	case KindObject:
		return "object"
	case KindClass:
		return "class"
	case KindHost:
		return "host"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// String renders the value for display. Objects render through their
// toString member when one is reachable.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return ""
	case KindString:
		return v.data.(string)
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.data.(int64))
	case KindFloat:
		return fmt.Sprintf("%g", v.data.(float64))
	case KindArray:
		elems := v.data.([]Value)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = e.String()
		}
		return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
	case KindHash:
		entries := v.data.(map[string]Value)
		if len(entries) == 0 {
			return "{}"
		}
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, entries[k].String())
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	case KindFunction:
		fn := v.data.(*Function)
		if fn.Name == "" {
			return "<Function>"
		}
		return fmt.Sprintf("<Function %s>", fn.Name)
	case KindObject:
		return v.data.(*Object).String()
	case KindClass:
		return v.data.(*Class).String()
	case KindHost:
		return fmt.Sprint(v.data)
	default:
		return fmt.Sprintf("<%s>", v.kind)
	}
}
