package class

import "testing"

func mustDefine(t *testing.T, m Members) *Class {
	t.Helper()
	c, err := Define(m)
	if err != nil {
		t.Fatalf("define failed: %v", err)
	}
	return c
}

func mustExtend(t *testing.T, parent *Class, m Members) *Class {
	t.Helper()
	c, err := parent.Extend(m)
	if err != nil {
		t.Fatalf("extend failed: %v", err)
	}
	return c
}

func mustNew(t *testing.T, c *Class, args ...Value) *Object {
	t.Helper()
	inst, err := c.New(args...)
	if err != nil {
		t.Fatalf("new %s failed: %v", c, err)
	}
	return inst
}

func mustCall(t *testing.T, o *Object, name string, args ...Value) Value {
	t.Helper()
	v, err := o.Call(name, args...)
	if err != nil {
		t.Fatalf("call %s failed: %v", name, err)
	}
	return v
}

func returns(v Value) Value {
	return NewFunc(func(*Object, ...Value) (Value, error) {
		return v, nil
	})
}

// suffix delegates to the ancestor and appends s to its result.
func suffix(s string) Value {
	return NewDelegatingFunc(func(self *Object, args ...Value) (Value, error) {
		v, err := self.Super(args...)
		if err != nil {
			return NewNil(), err
		}
		return NewString(v.String() + s), nil
	})
}

// prefix delegates to the ancestor and prepends s to its result.
func prefix(s string) Value {
	return NewSuperFunc(func(self *Object, super Super, args ...Value) (Value, error) {
		v, err := super(args...)
		if err != nil {
			return NewNil(), err
		}
		return NewString(s + v.String()), nil
	})
}

// incr delegates with the original arguments and adds one to the result.
func incr() Value {
	return NewDelegatingFunc(func(self *Object, args ...Value) (Value, error) {
		v, err := self.Super(args...)
		if err != nil {
			return NewNil(), err
		}
		return NewInt(v.Int() + 1), nil
	})
}
