package class

// Method is the plain shape of a member function. self is the receiver the
// member was looked up on: an instance, or a class prototype when the member
// is called on the table directly.
type Method func(self *Object, args ...Value) (Value, error)

// SuperMethod receives the ancestor implementation of the member it
// overrides as an explicit parameter.
type SuperMethod func(self *Object, super Super, args ...Value) (Value, error)

// Super invokes an ancestor implementation. A Super stays bound to the
// receiver and ancestor it was created for, so it may be captured and called
// after the method that received it has returned.
type Super func(args ...Value) (Value, error)

type delegation int

const (
	delegatesNone delegation = iota
	delegatesParam
	delegatesSlot
)

// Function is a callable member. Whether it delegates to its ancestor is
// fixed when it is constructed.
type Function struct {
	Name string

	uses    delegation
	method  Method
	superFn SuperMethod
	bound   *binding
}

// NewFunc wraps a method that never calls its ancestor. The mixer assigns
// such members as-is.
func NewFunc(fn Method) Value {
	return newFunctionValue(&Function{uses: delegatesNone, method: fn})
}

// NewSuperFunc wraps a method that receives its ancestor as a parameter.
func NewSuperFunc(fn SuperMethod) Value {
	return newFunctionValue(&Function{uses: delegatesParam, superFn: fn})
}

// NewDelegatingFunc wraps a method that reaches its ancestor through
// self.Super or self.CurrentSuper while it runs.
func NewDelegatingFunc(fn Method) Value {
	return newFunctionValue(&Function{uses: delegatesSlot, method: fn})
}

// Delegates reports whether the function calls the implementation it
// overrides.
func (f *Function) Delegates() bool {
	if f.bound != nil {
		return f.bound.target.Delegates()
	}
	return f.uses != delegatesNone
}

// Call invokes the function with self as receiver.
func (f *Function) Call(self *Object, args ...Value) (Value, error) {
	return f.invoke(self, nil, args)
}

func (f *Function) invoke(self *Object, super Super, args []Value) (Value, error) {
	if self == nil {
		self = newDetachedObject()
	}
	if f.bound != nil {
		return f.bound.invoke(self, args)
	}
	switch f.uses {
	case delegatesParam:
		if super == nil {
			super = missingSuper(f.Name)
		}
		return f.superFn(self, super, args...)
	case delegatesSlot:
		if super == nil {
			super = missingSuper(f.Name)
		}
		prev := self.super
		self.super = super
		defer func() { self.super = prev }()
		return f.method(self, args...)
	default:
		return f.method(self, args...)
	}
}

func (f *Function) named(name string) *Function {
	if f.Name == name {
		return f
	}
	clone := *f
	clone.Name = name
	return &clone
}
