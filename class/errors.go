package class

import "errors"

var (
	// ErrUndefinedSuper is returned when a member calls its ancestor but no
	// ancestor implements it.
	ErrUndefinedSuper = errors.New("invocation of undefined function")
	// ErrNotCallable is returned by Call when the member is missing or is
	// not a function.
	ErrNotCallable = errors.New("member is not callable")
	// ErrReadOnly is returned when assigning a non-writable property or an
	// accessor property without a setter.
	ErrReadOnly            = errors.New("property is read-only")
	ErrMalformedDescriptor = errors.New("malformed property descriptor")
	ErrDestructed          = errors.New("instance already destructed")
)
