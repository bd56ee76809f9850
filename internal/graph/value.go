package graph

// Value is the right-hand side bound to a Key. It is one of four tagged
// variants: Literal, KeyRef, List, or Task.
type Value interface {
	isValue()
}

// Literal is a scalar payload: a number, a string, or any other opaque
// value that is not itself a key reference, a list, or a task.
type Literal struct {
	X any
}

func (Literal) isValue() {}

// KeyRef is a bare key occurring as a value, used to form aliases and to
// reference another node's output as an argument.
type KeyRef struct {
	K Key
}

func (KeyRef) isValue() {}

// List is an ordered sequence of values, traversed transparently by
// dependency extraction and substitution.
type List struct {
	Items []Value
}

func (List) isValue() {}

// Task is a callable applied to an ordered list of argument values.
// Arguments may themselves be tasks, lists, key references, or literals.
//
// A Task with a nil Fn is not a "real" task (it degenerates to the
// zero-length-tuple case the source language has to special-case at
// runtime); IsTask reports false for it.
type Task struct {
	Fn   Callable
	Args []Value
}

func (Task) isValue() {}

// IsTask reports whether v is a runnable task: a Task variant with a
// non-nil callable.
func IsTask(v Value) bool {
	t, ok := v.(Task)
	return ok && t.Fn != nil
}

// Callable stands in for "a tuple's callable first element". Giving
// functions an explicit identity makes them hashable/comparable, which
// InlineFunctions' fast-functions set relies on.
type Callable interface {
	// Identity is a stable identifier for this callable, used for equality
	// and set membership (the Go analogue of CPython function identity).
	Identity() string

	// Call invokes the callable with already-resolved arguments.
	Call(args []any) (any, error)
}

// Unwrapper is implemented by callables that wrap another callable (the Go
// analogue of functools.partial). UnwrapPartial follows the chain to its
// fixed point.
type Unwrapper interface {
	Unwrap() Callable
}

// UnwrapPartial strips partial-application wrappers by following a
// .Unwrap()-style chain to its fixed point.
func UnwrapPartial(c Callable) Callable {
	for {
		u, ok := c.(Unwrapper)
		if !ok {
			return c
		}
		inner := u.Unwrap()
		if inner == nil {
			return c
		}
		c = inner
	}
}

// Func adapts a plain Go function into a Callable.
type Func struct {
	Name string
	Fn   func(args []any) (any, error)
}

func (f Func) Identity() string { return f.Name }

func (f Func) Call(args []any) (any, error) { return f.Fn(args) }

// Partial binds leading arguments to a base Callable, mirroring
// functools.partial. It implements Unwrapper so functions_of-style
// inspection can recover the underlying callable's identity.
type Partial struct {
	Base  Callable
	Bound []any
}

func (p Partial) Identity() string { return "partial:" + p.Base.Identity() }

func (p Partial) Call(args []any) (any, error) {
	all := make([]any, 0, len(p.Bound)+len(args))
	all = append(all, p.Bound...)
	all = append(all, args...)
	return p.Base.Call(all)
}

func (p Partial) Unwrap() Callable { return p.Base }
