package evaluator

import "github.com/thomasrohde/lox/pkg/ast"

// Callable is a value that can be invoked with a call expression. The
// interpreter checks the argument count against Arity before calling.
type Callable interface {
	Value
	Arity() int
	Call(in *Interpreter, args []Value) (Value, error)
	Name() string
}

// Function is a user-defined function closed over the frame in which its
// declaration executed.
type Function struct {
	decl    *ast.Function
	closure *Environment
}

// NewFunction pairs a declaration with its defining frame.
func NewFunction(decl *ast.Function, closure *Environment) *Function {
	return &Function{decl: decl, closure: closure}
}

func (*Function) loxValue() {}

func (f *Function) Arity() int { return len(f.decl.Params) }

func (f *Function) Name() string { return f.decl.Name.Lexeme }

// Call runs the body in a fresh frame parented at the closure, with each
// parameter bound to its argument. A body that finishes without return
// yields nil.
func (f *Function) Call(in *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.closure)
	for i, param := range f.decl.Params {
		env.Define(param.Lexeme, args[i])
	}

	c, err := in.executeBlock(f.decl.Body, env)
	if err != nil {
		return nil, err
	}
	if c.returning {
		return c.value, nil
	}
	return Nil{}, nil
}

// NativeFunction is a host-provided function.
type NativeFunction struct {
	FnName string
	ArityN int
	Fn     func(args []Value) (Value, error)
}

func (*NativeFunction) loxValue() {}

func (n *NativeFunction) Arity() int { return n.ArityN }

func (n *NativeFunction) Name() string { return n.FnName }

func (n *NativeFunction) Call(_ *Interpreter, args []Value) (Value, error) {
	return n.Fn(args)
}
