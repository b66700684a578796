// Package expr implements Surefire's expression tree:
// a heterogeneously typed evaluator over state-vector elements,
// compiled by the assembler into the tagged-variant form described
// below. Evaluation never allocates and never fails — by the time a
// tree reaches this package it has already been type-checked, so
// every node is compiled purely in terms of the two shapes the
// runtime actually needs: float64 (the typing rule's f64 pivot) and
// bool (guards and logical operators).
package expr

import "j5.nz/surefire/scalar"

// Node is one Expression variant. A single interface covers every
// node kind without per-primitive-type monomorphization — see
// DESIGN.md's tagged-variant note.
type Node interface {
	// Kind is the node's static result type, fixed at assembly time.
	Kind() scalar.Kind
	// Eval evaluates the node. It is referentially transparent within
	// one step: elements are read, never written.
	Eval() scalar.Value
}

// Elem is the minimal element-reading contract ElemRef needs; it is
// satisfied by statevector.Elem without expr importing statevector's
// full surface.
type Elem interface {
	Read() scalar.Value
}

// Const is a compile-time constant value.
type Const struct {
	V scalar.Value
}

func (c Const) Kind() scalar.Kind  { return c.V.Kind }
func (c Const) Eval() scalar.Value { return c.V }

// ElemRef reads the current value of a state-vector element.
type ElemRef struct {
	ElemKind scalar.Kind
	E        Elem
}

func (r ElemRef) Kind() scalar.Kind  { return r.ElemKind }
func (r ElemRef) Eval() scalar.Value { return r.E.Read() }

// BinOp is one of the binary operators: arithmetic and
// relational operators always receive F64-typed children (the
// assembler inserts the coercing cast), producing F64 (arithmetic) or
// Bool (relational); And/Or receive Bool-typed children and produce
// Bool. Division by zero is never a panic: Go's float64 division
// already yields IEEE-754 inf/NaN.
type BinOp struct {
	Op   Op
	L, R Node
}

// Op identifies a BinOp's operator.
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
	Lt
	Le
	Gt
	Ge
	Eq
	Ne
	And
	Or
)

func (b BinOp) Kind() scalar.Kind {
	switch b.Op {
	case Add, Sub, Mul, Div:
		return scalar.F64
	default:
		return scalar.Bool
	}
}

func (b BinOp) Eval() scalar.Value {
	// Both sides are always evaluated, matching 
	// non-short-circuit contract for And/Or.
	l := b.L.Eval()
	r := b.R.Eval()
	switch b.Op {
	case Add:
		return scalar.FromFloat(scalar.F64, l.AsF64()+r.AsF64())
	case Sub:
		return scalar.FromFloat(scalar.F64, l.AsF64()-r.AsF64())
	case Mul:
		return scalar.FromFloat(scalar.F64, l.AsF64()*r.AsF64())
	case Div:
		return scalar.FromFloat(scalar.F64, l.AsF64()/r.AsF64())
	case Lt:
		return scalar.FromBool(l.AsF64() < r.AsF64())
	case Le:
		return scalar.FromBool(l.AsF64() <= r.AsF64())
	case Gt:
		return scalar.FromBool(l.AsF64() > r.AsF64())
	case Ge:
		return scalar.FromBool(l.AsF64() >= r.AsF64())
	case Eq:
		return scalar.FromBool(l.AsF64() == r.AsF64())
	case Ne:
		return scalar.FromBool(l.AsF64() != r.AsF64())
	case And:
		return scalar.FromBool(l.AsBool() && r.AsBool())
	case Or:
		return scalar.FromBool(l.AsBool() || r.AsBool())
	default:
		panic("expr: invalid BinOp")
	}
}

// UnOp identifies a UnaryOp's operator.
type UnOp int

const (
	Not UnOp = iota
	Cast
)

// UnaryOp is logical negation or a safe cast between scalar types.
// CastTo is only meaningful when Op == Cast.
type UnaryOp struct {
	Op     UnOp
	CastTo scalar.Kind
	X      Node
}

func (u UnaryOp) Kind() scalar.Kind {
	if u.Op == Cast {
		return u.CastTo
	}
	return scalar.Bool
}

func (u UnaryOp) Eval() scalar.Value {
	x := u.X.Eval()
	if u.Op == Not {
		return scalar.FromBool(!x.AsBool())
	}
	return scalar.SafeCast(u.CastTo, x)
}

// RollingStat evaluates to the current value of one statistic of a
// bounded window. It never calls Update itself; the
// state machine executor calls Update once per step per distinct
// Stats instance.
type RollingStat struct {
	Which StatKind
	S     *Stats
}

func (r RollingStat) Kind() scalar.Kind { return scalar.F64 }

func (r RollingStat) Eval() scalar.Value {
	return scalar.FromFloat(scalar.F64, r.S.Value(r.Which))
}
