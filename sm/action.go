// Package sm implements Surefire's state machine runtime: Action,
// Block, State, and the StateMachine executor.
package sm

import (
	"j5.nz/surefire/expr"
	"j5.nz/surefire/statevector"
)

// NoState is the reserved sentinel state id.
const NoState uint32 = 0

// ActionKind distinguishes the two Action variants.
type ActionKind int

const (
	Assign ActionKind = iota
	Transition
)

// Action is either an assignment (write an expression's result to an
// element) or a transition request.
type Action struct {
	Kind ActionKind

	// Assign
	Target statevector.Elem
	Expr   expr.Node

	// Transition
	Dest uint32
}

// Execute runs the action and reports whether it requests a
// transition, and to which state.
func (a *Action) Execute() (shouldTransition bool, dest uint32) {
	if a.Kind == Transition {
		return true, a.Dest
	}
	a.Target.Write(a.Expr.Eval())
	return false, 0
}
