package sm

import "j5.nz/surefire/expr"

// Block is one linked-list node of a guarded or unguarded statement
// under a label. Guard, IfBlock, ElseBlock, Action, and Next are all
// optional, matching the guarded-statement grammar.
type Block struct {
	Guard     expr.Node // nil if unconditional; must evaluate to Bool
	IfBlock   *Block
	ElseBlock *Block
	Action    *Action
	Next      *Block
}

// executeBlock walks b's statement list, evaluating each guard and
// recursing into the taken branch, returning the pending transition
// (NoState if none was requested). pending is threaded as a return
// value rather than a pointer out-parameter.
func executeBlock(b *Block, pending uint32) uint32 {
	for b != nil && pending == NoState {
		takeIf := true
		if b.Guard != nil {
			takeIf = b.Guard.Eval().AsBool()
		}
		if takeIf && b.IfBlock != nil {
			pending = executeBlock(b.IfBlock, pending)
		} else if !takeIf && b.ElseBlock != nil {
			pending = executeBlock(b.ElseBlock, pending)
		}
		if pending != NoState {
			break
		}
		if b.Action != nil {
			if should, dest := b.Action.Execute(); should {
				pending = dest
			}
		}
		b = b.Next
	}
	return pending
}
