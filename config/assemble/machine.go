package assemble

import (
	"github.com/hashicorp/go-multierror"

	"j5.nz/surefire/config/ast"
	"j5.nz/surefire/errs"
	"j5.nz/surefire/expr"
	"j5.nz/surefire/scalar"
	"j5.nz/surefire/sm"
	"j5.nz/surefire/statevector"
)

// boundElem is one name's binding in a state machine's element
// namespace: a state-vector element (bound, aliased, or reserved) or a
// compiled local, together with the read-only flag that governs
// whether an assignment may target it.
type boundElem struct {
	elem      statevector.Elem
	kind      scalar.Kind
	readOnly  bool
	line, col int
}

// builder carries the per-machine compilation state shared across
// compileStmt/compileStmtList recursion: the resolvable element
// namespace, the state name table, the in-progress diagnostic list,
// and the rolling-stats registry fed to sm.StateMachine.RegisterStats.
type builder struct {
	file     string
	env      map[string]boundElem
	stateIDs map[string]uint32
	inExit   bool
	errs     *multierror.Error
	stats    []*expr.Stats
}

func (b *builder) resolveRead(name string, line, col int) (expr.Node, *errs.Error) {
	be, ok := b.env[name]
	if !ok {
		return nil, errs.At(errs.ExcElem, b.file, line, col, "unknown element %q", name)
	}
	return expr.ElemRef{ElemKind: be.kind, E: be.elem}, nil
}

func (b *builder) resolveWrite(name string, line, col int) (boundElem, *errs.Error) {
	be, ok := b.env[name]
	if !ok {
		return boundElem{}, errs.At(errs.ExcElem, b.file, line, col, "unknown element %q", name)
	}
	if be.readOnly {
		return boundElem{}, errs.At(errs.ElemRO, b.file, line, col, "element %q is read-only", name)
	}
	return be, nil
}

func (b *builder) compileStmtList(stmts []*ast.Stmt) *sm.Block {
	var head, tail *sm.Block
	for _, st := range stmts {
		blk := b.compileStmt(st)
		if blk == nil {
			continue
		}
		if head == nil {
			head = blk
		} else {
			tail.Next = blk
		}
		tail = blk
	}
	return head
}

func (b *builder) compileStmt(st *ast.Stmt) *sm.Block {
	if st == nil {
		return nil
	}
	switch st.Kind {
	case ast.StmtAssign:
		target, rerr := b.resolveWrite(st.Target, st.Line, st.Col)
		if rerr != nil {
			b.errs = multierror.Append(b.errs, rerr)
			return nil
		}
		valNode, verr := compileExpr(b.file, st.Value, b.resolveRead, &b.stats)
		if verr != nil {
			b.errs = multierror.Append(b.errs, verr)
			return nil
		}
		return &sm.Block{Action: &sm.Action{Kind: sm.Assign, Target: target.elem, Expr: coerceTo(valNode, target.kind)}}

	case ast.StmtTransition:
		if b.inExit {
			b.errs = multierror.Append(b.errs, errs.At(errs.TrExit, b.file, st.Line, st.Col, "a transition is not allowed in .EXIT"))
			return nil
		}
		dest, ok := b.stateIDs[st.Dest]
		if !ok {
			b.errs = multierror.Append(b.errs, errs.At(errs.ExcElem, b.file, st.Line, st.Col, "unknown state %q", st.Dest))
			return nil
		}
		return &sm.Block{Action: &sm.Action{Kind: sm.Transition, Dest: dest}}

	case ast.StmtGuarded:
		guardNode, gerr := compileExpr(b.file, st.Guard, b.resolveRead, &b.stats)
		if gerr != nil {
			b.errs = multierror.Append(b.errs, gerr)
			return nil
		}
		var ifBlock, elseBlock *sm.Block
		if st.Braced {
			ifBlock = b.compileStmtList(st.ThenBlock)
		} else {
			ifBlock = b.compileStmt(st.Then)
		}
		if st.HasElse {
			if st.ElseBraced {
				elseBlock = b.compileStmtList(st.ElseBlock)
			} else {
				elseBlock = b.compileStmt(st.ElseStmt)
			}
		}
		return &sm.Block{Guard: coerceTo(guardNode, scalar.Bool), IfBlock: ifBlock, ElseBlock: elseBlock}

	default:
		b.errs = multierror.Append(b.errs, errs.At(errs.CfgSyntax, b.file, st.Line, st.Col, "malformed statement"))
		return nil
	}
}

// StateMachine compiles a parsed state-machine config against a
// caller-supplied, already-built state vector, producing the
// executable sm.StateMachine or a combined error describing every
// semantic problem found. The eight steps below run in the order
// diagnostics should be reported: a failure in an earlier step (state
// vector binding, reserved aliases, local compilation, the state
// table) aborts before later steps run, since those steps need a
// trustworthy result from the ones before them; expression and action
// compilation within states accumulate every diagnostic they find
// before returning.
func StateMachine(file string, cfg *ast.StateMachineConfig, sv *statevector.StateVector) (*sm.StateMachine, error) {
	var errors *multierror.Error
	bound := make(map[string]boundElem)

	for _, decl := range cfg.SVBindings {
		kind, ok := scalar.Lookup(decl.Type)
		if !ok {
			errors = multierror.Append(errors, errs.At(errs.TypeMismatch, file, decl.Line, decl.Col, "element %q: unknown type %q", decl.Name, decl.Type))
			continue
		}
		elem, everr := sv.GetElemDynamic(decl.Name)
		if everr != nil {
			errors = multierror.Append(errors, errs.At(errs.SVElem, file, decl.Line, decl.Col, "state vector has no element %q", decl.Name))
			continue
		}
		if elem.Type() != kind {
			errors = multierror.Append(errors, errs.At(errs.TypeMismatch, file, decl.Line, decl.Col, "element %q is %s in the state vector, declared %s here", decl.Name, elem.Type(), kind))
			continue
		}
		refName := decl.Name
		readOnly := false
		for _, ann := range decl.Annotations {
			switch ann.Name {
			case "READ_ONLY":
				readOnly = true
			case "ALIAS":
				refName = ann.Value
			}
		}
		if _, dup := bound[refName]; dup {
			errors = multierror.Append(errors, errs.At(errs.ElemDupe, file, decl.Line, decl.Col, "element %q declared more than once", refName))
			continue
		}
		bound[refName] = boundElem{elem: elem, kind: kind, readOnly: readOnly, line: decl.Line, col: decl.Col}
	}

	if g, ok := bound["G"]; !ok {
		errors = multierror.Append(errors, errs.New(errs.NoG, "no state-vector element is bound to reserved name G"))
	} else if g.kind != scalar.U64 {
		errors = multierror.Append(errors, errs.At(errs.GType, file, g.line, g.col, "G must be U64, got %s", g.kind))
	} else {
		g.readOnly = true
		bound["G"] = g
	}
	if s, ok := bound["S"]; !ok {
		errors = multierror.Append(errors, errs.New(errs.NoS, "no state-vector element is bound to reserved name S"))
	} else if s.kind != scalar.U32 {
		errors = multierror.Append(errors, errs.At(errs.SType, file, s.line, s.col, "S must be U32, got %s", s.kind))
	} else {
		s.readOnly = true
		bound["S"] = s
	}
	if err := errors.ErrorOrNil(); err != nil {
		return nil, err
	}

	localSV, localKind, localReadOnly, err := buildLocalStateVector(file, cfg, bound)
	if err != nil {
		return nil, err
	}

	env := make(map[string]boundElem, len(bound)+len(localKind))
	for name, be := range bound {
		env[name] = be
	}
	for name, kind := range localKind {
		elem, _ := localSV.GetElemDynamic(name)
		env[name] = boundElem{elem: elem, kind: kind, readOnly: localReadOnly[name]}
	}

	stateIDs := make(map[string]uint32, len(cfg.States))
	for i, st := range cfg.States {
		if _, dup := stateIDs[st.Name]; dup {
			errors = multierror.Append(errors, errs.At(errs.CfgDupe, file, st.Line, st.Col, "state %q declared more than once", st.Name))
			continue
		}
		stateIDs[st.Name] = uint32(i + 1)
	}
	if len(cfg.States) == 0 {
		errors = multierror.Append(errors, errs.New(errs.CfgEmptyRegion, "state machine declares no states"))
	}
	if err := errors.ErrorOrNil(); err != nil {
		return nil, err
	}

	b := &builder{file: file, env: env, stateIDs: stateIDs}
	states := make(map[uint32]*sm.State, len(cfg.States))
	for _, st := range cfg.States {
		id := stateIDs[st.Name]
		state := &sm.State{ID: id}
		for _, label := range st.Labels {
			b.inExit = label.Name == "EXIT"
			blk := b.compileStmtList(label.Stmts)
			switch label.Name {
			case "ENTRY":
				state.Entry = blk
			case "STEP":
				state.Step = blk
			case "EXIT":
				state.Exit = blk
			default:
				b.errs = multierror.Append(b.errs, errs.At(errs.CfgSyntax, file, label.Line, label.Col, "unknown label %q", label.Name))
			}
		}
		states[id] = state
	}
	if err := b.errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	start := stateIDs[cfg.States[0].Name]
	machine, merr := sm.New(env["S"].elem, env["T"].elem, env["G"].elem, states, start)
	if merr != nil {
		return nil, merr
	}
	machine.RegisterStats(b.stats...)
	return machine, nil
}

// buildLocalStateVector lays out the secondary, flat state vector
// holding [LOCAL] elements plus the reserved, read-only T (state
// time), then evaluates each initializer in declaration order. An
// initializer may only reference T or an already-initialized local;
// referencing itself is SelfRef, referencing a later local is
// UseBeforeInit, and referencing a state-vector-bound name is
// LocalRefsSV. A LOCAL initializer runs exactly once, at assembly
// time, so a ROLL_* call in one would freeze at whatever the window
// holds before any step ever runs; that's rejected as LocalRoll.
// ROLL_* belongs in a state body, where it is compiled once into the
// state's expression tree and its backing Stats gets registered for
// per-step Update().
func buildLocalStateVector(file string, cfg *ast.StateMachineConfig, bound map[string]boundElem) (*statevector.StateVector, map[string]scalar.Kind, map[string]bool, error) {
	var errors *multierror.Error
	specs := []statevector.ElementSpec{{Name: "T", Kind: scalar.U64}}
	kinds := map[string]scalar.Kind{"T": scalar.U64}
	readOnly := map[string]bool{"T": true}

	for _, ld := range cfg.Locals {
		kind, ok := scalar.Lookup(ld.Type)
		if !ok {
			errors = multierror.Append(errors, errs.At(errs.TypeMismatch, file, ld.Line, ld.Col, "local %q: unknown type %q", ld.Name, ld.Type))
			continue
		}
		if _, dup := bound[ld.Name]; dup {
			errors = multierror.Append(errors, errs.At(errs.ElemDupe, file, ld.Line, ld.Col, "local %q collides with a state-vector binding", ld.Name))
			continue
		}
		if _, dup := kinds[ld.Name]; dup {
			errors = multierror.Append(errors, errs.At(errs.ElemDupe, file, ld.Line, ld.Col, "local %q declared more than once", ld.Name))
			continue
		}
		specs = append(specs, statevector.ElementSpec{Name: ld.Name, Kind: kind})
		kinds[ld.Name] = kind
		readOnly[ld.Name] = ld.ReadOnly
	}
	if err := errors.ErrorOrNil(); err != nil {
		return nil, nil, nil, err
	}

	localSV, err := statevector.BuildFlat(specs)
	if err != nil {
		return nil, nil, nil, err
	}

	initialized := map[string]bool{"T": true}
	for _, ld := range cfg.Locals {
		kind, ok := kinds[ld.Name]
		if !ok {
			continue // type or duplicate error already reported above
		}
		selfName := ld.Name
		resolve := func(name string, line, col int) (expr.Node, *errs.Error) {
			if name == selfName {
				return nil, errs.At(errs.SelfRef, file, line, col, "local %q references itself in its initializer", name)
			}
			if _, isSV := bound[name]; isSV {
				return nil, errs.At(errs.LocalRefsSV, file, line, col, "local initializer references state-vector element %q", name)
			}
			k, isLocal := kinds[name]
			if !isLocal {
				return nil, errs.At(errs.ExcElem, file, line, col, "unknown identifier %q", name)
			}
			if !initialized[name] {
				return nil, errs.At(errs.UseBeforeInit, file, line, col, "local %q used before it is initialized", name)
			}
			e, _ := localSV.GetElemDynamic(name)
			return expr.ElemRef{ElemKind: k, E: e}, nil
		}
		var stats []*expr.Stats
		node, cerr := compileExpr(file, ld.Init, resolve, &stats)
		if cerr != nil {
			errors = multierror.Append(errors, cerr)
			continue
		}
		if len(stats) > 0 {
			errors = multierror.Append(errors, errs.At(errs.LocalRoll, file, ld.Line, ld.Col,
				"local %q: ROLL_* is not allowed in a LOCAL initializer, it only runs once", ld.Name))
			continue
		}
		elem, _ := localSV.GetElemDynamic(ld.Name)
		elem.Write(coerceTo(node, kind).Eval())
		initialized[ld.Name] = true
	}
	if err := errors.ErrorOrNil(); err != nil {
		return nil, nil, nil, err
	}
	return localSV, kinds, readOnly, nil
}
