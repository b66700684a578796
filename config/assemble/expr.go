package assemble

import (
	"math"

	"j5.nz/surefire/config/ast"
	"j5.nz/surefire/config/exprparse"
	"j5.nz/surefire/errs"
	"j5.nz/surefire/expr"
	"j5.nz/surefire/scalar"
)

// resolveFunc resolves an identifier appearing in an expression to a
// readable node, or reports why it cannot be resolved in the current
// compilation context (unknown element, forward reference, etc).
type resolveFunc func(name string, line, col int) (expr.Node, *errs.Error)

var binOps = map[string]expr.Op{
	"+": expr.Add, "-": expr.Sub, "*": expr.Mul, "/": expr.Div,
	"<": expr.Lt, "<=": expr.Le, ">": expr.Gt, ">=": expr.Ge,
	"==": expr.Eq, "!=": expr.Ne,
	"AND": expr.And, "and": expr.And,
	"OR": expr.Or, "or": expr.Or,
}

var statKinds = map[string]expr.StatKind{
	"ROLL_AVG":    expr.StatMean,
	"ROLL_MEDIAN": expr.StatMedian,
	"ROLL_MIN":    expr.StatMin,
	"ROLL_MAX":    expr.StatMax,
	"ROLL_RANGE":  expr.StatRange,
}

func isLogical(op string) bool { return op == "AND" || op == "and" || op == "OR" || op == "or" }

func isRelational(op string) bool {
	switch op {
	case "<", "<=", ">", ">=", "==", "!=":
		return true
	}
	return false
}

func coerceF64(n expr.Node) expr.Node {
	if n.Kind() == scalar.F64 {
		return n
	}
	return expr.UnaryOp{Op: expr.Cast, CastTo: scalar.F64, X: n}
}

func coerceBool(n expr.Node) expr.Node {
	if n.Kind() == scalar.Bool {
		return n
	}
	return expr.UnaryOp{Op: expr.Cast, CastTo: scalar.Bool, X: n}
}

// coerceTo applies the final implicit cast to the destination kind a
// guard (bool) or assignment (the target element's kind) requires.
func coerceTo(n expr.Node, kind scalar.Kind) expr.Node {
	if n.Kind() == kind {
		return n
	}
	return expr.UnaryOp{Op: expr.Cast, CastTo: kind, X: n}
}

// compileExpr walks an untyped expression AST and emits a typed
// expr.Node tree, inserting the coercing casts the arithmetic,
// relational, and logical operators each require. Every expr.Stats
// instance created along the way (one per ROLL_* call) is appended to
// *stats so the caller can register it for per-step Update.
func compileExpr(file string, e *ast.Expr, resolve resolveFunc, stats *[]*expr.Stats) (expr.Node, *errs.Error) {
	switch e.Kind {
	case ast.ExprConst:
		if exprparse.IsBoolLiteral(e.Text) {
			return expr.Const{V: scalar.FromBool(exprparse.BoolLiteralValue(e.Text))}, nil
		}
		f, err := exprparse.ParseNumber(e.Text)
		if err != nil || math.IsInf(f, 0) {
			return nil, errs.At(errs.ExcOvfl, file, e.Line, e.Col, "numeric literal %q is out of range", e.Text)
		}
		return expr.Const{V: scalar.FromFloat(scalar.F64, f)}, nil

	case ast.ExprIdent:
		return resolve(e.Name, e.Line, e.Col)

	case ast.ExprUnary:
		x, err := compileExpr(file, e.L, resolve, stats)
		if err != nil {
			return nil, err
		}
		if e.Op == "NOT" || e.Op == "not" {
			return expr.UnaryOp{Op: expr.Not, X: coerceBool(x)}, nil
		}
		// Unary minus: 0 - x, in the shared f64 pivot.
		return expr.BinOp{Op: expr.Sub, L: expr.Const{V: scalar.FromFloat(scalar.F64, 0)}, R: coerceF64(x)}, nil

	case ast.ExprBinOp:
		l, err := compileExpr(file, e.L, resolve, stats)
		if err != nil {
			return nil, err
		}
		r, err := compileExpr(file, e.R, resolve, stats)
		if err != nil {
			return nil, err
		}
		op, ok := binOps[e.Op]
		if !ok {
			return nil, errs.At(errs.ExcElem, file, e.Line, e.Col, "unknown operator %q", e.Op)
		}
		switch {
		case isLogical(e.Op):
			return expr.BinOp{Op: op, L: coerceBool(l), R: coerceBool(r)}, nil
		case isRelational(e.Op):
			return expr.BinOp{Op: op, L: coerceF64(l), R: coerceF64(r)}, nil
		default:
			return expr.BinOp{Op: op, L: coerceF64(l), R: coerceF64(r)}, nil
		}

	case ast.ExprCall:
		return compileCall(file, e, resolve, stats)

	default:
		return nil, errs.At(errs.ExcElem, file, e.Line, e.Col, "malformed expression")
	}
}

func compileCall(file string, e *ast.Expr, resolve resolveFunc, stats *[]*expr.Stats) (expr.Node, *errs.Error) {
	which, ok := statKinds[e.Name]
	if !ok {
		return nil, errs.At(errs.ExcFunc, file, e.Line, e.Col, "unknown function %q", e.Name)
	}
	if len(e.Args) != 2 {
		return nil, errs.At(errs.ExcArity, file, e.Line, e.Col, "%s takes 2 arguments, got %d", e.Name, len(e.Args))
	}
	inner, err := compileExpr(file, e.Args[0], resolve, stats)
	if err != nil {
		return nil, err
	}
	winArg := e.Args[1]
	if winArg.Kind != ast.ExprConst || exprparse.IsBoolLiteral(winArg.Text) {
		return nil, errs.At(errs.ExcArity, file, winArg.Line, winArg.Col, "%s window size must be a constant integer", e.Name)
	}
	winF, perr := exprparse.ParseNumber(winArg.Text)
	if perr != nil {
		return nil, errs.At(errs.ExcOvfl, file, winArg.Line, winArg.Col, "window size %q is out of range", winArg.Text)
	}
	if winF != math.Trunc(winF) {
		return nil, errs.At(errs.ExcWin, file, winArg.Line, winArg.Col, "%s window size %q is not an integer", e.Name, winArg.Text)
	}
	st, nerr := expr.NewStats(coerceF64(inner), int(winF))
	if nerr != nil {
		return nil, errs.At(errs.ExcWin, file, winArg.Line, winArg.Col, "%s", nerr)
	}
	*stats = append(*stats, st)
	return expr.RollingStat{Which: which, S: st}, nil
}
