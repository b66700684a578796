package sm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"j5.nz/surefire/errs"
	"j5.nz/surefire/expr"
	"j5.nz/surefire/scalar"
	"j5.nz/surefire/sm"
	"j5.nz/surefire/statevector"
)

// harness builds a minimal S/T/G-only state vector plus one extra f64
// element "foo", returning typed handles for direct test manipulation.
type harness struct {
	sv  *statevector.StateVector
	s   statevector.Elem
	tt  statevector.Elem
	g   statevector.Elem
	foo statevector.Elem
}

func newHarness(t *testing.T) *harness {
	sv, err := statevector.BuildFlat([]statevector.ElementSpec{
		{Name: "S", Kind: scalar.U32},
		{Name: "T", Kind: scalar.U64},
		{Name: "G", Kind: scalar.U64},
		{Name: "foo", Kind: scalar.F64},
	})
	require.NoError(t, err)
	s, _ := sv.GetElemDynamic("S")
	tt, _ := sv.GetElemDynamic("T")
	g, _ := sv.GetElemDynamic("G")
	foo, _ := sv.GetElemDynamic("foo")
	return &harness{sv: sv, s: s, tt: tt, g: g, foo: foo}
}

// TestStateEntryRunsOnce is scenario S1: a single state whose ENTRY
// block writes a constant into foo; after one Step, foo holds it and
// the state is unchanged.
func TestStateEntryRunsOnce(t *testing.T) {
	h := newHarness(t)
	entry := &sm.Block{Action: &sm.Action{Kind: sm.Assign, Target: h.foo, Expr: expr.Const{V: scalar.FromFloat(scalar.F64, 1)}}}
	states := map[uint32]*sm.State{1: {ID: 1, Entry: entry}}
	m, err := sm.New(h.s, h.tt, h.g, states, 1)
	require.NoError(t, err)

	h.g.WriteU64(0)
	require.NoError(t, m.Step())
	require.Equal(t, 1.0, h.foo.ReadF64())
	require.Equal(t, uint32(1), m.CurrentState())
	require.Equal(t, uint64(0), h.tt.ReadU64())
}

// TestGuardedElse is scenario S2: a guard predicate picks between two
// assignments via a guarded statement's ELSE branch.
func TestGuardedElse(t *testing.T) {
	h := newHarness(t)
	thenBlk := &sm.Block{Action: &sm.Action{Kind: sm.Assign, Target: h.foo, Expr: expr.Const{V: scalar.FromFloat(scalar.F64, 100)}}}
	elseBlk := &sm.Block{Action: &sm.Action{Kind: sm.Assign, Target: h.foo, Expr: expr.Const{V: scalar.FromFloat(scalar.F64, -1)}}}
	guard := &sm.Block{
		Guard:     expr.BinOp{Op: expr.Gt, L: expr.ElemRef{ElemKind: scalar.F64, E: h.foo}, R: expr.Const{V: scalar.FromFloat(scalar.F64, 0)}},
		IfBlock:   thenBlk,
		ElseBlock: elseBlk,
	}
	states := map[uint32]*sm.State{1: {ID: 1, Step: guard}}
	m, err := sm.New(h.s, h.tt, h.g, states, 1)
	require.NoError(t, err)

	h.foo.Write(scalar.FromFloat(scalar.F64, 0)) // not > 0, so ELSE fires
	h.g.WriteU64(0)
	require.NoError(t, m.Step())
	require.Equal(t, -1.0, h.foo.ReadF64())
}

// TestTransitionRunsExitThenEntersNewState is scenario S3: STEP
// requests a transition, the current state's EXIT runs, and the next
// state's ENTRY fires on the following step.
func TestTransitionRunsExitThenEntersNewState(t *testing.T) {
	h := newHarness(t)
	exit := &sm.Block{Action: &sm.Action{Kind: sm.Assign, Target: h.foo, Expr: expr.Const{V: scalar.FromFloat(scalar.F64, 7)}}}
	step := &sm.Block{Action: &sm.Action{Kind: sm.Transition, Dest: 2}}
	entry2 := &sm.Block{Action: &sm.Action{Kind: sm.Assign, Target: h.foo, Expr: expr.Const{V: scalar.FromFloat(scalar.F64, 42)}}}
	states := map[uint32]*sm.State{
		1: {ID: 1, Step: step, Exit: exit},
		2: {ID: 2, Entry: entry2},
	}
	m, err := sm.New(h.s, h.tt, h.g, states, 1)
	require.NoError(t, err)

	h.g.WriteU64(0)
	require.NoError(t, m.Step())
	require.Equal(t, uint32(2), m.CurrentState())
	require.Equal(t, 7.0, h.foo.ReadF64(), "EXIT of the departed state ran this step")

	h.g.WriteU64(1)
	require.NoError(t, m.Step())
	require.Equal(t, 42.0, h.foo.ReadF64(), "ENTRY of the new state ran on the following step")
	require.Equal(t, uint64(0), h.tt.ReadU64(), "state time resets for the new state")
}

// TestRollingAverage is scenario S4: a rolling-window statistic
// updates once per step regardless of which block reads it.
func TestRollingAverage(t *testing.T) {
	h := newHarness(t)
	st, err := expr.NewStats(expr.ElemRef{ElemKind: scalar.F64, E: h.foo}, 2)
	require.NoError(t, err)
	states := map[uint32]*sm.State{1: {ID: 1}}
	m, err := sm.New(h.s, h.tt, h.g, states, 1)
	require.NoError(t, err)
	m.RegisterStats(st)

	h.foo.Write(scalar.FromFloat(scalar.F64, 10))
	h.g.WriteU64(0)
	require.NoError(t, m.Step())
	h.foo.Write(scalar.FromFloat(scalar.F64, 20))
	h.g.WriteU64(1)
	require.NoError(t, m.Step())

	require.Equal(t, 15.0, st.Mean())
}

// TestSelfTransitionResetsStateTime is scenario S5: a state
// transitioning to itself resets T as if freshly entered.
func TestSelfTransitionResetsStateTime(t *testing.T) {
	h := newHarness(t)
	step := &sm.Block{Action: &sm.Action{Kind: sm.Transition, Dest: 1}}
	states := map[uint32]*sm.State{1: {ID: 1, Step: step}}
	m, err := sm.New(h.s, h.tt, h.g, states, 1)
	require.NoError(t, err)

	h.g.WriteU64(0)
	require.NoError(t, m.Step())
	h.g.WriteU64(5)
	require.NoError(t, m.Step())
	require.Equal(t, uint64(0), h.tt.ReadU64(), "T resets because the state was re-entered")
}

// TestNonMonotonicTimeLeavesMachineUnchanged is scenario S6: a
// regressing clock reading fails the step before anything is written,
// leaving the machine in its pre-step state.
func TestNonMonotonicTimeLeavesMachineUnchanged(t *testing.T) {
	h := newHarness(t)
	step := &sm.Block{Action: &sm.Action{Kind: sm.Assign, Target: h.foo, Expr: expr.Const{V: scalar.FromFloat(scalar.F64, 99)}}}
	states := map[uint32]*sm.State{1: {ID: 1, Step: step}}
	m, err := sm.New(h.s, h.tt, h.g, states, 1)
	require.NoError(t, err)

	h.g.WriteU64(10)
	require.NoError(t, m.Step())
	require.Equal(t, 99.0, h.foo.ReadF64())

	h.foo.Write(scalar.FromFloat(scalar.F64, 0))
	h.g.WriteU64(5) // regresses
	err = m.Step()
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.NonMonotonicTime))
	require.Equal(t, 0.0, h.foo.ReadF64(), "the failed step wrote nothing")
	require.Equal(t, uint32(1), m.CurrentState())
}

func TestNewRejectsNoStateAndUnknownStart(t *testing.T) {
	h := newHarness(t)
	_, err := sm.New(h.s, h.tt, h.g, map[uint32]*sm.State{}, sm.NoState)
	require.Error(t, err)

	_, err = sm.New(h.s, h.tt, h.g, map[uint32]*sm.State{}, 1)
	require.Error(t, err)
}

// TestWriteGlobalTimeDrivesStep confirms a caller stepping the
// machine against a real clock can advance G through WriteGlobalTime
// without reaching into the state vector directly.
func TestWriteGlobalTimeDrivesStep(t *testing.T) {
	h := newHarness(t)
	states := map[uint32]*sm.State{1: {ID: 1}}
	m, err := sm.New(h.s, h.tt, h.g, states, 1)
	require.NoError(t, err)

	m.WriteGlobalTime(100)
	require.NoError(t, m.Step())
	require.Equal(t, uint64(100), h.g.ReadU64())
	require.Equal(t, uint64(0), h.tt.ReadU64())

	m.WriteGlobalTime(150)
	require.NoError(t, m.Step())
	require.Equal(t, uint64(50), h.tt.ReadU64())
}
