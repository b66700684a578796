package cfgparse_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"j5.nz/surefire/config/ast"
	"j5.nz/surefire/config/cfgparse"
)

func TestParseStateVectorHappyPath(t *testing.T) {
	src := `[Nav]
U32 foo
F32 bar @READ_ONLY

[REGION/Power]
F64 volts
`
	cfg, err := cfgparse.ParseStateVector("t.sv", []byte(src))
	require.NoError(t, err)
	require.Len(t, cfg.Regions, 2)
	require.Equal(t, "Nav", cfg.Regions[0].Name)
	require.Equal(t, "Power", cfg.Regions[1].Name, "legacy REGION/ prefix is stripped")
	require.Len(t, cfg.Regions[0].Elements, 2)
	require.Equal(t, "foo", cfg.Regions[0].Elements[0].Name)
	require.Equal(t, "bar", cfg.Regions[0].Elements[1].Name)
	require.Equal(t, "READ_ONLY", cfg.Regions[0].Elements[1].Annotations[0].Name)
}

func TestParseStateVectorMalformedHeaderAccumulatesError(t *testing.T) {
	_, err := cfgparse.ParseStateVector("t.sv", []byte("U32 foo\n"))
	require.Error(t, err)
}

func TestParseStateMachineBindingsAndLocals(t *testing.T) {
	src := `[STATE_VECTOR]
U64 clock @ALIAS=G
U32 mode @ALIAS=S

[LOCAL]
U64 counter = 0
F64 avg = counter @READ_ONLY

[Idle]
.ENTRY
x = 1
`
	cfg, err := cfgparse.ParseStateMachine("t.sm", []byte(src))
	require.NoError(t, err)
	require.Len(t, cfg.SVBindings, 2)
	require.Equal(t, "clock", cfg.SVBindings[0].Name)
	require.Equal(t, "ALIAS", cfg.SVBindings[0].Annotations[0].Name)
	require.Equal(t, "G", cfg.SVBindings[0].Annotations[0].Value)

	require.Len(t, cfg.Locals, 2)
	require.Equal(t, "counter", cfg.Locals[0].Name)
	require.False(t, cfg.Locals[0].ReadOnly)
	require.Equal(t, "avg", cfg.Locals[1].Name)
	require.True(t, cfg.Locals[1].ReadOnly)

	require.Len(t, cfg.States, 1)
	require.Equal(t, "Idle", cfg.States[0].Name)
	require.Equal(t, "ENTRY", cfg.States[0].Labels[0].Name)
	require.Len(t, cfg.States[0].Labels[0].Stmts, 1)
	require.Equal(t, ast.StmtAssign, cfg.States[0].Labels[0].Stmts[0].Kind)
}

func TestParseStateMachineTransitionStmt(t *testing.T) {
	src := `[Idle]
.STEP
-> Active
`
	cfg, err := cfgparse.ParseStateMachine("t.sm", []byte(src))
	require.NoError(t, err)
	stmt := cfg.States[0].Labels[0].Stmts[0]
	require.Equal(t, ast.StmtTransition, stmt.Kind)
	require.Equal(t, "Active", stmt.Dest)
}

func TestParseStateMachineGuardedColonForm(t *testing.T) {
	src := `[Idle]
.STEP
x > 0: y = 1
ELSE: y = -1
`
	cfg, err := cfgparse.ParseStateMachine("t.sm", []byte(src))
	require.NoError(t, err)
	stmt := cfg.States[0].Labels[0].Stmts[0]
	require.Equal(t, ast.StmtGuarded, stmt.Kind)
	require.False(t, stmt.Braced)
	require.NotNil(t, stmt.Then)
	require.Equal(t, ast.StmtAssign, stmt.Then.Kind)
	require.True(t, stmt.HasElse)
	require.NotNil(t, stmt.ElseStmt)
	require.False(t, stmt.ElseBraced)
}

func TestParseStateMachineGuardedBraceForm(t *testing.T) {
	src := `[Idle]
.STEP
x > 0 {
y = 1
z = 2
} ELSE {
y = -1
}
`
	cfg, err := cfgparse.ParseStateMachine("t.sm", []byte(src))
	require.NoError(t, err)
	stmt := cfg.States[0].Labels[0].Stmts[0]
	require.Equal(t, ast.StmtGuarded, stmt.Kind)
	require.True(t, stmt.Braced)
	require.Len(t, stmt.ThenBlock, 2)
	require.True(t, stmt.HasElse)
	require.True(t, stmt.ElseBraced)
	require.Len(t, stmt.ElseBlock, 1)
}

func TestParseStateMachineMalformedStatementAccumulatesError(t *testing.T) {
	src := `[Idle]
.STEP
1 2 3
`
	_, err := cfgparse.ParseStateMachine("t.sm", []byte(src))
	require.Error(t, err)
}

func TestParseStateMachineMultipleStatesInOrder(t *testing.T) {
	src := `[First]
.ENTRY
x = 1

[Second]
.ENTRY
x = 2
`
	cfg, err := cfgparse.ParseStateMachine("t.sm", []byte(src))
	require.NoError(t, err)
	require.Len(t, cfg.States, 2)
	require.Equal(t, "First", cfg.States[0].Name)
	require.Equal(t, "Second", cfg.States[1].Name)
}
