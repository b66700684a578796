// Package surefire is the public facade over Surefire's state vector
// and state machine runtime: it wires the tokenizer, parsers, and
// assembler together so a caller never has to touch the config/
// subpackages directly.
package surefire

import (
	"os"

	"github.com/pkg/errors"

	"j5.nz/surefire/config/assemble"
	"j5.nz/surefire/config/cfgparse"
	"j5.nz/surefire/errs"
	"j5.nz/surefire/scalar"
	"j5.nz/surefire/sm"
	"j5.nz/surefire/statevector"
)

// Error, Code, and Is re-export package errs's stable diagnostic
// surface so callers never need to import j5.nz/surefire/errs
// directly.
type (
	Error = errs.Error
	Code  = errs.Code
)

var Is = errs.Is

// StateVector is the typed, contiguous shared-memory element store.
// It is the facade's thin wrapper over statevector.StateVector,
// existing so CreateStateVector's return type lives in this package.
type StateVector struct {
	sv *statevector.StateVector
}

// CreateStateVector compiles a state-vector config file (the
// "[Name]"/"[REGION/Name]" section grammar) into a built StateVector.
func CreateStateVector(path string) (*StateVector, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "surefire: reading %s", path)
	}
	cfg, err := cfgparse.ParseStateVector(path, src)
	if err != nil {
		return nil, err
	}
	sv, err := assemble.StateVector(path, cfg)
	if err != nil {
		return nil, err
	}
	return &StateVector{sv: sv}, nil
}

// GetElement resolves name to a typed element handle.
func GetElement[T scalar.Native](sv *StateVector, name string) (statevector.Element[T], error) {
	return statevector.GetElement[T](sv.sv, name)
}

// GetRegion resolves name to a region handle for bulk byte I/O.
func (sv *StateVector) GetRegion(name string) (statevector.Region, error) {
	return sv.sv.GetRegion(name)
}

// Raw exposes the underlying statevector.StateVector, for callers
// (such as CreateStateMachine) that need to bind a state machine
// config against it.
func (sv *StateVector) Raw() *statevector.StateVector { return sv.sv }

// StateMachine is the facade's thin wrapper over sm.StateMachine.
type StateMachine struct {
	m *sm.StateMachine
}

// CreateStateMachine compiles a state-machine config file against an
// already-built StateVector and returns the executable machine,
// starting in its textually-first declared state.
func CreateStateMachine(path string, sv *StateVector) (*StateMachine, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "surefire: reading %s", path)
	}
	cfg, err := cfgparse.ParseStateMachine(path, src)
	if err != nil {
		return nil, err
	}
	m, err := assemble.StateMachine(path, cfg, sv.Raw())
	if err != nil {
		return nil, err
	}
	return &StateMachine{m: m}, nil
}

// Step advances the machine by exactly one step: ENTRY on the first
// step in a state, then STEP, then EXIT if a transition fires this
// step, and finally an update of every registered rolling statistic.
func (m *StateMachine) Step() error { return m.m.Step() }

// CurrentState returns the 1-indexed ID of the state the machine is
// currently in.
func (m *StateMachine) CurrentState() uint32 { return m.m.CurrentState() }

// WriteGlobalTime writes v into the state vector's bound global time
// element (G). A caller driving the machine against a real clock must
// call this once per iteration before Step, since Step only ever
// reads G to find out how much time has passed.
func (m *StateMachine) WriteGlobalTime(v uint64) { m.m.WriteGlobalTime(v) }
