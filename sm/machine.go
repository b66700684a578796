package sm

import (
	"j5.nz/surefire/errs"
	"j5.nz/surefire/expr"
	"j5.nz/surefire/statevector"
)

// StateMachine is the executor: it holds the current state, tracks
// time, and drives block traversal and transition handling. Stepping
// performs no allocation and no I/O beyond reading/writing
// state-vector elements.
type StateMachine struct {
	stateElem      statevector.Elem // u32, written on every transition
	stateTimeElem  statevector.Elem // u64, written every step
	globalTimeElem statevector.Elem // u64, read-only source of truth for time

	states  map[uint32]*State
	current *State

	hasTimeStateStart bool
	timeStateStart    uint64
	hasTimeLastStep   bool
	timeLastStep      uint64

	stats []*expr.Stats
}

// New builds a StateMachine. It fails with Unreachable if start is
// not present in states, or if start equals NoState.
func New(stateElem, stateTimeElem, globalTimeElem statevector.Elem, states map[uint32]*State, start uint32) (*StateMachine, error) {
	if start == NoState {
		return nil, errs.New(errs.Unreachable, "start state id must not be the reserved NO_STATE sentinel")
	}
	cur, ok := states[start]
	if !ok {
		return nil, errs.New(errs.Unreachable, "start state %d is not in the state table", start)
	}
	return &StateMachine{
		stateElem:      stateElem,
		stateTimeElem:  stateTimeElem,
		globalTimeElem: globalTimeElem,
		states:         states,
		current:        cur,
	}, nil
}

// RegisterStats adds stats objects whose Update must be called once
// per step.
func (m *StateMachine) RegisterStats(stats ...*expr.Stats) {
	m.stats = append(m.stats, stats...)
}

// CurrentState returns the id of the machine's current state.
func (m *StateMachine) CurrentState() uint32 { return m.current.ID }

// WriteGlobalTime writes v into the bound global time element (G).
// Callers driving the machine against a real clock call this once per
// iteration before Step, since Step only ever reads G.
func (m *StateMachine) WriteGlobalTime(v uint64) { m.globalTimeElem.WriteU64(v) }

// Step advances the machine by one step, reading the current time
// from the global time element and executing entry/step/exit blocks
// in order. It fails with NonMonotonicTime if the observed time
// regresses; on that failure the machine is left in its pre-step
// state because the failure is detected before any element is
// written.
func (m *StateMachine) Step() error {
	now := m.globalTimeElem.ReadU64()
	if m.hasTimeLastStep && now < m.timeLastStep {
		return errs.New(errs.NonMonotonicTime, "step time %d precedes last step time %d", now, m.timeLastStep)
	}
	if !m.hasTimeStateStart {
		m.timeStateStart = now
		m.hasTimeStateStart = true
	}
	m.stateTimeElem.WriteU64(now - m.timeStateStart)
	m.timeLastStep = now
	m.hasTimeLastStep = true

	isFirstStepInState := m.timeStateStart == now
	pending := NoState

	if isFirstStepInState && m.current.Entry != nil {
		pending = executeBlock(m.current.Entry, pending)
	}
	if pending == NoState && m.current.Step != nil {
		pending = executeBlock(m.current.Step, pending)
	}
	if pending != NoState && m.current.Exit != nil {
		// Exit blocks contain no transitions (enforced at compile
		// time), so any pending value they'd produce is discarded; the
		// transition already in flight wins.
		executeBlock(m.current.Exit, NoState)
	}

	for _, st := range m.stats {
		st.Update()
	}

	if pending != NoState {
		next, ok := m.states[pending]
		if !ok {
			return errs.New(errs.Unreachable, "transition to unknown state %d", pending)
		}
		m.stateElem.WriteU32(pending)
		m.current = next
		m.hasTimeStateStart = false
	}
	return nil
}
