package sm

// State is the triple of entry/step/exit blocks identified by a
// state id. Id must not equal NoState.
type State struct {
	ID    uint32
	Entry *Block
	Step  *Block
	Exit  *Block
}
