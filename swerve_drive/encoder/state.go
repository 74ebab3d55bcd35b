package encoder

// RotationTicks is the sensor resolution per physical revolution after the
// 14-bit word is reduced to 12 usable bits.
const RotationTicks = 4096

const positionMask = 0x3FFF

// Sample extracts the 12-bit position: the two check bits are masked off and
// the two low bits are discarded.
func Sample(raw uint16) uint16 {
	return (raw & positionMask) >> 2
}

// State is the absolute, unwrapped steering position of one module.
type State struct {
	Address  uint8
	Position int
	LastRaw  uint16
}

// NewStates builds one State per address, all at position zero.
func NewStates(addresses []uint8) []State {
	out := make([]State, len(addresses))
	for i, a := range addresses {
		out[i] = State{Address: a}
	}
	return out
}

// Accept folds a new 12-bit sample into the absolute position. At most half
// a rotation of travel is assumed between two accepted samples.
func (s *State) Accept(sample uint16) {
	delta := int16(sample - s.LastRaw)
	if delta > RotationTicks/2 {
		delta -= RotationTicks
	} else if delta < -RotationTicks/2 {
		delta += RotationTicks
	}
	s.Position += int(delta)
	s.LastRaw = sample
}
