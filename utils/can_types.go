package utils

import "sort"

// Signal byte orders understood by the codec.
//
// "little" signals use the DBC Intel numbering: start_bit is the LSB, counted
// from bit 0 of byte 0. "big" signals are laid out MSB first across the
// payload; start_bit is the position of the signal's first (most significant)
// bit counted from the MSB of byte 0, so a 16-bit field filling bytes 2 and 3
// starts at 16.
const (
	LittleEndian = "little"
	BigEndian    = "big"
)

type SignalDef struct {
	Name       string
	StartBit   int
	BitLength  int
	Signed     bool
	Factor     float64
	Offset     float64
	Min        float64
	Max        float64
	Default    float64
	Unit       string
	Comment    string
	Endianness string
}

func (s SignalDef) bigEndian() bool {
	return s.Endianness == BigEndian
}

// dataStart converts StartBit to the numbering of can.Data. Big-endian
// signals there start at the DBC (Motorola) position of their MSB.
func (s SignalDef) dataStart() uint8 {
	if !s.bigEndian() {
		return uint8(s.StartBit)
	}
	return uint8(s.StartBit/8*8 + 7 - s.StartBit%8)
}

type FrameDef struct {
	ID        uint32
	Name      string
	DLC       int
	Direction string
	Bus       string
	CycleMS   int
	Signals   []SignalDef
}

// Signal returns the named signal of the frame.
func (fd *FrameDef) Signal(name string) (SignalDef, bool) {
	for _, s := range fd.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return SignalDef{}, false
}

type CANMap struct {
	ByID   map[uint32]*FrameDef
	ByName map[string]*FrameDef
}

func (m *CANMap) FrameNames() []string {
	out := make([]string, 0, len(m.ByName))
	for k := range m.ByName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
