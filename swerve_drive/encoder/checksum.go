package encoder

import (
	"fmt"
	"strings"
)

// Parity selects how the two check bits of a raw sample are interpreted.
//
// The 16-bit word carries two interleaved parity domains: bits 15,13,...,1
// with check bit 15, and bits 14,12,...,0 with check bit 14. Each domain is
// XOR-folded including its check bit.
type Parity int

const (
	// EvenParity accepts a sample when both folds are zero.
	EvenParity Parity = iota
	// OddParity accepts a sample when both folds are one. AMT21 parts
	// transmit inverted check bits and need this mode.
	OddParity
)

func (p Parity) String() string {
	switch p {
	case EvenParity:
		return "even"
	case OddParity:
		return "odd"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// ParseParity maps a config string to a Parity. Empty means even.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "even":
		return EvenParity, nil
	case "odd":
		return OddParity, nil
	default:
		return 0, fmt.Errorf("unknown checksum parity %q (even or odd)", s)
	}
}

// folds returns the XOR of bits 15,13,...,1 and of bits 14,12,...,0.
func folds(raw uint16) (high, low bool) {
	for bit := 15; bit >= 1; bit -= 2 {
		high = high != (raw>>bit&1 == 1)
		low = low != (raw>>(bit-1)&1 == 1)
	}
	return high, low
}

// Valid reports whether raw passes the checksum under p.
func (p Parity) Valid(raw uint16) bool {
	high, low := folds(raw)
	if p == OddParity {
		return high && low
	}
	return !high && !low
}
