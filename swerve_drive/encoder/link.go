package encoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"swerve-core/utils"
)

// DefaultTimeout bounds the wait for one position response.
const DefaultTimeout = 10 * time.Millisecond

const resetCommand = 0x75

var (
	ErrTimeout  = errors.New("encoder response timeout")
	ErrChecksum = errors.New("encoder checksum mismatch")
)

// Port is the RS485 link. go.bug.st/serial ports satisfy it; a read that
// times out returns (0, nil).
type Port interface {
	io.ReadWriter
	SetReadTimeout(t time.Duration) error
}

type inputResetter interface {
	ResetInputBuffer() error
}

type LinkConfig struct {
	Timeout time.Duration
	Parity  Parity
	// Clock times the response deadline. Nil uses utils.RealClock.
	Clock utils.Clock
}

// Stats counts poll outcomes since the link was created.
type Stats struct {
	Polls     uint64
	Timeouts  uint64
	Checksums uint64
}

// Link polls the encoders sharing one serial line.
type Link struct {
	port  Port
	cfg   LinkConfig
	log   *utils.Logger
	stats Stats
}

func NewLink(port Port, cfg LinkConfig, log *utils.Logger) *Link {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = utils.RealClock{}
	}
	if log == nil {
		log = utils.NewLogger(nil, utils.CRITICAL)
	}
	return &Link{port: port, cfg: cfg, log: log}
}

func (l *Link) Stats() Stats { return l.stats }

// Poll requests the position of one encoder and folds it into s. A timeout,
// transport error or checksum failure leaves s unchanged and returns false;
// the caller simply tries again on its next iteration.
func (l *Link) Poll(s *State) bool {
	l.stats.Polls++

	raw, err := l.read(s.Address)
	if err == nil && !l.cfg.Parity.Valid(raw) {
		err = fmt.Errorf("%w: raw=0x%04X", ErrChecksum, raw)
	}
	if err != nil {
		if errors.Is(err, ErrChecksum) {
			l.stats.Checksums++
		} else {
			l.stats.Timeouts++
		}
		l.log.Trace("encoder 0x%02X: %v", s.Address, err)
		return false
	}

	s.Accept(Sample(raw))
	return true
}

// PollAll polls every state once and returns how many succeeded.
func (l *Link) PollAll(states []State) int {
	ok := 0
	for i := range states {
		if l.Poll(&states[i]) {
			ok++
		}
	}
	return ok
}

// RequestReset asks the encoder to re-zero. No confirmation is awaited.
func (l *Link) RequestReset(s *State) error {
	if _, err := l.port.Write([]byte{s.Address + 2, resetCommand}); err != nil {
		return fmt.Errorf("encoder 0x%02X reset: %w", s.Address, err)
	}
	l.log.Info("encoder 0x%02X: reset requested", s.Address)
	return nil
}

func (l *Link) read(addr uint8) (uint16, error) {
	if r, ok := l.port.(inputResetter); ok {
		_ = r.ResetInputBuffer()
	}
	if _, err := l.port.Write([]byte{addr}); err != nil {
		return 0, fmt.Errorf("write request: %w", err)
	}

	var buf [2]byte
	n := 0
	deadline := l.cfg.Clock.Now().Add(l.cfg.Timeout)
	for n < len(buf) {
		remaining := deadline.Sub(l.cfg.Clock.Now())
		if remaining <= 0 {
			return 0, ErrTimeout
		}
		if err := l.port.SetReadTimeout(remaining); err != nil {
			return 0, fmt.Errorf("set read timeout: %w", err)
		}
		m, err := l.port.Read(buf[n:])
		if err != nil {
			return 0, fmt.Errorf("read response: %w", err)
		}
		if m == 0 {
			return 0, ErrTimeout
		}
		n += m
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}
