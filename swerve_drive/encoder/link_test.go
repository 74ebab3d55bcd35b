package encoder

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swerve-core/utils"
)

// fakePort answers each single-byte position request with the next queued
// response. An empty response simulates a silent encoder.
type fakePort struct {
	responses [][]byte
	pending   []byte
	written   [][]byte
	timeouts  []time.Duration
	resets    int
	writeErr  error
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written = append(p.written, append([]byte(nil), b...))
	if len(b) == 1 && len(p.responses) > 0 {
		p.pending = append(p.pending, p.responses[0]...)
		p.responses = p.responses[1:]
	}
	return len(b), nil
}

// Read hands out one byte at a time to exercise partial reads.
func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.pending) == 0 {
		return 0, nil
	}
	b[0] = p.pending[0]
	p.pending = p.pending[1:]
	return 1, nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.timeouts = append(p.timeouts, t)
	return nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.resets++
	p.pending = nil
	return nil
}

func response(sample uint16, p Parity) []byte {
	raw := withCheckBits(sample<<2, p)
	return []byte{byte(raw), byte(raw >> 8)}
}

func TestLink_PollAccumulates(t *testing.T) {
	port := &fakePort{responses: [][]byte{
		response(4090, EvenParity),
		response(10, EvenParity),
	}}
	link := NewLink(port, LinkConfig{}, nil)
	s := State{Address: 0x54}

	require.True(t, link.Poll(&s))
	assert.Equal(t, -6, s.Position, "first sample unwraps against zero")
	require.True(t, link.Poll(&s))
	assert.Equal(t, 10, s.Position)

	assert.Equal(t, [][]byte{{0x54}, {0x54}}, port.written)
	assert.Equal(t, 2, port.resets)
	for _, to := range port.timeouts {
		assert.LessOrEqual(t, to, DefaultTimeout)
	}
}

func TestLink_TimeoutKeepsState(t *testing.T) {
	port := &fakePort{}
	link := NewLink(port, LinkConfig{Timeout: time.Millisecond}, nil)
	s := State{Address: 0x50, Position: 123, LastRaw: 77}

	assert.False(t, link.Poll(&s))
	assert.Equal(t, State{Address: 0x50, Position: 123, LastRaw: 77}, s)
	assert.Equal(t, Stats{Polls: 1, Timeouts: 1}, link.Stats())
}

func TestLink_ChecksumFailureKeepsState(t *testing.T) {
	bad := response(100, EvenParity)
	bad[0] ^= 0x10
	port := &fakePort{responses: [][]byte{bad}}
	link := NewLink(port, LinkConfig{}, nil)
	s := State{Address: 0x58, Position: -5000, LastRaw: 3000}

	assert.False(t, link.Poll(&s))
	assert.Equal(t, -5000, s.Position)
	assert.Equal(t, uint16(3000), s.LastRaw)
	assert.Equal(t, uint64(1), link.Stats().Checksums)
}

func TestLink_OddParityMode(t *testing.T) {
	port := &fakePort{responses: [][]byte{response(1000, OddParity), response(1000, EvenParity)}}
	link := NewLink(port, LinkConfig{Parity: OddParity}, nil)
	s := State{Address: 0x5C}

	assert.True(t, link.Poll(&s))
	assert.Equal(t, 1000, s.Position)
	assert.False(t, link.Poll(&s), "even-parity word rejected in odd mode")
}

func TestLink_WriteErrorFails(t *testing.T) {
	port := &fakePort{writeErr: errors.New("bus off")}
	link := NewLink(port, LinkConfig{}, nil)
	s := State{Address: 0x50}
	assert.False(t, link.Poll(&s))
	assert.Error(t, link.RequestReset(&s))
}

func TestLink_PollAllCountsSuccesses(t *testing.T) {
	port := &fakePort{responses: [][]byte{
		response(1, EvenParity),
		{},
		response(3, EvenParity),
		response(4, EvenParity),
	}}
	link := NewLink(port, LinkConfig{Timeout: time.Millisecond}, nil)
	states := NewStates([]uint8{0x50, 0x54, 0x58, 0x5C})

	assert.Equal(t, 3, link.PollAll(states))
	assert.Equal(t, []int{1, 0, 3, 4}, []int{states[0].Position, states[1].Position, states[2].Position, states[3].Position})
}

func TestLink_RequestResetAddressing(t *testing.T) {
	port := &fakePort{}
	link := NewLink(port, LinkConfig{}, nil)
	s := State{Address: 0x50}

	require.NoError(t, link.RequestReset(&s))
	assert.Equal(t, [][]byte{{0x52, 0x75}}, port.written)
}

// pacedPort delivers each response byte after a delay on a mock clock. A
// read whose timeout is shorter than the next delay waits out the timeout
// and returns nothing, like a serial port with a read timeout.
type pacedPort struct {
	clock    *utils.MockClock
	delays   []time.Duration
	bytes    []byte
	timeout  time.Duration
	timeouts []time.Duration
}

func (p *pacedPort) Write(b []byte) (int, error) { return len(b), nil }

func (p *pacedPort) Read(b []byte) (int, error) {
	if len(p.bytes) == 0 || p.delays[0] > p.timeout {
		p.clock.Advance(p.timeout)
		return 0, nil
	}
	p.clock.Advance(p.delays[0])
	b[0] = p.bytes[0]
	p.delays, p.bytes = p.delays[1:], p.bytes[1:]
	return 1, nil
}

func (p *pacedPort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	p.timeouts = append(p.timeouts, t)
	return nil
}

func TestLink_DeadlineSpansPartialReads(t *testing.T) {
	ms := time.Millisecond
	cases := map[string]struct {
		delays   []time.Duration
		ok       bool
		timeouts []time.Duration
		elapsed  time.Duration
	}{
		"both bytes in time":         {[]time.Duration{3 * ms, 3 * ms}, true, []time.Duration{10 * ms, 7 * ms}, 6 * ms},
		"second byte too late":       {[]time.Duration{6 * ms, 6 * ms}, false, []time.Duration{10 * ms, 4 * ms}, 10 * ms},
		"first byte at the deadline": {[]time.Duration{10 * ms, 0}, false, []time.Duration{10 * ms}, 10 * ms},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			start := time.Unix(0, 0)
			clock := utils.NewMockClock(start)
			resp := response(42, EvenParity)
			port := &pacedPort{clock: clock, delays: tc.delays, bytes: resp}
			link := NewLink(port, LinkConfig{Clock: clock}, nil)
			s := State{Address: 0x50}

			assert.Equal(t, tc.ok, link.Poll(&s))
			assert.Equal(t, tc.timeouts, port.timeouts)
			assert.Equal(t, tc.elapsed, clock.Now().Sub(start))
			if tc.ok {
				assert.Equal(t, 42, s.Position)
			} else {
				assert.Equal(t, uint64(1), link.Stats().Timeouts)
			}
		})
	}
}
