package utils

import (
	"fmt"
	"math"

	"go.einride.tech/can"
)

func (m *CANMap) EncodeFrame(frameName string, values map[string]float64) ([]byte, uint32, error) {
	f, err := m.EncodeEinrideFrame(frameName, values)
	if err != nil {
		return nil, 0, err
	}
	out := make([]byte, f.Length)
	copy(out, f.Data[:f.Length])
	return out, f.ID, nil
}

// EncodeEinrideFrame produces an einride can.Frame ready to transmit. Signals
// missing from values are sent at their default.
func (m *CANMap) EncodeEinrideFrame(frameName string, values map[string]float64) (can.Frame, error) {
	fd, err := m.FrameByName(frameName)
	if err != nil {
		return can.Frame{}, err
	}
	if fd.DLC <= 0 || fd.DLC > 8 {
		return can.Frame{}, fmt.Errorf("frame %s has invalid DLC %d", fd.Name, fd.DLC)
	}

	f := can.Frame{ID: fd.ID, Length: uint8(fd.DLC)}
	for _, s := range fd.Signals {
		v, ok := values[s.Name]
		if !ok {
			v = s.Default
		}

		v = clamp(v, s.Min, s.Max)
		raw := clampRaw(int64(math.Round((v-s.Offset)/s.Factor)), s.BitLength, s.Signed)

		start, length := s.dataStart(), uint8(s.BitLength)
		switch {
		case s.bigEndian() && s.Signed:
			f.Data.SetSignedBitsBigEndian(start, length, raw)
		case s.bigEndian():
			f.Data.SetUnsignedBitsBigEndian(start, length, uint64(raw))
		case s.Signed:
			f.Data.SetSignedBitsLittleEndian(start, length, raw)
		default:
			f.Data.SetUnsignedBitsLittleEndian(start, length, uint64(raw))
		}
	}
	return f, nil
}

func (m *CANMap) DecodeFrame(frameID uint32, data []byte) (map[string]float64, error) {
	fd, err := m.FrameByID(frameID)
	if err != nil {
		return nil, err
	}
	if len(data) < fd.DLC {
		return nil, fmt.Errorf("frame 0x%X expects DLC %d, got %d", frameID, fd.DLC, len(data))
	}

	var d can.Data
	copy(d[:fd.DLC], data)

	out := make(map[string]float64, len(fd.Signals))
	for _, s := range fd.Signals {
		start, length := s.dataStart(), uint8(s.BitLength)
		var raw int64
		switch {
		case s.bigEndian() && s.Signed:
			raw = d.SignedBitsBigEndian(start, length)
		case s.bigEndian():
			raw = int64(d.UnsignedBitsBigEndian(start, length))
		case s.Signed:
			raw = d.SignedBitsLittleEndian(start, length)
		default:
			raw = int64(d.UnsignedBitsLittleEndian(start, length))
		}
		out[s.Name] = float64(raw)*s.Factor + s.Offset
	}
	return out, nil
}

// DecodeEinrideFrame decodes a received frame. Remote and extended frames are
// never part of the map and are rejected.
func (m *CANMap) DecodeEinrideFrame(f can.Frame) (map[string]float64, error) {
	if f.IsRemote || f.IsExtended {
		return nil, fmt.Errorf("frame 0x%X: remote/extended frames are not mapped", f.ID)
	}
	return m.DecodeFrame(f.ID, f.Data[:f.Length])
}
