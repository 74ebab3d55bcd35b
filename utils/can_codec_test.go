package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.einride.tech/can"
)

func TestDecodeFrame_BigEndianDriveFeedback(t *testing.T) {
	m := MustLoadDefaultCANMap()

	data := []byte{0x12, 0x34, 0xFF, 0x9C, 0x01, 0x00, 0x1E, 0x00}
	got, err := m.DecodeFrame(0x201, data)
	require.NoError(t, err)

	assert.Equal(t, 4660.0, got["rotor_angle"])
	assert.Equal(t, -100.0, got["rpm"])
	assert.Equal(t, 256.0, got["current"])
	assert.Equal(t, 30.0, got["temperature"])
}

func TestEncodeFrame_BigEndianDriveCommandClamps(t *testing.T) {
	m := MustLoadDefaultCANMap()

	payload, id, err := m.EncodeFrame("DRIVE_CMD", map[string]float64{
		"drive_cmd_1": 1000,
		"drive_cmd_2": -1,
		"drive_cmd_3": 20000,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x200), id)
	assert.Equal(t, []byte{0x03, 0xE8, 0xFF, 0xFF, 0x40, 0x00, 0x00, 0x00}, payload)
}

func TestEncodeEinrideFrame_LittleEndianSteerCommand(t *testing.T) {
	m := MustLoadDefaultCANMap()

	f, err := m.EncodeEinrideFrame("STEER_CMD", map[string]float64{
		"steer_cmd_1": -2,
		"steer_cmd_2": 300,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x005), f.ID)
	assert.Equal(t, uint8(8), f.Length)
	assert.Equal(t, can.Data{0xFE, 0xFF, 0x2C, 0x01, 0, 0, 0, 0}, f.Data)
}

func TestDecodeEinrideFrame_Controller(t *testing.T) {
	m := MustLoadDefaultCANMap()

	f := can.Frame{ID: 0x00F, Length: 6, Data: can.Data{0x01, 0x00, 0x80, 0x00, 0xFF, 0x90}}
	got, err := m.DecodeEinrideFrame(f)
	require.NoError(t, err)

	assert.Equal(t, 1.0, got["button_0"])
	assert.Equal(t, 0.0, got["button_1"])
	assert.Equal(t, 128.0, got["stick_lx"])
	assert.Equal(t, 0.0, got["stick_ly"])
	assert.Equal(t, 255.0, got["stick_rx"])
	assert.Equal(t, 144.0, got["stick_ry"])
}

func TestDecodeFrame_Errors(t *testing.T) {
	m := MustLoadDefaultCANMap()

	_, err := m.DecodeFrame(0x7FF, []byte{0})
	assert.Error(t, err, "unknown id")

	_, err = m.DecodeFrame(0x00F, []byte{0, 0, 0})
	assert.Error(t, err, "short payload")

	_, err = m.DecodeEinrideFrame(can.Frame{ID: 0x00F, Length: 6, IsRemote: true})
	assert.Error(t, err, "remote frame")
}

func TestEncodeDecode_SignedRoundTripAcrossEndianness(t *testing.T) {
	m := MustLoadDefaultCANMap()

	for _, v := range []float64{-16384, -1, 0, 1, 16384} {
		payload, id, err := m.EncodeFrame("DRIVE_CMD", map[string]float64{"drive_cmd_4": v})
		require.NoError(t, err)
		got, err := m.DecodeFrame(id, payload)
		require.NoError(t, err)
		assert.Equal(t, v, got["drive_cmd_4"])
	}
	for _, v := range []float64{-22936, -7, 7, 22936} {
		payload, id, err := m.EncodeFrame("STEER_CMD", map[string]float64{"steer_cmd_3": v})
		require.NoError(t, err)
		got, err := m.DecodeFrame(id, payload)
		require.NoError(t, err)
		assert.Equal(t, v, got["steer_cmd_3"])
	}
}

func TestEncodeFrame_BigEndianMatchesEinrideMotorolaLayout(t *testing.T) {
	m := MustLoadDefaultCANMap()

	cmds := []int64{-1000, 1234, 16384, -5}
	values := map[string]float64{}
	var want can.Data
	for i, v := range cmds {
		values[fmt.Sprintf("drive_cmd_%d", i+1)] = float64(v)
		want.SetSignedBitsBigEndian(uint8(7+16*i), 16, v)
	}

	f, err := m.EncodeEinrideFrame("DRIVE_CMD", values)
	require.NoError(t, err)
	assert.Equal(t, want, f.Data)
	assert.Equal(t, can.Data{0xFC, 0x18, 0x04, 0xD2, 0x40, 0x00, 0xFF, 0xFB}, f.Data)
}

func TestSignalDef_DataStart(t *testing.T) {
	assert.Equal(t, uint8(16), SignalDef{StartBit: 16, Endianness: LittleEndian}.dataStart())
	assert.Equal(t, uint8(7), SignalDef{StartBit: 0, Endianness: BigEndian}.dataStart())
	assert.Equal(t, uint8(23), SignalDef{StartBit: 16, Endianness: BigEndian}.dataStart())
	assert.Equal(t, uint8(55), SignalDef{StartBit: 48, Endianness: BigEndian}.dataStart())
	assert.Equal(t, uint8(3), SignalDef{StartBit: 4, Endianness: BigEndian}.dataStart())
}

func TestClampRaw(t *testing.T) {
	assert.Equal(t, int64(127), clampRaw(1000, 8, true))
	assert.Equal(t, int64(-128), clampRaw(-1000, 8, true))
	assert.Equal(t, int64(0), clampRaw(-5, 8, false))
	assert.Equal(t, int64(255), clampRaw(300, 8, false))
}
