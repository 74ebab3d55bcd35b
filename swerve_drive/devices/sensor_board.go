package devices

import (
	"go.einride.tech/can"

	"swerve-core/utils"
)

// SensorBoard keeps the latest raw channels of the auxiliary sensor board,
// which reports on two frames.
type SensorBoard struct {
	cmap     *utils.CANMap
	ids      [2]uint32
	channels [2][4]uint16
}

var sensorSignals = [4]string{"channel_1", "channel_2", "channel_3", "channel_4"}

func NewSensorBoard(cmap *utils.CANMap) (*SensorBoard, error) {
	b := &SensorBoard{cmap: cmap}
	for i, name := range []string{SensorBoardFrame1, SensorBoardFrame2} {
		id, err := frameID(cmap, name)
		if err != nil {
			return nil, err
		}
		if err := requireSignals(cmap, name, sensorSignals[:]...); err != nil {
			return nil, err
		}
		b.ids[i] = id
	}
	return b, nil
}

// IDs returns the two frame ids of the board.
func (b *SensorBoard) IDs() [2]uint32 { return b.ids }

// Read consumes f if it belongs to the board.
func (b *SensorBoard) Read(f can.Frame) (bool, error) {
	for i, id := range b.ids {
		if f.ID != id || f.IsRemote || f.IsExtended {
			continue
		}
		values, err := b.cmap.DecodeEinrideFrame(f)
		if err != nil {
			return true, err
		}
		for c, name := range sensorSignals {
			b.channels[i][c] = uint16(values[name])
		}
		return true, nil
	}
	return false, nil
}

// Channels returns the latest values of frame i (0 or 1).
func (b *SensorBoard) Channels(i int) [4]uint16 { return b.channels[i] }
