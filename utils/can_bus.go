package utils

import (
	"context"
	"fmt"
	"net"
	"sync"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

type CANReader interface {
	ReadFrame(ctx context.Context) (can.Frame, error)
	Close() error
}

type CANWriter interface {
	WriteFrame(ctx context.Context, frame can.Frame) error
	Close() error
}

// SocketCANBus is one SocketCAN interface used for both directions. A raw
// socket does not see its own transmissions, so sharing it is safe.
type SocketCANBus struct {
	name string
	conn net.Conn
	recv *socketcan.Receiver
	tx   *socketcan.Transmitter
	stop func() bool

	closeOnce sync.Once
	closeErr  error
}

// DialSocketCAN opens ifname. The socket is closed when ctx ends, which
// unblocks a pending ReadFrame.
func DialSocketCAN(ctx context.Context, ifname string) (*SocketCANBus, error) {
	conn, err := socketcan.DialContext(ctx, "can", ifname)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", ifname, err)
	}
	return &SocketCANBus{
		name: ifname,
		conn: conn,
		recv: socketcan.NewReceiver(conn),
		tx:   socketcan.NewTransmitter(conn),
		stop: context.AfterFunc(ctx, func() { _ = conn.Close() }),
	}, nil
}

func (b *SocketCANBus) Name() string { return b.name }

// ReadFrame blocks until the next data frame arrives. Error frames reported
// by the controller are skipped.
func (b *SocketCANBus) ReadFrame(ctx context.Context) (can.Frame, error) {
	if err := ctx.Err(); err != nil {
		return can.Frame{}, err
	}
	for b.recv.Receive() {
		if b.recv.HasErrorFrame() {
			continue
		}
		return b.recv.Frame(), nil
	}
	if err := ctx.Err(); err != nil {
		return can.Frame{}, err
	}
	if err := b.recv.Err(); err != nil {
		return can.Frame{}, fmt.Errorf("%s receive: %w", b.name, err)
	}
	return can.Frame{}, fmt.Errorf("%s receive: socket closed", b.name)
}

func (b *SocketCANBus) WriteFrame(ctx context.Context, frame can.Frame) error {
	if err := frame.Validate(); err != nil {
		return fmt.Errorf("frame 0x%X: %w", frame.ID, err)
	}
	if err := b.tx.TransmitFrame(ctx, frame); err != nil {
		return fmt.Errorf("%s transmit: %w", b.name, err)
	}
	return nil
}

// Close may be called by both the reading and the writing owner.
func (b *SocketCANBus) Close() error {
	b.closeOnce.Do(func() {
		if b.stop != nil {
			b.stop()
		}
		b.closeErr = b.conn.Close()
	})
	return b.closeErr
}
