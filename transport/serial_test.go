package transport

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarm/serial"
)

func newTestSerial(t *testing.T, port *fakePort, opts ...Option) *Serial {
	t.Helper()

	s, err := NewSerial("/dev/ttyTEST", append([]Option{WithPollInterval(10 * time.Millisecond)}, opts...)...)
	require.NoError(t, err)
	s.open = func(*serial.Config) (io.ReadWriteCloser, error) { return port, nil }

	return s
}

func TestSerial_Config(t *testing.T) {
	s, err := NewSerial("/dev/ttyUSB0")
	require.NoError(t, err)

	cfg := s.Config()
	assert.Equal(t, "/dev/ttyUSB0", cfg.Name)
	assert.Equal(t, DefaultBaudRate, cfg.Baud)
	assert.Equal(t, byte(7), cfg.Size)
	assert.Equal(t, serial.ParityEven, cfg.Parity)
	assert.Equal(t, serial.Stop2, cfg.StopBits)
	assert.Equal(t, DefaultPollInterval, cfg.ReadTimeout)

	s, err = NewSerial("/dev/ttyUSB0", WithBaudRate(9600))
	require.NoError(t, err)
	assert.Equal(t, 9600, s.Config().Baud)

	_, err = NewSerial("")
	require.Error(t, err)
	_, err = NewSerial("/dev/ttyUSB0", WithBaudRate(0))
	require.Error(t, err)
	_, err = NewSerial("/dev/ttyUSB0", WithPollInterval(time.Millisecond))
	require.Error(t, err)
}

func TestSerial_SendReceive(t *testing.T) {
	port := &fakePort{delay: time.Millisecond}
	s := newTestSerial(t, port)

	require.ErrorIs(t, s.Send([]byte("x")), ErrDisconnected)

	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Send([]byte("frame")))
	assert.Equal(t, "frame", string(port.written))

	port.push([]byte("reply"))
	data, err := s.Receive(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "reply", string(data))

	_, err = s.Receive(30 * time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)

	require.NoError(t, s.Disconnect())
	assert.True(t, port.closed)
	_, err = s.Receive(time.Millisecond)
	require.ErrorIs(t, err, ErrDisconnected)
}

func TestSerial_OpenFailure(t *testing.T) {
	s, err := NewSerial("/dev/ttyMISSING")
	require.NoError(t, err)
	s.open = func(*serial.Config) (io.ReadWriteCloser, error) { return nil, errors.New("no such device") }

	err = s.Connect(context.Background())
	require.ErrorIs(t, err, ErrIOFailure)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Connect(ctx), context.Canceled)
}
