package transport

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"vfdctl/internal/display"
	"vfdctl/internal/protocol"
)

// fakePort implements the parts of serial.Port the transport uses.
type fakePort struct {
	serial.Port
	written []byte
	drained int
	closed  bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) Drain() error {
	p.drained++
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestOpenConfigures8N1(t *testing.T) {
	origOpen := openPort
	defer func() { openPort = origOpen }()

	var gotName string
	var gotMode *serial.Mode
	fp := &fakePort{}
	openPort = func(name string, mode *serial.Mode) (serial.Port, error) {
		gotName, gotMode = name, mode
		return fp, nil
	}

	s, err := Open("/dev/ttyUSB0", 0)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", gotName)
	assert.Equal(t, "/dev/ttyUSB0", s.Name())
	assert.Equal(t, DefaultBaudRate, gotMode.BaudRate)
	assert.Equal(t, 8, gotMode.DataBits)
	assert.Equal(t, serial.NoParity, gotMode.Parity)
	assert.Equal(t, serial.OneStopBit, gotMode.StopBits)

	_, err = s.Write([]byte{0x0C})
	require.NoError(t, err)
	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())
	assert.Equal(t, []byte{0x0C}, fp.written)
	assert.Equal(t, 1, fp.drained)
	assert.True(t, fp.closed)
}

func TestOpenFailureIsTransportError(t *testing.T) {
	origOpen := openPort
	defer func() { openPort = origOpen }()

	cause := errors.New("no such device")
	openPort = func(string, *serial.Mode) (serial.Port, error) { return nil, cause }

	_, err := Open("/dev/missing", 19200)
	require.Error(t, err)

	var tErr *display.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, "connect", tErr.Op)
	assert.ErrorIs(t, err, cause)
}

func TestListPorts(t *testing.T) {
	origDetails, origNames := listPortDetails, listPortNames
	defer func() { listPortDetails, listPortNames = origDetails, origNames }()

	t.Run("detailed", func(t *testing.T) {
		listPortDetails = func() ([]*enumerator.PortDetails, error) {
			return []*enumerator.PortDetails{{Name: "/dev/ttyUSB0", IsUSB: true, VID: "067b", PID: "2303"}}, nil
		}
		ports, err := ListPorts()
		require.NoError(t, err)
		require.Len(t, ports, 1)
		assert.Equal(t, PortInfo{Name: "/dev/ttyUSB0", USB: true, VID: "067b", PID: "2303"}, ports[0])
	})

	t.Run("fallback to names", func(t *testing.T) {
		listPortDetails = func() ([]*enumerator.PortDetails, error) { return nil, errors.New("unsupported") }
		listPortNames = func() ([]string, error) { return []string{"COM3"}, nil }
		ports, err := ListPorts()
		require.NoError(t, err)
		assert.Equal(t, []PortInfo{{Name: "COM3"}}, ports)
	})

	t.Run("both fail", func(t *testing.T) {
		listPortDetails = func() ([]*enumerator.PortDetails, error) { return nil, errors.New("unsupported") }
		listPortNames = func() ([]string, error) { return nil, errors.New("denied") }
		_, err := ListPorts()
		assert.Error(t, err)
	})
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	buf := []byte{0x1B, 0x40}
	_, err := r.Write(buf)
	require.NoError(t, err)
	buf[0] = 0x00
	_, err = r.Write([]byte("HI"))
	require.NoError(t, err)
	require.NoError(t, r.Flush())

	assert.Equal(t, [][]byte{{0x1B, 0x40}, []byte("HI")}, r.Writes(), "chunks are copied")
	assert.Equal(t, []byte{0x1B, 0x40, 'H', 'I'}, r.Bytes())
	assert.Equal(t, 1, r.Flushes())

	r.Reset()
	assert.Empty(t, r.Bytes())

	require.NoError(t, r.Close())
	assert.True(t, r.Closed())
	_, err = r.Write([]byte{0x0C})
	assert.Error(t, err)
}

func TestDumpForwards(t *testing.T) {
	var out bytes.Buffer
	next := NewRecorder()
	d := &Dump{Out: &out, Next: next}

	_, err := d.Write(protocol.Brightness(3).Bytes())
	require.NoError(t, err)
	require.NoError(t, d.Flush())
	require.NoError(t, d.Close())

	assert.Contains(t, out.String(), "1B 2A 03")
	assert.Contains(t, out.String(), "Set brightness: 3")
	assert.Equal(t, []byte{0x1B, 0x2A, 0x03}, next.Bytes())
	assert.Equal(t, 1, next.Flushes())
	assert.True(t, next.Closed())
}

func TestDumpWithoutNext(t *testing.T) {
	var out bytes.Buffer
	d := &Dump{Out: &out}

	n, err := d.Write([]byte{0x0C})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, d.Flush())
	assert.NoError(t, d.Close())
	assert.Contains(t, out.String(), "Clear")
}
