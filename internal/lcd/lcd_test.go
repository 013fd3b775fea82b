package lcd

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBus captures I2C writes to the backpack.
type recordingBus struct {
	mu    sync.Mutex
	addrs map[uint16]int
}

func (b *recordingBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.addrs == nil {
		b.addrs = map[uint16]int{}
	}
	b.addrs[addr] += len(w)
	return nil
}

func TestHD44780_WritesToBackpack(t *testing.T) {
	bus := &recordingBus{}
	d, err := NewHD44780(bus, DefaultAddr, 16, 2)
	require.NoError(t, err)

	d.MoveCursor(0, 1)
	d.Write("12:00:00")
	d.PowerOff()

	assert.Len(t, bus.addrs, 1)
	assert.Greater(t, bus.addrs[DefaultAddr], 0)
}

func TestHD44780_RejectsZeroSize(t *testing.T) {
	_, err := NewHD44780(&recordingBus{}, DefaultAddr, 0, 2)
	assert.Error(t, err)
}

func TestFake_Write(t *testing.T) {
	f := NewFake(16, 2)
	f.MoveCursor(0, 0)
	f.Write("Dog was fed 500g")
	f.MoveCursor(4, 1)
	f.Write("12:00:00 overflowing")

	assert.Equal(t, "Dog was fed 500g", f.Line(0))
	assert.Equal(t, "    12:00:00 ove", f.Line(1))

	f.Clear()
	assert.Equal(t, "", f.Line(0))
	assert.Equal(t, 1, f.Clears())
	assert.Len(t, f.Writes(), 2)
}
