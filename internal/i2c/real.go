//go:build linux

package i2c

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// i2cSlave is the i2c-dev ioctl selecting the target address.
const i2cSlave = 0x0703

// Bus is an open /dev/i2c-N adapter.
type Bus struct {
	mu   sync.Mutex
	fd   int
	addr int
	path string
}

// Open opens the adapter at path, e.g. /dev/i2c-1.
func Open(path string) (*Bus, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Bus{fd: fd, addr: -1, path: path}, nil
}

// Tx writes w then reads len(r) bytes from addr.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if int(addr) != b.addr {
		if err := unix.IoctlSetInt(b.fd, i2cSlave, int(addr)); err != nil {
			return fmt.Errorf("%s: select 0x%02x: %w", b.path, addr, err)
		}
		b.addr = int(addr)
	}
	if len(w) > 0 {
		if _, err := unix.Write(b.fd, w); err != nil {
			return fmt.Errorf("%s: write 0x%02x: %w", b.path, addr, err)
		}
	}
	for n := 0; n < len(r); {
		m, err := unix.Read(b.fd, r[n:])
		if err != nil {
			return fmt.Errorf("%s: read 0x%02x: %w", b.path, addr, err)
		}
		if m == 0 {
			return fmt.Errorf("%s: short read from 0x%02x", b.path, addr)
		}
		n += m
	}
	return nil
}

// Close releases the adapter.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return unix.Close(b.fd)
}
