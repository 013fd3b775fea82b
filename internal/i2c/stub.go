//go:build !linux

package i2c

import "errors"

// Bus is unavailable on non-Linux platforms.
type Bus struct{}

// Open returns an error on non-Linux platforms.
func Open(path string) (*Bus, error) {
	return nil, errors.New("i2c not supported on this platform")
}

// Tx is a no-op stub.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	return errors.New("i2c not supported on this platform")
}

// Close is a no-op stub.
func (b *Bus) Close() error {
	return nil
}
