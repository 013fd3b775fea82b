// Package i2c exposes a Linux i2c-dev adapter as a bus usable by the
// tinygo device drivers.
package i2c

import "tinygo.org/x/drivers"

var _ drivers.I2C = (*Bus)(nil)
