// Package lcd drives a character LCD: an HD44780 behind a PCF8574 I2C backpack.
package lcd

import (
	"fmt"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hd44780i2c"
)

// DefaultAddr is the PCF8574 backpack address.
const DefaultAddr = 0x27

// HD44780 is a character display on an I2C bus.
type HD44780 struct {
	mu  sync.Mutex
	dev hd44780i2c.Device
}

// NewHD44780 initializes a cols x rows display at addr.
func NewHD44780(bus drivers.I2C, addr uint8, cols, rows int) (*HD44780, error) {
	dev := hd44780i2c.New(bus, addr)
	if err := dev.Configure(hd44780i2c.Config{Width: uint8(cols), Height: uint8(rows)}); err != nil {
		return nil, fmt.Errorf("configure lcd: %w", err)
	}
	dev.ClearDisplay()
	return &HD44780{dev: dev}, nil
}

// MoveCursor positions the cursor at col, row (both zero based).
func (d *HD44780) MoveCursor(col, row int) {
	d.mu.Lock()
	d.dev.SetCursor(uint8(col), uint8(row))
	d.mu.Unlock()
}

// Write prints text at the cursor.
func (d *HD44780) Write(text string) {
	d.mu.Lock()
	d.dev.Print([]byte(text))
	d.mu.Unlock()
}

// Clear blanks the display and homes the cursor.
func (d *HD44780) Clear() {
	d.mu.Lock()
	d.dev.ClearDisplay()
	d.mu.Unlock()
}

// PowerOff turns off the backlight and the display.
func (d *HD44780) PowerOff() {
	d.mu.Lock()
	d.dev.BacklightOn(false)
	d.dev.DisplayOn(false)
	d.mu.Unlock()
}
