package scale

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultIIODevice is where the kernel hx711 driver exposes its first channel.
const DefaultIIODevice = "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"

// IIO reads raw conversions from the Linux industrial I/O hx711 driver.
type IIO struct {
	path string
}

// NewIIO opens the sysfs attribute at path.
func NewIIO(path string) (*IIO, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("hx711 device: %w", err)
	}
	return &IIO{path: filepath.Clean(path)}, nil
}

// ReadRaw reads one conversion. The driver blocks until the HX711 is ready.
func (d *IIO) ReadRaw() (int64, error) {
	b, err := os.ReadFile(d.path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", d.path, err)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", d.path, err)
	}
	return v, nil
}
