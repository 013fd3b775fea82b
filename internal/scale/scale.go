// Package scale reads calibrated weights from an HX711 load-cell amplifier.
package scale

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoSamples is returned when no raw reading in a sample batch succeeded.
var ErrNoSamples = errors.New("scale: no samples")

// Default calibration for the 5 kg load cell fitted to the feeder bowl.
const (
	DefaultOffset = 7996169
	DefaultScale  = -948.79
)

// Calibration converts raw ADC counts to grams: (raw - Offset) / Scale.
type Calibration struct {
	Offset float64
	Scale  float64
}

// Grams converts a raw reading.
func (c Calibration) Grams(raw float64) float64 {
	return (raw - c.Offset) / c.Scale
}

// Validate reports a calibration that would divide by zero.
func (c Calibration) Validate() error {
	if c.Scale == 0 {
		return fmt.Errorf("scale factor must be non-zero")
	}
	return nil
}

// RawReader returns one raw 24-bit conversion from the amplifier.
type RawReader interface {
	ReadRaw() (int64, error)
}

// Scale averages raw readings and applies a calibration.
type Scale struct {
	mu  sync.Mutex
	raw RawReader
	cal Calibration
}

// New creates a scale over raw.
func New(raw RawReader, cal Calibration) (*Scale, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return &Scale{raw: raw, cal: cal}, nil
}

// Sample reads n raw values, averages the ones that succeeded and returns grams.
// Failed reads are skipped; if every read fails the last error is wrapped in
// ErrNoSamples.
func (s *Scale) Sample(n int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	avg, err := s.average(n)
	if err != nil {
		return 0, err
	}
	return s.cal.Grams(avg), nil
}

// Tare sets the calibration offset to the current average reading, so the
// present load reads as zero.
func (s *Scale) Tare(n int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	avg, err := s.average(n)
	if err != nil {
		return 0, err
	}
	s.cal.Offset = avg
	return avg, nil
}

// Calibration returns the calibration in use.
func (s *Scale) Calibration() Calibration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal
}

func (s *Scale) average(n int) (float64, error) {
	if n < 1 {
		n = 1
	}
	var sum float64
	var ok int
	var lastErr error
	for i := 0; i < n; i++ {
		v, err := s.raw.ReadRaw()
		if err != nil {
			lastErr = err
			continue
		}
		sum += float64(v)
		ok++
	}
	if ok == 0 {
		return 0, fmt.Errorf("%w: %v", ErrNoSamples, lastErr)
	}
	return sum / float64(ok), nil
}
