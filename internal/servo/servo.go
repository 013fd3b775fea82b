// Package servo positions a hobby servo through the Linux PWM sysfs interface.
package servo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Pulse timing for an MG996R: a 50 Hz frame with 0.5 ms at 0° and 2.5 ms at 180°.
const (
	Period   = 20 * time.Millisecond
	MinPulse = 500 * time.Microsecond
	MaxPulse = 2500 * time.Microsecond
	MaxAngle = 180
)

// Pulse returns the high time for angle, clamped to 0..MaxAngle.
func Pulse(angle int) time.Duration {
	if angle < 0 {
		angle = 0
	}
	if angle > MaxAngle {
		angle = MaxAngle
	}
	return MinPulse + (MaxPulse-MinPulse)*time.Duration(angle)/MaxAngle
}

// PWM drives one channel of a sysfs PWM chip.
type PWM struct {
	mu  sync.Mutex
	dir string
}

// Open exports channel on chip (e.g. /sys/class/pwm/pwmchip0), sets a 20 ms
// period and enables the output.
func Open(chip string, channel int) (*PWM, error) {
	dir := filepath.Join(chip, "pwm"+strconv.Itoa(channel))
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := write(filepath.Join(chip, "export"), strconv.Itoa(channel)); err != nil {
			return nil, fmt.Errorf("export pwm channel %d: %w", channel, err)
		}
		// udev needs a moment to set permissions on the new attributes.
		if err := waitFor(filepath.Join(dir, "period"), time.Second); err != nil {
			return nil, err
		}
	}
	p := &PWM{dir: dir}
	if err := p.attr("period", int64(Period)); err != nil {
		return nil, err
	}
	if err := p.attr("enable", 1); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPosition moves the servo to angle degrees.
func (p *PWM) SetPosition(angle int) error {
	if angle < 0 || angle > MaxAngle {
		return fmt.Errorf("angle %d out of range 0..%d", angle, MaxAngle)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attr("duty_cycle", int64(Pulse(angle)))
}

// Close disables the output. The channel stays exported.
func (p *PWM) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attr("enable", 0)
}

func (p *PWM) attr(name string, v int64) error {
	if err := write(filepath.Join(p.dir, name), strconv.FormatInt(v, 10)); err != nil {
		return fmt.Errorf("pwm %s: %w", name, err)
	}
	return nil
}

func write(path, value string) error {
	return os.WriteFile(path, []byte(value), 0)
}

func waitFor(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err == nil {
			return f.Close()
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("wait for %s: %w", path, err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
