// Package gpio provides GPIO output control with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Output drives a single digital output line.
type Output interface {
	// Set drives the line to the logical level on.
	Set(on bool) error

	// Close releases GPIO resources.
	Close() error
}

// DefaultPinLED is the BCM pin of the heartbeat LED.
const DefaultPinLED = 17
