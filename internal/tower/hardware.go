package tower

import "time"

// Actuator is an owned handle on one angle-controllable device.
// It accepts a normalized drive value in [-1, 1].
type Actuator interface {
	SetValue(v float64) error
	Release() error
}

// Output is an owned handle on one on/off-only device.
type Output interface {
	On() error
	Off() error
	Release() error
}

// Provider acquires hardware handles by channel address.
// This allows plugging in the real GPIO implementation
// or a mock for development on PC.
type Provider interface {
	Actuator(channel int, profile PulseProfile) (Actuator, error)
	Output(channel int) (Output, error)
}

// PulseProfile describes how a normalized actuation value maps to a
// physical drive signal. Supplied once at construction; immutable after.
type PulseProfile struct {
	MinPulseWidth time.Duration
	MaxPulseWidth time.Duration
	FrameWidth    time.Duration
}

// DefaultPulseProfile returns the timing used by common hobby servos:
// 0.5ms-2.5ms pulses on a 20ms frame.
func DefaultPulseProfile() PulseProfile {
	return PulseProfile{
		MinPulseWidth: 500 * time.Microsecond,
		MaxPulseWidth: 2500 * time.Microsecond,
		FrameWidth:    20 * time.Millisecond,
	}
}
