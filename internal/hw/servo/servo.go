package servo

import (
	"fmt"
	"math"
	"time"

	"github.com/cjeanneret/LaserTower/internal/debug"
	"github.com/cjeanneret/LaserTower/internal/hw/gpio"
	"github.com/cjeanneret/LaserTower/internal/tower"
)

// cycleLen is the number of duty-cycle divisions per PWM frame.
// 2000 divisions on a 20ms frame gives 10µs pulse resolution.
const cycleLen = 2000

// Servo drives one hobby servo through a PWM-capable GPIO pin.
// It implements tower.Actuator: a normalized value in [-1, 1] maps
// linearly onto the pulse-width range of the profile.
type Servo struct {
	gpio     gpio.Driver
	pin      int
	profile  tower.PulseProfile
	released bool
}

// New configures pin for PWM at the frame rate implied by the profile.
func New(g gpio.Driver, pin int, profile tower.PulseProfile) (*Servo, error) {
	if profile.MinPulseWidth <= 0 || profile.MaxPulseWidth <= profile.MinPulseWidth {
		return nil, fmt.Errorf("invalid pulse widths: min=%v max=%v", profile.MinPulseWidth, profile.MaxPulseWidth)
	}
	if profile.FrameWidth <= profile.MaxPulseWidth {
		return nil, fmt.Errorf("frame width %v must exceed max pulse width %v", profile.FrameWidth, profile.MaxPulseWidth)
	}

	// PWM clock = frame frequency * divisions per frame.
	clock := int(math.Round(float64(cycleLen) / profile.FrameWidth.Seconds()))
	if err := g.SetupPWM(pin, clock); err != nil {
		return nil, fmt.Errorf("setup PWM on pin %d: %w", pin, err)
	}

	debug.Verbose("Servo: pin %d ready (pulse %v-%v, frame %v, clock %d Hz)",
		pin, profile.MinPulseWidth, profile.MaxPulseWidth, profile.FrameWidth, clock)

	return &Servo{
		gpio:    g,
		pin:     pin,
		profile: profile,
	}, nil
}

// SetValue drives the servo to the position given by v in [-1, 1]:
// -1 = minimum pulse width, +1 = maximum pulse width.
func (s *Servo) SetValue(v float64) error {
	if s.released {
		return fmt.Errorf("servo on pin %d already released", s.pin)
	}
	if math.IsNaN(v) || v < -1 || v > 1 {
		return fmt.Errorf("servo value must be between -1 and 1, got %g", v)
	}

	span := s.profile.MaxPulseWidth - s.profile.MinPulseWidth
	pulse := s.profile.MinPulseWidth + time.Duration((v+1)/2*float64(span))
	duty := uint32(math.Round(pulse.Seconds() / s.profile.FrameWidth.Seconds() * cycleLen))

	debug.Servo(s.pin, v, duty, cycleLen)
	return s.gpio.WritePWM(s.pin, duty, cycleLen)
}

// Release parks the drive signal and returns the pin to input mode.
// Further SetValue calls fail.
func (s *Servo) Release() error {
	if s.released {
		return nil
	}
	s.released = true

	if err := s.gpio.WritePWM(s.pin, 0, cycleLen); err != nil {
		return fmt.Errorf("park servo on pin %d: %w", s.pin, err)
	}
	return s.gpio.SetupPin(s.pin, gpio.Input)
}
