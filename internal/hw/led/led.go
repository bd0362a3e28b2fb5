package led

import (
	"fmt"

	"github.com/cjeanneret/LaserTower/internal/debug"
	"github.com/cjeanneret/LaserTower/internal/hw/gpio"
)

// LED drives one on/off device (the laser diode) through a GPIO pin.
// It implements tower.Output. The line is active HIGH and starts low.
type LED struct {
	gpio     gpio.Driver
	pin      int
	released bool
}

// New configures pin as an output and leaves it low.
func New(g gpio.Driver, pin int) (*LED, error) {
	if err := g.SetupPin(pin, gpio.Output); err != nil {
		return nil, fmt.Errorf("setup output on pin %d: %w", pin, err)
	}
	if err := g.WritePin(pin, gpio.Low); err != nil {
		return nil, fmt.Errorf("initialize pin %d low: %w", pin, err)
	}
	return &LED{gpio: g, pin: pin}, nil
}

// On drives the line high.
func (l *LED) On() error {
	if l.released {
		return fmt.Errorf("output on pin %d already released", l.pin)
	}
	debug.Trace("LED: pin %d -> HIGH", l.pin)
	return l.gpio.WritePin(l.pin, gpio.High)
}

// Off drives the line low.
func (l *LED) Off() error {
	if l.released {
		return fmt.Errorf("output on pin %d already released", l.pin)
	}
	debug.Trace("LED: pin %d -> LOW", l.pin)
	return l.gpio.WritePin(l.pin, gpio.Low)
}

// Release drops the line low and returns the pin to input mode.
func (l *LED) Release() error {
	if l.released {
		return nil
	}
	l.released = true

	if err := l.gpio.WritePin(l.pin, gpio.Low); err != nil {
		return fmt.Errorf("drop pin %d low: %w", l.pin, err)
	}
	return l.gpio.SetupPin(l.pin, gpio.Input)
}
